package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/confsync/pkg/security"
)

// generateTestCert creates a self-signed certificate for testing. The cert
// carries localhost SANs so it works for loopback handshakes, and both
// server and client key usages so one helper serves both sides.
func generateTestCert(t *testing.T, cn string) (certPEM, keyPEM []byte) {
	t.Helper()

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   cn,
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(privateKey)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	return certPEM, keyPEM
}

// writeTestCert materializes a generated cert/key pair into files and
// returns their paths. The cert file doubles as its own CA for trust setup.
func writeTestCert(t *testing.T, cn string) (certFile, keyFile string) {
	t.Helper()

	tmpDir := t.TempDir()
	certPEM, keyPEM := generateTestCert(t, cn)

	certFile = filepath.Join(tmpDir, "cert.pem")
	keyFile = filepath.Join(tmpDir, "key.pem")

	require.NoError(t, os.WriteFile(certFile, certPEM, 0644))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0600))

	return certFile, keyFile
}

func TestLoadServerTLSConfig(t *testing.T) {
	certFile, keyFile := writeTestCert(t, "localhost")

	tests := []struct {
		name    string
		cfg     security.ServerTLSConfig
		wantNil bool
		wantErr bool
	}{
		{
			name:    "disabled",
			cfg:     security.ServerTLSConfig{Enabled: false},
			wantNil: true,
		},
		{
			name: "enabled with valid cert",
			cfg: security.ServerTLSConfig{
				Enabled:    true,
				CertFile:   certFile,
				KeyFile:    keyFile,
				MinVersion: "1.3",
			},
		},
		{
			name: "missing cert file",
			cfg: security.ServerTLSConfig{
				Enabled:  true,
				CertFile: "/nonexistent/cert.pem",
				KeyFile:  keyFile,
			},
			wantNil: true,
			wantErr: true,
		},
		{
			name: "missing key file",
			cfg: security.ServerTLSConfig{
				Enabled:  true,
				CertFile: certFile,
				KeyFile:  "/nonexistent/key.pem",
			},
			wantNil: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadServerTLSConfig(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.NotEmpty(t, got.Certificates)
			assert.Equal(t, parseTLSVersion(tt.cfg.MinVersion), got.MinVersion)
		})
	}
}

func TestLoadClientTLSConfig(t *testing.T) {
	caFile, _ := writeTestCert(t, "localhost")

	tests := []struct {
		name    string
		cfg     security.ClientTLSConfig
		wantErr bool
		checkFn func(*testing.T, *tls.Config)
	}{
		{
			name: "default config with system CA pool",
			cfg:  security.ClientTLSConfig{},
			checkFn: func(t *testing.T, tlsCfg *tls.Config) {
				assert.NotNil(t, tlsCfg.RootCAs)
				assert.Equal(t, uint16(tls.VersionTLS12), tlsCfg.MinVersion)
				assert.False(t, tlsCfg.InsecureSkipVerify)
			},
		},
		{
			name: "with additional CA file",
			cfg:  security.ClientTLSConfig{CAFiles: []string{caFile}},
			checkFn: func(t *testing.T, tlsCfg *tls.Config) {
				assert.NotNil(t, tlsCfg.RootCAs)
			},
		},
		{
			name: "with TLS 1.3",
			cfg:  security.ClientTLSConfig{MinVersion: "1.3"},
			checkFn: func(t *testing.T, tlsCfg *tls.Config) {
				assert.Equal(t, uint16(tls.VersionTLS13), tlsCfg.MinVersion)
			},
		},
		{
			name: "with InsecureSkipVerify",
			cfg:  security.ClientTLSConfig{InsecureSkipVerify: true},
			checkFn: func(t *testing.T, tlsCfg *tls.Config) {
				assert.True(t, tlsCfg.InsecureSkipVerify)
			},
		},
		{
			name:    "missing CA file",
			cfg:     security.ClientTLSConfig{CAFiles: []string{"/nonexistent/ca.pem"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadClientTLSConfig(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			if tt.checkFn != nil {
				tt.checkFn(t, got)
			}
		})
	}
}

func TestParseTLSVersion(t *testing.T) {
	tests := []struct {
		version string
		want    uint16
	}{
		{"1.3", tls.VersionTLS13},
		{"1.2", tls.VersionTLS12},
		{"", tls.VersionTLS12},        // Default
		{"invalid", tls.VersionTLS12}, // Default fallback
		{"1.1", tls.VersionTLS12},     // Old version defaults to 1.2
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTLSVersion(tt.version))
		})
	}
}

func TestLoadServerTLSConfigWithMTLS(t *testing.T) {
	certFile, keyFile := writeTestCert(t, "localhost")
	clientCAFile, _ := writeTestCert(t, "allowed-client")

	serverCfg := security.ServerTLSConfig{
		Enabled:  true,
		CertFile: certFile,
		KeyFile:  keyFile,
	}

	t.Run("disabled", func(t *testing.T) {
		tlsCfg, err := LoadServerTLSConfigWithMTLS(serverCfg, security.ServerMTLSConfig{})
		require.NoError(t, err)
		require.NotNil(t, tlsCfg)
		assert.Equal(t, tls.NoClientCert, tlsCfg.ClientAuth)
		assert.Nil(t, tlsCfg.ClientCAs)
	})

	t.Run("require client cert", func(t *testing.T) {
		tlsCfg, err := LoadServerTLSConfigWithMTLS(serverCfg, security.ServerMTLSConfig{
			Enabled:           true,
			ClientCAFiles:     []string{clientCAFile},
			RequireClientCert: true,
		})
		require.NoError(t, err)
		assert.Equal(t, tls.RequireAndVerifyClientCert, tlsCfg.ClientAuth)
		assert.NotNil(t, tlsCfg.ClientCAs)
	})

	t.Run("optional client cert", func(t *testing.T) {
		tlsCfg, err := LoadServerTLSConfigWithMTLS(serverCfg, security.ServerMTLSConfig{
			Enabled:       true,
			ClientCAFiles: []string{clientCAFile},
		})
		require.NoError(t, err)
		assert.Equal(t, tls.VerifyClientCertIfGiven, tlsCfg.ClientAuth)
	})

	t.Run("CN whitelist installs verifier", func(t *testing.T) {
		tlsCfg, err := LoadServerTLSConfigWithMTLS(serverCfg, security.ServerMTLSConfig{
			Enabled:           true,
			ClientCAFiles:     []string{clientCAFile},
			RequireClientCert: true,
			AllowedClientCNs:  []string{"allowed-client"},
		})
		require.NoError(t, err)
		assert.NotNil(t, tlsCfg.VerifyPeerCertificate)
	})

	t.Run("missing client CA", func(t *testing.T) {
		_, err := LoadServerTLSConfigWithMTLS(serverCfg, security.ServerMTLSConfig{
			Enabled:           true,
			ClientCAFiles:     []string{"/nonexistent/ca.pem"},
			RequireClientCert: true,
		})
		require.Error(t, err)
	})
}

func TestLoadClientTLSConfigWithMTLS(t *testing.T) {
	certFile, keyFile := writeTestCert(t, "client")
	caFile, _ := writeTestCert(t, "localhost")

	clientCfg := security.ClientTLSConfig{CAFiles: []string{caFile}}

	t.Run("disabled", func(t *testing.T) {
		tlsCfg, err := LoadClientTLSConfigWithMTLS(clientCfg, security.ClientMTLSConfig{})
		require.NoError(t, err)
		assert.Empty(t, tlsCfg.Certificates)
	})

	t.Run("enabled", func(t *testing.T) {
		tlsCfg, err := LoadClientTLSConfigWithMTLS(clientCfg, security.ClientMTLSConfig{
			Enabled:  true,
			CertFile: certFile,
			KeyFile:  keyFile,
		})
		require.NoError(t, err)
		require.Len(t, tlsCfg.Certificates, 1)
		assert.NotEmpty(t, tlsCfg.Certificates[0].Certificate)
	})

	t.Run("missing cert", func(t *testing.T) {
		_, err := LoadClientTLSConfigWithMTLS(clientCfg, security.ClientMTLSConfig{
			Enabled:  true,
			CertFile: "/nonexistent/cert.pem",
			KeyFile:  keyFile,
		})
		require.Error(t, err)
	})
}

func TestVerifyAllowedClientCN(t *testing.T) {
	parseCert := func(t *testing.T, cn string) *x509.Certificate {
		t.Helper()
		certPEM, _ := generateTestCert(t, cn)
		block, _ := pem.Decode(certPEM)
		require.NotNil(t, block)
		cert, err := x509.ParseCertificate(block.Bytes)
		require.NoError(t, err)
		return cert
	}

	allowed := []string{"allowed-client", "another-client"}

	t.Run("allowed CN passes", func(t *testing.T) {
		chains := [][]*x509.Certificate{{parseCert(t, "allowed-client")}}
		assert.NoError(t, verifyAllowedClientCN(chains, allowed))
	})

	t.Run("unknown CN rejected", func(t *testing.T) {
		chains := [][]*x509.Certificate{{parseCert(t, "unauthorized-client")}}
		err := verifyAllowedClientCN(chains, allowed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not in allowed list")
	})

	t.Run("no chains rejected", func(t *testing.T) {
		err := verifyAllowedClientCN(nil, allowed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no verified certificate chains")
	})
}

// TestMutualTLSHandshake runs a real handshake through an HTTPS server built
// from the loaded configs: a whitelisted client connects, a certless client
// is refused.
func TestMutualTLSHandshake(t *testing.T) {
	serverCert, serverKey := writeTestCert(t, "localhost")
	clientCert, clientKey := writeTestCert(t, "allowed-client")

	serverTLS, err := LoadServerTLSConfigWithMTLS(
		security.ServerTLSConfig{
			Enabled:  true,
			CertFile: serverCert,
			KeyFile:  serverKey,
		},
		security.ServerMTLSConfig{
			Enabled:           true,
			ClientCAFiles:     []string{clientCert},
			RequireClientCert: true,
			AllowedClientCNs:  []string{"allowed-client"},
		},
	)
	require.NoError(t, err)

	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ts.TLS = serverTLS
	ts.StartTLS()
	defer ts.Close()

	t.Run("whitelisted client connects", func(t *testing.T) {
		clientTLS, err := LoadClientTLSConfigWithMTLS(
			security.ClientTLSConfig{CAFiles: []string{serverCert}},
			security.ClientMTLSConfig{
				Enabled:  true,
				CertFile: clientCert,
				KeyFile:  clientKey,
			},
		)
		require.NoError(t, err)

		client := &http.Client{Transport: &http.Transport{TLSClientConfig: clientTLS}}
		resp, err := client.Get(ts.URL)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("certless client refused", func(t *testing.T) {
		clientTLS, err := LoadClientTLSConfig(security.ClientTLSConfig{CAFiles: []string{serverCert}})
		require.NoError(t, err)

		client := &http.Client{Transport: &http.Transport{TLSClientConfig: clientTLS}}
		resp, err := client.Get(ts.URL)
		if err == nil {
			_ = resp.Body.Close()
		}
		require.Error(t, err)
	})
}
