package materializer

import (
	"os"
	"path/filepath"

	cerrors "github.com/c360/confsync/errors"
)

// InstallRootEnv names the environment variable carrying the installation
// root that every materialized path is anchored under.
const InstallRootEnv = "APUSIC_HOME"

// Resolver maps logical (root, name) pairs onto target paths under the
// installation root.
//
// The installation root is required. A Resolver built without one still
// constructs, but every Resolve call fails until the root is present: path
// resolution fails closed rather than scattering files relative to wherever
// the process happens to run.
type Resolver struct {
	home string
}

// NewResolver returns a Resolver anchored at home. An empty home is allowed
// at construction time; Resolve rejects it.
func NewResolver(home string) *Resolver {
	return &Resolver{home: home}
}

// NewResolverFromEnv builds a Resolver from the InstallRootEnv environment
// variable.
func NewResolverFromEnv() *Resolver {
	return NewResolver(os.Getenv(InstallRootEnv))
}

// Home returns the configured installation root, which may be empty.
func (r *Resolver) Home() string { return r.home }

// Resolve joins root and name under the installation root. An empty root is
// replaced with the process working directory. Forward slashes in either
// argument are treated as portable separators and converted to the host's.
func (r *Resolver) Resolve(root, name string) (string, error) {
	if r.home == "" {
		return "", cerrors.ErrMissingInstallRoot
	}

	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", cerrors.WrapTransient(err, "materializer", "resolve", "determine working directory")
		}
		root = wd
	}

	return filepath.Join(r.home, filepath.FromSlash(root), filepath.FromSlash(name)), nil
}
