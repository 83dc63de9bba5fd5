// Package testutil provides shared test fixtures and fakes for confsync.
//
// It contains the composite-document fixtures used across package tests
// (well-formed, flat-merge, nameless, and malformed variants) and FakeStore,
// an in-memory implementation of the syncer.Store contract with error
// injection and synchronous change delivery via Push. No external servers
// are required; store-adapter integration tests that need real
// infrastructure live next to the adapters instead.
package testutil
