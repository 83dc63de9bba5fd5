// Package confsync keeps local configuration files synchronized with a
// single aggregated configuration document (the composite document) held in
// a remote configuration store.
//
// The composite bundles several named sub-configurations as adjacent
// <config name="..."> elements. A materialize pass fetches it, splits it by
// text-pattern scanning (the composite is a forest, not necessarily
// well-formed as a whole), applies a per-fragment write policy, and writes
// each piece under <InstallationRoot>/conf/. Most destinations are XML files
// that receive a declaration line; names ending in "properties" are written
// verbatim; the reserved apusic.conf destination merges the content of every
// same-named fragment into one flattened file. The publish flow pushes the
// locally persisted composite back to the store, and a long-lived
// subscription re-runs the materialize pass whenever the remote document
// changes.
//
// Package layout:
//
//   - xmlcodec: parse and canonical no-indent serialization, declaration
//     policy
//   - fragment: text-level fragment extraction from the composite
//   - materializer: path resolution under the installation root and the
//     per-fragment write policies
//   - syncer: the orchestrating service object (SyncOnce, PublishLocal,
//     Start/Stop) and the Store capability contract
//   - nacosclient, natsstore: store adapters (Nacos config service, NATS
//     JetStream KV)
//   - errors, pkg/retry, metric, health: classified errors, backoff retry,
//     Prometheus metrics, health monitoring
//   - cmd/confsync: the binary
//
// The installation root comes from the APUSIC_HOME environment variable and
// is required for every path resolution; without it writes fail closed.
package confsync
