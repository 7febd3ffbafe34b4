// Package storage persists registry snapshots in content-addressed storage.
//
// A snapshot is the JSON encoding of registry.Snapshot and is identified by the
// SHA-256 hash of those bytes. Backends implement interfaces.StorageBackend:
//
//   - File system storage for single-host deployments and tests
//   - S3 compatible object storage
//   - IPFS, through the mutable file system of a local node
//
// # Storage URI Format
//
// Backends are configured with URIs:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/synbio-registry
//   - s3://bucket-name/prefix?region=us-west-2&endpoint=http://minio:9000
//   - ipfs://127.0.0.1:5001/synbio-registry?timeout=30s
//
// Several URIs combine into a MultiStorageBackend that writes to every
// available backend and reads from the first one holding the content.
//
// # Snapshots
//
// Snapshotter observes registry operations and keeps a dirty flag. Run stores a
// snapshot on every tick while state is dirty; the host also stores one on
// shutdown. Restore fetches a snapshot by id, verifies its hash and the
// administrator it was taken under, and rebuilds the registries with their id
// counters, so identifiers are never reused across restarts.
package storage
