// Package interfaces defines core interfaces and types for the synthetic-biology
// provenance registries, separating interface definitions from implementations.
//
// # Registry Interfaces
//
// VerifierRegistry: administrator-managed verifier set and organism biosafety
// attestations.
//
// SequenceRegistry: gene-sequence records with an owner, a payload and a
// license flag. Only the current owner may license or transfer a record.
//
// DesignRegistry: organism designs with an ordered contributor list, whose first
// element is the creator, and an ordered list of referenced sequence ids.
//
// # Errors
//
// Failures carry one of ErrUnauthorized, ErrNotFound or ErrInvalidArgument.
// ErrorCode maps them to the codes used in tagged results (403, 404, 400).
//
// # Storage Interfaces
//
// StorageBackend: content-addressed storage used by the host to persist registry
// snapshots (file, S3, IPFS).
//
// StorageBackendFactory: creates storage backends from URI strings and aggregates
// them into a multi-backend for redundancy.
//
// # Types
//
//   - Principal: 20-byte account address identifying a caller
//   - OrganismID, SequenceID, DesignID: registry keys
//   - ContentID: 32-byte SHA-256 hash for content addressing
package interfaces
