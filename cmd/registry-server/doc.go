// Command registry-server serves the verifier, gene-sequence and design
// registries over HTTP.
//
// State is held in memory. When one or more --storage locations are given the
// server stores a content-addressed JSON snapshot of all registries every
// --snapshot-interval (only when something changed) and once more on shutdown.
// The content id of each snapshot is logged; pass it back with --restore to
// start from that state.
//
// Mutating requests must be signed with the caller's secp256k1 key, see
// package api/auth. The --admin address is the only principal that may manage
// verifiers.
//
// Example usage:
//
//	registry-server \
//	  --admin 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed \
//	  --storage file:///var/lib/synbio \
//	  --storage "s3://synbio-snapshots/prod?region=eu-west-1" \
//	  --snapshot-interval 30s
//
// All server flags can also be set from SYNBIO_* environment variables.
package main
