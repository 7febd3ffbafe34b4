// Command registry-client is a command line client for registry-server.
//
// Read commands work without a key. State-changing commands sign the request
// with --private-key (or SYNBIO_PRIVATE_KEY); the server treats the recovered
// address as the caller.
//
// Example usage:
//
//	registry-client keygen
//	export SYNBIO_PRIVATE_KEY=0x...
//	registry-client sequence register ATCGGCTA
//	registry-client design create "E. coli 2.0" "Enhanced E. coli strain"
//	registry-client design add-sequence 1 1
//	registry-client design get 1
package main
