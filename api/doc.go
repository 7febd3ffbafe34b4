/*
Package api provides the HTTP surface of the provenance registries.

This package is organized into four subpackages:

1. auth - Resolution of the calling principal from signed requests
2. handlers - Routes mapping registry operations onto HTTP
3. servers - The HTTP host with health, drain and pprof endpoints
4. clients - A signing client for the HTTP API

The package itself holds the wire types shared by them: the tagged Result
envelope, request bodies and the HTTP server configuration.

# Result envelope

Every endpoint answers with

	{"success": true, "value": <value>}

or

	{"success": false, "error": <code>}

where the code is 403 for unauthorized callers, 404 for unknown records and
400 for malformed input. Requests whose signature cannot be verified are
answered with 401. The HTTP status mirrors the code.

# Caller identity

Registry operations act on behalf of an already-authenticated principal. The
API derives that principal by recovering the secp256k1 public key from the
X-Caller-Signature header; see package auth for the signed message format.
*/
package api
