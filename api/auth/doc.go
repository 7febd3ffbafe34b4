// Package auth resolves the calling principal of an HTTP request.
//
// Callers sign every mutating request with a secp256k1 key. The signed digest is
//
//	keccak256(method "\n" path "\n" timestamp "\n" nonce "\n" keccak256(body))
//
// and is sent as a 65-byte recoverable signature in X-Caller-Signature, together
// with the unix timestamp in X-Caller-Timestamp and a random hex nonce in
// X-Caller-Nonce. The principal is the account address of the recovered public
// key, so no key registration is needed.
//
// An Authenticator accepts each digest once. Digests are remembered for twice
// the allowed clock skew, after which the timestamp check rejects them anyway.
// A replayed request fails with ErrReplayedRequest.
package auth
