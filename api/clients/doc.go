/*
Package clients provides a client library for the provenance registry HTTP API.

RegistryClient mirrors the registry operations one to one. State-changing calls
are signed with the client's secp256k1 key; the server derives the caller from
that signature, so the key determines which principal the client acts as.

Failed results are mapped back onto the registry error taxonomy, so callers can
test them with errors.Is:

	client := clients.NewRegistryClient("http://localhost:8080", key)
	if err := client.LicenseSequence(ctx, 1); errors.Is(err, interfaces.ErrUnauthorized) {
		// not the owner
	}

Reads of unknown sequences or designs return found=false rather than an error.
*/
package clients
