/*
Package handlers implements the HTTP endpoints of the provenance registries.

Handler maps every registry operation onto a route and answers with the tagged
api.Result envelope. Read routes are public. State-changing routes sit behind
auth.Authenticator, which recovers the calling principal from the request
signature and stores it in the request context; handlers never take the caller
from the URL or body.

# Routes

	GET    /api/verifiers
	GET    /api/verifiers/{principal}
	PUT    /api/verifiers/{principal}                  (administrator)
	DELETE /api/verifiers/{principal}                  (administrator)
	GET    /api/organisms/{organism_id}
	POST   /api/organisms/{organism_id}/verify         (verifier)
	POST   /api/sequences                              {"sequence": "..."}
	GET    /api/sequences/{sequence_id}
	POST   /api/sequences/{sequence_id}/license        (owner)
	POST   /api/sequences/{sequence_id}/transfer       (owner) {"new_owner": "0x..."}
	POST   /api/designs                                {"name": "...", "description": "..."}
	GET    /api/designs/{design_id}
	POST   /api/designs/{design_id}/contributors       (creator) {"contributor": "0x..."}
	POST   /api/designs/{design_id}/sequences          (contributor) {"sequence_id": 1}

# Status codes

  - 200 OK: the operation succeeded; reads of unknown records return a null value
  - 400 Bad Request: malformed identifier, principal, body or empty sequence
  - 401 Unauthorized: missing or invalid request signature
  - 403 Forbidden: the caller lacks the required role
  - 404 Not Found: the addressed record does not exist
*/
package handlers
