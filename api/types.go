package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

// ErrUnauthenticated is reported when the server could not resolve a caller
// from the request signature.
var ErrUnauthenticated = errors.New("unauthenticated")

// Result is the tagged envelope returned by every registry endpoint.
// On success Value carries the operation's return value (null for missing
// records and for operations without one). On failure Error carries the code.
type Result struct {
	Success bool
	Value   any
	Error   int
}

// Ok wraps a successful return value.
func Ok(value any) Result {
	return Result{Success: true, Value: value}
}

// Fail wraps an error code.
func Fail(code int) Result {
	return Result{Success: false, Error: code}
}

// MarshalJSON drops the value from failed results.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Error   int  `json:"error"`
		}{false, r.Error})
	}
	return json.Marshal(struct {
		Success bool `json:"success"`
		Value   any  `json:"value"`
	}{true, r.Value})
}

// RawResult is the client-side view of Result with the value left undecoded.
type RawResult struct {
	Success bool            `json:"success"`
	Value   json.RawMessage `json:"value"`
	Error   int             `json:"error,omitempty"`
}

// Err converts a failed result back into the registry error taxonomy.
// Codes outside of it are reported with the numeric code.
func (r *RawResult) Err() error {
	if r.Success {
		return nil
	}
	if err := interfaces.ErrorFromCode(r.Error); err != nil {
		return err
	}
	if r.Error == interfaces.CodeUnauthenticated {
		return ErrUnauthenticated
	}
	return fmt.Errorf("registry call failed with code %d", r.Error)
}

// Decode unmarshals the value into v. A null value leaves v untouched and reports false.
func (r *RawResult) Decode(v any) (bool, error) {
	if len(r.Value) == 0 || string(r.Value) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(r.Value, v); err != nil {
		return false, fmt.Errorf("failed to decode result value: %w", err)
	}
	return true, nil
}

// RegisterSequenceRequest is the body of POST /api/sequences.
type RegisterSequenceRequest struct {
	Sequence string `json:"sequence"`
}

// TransferOwnershipRequest is the body of POST /api/sequences/{sequence_id}/transfer.
type TransferOwnershipRequest struct {
	NewOwner interfaces.Principal `json:"new_owner"`
}

// Validate rejects a missing new owner.
func (r *TransferOwnershipRequest) Validate() error {
	return requirePrincipal("new_owner", r.NewOwner)
}

// CreateDesignRequest is the body of POST /api/designs.
type CreateDesignRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddContributorRequest is the body of POST /api/designs/{design_id}/contributors.
type AddContributorRequest struct {
	Contributor interfaces.Principal `json:"contributor"`
}

// Validate rejects a missing contributor.
func (r *AddContributorRequest) Validate() error {
	return requirePrincipal("contributor", r.Contributor)
}

// AddGeneSequenceRequest is the body of POST /api/designs/{design_id}/sequences.
type AddGeneSequenceRequest struct {
	SequenceID interfaces.SequenceID `json:"sequence_id"`
}

// VerifiersResponse is the value of GET /api/verifiers.
type VerifiersResponse struct {
	Administrator interfaces.Principal   `json:"administrator"`
	Verifiers     []interfaces.Principal `json:"verifiers"`
}

func requirePrincipal(field string, p interfaces.Principal) error {
	if p.IsZero() {
		return fmt.Errorf("%s is missing or zero: %w", field, interfaces.ErrInvalidArgument)
	}
	return nil
}
