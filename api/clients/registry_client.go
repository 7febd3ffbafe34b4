package clients

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ruteri/synbio-provenance-registry/api"
	"github.com/ruteri/synbio-provenance-registry/api/auth"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

// RegistryClient calls the registry HTTP API, signing state-changing requests
// with its private key. The server resolves the caller from that signature.
type RegistryClient struct {
	baseURL    string
	privateKey *ecdsa.PrivateKey
	httpClient *http.Client
	now        func() time.Time
}

// NewRegistryClient creates a client for the API at baseURL (e.g. "http://localhost:8080").
// privateKey may be nil for a read-only client. The default timeout is 30 seconds.
func NewRegistryClient(baseURL string, privateKey *ecdsa.PrivateKey, timeout ...time.Duration) *RegistryClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &RegistryClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		privateKey: privateKey,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
		now: time.Now,
	}
}

// Caller returns the principal this client acts as.
func (c *RegistryClient) Caller() (interfaces.Principal, error) {
	if c.privateKey == nil {
		return interfaces.Principal{}, errors.New("client has no private key")
	}
	return auth.PrincipalOf(c.privateKey), nil
}

// AddVerifier adds target to the verifier set. The client key must be the administrator's.
func (c *RegistryClient) AddVerifier(ctx context.Context, target interfaces.Principal) error {
	return c.exec(ctx, http.MethodPut, "/api/verifiers/"+target.String(), nil, nil)
}

// RemoveVerifier removes target from the verifier set.
func (c *RegistryClient) RemoveVerifier(ctx context.Context, target interfaces.Principal) error {
	return c.exec(ctx, http.MethodDelete, "/api/verifiers/"+target.String(), nil, nil)
}

// IsVerifier reports verifier set membership.
func (c *RegistryClient) IsVerifier(ctx context.Context, p interfaces.Principal) (bool, error) {
	var res bool
	err := c.query(ctx, "/api/verifiers/"+p.String(), &res)
	return res, err
}

// ListVerifiers returns the administrator and the verifier set.
func (c *RegistryClient) ListVerifiers(ctx context.Context) (*api.VerifiersResponse, error) {
	var res api.VerifiersResponse
	if err := c.query(ctx, "/api/verifiers", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyOrganism attests the organism as verified by the client's principal.
func (c *RegistryClient) VerifyOrganism(ctx context.Context, organism interfaces.OrganismID) error {
	return c.exec(ctx, http.MethodPost, fmt.Sprintf("/api/organisms/%d/verify", organism), nil, nil)
}

// IsOrganismVerified returns the verification record of the organism.
func (c *RegistryClient) IsOrganismVerified(ctx context.Context, organism interfaces.OrganismID) (interfaces.Verification, error) {
	var res interfaces.Verification
	err := c.query(ctx, fmt.Sprintf("/api/organisms/%d", organism), &res)
	return res, err
}

// RegisterSequence registers payload and returns the new sequence id.
func (c *RegistryClient) RegisterSequence(ctx context.Context, payload string) (interfaces.SequenceID, error) {
	var id interfaces.SequenceID
	err := c.exec(ctx, http.MethodPost, "/api/sequences", api.RegisterSequenceRequest{Sequence: payload}, &id)
	return id, err
}

// LicenseSequence marks the sequence as licensed.
func (c *RegistryClient) LicenseSequence(ctx context.Context, id interfaces.SequenceID) error {
	return c.exec(ctx, http.MethodPost, fmt.Sprintf("/api/sequences/%d/license", id), nil, nil)
}

// TransferOwnership hands the sequence to newOwner.
func (c *RegistryClient) TransferOwnership(ctx context.Context, id interfaces.SequenceID, newOwner interfaces.Principal) error {
	return c.exec(ctx, http.MethodPost, fmt.Sprintf("/api/sequences/%d/transfer", id), api.TransferOwnershipRequest{NewOwner: newOwner}, nil)
}

// GetSequence returns the sequence and whether it exists.
func (c *RegistryClient) GetSequence(ctx context.Context, id interfaces.SequenceID) (interfaces.Sequence, bool, error) {
	res, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/sequences/%d", id), nil)
	if err != nil {
		return interfaces.Sequence{}, false, err
	}
	var seq interfaces.Sequence
	found, err := res.Decode(&seq)
	return seq, found, err
}

// CreateDesign creates a design with the client's principal as creator.
func (c *RegistryClient) CreateDesign(ctx context.Context, name, description string) (interfaces.DesignID, error) {
	var id interfaces.DesignID
	err := c.exec(ctx, http.MethodPost, "/api/designs", api.CreateDesignRequest{Name: name, Description: description}, &id)
	return id, err
}

// AddContributor appends contributor to the design.
func (c *RegistryClient) AddContributor(ctx context.Context, id interfaces.DesignID, contributor interfaces.Principal) error {
	return c.exec(ctx, http.MethodPost, fmt.Sprintf("/api/designs/%d/contributors", id), api.AddContributorRequest{Contributor: contributor}, nil)
}

// AddGeneSequence appends a sequence reference to the design.
func (c *RegistryClient) AddGeneSequence(ctx context.Context, id interfaces.DesignID, sequence interfaces.SequenceID) error {
	return c.exec(ctx, http.MethodPost, fmt.Sprintf("/api/designs/%d/sequences", id), api.AddGeneSequenceRequest{SequenceID: sequence}, nil)
}

// GetDesign returns the design and whether it exists.
func (c *RegistryClient) GetDesign(ctx context.Context, id interfaces.DesignID) (interfaces.Design, bool, error) {
	res, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/designs/%d", id), nil)
	if err != nil {
		return interfaces.Design{}, false, err
	}
	var design interfaces.Design
	found, err := res.Decode(&design)
	return design, found, err
}

// Do sends a request and returns the decoded envelope without interpreting it.
// Requests other than GET are signed.
func (c *RegistryClient) Do(ctx context.Context, method, path string, body any) (*api.RawResult, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if method != http.MethodGet {
		if c.privateKey == nil {
			return nil, errors.New("signing key required for state-changing requests")
		}
		if err := auth.SignRequest(req, c.privateKey, c.now()); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var res api.RawResult
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, fmt.Errorf("unexpected response %d: %s", resp.StatusCode, string(respBody))
	}
	return &res, nil
}

func (c *RegistryClient) exec(ctx context.Context, method, path string, body, value any) error {
	res, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if value != nil {
		_, err = res.Decode(value)
	}
	return err
}

func (c *RegistryClient) query(ctx context.Context, path string, value any) error {
	return c.exec(ctx, http.MethodGet, path, nil, value)
}
