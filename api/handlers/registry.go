package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/synbio-provenance-registry/api"
	"github.com/ruteri/synbio-provenance-registry/api/auth"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

// VerifierDirectory is a verifier registry that can also list its members.
type VerifierDirectory interface {
	interfaces.VerifierRegistry
	Administrator() interfaces.Principal
	Verifiers() []interfaces.Principal
}

// Handler exposes the three registries over HTTP.
// Mutating routes run behind the authenticator, which resolves the caller.
type Handler struct {
	verifiers VerifierDirectory
	sequences interfaces.SequenceRegistry
	designs   interfaces.DesignRegistry
	authn     *auth.Authenticator
	log       *slog.Logger
}

// NewHandler creates a new HTTP request handler for the registries.
func NewHandler(verifiers VerifierDirectory, sequences interfaces.SequenceRegistry, designs interfaces.DesignRegistry, authn *auth.Authenticator, log *slog.Logger) *Handler {
	return &Handler{
		verifiers: verifiers,
		sequences: sequences,
		designs:   designs,
		authn:     authn,
		log:       log,
	}
}

// RegisterRoutes configures the HTTP router with the registry endpoints:
//   - GET /api/verifiers - List the administrator and verifiers
//   - GET /api/verifiers/{principal} - Check verifier membership
//   - PUT /api/verifiers/{principal} - Add a verifier (signed)
//   - DELETE /api/verifiers/{principal} - Remove a verifier (signed)
//   - GET /api/organisms/{organism_id} - Read the verification record
//   - POST /api/organisms/{organism_id}/verify - Verify an organism (signed)
//   - POST /api/sequences - Register a sequence (signed)
//   - GET /api/sequences/{sequence_id} - Read a sequence
//   - POST /api/sequences/{sequence_id}/license - License a sequence (signed)
//   - POST /api/sequences/{sequence_id}/transfer - Transfer ownership (signed)
//   - POST /api/designs - Create a design (signed)
//   - GET /api/designs/{design_id} - Read a design
//   - POST /api/designs/{design_id}/contributors - Add a contributor (signed)
//   - POST /api/designs/{design_id}/sequences - Add a sequence reference (signed)
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/verifiers", h.HandleListVerifiers)
	r.Get("/api/verifiers/{principal}", h.HandleIsVerifier)
	r.Get("/api/organisms/{organism_id}", h.HandleIsOrganismVerified)
	r.Get("/api/sequences/{sequence_id}", h.HandleGetSequence)
	r.Get("/api/designs/{design_id}", h.HandleGetDesign)

	r.Group(func(r chi.Router) {
		r.Use(h.authn.Middleware)

		r.Put("/api/verifiers/{principal}", h.HandleAddVerifier)
		r.Delete("/api/verifiers/{principal}", h.HandleRemoveVerifier)
		r.Post("/api/organisms/{organism_id}/verify", h.HandleVerifyOrganism)

		r.Post("/api/sequences", h.HandleRegisterSequence)
		r.Post("/api/sequences/{sequence_id}/license", h.HandleLicenseSequence)
		r.Post("/api/sequences/{sequence_id}/transfer", h.HandleTransferOwnership)

		r.Post("/api/designs", h.HandleCreateDesign)
		r.Post("/api/designs/{design_id}/contributors", h.HandleAddContributor)
		r.Post("/api/designs/{design_id}/sequences", h.HandleAddGeneSequence)
	})
}

// HandleListVerifiers returns the administrator and the current verifier set.
func (h *Handler) HandleListVerifiers(w http.ResponseWriter, r *http.Request) {
	api.WriteResult(w, h.log, api.Ok(api.VerifiersResponse{
		Administrator: h.verifiers.Administrator(),
		Verifiers:     h.verifiers.Verifiers(),
	}))
}

// HandleIsVerifier returns whether the principal in the path is a verifier.
func (h *Handler) HandleIsVerifier(w http.ResponseWriter, r *http.Request) {
	target, ok := h.principalParam(w, r)
	if !ok {
		return
	}
	api.WriteResult(w, h.log, api.Ok(h.verifiers.IsVerifier(target)))
}

// HandleAddVerifier adds the principal in the path to the verifier set.
func (h *Handler) HandleAddVerifier(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	target, ok := h.principalParam(w, r)
	if !ok {
		return
	}
	h.writeOutcome(w, nil, h.verifiers.AddVerifier(caller, target))
}

// HandleRemoveVerifier removes the principal in the path from the verifier set.
func (h *Handler) HandleRemoveVerifier(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	target, ok := h.principalParam(w, r)
	if !ok {
		return
	}
	h.writeOutcome(w, nil, h.verifiers.RemoveVerifier(caller, target))
}

// HandleVerifyOrganism records the caller as verifier of the organism.
func (h *Handler) HandleVerifyOrganism(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	organism, ok := h.idParam(w, r, "organism_id")
	if !ok {
		return
	}
	h.writeOutcome(w, nil, h.verifiers.VerifyOrganism(caller, interfaces.OrganismID(organism)))
}

// HandleIsOrganismVerified returns the verification record, defaulting to unverified.
func (h *Handler) HandleIsOrganismVerified(w http.ResponseWriter, r *http.Request) {
	organism, ok := h.idParam(w, r, "organism_id")
	if !ok {
		return
	}
	api.WriteResult(w, h.log, api.Ok(h.verifiers.IsOrganismVerified(interfaces.OrganismID(organism))))
}

// HandleRegisterSequence registers the sequence in the body and returns its id.
func (h *Handler) HandleRegisterSequence(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req api.RegisterSequenceRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	id, err := h.sequences.RegisterSequence(caller, req.Sequence)
	h.writeOutcome(w, id, err)
}

// HandleLicenseSequence marks the sequence as licensed.
func (h *Handler) HandleLicenseSequence(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "sequence_id")
	if !ok {
		return
	}
	h.writeOutcome(w, nil, h.sequences.LicenseSequence(caller, interfaces.SequenceID(id)))
}

// HandleTransferOwnership hands the sequence to the new owner in the body.
func (h *Handler) HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "sequence_id")
	if !ok {
		return
	}
	var req api.TransferOwnershipRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	h.writeOutcome(w, nil, h.sequences.TransferOwnership(caller, interfaces.SequenceID(id), req.NewOwner))
}

// HandleGetSequence returns the sequence record, or null when it does not exist.
func (h *Handler) HandleGetSequence(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "sequence_id")
	if !ok {
		return
	}
	sequence, found := h.sequences.GetSequence(interfaces.SequenceID(id))
	if !found {
		api.WriteResult(w, h.log, api.Ok(nil))
		return
	}
	api.WriteResult(w, h.log, api.Ok(sequence))
}

// HandleCreateDesign creates a design with the caller as creator and returns its id.
func (h *Handler) HandleCreateDesign(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req api.CreateDesignRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	api.WriteResult(w, h.log, api.Ok(h.designs.CreateDesign(caller, req.Name, req.Description)))
}

// HandleAddContributor appends the contributor in the body to the design.
func (h *Handler) HandleAddContributor(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "design_id")
	if !ok {
		return
	}
	var req api.AddContributorRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	h.writeOutcome(w, nil, h.designs.AddContributor(caller, interfaces.DesignID(id), req.Contributor))
}

// HandleAddGeneSequence appends the sequence id in the body to the design.
func (h *Handler) HandleAddGeneSequence(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "design_id")
	if !ok {
		return
	}
	var req api.AddGeneSequenceRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	h.writeOutcome(w, nil, h.designs.AddGeneSequence(caller, interfaces.DesignID(id), req.SequenceID))
}

// HandleGetDesign returns the design record, or null when it does not exist.
func (h *Handler) HandleGetDesign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "design_id")
	if !ok {
		return
	}
	design, found := h.designs.GetDesign(interfaces.DesignID(id))
	if !found {
		api.WriteResult(w, h.log, api.Ok(nil))
		return
	}
	api.WriteResult(w, h.log, api.Ok(design))
}

func (h *Handler) writeOutcome(w http.ResponseWriter, value any, err error) {
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	api.WriteResult(w, h.log, api.Ok(value))
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (interfaces.Principal, bool) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		h.log.Error("No authenticated caller in request context", "path", r.URL.Path)
		api.WriteResult(w, h.log, api.Fail(interfaces.CodeUnauthenticated))
		return interfaces.Principal{}, false
	}
	return caller, true
}

func (h *Handler) principalParam(w http.ResponseWriter, r *http.Request) (interfaces.Principal, bool) {
	raw := chi.URLParam(r, "principal")
	p, err := interfaces.NewPrincipalFromHex(raw)
	if err != nil {
		h.log.Debug("Invalid principal", "err", err, "principal", raw)
		api.WriteResult(w, h.log, api.Fail(interfaces.CodeInvalidArgument))
		return interfaces.Principal{}, false
	}
	return p, true
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		h.log.Debug("Invalid identifier", "err", err, name, raw)
		api.WriteResult(w, h.log, api.Fail(interfaces.CodeInvalidArgument))
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Debug("Invalid request body", "err", fmt.Errorf("decoding %T: %w", v, err))
		api.WriteResult(w, h.log, api.Fail(interfaces.CodeInvalidArgument))
		return false
	}
	if req, ok := v.(interface{ Validate() error }); ok {
		if err := req.Validate(); err != nil {
			api.WriteError(w, h.log, err)
			return false
		}
	}
	return true
}
