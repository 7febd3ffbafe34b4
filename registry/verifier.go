package registry

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/sasha-s/go-deadlock"
)

// Operation names reported to observers.
const (
	OpAddVerifier       = "add-verifier"
	OpRemoveVerifier    = "remove-verifier"
	OpVerifyOrganism    = "verify-organism"
	OpRegisterSequence  = "register-sequence"
	OpLicenseSequence   = "license-sequence"
	OpTransferOwnership = "transfer-ownership"
	OpCreateDesign      = "create-design"
	OpAddContributor    = "add-contributor"
	OpAddGeneSequence   = "add-gene-sequence"
)

// VerifierRegistry is the in-memory implementation of interfaces.VerifierRegistry.
// The administrator is fixed at construction and is the only principal allowed to
// change the verifier set.
type VerifierRegistry struct {
	mutex         deadlock.RWMutex
	administrator interfaces.Principal
	verifiers     map[interfaces.Principal]struct{}
	verifications map[interfaces.OrganismID]interfaces.Principal
	cfg           config
}

var _ interfaces.VerifierRegistry = (*VerifierRegistry)(nil)

// NewVerifierRegistry creates an empty verifier registry governed by administrator.
func NewVerifierRegistry(administrator interfaces.Principal, opts ...Option) *VerifierRegistry {
	return &VerifierRegistry{
		administrator: administrator,
		verifiers:     make(map[interfaces.Principal]struct{}),
		verifications: make(map[interfaces.OrganismID]interfaces.Principal),
		cfg:           newConfig(opts),
	}
}

// Administrator returns the principal allowed to manage verifiers.
func (r *VerifierRegistry) Administrator() interfaces.Principal {
	return r.administrator
}

// AddVerifier inserts target into the verifier set. Adding an existing verifier is a no-op.
func (r *VerifierRegistry) AddVerifier(caller, target interfaces.Principal) (err error) {
	defer func() { r.cfg.observe(interfaces.VerifierRegistryName, OpAddVerifier, caller, target.String(), err) }()

	if caller != r.administrator {
		return fmt.Errorf("add verifier %s: caller %s is not the administrator: %w", target, caller, interfaces.ErrUnauthorized)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.verifiers[target] = struct{}{}
	return nil
}

// RemoveVerifier removes target from the verifier set. Removing an absent verifier is a no-op.
// Verifications already recorded by target are kept.
func (r *VerifierRegistry) RemoveVerifier(caller, target interfaces.Principal) (err error) {
	defer func() { r.cfg.observe(interfaces.VerifierRegistryName, OpRemoveVerifier, caller, target.String(), err) }()

	if caller != r.administrator {
		return fmt.Errorf("remove verifier %s: caller %s is not the administrator: %w", target, caller, interfaces.ErrUnauthorized)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.verifiers, target)
	return nil
}

// VerifyOrganism records caller as the verifier of organism, replacing any earlier attestation.
// Membership is checked under the same lock as the write.
func (r *VerifierRegistry) VerifyOrganism(caller interfaces.Principal, organism interfaces.OrganismID) (err error) {
	defer func() { r.cfg.observe(interfaces.VerifierRegistryName, OpVerifyOrganism, caller, formatID(uint64(organism)), err) }()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.verifiers[caller]; !ok {
		return fmt.Errorf("verify organism %d: caller %s is not a verifier: %w", organism, caller, interfaces.ErrUnauthorized)
	}

	r.verifications[organism] = caller
	return nil
}

// IsOrganismVerified returns the attestation for organism, or the unverified default.
func (r *VerifierRegistry) IsOrganismVerified(organism interfaces.OrganismID) interfaces.Verification {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	verifier, ok := r.verifications[organism]
	if !ok {
		return interfaces.Verification{}
	}
	return interfaces.Verification{IsVerified: true, Verifier: &verifier}
}

// IsVerifier reports whether p is currently a verifier.
func (r *VerifierRegistry) IsVerifier(p interfaces.Principal) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.verifiers[p]
	return ok
}

// Verifiers returns the current verifier set in byte order.
func (r *VerifierRegistry) Verifiers() []interfaces.Principal {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.sortedVerifiers()
}

func (r *VerifierRegistry) sortedVerifiers() []interfaces.Principal {
	res := make([]interfaces.Principal, 0, len(r.verifiers))
	for v := range r.verifiers {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i][:], res[j][:]) < 0
	})
	return res
}
