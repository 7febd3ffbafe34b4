package interfaces

// VerifierRegistry gates which principals may attest organisms as biosafety-verified.
type VerifierRegistry interface {
	// AddVerifier inserts target into the verifier set. Administrator only.
	AddVerifier(caller, target Principal) error

	// RemoveVerifier removes target from the verifier set. Administrator only.
	RemoveVerifier(caller, target Principal) error

	// VerifyOrganism records caller as the attesting verifier of the organism.
	VerifyOrganism(caller Principal, organism OrganismID) error

	// IsOrganismVerified returns the stored attestation or the unverified default.
	IsOrganismVerified(organism OrganismID) Verification

	// IsVerifier reports verifier set membership.
	IsVerifier(p Principal) bool
}

// SequenceRegistry records ownership and licensing state of gene sequences.
type SequenceRegistry interface {
	// RegisterSequence stores a new sequence owned by caller and returns its id.
	RegisterSequence(caller Principal, payload string) (SequenceID, error)

	// LicenseSequence marks the sequence as licensed. Owner only.
	LicenseSequence(caller Principal, id SequenceID) error

	// TransferOwnership hands the sequence to newOwner. Owner only.
	TransferOwnership(caller Principal, id SequenceID, newOwner Principal) error

	// GetSequence returns the record and whether it exists.
	GetSequence(id SequenceID) (Sequence, bool)
}

// DesignRegistry tracks organism designs, their contributors and referenced sequences.
type DesignRegistry interface {
	// CreateDesign stores a new design with caller as its creator and returns its id.
	CreateDesign(caller Principal, name, description string) DesignID

	// AddContributor appends a contributor. Creator only.
	AddContributor(caller Principal, id DesignID, contributor Principal) error

	// AddGeneSequence appends a sequence reference. Any contributor.
	AddGeneSequence(caller Principal, id DesignID, sequence SequenceID) error

	// GetDesign returns a copy of the record and whether it exists.
	GetDesign(id DesignID) (Design, bool)
}

// SequenceLookup answers whether a sequence id has been registered.
type SequenceLookup interface {
	Exists(id SequenceID) bool
}

// RegistryName identifies one of the three registries.
type RegistryName string

const (
	VerifierRegistryName RegistryName = "verifier"
	SequenceRegistryName RegistryName = "sequence"
	DesignRegistryName   RegistryName = "design"
)

// Operation describes a completed state-changing call, successful or not.
type Operation struct {
	Registry RegistryName
	Name     string
	Caller   Principal
	// Subject is the record the call addressed (verifier principal or numeric id).
	Subject string
	// Err is nil when the call changed (or idempotently confirmed) state.
	Err error
}

// OperationObserver is notified after every state-changing call, outside of registry locks.
type OperationObserver interface {
	ObserveOperation(op Operation)
}

// Observers fans an operation out to several observers in order.
type Observers []OperationObserver

// ObserveOperation implements OperationObserver.
func (o Observers) ObserveOperation(op Operation) {
	for _, observer := range o {
		if observer != nil {
			observer.ObserveOperation(op)
		}
	}
}
