package registry

import (
	"fmt"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

// Registries groups the three registries served by one host.
// They share construction options but no state.
type Registries struct {
	Verifiers *VerifierRegistry
	Sequences *SequenceRegistry
	Designs   *DesignRegistry
}

// New creates empty registries. strictSequenceRefs wires the design registry to
// validate sequence references against the sequence registry.
func New(administrator interfaces.Principal, strictSequenceRefs bool, opts ...Option) *Registries {
	sequences := NewSequenceRegistry(opts...)
	return &Registries{
		Verifiers: NewVerifierRegistry(administrator, opts...),
		Sequences: sequences,
		Designs:   NewDesignRegistry(designOptions(sequences, strictSequenceRefs, opts)...),
	}
}

func designOptions(sequences *SequenceRegistry, strict bool, opts []Option) []Option {
	if !strict {
		return opts
	}
	return append(append([]Option{}, opts...), WithSequenceValidation(sequences))
}

// Snapshot is the serializable state of all three registries.
// LastSequenceID and LastDesignID carry the id counters so restored registries
// never reuse an id.
type Snapshot struct {
	Administrator  interfaces.Principal                           `json:"administrator"`
	Verifiers      []interfaces.Principal                         `json:"verifiers"`
	Verifications  map[interfaces.OrganismID]interfaces.Principal `json:"verifications"`
	LastSequenceID interfaces.SequenceID                          `json:"last_sequence_id"`
	Sequences      map[interfaces.SequenceID]interfaces.Sequence  `json:"sequences"`
	LastDesignID   interfaces.DesignID                            `json:"last_design_id"`
	Designs        map[interfaces.DesignID]interfaces.Design      `json:"designs"`
}

// Snapshot captures the current state. Each registry is read under its own lock;
// there is no cross-registry consistency to preserve.
func (r *Registries) Snapshot() *Snapshot {
	snap := &Snapshot{}
	r.Verifiers.snapshotInto(snap)
	r.Sequences.snapshotInto(snap)
	r.Designs.snapshotInto(snap)
	return snap
}

// FromSnapshot rebuilds registries from snap. The snapshot is validated first:
// ids must be non-zero and not above their counter, and every design needs a creator.
func FromSnapshot(snap *Snapshot, strictSequenceRefs bool, opts ...Option) (*Registries, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	regs := New(snap.Administrator, strictSequenceRefs, opts...)

	for _, v := range snap.Verifiers {
		regs.Verifiers.verifiers[v] = struct{}{}
	}
	for organism, verifier := range snap.Verifications {
		regs.Verifiers.verifications[organism] = verifier
	}

	regs.Sequences.ids.reset(uint64(snap.LastSequenceID))
	for id, sequence := range snap.Sequences {
		regs.Sequences.sequences[id] = sequence
	}

	regs.Designs.ids.reset(uint64(snap.LastDesignID))
	for id, design := range snap.Designs {
		cloned := design.Clone()
		regs.Designs.designs[id] = &cloned
	}

	return regs, nil
}

// Validate checks the structural invariants of a snapshot.
func (s *Snapshot) Validate() error {
	for id := range s.Sequences {
		if id == 0 || id > s.LastSequenceID {
			return fmt.Errorf("snapshot: sequence id %d outside of (0, %d]: %w", id, s.LastSequenceID, interfaces.ErrInvalidArgument)
		}
	}
	for id, design := range s.Designs {
		if id == 0 || id > s.LastDesignID {
			return fmt.Errorf("snapshot: design id %d outside of (0, %d]: %w", id, s.LastDesignID, interfaces.ErrInvalidArgument)
		}
		if len(design.Contributors) == 0 {
			return fmt.Errorf("snapshot: design %d has no creator: %w", id, interfaces.ErrInvalidArgument)
		}
	}
	return nil
}

func (r *VerifierRegistry) snapshotInto(snap *Snapshot) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	snap.Administrator = r.administrator
	snap.Verifiers = r.sortedVerifiers()
	snap.Verifications = make(map[interfaces.OrganismID]interfaces.Principal, len(r.verifications))
	for organism, verifier := range r.verifications {
		snap.Verifications[organism] = verifier
	}
}

func (r *SequenceRegistry) snapshotInto(snap *Snapshot) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	snap.LastSequenceID = interfaces.SequenceID(r.ids.current())
	snap.Sequences = make(map[interfaces.SequenceID]interfaces.Sequence, len(r.sequences))
	for id, sequence := range r.sequences {
		snap.Sequences[id] = sequence
	}
}

func (r *DesignRegistry) snapshotInto(snap *Snapshot) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	snap.LastDesignID = interfaces.DesignID(r.ids.current())
	snap.Designs = make(map[interfaces.DesignID]interfaces.Design, len(r.designs))
	for id, design := range r.designs {
		snap.Designs[id] = design.Clone()
	}
}
