package registry

import (
	"fmt"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/sasha-s/go-deadlock"
)

// DesignRegistry is the in-memory implementation of interfaces.DesignRegistry.
//
// Authority is deliberately asymmetric: only the creator (first contributor) may
// add contributors, while any contributor may append sequence references.
// Sequence ids are stored as weak references and are only checked against a
// SequenceLookup when one is configured with WithSequenceValidation.
type DesignRegistry struct {
	mutex   deadlock.RWMutex
	ids     idAllocator
	designs map[interfaces.DesignID]*interfaces.Design
	cfg     config
}

var _ interfaces.DesignRegistry = (*DesignRegistry)(nil)

// NewDesignRegistry creates an empty design registry. The first id it assigns is 1.
func NewDesignRegistry(opts ...Option) *DesignRegistry {
	return &DesignRegistry{
		designs: make(map[interfaces.DesignID]*interfaces.Design),
		cfg:     newConfig(opts),
	}
}

// CreateDesign stores a new design with caller as sole contributor and no sequences.
func (r *DesignRegistry) CreateDesign(caller interfaces.Principal, name, description string) (id interfaces.DesignID) {
	defer func() { r.cfg.observe(interfaces.DesignRegistryName, OpCreateDesign, caller, formatID(uint64(id)), nil) }()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	id = interfaces.DesignID(r.ids.next())
	r.designs[id] = &interfaces.Design{
		Name:          name,
		Description:   description,
		Contributors:  []interfaces.Principal{caller},
		GeneSequences: []interfaces.SequenceID{},
	}
	return id
}

// AddContributor appends contributor to the design. Only the creator may do this.
// Duplicates are kept.
func (r *DesignRegistry) AddContributor(caller interfaces.Principal, id interfaces.DesignID, contributor interfaces.Principal) (err error) {
	defer func() { r.cfg.observe(interfaces.DesignRegistryName, OpAddContributor, caller, formatID(uint64(id)), err) }()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	design, ok := r.designs[id]
	if !ok {
		return fmt.Errorf("add contributor: design %d: %w", id, interfaces.ErrNotFound)
	}
	if design.Creator() != caller {
		return fmt.Errorf("add contributor: design %d: caller %s is not the creator: %w", id, caller, interfaces.ErrUnauthorized)
	}

	design.Contributors = append(design.Contributors, contributor)
	return nil
}

// AddGeneSequence appends a sequence reference to the design. Any contributor may do this.
// Duplicates are kept.
func (r *DesignRegistry) AddGeneSequence(caller interfaces.Principal, id interfaces.DesignID, sequence interfaces.SequenceID) (err error) {
	defer func() { r.cfg.observe(interfaces.DesignRegistryName, OpAddGeneSequence, caller, formatID(uint64(id)), err) }()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	design, ok := r.designs[id]
	if !ok {
		return fmt.Errorf("add gene sequence: design %d: %w", id, interfaces.ErrNotFound)
	}
	if !design.HasContributor(caller) {
		return fmt.Errorf("add gene sequence: design %d: caller %s is not a contributor: %w", id, caller, interfaces.ErrUnauthorized)
	}
	if r.cfg.sequences != nil && !r.cfg.sequences.Exists(sequence) {
		return fmt.Errorf("add gene sequence: sequence %d: %w", sequence, interfaces.ErrNotFound)
	}

	design.GeneSequences = append(design.GeneSequences, sequence)
	return nil
}

// GetDesign returns a copy of the design and whether it exists.
func (r *DesignRegistry) GetDesign(id interfaces.DesignID) (interfaces.Design, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	design, ok := r.designs[id]
	if !ok {
		return interfaces.Design{}, false
	}
	return design.Clone(), true
}

// LastID returns the most recently assigned id, or 0 before the first design.
func (r *DesignRegistry) LastID() interfaces.DesignID {
	return interfaces.DesignID(r.ids.current())
}
