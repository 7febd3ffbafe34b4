package registry

import (
	"fmt"
	"strconv"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/sasha-s/go-deadlock"
)

// SequenceRegistry is the in-memory implementation of interfaces.SequenceRegistry.
// Authority over a record always belongs to its current owner and is re-checked on every call.
type SequenceRegistry struct {
	mutex     deadlock.RWMutex
	ids       idAllocator
	sequences map[interfaces.SequenceID]interfaces.Sequence
	cfg       config
}

var _ interfaces.SequenceRegistry = (*SequenceRegistry)(nil)

// NewSequenceRegistry creates an empty sequence registry. The first id it assigns is 1.
func NewSequenceRegistry(opts ...Option) *SequenceRegistry {
	return &SequenceRegistry{
		sequences: make(map[interfaces.SequenceID]interfaces.Sequence),
		cfg:       newConfig(opts),
	}
}

// RegisterSequence stores payload under a fresh id owned by caller.
// An empty payload is rejected before an id is allocated.
func (r *SequenceRegistry) RegisterSequence(caller interfaces.Principal, payload string) (id interfaces.SequenceID, err error) {
	defer func() {
		r.cfg.observe(interfaces.SequenceRegistryName, OpRegisterSequence, caller, formatID(uint64(id)), err)
	}()

	if payload == "" {
		return 0, fmt.Errorf("register sequence: empty payload: %w", interfaces.ErrInvalidArgument)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	id = interfaces.SequenceID(r.ids.next())
	r.sequences[id] = interfaces.Sequence{
		Owner:      caller,
		Payload:    payload,
		IsLicensed: false,
	}
	return id, nil
}

// LicenseSequence marks the sequence as licensed. Licensing twice is a no-op.
func (r *SequenceRegistry) LicenseSequence(caller interfaces.Principal, id interfaces.SequenceID) (err error) {
	defer func() { r.cfg.observe(interfaces.SequenceRegistryName, OpLicenseSequence, caller, formatID(uint64(id)), err) }()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	sequence, err := r.ownedBy(caller, id)
	if err != nil {
		return fmt.Errorf("license sequence: %w", err)
	}

	sequence.IsLicensed = true
	r.sequences[id] = sequence
	return nil
}

// TransferOwnership makes newOwner the owner of the sequence. The previous owner
// loses all authority over the record.
func (r *SequenceRegistry) TransferOwnership(caller interfaces.Principal, id interfaces.SequenceID, newOwner interfaces.Principal) (err error) {
	defer func() { r.cfg.observe(interfaces.SequenceRegistryName, OpTransferOwnership, caller, formatID(uint64(id)), err) }()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	sequence, err := r.ownedBy(caller, id)
	if err != nil {
		return fmt.Errorf("transfer ownership: %w", err)
	}

	sequence.Owner = newOwner
	r.sequences[id] = sequence
	return nil
}

// GetSequence returns the sequence record and whether it exists.
func (r *SequenceRegistry) GetSequence(id interfaces.SequenceID) (interfaces.Sequence, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sequence, ok := r.sequences[id]
	return sequence, ok
}

// Exists reports whether id has been registered.
func (r *SequenceRegistry) Exists(id interfaces.SequenceID) bool {
	_, ok := r.GetSequence(id)
	return ok
}

// ownedBy loads the record and checks ownership. Callers must hold the write lock.
func (r *SequenceRegistry) ownedBy(caller interfaces.Principal, id interfaces.SequenceID) (interfaces.Sequence, error) {
	sequence, ok := r.sequences[id]
	if !ok {
		return interfaces.Sequence{}, fmt.Errorf("sequence %d: %w", id, interfaces.ErrNotFound)
	}
	if sequence.Owner != caller {
		return interfaces.Sequence{}, fmt.Errorf("sequence %d: caller %s is not the owner: %w", id, caller, interfaces.ErrUnauthorized)
	}
	return sequence, nil
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// LastID returns the most recently assigned id, or 0 before the first registration.
func (r *SequenceRegistry) LastID() interfaces.SequenceID {
	return interfaces.SequenceID(r.ids.current())
}
