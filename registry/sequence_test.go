package registry

import (
	"sync"
	"testing"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceRegistry_RegisterAndGet(t *testing.T) {
	r := NewSequenceRegistry()

	id, err := r.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)
	assert.Equal(t, interfaces.SequenceID(1), id)

	seq, ok := r.GetSequence(id)
	require.True(t, ok)
	assert.Equal(t, interfaces.Sequence{Owner: alice, Payload: "ATCG", IsLicensed: false}, seq)

	id2, err := r.RegisterSequence(bob, "GGCC")
	require.NoError(t, err)
	assert.Equal(t, interfaces.SequenceID(2), id2)

	_, ok = r.GetSequence(3)
	assert.False(t, ok)
	assert.False(t, r.Exists(0))
	assert.True(t, r.Exists(2))
}

func TestSequenceRegistry_DuplicatePayloadsGetDistinctIDs(t *testing.T) {
	r := NewSequenceRegistry()

	id1, err := r.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)
	id2, err := r.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestSequenceRegistry_EmptyPayloadRejected(t *testing.T) {
	r := NewSequenceRegistry()

	_, err := r.RegisterSequence(alice, "")
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)

	// The rejected call did not consume an id
	id, err := r.RegisterSequence(alice, "A")
	require.NoError(t, err)
	assert.Equal(t, interfaces.SequenceID(1), id)
}

func TestSequenceRegistry_License(t *testing.T) {
	r := NewSequenceRegistry()
	id, err := r.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)

	err = r.LicenseSequence(bob, id)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
	seq, _ := r.GetSequence(id)
	assert.False(t, seq.IsLicensed)

	require.NoError(t, r.LicenseSequence(alice, id))
	seq, _ = r.GetSequence(id)
	assert.True(t, seq.IsLicensed)

	// Idempotent
	require.NoError(t, r.LicenseSequence(alice, id))
	seq, _ = r.GetSequence(id)
	assert.True(t, seq.IsLicensed)
}

func TestSequenceRegistry_MissingSequence(t *testing.T) {
	r := NewSequenceRegistry()

	assert.ErrorIs(t, r.LicenseSequence(alice, 42), interfaces.ErrNotFound)
	assert.ErrorIs(t, r.TransferOwnership(alice, 42, bob), interfaces.ErrNotFound)
	assert.ErrorIs(t, r.LicenseSequence(alice, 0), interfaces.ErrNotFound)
}

func TestSequenceRegistry_TransferOwnership(t *testing.T) {
	r := NewSequenceRegistry()
	id, err := r.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)

	err = r.TransferOwnership(bob, id, bob)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)

	require.NoError(t, r.TransferOwnership(alice, id, bob))
	seq, _ := r.GetSequence(id)
	assert.Equal(t, bob, seq.Owner)
	assert.Equal(t, "ATCG", seq.Payload)

	// Previous owner lost all authority
	assert.ErrorIs(t, r.TransferOwnership(alice, id, alice), interfaces.ErrUnauthorized)
	assert.ErrorIs(t, r.LicenseSequence(alice, id), interfaces.ErrUnauthorized)

	// New owner has it
	require.NoError(t, r.LicenseSequence(bob, id))
	seq, _ = r.GetSequence(id)
	assert.True(t, seq.IsLicensed)
}

func TestSequenceRegistry_TransferToSelf(t *testing.T) {
	r := NewSequenceRegistry()
	id, err := r.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)

	require.NoError(t, r.TransferOwnership(alice, id, alice))
	seq, _ := r.GetSequence(id)
	assert.Equal(t, alice, seq.Owner)
}

func TestSequenceRegistry_LicenseSurvivesTransfer(t *testing.T) {
	r := NewSequenceRegistry()
	id, err := r.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)
	require.NoError(t, r.LicenseSequence(alice, id))
	require.NoError(t, r.TransferOwnership(alice, id, bob))

	seq, _ := r.GetSequence(id)
	assert.True(t, seq.IsLicensed)
	assert.Equal(t, bob, seq.Owner)
}

func TestSequenceRegistry_Observer(t *testing.T) {
	obs := &recordingObserver{}
	r := NewSequenceRegistry(WithObserver(obs))

	id, err := r.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)
	require.Error(t, r.LicenseSequence(bob, id))
	_, err = r.RegisterSequence(alice, "")
	require.Error(t, err)

	ops := obs.operations()
	require.Len(t, ops, 3)

	assert.Equal(t, interfaces.SequenceRegistryName, ops[0].Registry)
	assert.Equal(t, OpRegisterSequence, ops[0].Name)
	assert.Equal(t, "1", ops[0].Subject)
	assert.NoError(t, ops[0].Err)

	assert.Equal(t, OpLicenseSequence, ops[1].Name)
	assert.Equal(t, bob, ops[1].Caller)
	assert.ErrorIs(t, ops[1].Err, interfaces.ErrUnauthorized)

	assert.Equal(t, OpRegisterSequence, ops[2].Name)
	assert.ErrorIs(t, ops[2].Err, interfaces.ErrInvalidArgument)
}

func TestSequenceRegistry_ConcurrentRegistrationUniqueIDs(t *testing.T) {
	r := NewSequenceRegistry()

	const n = 100
	ids := make(chan interfaces.SequenceID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.RegisterSequence(alice, "ATCG")
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[interfaces.SequenceID]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		assert.True(t, id >= 1 && id <= n)
	}
	assert.Len(t, seen, n)
}
