package registry

import (
	"encoding/json"
	"testing"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated(t *testing.T) *Registries {
	t.Helper()
	regs := New(admin, false)

	require.NoError(t, regs.Verifiers.AddVerifier(admin, alice))
	require.NoError(t, regs.Verifiers.AddVerifier(admin, bob))
	require.NoError(t, regs.Verifiers.VerifyOrganism(alice, 10))
	require.NoError(t, regs.Verifiers.RemoveVerifier(admin, bob))

	seq1, err := regs.Sequences.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)
	_, err = regs.Sequences.RegisterSequence(bob, "GGCC")
	require.NoError(t, err)
	require.NoError(t, regs.Sequences.LicenseSequence(alice, seq1))
	require.NoError(t, regs.Sequences.TransferOwnership(alice, seq1, charlie))

	design := regs.Designs.CreateDesign(alice, "E. coli 2.0", "Enhanced E. coli strain")
	require.NoError(t, regs.Designs.AddContributor(alice, design, bob))
	require.NoError(t, regs.Designs.AddGeneSequence(bob, design, seq1))
	require.NoError(t, regs.Designs.AddGeneSequence(bob, design, 404))

	return regs
}

func TestSnapshot_RoundTripThroughJSON(t *testing.T) {
	regs := populated(t)

	data, err := json.Marshal(regs.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	restored, err := FromSnapshot(&snap, false)
	require.NoError(t, err)

	assert.Equal(t, admin, restored.Verifiers.Administrator())
	assert.Equal(t, []interfaces.Principal{alice}, restored.Verifiers.Verifiers())
	assert.Equal(t, regs.Verifiers.IsOrganismVerified(10), restored.Verifiers.IsOrganismVerified(10))

	for id := interfaces.SequenceID(1); id <= 2; id++ {
		want, _ := regs.Sequences.GetSequence(id)
		got, ok := restored.Sequences.GetSequence(id)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	want, _ := regs.Designs.GetDesign(1)
	got, ok := restored.Designs.GetDesign(1)
	require.True(t, ok)
	assert.Equal(t, want, got)

	assert.Equal(t, regs.Snapshot(), restored.Snapshot())
}

func TestSnapshot_RestoredRegistriesContinueCounters(t *testing.T) {
	regs := New(admin, false)
	_, err := regs.Sequences.RegisterSequence(alice, "A")
	require.NoError(t, err)
	_, err = regs.Sequences.RegisterSequence(alice, "C")
	require.NoError(t, err)
	regs.Designs.CreateDesign(alice, "d", "")

	snap := regs.Snapshot()
	// Dropping records must not let their ids be reissued
	delete(snap.Sequences, 2)

	restored, err := FromSnapshot(snap, false)
	require.NoError(t, err)

	id, err := restored.Sequences.RegisterSequence(bob, "G")
	require.NoError(t, err)
	assert.Equal(t, interfaces.SequenceID(3), id)
	assert.Equal(t, interfaces.DesignID(2), restored.Designs.CreateDesign(bob, "e", ""))
}

func TestSnapshot_RestoredAuthorityIsPreserved(t *testing.T) {
	restored, err := FromSnapshot(populated(t).Snapshot(), false)
	require.NoError(t, err)

	assert.ErrorIs(t, restored.Sequences.LicenseSequence(alice, 1), interfaces.ErrUnauthorized)
	assert.NoError(t, restored.Sequences.LicenseSequence(charlie, 1))

	assert.ErrorIs(t, restored.Designs.AddContributor(bob, 1, charlie), interfaces.ErrUnauthorized)
	assert.NoError(t, restored.Designs.AddGeneSequence(bob, 1, 2))

	assert.ErrorIs(t, restored.Verifiers.VerifyOrganism(bob, 11), interfaces.ErrUnauthorized)
	assert.ErrorIs(t, restored.Verifiers.AddVerifier(alice, bob), interfaces.ErrUnauthorized)
}

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{
			name: "sequence id zero",
			mutate: func(s *Snapshot) {
				s.Sequences[0] = interfaces.Sequence{Owner: alice, Payload: "A"}
			},
		},
		{
			name: "sequence id above counter",
			mutate: func(s *Snapshot) {
				s.Sequences[s.LastSequenceID+1] = interfaces.Sequence{Owner: alice, Payload: "A"}
			},
		},
		{
			name: "design id above counter",
			mutate: func(s *Snapshot) {
				s.Designs[s.LastDesignID+1] = interfaces.Design{Contributors: []interfaces.Principal{alice}}
			},
		},
		{
			name: "design without creator",
			mutate: func(s *Snapshot) {
				d := s.Designs[1]
				d.Contributors = nil
				s.Designs[1] = d
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := populated(t).Snapshot()
			require.NoError(t, snap.Validate())

			tt.mutate(snap)
			err := snap.Validate()
			assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)

			_, err = FromSnapshot(snap, false)
			assert.Error(t, err)
		})
	}
}

func TestNew_StrictSequenceRefs(t *testing.T) {
	regs := New(admin, true)
	design := regs.Designs.CreateDesign(alice, "d", "")

	assert.ErrorIs(t, regs.Designs.AddGeneSequence(alice, design, 1), interfaces.ErrNotFound)

	id, err := regs.Sequences.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)
	assert.NoError(t, regs.Designs.AddGeneSequence(alice, design, id))
}

func TestNew_SharedObserver(t *testing.T) {
	obs := &recordingObserver{}
	regs := New(admin, false, WithObserver(obs))

	require.NoError(t, regs.Verifiers.AddVerifier(admin, alice))
	_, err := regs.Sequences.RegisterSequence(alice, "A")
	require.NoError(t, err)
	regs.Designs.CreateDesign(alice, "d", "")

	ops := obs.operations()
	require.Len(t, ops, 3)
	assert.Equal(t, interfaces.VerifierRegistryName, ops[0].Registry)
	assert.Equal(t, interfaces.SequenceRegistryName, ops[1].Registry)
	assert.Equal(t, interfaces.DesignRegistryName, ops[2].Registry)
}
