package registry

import (
	"sync"
	"testing"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifierRegistry_AdministratorManagesVerifiers(t *testing.T) {
	r := NewVerifierRegistry(admin)
	assert.Equal(t, admin, r.Administrator())

	require.NoError(t, r.AddVerifier(admin, alice))
	assert.True(t, r.IsVerifier(alice))

	// Adding twice is a no-op
	require.NoError(t, r.AddVerifier(admin, alice))
	assert.Equal(t, []interfaces.Principal{alice}, r.Verifiers())

	require.NoError(t, r.RemoveVerifier(admin, alice))
	assert.False(t, r.IsVerifier(alice))

	// Removing an absent verifier is a no-op
	require.NoError(t, r.RemoveVerifier(admin, alice))
	assert.Empty(t, r.Verifiers())
}

func TestVerifierRegistry_NonAdministratorRejected(t *testing.T) {
	r := NewVerifierRegistry(admin)
	require.NoError(t, r.AddVerifier(admin, alice))

	err := r.AddVerifier(bob, bob)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
	assert.False(t, r.IsVerifier(bob))

	// Verifiers cannot manage the set either
	err = r.AddVerifier(alice, bob)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)

	err = r.RemoveVerifier(alice, alice)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
	assert.True(t, r.IsVerifier(alice))
}

func TestVerifierRegistry_AdministratorIsNotImplicitVerifier(t *testing.T) {
	r := NewVerifierRegistry(admin)

	err := r.VerifyOrganism(admin, 1)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)

	require.NoError(t, r.AddVerifier(admin, admin))
	require.NoError(t, r.VerifyOrganism(admin, 1))
	assert.True(t, r.IsOrganismVerified(1).IsVerified)
}

func TestVerifierRegistry_VerifyOrganism(t *testing.T) {
	r := NewVerifierRegistry(admin)
	require.NoError(t, r.AddVerifier(admin, alice))
	require.NoError(t, r.AddVerifier(admin, bob))

	unverified := r.IsOrganismVerified(1)
	assert.False(t, unverified.IsVerified)
	assert.Nil(t, unverified.Verifier)

	require.NoError(t, r.VerifyOrganism(alice, 1))
	v := r.IsOrganismVerified(1)
	assert.True(t, v.IsVerified)
	require.NotNil(t, v.Verifier)
	assert.Equal(t, alice, *v.Verifier)

	// Re-verification overwrites the attesting verifier
	require.NoError(t, r.VerifyOrganism(bob, 1))
	v = r.IsOrganismVerified(1)
	require.NotNil(t, v.Verifier)
	assert.Equal(t, bob, *v.Verifier)

	// Other organisms are unaffected
	assert.False(t, r.IsOrganismVerified(2).IsVerified)
}

func TestVerifierRegistry_UnauthorizedVerificationLeavesStateUnchanged(t *testing.T) {
	r := NewVerifierRegistry(admin)
	require.NoError(t, r.AddVerifier(admin, alice))
	require.NoError(t, r.VerifyOrganism(alice, 7))

	err := r.VerifyOrganism(charlie, 7)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)

	v := r.IsOrganismVerified(7)
	require.NotNil(t, v.Verifier)
	assert.Equal(t, alice, *v.Verifier)
}

func TestVerifierRegistry_RemovalKeepsPastVerifications(t *testing.T) {
	r := NewVerifierRegistry(admin)
	require.NoError(t, r.AddVerifier(admin, alice))
	require.NoError(t, r.VerifyOrganism(alice, 3))
	require.NoError(t, r.RemoveVerifier(admin, alice))

	v := r.IsOrganismVerified(3)
	assert.True(t, v.IsVerified)
	require.NotNil(t, v.Verifier)
	assert.Equal(t, alice, *v.Verifier)

	// But the removed verifier can no longer attest
	err := r.VerifyOrganism(alice, 4)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
	assert.False(t, r.IsOrganismVerified(4).IsVerified)
}

func TestVerifierRegistry_VerificationIsACopy(t *testing.T) {
	r := NewVerifierRegistry(admin)
	require.NoError(t, r.AddVerifier(admin, alice))
	require.NoError(t, r.VerifyOrganism(alice, 1))

	v := r.IsOrganismVerified(1)
	*v.Verifier = bob

	again := r.IsOrganismVerified(1)
	assert.Equal(t, alice, *again.Verifier)
}

func TestVerifierRegistry_VerifiersSorted(t *testing.T) {
	r := NewVerifierRegistry(admin)
	for _, p := range []interfaces.Principal{charlie, alice, bob} {
		require.NoError(t, r.AddVerifier(admin, p))
	}

	assert.Equal(t, []interfaces.Principal{alice, bob, charlie}, r.Verifiers())
}

func TestVerifierRegistry_Observer(t *testing.T) {
	obs := &recordingObserver{}
	r := NewVerifierRegistry(admin, WithObserver(obs))

	require.NoError(t, r.AddVerifier(admin, alice))
	require.Error(t, r.VerifyOrganism(bob, 5))

	ops := obs.operations()
	require.Len(t, ops, 2)

	assert.Equal(t, interfaces.VerifierRegistryName, ops[0].Registry)
	assert.Equal(t, OpAddVerifier, ops[0].Name)
	assert.Equal(t, admin, ops[0].Caller)
	assert.Equal(t, alice.String(), ops[0].Subject)
	assert.NoError(t, ops[0].Err)

	assert.Equal(t, OpVerifyOrganism, ops[1].Name)
	assert.Equal(t, "5", ops[1].Subject)
	assert.ErrorIs(t, ops[1].Err, interfaces.ErrUnauthorized)
}

func TestVerifierRegistry_ConcurrentVerification(t *testing.T) {
	r := NewVerifierRegistry(admin)
	verifiers := []interfaces.Principal{alice, bob, charlie}
	for _, p := range verifiers {
		require.NoError(t, r.AddVerifier(admin, p))
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.VerifyOrganism(verifiers[i%len(verifiers)], interfaces.OrganismID(i%5)))
		}(i)
	}
	wg.Wait()

	for organism := interfaces.OrganismID(0); organism < 5; organism++ {
		v := r.IsOrganismVerified(organism)
		assert.True(t, v.IsVerified)
		require.NotNil(t, v.Verifier)
		assert.Contains(t, verifiers, *v.Verifier)
	}
}
