package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/ruteri/synbio-provenance-registry/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m, err := New("test", "")
	require.NoError(t, err)

	var admin, alice interfaces.Principal
	admin[0], alice[0] = 1, 2

	regs := registry.New(admin, false, registry.WithObserver(m))

	require.NoError(t, regs.Verifiers.AddVerifier(admin, alice))
	require.Error(t, regs.Verifiers.AddVerifier(alice, alice))
	_, err = regs.Sequences.RegisterSequence(alice, "ATCG")
	require.NoError(t, err)
	_, err = regs.Sequences.RegisterSequence(alice, "GGCC")
	require.NoError(t, err)
	require.Error(t, regs.Sequences.LicenseSequence(alice, 7))
	regs.Designs.CreateDesign(alice, "d", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("verifier", registry.OpAddVerifier, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("verifier", registry.OpAddVerifier, OutcomeUnauthorized)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("sequence", registry.OpRegisterSequence, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("sequence", registry.OpLicenseSequence, OutcomeNotFound)))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lastID.WithLabelValues("sequence")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lastID.WithLabelValues("design")))
}

func TestRecordSnapshot(t *testing.T) {
	m, err := New("test", "")
	require.NoError(t, err)

	m.RecordSnapshot(nil)
	m.RecordSnapshot(errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshots.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshots.WithLabelValues(OutcomeError)))
	assert.Greater(t, testutil.ToFloat64(m.lastSnapshot), 0.0)
}

func TestHandler(t *testing.T) {
	m, err := New("synbio", "")
	require.NoError(t, err)
	m.ObserveOperation(interfaces.Operation{Registry: interfaces.DesignRegistryName, Name: registry.OpCreateDesign, Subject: "1"})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `synbio_registry_operations_total{operation="create-design",outcome="ok",registry="design"} 1`)

	// Without a listen address there is nothing to serve
	assert.Error(t, m.ListenAndServe())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeUnauthorized, Outcome(fmt.Errorf("x: %w", interfaces.ErrUnauthorized)))
	assert.Equal(t, OutcomeNotFound, Outcome(interfaces.ErrNotFound))
	assert.Equal(t, OutcomeInvalidArgument, Outcome(interfaces.ErrInvalidArgument))
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}

func TestTrackAllocatedIDs_AfterRestore(t *testing.T) {
	var admin, alice interfaces.Principal
	admin[0], alice[0] = 1, 2

	original := registry.New(admin, false)
	for i := 0; i < 3; i++ {
		_, err := original.Sequences.RegisterSequence(alice, "ATCG")
		require.NoError(t, err)
	}
	original.Designs.CreateDesign(alice, "d", "")

	m, err := New("test", "")
	require.NoError(t, err)

	restored, err := registry.FromSnapshot(original.Snapshot(), false, registry.WithObserver(m))
	require.NoError(t, err)
	assert.Equal(t, interfaces.SequenceID(3), restored.Sequences.LastID())
	assert.Equal(t, interfaces.DesignID(1), restored.Designs.LastID())

	m.TrackAllocatedIDs(restored)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.lastID.WithLabelValues("sequence")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lastID.WithLabelValues("design")))

	_, err = restored.Sequences.RegisterSequence(alice, "GG")
	require.NoError(t, err)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.lastID.WithLabelValues("sequence")))
}
