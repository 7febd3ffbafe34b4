package api

import (
	"log/slog"
	"time"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

// HTTPServerConfig configures the registry HTTP host.
type HTTPServerConfig struct {
	// ListenAddr is the address of the registry API.
	ListenAddr string

	// MetricsAddr is the address of the Prometheus listener. Empty disables it.
	MetricsAddr string

	EnablePprof bool

	Log *slog.Logger

	// MaxClockSkew bounds the age of signed request timestamps.
	// Accepted signatures are remembered for twice this long.
	MaxClockSkew time.Duration

	// DrainDuration is how long /drain keeps reporting not ready before
	// the drain is considered complete.
	DrainDuration time.Duration

	GracefulShutdownDuration time.Duration
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
}

// RegistryConfig configures the registries served by the host and their persistence.
type RegistryConfig struct {
	// Administrator is the only principal allowed to manage verifiers.
	Administrator interfaces.Principal

	// StrictSequenceRefs makes designs reject references to unregistered sequences.
	StrictSequenceRefs bool

	// StorageLocations are snapshot backend URIs. Empty disables snapshots.
	StorageLocations []string

	// Restore is the snapshot to start from, if set.
	Restore *interfaces.ContentID

	// SnapshotInterval is how often changed state is stored. Zero stores only on shutdown.
	SnapshotInterval time.Duration
}
