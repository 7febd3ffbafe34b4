package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/ruteri/synbio-provenance-registry/registry"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/atomic"
)

var (
	// ErrSnapshotAdminMismatch is returned when a snapshot was taken under a
	// different administrator than the one configured.
	ErrSnapshotAdminMismatch = errors.New("snapshot administrator does not match configured administrator")

	// ErrNoRegistries is returned by Store before Track was called.
	ErrNoRegistries = errors.New("snapshotter is not tracking any registries")
)

// SnapshotRecorder is notified of every store attempt.
type SnapshotRecorder interface {
	RecordSnapshot(err error)
}

// Snapshotter persists registry state through a storage backend.
// It observes registry operations and only stores when state has changed.
type Snapshotter struct {
	backend  interfaces.StorageBackend
	log      *slog.Logger
	recorder SnapshotRecorder

	dirty atomic.Bool

	mu   deadlock.Mutex
	regs *registry.Registries
	last *interfaces.ContentID
}

var _ interfaces.OperationObserver = (*Snapshotter)(nil)

// NewSnapshotter creates a snapshotter writing to backend. recorder may be nil.
func NewSnapshotter(backend interfaces.StorageBackend, log *slog.Logger, recorder SnapshotRecorder) *Snapshotter {
	return &Snapshotter{
		backend:  backend,
		log:      log,
		recorder: recorder,
	}
}

// Track sets the registries to snapshot.
func (s *Snapshotter) Track(regs *registry.Registries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = regs
}

// ObserveOperation marks the state dirty after every successful mutation.
func (s *Snapshotter) ObserveOperation(op interfaces.Operation) {
	if op.Err == nil {
		s.dirty.Store(true)
	}
}

// Dirty reports whether state changed since the last stored snapshot.
func (s *Snapshotter) Dirty() bool {
	return s.dirty.Load()
}

// LastStored returns the id of the most recent snapshot stored by this snapshotter.
func (s *Snapshotter) LastStored() (interfaces.ContentID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return interfaces.ContentID{}, false
	}
	return *s.last, true
}

// Store writes a snapshot of the tracked registries unconditionally.
func (s *Snapshotter) Store(ctx context.Context) (id interfaces.ContentID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.regs == nil {
		return id, ErrNoRegistries
	}

	defer func() {
		if s.recorder != nil {
			s.recorder.RecordSnapshot(err)
		}
	}()

	// Operations landing after this point are caught by the next store.
	wasDirty := s.dirty.Swap(false)

	data, err := json.Marshal(s.regs.Snapshot())
	if err != nil {
		s.dirty.Store(wasDirty)
		return id, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	id, err = s.backend.Store(ctx, data, interfaces.SnapshotType)
	if err != nil {
		s.dirty.Store(wasDirty)
		s.log.Error("Failed to store snapshot", "backend", s.backend.Name(), "err", err)
		return id, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.last = &id
	s.log.Info("Stored snapshot", "contentID", id.String(), "size", len(data), "backend", s.backend.Name())
	return id, nil
}

// StoreIfDirty stores a snapshot only when state changed since the last one.
func (s *Snapshotter) StoreIfDirty(ctx context.Context) (interfaces.ContentID, bool, error) {
	if !s.dirty.Load() {
		return interfaces.ContentID{}, false, nil
	}
	id, err := s.Store(ctx)
	return id, err == nil, err
}

// Run stores dirty state every interval until ctx is done.
func (s *Snapshotter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.StoreIfDirty(ctx); err != nil {
				s.log.Warn("Periodic snapshot failed", "err", err)
			}
		}
	}
}

// Load fetches a snapshot and checks it against its content id.
func (s *Snapshotter) Load(ctx context.Context, id interfaces.ContentID) (*registry.Snapshot, error) {
	data, err := s.backend.Fetch(ctx, id, interfaces.SnapshotType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot %s: %w", id, err)
	}
	if !interfaces.ComputeID(data).Equal(id) {
		return nil, fmt.Errorf("snapshot %s failed content verification", id)
	}

	var snap registry.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// Restore rebuilds registries from the snapshot id and starts tracking them.
// The snapshot must have been taken under administrator. opts are passed to
// the registries, so include WithObserver(s) to keep change tracking.
func (s *Snapshotter) Restore(ctx context.Context, id interfaces.ContentID, administrator interfaces.Principal, strictSequenceRefs bool, opts ...registry.Option) (*registry.Registries, error) {
	snap, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap.Administrator != administrator {
		return nil, fmt.Errorf("%w: snapshot has %s, configured %s", ErrSnapshotAdminMismatch, snap.Administrator, administrator)
	}

	regs, err := registry.FromSnapshot(snap, strictSequenceRefs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore snapshot %s: %w", id, err)
	}

	s.Track(regs)
	s.mu.Lock()
	s.last = &id
	s.mu.Unlock()
	s.dirty.Store(false)

	s.log.Info("Restored snapshot", "contentID", id.String(),
		"verifiers", len(snap.Verifiers), "sequences", len(snap.Sequences), "designs", len(snap.Designs))
	return regs, nil
}
