// Package store owns every formvault entity and persists them as a single
// snapshot document.
//
// A Store is created once at startup and shared by all request handlers.
// Each method holds one mutex for its whole read-compute-persist section,
// so concurrent callers observe a strict sequence of snapshots. Persist
// failures are logged and never roll back the in-memory change: memory is
// the source of truth until the next successful save.
//
// Lookups return copies. Not-found is reported as a nil record (or false);
// rule violations are the sentinel errors in internal/common.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/formvault/internal/idgen"
	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/models"
	"github.com/dmitrijs2005/formvault/internal/server/snapshot"
	"github.com/dmitrijs2005/formvault/internal/timex"
)

// Clock returns the current time; timestamps are stored in UTC.
type Clock func() time.Time

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGen replaces the crypto/rand backed generator.
func WithIDGen(g *idgen.Generator) Option {
	return func(s *Store) { s.ids = g }
}

type Store struct {
	mu    sync.Mutex
	snap  snapshot.SnapshotStore
	log   logging.Logger
	clock Clock
	ids   *idgen.Generator
	state models.State
}

// New loads the snapshot, repairs it and returns a ready store. It never
// fails: a missing snapshot is seeded and saved, an unreadable one is
// replaced in memory by the seed data and left untouched on disk.
func New(ctx context.Context, snap snapshot.SnapshotStore, log logging.Logger, opts ...Option) *Store {
	s := &Store{
		snap:  snap,
		log:   log,
		clock: time.Now,
		ids:   idgen.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return s
}

func (s *Store) now() string {
	return timex.FormatISO(s.clock())
}

func (s *Store) load(ctx context.Context) {
	body, err := s.snap.Load(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		s.log.Info(ctx, "no snapshot found, writing seed data")
		s.state, _ = s.normalize(ctx, seedRaw())
		s.persist(ctx)
		return
	}
	if err != nil {
		s.log.Error(ctx, "failed to load snapshot, using seed data", "error", err)
		s.state, _ = s.normalize(ctx, seedRaw())
		return
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		s.log.Error(ctx, "failed to parse snapshot, using seed data", "error", err)
		s.state, _ = s.normalize(ctx, seedRaw())
		return
	}

	state, changed := s.normalize(ctx, raw)
	s.state = state
	if changed {
		s.log.Info(ctx, "snapshot repaired on load")
		s.persist(ctx)
	}
}

// Normalize re-runs the repair pass over the current state and persists
// only when something changed. It reports whether a repair happened.
func (s *Store) Normalize(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, changed := s.normalize(ctx, toGeneric(s.state))
	if !changed {
		return false
	}
	s.state = state
	s.persist(ctx)
	return true
}

// persist saves the whole state. Errors are logged, not returned.
func (s *Store) persist(ctx context.Context) {
	body, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		s.log.Error(ctx, "failed to encode snapshot", "error", err)
		return
	}
	if err := s.snap.Save(ctx, body); err != nil {
		s.log.Error(ctx, "failed to persist snapshot", "error", err)
	}
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// toGeneric converts v to the map/slice/scalar shape json.Unmarshal
// produces for interface values.
func toGeneric(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}
