package ranking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Store owns the leaderboard. It is the only writer of the local cache;
// consumers receive copies. Remote reconciliation is best effort and
// bounded by the cache TTL; every remote failure falls back to the
// local cache without surfacing an error.
type Store struct {
	mu     sync.Mutex
	cfg    Config
	clock  clockwork.Clock
	remote *RemoteClient // nil disables sharing entirely

	records     []Record
	lastSync    time.Time
	lastFailure time.Time
	loaded      bool
}

// NewStore creates a ranking store. A nil remote client runs local-only;
// a remote client without write credentials shares read-only.
func NewStore(cfg Config, remote *RemoteClient, clock clockwork.Clock) *Store {
	return &Store{
		cfg:    cfg,
		clock:  clock,
		remote: remote,
	}
}

// CanShare reports whether submissions propagate to the shared document
func (s *Store) CanShare() bool {
	return s.remote != nil && s.remote.CanWrite()
}

// Leaderboard returns the current leaderboard, refreshing from the
// shared remote document when the cache TTL has lapsed. Fetch failures
// are logged and the local cache is returned instead.
func (s *Store) Leaderboard(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecords(s.leaderboardLocked(ctx))
}

// leaderboardLocked implements Leaderboard; caller holds the lock
func (s *Store) leaderboardLocked(ctx context.Context) []Record {
	s.ensureLoadedLocked()

	if s.remote == nil {
		return s.records
	}
	if !s.lastSync.IsZero() && s.clock.Since(s.lastSync) < s.cfg.CacheTTL {
		return s.records
	}
	// A dead remote must not stall every interaction with a full
	// request timeout; back off between attempts
	if !s.lastFailure.IsZero() && s.clock.Since(s.lastFailure) < s.cfg.RetryBackoff {
		return s.records
	}

	fetched, err := s.remote.Fetch(ctx)
	if err != nil {
		// Remote unavailable: advisory only, never surfaced to the player
		s.lastFailure = s.clock.Now()
		log.Warn().Err(err).Msg("remote ranking unavailable, using local cache")
		return s.records
	}
	s.lastFailure = time.Time{}

	// Remote first so its timestamps win (name, score) collisions
	s.records = merge(s.cfg, fetched, s.records)
	s.lastSync = s.clock.Now()
	s.saveSyncStamp(s.lastSync)
	if err := s.saveCache(s.records); err != nil {
		log.Warn().Err(err).Msg("failed to persist merged ranking")
	}
	return s.records
}

// IsQualifying reports whether a score would enter the display window:
// either the window has a free slot, or the score beats the last
// displayed entry
func (s *Store) IsQualifying(ctx context.Context, score int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.leaderboardLocked(ctx)
	if len(records) < s.cfg.DisplayCount {
		return true
	}
	return score < records[s.cfg.DisplayCount-1].Score
}

// Submit validates and records a qualifying result, merges it into the
// leaderboard, persists locally, and best-effort propagates to the
// shared document. Propagation failure never fails the submission; the
// local commit is authoritative for this client.
func (s *Store) Submit(ctx context.Context, name string, score int) (*Result, error) {
	sanitized, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if !scoreValid(score, s.cfg) {
		return nil, fmt.Errorf("%w: %d ms outside [%d, %d]", ErrInvalidScore, score, s.cfg.MinScore, s.cfg.MaxScore)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.leaderboardLocked(ctx)

	// Double-submit guard: same name, near-identical score, created
	// moments ago. Legitimate repeat play lands outside the window.
	now := s.clock.Now()
	for _, r := range current {
		if r.Name != sanitized {
			continue
		}
		if absInt(r.Score-score) < s.cfg.ScoreTolerance && now.Sub(r.Timestamp) < s.cfg.DuplicateWindow {
			return nil, fmt.Errorf("%w: %q scored %d ms within the last %s", ErrDuplicateSubmission, sanitized, score, s.cfg.DuplicateWindow)
		}
	}

	record := Record{
		ID:        uuid.NewString(),
		Name:      sanitized,
		Score:     score,
		Timestamp: now.UTC(),
	}

	union := mergeUnion(s.cfg, s.records, []Record{record})
	rank := rankOf(union, sanitized, score)

	merged := union
	if len(merged) > s.cfg.MaxRecords {
		merged = merged[:s.cfg.MaxRecords]
	}
	s.records = merged

	persistErr := s.saveCache(merged)

	if s.CanShare() {
		if err := s.remote.Update(ctx, merged); err != nil {
			log.Warn().Err(err).Msg("failed to propagate ranking to shared document")
		}
	}

	if persistErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistFailure, persistErr)
	}

	log.Debug().Str("name", sanitized).Int("score", score).Int("rank", rank).Msg("score submitted")

	return &Result{
		Rank:        rank,
		IsHighScore: rank >= 1 && rank <= s.cfg.DisplayCount,
		Leaderboard: copyRecords(merged),
	}, nil
}

// DisplaySlice returns the display window annotated with 1-based ranks
// and medals for the top three
func (s *Store) DisplaySlice(ctx context.Context) []DisplayEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.leaderboardLocked(ctx)
	n := len(records)
	if n > s.cfg.DisplayCount {
		n = s.cfg.DisplayCount
	}

	entries := make([]DisplayEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, DisplayEntry{
			Rank:      i + 1,
			Name:      records[i].Name,
			Score:     records[i].Score,
			Timestamp: records[i].Timestamp,
			Medal:     medalFor(i + 1),
		})
	}
	return entries
}

// Clear removes every record, locally and in memory. The remote
// document is left untouched.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.loaded = true
	return s.saveCache(nil)
}

// ensureLoadedLocked lazily loads the cache and sync stamp from disk
func (s *Store) ensureLoadedLocked() {
	if s.loaded {
		return
	}
	s.records = merge(s.cfg, s.loadCache())
	s.lastSync = s.loadSyncStamp()
	s.loaded = true
}

func copyRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
