// Package ranking maintains the shared leaderboard: it merges locally
// cached and remotely fetched score records, deduplicates and ranks
// them, and persists the result. The remote document is advisory; the
// local cache is always the fallback.
package ranking

import (
	"time"
)

// Record is one immutable leaderboard entry. The JSON shape matches the
// shared remote document.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// key is the dedupe identity: independently generated ids may differ
// for the conceptually same submission, so (name, score) is
// authoritative
type key struct {
	name  string
	score int
}

func (r Record) key() key {
	return key{name: r.Name, score: r.Score}
}

// Result reports a completed submission
type Result struct {
	Rank        int      // 1-based position in the merged leaderboard
	IsHighScore bool     // Rank within the display window
	Leaderboard []Record // Merged, sorted, capped
}

// DisplayEntry is a leaderboard row annotated for presentation
type DisplayEntry struct {
	Rank      int
	Name      string
	Score     int
	Timestamp time.Time
	Medal     string
}

// medals for the top three display positions
var medals = []string{"🥇", "🥈", "🥉"}

func medalFor(rank int) string {
	if rank >= 1 && rank <= len(medals) {
		return medals[rank-1]
	}
	return ""
}

// Config holds the ranking store tunables
type Config struct {
	MaxRecords   int // Retention cap of the stored leaderboard
	DisplayCount int // Entries shown, and the high-score window

	MinScore int // Lowest plausible reaction time, ms
	MaxScore int // Highest accepted reaction time, ms

	CacheTTL        time.Duration // Remote fetch at most once per TTL
	RetryBackoff    time.Duration // Wait after a failed remote fetch before retrying
	DuplicateWindow time.Duration // Recency window for double-submit rejection
	ScoreTolerance  int           // Scores closer than this count as the same submission, ms

	MaxDataBytes int // Serialized cache above this size is trimmed to the display slice

	CacheFile string // Leaderboard JSON array
	SyncFile  string // Advisory last-sync timestamp
}

// DefaultConfig returns the stock tunables
func DefaultConfig() Config {
	return Config{
		MaxRecords:      10,
		DisplayCount:    5,
		MinScore:        50,
		MaxScore:        10000,
		CacheTTL:        30 * time.Second,
		RetryBackoff:    5 * time.Second,
		DuplicateWindow: 10 * time.Second,
		ScoreTolerance:  5,
		MaxDataBytes:    50000,
		CacheFile:       "ranking.json",
		SyncFile:        "ranking.sync",
	}
}
