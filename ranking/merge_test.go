package ranking

import (
	"testing"
	"time"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func rec(name string, score int, ts time.Time) Record {
	return Record{ID: name + "-id", Name: name, Score: score, Timestamp: ts}
}

func TestMergeSortsAscendingAndCaps(t *testing.T) {
	cfg := DefaultConfig()

	var records []Record
	scores := []int{400, 150, 900, 300, 250, 800, 700, 600, 500, 350, 200, 100}
	for i, s := range scores {
		records = append(records, rec(string(rune('A'+i)), s, testTime))
	}

	merged := merge(cfg, records)

	if len(merged) != cfg.MaxRecords {
		t.Fatalf("Expected cap at %d records, got %d", cfg.MaxRecords, len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i-1].Score > merged[i].Score {
			t.Fatalf("leaderboard not sorted at index %d: %d > %d", i, merged[i-1].Score, merged[i].Score)
		}
	}
	if merged[0].Score != 100 {
		t.Errorf("Expected best score 100 first, got %d", merged[0].Score)
	}
}

func TestMergeFirstSeenWinsOnNameScoreCollision(t *testing.T) {
	cfg := DefaultConfig()

	first := rec("Aoi", 180, testTime)
	later := rec("Aoi", 180, testTime.Add(time.Hour))
	later.ID = "different-id"

	merged := merge(cfg, []Record{first}, []Record{later})

	if len(merged) != 1 {
		t.Fatalf("Expected 1 record after dedupe, got %d", len(merged))
	}
	if !merged[0].Timestamp.Equal(testTime) {
		t.Error("Expected the first-seen record to survive the collision")
	}
}

func TestMergeSameNameDifferentScoreKept(t *testing.T) {
	cfg := DefaultConfig()

	merged := merge(cfg, []Record{
		rec("Aoi", 180, testTime),
		rec("Aoi", 210, testTime),
	})

	if len(merged) != 2 {
		t.Fatalf("Expected both scores kept for one player, got %d", len(merged))
	}
}

func TestMergeDiscardsStructurallyInvalidRecords(t *testing.T) {
	cfg := DefaultConfig()

	merged := merge(cfg, []Record{
		rec("", 180, testTime),                     // No name
		rec("TooLow", 10, testTime),                // Below score floor
		rec("TooHigh", 99999, testTime),            // Above score ceiling
		rec("NoStamp", 180, time.Time{}),           // Zero timestamp
		rec("このなまえはとてもとてもとてもながすぎます", 180, testTime), // Name over the rune cap
		rec("Valid", 180, testTime),
	})

	if len(merged) != 1 {
		t.Fatalf("Expected only the valid record, got %d", len(merged))
	}
	if merged[0].Name != "Valid" {
		t.Errorf("Expected the valid record to survive, got %q", merged[0].Name)
	}
}

func TestRankOfReportsPreCapPosition(t *testing.T) {
	cfg := DefaultConfig()

	var records []Record
	for i := 0; i < cfg.MaxRecords; i++ {
		records = append(records, rec(string(rune('A'+i)), 100+i*10, testTime))
	}
	// Worse than every retained record
	evicted := rec("Zed", 5000, testTime)

	union := mergeUnion(cfg, records, []Record{evicted})
	if got := rankOf(union, "Zed", 5000); got != cfg.MaxRecords+1 {
		t.Errorf("Expected evicted record to rank %d, got %d", cfg.MaxRecords+1, got)
	}
	if got := rankOf(union, "Nobody", 1); got != 0 {
		t.Errorf("Expected rank 0 for an absent key, got %d", got)
	}
}
