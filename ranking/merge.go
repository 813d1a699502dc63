package ranking

import (
	"sort"

	"github.com/yomikakisan/imada/validate"
)

// mergeUnion builds the deduplicated, sorted union of one or more
// record collections: union in argument order, first-seen-wins per
// (name, score) key, structural validation of every survivor, stable
// ascending sort by score. No truncation.
//
// First-seen-wins makes the merge deterministic when the same
// (name, score) appears with different timestamps in different sources.
func mergeUnion(cfg Config, collections ...[]Record) []Record {
	seen := make(map[key]struct{})
	var out []Record

	for _, records := range collections {
		for _, r := range records {
			if !validate.Record(r.Name, r.Score, r.Timestamp, cfg.MinScore, cfg.MaxScore) {
				continue
			}
			k := r.key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score < out[j].Score
	})
	return out
}

// merge is mergeUnion truncated to the retention cap
func merge(cfg Config, collections ...[]Record) []Record {
	out := mergeUnion(cfg, collections...)
	if len(out) > cfg.MaxRecords {
		out = out[:cfg.MaxRecords]
	}
	return out
}

// rankOf returns the 1-based position of the (name, score) key in a
// merged union, or 0 if the key is absent. Computed against the pre-cap
// union so a record evicted by the cap still reports the position it
// would have occupied.
func rankOf(records []Record, name string, score int) int {
	for i, r := range records {
		if r.Name == name && r.Score == score {
			return i + 1
		}
	}
	return 0
}
