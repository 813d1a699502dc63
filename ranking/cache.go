package ranking

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// loadCache reads the locally persisted leaderboard. Missing, unparsable
// or structurally broken data is treated as empty: storage corruption is
// never fatal, the system proceeds as if no record existed.
func (s *Store) loadCache() []Record {
	data, err := os.ReadFile(s.cfg.CacheFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", s.cfg.CacheFile).Msg("ranking cache unreadable, starting empty")
		}
		return nil
	}
	records, err := decodeRecords(data)
	if err != nil {
		log.Warn().Err(err).Str("file", s.cfg.CacheFile).Msg("ranking cache corrupt, starting empty")
		return nil
	}
	return records
}

// saveCache persists the leaderboard as a single complete replacement:
// write to a temp file in the same directory, then rename over the
// target so no partial write is ever observable. If the serialized data
// exceeds the configured size cap, only the display slice is kept.
func (s *Store) saveCache(records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if s.cfg.MaxDataBytes > 0 && len(data) > s.cfg.MaxDataBytes {
		reduced := records
		if len(reduced) > s.cfg.DisplayCount {
			reduced = reduced[:s.cfg.DisplayCount]
		}
		log.Warn().Int("bytes", len(data)).Int("kept", len(reduced)).Msg("ranking cache oversized, trimming to display slice")
		if data, err = json.Marshal(reduced); err != nil {
			return err
		}
	}
	return writeFileAtomic(s.cfg.CacheFile, data)
}

// loadSyncStamp reads the advisory last-sync timestamp; zero if absent
// or unparsable
func (s *Store) loadSyncStamp() time.Time {
	data, err := os.ReadFile(s.cfg.SyncFile)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}
	}
	return t
}

// saveSyncStamp records when the remote document was last reconciled.
// Best effort: a write failure only costs an extra fetch later.
func (s *Store) saveSyncStamp(t time.Time) {
	if err := writeFileAtomic(s.cfg.SyncFile, []byte(t.Format(time.RFC3339Nano))); err != nil {
		log.Debug().Err(err).Str("file", s.cfg.SyncFile).Msg("failed to persist sync stamp")
	}
}

// decodeRecords parses a JSON array of records, dropping elements that
// fail to decode rather than rejecting the whole array
func decodeRecords(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(raw))
	for _, m := range raw {
		var r Record
		if err := json.Unmarshal(m, &r); err != nil {
			log.Debug().Err(err).Msg("dropping undecodable ranking record")
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
