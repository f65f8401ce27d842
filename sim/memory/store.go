// Package memory persists the best policy vectors found for past demand
// environments, so later searches against a similar environment can warm
// start instead of searching from scratch.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Record is one remembered search outcome. The fingerprint summarizes the
// demand environment the genes were optimized for.
type Record struct {
	Fingerprint []float64 `json:"fingerprint"`
	Genes       []float64 `json:"genes"`
	Fitness     float64   `json:"fitness"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store remembers search outcomes keyed by environment fingerprint.
type Store interface {
	// Put saves a record. A record whose fingerprint matches an existing
	// one within tolerance replaces it only if its fitness is higher.
	Put(rec Record) error

	// Similar returns remembered records whose fingerprint is within
	// tolerance of the query, best fitness first.
	Similar(fingerprint []float64, tolerance float64) ([]Record, error)
}

// similarity returns the mean relative per-dimension difference between two
// fingerprints, or +Inf if they are not comparable.
func similarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	sum := 0.0
	for i := range a {
		denom := math.Max(math.Abs(a[i]), math.Abs(b[i]))
		if denom == 0 {
			continue // both zero, identical in this dimension
		}
		sum += math.Abs(a[i]-b[i]) / denom
	}
	return sum / float64(len(a))
}

// === In-memory store ===

// MemStore is a volatile Store for tests and single-process runs.
type MemStore struct {
	records []Record
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Put(rec Record) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	m.records = upsert(m.records, rec)
	return nil
}

func (m *MemStore) Similar(fingerprint []float64, tolerance float64) ([]Record, error) {
	return filterSimilar(m.records, fingerprint, tolerance), nil
}

// === File-backed store ===

// FileStore persists records as a single JSON file. Every Put rewrites the
// file; the record sets involved are small.
type FileStore struct {
	path string
	log  *logrus.Entry
}

// NewFileStore opens (or will create) the JSON store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		log:  logrus.WithField("component", "memory"),
	}
}

func (f *FileStore) Put(rec Record) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	records, err := f.load()
	if err != nil {
		return err
	}
	records = upsert(records, rec)
	return f.save(records)
}

func (f *FileStore) Similar(fingerprint []float64, tolerance float64) ([]Record, error) {
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	return filterSimilar(records, fingerprint, tolerance), nil
}

func (f *FileStore) load() ([]Record, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: reading %s: %w", f.path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("memory: parsing %s: %w", f.path, err)
	}
	return records, nil
}

func (f *FileStore) save(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: encoding records: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("memory: creating %s: %w", dir, err)
		}
	}
	// write-then-rename so a crash mid-save never truncates the store
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("memory: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("memory: replacing %s: %w", f.path, err)
	}
	f.log.Debugf("saved %d records to %s", len(records), f.path)
	return nil
}

// === Shared helpers ===

// replaceTolerance is the fingerprint distance under which a Put is treated
// as an update of an existing record rather than a new environment.
const replaceTolerance = 0.05

func checkRecord(rec Record) error {
	if len(rec.Fingerprint) == 0 {
		return fmt.Errorf("memory: record has empty fingerprint")
	}
	if len(rec.Genes) == 0 {
		return fmt.Errorf("memory: record has no genes")
	}
	return nil
}

func upsert(records []Record, rec Record) []Record {
	for i := range records {
		if similarity(records[i].Fingerprint, rec.Fingerprint) <= replaceTolerance {
			if rec.Fitness > records[i].Fitness {
				records[i] = rec
			}
			return records
		}
	}
	return append(records, rec)
}

func filterSimilar(records []Record, fingerprint []float64, tolerance float64) []Record {
	var out []Record
	for _, r := range records {
		if similarity(r.Fingerprint, fingerprint) <= tolerance {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fitness > out[j].Fitness })
	return out
}
