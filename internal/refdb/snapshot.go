package refdb

import (
	"sync/atomic"
	"time"
)

// Snapshot is an immutable view of the three reference tables, keyed by
// rsid. Lookups are O(1) map probes and never mutate; a snapshot is safe
// for any number of concurrent readers.
type Snapshot struct {
	clinical map[string][]ClinicalRecord
	pharmaco map[string][]PharmacoRecord
	trait    map[string][]TraitRecord
	loadedAt time.Time
}

// NewSnapshot builds a snapshot from fully parsed record slices.
func NewSnapshot(clinical []ClinicalRecord, pharmaco []PharmacoRecord, traits []TraitRecord) *Snapshot {
	s := &Snapshot{
		clinical: make(map[string][]ClinicalRecord, len(clinical)),
		pharmaco: make(map[string][]PharmacoRecord, len(pharmaco)),
		trait:    make(map[string][]TraitRecord, len(traits)),
		loadedAt: time.Now(),
	}
	for _, r := range clinical {
		s.clinical[r.RSID] = append(s.clinical[r.RSID], r)
	}
	for _, r := range pharmaco {
		s.pharmaco[r.RSID] = append(s.pharmaco[r.RSID], r)
	}
	for _, r := range traits {
		s.trait[r.RSID] = append(s.trait[r.RSID], r)
	}
	return s
}

// Clinical returns all clinical records for an rsid. One rsid may map to
// multiple conditions; absence is an empty result, not an error.
func (s *Snapshot) Clinical(rsid string) []ClinicalRecord {
	return s.clinical[rsid]
}

// Pharmaco returns all pharmacogenomic records for an rsid.
func (s *Snapshot) Pharmaco(rsid string) []PharmacoRecord {
	return s.pharmaco[rsid]
}

// Trait returns all trait association records for an rsid.
func (s *Snapshot) Trait(rsid string) []TraitRecord {
	return s.trait[rsid]
}

// Counts returns the number of records per table.
func (s *Snapshot) Counts() (clinical, pharmaco, trait int) {
	for _, recs := range s.clinical {
		clinical += len(recs)
	}
	for _, recs := range s.pharmaco {
		pharmaco += len(recs)
	}
	for _, recs := range s.trait {
		trait += len(recs)
	}
	return
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// DB publishes reference snapshots. Loads build a complete new snapshot
// off to the side and swap it in atomically, so readers never observe a
// half-loaded table; in-flight runs keep whichever snapshot was current
// when they began.
type DB struct {
	current atomic.Pointer[Snapshot]
}

// NewDB creates an empty reference database with no snapshot loaded.
func NewDB() *DB {
	return &DB{}
}

// Load parses the reference TSV tables from dir and publishes the result
// as the new current snapshot. On error nothing is published and the
// previous snapshot stays current.
func (db *DB) Load(dir string) (*LoadStats, error) {
	snap, stats, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	db.Publish(snap)
	return stats, nil
}

// Publish atomically replaces the current snapshot.
func (db *DB) Publish(s *Snapshot) {
	db.current.Store(s)
}

// Snapshot returns the current snapshot, or nil if no load has completed.
func (db *DB) Snapshot() *Snapshot {
	return db.current.Load()
}

// Status reports per-table load state for the current snapshot.
func (db *DB) Status() Status {
	snap := db.Snapshot()
	if snap == nil {
		return Status{}
	}
	clinical, pharmaco, trait := snap.Counts()
	return Status{
		ClinVar:  TableStatus{Loaded: true, RecordCount: clinical, LastUpdated: snap.loadedAt},
		PharmGKB: TableStatus{Loaded: true, RecordCount: pharmaco, LastUpdated: snap.loadedAt},
		GWAS:     TableStatus{Loaded: true, RecordCount: trait, LastUpdated: snap.loadedAt},
	}
}
