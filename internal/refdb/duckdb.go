package refdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Store persists the reference tables in DuckDB. Bulk loads go through
// DuckDB's read_csv, which is much faster than row-by-row inserts for the
// multi-million-row curated sources; lookups at analysis time use an
// in-memory Snapshot built by LoadSnapshot.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func OpenStore(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// ensureSchema creates the three reference tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clinvar (
			rsid VARCHAR,
			gene VARCHAR,
			condition VARCHAR,
			significance VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS pharmgkb (
			rsid VARCHAR,
			gene VARCHAR,
			drug VARCHAR,
			response VARCHAR,
			recommendation VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS gwas (
			rsid VARCHAR,
			trait VARCHAR,
			category VARCHAR,
			effect VARCHAR,
			confidence DOUBLE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	// Indexes for point lookups when querying the store directly
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_clinvar_rsid ON clinvar (rsid)`)
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_pharmgkb_rsid ON pharmgkb (rsid)`)
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_gwas_rsid ON gwas (rsid)`)
	return nil
}

// ImportDir bulk-loads the three reference TSVs from a directory using
// DuckDB's read_csv. Existing rows are replaced wholesale (idempotent
// reload); gzipped TSVs are handled transparently by DuckDB.
func (s *Store) ImportDir(dir string) error {
	imports := []struct {
		table   string
		file    string
		columns string
	}{
		{"clinvar", ClinVarFile, "rsid, gene, condition, significance"},
		{"pharmgkb", PharmGKBFile, "rsid, gene, drug, response, recommendation"},
		{"gwas", GWASFile, "rsid, trait, category, effect, CAST(confidence AS DOUBLE)"},
	}

	for _, imp := range imports {
		path := filepath.Join(dir, imp.file)
		if _, err := os.Stat(path); err != nil {
			if gz := path + ".gz"; statOK(gz) {
				path = gz
			} else {
				return fmt.Errorf("reference table %s: %w", imp.file, err)
			}
		}

		if _, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s`, imp.table)); err != nil {
			return fmt.Errorf("clear %s: %w", imp.table, err)
		}

		query := fmt.Sprintf(`INSERT INTO %s SELECT %s
			FROM read_csv('%s', delim='\t', header=true)`,
			imp.table, imp.columns, strings.ReplaceAll(path, "'", "''"))
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("import %s: %w", imp.table, err)
		}
	}

	// Same row constraints the TSV loaders enforce, applied after the
	// bulk load.
	prunes := []string{
		`DELETE FROM clinvar WHERE rsid IS NULL OR rsid = '' OR condition IS NULL OR condition = ''`,
		`DELETE FROM pharmgkb WHERE rsid IS NULL OR rsid = '' OR drug IS NULL OR drug = ''`,
		`DELETE FROM gwas WHERE rsid IS NULL OR rsid = '' OR trait IS NULL OR trait = ''
			OR confidence IS NULL OR confidence < 0 OR confidence > 1`,
	}
	for _, stmt := range prunes {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("prune invalid rows: %w", err)
		}
	}

	return nil
}

func statOK(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadSnapshot reads all three tables back into an in-memory snapshot for
// O(1) rsid lookups during analysis.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	var clinical []ClinicalRecord
	rows, err := s.db.Query(`SELECT rsid, COALESCE(gene, ''), condition, significance FROM clinvar`)
	if err != nil {
		return nil, fmt.Errorf("query clinvar: %w", err)
	}
	for rows.Next() {
		var r ClinicalRecord
		if err := rows.Scan(&r.RSID, &r.Gene, &r.Condition, &r.Significance); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan clinvar row: %w", err)
		}
		clinical = append(clinical, r)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("iterate clinvar: %w", err)
	}

	var pharmaco []PharmacoRecord
	rows, err = s.db.Query(`SELECT rsid, gene, drug, response, COALESCE(recommendation, '') FROM pharmgkb`)
	if err != nil {
		return nil, fmt.Errorf("query pharmgkb: %w", err)
	}
	for rows.Next() {
		var r PharmacoRecord
		if err := rows.Scan(&r.RSID, &r.Gene, &r.Drug, &r.Response, &r.Recommendation); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan pharmgkb row: %w", err)
		}
		pharmaco = append(pharmaco, r)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("iterate pharmgkb: %w", err)
	}

	var traits []TraitRecord
	rows, err = s.db.Query(`SELECT rsid, trait, COALESCE(category, ''), COALESCE(effect, ''), confidence FROM gwas`)
	if err != nil {
		return nil, fmt.Errorf("query gwas: %w", err)
	}
	for rows.Next() {
		var r TraitRecord
		if err := rows.Scan(&r.RSID, &r.Trait, &r.Category, &r.Effect, &r.Confidence); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan gwas row: %w", err)
		}
		traits = append(traits, r)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("iterate gwas: %w", err)
	}

	return NewSnapshot(clinical, pharmaco, traits), nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

// Counts returns the number of rows per reference table.
func (s *Store) Counts() (clinical, pharmaco, trait int64, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM clinvar`).Scan(&clinical); err != nil {
		return 0, 0, 0, fmt.Errorf("count clinvar: %w", err)
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM pharmgkb`).Scan(&pharmaco); err != nil {
		return 0, 0, 0, fmt.Errorf("count pharmgkb: %w", err)
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM gwas`).Scan(&trait); err != nil {
		return 0, 0, 0, fmt.Errorf("count gwas: %w", err)
	}
	return clinical, pharmaco, trait, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
