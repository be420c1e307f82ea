// Package store implements the persistence gateway on SQLite: a
// keyed upsert store for canonical offerings (keyed by the exact
// display name) plus an append-only activity log. Each per-offering
// upsert is independently atomic; the store never rolls back a run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/logging"
	"github.com/ipomoney/ipopulse/pkg/offerings"
	"github.com/ipomoney/ipopulse/pkg/reconcile"
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at the given path and ensures
// all tables exist. Pass ":memory:" for an in-memory database.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// WAL for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS offerings (
			name TEXT PRIMARY KEY,
			identity_key TEXT NOT NULL,
			type TEXT,
			status TEXT,
			open_date TEXT,
			close_date TEXT,
			listing_date TEXT,
			price_band_min REAL,
			price_band_max REAL,
			issue_size_cr REAL,
			lot_size INTEGER,
			gmp INTEGER,
			gmp_pct REAL,
			sources TEXT,
			gmp_updated_at DATETIME,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offerings_status ON offerings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_offerings_identity ON offerings(identity_key)`,

		`CREATE TABLE IF NOT EXISTS activity_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT NOT NULL,
			records INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_log_source ON activity_log(source)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}

// Upsert writes one canonical offering, inserting or replacing the
// row for its display name. The grey-market premium timestamp is
// refreshed whenever a positive premium is written.
func (s *Store) Upsert(ctx context.Context, o offerings.Offering) error {
	now := time.Now().UTC()

	var gmpUpdatedAt any
	if o.GMP != nil && *o.GMP > 0 {
		gmpUpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offerings (
			name, identity_key, type, status,
			open_date, close_date, listing_date,
			price_band_min, price_band_max, issue_size_cr, lot_size,
			gmp, gmp_pct, sources, gmp_updated_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			identity_key = excluded.identity_key,
			type = excluded.type,
			status = excluded.status,
			open_date = excluded.open_date,
			close_date = excluded.close_date,
			listing_date = excluded.listing_date,
			price_band_min = excluded.price_band_min,
			price_band_max = excluded.price_band_max,
			issue_size_cr = excluded.issue_size_cr,
			lot_size = excluded.lot_size,
			gmp = excluded.gmp,
			gmp_pct = excluded.gmp_pct,
			sources = excluded.sources,
			gmp_updated_at = COALESCE(excluded.gmp_updated_at, offerings.gmp_updated_at),
			updated_at = excluded.updated_at`,
		o.Name, o.IdentityKey, nullString(string(o.Type)), nullString(string(o.Status)),
		dateString(o.OpenDate), dateString(o.CloseDate), dateString(o.ListingDate),
		nullFloat(o.PriceBandMin), nullFloat(o.PriceBandMax), nullFloat(o.IssueSizeCr), nullInt(o.LotSize),
		nullInt(o.GMP), nullFloat(o.GMPPct), sourcesString(o.Sources), gmpUpdatedAt, now,
	)
	if err != nil {
		return errors.NewPersistError(o.Name, err)
	}
	return nil
}

// ListAll returns the persisted name/status pairs for transition
// detection.
func (s *Store) ListAll(ctx context.Context) ([]offerings.Persisted, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, COALESCE(status, '') FROM offerings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	defer rows.Close()

	var persisted []offerings.Persisted
	for rows.Next() {
		var p offerings.Persisted
		var status string
		if err := rows.Scan(&p.Name, &status); err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		p.Status = offerings.Status(status)
		persisted = append(persisted, p)
	}
	return persisted, rows.Err()
}

// List returns all stored offerings, ordered by name.
func (s *Store) List(ctx context.Context) ([]offerings.Offering, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` FROM offerings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	defer rows.Close()

	var result []offerings.Offering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// Get returns one stored offering by exact display name.
func (s *Store) Get(ctx context.Context, name string) (*offerings.Offering, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` FROM offerings WHERE name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("get offering: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, errors.ErrNotFound
	}
	o, err := scanOffering(rows)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Record implements reconcile.ActivitySink. A failed write is logged
// and dropped; the activity trail must never fail a run.
func (s *Store) Record(ctx context.Context, entry reconcile.ActivityEntry) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (source, status, message, records, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.Source, string(entry.Status), entry.Message, entry.Records, time.Now().UTC(),
	)
	if err != nil {
		logging.Warn().Err(err).Str("source", entry.Source).Msg("Failed to write activity entry")
	}
}

// ActivityRow is one stored activity log entry.
type ActivityRow struct {
	ID        int64                    `json:"id"`
	Source    string                   `json:"source"`
	Status    reconcile.ActivityStatus `json:"status"`
	Message   string                   `json:"message"`
	Records   int                      `json:"records"`
	CreatedAt time.Time                `json:"created_at"`
}

// Activity returns the most recent activity entries, newest first.
func (s *Store) Activity(ctx context.Context, limit int) ([]ActivityRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, status, message, records, created_at
		FROM activity_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var result []ActivityRow
	for rows.Next() {
		var row ActivityRow
		var status string
		if err := rows.Scan(&row.ID, &row.Source, &status, &row.Message, &row.Records, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		row.Status = reconcile.ActivityStatus(status)
		result = append(result, row)
	}
	return result, rows.Err()
}

const selectColumns = `SELECT name, identity_key, type, status,
	open_date, close_date, listing_date,
	price_band_min, price_band_max, issue_size_cr, lot_size,
	gmp, gmp_pct, sources`

func scanOffering(rows *sql.Rows) (offerings.Offering, error) {
	var o offerings.Offering
	var typ, status, openDate, closeDate, listingDate, srcs sql.NullString
	var bandMin, bandMax, issueSize, gmpPct sql.NullFloat64
	var lotSize, gmp sql.NullInt64

	if err := rows.Scan(
		&o.Name, &o.IdentityKey, &typ, &status,
		&openDate, &closeDate, &listingDate,
		&bandMin, &bandMax, &issueSize, &lotSize,
		&gmp, &gmpPct, &srcs,
	); err != nil {
		return o, fmt.Errorf("scan offering: %w", err)
	}

	o.Type = offerings.OfferingType(typ.String)
	o.Status = offerings.Status(status.String)
	o.OpenDate = parseDate(openDate)
	o.CloseDate = parseDate(closeDate)
	o.ListingDate = parseDate(listingDate)
	o.PriceBandMin = floatPtr(bandMin)
	o.PriceBandMax = floatPtr(bandMax)
	o.IssueSizeCr = floatPtr(issueSize)
	o.LotSize = intPtr(lotSize)
	o.GMPPct = floatPtr(gmpPct)
	if gmp.Valid {
		v := int(gmp.Int64)
		o.GMP = &v
	}
	if srcs.Valid && srcs.String != "" {
		for _, id := range strings.Split(srcs.String, ",") {
			o.Sources = append(o.Sources, offerings.SourceID(id))
		}
	}
	return o, nil
}

func parseDate(v sql.NullString) *offerings.Date {
	if !v.Valid || v.String == "" {
		return nil
	}
	d, err := offerings.ParseDate(v.String)
	if err != nil {
		return nil
	}
	return &d
}

func dateString(d *offerings.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func sourcesString(ids []offerings.SourceID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
