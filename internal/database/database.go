package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"dealstack-api/internal/models"
)

// DB wraps the database connection and provides the key-value style access
// the aggregator needs: one crowdsourced record per merchant domain.
type DB struct {
	conn *sql.DB
	sq   sq.StatementBuilderType
}

// NewDB creates a new database connection and initializes the schema.
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn: conn,
		sq:   sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist.
func (db *DB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS domain_records (
			domain TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_domain_records_updated_at ON domain_records(updated_at)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// GetDomainRecord loads the crowdsourced record for a domain. A missing
// domain returns (nil, nil): absence is not an error.
func (db *DB) GetDomainRecord(domain string) (*models.DomainRecord, error) {
	query, args, err := db.sq.
		Select("record").
		From("domain_records").
		Where(sq.Eq{"domain": domain}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var raw string
	if err := db.conn.QueryRow(query, args...).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load domain record: %w", err)
	}

	var rec models.DomainRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode domain record for %s: %w", domain, err)
	}
	return &rec, nil
}

// PutDomainRecord stores (insert or replace) the record for a domain.
func (db *DB) PutDomainRecord(domain string, rec models.DomainRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode domain record: %w", err)
	}

	query, args, err := db.sq.
		Insert("domain_records").
		Columns("domain", "record", "updated_at").
		Values(domain, string(raw), time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(domain) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if _, err := db.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to store domain record: %w", err)
	}
	return nil
}

// DeleteDomainRecord removes a domain's record. Deleting a domain that was
// never reported is a no-op, not an error. Records are only ever deleted
// through this explicit operator path.
func (db *DB) DeleteDomainRecord(domain string) error {
	query, args, err := db.sq.
		Delete("domain_records").
		Where(sq.Eq{"domain": domain}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	if _, err := db.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete domain record: %w", err)
	}
	return nil
}

// ListDomains returns every domain with a stored record, most recently
// updated first.
func (db *DB) ListDomains() ([]string, error) {
	query, args, err := db.sq.
		Select("domain").
		From("domain_records").
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating domains: %w", err)
	}
	return domains, nil
}
