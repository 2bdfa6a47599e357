// Package sqlite provides SQLite-based storage for books and orders.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// pragmas are applied to every connection on Open, in order.
var pragmas = []struct {
	stmt     string
	fileOnly bool
}{
	// Wait on lock contention instead of failing with "database is locked".
	{stmt: "PRAGMA busy_timeout = 5000"},
	// WAL lets the web server read while a scrape upserts. Not available
	// for in-memory databases.
	{stmt: "PRAGMA journal_mode = WAL", fileOnly: true},
	// order_items cascade on order deletion.
	{stmt: "PRAGMA foreign_keys = ON"},
}

// Open opens the database connection, applies pragmas and creates the
// schema if needed.
func (db *DB) Open() (err error) {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			conn.Close()
		}
	}()

	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, p := range pragmas {
		if p.fileOnly && db.path == ":memory:" {
			continue
		}
		if _, err := conn.Exec(p.stmt); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p.stmt, err)
		}
	}

	db.db = conn
	if err := db.createSchema(); err != nil {
		db.db = nil
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// SQL returns the underlying connection pool, or nil before Open.
func (db *DB) SQL() *sql.DB {
	return db.db
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// schemaVersion is stored in PRAGMA user_version after createSchema.
const schemaVersion = 1

// createSchema creates the database tables if they don't exist.
// Prices and totals are stored as decimal TEXT to keep them exact.
func (db *DB) createSchema() error {
	var version int
	if err := db.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			price TEXT,
			rating INTEGER NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT '',
			source_url TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			upc TEXT NOT NULL DEFAULT '',
			availability TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			scraped_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			customer_location TEXT NOT NULL,
			delivery INTEGER NOT NULL DEFAULT 0,
			payment TEXT NOT NULL,
			feedback TEXT NOT NULL DEFAULT '',
			total TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			line INTEGER NOT NULL,
			book_id TEXT NOT NULL,
			title TEXT NOT NULL,
			unit_price TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			subtotal TEXT NOT NULL,
			PRIMARY KEY (order_id, line)
		);

		CREATE INDEX IF NOT EXISTS idx_books_position ON books(position);
		CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(customer_email);
	`

	if _, err := db.db.Exec(schema); err != nil {
		return err
	}
	_, err := db.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}
