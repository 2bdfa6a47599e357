package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/bookhaven/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		for _, table := range []string{"books", "orders", "order_items"} {
			var count int
			err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
			require.NoError(t, err, table)
		}
	})

	t.Run("records schema version", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		var version int
		require.NoError(t, db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version))
		assert.Equal(t, 1, version)
	})

	t.Run("reopens an existing database with its data", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		dbPath := filepath.Join(t.TempDir(), "books.db")
		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, `INSERT INTO orders
			(id, customer_name, customer_email, customer_phone, customer_location, payment, total, created_at)
			VALUES ('o1', 'Rana', 'rana@example.com', '555', 'Beirut', 'cash', '10.00', '2026-01-01T00:00:00Z')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("rejects a newer schema", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "future.db")
		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(context.Background(), "PRAGMA user_version = 99")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		err = sqlite.NewDB(dbPath).Open()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "newer than supported")
	})

	t.Run("enforces foreign keys", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		_, err := db.ExecContext(context.Background(), `INSERT INTO order_items
			(order_id, line, book_id, title, unit_price, quantity, subtotal)
			VALUES ('missing', 0, 'b1', 'Book', '1.00', 1, '1.00')`)
		assert.Error(t, err)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "wal.db")
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})
}
