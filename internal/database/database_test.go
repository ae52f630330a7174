package database

import (
	"context"
	"testing"

	"nightclub_backoffice/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MemoryRunsMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.StorageConfig{Backend: config.StorageBackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db, config.StorageBackendMemory, "up"))

	for _, table := range []string{"guests", "inventory", "orders", "order_items", "payments", "inventory_movements", "ticket_templates"} {
		var n int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
		require.NoError(t, err, table)
		assert.Zero(t, n, table)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "mock"})
	require.Error(t, err)
}

func TestMemory_EnforcesForeignKeys(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.StorageConfig{Backend: config.StorageBackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(ctx, db, config.StorageBackendMemory, "up"))

	_, err = db.ExecContext(ctx,
		`INSERT INTO order_items (id, order_id, inventory_id, quantity, unit_price, subtotal, created_at)
		 VALUES ('i1', 'missing-order', 'missing-item', 1, 1, 1, CURRENT_TIMESTAMP)`)
	require.Error(t, err)
}

func TestMemory_SingleDefaultTemplateIndex(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.StorageConfig{Backend: config.StorageBackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(ctx, db, config.StorageBackendMemory, "up"))

	insert := `INSERT INTO ticket_templates (id, name, categories, is_default, created_at, updated_at)
	           VALUES ($1, $2, '[]', $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	_, err = db.ExecContext(ctx, insert, "a", "A", true)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "b", "B", false)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "c", "C", true)
	require.Error(t, err)
}

func TestDialect(t *testing.T) {
	d, err := Dialect(config.StorageBackendLive)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	d, err = Dialect(config.StorageBackendMemory)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d)

	_, err = Dialect("nope")
	require.Error(t, err)
}
