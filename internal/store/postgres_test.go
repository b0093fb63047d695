package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/JonMunkholm/sakilaimport/internal/config"
	"github.com/JonMunkholm/sakilaimport/internal/schema"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDatabaseURL returns the PostgreSQL URL used by integration tests,
// skipping the test when none is configured.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("SAKILAIMPORT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SAKILAIMPORT_TEST_DATABASE_URL not set")
	}
	return url
}

func TestOpenPostgresInvalidURL(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "postgres://%zz", config.DatabaseConfig{MaxConns: 1})
	assert.ErrorContains(t, err, "parse database URL")
}

func TestOpenPostgresUnreachable(t *testing.T) {
	cfg := config.DatabaseConfig{MaxConns: 1, ConnectTimeout: time.Second}
	_, err := OpenPostgres(context.Background(), "postgres://sakila@127.0.0.1:1/sakila?sslmode=disable", cfg)
	assert.ErrorContains(t, err, "ping database")
}

func TestPostgresWrite(t *testing.T) {
	url := testDatabaseURL(t)
	ctx := context.Background()

	// Each run gets its own schema so tests do not see each other's tables.
	searchPath := "sakila_test_" + uuid.NewString()[:8]
	admin, err := pgx.Connect(ctx, url)
	require.NoError(t, err)
	defer admin.Close(ctx)
	_, err = admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema.Quote(searchPath)))
	require.NoError(t, err)
	t.Cleanup(func() {
		admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema.Quote(searchPath)))
	})

	backend, err := OpenPostgres(ctx, url, config.DatabaseConfig{MaxConns: 2, ConnectTimeout: 5 * time.Second, Schema: searchPath})
	require.NoError(t, err)

	s := NewSession(schema.Default(), backend, testLogger())
	country, city, address := addressChain()
	insertAll(t, s, country, city, address)
	require.NoError(t, s.Commit(ctx))

	var name string
	err = admin.QueryRow(ctx, fmt.Sprintf(`
		SELECT co.country
		FROM %[1]s.address a
		JOIN %[1]s.city ci ON ci.id = a.city_id
		JOIN %[1]s.country co ON co.id = ci.country_id
		WHERE a.id = 1`, schema.Quote(searchPath))).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "Canada", name)

	assert.ErrorIs(t, backend.Write(ctx, schema.Default(), nil), ErrClosed)
}
