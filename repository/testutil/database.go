package testutil

import (
	"context"
	"testing"

	"nebulines/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const postgresImage = "postgres:16-alpine"

// TestDatabase is a migrated Postgres running in a throwaway container
type TestDatabase struct {
	DB  *database.DB
	URL string
}

// SetupTestDatabase starts Postgres for t, applies every migration and opens a
// pool. The pool and container go away when t finishes.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	url := startPostgres(ctx, t)
	require.NoError(t, database.RunMigrationsWithURL(url), "migrations")

	db, err := database.NewConnection(ctx, url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return &TestDatabase{DB: db, URL: url}
}

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("nebulines_test"),
		postgres.WithUsername("nebulines"),
		postgres.WithPassword("nebulines"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"nebulines.test": t.Name()}),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start postgres")

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}
