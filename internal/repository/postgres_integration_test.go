//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("estimator_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, Config{Driver: "pgx", DSN: dsn, MaxConns: 4, DialTimeout: 10 * time.Second}, nil)
	require.NoError(t, err)
	defer db.Close(nil)

	require.NoError(t, HealthCheck(ctx, db, 5*time.Second, nil))
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrations are idempotent")

	store := NewStore(db, nil)
	estimates := NewEstimateRepository(store, nil)
	require.NoError(t, estimates.Create(ctx, &entity.Estimate{EstimateID: "e1", ProjectID: "p1", Version: 1, Status: constants.EstimateStatusDraft}))
	require.NoError(t, estimates.Create(ctx, &entity.Estimate{EstimateID: "e2", ProjectID: "p1", Version: 2, Status: constants.EstimateStatusDraft}))

	latest, err := estimates.LatestVersion(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest)

	catalog := NewCatalogRepository(db, nil)
	require.NoError(t, catalog.UpsertAssembly(ctx, &entity.Assembly{ID: "a1", Code: "SVC-PNL", Name: "200A panel", Phase: "service", LaborMinutes: 480, DefaultMaterialCost: entity.Float64(650)}))
	a, err := catalog.GetAssembly(ctx, "SVC-PNL")
	require.NoError(t, err)
	assert.Equal(t, 480.0, a.LaborMinutes)
	assert.Equal(t, 650.0, *a.DefaultMaterialCost)
}
