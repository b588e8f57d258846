// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mergington-activities/internal/activities"
	"mergington-activities/internal/api"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/models"
)

type backendCase struct {
	name  string
	store func(t *testing.T, cfg *config.Config) activities.Store
}

func backends() []backendCase {
	return []backendCase{
		{
			name: config.BackendMemory,
			store: func(t *testing.T, _ *config.Config) activities.Store {
				return activities.NewMemoryStore()
			},
		},
		{
			name: config.BackendRedis,
			store: func(t *testing.T, cfg *config.Config) activities.Store {
				mr := miniredis.RunT(t)
				cfg.Database.Redis.Address = mr.Addr()
				rdb, err := database.NewRedis(context.Background(), cfg.Database.Redis)
				require.NoError(t, err, "❌ Redis connection failed")
				return activities.NewRedisStore(rdb, cfg.Database.Redis.KeyPrefix)
			},
		},
		{
			// Runs only against a real database: E2E_POSTGRES_HOST=localhost go test ./test/e2e
			name: config.BackendPostgres,
			store: func(t *testing.T, cfg *config.Config) activities.Store {
				host := os.Getenv("E2E_POSTGRES_HOST")
				if host == "" {
					t.Skip("E2E_POSTGRES_HOST not set")
				}
				cfg.Database.Postgres.Host = host
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				db, err := database.OpenPostgres(ctx, cfg.Database.Postgres)
				require.NoError(t, err, "❌ PostgreSQL connection failed")
				store := activities.NewPostgresStore(db)
				require.NoError(t, store.Migrate(ctx))
				return store
			},
		},
	}
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: activity-server-e2e
database:
  postgres:
    port: 5432
    database: activities
    user: postgres
    password: postgres
  redis:
    key_prefix: e2e
`), 0o600))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	return cfg
}

func TestFullE2E(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			cfg := loadConfig(t)
			store := bc.store(t, cfg)
			t.Cleanup(func() { _ = store.Close() })

			t.Logf("🚀 Starting E2E run on the %s backend...", bc.name)

			// 1. Seed the embedded catalog
			catalog, err := activities.LoadCatalog(cfg.Catalog.Path)
			require.NoError(t, err)
			registry := activities.NewRegistry(store, logger.NewTestLogger(t))
			require.NoError(t, registry.Bootstrap(context.Background(), catalog))
			t.Log("✅ Catalog seeded")

			// 2. Serve it
			srv := httptest.NewServer(api.NewServer(registry, logger.NewTestLogger(t), api.Options{}).Handler())
			defer srv.Close()

			// 3. Walk the signup flow
			testFreshState(t, srv.URL)
			testSignup(t, srv.URL)
			testUnknownActivity(t, srv.URL)
			testSubmissionOrder(t, srv.URL)
			testConcurrentSignups(t, srv.URL)
			testReadiness(t, srv.URL)

			t.Log("✅ E2E flow passed")
		})
	}
}

// ==========================
// Helpers
// ==========================

func listActivities(t *testing.T, base string) map[string]models.Activity {
	t.Helper()
	resp, err := http.Get(base + "/activities")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]models.Activity
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func signup(t *testing.T, base, activity, email string) (int, map[string]string) {
	t.Helper()
	target := base + "/activities/" + url.PathEscape(activity) + "/signup?email=" + url.QueryEscape(email)
	resp, err := http.Post(target, "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

// ==========================
// Steps
// ==========================

func testFreshState(t *testing.T, base string) {
	got := listActivities(t, base)
	assert.Len(t, got, 22)
	assert.Equal(t,
		[]string{"michael@mergington.edu", "daniel@mergington.edu"},
		got["Chess Club"].Participants,
	)
	t.Log("✅ Fresh catalog listed")
}

func testSignup(t *testing.T, base string) {
	status, body := signup(t, base, "Chess Club", "new@mergington.edu")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Signed up new@mergington.edu for Chess Club", body["message"])

	roster := listActivities(t, base)["Chess Club"].Participants
	require.NotEmpty(t, roster)
	assert.Equal(t, "new@mergington.edu", roster[len(roster)-1])
	t.Log("✅ Signup appended")
}

func testUnknownActivity(t *testing.T, base string) {
	before := listActivities(t, base)

	status, body := signup(t, base, "Nonexistent Club", "x@mergington.edu")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Activity not found", body["detail"])

	assert.Equal(t, before, listActivities(t, base))
	t.Log("✅ Unknown activity rejected")
}

func testSubmissionOrder(t *testing.T, base string) {
	for _, email := range []string{"first@mergington.edu", "second@mergington.edu"} {
		status, _ := signup(t, base, "Basketball Team", email)
		require.Equal(t, http.StatusOK, status)
	}
	assert.Equal(t,
		[]string{"first@mergington.edu", "second@mergington.edu"},
		listActivities(t, base)["Basketball Team"].Participants,
	)
	t.Log("✅ Submission order kept")
}

func testConcurrentSignups(t *testing.T, base string) {
	const n = 25
	before := len(listActivities(t, base)["Science Club"].Participants)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target := base + "/activities/Science%20Club/signup?email=lab@mergington.edu"
			if resp, err := http.Post(target, "", nil); err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, listActivities(t, base)["Science Club"].Participants, before+n)
	t.Log("✅ Concurrent signups all recorded")
}

func testReadiness(t *testing.T, base string) {
	resp, err := http.Get(base + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
