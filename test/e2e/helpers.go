package e2e

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/openacre/loam/internal/api"
	"github.com/openacre/loam/internal/config"
	"github.com/openacre/loam/internal/projection"
	"github.com/openacre/loam/internal/store"
	"github.com/openacre/loam/pkg/client"
)

const testAdminKey = "test-admin-key"

// questionnaireAnswers is the standard intake used by the flow tests.
var questionnaireAnswers = map[int]string{
	1: "Restore the soil and build a small market garden",
	2: "Meaningful results within 5 years",
	3: "Moderate budget, roughly $15k over the first three years",
	4: "A few seasons of vegetable gardening",
}

// setupService boots the full service in-process on a throwaway database
// and returns a public client and an admin client pointed at it.
func setupService(t *testing.T) (*client.Client, *client.Client) {
	return setupServiceWith(t, nil)
}

// setupServiceWith is setupService with a hook to adjust the configuration
// before the service is wired.
func setupServiceWith(t *testing.T, adjust func(*config.Config)) (*client.Client, *client.Client) {
	t.Helper()

	cfg := testConfig(t)
	if adjust != nil {
		adjust(cfg)
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path, cfg.Database.SnapshotDir)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	generator := projection.NewGenerator(cfg, logger)

	handler := api.NewHandler(db, generator, testAdminKey, "1.0.0-test")
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)

	return newClient(t, srv.URL, ""), newClient(t, srv.URL, testAdminKey)
}

// testConfig loads defaults and rewires the paths into a temp directory.
// The generation API key is cleared so projections always come from the
// local estimator and the tests stay hermetic.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv("LOAM_CONFIG_PATH", filepath.Join(tmp, "no-config.yaml"))
	t.Setenv("LOAM_DEV_MODE", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	cfg.Database.Path = filepath.Join(tmp, "loam.db")
	cfg.Database.SnapshotDir = filepath.Join(tmp, "snapshots")
	cfg.Generation.APIKey = ""

	return cfg
}

func newClient(t *testing.T, baseURL, adminKey string) *client.Client {
	t.Helper()

	c, err := client.New(client.Config{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return c
}

// createInquiry opens an inquiry with a standard Oregon test property.
func createInquiry(t *testing.T, c *client.Client) *client.Inquiry {
	t.Helper()

	inq, err := c.CreateInquiry(context.Background(), client.CreateInquiryParams{
		Address:     "482 County Road 12, Junction City, OR",
		LotSize:     50,
		UserContext: "Third-generation family land, currently conventional hay.",
	})
	if err != nil {
		t.Fatalf("CreateInquiry: %v", err)
	}
	return inq
}

// completeQuestionnaire answers all four intake questions.
func completeQuestionnaire(t *testing.T, c *client.Client, id string) {
	t.Helper()

	for n := 1; n <= len(questionnaireAnswers); n++ {
		if _, err := c.SubmitAnswer(context.Background(), id, n, questionnaireAnswers[n]); err != nil {
			t.Fatalf("SubmitAnswer %d: %v", n, err)
		}
	}
}

// generateProjection drives an inquiry from creation through a completed
// projection and returns the final record.
func generateProjection(t *testing.T, c *client.Client) *client.Inquiry {
	t.Helper()

	inq := createInquiry(t, c)
	completeQuestionnaire(t, c, inq.ID)

	state, err := c.RequestProjection(context.Background(), inq.ID)
	if err != nil {
		t.Fatalf("RequestProjection: %v", err)
	}
	if state.Status != client.StatusCompleted {
		t.Fatalf("projection status = %q, want completed", state.Status)
	}
	return state.Inquiry
}
