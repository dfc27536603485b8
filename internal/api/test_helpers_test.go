package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/insights"
	"github.com/terraincognita07/cyclesense/internal/metrics"
	"github.com/terraincognita07/cyclesense/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

type generatorFunc func(ctx context.Context, prompt insights.Prompt) (string, error)

func (fn generatorFunc) Generate(ctx context.Context, prompt insights.Prompt) (string, error) {
	return fn(ctx, prompt)
}

type testEnv struct {
	app      *fiber.App
	database *gorm.DB
	deps     Dependencies
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T, generator services.InsightGenerator) testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	recorder := metrics.New()
	deps := BuildDependencies(database, ServiceSettings{
		Location:          time.UTC,
		CycleBounds:       services.DefaultCycleBounds(),
		HistoryLimit:      12,
		InsightsPerMinute: 1,
		InsightsGenerator: generator,
	}, recorder, zap.NewNop())

	handler, err := NewHandler(deps, Options{
		SecretKey: testSecretKey,
		Clock:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	return testEnv{app: NewApp(handler), database: database, deps: deps, metrics: recorder}
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, payload any, token string) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return response, raw
}

func decodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		t.Fatalf("decode %s: %v", string(raw), err)
	}
	return value
}

func readAPIError(t *testing.T, raw []byte) string {
	t.Helper()
	return decodeJSON[map[string]string](t, raw)["error"]
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func registerTestUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	response, raw := doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": "StrongPass1",
	}, "")
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", response.StatusCode, raw)
	}
	return decodeJSON[sessionResponse](t, raw).Token
}

func setTestProfile(t *testing.T, app *fiber.App, token string, lastPeriod string, cycleLength int) {
	t.Helper()

	response, raw := doJSON(t, app, http.MethodPut, "/api/profile", map[string]any{
		"last_period_date":      lastPeriod,
		"average_cycle_length":  cycleLength,
		"average_period_length": 5,
	}, token)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected profile update 200, got %d: %s", response.StatusCode, raw)
	}
}
