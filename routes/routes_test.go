package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pavangowda-dev/StockIQ/auth"
	"github.com/Pavangowda-dev/StockIQ/forecast"
	"github.com/Pavangowda-dev/StockIQ/handlers"
	"github.com/Pavangowda-dev/StockIQ/metrics"
	"github.com/Pavangowda-dev/StockIQ/middleware"
	"github.com/Pavangowda-dev/StockIQ/storage"
)

func setupApp(t *testing.T, withAuth bool) (*fiber.App, *auth.Service) {
	t.Helper()
	log := zap.NewNop()
	m := metrics.New("stockiq")

	var svc *auth.Service
	if withAuth {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
		require.NoError(t, err)
		users := auth.NewMemorySource()
		users.Add(auth.User{Username: "alice", HashedPassword: string(hash)})
		svc, err = auth.NewService("test-secret", 30*time.Minute, users, log)
		require.NoError(t, err)
	}

	h := handlers.New(handlers.Deps{
		Store:   storage.NewMemoryStore(),
		Engine:  forecast.NewEngine(forecast.DefaultConfig(), log),
		Auth:    svc,
		Metrics: m,
		Log:     log,
	})

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	app.Use(middleware.RequestLogger(log, m))
	SetupRoutes(app, h, svc, m)
	return app, svc
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	form := url.Values{"username": {"alice"}, "password": {"secret"}}
	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["access_token"]
}

func upload(t *testing.T, token, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "sales.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/data/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestDataRoutesRequireToken(t *testing.T) {
	app, _ := setupApp(t, true)

	for _, path := range []string{"/data/list", "/data/get/sales_data/x.csv", "/data/forecast/sales_data/x.csv"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode, path)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"), path)
	}

	resp, err := app.Test(upload(t, "", "date,product_id,quantity\n2024-01-01,A,1\n"), -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestUploadAndForecastWithToken(t *testing.T) {
	app, _ := setupApp(t, true)
	token := login(t, app)

	var csv strings.Builder
	csv.WriteString("date,product_id,quantity\n")
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		csv.WriteString(day.AddDate(0, 0, i).Format("2006-01-02") + ",SKU-1,20\n")
	}

	resp, err := app.Test(upload(t, token, csv.String()), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var up map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))

	req := httptest.NewRequest("GET", "/data/forecast/"+up["s3_filename"], nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		Forecast  []map[string]interface{} `json:"forecast"`
		Inventory []map[string]interface{} `json:"inventory"`
		Warning   *string                  `json:"warning"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Forecast, 30)
	assert.Equal(t, "2024-02-15", out.Forecast[0]["date"])
	require.Len(t, out.Inventory, 1)
	assert.Nil(t, out.Warning)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))
}

func TestOpenRoutesWithoutAuth(t *testing.T) {
	app, _ := setupApp(t, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/data/list", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/auth/token", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := setupApp(t, false)

	_, err := app.Test(httptest.NewRequest("GET", "/healthz", nil), -1)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `stockiq_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
