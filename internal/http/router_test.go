package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/config"
	"github.com/tbourn/go-med-robot/internal/http/middleware"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/services"
)

type fakeRobot struct{ calls int }

func (f *fakeRobot) Run(context.Context) (services.CycleReport, error) {
	f.calls++
	return services.CycleReport{}, nil
}

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.Open(repo.Options{
		Driver: repo.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "router_test.db"),
		Silent: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func baseCfg() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   50,
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
		Robot: config.RobotConfig{
			Location:      time.UTC,
			LowStockUnits: 5,
		},
	}
}

func newRouter(t *testing.T, cfg config.Config, robot *fakeRobot) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	r := gin.New()
	d := Deps{DB: db, Clock: clock.NewManual(time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))}
	if robot != nil {
		d.Robot = robot
	}
	RegisterRoutes(r, d, cfg)
	return r, db
}

func send(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, baseCfg(), nil)

	w := send(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := decode(t, w)["database"]; got != "ok" {
		t.Fatalf("database = %v", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("security headers missing, nosniff=%q", got)
	}

	w = send(r, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	w = send(r, http.MethodGet, "/nope", nil, nil)
	if w.Code != http.StatusNotFound || decode(t, w)["code"] != "not_found" {
		t.Fatalf("GET /nope = %d %s", w.Code, w.Body.String())
	}

	w = send(r, http.MethodPost, "/health", nil, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_HealthDegradedWhenDBClosed(t *testing.T) {
	r, db := newRouter(t, baseCfg(), nil)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	_ = sqlDB.Close()

	w := send(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET /health with closed db = %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := baseCfg()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r, _ := newRouter(t, cfg, nil)

	w := send(r, http.MethodGet, "/health", nil, map[string]string{"Origin": "http://example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	w = send(r, http.MethodGet, "/api/v2/patients", nil, map[string]string{"Origin": "http://example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v2/patients = %d", w.Code)
	}

	w = send(r, http.MethodOptions, "/api/v2/medications/0b6d3c4e-8f1a-4c2b-9d3e-5f6a7b8c9d0e", nil, map[string]string{
		"Origin":                        "http://example.com",
		"Access-Control-Request-Method": http.MethodDelete,
	})
	if w.Code >= 300 || !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Fatalf("preflight: code=%d allow=%q", w.Code, w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("12345"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("small body = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("this body is too large"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("large body = %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		prefix, path string
	}{
		{"", "/ping"},
		{"/", "/ping"},
		{"/api", "/api/ping"},
	} {
		r := gin.New()
		groupWithPrefix(r, tc.prefix).GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("prefix %q: GET %s = %d", tc.prefix, tc.path, w.Code)
		}
	}
}

func TestPipeline_Smoke(t *testing.T) {
	r, _ := newRouter(t, baseCfg(), nil)

	w := send(r, http.MethodPost, "/api/v1/patients", map[string]string{"name": "Maria"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create patient = %d %s", w.Code, w.Body.String())
	}
	pid := decode(t, w)["id"].(string)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}

	w = send(r, http.MethodPost, "/api/v1/patients/"+pid+"/medications", map[string]any{
		"name":                    "Losartan",
		"dose_per_administration": "1",
		"scheduled_times":         []string{"08:00"},
		"pack_capacity":           10,
		"boxes_on_hand":           2,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create medication = %d %s", w.Code, w.Body.String())
	}
	mid := decode(t, w)["id"].(string)

	w = send(r, http.MethodGet, "/api/v1/medications/"+mid, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get medication = %d", w.Code)
	}
	if got := decode(t, w)["stock_level"]; got != "OK" {
		t.Fatalf("stock_level = %v", got)
	}

	w = send(r, http.MethodGet, "/api/v1/patients/"+pid+"/history", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history = %d", w.Code)
	}

	w = send(r, http.MethodGet, "/api/v1/patients/"+pid+"/history/export", nil, map[string]string{"Accept-Encoding": "gzip"})
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if enc := w.Header().Get("Content-Encoding"); enc == "gzip" {
		t.Fatalf("export must not be gzip encoded")
	}

	w = send(r, http.MethodGet, "/api/v1/patients", nil, map[string]string{"Accept-Encoding": "gzip"})
	if w.Code != http.StatusOK || w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("list patients: code=%d encoding=%q", w.Code, w.Header().Get("Content-Encoding"))
	}
}

func TestRegisterRoutes_DeleteMedicationAndPatient(t *testing.T) {
	r, _ := newRouter(t, baseCfg(), nil)

	w := send(r, http.MethodPost, "/api/v1/patients", map[string]string{"name": "Ana", "room": "7"}, nil)
	pid := decode(t, w)["id"].(string)
	create := func() string {
		w := send(r, http.MethodPost, "/api/v1/patients/"+pid+"/medications", map[string]any{
			"name":                    "Dipyrone",
			"dose_per_administration": "1",
			"scheduled_times":         []string{"09:00"},
			"pack_capacity":           10,
			"boxes_on_hand":           1,
		}, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("create medication = %d %s", w.Code, w.Body.String())
		}
		return decode(t, w)["id"].(string)
	}
	first, second := create(), create()

	if w := send(r, http.MethodDelete, "/api/v1/medications/"+first, nil, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete medication = %d %s", w.Code, w.Body.String())
	}
	w = send(r, http.MethodPut, "/api/v1/patients/"+pid, map[string]string{"name": "Ana", "condition": "CRITICAL"}, nil)
	if w.Code != http.StatusOK || decode(t, w)["condition"] != "CRITICAL" {
		t.Fatalf("update patient = %d %s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodDelete, "/api/v1/patients/"+pid, nil, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete patient = %d %s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodGet, "/api/v1/medications/"+second, nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("medication of deleted patient = %d", w.Code)
	}
}

func TestRegisterRoutes_IdempotentDoseReplay(t *testing.T) {
	r, _ := newRouter(t, baseCfg(), nil)

	w := send(r, http.MethodPost, "/api/v1/patients", map[string]string{"name": "Ana"}, nil)
	pid := decode(t, w)["id"].(string)
	w = send(r, http.MethodPost, "/api/v1/patients/"+pid+"/medications", map[string]any{
		"name":                    "Dipyrone",
		"dose_per_administration": "1",
		"scheduled_times":         []string{"09:00"},
		"pack_capacity":           10,
		"boxes_on_hand":           1,
	}, nil)
	mid := decode(t, w)["id"].(string)

	hdr := map[string]string{
		middleware.HeaderIdempotencyKey: "sos-1",
		middleware.HeaderUserID:         "nurse-1",
	}
	first := send(r, http.MethodPost, "/api/v1/medications/"+mid+"/doses/ad-hoc", nil, hdr)
	if first.Code != http.StatusOK {
		t.Fatalf("first ad-hoc = %d %s", first.Code, first.Body.String())
	}
	if first.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("first call must not be a replay")
	}

	second := send(r, http.MethodPost, "/api/v1/medications/"+mid+"/doses/ad-hoc", nil, hdr)
	if second.Code != http.StatusOK {
		t.Fatalf("replay = %d", second.Code)
	}
	if second.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("expected replay header")
	}
	if got := decode(t, second)["medication"].(map[string]any)["active_pack_remaining"]; got != "9" {
		t.Fatalf("replay must not consume again, remaining=%v", got)
	}

	w = send(r, http.MethodPost, "/api/v1/medications/"+mid+"/doses/ad-hoc", nil,
		map[string]string{middleware.HeaderIdempotencyKey: "bad key!"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed key = %d", w.Code)
	}
}

func TestRegisterRoutes_RobotTrigger(t *testing.T) {
	t.Run("no robot, no route", func(t *testing.T) {
		r, _ := newRouter(t, baseCfg(), nil)
		if w := send(r, http.MethodPost, "/api/v1/robot/cycles", nil, nil); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("token required", func(t *testing.T) {
		cfg := baseCfg()
		cfg.Robot.TriggerToken = "s3cret"
		robot := &fakeRobot{}
		r, _ := newRouter(t, cfg, robot)

		if w := send(r, http.MethodPost, "/api/v1/robot/cycles", nil, nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("missing token = %d", w.Code)
		}
		w := send(r, http.MethodPost, "/api/v1/robot/cycles", nil,
			map[string]string{middleware.HeaderRobotToken: "s3cret"})
		if w.Code != http.StatusOK {
			t.Fatalf("valid token = %d %s", w.Code, w.Body.String())
		}
		if robot.calls != 1 {
			t.Fatalf("robot calls = %d", robot.calls)
		}
	})
}
