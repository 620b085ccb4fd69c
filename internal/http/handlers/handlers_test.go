package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/http/middleware"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/services"
)

// ---------- test env ----------

type stubRobot struct {
	rep services.CycleReport
	err error
}

func (s stubRobot) Run(context.Context) (services.CycleReport, error) { return s.rep, s.err }

type testEnv struct {
	db     *gorm.DB
	clock  *clock.Manual
	router *gin.Engine
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.Open(repo.Options{
		Driver: repo.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "handlers_test.db"),
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

func newEnv(t *testing.T, robot CycleRunner) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_ = captureLogs(t)

	db := newTestDB(t)
	clk := clock.NewManual(time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	if robot == nil {
		robot = stubRobot{}
	}
	h := New(Deps{
		Patients:      &services.PatientService{DB: db},
		Medications:   &services.MedicationService{DB: db, Clock: clk},
		Doses:         &services.DoseService{DB: db, Clock: clk, LowStockUnits: 5},
		History:       &services.HistoryService{DB: db, Location: time.UTC},
		Robot:         robot,
		LowStockUnits: 5,
		Clock:         clk,
	})

	r := gin.New()
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.POST("/patients", h.CreatePatient)
	r.GET("/patients", h.ListPatients)
	r.GET("/patients/:id", h.GetPatient)
	r.PUT("/patients/:id", h.UpdatePatient)
	r.DELETE("/patients/:id", h.DeletePatient)
	r.POST("/patients/:id/medications", h.CreateMedication)
	r.GET("/patients/:id/medications", h.ListMedications)
	r.GET("/patients/:id/history", h.ListHistory)
	r.GET("/patients/:id/history/export", h.ExportHistory)
	r.GET("/medications/:id", h.GetMedication)
	r.PUT("/medications/:id", h.UpdateMedication)
	r.DELETE("/medications/:id", h.DeleteMedication)
	r.POST("/medications/:id/pause", h.PauseMedication)
	r.POST("/medications/:id/resume", h.ResumeMedication)
	r.POST("/medications/:id/doses/ad-hoc", h.AdHocDose)
	r.POST("/medications/:id/doses/return", h.ReturnDose)
	r.PUT("/medications/:id/stock", h.AdjustStock)
	r.POST("/robot/cycles", h.RunCycle)
	return &testEnv{db: db, clock: clk, router: r}
}

func (e *testEnv) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return m
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", w.Code, want, w.Body.String())
	}
}

func (e *testEnv) createPatient(t *testing.T, name string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/patients", map[string]string{"name": name})
	expectStatus(t, w, http.StatusCreated)
	return decodeMap(t, w)["id"].(string)
}

func (e *testEnv) createMedication(t *testing.T, patientID string, boxes int) string {
	t.Helper()
	w := e.do(http.MethodPost, "/patients/"+patientID+"/medications", map[string]any{
		"name":                    "Losartan",
		"strength":                "50mg",
		"dose_per_administration": "1",
		"scheduled_times":         []string{"08:00", "20:00"},
		"pack_capacity":           10,
		"boxes_on_hand":           boxes,
	})
	expectStatus(t, w, http.StatusCreated)
	return decodeMap(t, w)["id"].(string)
}
