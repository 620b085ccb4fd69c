// Package handlers exposes the REST API for patients, medications, manual
// dose actions, history and the robot trigger.
//
// Handlers are transport-thin: they bind and shape input, call a service,
// and translate results (including conditional GETs) into responses.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/http/middleware"
	"github.com/tbourn/go-med-robot/internal/services"
	"github.com/tbourn/go-med-robot/internal/utils"
)

//
// Service contracts (context-aware)
//

// PatientService manages patients.
type PatientService interface {
	Create(ctx context.Context, in services.PatientInput) (*domain.Patient, error)
	Get(ctx context.Context, id string) (*domain.Patient, error)
	Update(ctx context.Context, id string, in services.PatientInput) (*domain.Patient, error)
	Delete(ctx context.Context, id string) error
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Patient, int64, error)
}

// MedicationService manages medication configuration.
type MedicationService interface {
	Create(ctx context.Context, patientID string, in services.NewMedication) (*domain.Medication, error)
	Get(ctx context.Context, id string) (*domain.Medication, error)
	ListByPatient(ctx context.Context, patientID string) ([]domain.Medication, error)
	Update(ctx context.Context, id string, spec services.MedicationSpec) (*domain.Medication, error)
	Pause(ctx context.Context, id string) (*domain.Medication, error)
	Resume(ctx context.Context, id string) (*domain.Medication, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, patientID string) (int64, *time.Time, error)
}

// DoseService applies manual stock actions.
type DoseService interface {
	AdHoc(ctx context.Context, medicationID, actor, key string) (*services.DoseResult, error)
	Return(ctx context.Context, medicationID, actor, key string) (*services.DoseResult, error)
	Adjust(ctx context.Context, medicationID, actor string, active decimal.Decimal, sealed int, note string) (*services.DoseResult, error)
}

// HistoryService reads the audit log.
type HistoryService interface {
	ListPage(ctx context.Context, patientID string, grouped *bool, page, pageSize int) ([]domain.HistoryEntry, int64, error)
	Stats(ctx context.Context, patientID string, grouped *bool) (int64, *time.Time, error)
	Export(ctx context.Context, patientID string) ([]byte, error)
}

// CycleRunner runs one robot cycle.
type CycleRunner interface {
	Run(ctx context.Context) (services.CycleReport, error)
}

//
// Handler wiring
//

// Deps are the services behind the API.
type Deps struct {
	Patients    PatientService
	Medications MedicationService
	Doses       DoseService
	History     HistoryService
	Robot       CycleRunner
	// LowStockUnits is the CRITICAL threshold shown on medications.
	LowStockUnits int
	// Clock stamps export file names; nil means the system clock.
	Clock clock.Clock
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	patients      PatientService
	meds          MedicationService
	doses         DoseService
	history       HistoryService
	robot         CycleRunner
	lowStockUnits int
	clock         clock.Clock
}

// New constructs Handlers from d.
func New(d Deps) *Handlers {
	clk := d.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &Handlers{
		patients:      d.Patients,
		meds:          d.Medications,
		doses:         d.Doses,
		history:       d.History,
		robot:         d.Robot,
		lowStockUnits: d.LowStockUnits,
		clock:         clk,
	}
}

//
// Shared DTOs and helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, size int, total int64) Pagination {
	pages := utils.TotalPages(total, size)
	return Pagination{Page: page, PageSize: size, Total: total, TotalPages: pages, HasNext: page < pages}
}

func pageParams(c *gin.Context) (int, int) {
	return utils.Page(c.Query("page"), c.Query("page_size"))
}

// pathID returns the :id param when it is a UUID, failing the request
// otherwise.
func pathID(c *gin.Context, what string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, what+" id must be a UUID")
		return "", false
	}
	return id, true
}

// notModified sets a weak ETag built from a (count, latest) pair and
// reports whether If-None-Match already matches it.
func notModified(c *gin.Context, scope string, count int64, latest *time.Time) bool {
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%d:%d"`, scope, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

func actor(c *gin.Context) string { return middleware.Actor(c) }
