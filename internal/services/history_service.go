package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/report"
)

// maxExportRows bounds a single XLSX export.
const maxExportRows = 10000

// HistoryService reads the audit log.
type HistoryService struct {
	DB *gorm.DB
	// Location is the timezone timestamps are rendered in on exports.
	Location *time.Location
}

func (s *HistoryService) ensurePatient(ctx context.Context, patientID string) (*domain.Patient, error) {
	p, err := repo.GetPatient(ctx, s.DB, patientID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	return p, err
}

// ListPage returns a page of a patient's history, newest first, and the
// total number of matching entries. grouped nil means every entry.
func (s *HistoryService) ListPage(ctx context.Context, patientID string, grouped *bool, page, pageSize int) ([]domain.HistoryEntry, int64, error) {
	if _, err := s.ensurePatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	f := repo.HistoryFilter{Grouped: grouped}

	total, err := repo.CountHistory(ctx, s.DB, patientID, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.HistoryEntry{}, 0, nil
	}
	items, err := repo.ListHistoryPage(ctx, s.DB, patientID, f, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Stats returns count and latest timestamp for the filtered history, used
// to build ETags.
func (s *HistoryService) Stats(ctx context.Context, patientID string, grouped *bool) (int64, *time.Time, error) {
	return repo.HistoryStats(ctx, s.DB, patientID, repo.HistoryFilter{Grouped: grouped})
}

// Export renders the newest entries of a patient as an XLSX workbook.
func (s *HistoryService) Export(ctx context.Context, patientID string) ([]byte, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "Export", trace.WithAttributes(attribute.String("patient.id", patientID)))
	defer span.End()

	p, err := s.ensurePatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	entries, err := repo.ListHistoryPage(ctx, s.DB, patientID, repo.HistoryFilter{}, 0, maxExportRows)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(entries)))
	return report.HistoryWorkbook(p, entries, s.Location)
}
