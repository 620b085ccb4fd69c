package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/repo"
)

const maxRoomRunes = 32

// PatientService manages patients. The robot only needs their ids; this
// service exists so medications have an owner to be grouped under.
type PatientService struct {
	DB *gorm.DB
}

// PatientInput carries the editable fields of a patient. An empty Condition
// means STABLE.
type PatientInput struct {
	Name      string
	Notes     string
	Room      string
	Condition domain.PatientCondition
}

func (in PatientInput) normalize() (domain.Patient, error) {
	p := domain.Patient{
		Name:      normalizeName(in.Name, maxNameRunes),
		Notes:     strings.TrimSpace(in.Notes),
		Room:      strings.TrimSpace(in.Room),
		Condition: domain.PatientCondition(strings.ToUpper(strings.TrimSpace(string(in.Condition)))),
	}
	if p.Name == "" {
		return p, fmt.Errorf("%w: name is required", ErrInvalidPatient)
	}
	if n := len([]rune(p.Room)); n > maxRoomRunes {
		return p, fmt.Errorf("%w: room is longer than %d characters", ErrInvalidPatient, maxRoomRunes)
	}
	if p.Condition == "" {
		p.Condition = domain.ConditionStable
	}
	if !p.Condition.Valid() {
		return p, fmt.Errorf("%w: unknown condition %q", ErrInvalidPatient, in.Condition)
	}
	return p, nil
}

// Create registers a patient with a normalized name.
func (s *PatientService) Create(ctx context.Context, in PatientInput) (*domain.Patient, error) {
	p, err := in.normalize()
	if err != nil {
		return nil, err
	}
	return repo.CreatePatient(ctx, s.DB, p)
}

// Get returns a patient by id.
func (s *PatientService) Get(ctx context.Context, id string) (*domain.Patient, error) {
	p, err := repo.GetPatient(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	return p, err
}

// Update replaces the editable fields of a patient.
func (s *PatientService) Update(ctx context.Context, id string, in PatientInput) (*domain.Patient, error) {
	p, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := repo.UpdatePatient(ctx, s.DB, id, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes a patient and all of its medications. History is kept.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	err := repo.DeletePatient(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPatientNotFound
	}
	return err
}

// ListPage returns a page of patients and the total count.
func (s *PatientService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Patient, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountPatients(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Patient{}, 0, nil
	}
	items, err := repo.ListPatientsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}
