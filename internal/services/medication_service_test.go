package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/schedule"
)

func validSpec() MedicationSpec {
	return MedicationSpec{
		Name:                  "  Losartan   50 ",
		Strength:              "50mg",
		DosePerAdministration: dec("1"),
		ScheduledTimes:        []string{"20:00", "08:00"},
		PackCapacity:          30,
	}
}

func newMedicationService(t *testing.T) (*MedicationService, *clock.Manual, *domain.Patient) {
	t.Helper()
	db := newTestDB(t)
	clk := clock.NewManual(at("2025-01-10T12:34:56.789Z"))
	return &MedicationService{DB: db, Clock: clk}, clk, mustPatient(t, db, "Ana")
}

func TestMedicationService_Create_OpensFirstBox(t *testing.T) {
	s, _, p := newMedicationService(t)

	m, err := s.Create(context.Background(), p.ID, NewMedication{MedicationSpec: validSpec(), BoxesOnHand: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Name != "Losartan 50" {
		t.Fatalf("name not normalized: %q", m.Name)
	}
	if got := []string(m.ScheduledTimes); len(got) != 2 || got[0] != "08:00" || got[1] != "20:00" {
		t.Fatalf("times not normalized: %v", got)
	}
	if !m.ActivePackRemaining.Equal(dec("30")) || m.SealedBoxCount != 2 {
		t.Fatalf("stock = %s/%d, want 30/2", m.ActivePackRemaining, m.SealedBoxCount)
	}
	if m.FrequencyKind != domain.FrequencyDaily || m.Status != domain.StatusActive {
		t.Fatalf("defaults not applied: %+v", m)
	}
	if m.HourMask != schedule.HourMask([]string{"08:00", "20:00"}) {
		t.Fatalf("hour mask = %b", m.HourMask)
	}
	if m.LastCheckedAt == nil || !m.LastCheckedAt.Equal(at("2025-01-10T12:34:56Z")) {
		t.Fatalf("checkpoint = %v", m.LastCheckedAt)
	}

	got := reload(t, s.DB, m.ID)
	if got.Name != m.Name || !got.ActivePackRemaining.Equal(m.ActivePackRemaining) {
		t.Fatalf("persisted %+v", got)
	}
}

func TestMedicationService_Create_NoBoxes(t *testing.T) {
	s, _, p := newMedicationService(t)
	m, err := s.Create(context.Background(), p.ID, NewMedication{MedicationSpec: validSpec()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !m.ActivePackRemaining.IsZero() || m.SealedBoxCount != 0 {
		t.Fatalf("want empty stock, got %s/%d", m.ActivePackRemaining, m.SealedBoxCount)
	}
}

func TestMedicationService_Create_Validation(t *testing.T) {
	s, _, p := newMedicationService(t)
	ctx := context.Background()

	cases := map[string]func(*NewMedication){
		"empty name":        func(n *NewMedication) { n.Name = "   " },
		"zero dose":         func(n *NewMedication) { n.DosePerAdministration = dec("0") },
		"dose scale":        func(n *NewMedication) { n.DosePerAdministration = dec("0.33335") },
		"dose range":        func(n *NewMedication) { n.DosePerAdministration = dec("123456789012") },
		"capacity range":    func(n *NewMedication) { n.PackCapacity = 100000000 },
		"no times":          func(n *NewMedication) { n.ScheduledTimes = nil },
		"bad time":          func(n *NewMedication) { n.ScheduledTimes = []string{"8:00"} },
		"duplicate time":    func(n *NewMedication) { n.ScheduledTimes = []string{"08:00", "08:00"} },
		"zero capacity":     func(n *NewMedication) { n.PackCapacity = 0 },
		"negative boxes":    func(n *NewMedication) { n.BoxesOnHand = -1 },
		"unknown kind":      func(n *NewMedication) { n.FrequencyKind = "MONTHLY" },
		"weekly no days":    func(n *NewMedication) { n.FrequencyKind = domain.FrequencyWeeklyDays },
		"weekday range":     func(n *NewMedication) { n.FrequencyKind = domain.FrequencyWeeklyDays; n.FrequencyWeekdays = []int{7} },
		"negative interval": func(n *NewMedication) { n.FrequencyKind = domain.FrequencyEveryNDays; n.FrequencyIntervalDays = -1 },
		"start date":        func(n *NewMedication) { n.TreatmentStartDate = "10/01/2025" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := NewMedication{MedicationSpec: validSpec(), BoxesOnHand: 1}
			mutate(&in)
			if _, err := s.Create(ctx, p.ID, in); !errors.Is(err, ErrInvalidMedication) {
				t.Fatalf("want ErrInvalidMedication, got %v", err)
			}
		})
	}
}

func TestMedicationService_Create_AcceptsFourDecimalPlaces(t *testing.T) {
	s, _, p := newMedicationService(t)
	spec := validSpec()
	spec.DosePerAdministration = dec("0.12500")
	m, err := s.Create(context.Background(), p.ID, NewMedication{MedicationSpec: spec, BoxesOnHand: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := reload(t, s.DB, m.ID).DosePerAdministration; !got.Equal(m.DosePerAdministration) {
		t.Fatalf("stored dose %s != returned %s", got, m.DosePerAdministration)
	}
}

func TestMedicationService_Create_UnknownPatient(t *testing.T) {
	s, _, _ := newMedicationService(t)
	_, err := s.Create(context.Background(), "nope", NewMedication{MedicationSpec: validSpec()})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("want ErrPatientNotFound, got %v", err)
	}
}

func TestMedicationService_Update_ResetsCheckpoint(t *testing.T) {
	s, clk, p := newMedicationService(t)
	ctx := context.Background()
	m, err := s.Create(ctx, p.ID, NewMedication{MedicationSpec: validSpec(), BoxesOnHand: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	clk.Advance(3 * time.Hour)
	spec := validSpec()
	spec.ScheduledTimes = []string{"09:00"}
	spec.FrequencyKind = domain.FrequencyEveryNDays
	spec.FrequencyIntervalDays = 3
	spec.TreatmentStartDate = "2025-01-01"

	up, err := s.Update(ctx, m.ID, spec)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := reload(t, s.DB, m.ID)
	if !got.LastCheckedAt.Equal(at("2025-01-10T15:34:56Z")) {
		t.Fatalf("checkpoint = %v", got.LastCheckedAt)
	}
	if got.FrequencyKind != domain.FrequencyEveryNDays || got.FrequencyIntervalDays != 3 || *got.TreatmentStartDate != "2025-01-01" {
		t.Fatalf("schedule not saved: %+v", got)
	}
	if got.HourMask != 1<<9 {
		t.Fatalf("hour mask = %b", got.HourMask)
	}
	if !got.ActivePackRemaining.Equal(dec("30")) {
		t.Fatalf("update must not touch stock: %s", got.ActivePackRemaining)
	}
	if up.Revision != got.Revision {
		t.Fatalf("revision mem=%d db=%d", up.Revision, got.Revision)
	}
}

func TestMedicationService_PauseResume(t *testing.T) {
	s, clk, p := newMedicationService(t)
	ctx := context.Background()
	m, err := s.Create(ctx, p.ID, NewMedication{MedicationSpec: validSpec(), BoxesOnHand: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created := *m.LastCheckedAt

	clk.Advance(time.Hour)
	paused, err := s.Pause(ctx, m.ID)
	if err != nil || paused.Status != domain.StatusPaused {
		t.Fatalf("Pause: %+v %v", paused, err)
	}
	if got := reload(t, s.DB, m.ID); !got.LastCheckedAt.Equal(created) {
		t.Fatalf("pause must not move checkpoint: %v", got.LastCheckedAt)
	}
	again, err := s.Pause(ctx, m.ID)
	if err != nil || again.Revision != paused.Revision {
		t.Fatalf("repeated pause should be a no-op: %+v %v", again, err)
	}

	clk.Advance(48 * time.Hour)
	resumed, err := s.Resume(ctx, m.ID)
	if err != nil || resumed.Status != domain.StatusActive {
		t.Fatalf("Resume: %+v %v", resumed, err)
	}
	got := reload(t, s.DB, m.ID)
	if !got.LastCheckedAt.Equal(clk.Now().Truncate(time.Second)) {
		t.Fatalf("resume must reset checkpoint to now: %v", got.LastCheckedAt)
	}
}

func TestMedicationService_ListByPatient(t *testing.T) {
	s, _, p := newMedicationService(t)
	ctx := context.Background()
	for _, name := range []string{"B", "A"} {
		spec := validSpec()
		spec.Name = name
		if _, err := s.Create(ctx, p.ID, NewMedication{MedicationSpec: spec}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	list, err := s.ListByPatient(ctx, p.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByPatient = %d, %v", len(list), err)
	}
	if _, err := s.ListByPatient(ctx, "nope"); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("want ErrPatientNotFound, got %v", err)
	}
	n, latest, err := s.Stats(ctx, p.ID)
	if err != nil || n != 2 || latest == nil {
		t.Fatalf("Stats = %d, %v, %v", n, latest, err)
	}
}

func TestMedicationService_Get_NotFound(t *testing.T) {
	s, _, _ := newMedicationService(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("want ErrMedicationNotFound, got %v", err)
	}
}

func TestMedicationService_Delete(t *testing.T) {
	s, _, p := newMedicationService(t)
	ctx := context.Background()
	m, err := s.Create(ctx, p.ID, NewMedication{MedicationSpec: validSpec()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, m.ID); !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("want ErrMedicationNotFound, got %v", err)
	}
	list, err := s.ListByPatient(ctx, p.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListByPatient after delete = %+v, %v", list, err)
	}
	if n, _, err := s.Stats(ctx, p.ID); err != nil || n != 0 {
		t.Fatalf("Stats after delete = %d, %v", n, err)
	}
	if _, err := s.Pause(ctx, m.ID); !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("pause deleted: want ErrMedicationNotFound, got %v", err)
	}
	if err := s.Delete(ctx, m.ID); !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("second delete: want ErrMedicationNotFound, got %v", err)
	}
}
