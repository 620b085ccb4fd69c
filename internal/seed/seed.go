// Package seed imports patients and their medications from a YAML document.
// Records go through the same services as the HTTP API, so they get the
// same normalization and validation.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/services"
)

// File is the top-level seed document.
//
//	patients:
//	  - name: Maria Oliveira
//	    room: 12B
//	    condition: attention
//	    medications:
//	      - name: Losartan
//	        strength: 50mg
//	        dose: "1"
//	        times: ["08:00", "20:00"]
//	        pack_capacity: 30
//	        boxes_on_hand: 3
type File struct {
	Patients []Patient `yaml:"patients"`
}

// Patient is one patient and the medications registered for them.
type Patient struct {
	Name        string       `yaml:"name"`
	Notes       string       `yaml:"notes"`
	Room        string       `yaml:"room"`
	Condition   string       `yaml:"condition"`
	Medications []Medication `yaml:"medications"`
}

// Medication mirrors the create-medication request body.
type Medication struct {
	Name               string    `yaml:"name"`
	Strength           string    `yaml:"strength"`
	Dose               string    `yaml:"dose"`
	Times              []string  `yaml:"times"`
	PackCapacity       int       `yaml:"pack_capacity"`
	BoxesOnHand        int       `yaml:"boxes_on_hand"`
	TreatmentStartDate string    `yaml:"treatment_start_date"`
	Frequency          Frequency `yaml:"frequency"`
	Notes              string    `yaml:"notes"`
	Paused             bool      `yaml:"paused"`
}

// Frequency selects the dosing-day rule. An empty kind means DAILY.
type Frequency struct {
	Kind         string `yaml:"kind"`
	IntervalDays int    `yaml:"interval_days"`
	Weekdays     []int  `yaml:"weekdays"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return File{}, errors.New("seed: document is empty")
	}
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("seed: decode: %w", err)
	}
	if len(f.Patients) == 0 {
		return File{}, errors.New("seed: no patients")
	}
	return f, nil
}

// LoadReader reads and parses a seed document.
func LoadReader(r io.Reader) (File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("seed: read: %w", err)
	}
	return Parse(data)
}

// LoadFile reads and parses the seed document at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Spec converts the entry into the service's creation input.
func (m Medication) Spec() (services.NewMedication, error) {
	dose, err := decimal.NewFromString(strings.TrimSpace(m.Dose))
	if err != nil {
		return services.NewMedication{}, fmt.Errorf("dose %q: %w", m.Dose, err)
	}
	return services.NewMedication{
		MedicationSpec: services.MedicationSpec{
			Name:                  m.Name,
			Strength:              m.Strength,
			DosePerAdministration: dose,
			ScheduledTimes:        m.Times,
			PackCapacity:          m.PackCapacity,
			TreatmentStartDate:    m.TreatmentStartDate,
			FrequencyKind:         domain.FrequencyKind(strings.ToUpper(strings.TrimSpace(m.Frequency.Kind))),
			FrequencyIntervalDays: m.Frequency.IntervalDays,
			FrequencyWeekdays:     m.Frequency.Weekdays,
			Notes:                 m.Notes,
		},
		BoxesOnHand: m.BoxesOnHand,
	}, nil
}

// PatientCreator is the subset of services.PatientService used here.
type PatientCreator interface {
	Create(ctx context.Context, in services.PatientInput) (*domain.Patient, error)
}

// MedicationCreator is the subset of services.MedicationService used here.
type MedicationCreator interface {
	Create(ctx context.Context, patientID string, in services.NewMedication) (*domain.Medication, error)
	Pause(ctx context.Context, id string) (*domain.Medication, error)
}

// Importer applies seed documents.
type Importer struct {
	Patients    PatientCreator
	Medications MedicationCreator
}

// Result counts what an Apply created.
type Result struct {
	Patients    int
	Medications int
}

// Apply creates every patient and medication in f, in document order. It
// stops at the first failure; records created before it are kept.
func (im *Importer) Apply(ctx context.Context, f File) (Result, error) {
	var res Result
	for i, p := range f.Patients {
		patient, err := im.Patients.Create(ctx, services.PatientInput{
			Name:      p.Name,
			Notes:     p.Notes,
			Room:      p.Room,
			Condition: domain.PatientCondition(p.Condition),
		})
		if err != nil {
			return res, fmt.Errorf("seed: patients[%d] %q: %w", i, p.Name, err)
		}
		res.Patients++

		for j, m := range p.Medications {
			in, err := m.Spec()
			if err != nil {
				return res, fmt.Errorf("seed: patients[%d].medications[%d]: %w", i, j, err)
			}
			med, err := im.Medications.Create(ctx, patient.ID, in)
			if err != nil {
				return res, fmt.Errorf("seed: patients[%d].medications[%d] %q: %w", i, j, m.Name, err)
			}
			if m.Paused {
				if _, err := im.Medications.Pause(ctx, med.ID); err != nil {
					return res, fmt.Errorf("seed: pause %q: %w", m.Name, err)
				}
			}
			res.Medications++
			log.Debug().
				Str("patient_id", patient.ID).
				Str("medication_id", med.ID).
				Str("name", med.Name).
				Msg("seed: medication created")
		}
	}
	return res, nil
}
