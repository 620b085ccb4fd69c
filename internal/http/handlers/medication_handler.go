// Medication HTTP handlers.
//
//   - POST /patients/{id}/medications   (register, opens the first box)
//   - GET  /patients/{id}/medications   (list, ETag support)
//   - GET  /medications/{id}
//   - PUT  /medications/{id}            (schedule/config edit)
//   - POST /medications/{id}/pause
//   - POST /medications/{id}/resume
//   - DELETE /medications/{id}         (soft delete)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/inventory"
	"github.com/tbourn/go-med-robot/internal/services"
)

const msgBadMedicationBody = "invalid JSON body (scheduled_times required; frequency_kind one of DAILY, EVERY_N_DAYS, WEEKLY_DAYS)"

// MedicationRequest is the editable configuration of a medication.
type MedicationRequest struct {
	Name                  string          `json:"name" example:"Losartan"`
	Strength              string          `json:"strength" example:"50mg"`
	DosePerAdministration decimal.Decimal `json:"dose_per_administration" swaggertype:"string" example:"1"`
	ScheduledTimes        []string        `json:"scheduled_times" binding:"required,min=1" example:"08:00,20:00"`
	PackCapacity          int             `json:"pack_capacity" example:"30"`
	TreatmentStartDate    string          `json:"treatment_start_date" example:"2025-01-10"`
	FrequencyKind         string          `json:"frequency_kind" binding:"omitempty,oneof=DAILY EVERY_N_DAYS WEEKLY_DAYS" enums:"DAILY,EVERY_N_DAYS,WEEKLY_DAYS" example:"DAILY"`
	FrequencyIntervalDays int             `json:"frequency_interval_days" example:"2"`
	FrequencyWeekdays     []int           `json:"frequency_weekdays" example:"1,3,5"`
	Notes                 string          `json:"notes"`
}

func (r MedicationRequest) spec() services.MedicationSpec {
	return services.MedicationSpec{
		Name:                  r.Name,
		Strength:              r.Strength,
		DosePerAdministration: r.DosePerAdministration,
		ScheduledTimes:        r.ScheduledTimes,
		PackCapacity:          r.PackCapacity,
		TreatmentStartDate:    r.TreatmentStartDate,
		FrequencyKind:         domain.FrequencyKind(r.FrequencyKind),
		FrequencyIntervalDays: r.FrequencyIntervalDays,
		FrequencyWeekdays:     r.FrequencyWeekdays,
		Notes:                 r.Notes,
	}
}

// CreateMedicationRequest adds the boxes handed over at registration.
type CreateMedicationRequest struct {
	MedicationRequest
	BoxesOnHand int `json:"boxes_on_hand" example:"3"`
}

// MedicationResponse is a medication plus its derived stock view.
type MedicationResponse struct {
	*domain.Medication
	StockLevel inventory.Level `json:"stock_level" example:"OK"`
	TotalUnits decimal.Decimal `json:"total_units" swaggertype:"string" example:"70"`
}

// ListMedicationsResponse wraps a patient's medications.
type ListMedicationsResponse struct {
	Medications []MedicationResponse `json:"medications"`
}

func (h *Handlers) medicationResponse(m *domain.Medication) MedicationResponse {
	return MedicationResponse{
		Medication: m,
		StockLevel: inventory.LevelOf(inventory.StockOf(m), h.lowStockUnits),
		TotalUnits: m.TotalUnits(),
	}
}

// CreateMedication godoc
// @ID          createMedication
// @Summary     Register a medication for a patient
// @Description One box is opened immediately and the robot starts counting from now.
// @Tags        Medications
// @Accept      json
// @Produce     json
// @Param       id    path      string  true  "Patient ID (UUID)"  format(uuid)
// @Param       body  body      handlers.CreateMedicationRequest  true  "Medication"
// @Success     201   {object}  handlers.MedicationResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404   {object}  handlers.ErrorResponse  "Patient not found"
// @Failure     422   {object}  handlers.ErrorResponse  "Validation failed"
// @Router      /patients/{id}/medications [post]
func (h *Handlers) CreateMedication(c *gin.Context) {
	patientID, valid := pathID(c, "patient")
	if !valid {
		return
	}
	var req CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgBadMedicationBody)
		return
	}
	m, err := h.meds.Create(c.Request.Context(), patientID, services.NewMedication{
		MedicationSpec: req.spec(),
		BoxesOnHand:    req.BoxesOnHand,
	})
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusCreated, h.medicationResponse(m))
}

// ListMedications godoc
// @ID          listMedications
// @Summary     List a patient's medications
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Medications
// @Produce     json
// @Param       id             path    string  true   "Patient ID (UUID)"  format(uuid)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ListMedicationsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "Patient not found"
// @Router      /patients/{id}/medications [get]
func (h *Handlers) ListMedications(c *gin.Context) {
	patientID, valid := pathID(c, "patient")
	if !valid {
		return
	}
	ctx := c.Request.Context()
	if count, latest, err := h.meds.Stats(ctx, patientID); err == nil {
		if notModified(c, "medications:"+patientID, count, latest) {
			return
		}
	}
	items, err := h.meds.ListByPatient(ctx, patientID)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	out := make([]MedicationResponse, 0, len(items))
	for i := range items {
		out = append(out, h.medicationResponse(&items[i]))
	}
	ok(c, http.StatusOK, ListMedicationsResponse{Medications: out})
}

// GetMedication godoc
// @ID          getMedication
// @Summary     Fetch a medication
// @Tags        Medications
// @Produce     json
// @Param       id   path      string  true  "Medication ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.MedicationResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Medication not found"
// @Router      /medications/{id} [get]
func (h *Handlers) GetMedication(c *gin.Context) {
	h.medicationAction(c, h.meds.Get)
}

// UpdateMedication godoc
// @ID          updateMedication
// @Summary     Edit a medication's schedule and configuration
// @Description Stock is untouched. Doses are counted again from now, never retroactively.
// @Tags        Medications
// @Accept      json
// @Produce     json
// @Param       id    path      string  true  "Medication ID (UUID)"  format(uuid)
// @Param       body  body      handlers.MedicationRequest  true  "Configuration"
// @Success     200   {object}  handlers.MedicationResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404   {object}  handlers.ErrorResponse  "Medication not found"
// @Failure     409   {object}  handlers.ErrorResponse  "Concurrent modification"
// @Failure     422   {object}  handlers.ErrorResponse  "Validation failed"
// @Router      /medications/{id} [put]
func (h *Handlers) UpdateMedication(c *gin.Context) {
	id, valid := pathID(c, "medication")
	if !valid {
		return
	}
	var req MedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgBadMedicationBody)
		return
	}
	m, err := h.meds.Update(c.Request.Context(), id, req.spec())
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, h.medicationResponse(m))
}

// PauseMedication godoc
// @ID          pauseMedication
// @Summary     Pause a medication
// @Tags        Medications
// @Produce     json
// @Param       id   path      string  true  "Medication ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.MedicationResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Medication not found"
// @Router      /medications/{id}/pause [post]
func (h *Handlers) PauseMedication(c *gin.Context) {
	h.medicationAction(c, h.meds.Pause)
}

// ResumeMedication godoc
// @ID          resumeMedication
// @Summary     Resume a paused medication
// @Description Doses scheduled while paused are not consumed.
// @Tags        Medications
// @Produce     json
// @Param       id   path      string  true  "Medication ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.MedicationResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Medication not found"
// @Router      /medications/{id}/resume [post]
func (h *Handlers) ResumeMedication(c *gin.Context) {
	h.medicationAction(c, h.meds.Resume)
}

// DeleteMedication godoc
// @ID          deleteMedication
// @Summary     Delete a medication
// @Description The medication disappears from lists and the robot stops consuming it. Its history is kept.
// @Tags        Medications
// @Param       id   path      string  true  "Medication ID (UUID)"  format(uuid)
// @Success     204  "Deleted"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Medication not found"
// @Router      /medications/{id} [delete]
func (h *Handlers) DeleteMedication(c *gin.Context) {
	id, valid := pathID(c, "medication")
	if !valid {
		return
	}
	if err := h.meds.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) medicationAction(c *gin.Context, fn func(context.Context, string) (*domain.Medication, error)) {
	id, valid := pathID(c, "medication")
	if !valid {
		return
	}
	m, err := fn(c.Request.Context(), id)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, h.medicationResponse(m))
}
