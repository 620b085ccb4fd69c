// Patient HTTP handlers.
//
//   - POST   /patients        (create)
//   - GET    /patients        (list, paginated)
//   - GET    /patients/{id}   (fetch)
//   - PUT    /patients/{id}   (edit name, notes, room, condition)
//   - DELETE /patients/{id}   (soft delete, cascades to medications)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/services"
)

const msgBadPatientBody = "name required (max 255 chars); condition one of STABLE, ATTENTION, CRITICAL"

// CreatePatientRequest is the JSON payload for registering or editing a
// patient. Condition defaults to STABLE.
type CreatePatientRequest struct {
	Name      string `json:"name" binding:"required,max=255" example:"Maria Oliveira"`
	Notes     string `json:"notes" example:"Allergic to penicillin"`
	Room      string `json:"room" binding:"max=32" example:"12B"`
	Condition string `json:"condition" binding:"omitempty,oneof=STABLE ATTENTION CRITICAL" enums:"STABLE,ATTENTION,CRITICAL" example:"STABLE"`
}

func (r CreatePatientRequest) input() services.PatientInput {
	return services.PatientInput{
		Name:      r.Name,
		Notes:     r.Notes,
		Room:      r.Room,
		Condition: domain.PatientCondition(r.Condition),
	}
}

// ListPatientsResponse wraps a page of patients.
type ListPatientsResponse struct {
	Patients   []domain.Patient `json:"patients"`
	Pagination Pagination       `json:"pagination"`
}

// CreatePatient godoc
// @ID          createPatient
// @Summary     Register a patient
// @Tags        Patients
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreatePatientRequest  true  "Patient"
// @Success     201   {object}  domain.Patient
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422   {object}  handlers.ErrorResponse  "Validation failed"
// @Router      /patients [post]
func (h *Handlers) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgBadPatientBody)
		return
	}
	p, err := h.patients.Create(c.Request.Context(), req.input())
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusCreated, p)
}

// ListPatients godoc
// @ID          listPatients
// @Summary     List patients (paginated)
// @Tags        Patients
// @Produce     json
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListPatientsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /patients [get]
func (h *Handlers) ListPatients(c *gin.Context) {
	page, size := pageParams(c)
	items, total, err := h.patients.ListPage(c.Request.Context(), page, size)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ListPatientsResponse{Patients: items, Pagination: newPagination(page, size, total)})
}

// GetPatient godoc
// @ID          getPatient
// @Summary     Fetch a patient
// @Tags        Patients
// @Produce     json
// @Param       id   path      string  true  "Patient ID (UUID)"  format(uuid)
// @Success     200  {object}  domain.Patient
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Patient not found"
// @Router      /patients/{id} [get]
func (h *Handlers) GetPatient(c *gin.Context) {
	id, valid := pathID(c, "patient")
	if !valid {
		return
	}
	p, err := h.patients.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdatePatient godoc
// @ID          updatePatient
// @Summary     Edit a patient
// @Description Replaces name, notes, room and condition.
// @Tags        Patients
// @Accept      json
// @Produce     json
// @Param       id    path      string  true  "Patient ID (UUID)"  format(uuid)
// @Param       body  body      handlers.CreatePatientRequest  true  "Patient"
// @Success     200   {object}  domain.Patient
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404   {object}  handlers.ErrorResponse  "Patient not found"
// @Failure     422   {object}  handlers.ErrorResponse  "Validation failed"
// @Router      /patients/{id} [put]
func (h *Handlers) UpdatePatient(c *gin.Context) {
	id, valid := pathID(c, "patient")
	if !valid {
		return
	}
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgBadPatientBody)
		return
	}
	p, err := h.patients.Update(c.Request.Context(), id, req.input())
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeletePatient godoc
// @ID          deletePatient
// @Summary     Delete a patient
// @Description The patient's medications are deleted with it. History is kept.
// @Tags        Patients
// @Param       id   path      string  true  "Patient ID (UUID)"  format(uuid)
// @Success     204  "Deleted"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Patient not found"
// @Router      /patients/{id} [delete]
func (h *Handlers) DeletePatient(c *gin.Context) {
	id, valid := pathID(c, "patient")
	if !valid {
		return
	}
	if err := h.patients.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	c.Status(http.StatusNoContent)
}
