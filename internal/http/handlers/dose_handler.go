// Manual dose HTTP handlers.
//
//   - POST /medications/{id}/doses/ad-hoc   (take one unit now)
//   - POST /medications/{id}/doses/return   (put one unit back)
//   - PUT  /medications/{id}/stock          (trusted correction)
//
// Ad-hoc and return honor Idempotency-Key: a retry with the same key by the
// same actor gets the original entry and `Idempotency-Replayed: true`.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/http/middleware"
	"github.com/tbourn/go-med-robot/internal/services"
)

// AdjustStockRequest overwrites both stock tiers.
type AdjustStockRequest struct {
	ActivePackRemaining *decimal.Decimal `json:"active_pack_remaining" binding:"required" swaggertype:"string" example:"12"`
	SealedBoxCount      *int             `json:"sealed_box_count" binding:"required" example:"2"`
	Note                string           `json:"note" example:"Counted after pharmacy delivery"`
}

// DoseResponse is the state after a manual action.
type DoseResponse struct {
	Medication MedicationResponse  `json:"medication"`
	Entry      domain.HistoryEntry `json:"entry"`
	Replayed   bool                `json:"replayed"`
}

type doseFunc func(ctx context.Context, medicationID, actor, key string) (*services.DoseResult, error)

func (h *Handlers) doseResponse(c *gin.Context, res *services.DoseResult) {
	if res.Replayed {
		middleware.MarkReplay(c)
	}
	ok(c, http.StatusOK, DoseResponse{
		Medication: h.medicationResponse(res.Medication),
		Entry:      *res.Entry,
		Replayed:   res.Replayed,
	})
}

func (h *Handlers) dose(c *gin.Context, fn doseFunc) {
	id, valid := pathID(c, "medication")
	if !valid {
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)
	res, err := fn(c.Request.Context(), id, actor(c), key)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	h.doseResponse(c, res)
}

// AdHocDose godoc
// @ID          adHocDose
// @Summary     Record an ad-hoc (SOS) dose
// @Description Takes one unit now, opening a sealed box if needed.
// @Tags        Doses
// @Produce     json
// @Param       X-User-ID        header  string  false  "Acting caregiver (demo header)"
// @Param       Idempotency-Key  header  string  false  "Key for safe retries"
// @Param       id               path    string  true   "Medication ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.DoseResponse
// @Header      200  {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     404  {object}  handlers.ErrorResponse  "Medication not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Insufficient stock or concurrent modification"
// @Router      /medications/{id}/doses/ad-hoc [post]
func (h *Handlers) AdHocDose(c *gin.Context) { h.dose(c, h.doses.AdHoc) }

// ReturnDose godoc
// @ID          returnDose
// @Summary     Return a dose to the open pack
// @Description Refused when the open pack is already full.
// @Tags        Doses
// @Produce     json
// @Param       X-User-ID        header  string  false  "Acting caregiver (demo header)"
// @Param       Idempotency-Key  header  string  false  "Key for safe retries"
// @Param       id               path    string  true   "Medication ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.DoseResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Medication not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Pack full or concurrent modification"
// @Router      /medications/{id}/doses/return [post]
func (h *Handlers) ReturnDose(c *gin.Context) { h.dose(c, h.doses.Return) }

// AdjustStock godoc
// @ID          adjustStock
// @Summary     Correct stock manually
// @Description Overwrites the open pack and sealed box count; the entry records before and after.
// @Tags        Doses
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false  "Acting caregiver (demo header)"
// @Param       id         path    string  true   "Medication ID (UUID)"  format(uuid)
// @Param       body       body    handlers.AdjustStockRequest  true  "New stock"
// @Success     200  {object}  handlers.DoseResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Medication not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Stock out of range"
// @Router      /medications/{id}/stock [put]
func (h *Handlers) AdjustStock(c *gin.Context) {
	id, valid := pathID(c, "medication")
	if !valid {
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "active_pack_remaining and sealed_box_count are required")
		return
	}
	res, err := h.doses.Adjust(c.Request.Context(), id, actor(c), *req.ActivePackRemaining, *req.SealedBoxCount, req.Note)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	h.doseResponse(c, res)
}
