package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-med-robot/internal/services"
)

// RunCycle godoc
// @ID          runCycle
// @Summary     Trigger a robot cycle
// @Description Runs one reconciliation cycle now. Requires X-Robot-Token when the server has one configured.
// @Description Per-medication failures are reported in the body; only lease contention and setup failures are errors.
// @Tags        Robot
// @Produce     json
// @Param       X-Robot-Token  header  string  false  "Trigger token"
// @Success     200  {object}  services.CycleReport
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     409  {object}  handlers.ErrorResponse  "Another cycle is running"
// @Failure     500  {object}  handlers.ErrorResponse  "Cycle failed"
// @Router      /robot/cycles [post]
func (h *Handlers) RunCycle(c *gin.Context) {
	rep, err := h.robot.Run(c.Request.Context())
	if err != nil {
		failErr(c, err, ErrCodeCycleFailed)
		return
	}
	ok(c, http.StatusOK, rep)
}

var _ CycleRunner = (*services.CycleRunner)(nil)
