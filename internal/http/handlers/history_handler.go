// History HTTP handlers.
//
//   - GET /patients/{id}/history          (newest first, paginated, ETag)
//   - GET /patients/{id}/history/export   (XLSX download)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/report"
	"github.com/tbourn/go-med-robot/internal/sysutil"
)

// ListHistoryResponse wraps a page of history entries.
type ListHistoryResponse struct {
	Entries    []domain.HistoryEntry `json:"entries"`
	Pagination Pagination            `json:"pagination"`
}

// ListHistory godoc
// @ID          listHistory
// @Summary     List a patient's medication history
// @Description Newest first. grouped=true returns only robot visit summaries, grouped=false only per-medication entries.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        History
// @Produce     json
// @Param       id             path    string  true   "Patient ID (UUID)"  format(uuid)
// @Param       grouped        query   bool    false  "Filter robot summaries"
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ListHistoryResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Patient not found"
// @Router      /patients/{id}/history [get]
func (h *Handlers) ListHistory(c *gin.Context) {
	patientID, valid := pathID(c, "patient")
	if !valid {
		return
	}
	grouped, parsed := sysutil.ParseOptionalBool(c.Query("grouped"))
	if !parsed {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "grouped must be a boolean")
		return
	}
	page, size := pageParams(c)
	ctx := c.Request.Context()

	if count, latest, err := h.history.Stats(ctx, patientID, grouped); err == nil {
		scope := "history:" + patientID
		if grouped != nil {
			scope += fmt.Sprintf(":grouped=%t", *grouped)
		}
		if notModified(c, fmt.Sprintf("%s:p%d:s%d", scope, page, size), count, latest) {
			return
		}
	}

	items, total, err := h.history.ListPage(ctx, patientID, grouped, page, size)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ListHistoryResponse{Entries: items, Pagination: newPagination(page, size, total)})
}

// ExportHistory godoc
// @ID          exportHistory
// @Summary     Download a patient's history as a spreadsheet
// @Tags        History
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param       id   path  string  true  "Patient ID (UUID)"  format(uuid)
// @Success     200  {file}    file
// @Failure     404  {object}  handlers.ErrorResponse  "Patient not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Export failed"
// @Router      /patients/{id}/history/export [get]
func (h *Handlers) ExportHistory(c *gin.Context) {
	patientID, valid := pathID(c, "patient")
	if !valid {
		return
	}
	data, err := h.history.Export(c.Request.Context(), patientID)
	if err != nil {
		failErr(c, err, ErrCodeExportFailed)
		return
	}
	name := report.FileName(patientID, h.clock.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, report.ContentType, data)
}
