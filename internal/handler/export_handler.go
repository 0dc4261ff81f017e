package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/response"
)

// ExportHandler wires HTTP endpoints to document exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// DefenseRecord godoc
// @Summary Download the defense record
// @Description Render the defense record PDF for a committee
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Committee ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /committees/{id}/defense-record [get]
func (h *ExportHandler) DefenseRecord(c *gin.Context) {
	payload, filename, err := h.service.DefenseRecordPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// CommitteesCSV godoc
// @Summary Download the committee roster
// @Tags Exports
// @Produce text/csv
// @Success 200 {file} binary
// @Router /committees/export [get]
func (h *ExportHandler) CommitteesCSV(c *gin.Context) {
	payload, filename, err := h.service.CommitteesCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}
