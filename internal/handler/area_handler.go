package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/response"
)

// AreaHandler wires HTTP endpoints to the interest area workflow.
type AreaHandler struct {
	service *service.AreaService
}

// NewAreaHandler creates a new handler.
func NewAreaHandler(svc *service.AreaService) *AreaHandler {
	return &AreaHandler{service: svc}
}

// Create godoc
// @Summary Propose an interest area
// @Tags Areas
// @Accept json
// @Produce json
// @Param payload body service.CreateAreaRequest true "Area payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /areas [post]
func (h *AreaHandler) Create(c *gin.Context) {
	var req service.CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid area payload"))
		return
	}

	area, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, area)
}

// List godoc
// @Summary List interest areas
// @Tags Areas
// @Produce json
// @Param status query string false "Filter by workflow status"
// @Success 200 {object} response.Envelope
// @Router /areas [get]
func (h *AreaHandler) List(c *gin.Context) {
	var status *models.AreaStatus
	if raw := c.Query("status"); raw != "" {
		s := models.AreaStatus(raw)
		status = &s
	}

	areas, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, areas, nil)
}

// Review godoc
// @Summary Approve or reject a pending area
// @Tags Areas
// @Accept json
// @Produce json
// @Param id path string true "Area ID"
// @Param payload body service.ReviewAreaRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /areas/{id}/review [patch]
func (h *AreaHandler) Review(c *gin.Context) {
	var req service.ReviewAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	area, err := h.service.Review(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, area, nil)
}
