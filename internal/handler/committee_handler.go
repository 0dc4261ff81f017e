package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nikolasrailan/tcc-match-sub000/internal/dto"
	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/response"
)

// CommitteeHandler wires HTTP endpoints to the committee engine.
type CommitteeHandler struct {
	service *service.CommitteeService
	metrics *service.MetricsService
}

// NewCommitteeHandler creates a new handler.
func NewCommitteeHandler(svc *service.CommitteeService, metrics *service.MetricsService) *CommitteeHandler {
	return &CommitteeHandler{service: svc, metrics: metrics}
}

// Generate godoc
// @Summary Generate defense committees
// @Description Assign committees to every finished advising without one, in a single transactional batch
// @Tags Committees
// @Produce json
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "nothing eligible"
// @Failure 500 {object} response.Envelope
// @Router /committees/generate [post]
func (h *CommitteeHandler) Generate(c *gin.Context) {
	res, err := h.service.Generate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordGenerationRun(res.CreatedCount, len(res.Warnings))

	// A run over an empty eligible set is informational, not a creation.
	if res.EligibleCount == 0 {
		response.JSON(c, http.StatusOK, res, nil, map[string]interface{}{"message": "no eligible advisings"})
		return
	}
	response.JSON(c, http.StatusCreated, res, nil)
}

// List godoc
// @Summary List committees
// @Tags Committees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /committees [get]
func (h *CommitteeHandler) List(c *gin.Context) {
	committees, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, committees, nil)
}

// Get godoc
// @Summary Get one committee
// @Tags Committees
// @Produce json
// @Param id path string true "Committee ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /committees/{id} [get]
func (h *CommitteeHandler) Get(c *gin.Context) {
	committee, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, committee, nil)
}

// GetByAdvising godoc
// @Summary Get the committee for an advising
// @Tags Committees
// @Produce json
// @Param id path string true "Advising ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /advisings/{id}/committee [get]
func (h *CommitteeHandler) GetByAdvising(c *gin.Context) {
	committee, err := h.service.GetByAdvising(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, committee, nil)
}

// Update godoc
// @Summary Update defense details
// @Description Record defense date, location, verdict and grade
// @Tags Committees
// @Accept json
// @Produce json
// @Param id path string true "Committee ID"
// @Param payload body dto.UpdateCommitteeRequest true "Defense details"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /committees/{id} [patch]
func (h *CommitteeHandler) Update(c *gin.Context) {
	var req dto.UpdateCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid committee payload"))
		return
	}

	committee, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, committee, nil)
}
