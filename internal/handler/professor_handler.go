package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nikolasrailan/tcc-match-sub000/internal/repository"
	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/response"
)

// ProfessorHandler wires HTTP endpoints to the professor directory.
type ProfessorHandler struct {
	service *service.ProfessorService
}

// NewProfessorHandler creates a new handler.
func NewProfessorHandler(svc *service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{service: svc}
}

// List godoc
// @Summary List professors
// @Description Browse the advisor directory with availability, area and text filters
// @Tags Professors
// @Produce json
// @Param available query bool false "Filter by availability"
// @Param area_id query string false "Filter by interest area"
// @Param search query string false "Name or email search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /professors [get]
func (h *ProfessorHandler) List(c *gin.Context) {
	filter := repository.ProfessorFilter{
		AreaID: c.Query("area_id"),
		Search: c.Query("search"),
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "available must be a boolean"))
			return
		}
		filter.Available = &available
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Professors, &page.Pagination)
}

// Get godoc
// @Summary Get one professor
// @Tags Professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professors/{id} [get]
func (h *ProfessorHandler) Get(c *gin.Context) {
	professor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Update godoc
// @Summary Update professor profile
// @Description Change availability and orientee capacity
// @Tags Professors
// @Accept json
// @Produce json
// @Param id path string true "Professor ID"
// @Param payload body service.UpdateProfessorRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /professors/{id} [patch]
func (h *ProfessorHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid professor payload"))
		return
	}

	professor, err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// ReplaceAreas godoc
// @Summary Replace a professor's interest areas
// @Tags Professors
// @Accept json
// @Produce json
// @Param id path string true "Professor ID"
// @Param payload body service.ReplaceAreasRequest true "Area ids"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /professors/{id}/areas [put]
func (h *ProfessorHandler) ReplaceAreas(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ReplaceAreasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid areas payload"))
		return
	}

	professor, err := h.service.ReplaceAreas(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Me godoc
// @Summary My professor profile
// @Tags Professors
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professors/me [get]
func (h *ProfessorHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	professor, err := h.service.GetByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}
