package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/response"
)

// IdeaHandler wires HTTP endpoints to the thesis idea workflow.
type IdeaHandler struct {
	service *service.IdeaService
}

// NewIdeaHandler creates a new handler.
func NewIdeaHandler(svc *service.IdeaService) *IdeaHandler {
	return &IdeaHandler{service: svc}
}

// Create godoc
// @Summary Create a draft idea
// @Tags Ideas
// @Accept json
// @Produce json
// @Param payload body service.CreateIdeaRequest true "Idea payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /ideas [post]
func (h *IdeaHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid idea payload"))
		return
	}

	idea, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, idea)
}

// ListMine godoc
// @Summary List my ideas
// @Tags Ideas
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ideas [get]
func (h *IdeaHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	ideas, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ideas, nil)
}

// Get godoc
// @Summary Get one idea
// @Tags Ideas
// @Produce json
// @Param id path string true "Idea ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /ideas/{id} [get]
func (h *IdeaHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	idea, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, idea, nil)
}

// Update godoc
// @Summary Update a draft idea
// @Tags Ideas
// @Accept json
// @Produce json
// @Param id path string true "Idea ID"
// @Param payload body service.UpdateIdeaRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /ideas/{id} [patch]
func (h *IdeaHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid idea payload"))
		return
	}

	idea, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, idea, nil)
}

// Submit godoc
// @Summary Submit an idea for review
// @Tags Ideas
// @Produce json
// @Param id path string true "Idea ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /ideas/{id}/submit [patch]
func (h *IdeaHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	idea, err := h.service.Submit(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, idea, nil)
}

// Review godoc
// @Summary Approve or reject an idea
// @Tags Ideas
// @Accept json
// @Produce json
// @Param id path string true "Idea ID"
// @Param payload body service.ReviewIdeaRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /ideas/{id}/review [patch]
func (h *IdeaHandler) Review(c *gin.Context) {
	var req service.ReviewIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	idea, err := h.service.Review(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, idea, nil)
}

// Cancel godoc
// @Summary Withdraw an idea
// @Tags Ideas
// @Produce json
// @Param id path string true "Idea ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /ideas/{id}/cancel [patch]
func (h *IdeaHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	idea, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, idea, nil)
}
