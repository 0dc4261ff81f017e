package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/response"
)

// AdvisingHandler wires HTTP endpoints to the advising lifecycle service.
type AdvisingHandler struct {
	service *service.AdvisingService
}

// NewAdvisingHandler creates a new handler.
func NewAdvisingHandler(svc *service.AdvisingService) *AdvisingHandler {
	return &AdvisingHandler{service: svc}
}

// List godoc
// @Summary List my advisings
// @Description List advisings where the caller is the student or the advisor, active first
// @Tags Advisings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /advisings [get]
func (h *AdvisingHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	advisings, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, advisings, nil)
}

// Get godoc
// @Summary Get one advising
// @Tags Advisings
// @Produce json
// @Param id path string true "Advising ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /advisings/{id} [get]
func (h *AdvisingHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	advising, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, advising, nil)
}

// Update godoc
// @Summary Update advising status or progress fields
// @Description Transition within in_progress/paused/finished and update URLs or notes
// @Tags Advisings
// @Accept json
// @Produce json
// @Param id path string true "Advising ID"
// @Param payload body service.UpdateAdvisingRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advisings/{id} [patch]
func (h *AdvisingHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateAdvisingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid advising payload"))
		return
	}

	advising, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, advising, nil)
}

// RequestCancellation godoc
// @Summary Request cancellation
// @Description Student opens a cancellation request for the advisor to confirm
// @Tags Advisings
// @Produce json
// @Param id path string true "Advising ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advisings/{id}/cancellation-request [patch]
func (h *AdvisingHandler) RequestCancellation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	advising, err := h.service.RequestCancellation(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, advising, nil)
}

// ConfirmCancellation godoc
// @Summary Confirm a pending cancellation
// @Description Advisor accepts the student's cancellation request and closes the advising
// @Tags Advisings
// @Accept json
// @Produce json
// @Param id path string true "Advising ID"
// @Param payload body service.CancellationRequest false "Optional feedback"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advisings/{id}/cancellation-confirm [patch]
func (h *AdvisingHandler) ConfirmCancellation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CancellationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancellation payload"))
			return
		}
	}

	advising, err := h.service.ConfirmCancellation(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, advising, nil)
}

// CancelDirect godoc
// @Summary Cancel directly as the advisor
// @Description Advisor closes the advising unilaterally
// @Tags Advisings
// @Accept json
// @Produce json
// @Param id path string true "Advising ID"
// @Param payload body service.CancellationRequest false "Optional feedback"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advisings/{id}/cancel [patch]
func (h *AdvisingHandler) CancelDirect(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CancellationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancellation payload"))
			return
		}
	}

	advising, err := h.service.CancelDirect(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, advising, nil)
}

// RequestFinalization godoc
// @Summary Request finalization
// @Description Student asks the advisor to mark the advising finished
// @Tags Advisings
// @Produce json
// @Param id path string true "Advising ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advisings/{id}/finalization-request [patch]
func (h *AdvisingHandler) RequestFinalization(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	advising, err := h.service.RequestFinalization(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, advising, nil)
}
