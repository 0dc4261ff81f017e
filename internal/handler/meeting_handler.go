package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/response"
)

// MeetingHandler wires HTTP endpoints to the meeting scheduler.
type MeetingHandler struct {
	service *service.MeetingService
	metrics *service.MetricsService
}

// NewMeetingHandler creates a new handler.
func NewMeetingHandler(svc *service.MeetingService, metrics *service.MetricsService) *MeetingHandler {
	return &MeetingHandler{service: svc, metrics: metrics}
}

// Schedule godoc
// @Summary Schedule a meeting
// @Description Book a one-hour meeting slot on an active advising
// @Tags Meetings
// @Accept json
// @Produce json
// @Param id path string true "Advising ID"
// @Param payload body service.ScheduleMeetingRequest true "Meeting payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "slot conflicts with the advisor's calendar"
// @Router /advisings/{id}/meetings [post]
func (h *MeetingHandler) Schedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ScheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid meeting payload"))
		return
	}

	meeting, err := h.service.Schedule(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		h.recordConflict(err)
		response.Error(c, err)
		return
	}
	response.Created(c, meeting)
}

// List godoc
// @Summary List an advising's meetings
// @Tags Meetings
// @Produce json
// @Param id path string true "Advising ID"
// @Success 200 {object} response.Envelope
// @Router /advisings/{id}/meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	meetings, err := h.service.ListByAdvising(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meetings, nil)
}

// Update godoc
// @Summary Update a meeting
// @Description Reschedule a meeting or mark it held or cancelled
// @Tags Meetings
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param payload body service.UpdateMeetingRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /meetings/{id} [patch]
func (h *MeetingHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid meeting payload"))
		return
	}

	meeting, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		h.recordConflict(err)
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting, nil)
}

func (h *MeetingHandler) recordConflict(err error) {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrScheduleConflict.Code {
		h.metrics.RecordScheduleConflict()
	}
}
