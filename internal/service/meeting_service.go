package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
)

type meetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	FindByID(ctx context.Context, id string) (*models.Meeting, error)
	Update(ctx context.Context, meeting *models.Meeting) error
	ListByAdvising(ctx context.Context, advisingID string) ([]models.Meeting, error)
	ListScheduledByAdvisor(ctx context.Context, professorID string) ([]models.Meeting, error)
}

// ScheduleMeetingRequest creates a one-hour meeting slot.
type ScheduleMeetingRequest struct {
	StartsAt time.Time `json:"starts_at" validate:"required"`
	Agenda   *string   `json:"agenda" validate:"omitempty,max=1000"`
}

// UpdateMeetingRequest reschedules a meeting or changes its record.
type UpdateMeetingRequest struct {
	StartsAt *time.Time `json:"starts_at"`
	Agenda   *string    `json:"agenda" validate:"omitempty,max=1000"`
	Status   *string    `json:"status" validate:"omitempty,oneof=scheduled held cancelled"`
}

// MeetingService schedules one-hour advising meetings, enforcing the
// advisor's calendar against double booking.
type MeetingService struct {
	meetings   meetingRepository
	advisings  advisingRepository
	professors advisorResolver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewMeetingService constructs a MeetingService.
func NewMeetingService(meetings meetingRepository, advisings advisingRepository, professors advisorResolver, validate *validator.Validate, logger *zap.Logger) *MeetingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeetingService{meetings: meetings, advisings: advisings, professors: professors, validator: validate, logger: logger}
}

// Schedule books a new meeting on an active advising. The slot is
// rejected when it overlaps any scheduled meeting of the same advisor.
func (s *MeetingService) Schedule(ctx context.Context, advisingID, actorUserID string, req ScheduleMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}

	advising, err := s.loadAdvisingForParty(ctx, advisingID, actorUserID)
	if err != nil {
		return nil, err
	}
	// Paused advisings still meet; only finished or terminal ones don't.
	if advising.Status != models.AdvisingInProgress && advising.Status != models.AdvisingPaused {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot schedule meetings while advising is %s", advising.Status))
	}

	if err := s.checkSlot(ctx, advising.ProfessorID, req.StartsAt, ""); err != nil {
		return nil, err
	}

	meeting := &models.Meeting{
		AdvisingID: advisingID,
		StartsAt:   req.StartsAt.UTC(),
		Status:     models.MeetingScheduled,
	}
	if req.Agenda != nil {
		meeting.Agenda = strings.TrimSpace(*req.Agenda)
	}
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meeting")
	}
	return meeting, nil
}

// Update reschedules a meeting or moves it to held or cancelled. On a
// reschedule, the meeting's own current slot does not count against it.
func (s *MeetingService) Update(ctx context.Context, meetingID, actorUserID string, req UpdateMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}

	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meeting")
	}

	advising, err := s.loadAdvisingForParty(ctx, meeting.AdvisingID, actorUserID)
	if err != nil {
		return nil, err
	}
	if meeting.Status == models.MeetingCancelled {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "meeting is cancelled and can no longer change")
	}

	if req.StartsAt != nil {
		if err := s.checkSlot(ctx, advising.ProfessorID, *req.StartsAt, meeting.ID); err != nil {
			return nil, err
		}
		meeting.StartsAt = req.StartsAt.UTC()
	}
	if req.Agenda != nil {
		meeting.Agenda = strings.TrimSpace(*req.Agenda)
	}
	if req.Status != nil {
		meeting.Status = models.MeetingStatus(*req.Status)
	}

	if err := s.meetings.Update(ctx, meeting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update meeting")
	}
	return meeting, nil
}

// ListByAdvising returns the advising's meetings for either party.
func (s *MeetingService) ListByAdvising(ctx context.Context, advisingID, actorUserID string) ([]models.Meeting, error) {
	if _, err := s.loadAdvisingForParty(ctx, advisingID, actorUserID); err != nil {
		return nil, err
	}
	meetings, err := s.meetings.ListByAdvising(ctx, advisingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}
	return meetings, nil
}

func (s *MeetingService) checkSlot(ctx context.Context, professorID string, startsAt time.Time, excludeMeetingID string) error {
	existing, err := s.meetings.ListScheduledByAdvisor(ctx, professorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advisor calendar")
	}
	if HasMeetingConflict(startsAt.UTC(), existing, excludeMeetingID) {
		return appErrors.Clone(appErrors.ErrScheduleConflict, "the advisor already has a meeting in this slot")
	}
	return nil
}

func (s *MeetingService) loadAdvisingForParty(ctx context.Context, advisingID, actorUserID string) (*models.Advising, error) {
	advising, err := s.advisings.FindByID(ctx, advisingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "advising not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advising")
	}
	professor, err := s.professors.FindByID(ctx, advising.ProfessorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "advisor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advisor")
	}
	if !advising.IsParty(actorUserID, professor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return advising, nil
}
