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

type advisingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Advising, error)
	ListByUser(ctx context.Context, userID string) ([]models.Advising, error)
	Update(ctx context.Context, advising *models.Advising) error
}

type advisorResolver interface {
	FindByID(ctx context.Context, id string) (*models.Professor, error)
}

// UpdateAdvisingRequest carries a status transition and/or progress fields.
type UpdateAdvisingRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=in_progress paused finished"`
	ProjectURL *string `json:"project_url" validate:"omitempty,url,max=500"`
	ArticleURL *string `json:"article_url" validate:"omitempty,url,max=500"`
	Notes      *string `json:"notes" validate:"omitempty,max=2000"`
}

// CancellationRequest carries optional feedback when closing an advising.
type CancellationRequest struct {
	Feedback *string `json:"feedback" validate:"omitempty,max=2000"`
}

// AdvisingService governs the advising lifecycle state machine: status
// transitions, the two-party cancellation handshake and the student
// finalization request.
type AdvisingService struct {
	repo       advisingRepository
	professors advisorResolver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAdvisingService constructs an AdvisingService.
func NewAdvisingService(repo advisingRepository, professors advisorResolver, validate *validator.Validate, logger *zap.Logger) *AdvisingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvisingService{repo: repo, professors: professors, validator: validate, logger: logger}
}

// List returns the user's advisings, active work first.
func (s *AdvisingService) List(ctx context.Context, userID string) ([]models.Advising, error) {
	advisings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list advisings")
	}
	return advisings, nil
}

// Get returns one advising, restricted to its parties.
func (s *AdvisingService) Get(ctx context.Context, id, actorUserID string) (*models.Advising, error) {
	advising, advisorUserID, err := s.loadWithAdvisor(ctx, id)
	if err != nil {
		return nil, err
	}
	if !advising.IsParty(actorUserID, advisorUserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return advising, nil
}

// UpdateStatus applies a party-initiated transition within the open
// statuses, optionally updating progress fields. Direct transitions to
// cancelled or closed are not reachable through this path.
func (s *AdvisingService) UpdateStatus(ctx context.Context, id, actorUserID string, req UpdateAdvisingRequest) (*models.Advising, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid advising payload")
	}

	advising, advisorUserID, err := s.loadWithAdvisor(ctx, id)
	if err != nil {
		return nil, err
	}
	if !advising.IsParty(actorUserID, advisorUserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if advising.Status.IsTerminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("advising is %s and can no longer change", advising.Status))
	}

	if req.Status != nil {
		target := models.AdvisingStatus(*req.Status)
		switch target {
		case models.AdvisingInProgress, models.AdvisingPaused:
			advising.Status = target
			advising.EndDate = nil
		case models.AdvisingFinished:
			now := time.Now().UTC()
			advising.Status = target
			advising.EndDate = &now
			advising.FinalizationRequest = models.RequestNone
		default:
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move advising to %s through a status update", target))
		}
	}
	if req.ProjectURL != nil {
		advising.ProjectURL = normalizeOptional(req.ProjectURL)
	}
	if req.ArticleURL != nil {
		advising.ArticleURL = normalizeOptional(req.ArticleURL)
	}
	if req.Notes != nil {
		advising.Notes = normalizeOptional(req.Notes)
	}

	if err := s.repo.Update(ctx, advising); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update advising")
	}
	return advising, nil
}

// RequestCancellation registers the student's wish to end the advising.
// Only the student side may open the request; the advisor confirms it.
func (s *AdvisingService) RequestCancellation(ctx context.Context, id, actorUserID string) (*models.Advising, error) {
	advising, _, err := s.loadWithAdvisor(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorUserID != advising.StudentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := guardCancellable(advising); err != nil {
		return nil, err
	}
	if advising.CancellationRequest != models.RequestNone {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a cancellation request is already pending")
	}

	advising.CancellationRequest = models.RequestStudent
	if err := s.repo.Update(ctx, advising); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register cancellation request")
	}
	return advising, nil
}

// ConfirmCancellation lets the advisor accept a pending student request,
// closing the advising.
func (s *AdvisingService) ConfirmCancellation(ctx context.Context, id, actorUserID string, req CancellationRequest) (*models.Advising, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancellation payload")
	}

	advising, advisorUserID, err := s.loadWithAdvisor(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorUserID != advisorUserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := guardCancellable(advising); err != nil {
		return nil, err
	}
	if advising.CancellationRequest != models.RequestStudent {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "no pending student cancellation request to confirm")
	}

	closeAdvising(advising, req.Feedback)
	advising.CancellationRequest = models.RequestNone
	if err := s.repo.Update(ctx, advising); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm cancellation")
	}
	return advising, nil
}

// CancelDirect lets the advisor close the advising unilaterally. The
// cancellation_request field is stamped with the advisor as an audit
// marker of who closed it.
func (s *AdvisingService) CancelDirect(ctx context.Context, id, actorUserID string, req CancellationRequest) (*models.Advising, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancellation payload")
	}

	advising, advisorUserID, err := s.loadWithAdvisor(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorUserID != advisorUserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := guardCancellable(advising); err != nil {
		return nil, err
	}

	closeAdvising(advising, req.Feedback)
	advising.CancellationRequest = models.RequestAdvisor
	if err := s.repo.Update(ctx, advising); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel advising")
	}
	return advising, nil
}

// RequestFinalization registers the student's wish to wrap up. The
// advisor resolves it by moving the advising to finished.
func (s *AdvisingService) RequestFinalization(ctx context.Context, id, actorUserID string) (*models.Advising, error) {
	advising, _, err := s.loadWithAdvisor(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorUserID != advising.StudentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if advising.Status != models.AdvisingInProgress && advising.Status != models.AdvisingPaused {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot request finalization while advising is %s", advising.Status))
	}
	if advising.FinalizationRequest != models.RequestNone {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a finalization request is already pending")
	}

	advising.FinalizationRequest = models.RequestStudent
	if err := s.repo.Update(ctx, advising); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register finalization request")
	}
	return advising, nil
}

func (s *AdvisingService) loadWithAdvisor(ctx context.Context, id string) (*models.Advising, string, error) {
	advising, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "advising not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advising")
	}

	professor, err := s.professors.FindByID(ctx, advising.ProfessorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "advisor not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advisor")
	}
	return advising, professor.UserID, nil
}

func guardCancellable(advising *models.Advising) error {
	switch advising.Status {
	case models.AdvisingCancelled, models.AdvisingClosed, models.AdvisingFinished:
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("advising is %s and can no longer be cancelled", advising.Status))
	}
	return nil
}

func closeAdvising(advising *models.Advising, feedback *string) {
	now := time.Now().UTC()
	advising.Status = models.AdvisingClosed
	advising.EndDate = &now
	advising.CancellationFeedback = normalizeOptional(feedback)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
