package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
)

type ideaRepository interface {
	Create(ctx context.Context, idea *models.ThesisIdea) error
	FindByID(ctx context.Context, id string) (*models.ThesisIdea, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ThesisIdea, error)
	Update(ctx context.Context, idea *models.ThesisIdea) error
	AreaIDs(ctx context.Context, ideaID string) ([]string, error)
	ReplaceAreas(ctx context.Context, ideaID string, areaIDs []string) error
}

// CreateIdeaRequest proposes a new thesis idea in draft status.
type CreateIdeaRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"required,min=10,max=5000"`
	AreaIDs     []string `json:"area_ids" validate:"omitempty,dive,uuid"`
}

// UpdateIdeaRequest mutates a draft idea.
type UpdateIdeaRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=5000"`
	AreaIDs     []string `json:"area_ids" validate:"omitempty,dive,uuid"`
}

// ReviewIdeaRequest is the administrative approve/reject decision.
type ReviewIdeaRequest struct {
	Approve bool `json:"approve"`
}

// IdeaService manages the thesis idea submission workflow. Ideas are
// mutable only while in draft and owned by the submitting student.
type IdeaService struct {
	repo      ideaRepository
	areas     areaReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIdeaService constructs an IdeaService.
func NewIdeaService(repo ideaRepository, areas areaReader, validate *validator.Validate, logger *zap.Logger) *IdeaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdeaService{repo: repo, areas: areas, validator: validate, logger: logger}
}

// Create registers a new draft idea for the student.
func (s *IdeaService) Create(ctx context.Context, studentID string, req CreateIdeaRequest) (*models.ThesisIdeaWithAreas, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid idea payload")
	}
	if err := s.checkAreas(ctx, req.AreaIDs); err != nil {
		return nil, err
	}

	idea := &models.ThesisIdea{
		StudentID:   studentID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.IdeaStatusDraft,
	}
	if err := s.repo.Create(ctx, idea); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create idea")
	}
	if len(req.AreaIDs) > 0 {
		if err := s.repo.ReplaceAreas(ctx, idea.ID, req.AreaIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tag idea areas")
		}
	}
	return s.withAreas(ctx, idea)
}

// ListMine returns the student's ideas, newest first.
func (s *IdeaService) ListMine(ctx context.Context, studentID string) ([]models.ThesisIdeaWithAreas, error) {
	ideas, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ideas")
	}
	result := make([]models.ThesisIdeaWithAreas, 0, len(ideas))
	for _, idea := range ideas {
		areaIDs, err := s.repo.AreaIDs(ctx, idea.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea areas")
		}
		result = append(result, models.ThesisIdeaWithAreas{ThesisIdea: idea, AreaIDs: areaIDs})
	}
	return result, nil
}

// Get fetches one idea. Students see only their own; staff see all.
func (s *IdeaService) Get(ctx context.Context, id, actorUserID string, actorRole models.UserRole) (*models.ThesisIdeaWithAreas, error) {
	idea, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole == models.RoleStudent && idea.StudentID != actorUserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return s.withAreas(ctx, idea)
}

// Update mutates a draft idea. Only the owner may edit, and only while
// the idea has not been submitted.
func (s *IdeaService) Update(ctx context.Context, id, actorUserID string, req UpdateIdeaRequest) (*models.ThesisIdeaWithAreas, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid idea payload")
	}

	idea, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea.StudentID != actorUserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if idea.Status != models.IdeaStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only draft ideas can be edited")
	}

	if req.Title != nil {
		idea.Title = *req.Title
	}
	if req.Description != nil {
		idea.Description = *req.Description
	}
	if err := s.repo.Update(ctx, idea); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update idea")
	}
	if req.AreaIDs != nil {
		if err := s.checkAreas(ctx, req.AreaIDs); err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceAreas(ctx, idea.ID, req.AreaIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tag idea areas")
		}
	}
	return s.withAreas(ctx, idea)
}

// Submit moves a draft idea to under review and stamps the submission time.
func (s *IdeaService) Submit(ctx context.Context, id, actorUserID string) (*models.ThesisIdeaWithAreas, error) {
	idea, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea.StudentID != actorUserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if idea.Status != models.IdeaStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only draft ideas can be submitted")
	}

	now := time.Now().UTC()
	idea.Status = models.IdeaStatusUnderReview
	idea.SubmittedAt = &now
	if err := s.repo.Update(ctx, idea); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit idea")
	}
	return s.withAreas(ctx, idea)
}

// Review resolves an under-review idea to approved or rejected.
func (s *IdeaService) Review(ctx context.Context, id string, req ReviewIdeaRequest) (*models.ThesisIdeaWithAreas, error) {
	idea, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea.Status != models.IdeaStatusUnderReview {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only ideas under review can be resolved")
	}

	if req.Approve {
		idea.Status = models.IdeaStatusApproved
	} else {
		idea.Status = models.IdeaStatusRejected
	}
	if err := s.repo.Update(ctx, idea); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review idea")
	}
	return s.withAreas(ctx, idea)
}

// Cancel withdraws an idea that has not been approved yet.
func (s *IdeaService) Cancel(ctx context.Context, id, actorUserID string) (*models.ThesisIdeaWithAreas, error) {
	idea, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea.StudentID != actorUserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	switch idea.Status {
	case models.IdeaStatusDraft, models.IdeaStatusUnderReview, models.IdeaStatusRejected:
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "idea can no longer be cancelled")
	}

	idea.Status = models.IdeaStatusCancelled
	if err := s.repo.Update(ctx, idea); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel idea")
	}
	return s.withAreas(ctx, idea)
}

func (s *IdeaService) load(ctx context.Context, id string) (*models.ThesisIdea, error) {
	idea, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}
	return idea, nil
}

func (s *IdeaService) withAreas(ctx context.Context, idea *models.ThesisIdea) (*models.ThesisIdeaWithAreas, error) {
	areaIDs, err := s.repo.AreaIDs(ctx, idea.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea areas")
	}
	return &models.ThesisIdeaWithAreas{ThesisIdea: *idea, AreaIDs: areaIDs}, nil
}

func (s *IdeaService) checkAreas(ctx context.Context, areaIDs []string) error {
	for _, areaID := range areaIDs {
		area, err := s.areas.FindByID(ctx, areaID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("interest area %s does not exist", areaID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check interest area")
		}
		if area.Status != models.AreaStatusApproved {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("interest area %s is not approved", areaID))
		}
	}
	return nil
}
