package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
)

type areaRepository interface {
	Create(ctx context.Context, area *models.InterestArea) error
	FindByID(ctx context.Context, id string) (*models.InterestArea, error)
	List(ctx context.Context, status *models.AreaStatus) ([]models.InterestArea, error)
	UpdateStatus(ctx context.Context, id string, status models.AreaStatus) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// CreateAreaRequest proposes a new interest area tag.
type CreateAreaRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ReviewAreaRequest approves or rejects a pending area.
type ReviewAreaRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// AreaService manages interest area tags and their approval workflow.
type AreaService struct {
	repo      areaRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAreaService constructs an AreaService.
func NewAreaService(repo areaRepository, validate *validator.Validate, logger *zap.Logger) *AreaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AreaService{repo: repo, validator: validate, logger: logger}
}

// Create proposes a new area. It starts in pending until an admin
// approves it; only approved areas participate in matching.
func (s *AreaService) Create(ctx context.Context, req CreateAreaRequest) (*models.InterestArea, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid area payload")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check area name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an area with this name already exists")
	}

	area := &models.InterestArea{Name: req.Name, Status: models.AreaStatusPending}
	if err := s.repo.Create(ctx, area); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create area")
	}
	return area, nil
}

// List returns areas, optionally filtered by workflow status.
func (s *AreaService) List(ctx context.Context, status *models.AreaStatus) ([]models.InterestArea, error) {
	areas, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list areas")
	}
	return areas, nil
}

// Get fetches one area.
func (s *AreaService) Get(ctx context.Context, id string) (*models.InterestArea, error) {
	area, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "area not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load area")
	}
	return area, nil
}

// Review moves a pending area to approved or rejected.
func (s *AreaService) Review(ctx context.Context, id string, req ReviewAreaRequest) (*models.InterestArea, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	area, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if area.Status != models.AreaStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only pending areas can be reviewed")
	}

	if err := s.repo.UpdateStatus(ctx, id, models.AreaStatus(req.Status)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update area status")
	}
	return s.Get(ctx, id)
}
