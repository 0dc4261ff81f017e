package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	"github.com/nikolasrailan/tcc-match-sub000/internal/repository"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
)

const directoryCachePattern = "directory:*"

type professorRepository interface {
	List(ctx context.Context, filter repository.ProfessorFilter) ([]models.Professor, int, error)
	FindByID(ctx context.Context, id string) (*models.Professor, error)
	FindByUserID(ctx context.Context, userID string) (*models.Professor, error)
	UpdateProfile(ctx context.Context, id string, available bool, capacity int) error
	AreaIDs(ctx context.Context, professorID string) ([]string, error)
	ReplaceAreas(ctx context.Context, professorID string, areaIDs []string) error
}

type areaReader interface {
	FindByID(ctx context.Context, id string) (*models.InterestArea, error)
}

// UpdateProfessorRequest mutates a professor's advising attributes.
type UpdateProfessorRequest struct {
	Available *bool `json:"available"`
	Capacity  *int  `json:"capacity" validate:"omitempty,min=0,max=50"`
}

// ReplaceAreasRequest swaps the professor's interest area tag set.
type ReplaceAreasRequest struct {
	AreaIDs []string `json:"area_ids" validate:"required,dive,uuid"`
}

// DirectoryPage is one page of the professor directory.
type DirectoryPage struct {
	Professors []models.ProfessorWithAreas `json:"professors"`
	Pagination models.Pagination           `json:"pagination"`
}

// ProfessorService serves the advisor directory and professor profile
// management. Directory reads go through the cache when enabled.
type ProfessorService struct {
	repo      professorRepository
	areas     areaReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfessorService constructs a ProfessorService.
func NewProfessorService(repo professorRepository, areas areaReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{repo: repo, areas: areas, cache: cache, validator: validate, logger: logger}
}

// List returns a page of the professor directory with each professor's
// interest areas attached.
func (s *ProfessorService) List(ctx context.Context, filter repository.ProfessorFilter) (*DirectoryPage, error) {
	cacheKey := directoryCacheKey(filter)
	if s.cache.Enabled() {
		var cached DirectoryPage
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	professors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}

	withAreas := make([]models.ProfessorWithAreas, 0, len(professors))
	for _, professor := range professors {
		areaIDs, err := s.repo.AreaIDs(ctx, professor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor areas")
		}
		withAreas = append(withAreas, models.ProfessorWithAreas{Professor: professor, AreaIDs: areaIDs})
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	result := &DirectoryPage{
		Professors: withAreas,
		Pagination: models.Pagination{Page: page, PageSize: size, TotalCount: total},
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, result, 0)
	}
	return result, nil
}

// Get fetches one professor with their interest areas.
func (s *ProfessorService) Get(ctx context.Context, id string) (*models.ProfessorWithAreas, error) {
	professor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	areaIDs, err := s.repo.AreaIDs(ctx, professor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor areas")
	}
	return &models.ProfessorWithAreas{Professor: *professor, AreaIDs: areaIDs}, nil
}

// UpdateProfile changes availability and capacity. Professors may only
// update their own profile; admins may update anyone's.
func (s *ProfessorService) UpdateProfile(ctx context.Context, id, actorUserID string, actorRole models.UserRole, req UpdateProfessorRequest) (*models.ProfessorWithAreas, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}

	professor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	if actorRole != models.RoleAdmin && professor.UserID != actorUserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	available := professor.Available
	if req.Available != nil {
		available = *req.Available
	}
	capacity := professor.Capacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}

	if err := s.repo.UpdateProfile(ctx, id, available, capacity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update professor")
	}
	s.invalidateDirectory(ctx)
	return s.Get(ctx, id)
}

// ReplaceAreas swaps the professor's interest area set. Only approved
// areas can be attached.
func (s *ProfessorService) ReplaceAreas(ctx context.Context, id, actorUserID string, actorRole models.UserRole, req ReplaceAreasRequest) (*models.ProfessorWithAreas, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid areas payload")
	}

	professor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	if actorRole != models.RoleAdmin && professor.UserID != actorUserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	for _, areaID := range req.AreaIDs {
		area, err := s.areas.FindByID(ctx, areaID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("interest area %s does not exist", areaID))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check interest area")
		}
		if area.Status != models.AreaStatusApproved {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("interest area %s is not approved", areaID))
		}
	}

	if err := s.repo.ReplaceAreas(ctx, id, req.AreaIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace professor areas")
	}
	s.invalidateDirectory(ctx)
	return s.Get(ctx, id)
}

// GetByUser resolves the professor profile owned by a user.
func (s *ProfessorService) GetByUser(ctx context.Context, userID string) (*models.ProfessorWithAreas, error) {
	professor, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	areaIDs, err := s.repo.AreaIDs(ctx, professor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor areas")
	}
	return &models.ProfessorWithAreas{Professor: *professor, AreaIDs: areaIDs}, nil
}

func (s *ProfessorService) invalidateDirectory(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, directoryCachePattern); err != nil {
		s.logger.Warn("failed to invalidate directory cache", zap.Error(err))
	}
}

func directoryCacheKey(filter repository.ProfessorFilter) string {
	available := "any"
	if filter.Available != nil {
		available = fmt.Sprintf("%t", *filter.Available)
	}
	return fmt.Sprintf("directory:%s:%s:%s:%d:%d", available, filter.AreaID, filter.Search, filter.Page, filter.PageSize)
}
