package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/nikolasrailan/tcc-match-sub000/internal/dto"
	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
)

// defaultCommitteeSize is the number of evaluator seats per committee.
const defaultCommitteeSize = 3

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type eligibilityReader interface {
	ListFinishedWithoutCommittee(ctx context.Context, exec sqlx.ExtContext) ([]models.EligibleAdvising, error)
}

type advisorPoolReader interface {
	ListPoolWithAreas(ctx context.Context, exec sqlx.ExtContext) ([]models.ProfessorWithAreas, error)
}

type committeeRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, committee *models.Committee) error
	FindByID(ctx context.Context, id string) (*models.Committee, error)
	FindByAdvising(ctx context.Context, advisingID string) (*models.Committee, error)
	List(ctx context.Context) ([]models.Committee, error)
	Update(ctx context.Context, committee *models.Committee) error
	IsDuplicate(err error) bool
}

// ShuffleFunc permutes n elements through swap. The default is
// rand.Shuffle; tests inject a deterministic permutation.
type ShuffleFunc func(n int, swap func(i, j int))

// CommitteeService runs the defense committee assignment engine and the
// administrative updates that follow a defense.
type CommitteeService struct {
	tx         txProvider
	advisings  eligibilityReader
	pool       advisorPoolReader
	committees committeeRepository
	shuffle    ShuffleFunc
	seats      int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCommitteeService constructs a CommitteeService.
func NewCommitteeService(tx txProvider, advisings eligibilityReader, pool advisorPoolReader, committees committeeRepository, validate *validator.Validate, logger *zap.Logger) *CommitteeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitteeService{
		tx:         tx,
		advisings:  advisings,
		pool:       pool,
		committees: committees,
		shuffle:    rand.Shuffle,
		seats:      defaultCommitteeSize,
		validator:  validate,
		logger:     logger,
	}
}

// WithShuffle overrides the random permutation source.
func (s *CommitteeService) WithShuffle(shuffle ShuffleFunc) *CommitteeService {
	if shuffle != nil {
		s.shuffle = shuffle
	}
	return s
}

// WithSeats overrides the number of evaluator seats per committee.
func (s *CommitteeService) WithSeats(seats int) *CommitteeService {
	if seats > 0 {
		s.seats = seats
	}
	return s
}

// Generate assigns a committee to every finished advising that lacks
// one. The whole run shares one transaction: the eligibility read, the
// advisor pool read and every committee write see the same snapshot.
// Failures on a single advising are recorded as warnings and do not
// abort the batch; only failures outside the per-item scope roll the
// run back.
func (s *CommitteeService) Generate(ctx context.Context) (*dto.GenerateCommitteesResponse, error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open generation transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	eligible, err := s.advisings.ListFinishedWithoutCommittee(ctx, tx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to select eligible advisings")
	}

	resp := &dto.GenerateCommitteesResponse{
		EligibleCount: len(eligible),
		CreatedIDs:    []string{},
		Warnings:      []string{},
		Outcomes:      []dto.GenerationOutcome{},
	}
	if len(eligible) == 0 {
		// Nothing to do is a clean no-op, not an error.
		return resp, nil
	}

	pool, err := s.pool.ListPoolWithAreas(ctx, tx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advisor pool")
	}

	for i, item := range eligible {
		outcome, err := s.generateOne(ctx, tx, pool, item, i+1, resp)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to run generation batch")
		}
		resp.Outcomes = append(resp.Outcomes, outcome)
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit generation run")
	}
	committed = true

	s.logger.Info("committee generation run finished",
		zap.Int("eligible", resp.EligibleCount),
		zap.Int("created", resp.CreatedCount),
		zap.Int("warnings", len(resp.Warnings)),
	)
	return resp, nil
}

// generateOne handles a single advising inside the batch. Each insert
// runs behind its own savepoint: a failed INSERT aborts the surrounding
// Postgres transaction, and rolling back to the savepoint is what keeps
// sibling committees committable. Persistence errors become the item's
// outcome; only savepoint bookkeeping errors abort the run.
func (s *CommitteeService) generateOne(ctx context.Context, exec sqlx.ExtContext, pool []models.ProfessorWithAreas, item models.EligibleAdvising, seq int, resp *dto.GenerateCommitteesResponse) (dto.GenerationOutcome, error) {
	evaluators := s.drawEvaluators(pool, item)

	committee := &models.Committee{AdvisingID: item.AdvisingID}
	if len(evaluators) > 0 {
		committee.Evaluator1 = &evaluators[0]
	}
	if len(evaluators) > 1 {
		committee.Evaluator2 = &evaluators[1]
	}
	if len(evaluators) > 2 {
		committee.Evaluator3 = &evaluators[2]
	}

	savepoint := fmt.Sprintf("sp_item_%d", seq)
	if _, err := exec.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
		return dto.GenerationOutcome{}, fmt.Errorf("set savepoint %s: %w", savepoint, err)
	}

	if err := s.committees.Create(ctx, exec, committee); err != nil {
		if _, rbErr := exec.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			return dto.GenerationOutcome{}, fmt.Errorf("rollback to savepoint %s: %w", savepoint, rbErr)
		}
		if s.committees.IsDuplicate(err) {
			warning := fmt.Sprintf("advising %s already has a committee, skipped", item.AdvisingID)
			resp.Warnings = append(resp.Warnings, warning)
			return dto.GenerationOutcome{AdvisingID: item.AdvisingID, Status: dto.OutcomeSkipped, Reason: warning}, nil
		}
		warning := fmt.Sprintf("advising %s: committee could not be saved: %v", item.AdvisingID, err)
		resp.Warnings = append(resp.Warnings, warning)
		s.logger.Warn("committee write failed", zap.String("advising_id", item.AdvisingID), zap.Error(err))
		return dto.GenerationOutcome{AdvisingID: item.AdvisingID, Status: dto.OutcomeFailed, Reason: warning}, nil
	}

	if _, err := exec.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
		return dto.GenerationOutcome{}, fmt.Errorf("release savepoint %s: %w", savepoint, err)
	}

	resp.CreatedCount++
	resp.CreatedIDs = append(resp.CreatedIDs, committee.ID)
	if len(evaluators) < s.seats {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("advising %s: only %d of %d evaluators available", item.AdvisingID, len(evaluators), s.seats))
	}
	return dto.GenerationOutcome{
		AdvisingID:  item.AdvisingID,
		Status:      dto.OutcomeCreated,
		CommitteeID: committee.ID,
		SeatsFilled: len(evaluators),
	}, nil
}

// drawEvaluators filters the pool down to compatible evaluators and
// takes a fresh random draw. An evaluator is compatible when they are
// not the advising's own advisor and share at least one interest area
// with the thesis idea. The shuffle is re-run per advising so repeated
// runs over the same data may pick different evaluators.
func (s *CommitteeService) drawEvaluators(pool []models.ProfessorWithAreas, item models.EligibleAdvising) []string {
	var candidates []string
	for _, professor := range pool {
		if professor.ID == item.ProfessorID {
			continue
		}
		if !professor.HasAnyArea(item.IdeaAreaIDs) {
			continue
		}
		candidates = append(candidates, professor.ID)
	}

	s.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > s.seats {
		candidates = candidates[:s.seats]
	}
	return candidates
}

// List returns every committee for the administrative view.
func (s *CommitteeService) List(ctx context.Context) ([]models.Committee, error) {
	committees, err := s.committees.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list committees")
	}
	return committees, nil
}

// Get fetches one committee.
func (s *CommitteeService) Get(ctx context.Context, id string) (*models.Committee, error) {
	committee, err := s.committees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "committee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committee")
	}
	return committee, nil
}

// GetByAdvising fetches the committee assigned to an advising.
func (s *CommitteeService) GetByAdvising(ctx context.Context, advisingID string) (*models.Committee, error) {
	committee, err := s.committees.FindByAdvising(ctx, advisingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no committee for this advising")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committee")
	}
	return committee, nil
}

// Update records defense details filled in by staff after the fact:
// date, location, verdict and grade.
func (s *CommitteeService) Update(ctx context.Context, id string, req dto.UpdateCommitteeRequest) (*models.Committee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid committee payload")
	}

	committee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DefenseDate != nil {
		if *req.DefenseDate == "" {
			committee.DefenseDate = nil
		} else {
			parsed, err := time.Parse(time.RFC3339, *req.DefenseDate)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "defense_date must be RFC 3339")
			}
			utc := parsed.UTC()
			committee.DefenseDate = &utc
		}
	}
	if req.Location != nil {
		committee.Location = normalizeOptional(req.Location)
	}
	if req.Verdict != nil {
		verdict := models.Verdict(*req.Verdict)
		if !verdict.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "verdict must be approved, approved_with_reservations or rejected")
		}
		committee.Verdict = &verdict
	}
	if req.Grade != nil {
		grade := models.GradeLetter(*req.Grade)
		if !grade.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "grade must be A, B, C or D")
		}
		committee.Grade = &grade
	}

	if err := s.committees.Update(ctx, committee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update committee")
	}
	return committee, nil
}
