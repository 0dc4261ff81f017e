package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

const committeeColumns = `id, advising_id, evaluator1_id, evaluator2_id, evaluator3_id, defense_date, location, verdict, grade, created_at, updated_at`

// pq error code for unique_violation.
const uniqueViolationCode = "23505"

// CommitteeRepository manages persistence for defense committees.
type CommitteeRepository struct {
	db *sqlx.DB
}

// NewCommitteeRepository constructs a CommitteeRepository.
func NewCommitteeRepository(db *sqlx.DB) *CommitteeRepository {
	return &CommitteeRepository{db: db}
}

// Create inserts a committee row. Runs against exec so the committee
// engine can thread its transaction through; the unique constraint on
// advising_id is the last line of defense against duplicate committees.
func (r *CommitteeRepository) Create(ctx context.Context, exec sqlx.ExtContext, committee *models.Committee) error {
	if committee.ID == "" {
		committee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if committee.CreatedAt.IsZero() {
		committee.CreatedAt = now
	}
	committee.UpdatedAt = now

	const query = `INSERT INTO committees (id, advising_id, evaluator1_id, evaluator2_id, evaluator3_id, defense_date, location, verdict, grade, created_at, updated_at)
		VALUES (:id, :advising_id, :evaluator1_id, :evaluator2_id, :evaluator3_id, :defense_date, :location, :verdict, :grade, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, committee); err != nil {
		return fmt.Errorf("create committee: %w", err)
	}
	return nil
}

// FindByID fetches a committee by ID.
func (r *CommitteeRepository) FindByID(ctx context.Context, id string) (*models.Committee, error) {
	query := fmt.Sprintf(`SELECT %s FROM committees WHERE id = $1`, committeeColumns)
	var committee models.Committee
	if err := r.db.GetContext(ctx, &committee, query, id); err != nil {
		return nil, err
	}
	return &committee, nil
}

// FindByAdvising fetches the committee assigned to an advising.
func (r *CommitteeRepository) FindByAdvising(ctx context.Context, advisingID string) (*models.Committee, error) {
	query := fmt.Sprintf(`SELECT %s FROM committees WHERE advising_id = $1`, committeeColumns)
	var committee models.Committee
	if err := r.db.GetContext(ctx, &committee, query, advisingID); err != nil {
		return nil, err
	}
	return &committee, nil
}

// List returns committees ordered by defense date, undecided first.
func (r *CommitteeRepository) List(ctx context.Context) ([]models.Committee, error) {
	query := fmt.Sprintf(`SELECT %s FROM committees ORDER BY defense_date ASC NULLS FIRST, created_at DESC`, committeeColumns)
	var committees []models.Committee
	if err := r.db.SelectContext(ctx, &committees, query); err != nil {
		return nil, fmt.Errorf("list committees: %w", err)
	}
	return committees, nil
}

// Update persists administrative defense details.
func (r *CommitteeRepository) Update(ctx context.Context, committee *models.Committee) error {
	committee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE committees SET defense_date = :defense_date, location = :location,
		verdict = :verdict, grade = :grade, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, committee); err != nil {
		return fmt.Errorf("update committee: %w", err)
	}
	return nil
}

// IsDuplicate reports whether err came from the unique constraint on
// advising_id, meaning a committee already exists for that advising.
func (r *CommitteeRepository) IsDuplicate(err error) bool {
	return IsUniqueViolation(err)
}

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation, used to classify duplicate-committee races as warnings.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
