package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

const advisingColumns = `id, idea_id, student_id, professor_id, status, cancellation_request, finalization_request, start_date, end_date, notes, project_url, article_url, cancellation_feedback, created_at, updated_at`

// AdvisingRepository manages persistence for advising relationships.
type AdvisingRepository struct {
	db *sqlx.DB
}

// NewAdvisingRepository constructs an AdvisingRepository.
func NewAdvisingRepository(db *sqlx.DB) *AdvisingRepository {
	return &AdvisingRepository{db: db}
}

// FindByID fetches an advising by ID.
func (r *AdvisingRepository) FindByID(ctx context.Context, id string) (*models.Advising, error) {
	query := fmt.Sprintf(`SELECT %s FROM advisings WHERE id = $1`, advisingColumns)
	var advising models.Advising
	if err := r.db.GetContext(ctx, &advising, query, id); err != nil {
		return nil, err
	}
	return &advising, nil
}

// ListByUser returns every advising where the user is the student or the
// advisor, active work first: rank(status) ascending, then start date
// descending within rank.
func (r *AdvisingRepository) ListByUser(ctx context.Context, userID string) ([]models.Advising, error) {
	const query = `SELECT a.id, a.idea_id, a.student_id, a.professor_id, a.status, a.cancellation_request,
			a.finalization_request, a.start_date, a.end_date, a.notes, a.project_url, a.article_url,
			a.cancellation_feedback, a.created_at, a.updated_at
		FROM advisings a
		WHERE a.student_id = $1
		   OR a.professor_id IN (SELECT p.id FROM professors p WHERE p.user_id = $1)
		ORDER BY CASE a.status
			WHEN 'in_progress' THEN 1
			WHEN 'paused' THEN 2
			WHEN 'finished' THEN 3
			WHEN 'closed' THEN 4
			ELSE 5
		END ASC, a.start_date DESC`
	var advisings []models.Advising
	if err := r.db.SelectContext(ctx, &advisings, query, userID); err != nil {
		return nil, fmt.Errorf("list advisings: %w", err)
	}
	return advisings, nil
}

// Update persists the mutable fields of an advising.
func (r *AdvisingRepository) Update(ctx context.Context, advising *models.Advising) error {
	advising.UpdatedAt = time.Now().UTC()
	const query = `UPDATE advisings SET status = :status, cancellation_request = :cancellation_request,
		finalization_request = :finalization_request, end_date = :end_date, notes = :notes,
		project_url = :project_url, article_url = :article_url,
		cancellation_feedback = :cancellation_feedback, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, advising); err != nil {
		return fmt.Errorf("update advising: %w", err)
	}
	return nil
}

// ListFinishedWithoutCommittee selects every finished advising that has no
// committee yet, carrying the idea's interest area tag set. The left join
// with NULL filter is deliberate: a missing committee is the condition,
// not an error. Executed inside the generation transaction via exec.
func (r *AdvisingRepository) ListFinishedWithoutCommittee(ctx context.Context, exec sqlx.ExtContext) ([]models.EligibleAdvising, error) {
	const query = `SELECT a.id AS advising_id, a.professor_id, a.idea_id,
			COALESCE(array_agg(ia.area_id) FILTER (WHERE ia.area_id IS NOT NULL), '{}') AS area_ids
		FROM advisings a
		LEFT JOIN committees c ON c.advising_id = a.id
		LEFT JOIN idea_interest_areas ia ON ia.idea_id = a.idea_id
		WHERE a.status = 'finished' AND c.id IS NULL
		GROUP BY a.id, a.professor_id, a.idea_id
		ORDER BY a.id`

	rows, err := exec.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list eligible advisings: %w", err)
	}
	defer rows.Close()

	var eligible []models.EligibleAdvising
	for rows.Next() {
		var item models.EligibleAdvising
		var areaIDs pq.StringArray
		if err := rows.Scan(&item.AdvisingID, &item.ProfessorID, &item.IdeaID, &areaIDs); err != nil {
			return nil, fmt.Errorf("scan eligible advising: %w", err)
		}
		item.IdeaAreaIDs = areaIDs
		eligible = append(eligible, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eligible advisings: %w", err)
	}
	return eligible, nil
}
