package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

const ideaColumns = `id, student_id, title, description, status, submitted_at, created_at, updated_at`

// IdeaRepository manages persistence for thesis ideas.
type IdeaRepository struct {
	db *sqlx.DB
}

// NewIdeaRepository constructs an IdeaRepository.
func NewIdeaRepository(db *sqlx.DB) *IdeaRepository {
	return &IdeaRepository{db: db}
}

// Create inserts a new thesis idea.
func (r *IdeaRepository) Create(ctx context.Context, idea *models.ThesisIdea) error {
	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = now
	}
	idea.UpdatedAt = now

	const query = `INSERT INTO thesis_ideas (id, student_id, title, description, status, submitted_at, created_at, updated_at)
		VALUES (:id, :student_id, :title, :description, :status, :submitted_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, idea); err != nil {
		return fmt.Errorf("create idea: %w", err)
	}
	return nil
}

// FindByID fetches a thesis idea by ID.
func (r *IdeaRepository) FindByID(ctx context.Context, id string) (*models.ThesisIdea, error) {
	query := fmt.Sprintf(`SELECT %s FROM thesis_ideas WHERE id = $1`, ideaColumns)
	var idea models.ThesisIdea
	if err := r.db.GetContext(ctx, &idea, query, id); err != nil {
		return nil, err
	}
	return &idea, nil
}

// ListByStudent returns the student's ideas, newest first.
func (r *IdeaRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ThesisIdea, error) {
	query := fmt.Sprintf(`SELECT %s FROM thesis_ideas WHERE student_id = $1 ORDER BY created_at DESC`, ideaColumns)
	var ideas []models.ThesisIdea
	if err := r.db.SelectContext(ctx, &ideas, query, studentID); err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return ideas, nil
}

// Update persists the mutable fields of an idea.
func (r *IdeaRepository) Update(ctx context.Context, idea *models.ThesisIdea) error {
	idea.UpdatedAt = time.Now().UTC()
	const query = `UPDATE thesis_ideas SET title = :title, description = :description, status = :status, submitted_at = :submitted_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, idea); err != nil {
		return fmt.Errorf("update idea: %w", err)
	}
	return nil
}

// AreaIDs returns the interest area ids tagged on an idea.
func (r *IdeaRepository) AreaIDs(ctx context.Context, ideaID string) ([]string, error) {
	const query = `SELECT area_id FROM idea_interest_areas WHERE idea_id = $1 ORDER BY area_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, ideaID); err != nil {
		return nil, fmt.Errorf("list idea areas: %w", err)
	}
	return ids, nil
}

// ReplaceAreas swaps the idea's interest area set atomically.
func (r *IdeaRepository) ReplaceAreas(ctx context.Context, ideaID string, areaIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace idea areas: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM idea_interest_areas WHERE idea_id = $1`, ideaID); err != nil {
		return fmt.Errorf("clear idea areas: %w", err)
	}
	for _, areaID := range areaIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO idea_interest_areas (idea_id, area_id) VALUES ($1, $2)`, ideaID, areaID); err != nil {
			return fmt.Errorf("insert idea area: %w", err)
		}
	}
	return tx.Commit()
}
