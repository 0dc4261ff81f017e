package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

// AreaRepository manages persistence for interest areas.
type AreaRepository struct {
	db *sqlx.DB
}

// NewAreaRepository constructs an AreaRepository.
func NewAreaRepository(db *sqlx.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

// Create inserts a new interest area in pending state.
func (r *AreaRepository) Create(ctx context.Context, area *models.InterestArea) error {
	if area.ID == "" {
		area.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if area.CreatedAt.IsZero() {
		area.CreatedAt = now
	}
	area.UpdatedAt = now

	const query = `INSERT INTO interest_areas (id, name, status, created_at, updated_at)
		VALUES (:id, :name, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, area); err != nil {
		return fmt.Errorf("create interest area: %w", err)
	}
	return nil
}

// FindByID fetches an interest area by ID.
func (r *AreaRepository) FindByID(ctx context.Context, id string) (*models.InterestArea, error) {
	const query = `SELECT id, name, status, created_at, updated_at FROM interest_areas WHERE id = $1`
	var area models.InterestArea
	if err := r.db.GetContext(ctx, &area, query, id); err != nil {
		return nil, err
	}
	return &area, nil
}

// List returns interest areas, optionally restricted to one status.
func (r *AreaRepository) List(ctx context.Context, status *models.AreaStatus) ([]models.InterestArea, error) {
	query := `SELECT id, name, status, created_at, updated_at FROM interest_areas`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY name ASC`

	var areas []models.InterestArea
	if err := r.db.SelectContext(ctx, &areas, query, args...); err != nil {
		return nil, fmt.Errorf("list interest areas: %w", err)
	}
	return areas, nil
}

// UpdateStatus moves an area through its approval workflow.
func (r *AreaRepository) UpdateStatus(ctx context.Context, id string, status models.AreaStatus) error {
	const query = `UPDATE interest_areas SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update interest area status: %w", err)
	}
	return nil
}

// ExistsByName checks if an area with the same name already exists.
func (r *AreaRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT 1 FROM interest_areas WHERE LOWER(name) = LOWER($1) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check area name: %w", err)
	}
	return true, nil
}
