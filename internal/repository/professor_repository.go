package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

const professorColumns = `p.id, p.user_id, u.full_name, u.email, p.available, p.capacity, p.created_at, p.updated_at`

// ProfessorRepository manages persistence for professors and their
// interest area associations.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs a ProfessorRepository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// ProfessorFilter captures filtering criteria for listing professors.
type ProfessorFilter struct {
	Available *bool
	AreaID    string
	Search    string
	Page      int
	PageSize  int
}

// List returns professors matching filters along with total count.
func (r *ProfessorRepository) List(ctx context.Context, filter ProfessorFilter) ([]models.Professor, int, error) {
	base := `FROM professors p JOIN users u ON u.id = p.user_id WHERE u.active = TRUE`
	var conditions []string
	var args []interface{}

	if filter.Available != nil {
		conditions = append(conditions, fmt.Sprintf("p.available = $%d", len(args)+1))
		args = append(args, *filter.Available)
	}
	if filter.AreaID != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM professor_interest_areas pia WHERE pia.professor_id = p.id AND pia.area_id = $%d)", len(args)+1))
		args = append(args, filter.AreaID)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR LOWER(u.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY u.full_name ASC LIMIT %d OFFSET %d", professorColumns, base, size, offset)
	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list professors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count professors: %w", err)
	}

	return professors, total, nil
}

// FindByID fetches a professor by ID.
func (r *ProfessorRepository) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	query := fmt.Sprintf(`SELECT %s FROM professors p JOIN users u ON u.id = p.user_id WHERE p.id = $1`, professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindByUserID fetches the professor row owned by a user.
func (r *ProfessorRepository) FindByUserID(ctx context.Context, userID string) (*models.Professor, error) {
	query := fmt.Sprintf(`SELECT %s FROM professors p JOIN users u ON u.id = p.user_id WHERE p.user_id = $1`, professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, userID); err != nil {
		return nil, err
	}
	return &professor, nil
}

// UpdateProfile mutates the advising attributes of a professor.
func (r *ProfessorRepository) UpdateProfile(ctx context.Context, id string, available bool, capacity int) error {
	const query = `UPDATE professors SET available = $2, capacity = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, available, capacity, time.Now().UTC()); err != nil {
		return fmt.Errorf("update professor profile: %w", err)
	}
	return nil
}

// AreaIDs returns the interest area ids associated with a professor.
func (r *ProfessorRepository) AreaIDs(ctx context.Context, professorID string) ([]string, error) {
	const query = `SELECT area_id FROM professor_interest_areas WHERE professor_id = $1 ORDER BY area_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor areas: %w", err)
	}
	return ids, nil
}

// ReplaceAreas swaps the professor's interest area set atomically.
func (r *ProfessorRepository) ReplaceAreas(ctx context.Context, professorID string, areaIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace areas: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM professor_interest_areas WHERE professor_id = $1`, professorID); err != nil {
		return fmt.Errorf("clear professor areas: %w", err)
	}
	for _, areaID := range areaIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO professor_interest_areas (professor_id, area_id) VALUES ($1, $2)`, professorID, areaID); err != nil {
			return fmt.Errorf("insert professor area: %w", err)
		}
	}
	return tx.Commit()
}

// ListPoolWithAreas loads the full advisor pool with each professor's
// approved interest area set. Executed inside the committee generation
// transaction via exec.
func (r *ProfessorRepository) ListPoolWithAreas(ctx context.Context, exec sqlx.ExtContext) ([]models.ProfessorWithAreas, error) {
	const query = `SELECT p.id, p.user_id, u.full_name, u.email, p.available, p.capacity, p.created_at, p.updated_at,
			COALESCE(array_agg(ia.id) FILTER (WHERE ia.id IS NOT NULL), '{}') AS area_ids
		FROM professors p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN professor_interest_areas pia ON pia.professor_id = p.id
		LEFT JOIN interest_areas ia ON ia.id = pia.area_id AND ia.status = 'approved'
		WHERE u.active = TRUE
		GROUP BY p.id, p.user_id, u.full_name, u.email, p.available, p.capacity, p.created_at, p.updated_at
		ORDER BY p.id`

	rows, err := exec.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list advisor pool: %w", err)
	}
	defer rows.Close()

	var pool []models.ProfessorWithAreas
	for rows.Next() {
		var item models.ProfessorWithAreas
		var areaIDs pq.StringArray
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.FullName, &item.Email,
			&item.Available, &item.Capacity, &item.CreatedAt, &item.UpdatedAt,
			&areaIDs,
		); err != nil {
			return nil, fmt.Errorf("scan advisor pool row: %w", err)
		}
		item.AreaIDs = areaIDs
		pool = append(pool, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate advisor pool: %w", err)
	}
	return pool, nil
}
