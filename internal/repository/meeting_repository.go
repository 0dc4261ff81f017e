package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

const meetingColumns = `id, advising_id, starts_at, agenda, status, created_at, updated_at`

// MeetingRepository manages persistence for advising meetings.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository constructs a MeetingRepository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a new meeting record.
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = now
	}
	meeting.UpdatedAt = now

	const query = `INSERT INTO meetings (id, advising_id, starts_at, agenda, status, created_at, updated_at)
		VALUES (:id, :advising_id, :starts_at, :agenda, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, meeting); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	return nil
}

// FindByID fetches a meeting by ID.
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings WHERE id = $1`, meetingColumns)
	var meeting models.Meeting
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// Update persists the mutable fields of a meeting.
func (r *MeetingRepository) Update(ctx context.Context, meeting *models.Meeting) error {
	meeting.UpdatedAt = time.Now().UTC()
	const query = `UPDATE meetings SET starts_at = :starts_at, agenda = :agenda, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, meeting); err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	return nil
}

// ListByAdvising returns every meeting for an advising, upcoming first.
func (r *MeetingRepository) ListByAdvising(ctx context.Context, advisingID string) ([]models.Meeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings WHERE advising_id = $1 ORDER BY starts_at DESC`, meetingColumns)
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, advisingID); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// ListScheduledByAdvisor returns the advisor's scheduled meetings across
// all of their advisings. This is the comparison set for conflict checks.
func (r *MeetingRepository) ListScheduledByAdvisor(ctx context.Context, professorID string) ([]models.Meeting, error) {
	const query = `SELECT m.id, m.advising_id, m.starts_at, m.agenda, m.status, m.created_at, m.updated_at
		FROM meetings m
		JOIN advisings a ON a.id = m.advising_id
		WHERE a.professor_id = $1 AND m.status = 'scheduled'
		ORDER BY m.starts_at ASC`
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, professorID); err != nil {
		return nil, fmt.Errorf("list advisor meetings: %w", err)
	}
	return meetings, nil
}
