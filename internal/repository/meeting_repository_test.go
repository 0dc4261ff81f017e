package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

func newMeetingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMeetingRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newMeetingRepoMock(t)
	defer cleanup()

	repo := NewMeetingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO meetings")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	meeting := &models.Meeting{
		AdvisingID: "adv-1",
		StartsAt:   time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		Agenda:     "chapter review",
		Status:     models.MeetingScheduled,
	}
	require.NoError(t, repo.Create(context.Background(), meeting))
	require.NotEmpty(t, meeting.ID)

	rows := sqlmock.NewRows([]string{"id", "advising_id", "starts_at", "agenda", "status", "created_at", "updated_at"}).
		AddRow(meeting.ID, meeting.AdvisingID, meeting.StartsAt, meeting.Agenda, string(meeting.Status), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, advising_id, starts_at")).
		WithArgs(meeting.ID).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.Equal(t, meeting.StartsAt, found.StartsAt.UTC())
	require.Equal(t, models.MeetingScheduled, found.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryListScheduledByAdvisor(t *testing.T) {
	db, mock, cleanup := newMeetingRepoMock(t)
	defer cleanup()

	repo := NewMeetingRepository(db)
	rows := sqlmock.NewRows([]string{"id", "advising_id", "starts_at", "agenda", "status", "created_at", "updated_at"}).
		AddRow("meeting-1", "adv-1", time.Now().Add(time.Hour), "", "scheduled", time.Now(), time.Now()).
		AddRow("meeting-2", "adv-2", time.Now().Add(2*time.Hour), "", "scheduled", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("JOIN advisings a ON a.id = m.advising_id")).
		WithArgs("prof-1").
		WillReturnRows(rows)

	meetings, err := repo.ListScheduledByAdvisor(context.Background(), "prof-1")
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	require.Equal(t, "adv-2", meetings[1].AdvisingID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMeetingRepoMock(t)
	defer cleanup()

	repo := NewMeetingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE meetings SET starts_at")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	meeting := &models.Meeting{
		ID:         "meeting-1",
		AdvisingID: "adv-1",
		StartsAt:   time.Now().Add(3 * time.Hour),
		Status:     models.MeetingHeld,
	}
	require.NoError(t, repo.Update(context.Background(), meeting))
	require.NoError(t, mock.ExpectationsWereMet())
}
