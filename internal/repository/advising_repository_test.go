package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

func newAdvisingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func advisingRow(id string, status models.AdvisingStatus, start time.Time) []driver.Value {
	now := time.Now()
	return []driver.Value{id, "idea-1", "student-1", "prof-1", string(status), "none", "none", start, nil, nil, nil, nil, nil, now, now}
}

func TestAdvisingRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newAdvisingRepoMock(t)
	defer cleanup()

	repo := NewAdvisingRepository(db)
	cols := []string{"id", "idea_id", "student_id", "professor_id", "status", "cancellation_request", "finalization_request", "start_date", "end_date", "notes", "project_url", "article_url", "cancellation_feedback", "created_at", "updated_at"}
	rows := sqlmock.NewRows(cols).
		AddRow(advisingRow("adv-1", models.AdvisingInProgress, time.Now())...).
		AddRow(advisingRow("adv-2", models.AdvisingClosed, time.Now().Add(-time.Hour))...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM advisings a")).
		WithArgs("user-1").
		WillReturnRows(rows)

	advisings, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, advisings, 2)
	require.Equal(t, "adv-1", advisings[0].ID)
	require.Equal(t, models.AdvisingClosed, advisings[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisingRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newAdvisingRepoMock(t)
	defer cleanup()

	repo := NewAdvisingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE advisings SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	advising := &models.Advising{
		ID:     "adv-1",
		Status: models.AdvisingFinished,
	}
	require.NoError(t, repo.Update(context.Background(), advising))
	require.False(t, advising.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisingRepositoryListFinishedWithoutCommittee(t *testing.T) {
	db, mock, cleanup := newAdvisingRepoMock(t)
	defer cleanup()

	repo := NewAdvisingRepository(db)
	rows := sqlmock.NewRows([]string{"advising_id", "professor_id", "idea_id", "area_ids"}).
		AddRow("adv-1", "prof-1", "idea-1", "{area-1,area-2}").
		AddRow("adv-2", "prof-3", "idea-2", "{}")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN committees c ON c.advising_id = a.id")).
		WillReturnRows(rows)

	eligible, err := repo.ListFinishedWithoutCommittee(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	require.Equal(t, "adv-1", eligible[0].AdvisingID)
	require.Equal(t, []string{"area-1", "area-2"}, eligible[0].IdeaAreaIDs)
	require.Equal(t, "prof-3", eligible[1].ProfessorID)
	require.Empty(t, eligible[1].IdeaAreaIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisingRepositoryListFinishedWithoutCommitteeRunsInTx(t *testing.T) {
	db, mock, cleanup := newAdvisingRepoMock(t)
	defer cleanup()

	repo := NewAdvisingRepository(db)
	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"advising_id", "professor_id", "idea_id", "area_ids"}).
		AddRow("adv-1", "prof-1", "idea-1", "{area-1}")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.status = 'finished' AND c.id IS NULL")).
		WillReturnRows(rows)
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	eligible, err := repo.ListFinishedWithoutCommittee(context.Background(), tx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
