package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

func newCommitteeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCommitteeRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newCommitteeRepoMock(t)
	defer cleanup()

	repo := NewCommitteeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO committees")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	eval1 := "prof-2"
	committee := &models.Committee{
		AdvisingID: "adv-1",
		Evaluator1: &eval1,
	}
	require.NoError(t, repo.Create(context.Background(), db, committee))
	require.NotEmpty(t, committee.ID)
	require.False(t, committee.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeRepositoryCreateThreadsTransaction(t *testing.T) {
	db, mock, cleanup := newCommitteeRepoMock(t)
	defer cleanup()

	repo := NewCommitteeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO committees")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), tx, &models.Committee{AdvisingID: "adv-1"}))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeRepositoryIsDuplicate(t *testing.T) {
	db, mock, cleanup := newCommitteeRepoMock(t)
	defer cleanup()

	repo := NewCommitteeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO committees")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "committees_advising_id_key"})

	err := repo.Create(context.Background(), db, &models.Committee{AdvisingID: "adv-1"})
	require.Error(t, err)
	require.True(t, repo.IsDuplicate(err))

	require.False(t, repo.IsDuplicate(errors.New("connection reset")))
	require.False(t, repo.IsDuplicate(&pq.Error{Code: "23503"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeRepositoryFindByAdvising(t *testing.T) {
	db, mock, cleanup := newCommitteeRepoMock(t)
	defer cleanup()

	repo := NewCommitteeRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "advising_id", "evaluator1_id", "evaluator2_id", "evaluator3_id", "defense_date", "location", "verdict", "grade", "created_at", "updated_at"}).
		AddRow("committee-1", "adv-1", "prof-2", "prof-3", nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, advising_id, evaluator1_id")).
		WithArgs("adv-1").
		WillReturnRows(rows)

	committee, err := repo.FindByAdvising(context.Background(), "adv-1")
	require.NoError(t, err)
	require.Equal(t, "committee-1", committee.ID)
	require.Equal(t, []string{"prof-2", "prof-3"}, committee.EvaluatorIDs())
	require.Nil(t, committee.DefenseDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newCommitteeRepoMock(t)
	defer cleanup()

	repo := NewCommitteeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE committees SET defense_date")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	verdict := models.VerdictApproved
	grade := models.GradeLetter("A")
	when := time.Now().Add(72 * time.Hour)
	committee := &models.Committee{
		ID:          "committee-1",
		AdvisingID:  "adv-1",
		DefenseDate: &when,
		Verdict:     &verdict,
		Grade:       &grade,
	}
	require.NoError(t, repo.Update(context.Background(), committee))
	require.NoError(t, mock.ExpectationsWereMet())
}
