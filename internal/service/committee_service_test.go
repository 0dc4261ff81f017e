package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikolasrailan/tcc-match-sub000/internal/dto"
	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

var errDuplicateCommittee = errors.New("duplicate key value violates unique constraint")

type mockEligibilityReader struct {
	items []models.EligibleAdvising
	err   error
}

func (m *mockEligibilityReader) ListFinishedWithoutCommittee(ctx context.Context, exec sqlx.ExtContext) ([]models.EligibleAdvising, error) {
	return m.items, m.err
}

type mockPoolReader struct {
	pool []models.ProfessorWithAreas
	err  error
}

func (m *mockPoolReader) ListPoolWithAreas(ctx context.Context, exec sqlx.ExtContext) ([]models.ProfessorWithAreas, error) {
	return m.pool, m.err
}

type mockCommitteeRepo struct {
	created    []models.Committee
	failOn     map[string]error
	committees map[string]models.Committee
	updated    *models.Committee
}

func (m *mockCommitteeRepo) Create(ctx context.Context, exec sqlx.ExtContext, committee *models.Committee) error {
	if err, ok := m.failOn[committee.AdvisingID]; ok {
		return err
	}
	if committee.ID == "" {
		committee.ID = fmt.Sprintf("committee-%d", len(m.created)+1)
	}
	m.created = append(m.created, *committee)
	return nil
}

func (m *mockCommitteeRepo) FindByID(ctx context.Context, id string) (*models.Committee, error) {
	if c, ok := m.committees[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCommitteeRepo) FindByAdvising(ctx context.Context, advisingID string) (*models.Committee, error) {
	for _, c := range m.committees {
		if c.AdvisingID == advisingID {
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCommitteeRepo) List(ctx context.Context) ([]models.Committee, error) {
	var list []models.Committee
	for _, c := range m.committees {
		list = append(list, c)
	}
	return list, nil
}

func (m *mockCommitteeRepo) Update(ctx context.Context, committee *models.Committee) error {
	m.updated = committee
	if m.committees == nil {
		m.committees = make(map[string]models.Committee)
	}
	m.committees[committee.ID] = *committee
	return nil
}

func (m *mockCommitteeRepo) IsDuplicate(err error) bool {
	return errors.Is(err, errDuplicateCommittee)
}

type generationTxProvider struct {
	db *sqlx.DB
}

func newGenerationTxProvider(t *testing.T) (*generationTxProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &generationTxProvider{db: sqlxdb}, mock
}

func (p *generationTxProvider) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return p.db.BeginTxx(ctx, opts)
}

func expectSavepoint(mock sqlmock.Sqlmock, seq int) {
	mock.ExpectExec(fmt.Sprintf("^SAVEPOINT sp_item_%d$", seq)).WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectReleaseSavepoint(mock sqlmock.Sqlmock, seq int) {
	mock.ExpectExec(fmt.Sprintf("^RELEASE SAVEPOINT sp_item_%d$", seq)).WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectRollbackToSavepoint(mock sqlmock.Sqlmock, seq int) {
	mock.ExpectExec(fmt.Sprintf("^ROLLBACK TO SAVEPOINT sp_item_%d$", seq)).WillReturnResult(sqlmock.NewResult(0, 0))
}

// identityShuffle keeps candidates in query order so assertions are exact.
func identityShuffle(n int, swap func(i, j int)) {}

// reverseShuffle reverses candidate order to prove selection follows the draw.
func reverseShuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

func professorWithAreas(id string, areaIDs ...string) models.ProfessorWithAreas {
	return models.ProfessorWithAreas{
		Professor: models.Professor{ID: id, UserID: "user-" + id, Available: true, Capacity: 5},
		AreaIDs:   areaIDs,
	}
}

func TestCommitteeServiceGenerateAssignsCompatibleEvaluators(t *testing.T) {
	tx, mock := newGenerationTxProvider(t)
	mock.ExpectBegin()
	expectSavepoint(mock, 1)
	expectReleaseSavepoint(mock, 1)
	mock.ExpectCommit()

	eligible := &mockEligibilityReader{items: []models.EligibleAdvising{
		{AdvisingID: "adv-1", ProfessorID: "prof-own", IdeaID: "idea-1", IdeaAreaIDs: []string{"area-a"}},
	}}
	pool := &mockPoolReader{pool: []models.ProfessorWithAreas{
		professorWithAreas("prof-own", "area-a"),
		professorWithAreas("prof-1", "area-a"),
		professorWithAreas("prof-2", "area-a", "area-b"),
		professorWithAreas("prof-3", "area-b"),
		professorWithAreas("prof-4", "area-a"),
	}}
	repo := &mockCommitteeRepo{}

	svc := NewCommitteeService(tx, eligible, pool, repo, nil, zap.NewNop()).WithShuffle(identityShuffle)
	resp, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.EligibleCount)
	assert.Equal(t, 1, resp.CreatedCount)
	assert.Empty(t, resp.Warnings)
	require.Len(t, repo.created, 1)

	committee := repo.created[0]
	assert.Equal(t, "adv-1", committee.AdvisingID)
	evaluators := committee.EvaluatorIDs()
	assert.Equal(t, []string{"prof-1", "prof-2", "prof-4"}, evaluators)
	for _, evaluator := range evaluators {
		assert.NotEqual(t, "prof-own", evaluator)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeServiceGenerateHonoursShuffleOrder(t *testing.T) {
	tx, mock := newGenerationTxProvider(t)
	mock.ExpectBegin()
	expectSavepoint(mock, 1)
	expectReleaseSavepoint(mock, 1)
	mock.ExpectCommit()

	eligible := &mockEligibilityReader{items: []models.EligibleAdvising{
		{AdvisingID: "adv-1", ProfessorID: "prof-own", IdeaAreaIDs: []string{"area-a"}},
	}}
	pool := &mockPoolReader{pool: []models.ProfessorWithAreas{
		professorWithAreas("prof-1", "area-a"),
		professorWithAreas("prof-2", "area-a"),
		professorWithAreas("prof-3", "area-a"),
		professorWithAreas("prof-4", "area-a"),
	}}
	repo := &mockCommitteeRepo{}

	svc := NewCommitteeService(tx, eligible, pool, repo, nil, zap.NewNop()).WithShuffle(reverseShuffle)
	_, err := svc.Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, []string{"prof-4", "prof-3", "prof-2"}, repo.created[0].EvaluatorIDs())
}

func TestCommitteeServiceGenerateDegradedPool(t *testing.T) {
	tx, mock := newGenerationTxProvider(t)
	mock.ExpectBegin()
	expectSavepoint(mock, 1)
	expectReleaseSavepoint(mock, 1)
	expectSavepoint(mock, 2)
	expectReleaseSavepoint(mock, 2)
	mock.ExpectCommit()

	eligible := &mockEligibilityReader{items: []models.EligibleAdvising{
		{AdvisingID: "adv-short", ProfessorID: "prof-own", IdeaAreaIDs: []string{"area-a"}},
		{AdvisingID: "adv-empty", ProfessorID: "prof-own", IdeaAreaIDs: []string{"area-z"}},
	}}
	pool := &mockPoolReader{pool: []models.ProfessorWithAreas{
		professorWithAreas("prof-own", "area-a"),
		professorWithAreas("prof-1", "area-a"),
		professorWithAreas("prof-2", "area-a"),
	}}
	repo := &mockCommitteeRepo{}

	svc := NewCommitteeService(tx, eligible, pool, repo, nil, zap.NewNop()).WithShuffle(identityShuffle)
	resp, err := svc.Generate(context.Background())
	require.NoError(t, err)

	// Both committees are created even though neither fills all seats.
	assert.Equal(t, 2, resp.CreatedCount)
	require.Len(t, repo.created, 2)
	assert.Len(t, repo.created[0].EvaluatorIDs(), 2)
	assert.Empty(t, repo.created[1].EvaluatorIDs())
	assert.Len(t, resp.Warnings, 2)
	assert.Contains(t, resp.Warnings[0], "only 2 of 3 evaluators")
	assert.Contains(t, resp.Warnings[1], "only 0 of 3 evaluators")

	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, dto.OutcomeCreated, resp.Outcomes[0].Status)
	assert.Equal(t, 2, resp.Outcomes[0].SeatsFilled)
	assert.Equal(t, 0, resp.Outcomes[1].SeatsFilled)
}

func TestCommitteeServiceGenerateBatchIsolation(t *testing.T) {
	tx, mock := newGenerationTxProvider(t)
	mock.ExpectBegin()
	expectSavepoint(mock, 1)
	expectReleaseSavepoint(mock, 1)
	expectSavepoint(mock, 2)
	// The duplicate insert aborts the enclosing transaction on Postgres;
	// only rolling back to the item's savepoint keeps the batch alive.
	expectRollbackToSavepoint(mock, 2)
	expectSavepoint(mock, 3)
	expectReleaseSavepoint(mock, 3)
	mock.ExpectCommit()

	eligible := &mockEligibilityReader{items: []models.EligibleAdvising{
		{AdvisingID: "adv-1", ProfessorID: "prof-own", IdeaAreaIDs: []string{"area-a"}},
		{AdvisingID: "adv-2", ProfessorID: "prof-own", IdeaAreaIDs: []string{"area-a"}},
		{AdvisingID: "adv-3", ProfessorID: "prof-own", IdeaAreaIDs: []string{"area-a"}},
	}}
	pool := &mockPoolReader{pool: []models.ProfessorWithAreas{
		professorWithAreas("prof-1", "area-a"),
		professorWithAreas("prof-2", "area-a"),
		professorWithAreas("prof-3", "area-a"),
	}}
	repo := &mockCommitteeRepo{failOn: map[string]error{"adv-2": errDuplicateCommittee}}

	svc := NewCommitteeService(tx, eligible, pool, repo, nil, zap.NewNop()).WithShuffle(identityShuffle)
	resp, err := svc.Generate(context.Background())
	require.NoError(t, err)

	// The duplicate on adv-2 must not block the other two.
	assert.Equal(t, 2, resp.CreatedCount)
	assert.Len(t, resp.CreatedIDs, 2)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "adv-2")
	assert.Contains(t, resp.Warnings[0], "already has a committee")

	require.Len(t, resp.Outcomes, 3)
	assert.Equal(t, dto.OutcomeCreated, resp.Outcomes[0].Status)
	assert.Equal(t, dto.OutcomeSkipped, resp.Outcomes[1].Status)
	assert.Equal(t, dto.OutcomeCreated, resp.Outcomes[2].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeServiceGenerateWriteFailureIsWarning(t *testing.T) {
	tx, mock := newGenerationTxProvider(t)
	mock.ExpectBegin()
	expectSavepoint(mock, 1)
	expectRollbackToSavepoint(mock, 1)
	expectSavepoint(mock, 2)
	expectReleaseSavepoint(mock, 2)
	mock.ExpectCommit()

	eligible := &mockEligibilityReader{items: []models.EligibleAdvising{
		{AdvisingID: "adv-1", ProfessorID: "prof-own", IdeaAreaIDs: []string{"area-a"}},
		{AdvisingID: "adv-2", ProfessorID: "prof-own", IdeaAreaIDs: []string{"area-a"}},
	}}
	pool := &mockPoolReader{pool: []models.ProfessorWithAreas{professorWithAreas("prof-1", "area-a")}}
	repo := &mockCommitteeRepo{failOn: map[string]error{"adv-1": errors.New("connection reset")}}

	svc := NewCommitteeService(tx, eligible, pool, repo, nil, zap.NewNop()).WithShuffle(identityShuffle)
	resp, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.CreatedCount)
	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, dto.OutcomeFailed, resp.Outcomes[0].Status)
	assert.Equal(t, dto.OutcomeCreated, resp.Outcomes[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeServiceGenerateNoEligibleIsNoOp(t *testing.T) {
	tx, mock := newGenerationTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	eligible := &mockEligibilityReader{}
	pool := &mockPoolReader{}
	repo := &mockCommitteeRepo{}

	svc := NewCommitteeService(tx, eligible, pool, repo, nil, zap.NewNop())
	resp, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.EligibleCount)
	assert.Equal(t, 0, resp.CreatedCount)
	assert.Empty(t, resp.CreatedIDs)
	assert.Empty(t, resp.Warnings)
	assert.Empty(t, repo.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeServiceUpdateValidatesVerdictAndGrade(t *testing.T) {
	tx, _ := newGenerationTxProvider(t)
	repo := &mockCommitteeRepo{committees: map[string]models.Committee{
		"committee-1": {ID: "committee-1", AdvisingID: "adv-1"},
	}}
	svc := NewCommitteeService(tx, &mockEligibilityReader{}, &mockPoolReader{}, repo, nil, zap.NewNop())

	badVerdict := "maybe"
	_, err := svc.Update(context.Background(), "committee-1", dto.UpdateCommitteeRequest{Verdict: &badVerdict})
	require.Error(t, err)

	badGrade := "F"
	_, err = svc.Update(context.Background(), "committee-1", dto.UpdateCommitteeRequest{Grade: &badGrade})
	require.Error(t, err)

	verdict := "approved"
	grade := "A"
	location := "Room 101"
	defenseDate := "2026-10-15T14:00:00Z"
	updated, err := svc.Update(context.Background(), "committee-1", dto.UpdateCommitteeRequest{
		DefenseDate: &defenseDate,
		Location:    &location,
		Verdict:     &verdict,
		Grade:       &grade,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DefenseDate)
	assert.Equal(t, models.VerdictApproved, *updated.Verdict)
	assert.Equal(t, models.GradeLetter("A"), *updated.Grade)
	assert.Equal(t, "Room 101", *updated.Location)
}
