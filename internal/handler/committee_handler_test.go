package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
)

type stubEligibilityReader struct {
	items []models.EligibleAdvising
}

func (s stubEligibilityReader) ListFinishedWithoutCommittee(context.Context, sqlx.ExtContext) ([]models.EligibleAdvising, error) {
	return s.items, nil
}

type stubPoolReader struct {
	pool []models.ProfessorWithAreas
}

func (s stubPoolReader) ListPoolWithAreas(context.Context, sqlx.ExtContext) ([]models.ProfessorWithAreas, error) {
	return s.pool, nil
}

type stubCommitteeRepo struct {
	created int
}

func (s *stubCommitteeRepo) Create(_ context.Context, _ sqlx.ExtContext, committee *models.Committee) error {
	s.created++
	committee.ID = "committee-1"
	return nil
}

func (s *stubCommitteeRepo) FindByID(context.Context, string) (*models.Committee, error) {
	return nil, nil
}

func (s *stubCommitteeRepo) FindByAdvising(context.Context, string) (*models.Committee, error) {
	return nil, nil
}

func (s *stubCommitteeRepo) List(context.Context) ([]models.Committee, error) {
	return nil, nil
}

func (s *stubCommitteeRepo) Update(context.Context, *models.Committee) error {
	return nil
}

func (s *stubCommitteeRepo) IsDuplicate(error) bool { return false }

func newGenerationHandler(t *testing.T, eligible []models.EligibleAdvising) *CommitteeHandler {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.ExpectBegin()
	if len(eligible) > 0 {
		for i := range eligible {
			mock.ExpectExec(fmt.Sprintf("^SAVEPOINT sp_item_%d$", i+1)).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(fmt.Sprintf("^RELEASE SAVEPOINT sp_item_%d$", i+1)).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}

	pool := []models.ProfessorWithAreas{
		{Professor: models.Professor{ID: "prof-2"}, AreaIDs: []string{"area-1"}},
		{Professor: models.Professor{ID: "prof-3"}, AreaIDs: []string{"area-1"}},
		{Professor: models.Professor{ID: "prof-4"}, AreaIDs: []string{"area-1"}},
	}

	svc := service.NewCommitteeService(
		sqlx.NewDb(db, "sqlmock"),
		stubEligibilityReader{items: eligible},
		stubPoolReader{pool: pool},
		&stubCommitteeRepo{},
		nil, nil,
	)
	return NewCommitteeHandler(svc, service.NewMetricsService())
}

func TestCommitteeHandlerGenerateCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newGenerationHandler(t, []models.EligibleAdvising{
		{AdvisingID: "adv-1", ProfessorID: "prof-1", IdeaID: "idea-1", IdeaAreaIDs: []string{"area-1"}},
	})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/committees/generate", nil)

	handler.Generate(c)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}

	var body struct {
		Data struct {
			CreatedCount int `json:"created_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.CreatedCount != 1 {
		t.Fatalf("expected one committee, got %d", body.Data.CreatedCount)
	}
}

func TestCommitteeHandlerGenerateNothingEligible(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newGenerationHandler(t, nil)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/committees/generate", nil)

	handler.Generate(c)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}

	var body struct {
		Meta map[string]string `json:"meta"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Meta["message"] != "no eligible advisings" {
		t.Fatalf("expected informational meta, got %v", body.Meta)
	}
}
