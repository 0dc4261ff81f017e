package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nikolasrailan/tcc-match-sub000/internal/middleware"
	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
)

type stubAdvisingRepo struct {
	advising *models.Advising
	updated  *models.Advising
}

func (s *stubAdvisingRepo) FindByID(_ context.Context, id string) (*models.Advising, error) {
	if s.advising == nil || s.advising.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.advising
	return &copied, nil
}

func (s *stubAdvisingRepo) ListByUser(context.Context, string) ([]models.Advising, error) {
	return nil, nil
}

func (s *stubAdvisingRepo) Update(_ context.Context, advising *models.Advising) error {
	s.updated = advising
	s.advising = advising
	return nil
}

type stubAdvisorResolver struct {
	professor *models.Professor
}

func (s *stubAdvisorResolver) FindByID(context.Context, string) (*models.Professor, error) {
	return s.professor, nil
}

func withClaims(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, claims)
		c.Next()
	}
}

// The status route carries no role guard: the service authorizes by
// party membership, so a student party must reach the handler.
func TestAdvisingHandlerUpdateAllowsStudentParty(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := &stubAdvisingRepo{advising: &models.Advising{
		ID:                  "adv-1",
		IdeaID:              "idea-1",
		StudentID:           "student-user",
		ProfessorID:         "prof-1",
		Status:              models.AdvisingInProgress,
		CancellationRequest: models.RequestNone,
		FinalizationRequest: models.RequestNone,
		StartDate:           time.Now().UTC(),
	}}
	resolver := &stubAdvisorResolver{professor: &models.Professor{ID: "prof-1", UserID: "advisor-user"}}
	handler := NewAdvisingHandler(service.NewAdvisingService(repo, resolver, nil, nil))

	student := &models.JWTClaims{UserID: "student-user", Role: models.RoleStudent}
	r := gin.New()
	r.PATCH("/advisings/:id", withClaims(student), handler.Update)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/advisings/adv-1", strings.NewReader(`{"status":"paused"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", recorder.Code, recorder.Body.String())
	}
	if repo.updated == nil {
		t.Fatalf("expected the update to be persisted")
	}
	if repo.updated.Status != models.AdvisingPaused {
		t.Fatalf("unexpected advising status: %s", repo.updated.Status)
	}
}

func TestAdvisingHandlerUpdateRejectsOutsider(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := &stubAdvisingRepo{advising: &models.Advising{
		ID:          "adv-1",
		StudentID:   "student-user",
		ProfessorID: "prof-1",
		Status:      models.AdvisingInProgress,
		StartDate:   time.Now().UTC(),
	}}
	resolver := &stubAdvisorResolver{professor: &models.Professor{ID: "prof-1", UserID: "advisor-user"}}
	handler := NewAdvisingHandler(service.NewAdvisingService(repo, resolver, nil, nil))

	outsider := &models.JWTClaims{UserID: "someone-else", Role: models.RoleStudent}
	r := gin.New()
	r.PATCH("/advisings/:id", withClaims(outsider), handler.Update)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/advisings/adv-1", strings.NewReader(`{"status":"paused"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if repo.updated != nil {
		t.Fatalf("outsider update must not be persisted")
	}
}
