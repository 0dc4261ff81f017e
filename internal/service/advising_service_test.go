package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
)

type mockAdvisingRepo struct {
	advisings map[string]models.Advising
	updated   *models.Advising
}

func (m *mockAdvisingRepo) FindByID(ctx context.Context, id string) (*models.Advising, error) {
	if a, ok := m.advisings[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdvisingRepo) ListByUser(ctx context.Context, userID string) ([]models.Advising, error) {
	var list []models.Advising
	for _, a := range m.advisings {
		if a.StudentID == userID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockAdvisingRepo) Update(ctx context.Context, advising *models.Advising) error {
	m.updated = advising
	m.advisings[advising.ID] = *advising
	return nil
}

type mockProfessorResolver struct {
	professors map[string]*models.Professor
}

func (m *mockProfessorResolver) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	if p, ok := m.professors[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func newAdvisingFixture(status models.AdvisingStatus) (*mockAdvisingRepo, *mockProfessorResolver) {
	repo := &mockAdvisingRepo{advisings: map[string]models.Advising{
		"adv-1": {
			ID:                  "adv-1",
			IdeaID:              "idea-1",
			StudentID:           "student-user",
			ProfessorID:         "prof-1",
			Status:              status,
			CancellationRequest: models.RequestNone,
			FinalizationRequest: models.RequestNone,
			StartDate:           time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	professors := &mockProfessorResolver{professors: map[string]*models.Professor{
		"prof-1": {ID: "prof-1", UserID: "advisor-user", FullName: "Dr. Advisor"},
	}}
	return repo, professors
}

func TestAdvisingServiceUpdateStatusRejectsOutsiders(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingInProgress)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	status := "paused"
	_, err := svc.UpdateStatus(context.Background(), "adv-1", "someone-else", UpdateAdvisingRequest{Status: &status})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}

func TestAdvisingServiceFinishStampsEndDate(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingInProgress)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	status := "finished"
	url := "https://git.example.edu/thesis"
	updated, err := svc.UpdateStatus(context.Background(), "adv-1", "advisor-user", UpdateAdvisingRequest{Status: &status, ProjectURL: &url})
	require.NoError(t, err)

	assert.Equal(t, models.AdvisingFinished, updated.Status)
	require.NotNil(t, updated.EndDate)
	require.NotNil(t, updated.ProjectURL)
	assert.Equal(t, url, *updated.ProjectURL)
	assert.Equal(t, models.RequestNone, updated.FinalizationRequest)
}

func TestAdvisingServiceUpdateStatusRejectsTerminal(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingClosed)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	status := "in_progress"
	_, err := svc.UpdateStatus(context.Background(), "adv-1", "student-user", UpdateAdvisingRequest{Status: &status})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}

func TestAdvisingServiceRequestCancellationStudentOnly(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingInProgress)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	_, err := svc.RequestCancellation(context.Background(), "adv-1", "advisor-user")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	updated, err := svc.RequestCancellation(context.Background(), "adv-1", "student-user")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStudent, updated.CancellationRequest)
	assert.Equal(t, models.AdvisingInProgress, updated.Status)

	// A second request while one is pending is rejected.
	_, err = svc.RequestCancellation(context.Background(), "adv-1", "student-user")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAdvisingServiceConfirmCancellationRequiresPendingRequest(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingInProgress)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	_, err := svc.ConfirmCancellation(context.Background(), "adv-1", "advisor-user", CancellationRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	// The record must be untouched by the rejected confirmation.
	stored := repo.advisings["adv-1"]
	assert.Equal(t, models.AdvisingInProgress, stored.Status)
	assert.Equal(t, models.RequestNone, stored.CancellationRequest)
	assert.Nil(t, stored.EndDate)
	assert.Nil(t, repo.updated)
}

func TestAdvisingServiceCancellationHandshake(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingInProgress)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	_, err := svc.RequestCancellation(context.Background(), "adv-1", "student-user")
	require.NoError(t, err)

	feedback := "student moved to another program"
	updated, err := svc.ConfirmCancellation(context.Background(), "adv-1", "advisor-user", CancellationRequest{Feedback: &feedback})
	require.NoError(t, err)

	assert.Equal(t, models.AdvisingClosed, updated.Status)
	require.NotNil(t, updated.EndDate)
	require.NotNil(t, updated.CancellationFeedback)
	assert.Equal(t, feedback, *updated.CancellationFeedback)
	assert.Equal(t, models.RequestNone, updated.CancellationRequest)
}

func TestAdvisingServiceCancelDirectStampsAdvisorMarker(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingPaused)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	_, err := svc.CancelDirect(context.Background(), "adv-1", "student-user", CancellationRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	updated, err := svc.CancelDirect(context.Background(), "adv-1", "advisor-user", CancellationRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.AdvisingClosed, updated.Status)
	assert.Equal(t, models.RequestAdvisor, updated.CancellationRequest)
	require.NotNil(t, updated.EndDate)
}

func TestAdvisingServiceCancellationBlockedOnceFinished(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingFinished)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	_, err := svc.RequestCancellation(context.Background(), "adv-1", "student-user")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	_, err = svc.CancelDirect(context.Background(), "adv-1", "advisor-user", CancellationRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestAdvisingServiceRequestFinalization(t *testing.T) {
	repo, professors := newAdvisingFixture(models.AdvisingInProgress)
	svc := NewAdvisingService(repo, professors, nil, zap.NewNop())

	_, err := svc.RequestFinalization(context.Background(), "adv-1", "advisor-user")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	updated, err := svc.RequestFinalization(context.Background(), "adv-1", "student-user")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStudent, updated.FinalizationRequest)

	_, err = svc.RequestFinalization(context.Background(), "adv-1", "student-user")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
