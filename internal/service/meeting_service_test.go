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

type mockMeetingRepo struct {
	meetings  map[string]models.Meeting
	scheduled []models.Meeting
	created   *models.Meeting
	updated   *models.Meeting
}

func (m *mockMeetingRepo) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = "meeting-new"
	}
	if m.meetings == nil {
		m.meetings = make(map[string]models.Meeting)
	}
	m.meetings[meeting.ID] = *meeting
	m.created = meeting
	return nil
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	if meeting, ok := m.meetings[id]; ok {
		return &meeting, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMeetingRepo) Update(ctx context.Context, meeting *models.Meeting) error {
	m.updated = meeting
	m.meetings[meeting.ID] = *meeting
	return nil
}

func (m *mockMeetingRepo) ListByAdvising(ctx context.Context, advisingID string) ([]models.Meeting, error) {
	var list []models.Meeting
	for _, meeting := range m.meetings {
		if meeting.AdvisingID == advisingID {
			list = append(list, meeting)
		}
	}
	return list, nil
}

func (m *mockMeetingRepo) ListScheduledByAdvisor(ctx context.Context, professorID string) ([]models.Meeting, error) {
	return m.scheduled, nil
}

func newMeetingFixture(t *testing.T) (*MeetingService, *mockMeetingRepo) {
	t.Helper()
	advisings, professors := newAdvisingFixture(models.AdvisingInProgress)
	meetings := &mockMeetingRepo{}
	return NewMeetingService(meetings, advisings, professors, nil, zap.NewNop()), meetings
}

func TestMeetingServiceScheduleRejectsDoubleBooking(t *testing.T) {
	svc, meetings := newMeetingFixture(t)
	tenAM := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	meetings.scheduled = []models.Meeting{
		{ID: "m-1", AdvisingID: "adv-1", StartsAt: tenAM, Status: models.MeetingScheduled},
	}

	_, err := svc.Schedule(context.Background(), "adv-1", "student-user", ScheduleMeetingRequest{StartsAt: tenAM.Add(30 * time.Minute)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, meetings.created)

	// The adjacent slot is free under the half-open interval test.
	created, err := svc.Schedule(context.Background(), "adv-1", "student-user", ScheduleMeetingRequest{StartsAt: tenAM.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingScheduled, created.Status)
}

func TestMeetingServiceScheduleRequiresParty(t *testing.T) {
	svc, _ := newMeetingFixture(t)
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)

	_, err := svc.Schedule(context.Background(), "adv-1", "stranger", ScheduleMeetingRequest{StartsAt: start})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMeetingServiceScheduleRequiresActiveAdvising(t *testing.T) {
	// Paused advisings still meet.
	advisings, professors := newAdvisingFixture(models.AdvisingPaused)
	svc := NewMeetingService(&mockMeetingRepo{}, advisings, professors, nil, zap.NewNop())

	meeting, err := svc.Schedule(context.Background(), "adv-1", "student-user", ScheduleMeetingRequest{StartsAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingScheduled, meeting.Status)

	for _, status := range []models.AdvisingStatus{models.AdvisingFinished, models.AdvisingCancelled, models.AdvisingClosed} {
		advisings, professors = newAdvisingFixture(status)
		svc = NewMeetingService(&mockMeetingRepo{}, advisings, professors, nil, zap.NewNop())

		_, err := svc.Schedule(context.Background(), "adv-1", "student-user", ScheduleMeetingRequest{StartsAt: time.Now().UTC()})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	}
}

func TestMeetingServiceRescheduleExcludesOwnSlot(t *testing.T) {
	svc, meetings := newMeetingFixture(t)
	tenAM := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	meetings.meetings = map[string]models.Meeting{
		"m-1": {ID: "m-1", AdvisingID: "adv-1", StartsAt: tenAM, Status: models.MeetingScheduled},
	}
	meetings.scheduled = []models.Meeting{meetings.meetings["m-1"]}

	// Moving the meeting half an hour forward only collides with itself.
	newStart := tenAM.Add(30 * time.Minute)
	updated, err := svc.Update(context.Background(), "m-1", "advisor-user", UpdateMeetingRequest{StartsAt: &newStart})
	require.NoError(t, err)
	assert.Equal(t, newStart, updated.StartsAt)
}

func TestMeetingServiceAgendaOnlyEditSkipsConflictCheck(t *testing.T) {
	svc, meetings := newMeetingFixture(t)
	tenAM := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	meetings.meetings = map[string]models.Meeting{
		"m-1": {ID: "m-1", AdvisingID: "adv-1", StartsAt: tenAM, Status: models.MeetingScheduled},
		"m-2": {ID: "m-2", AdvisingID: "adv-1", StartsAt: tenAM, Status: models.MeetingScheduled},
	}
	meetings.scheduled = []models.Meeting{meetings.meetings["m-1"], meetings.meetings["m-2"]}

	agenda := "review chapter 3"
	updated, err := svc.Update(context.Background(), "m-1", "student-user", UpdateMeetingRequest{Agenda: &agenda})
	require.NoError(t, err)
	assert.Equal(t, agenda, updated.Agenda)
}

func TestMeetingServiceCancelledMeetingIsFrozen(t *testing.T) {
	svc, meetings := newMeetingFixture(t)
	meetings.meetings = map[string]models.Meeting{
		"m-1": {ID: "m-1", AdvisingID: "adv-1", StartsAt: time.Now().UTC(), Status: models.MeetingCancelled},
	}

	status := "held"
	_, err := svc.Update(context.Background(), "m-1", "student-user", UpdateMeetingRequest{Status: &status})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}
