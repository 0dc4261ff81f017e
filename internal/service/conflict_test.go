package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

func TestHasMeetingConflict(t *testing.T) {
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	existing := []models.Meeting{
		{ID: "m-1", StartsAt: day.Add(10 * time.Hour), Status: models.MeetingScheduled},
	}

	tests := []struct {
		name      string
		candidate time.Time
		exclude   string
		want      bool
	}{
		{name: "overlapping slot rejected", candidate: day.Add(10*time.Hour + 30*time.Minute), want: true},
		{name: "back to back slot accepted", candidate: day.Add(11 * time.Hour), want: false},
		{name: "earlier free slot accepted", candidate: day.Add(9 * time.Hour), want: false},
		{name: "exact same slot rejected", candidate: day.Add(10 * time.Hour), want: true},
		{name: "candidate ending at start accepted", candidate: day.Add(9 * time.Hour), want: false},
		{name: "self excluded when rescheduling", candidate: day.Add(10 * time.Hour), exclude: "m-1", want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasMeetingConflict(tc.candidate, existing, tc.exclude))
		})
	}
}

func TestHasMeetingConflictIgnoresNonScheduled(t *testing.T) {
	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	existing := []models.Meeting{
		{ID: "m-held", StartsAt: start, Status: models.MeetingHeld},
		{ID: "m-cancelled", StartsAt: start, Status: models.MeetingCancelled},
	}
	assert.False(t, HasMeetingConflict(start, existing, ""))
}
