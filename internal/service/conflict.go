package service

import (
	"time"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
)

// HasMeetingConflict decides whether a candidate meeting slot overlaps any
// of the advisor's existing scheduled meetings. The candidate occupies the
// half-open interval [start, start+1h); overlap uses the standard test
// existing.start < candidate.end && existing.end > candidate.start.
// excludeMeetingID removes a meeting's own prior slot from the comparison
// set when rescheduling; exclusion is by identity, not by time match.
// Pure decision function, no side effects.
func HasMeetingConflict(candidateStart time.Time, existing []models.Meeting, excludeMeetingID string) bool {
	candidateEnd := candidateStart.Add(models.MeetingDuration)
	for _, meeting := range existing {
		if meeting.ID == excludeMeetingID {
			continue
		}
		if meeting.Status != models.MeetingScheduled {
			continue
		}
		if meeting.StartsAt.Before(candidateEnd) && meeting.End().After(candidateStart) {
			return true
		}
	}
	return false
}
