package models

import "time"

// MeetingStatus is the lifecycle status of an advising meeting.
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingHeld      MeetingStatus = "held"
	MeetingCancelled MeetingStatus = "cancelled"
)

// MeetingDuration is the fixed length of every advising meeting slot.
const MeetingDuration = time.Hour

// Meeting belongs to an advising relationship. The occupied interval is
// [StartsAt, StartsAt+MeetingDuration).
type Meeting struct {
	ID         string        `db:"id" json:"id"`
	AdvisingID string        `db:"advising_id" json:"advising_id"`
	StartsAt   time.Time     `db:"starts_at" json:"starts_at"`
	Agenda     string        `db:"agenda" json:"agenda"`
	Status     MeetingStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the meeting's interval.
func (m Meeting) End() time.Time {
	return m.StartsAt.Add(MeetingDuration)
}
