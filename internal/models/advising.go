package models

import "time"

// AdvisingStatus is the lifecycle status of an advising relationship.
type AdvisingStatus string

const (
	AdvisingInProgress AdvisingStatus = "in_progress"
	AdvisingPaused     AdvisingStatus = "paused"
	AdvisingFinished   AdvisingStatus = "finished"
	AdvisingCancelled  AdvisingStatus = "cancelled"
	AdvisingClosed     AdvisingStatus = "closed"
)

// IsTerminal reports whether no further status mutation is allowed.
func (s AdvisingStatus) IsTerminal() bool {
	return s == AdvisingCancelled || s == AdvisingClosed
}

// Rank orders statuses so active work surfaces first in listings.
func (s AdvisingStatus) Rank() int {
	switch s {
	case AdvisingInProgress:
		return 1
	case AdvisingPaused:
		return 2
	case AdvisingFinished:
		return 3
	case AdvisingClosed:
		return 4
	default:
		return 5
	}
}

// RequestParty identifies who raised a cancellation or finalization request.
type RequestParty string

const (
	RequestNone    RequestParty = "none"
	RequestStudent RequestParty = "student"
	RequestAdvisor RequestParty = "advisor"
)

// Advising links one student, one professor and one thesis idea with a
// lifecycle status. At most one advising exists per idea.
type Advising struct {
	ID                   string         `db:"id" json:"id"`
	IdeaID               string         `db:"idea_id" json:"idea_id"`
	StudentID            string         `db:"student_id" json:"student_id"`
	ProfessorID          string         `db:"professor_id" json:"professor_id"`
	Status               AdvisingStatus `db:"status" json:"status"`
	CancellationRequest  RequestParty   `db:"cancellation_request" json:"cancellation_request"`
	FinalizationRequest  RequestParty   `db:"finalization_request" json:"finalization_request"`
	StartDate            time.Time      `db:"start_date" json:"start_date"`
	EndDate              *time.Time     `db:"end_date" json:"end_date,omitempty"`
	Notes                *string        `db:"notes" json:"notes,omitempty"`
	ProjectURL           *string        `db:"project_url" json:"project_url,omitempty"`
	ArticleURL           *string        `db:"article_url" json:"article_url,omitempty"`
	CancellationFeedback *string        `db:"cancellation_feedback" json:"cancellation_feedback,omitempty"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// IsParty reports whether the given user is the student or the advisor's
// user on this advising. The advisor side is matched by the professor's
// user id, which callers resolve before invoking.
func (a Advising) IsParty(userID, advisorUserID string) bool {
	return userID == a.StudentID || (advisorUserID != "" && userID == advisorUserID)
}

// EligibleAdvising is a finished advising that has no committee yet,
// joined with the data the committee engine needs: the advisor to exclude
// and the idea's interest area tag set.
type EligibleAdvising struct {
	AdvisingID  string   `db:"advising_id"`
	ProfessorID string   `db:"professor_id"`
	IdeaID      string   `db:"idea_id"`
	IdeaAreaIDs []string `db:"-"`
}
