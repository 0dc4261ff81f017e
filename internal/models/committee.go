package models

import "time"

// Verdict is the committee's approval decision after a defense.
type Verdict string

const (
	VerdictApproved         Verdict = "approved"
	VerdictWithReservations Verdict = "approved_with_reservations"
	VerdictRejected         Verdict = "rejected"
)

// Valid reports whether the verdict is one of the known values.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictApproved, VerdictWithReservations, VerdictRejected:
		return true
	}
	return false
}

// GradeLetter is the final letter grade assigned by the committee.
type GradeLetter string

// Valid reports whether the grade is one of A, B, C or D.
func (g GradeLetter) Valid() bool {
	switch g {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// Committee is the group of up to three evaluators assigned to judge a
// finished thesis. Exactly one committee exists per advising, enforced by
// a unique constraint on advising_id. Evaluator slots are filled
// best-effort and may be null.
type Committee struct {
	ID          string       `db:"id" json:"id"`
	AdvisingID  string       `db:"advising_id" json:"advising_id"`
	Evaluator1  *string      `db:"evaluator1_id" json:"evaluator1_id,omitempty"`
	Evaluator2  *string      `db:"evaluator2_id" json:"evaluator2_id,omitempty"`
	Evaluator3  *string      `db:"evaluator3_id" json:"evaluator3_id,omitempty"`
	DefenseDate *time.Time   `db:"defense_date" json:"defense_date,omitempty"`
	Location    *string      `db:"location" json:"location,omitempty"`
	Verdict     *Verdict     `db:"verdict" json:"verdict,omitempty"`
	Grade       *GradeLetter `db:"grade" json:"grade,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// EvaluatorIDs returns the non-null evaluator references in slot order.
func (c Committee) EvaluatorIDs() []string {
	ids := make([]string, 0, 3)
	for _, ref := range []*string{c.Evaluator1, c.Evaluator2, c.Evaluator3} {
		if ref != nil {
			ids = append(ids, *ref)
		}
	}
	return ids
}
