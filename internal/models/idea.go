package models

import "time"

// IdeaStatus is the numeric submission status of a thesis idea.
type IdeaStatus int

const (
	IdeaStatusDraft IdeaStatus = iota
	IdeaStatusUnderReview
	IdeaStatusApproved
	IdeaStatusRejected
	IdeaStatusCancelled
)

// ThesisIdea is a student's proposed thesis topic. Mutable only while in
// draft; owned by the submitting student until an advising exists.
type ThesisIdea struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Status      IdeaStatus `db:"status" json:"status"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ThesisIdeaWithAreas bundles an idea with its interest area tags.
type ThesisIdeaWithAreas struct {
	ThesisIdea
	AreaIDs []string `json:"area_ids"`
}
