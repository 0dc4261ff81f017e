package dto

// OutcomeStatus tags the result of one relationship inside a generation run.
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// GenerationOutcome is the per-advising result of a committee run.
type GenerationOutcome struct {
	AdvisingID  string        `json:"advising_id"`
	Status      OutcomeStatus `json:"status"`
	CommitteeID string        `json:"committee_id,omitempty"`
	SeatsFilled int           `json:"seats_filled"`
	Reason      string        `json:"reason,omitempty"`
}

// GenerateCommitteesResponse aggregates a full batch run. Warnings report
// per-item degradations without failing the run.
type GenerateCommitteesResponse struct {
	EligibleCount int                 `json:"eligible_count"`
	CreatedCount  int                 `json:"created_count"`
	CreatedIDs    []string            `json:"created_ids"`
	Warnings      []string            `json:"warnings"`
	Outcomes      []GenerationOutcome `json:"outcomes"`
}

// UpdateCommitteeRequest is the administrative update of defense details.
type UpdateCommitteeRequest struct {
	DefenseDate *string `json:"defense_date" validate:"omitempty"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
	Verdict     *string `json:"verdict" validate:"omitempty"`
	Grade       *string `json:"grade" validate:"omitempty"`
}
