package models

import "time"

// AreaStatus tracks the approval workflow of an interest area.
type AreaStatus string

const (
	AreaStatusPending  AreaStatus = "pending"
	AreaStatusApproved AreaStatus = "approved"
	AreaStatusRejected AreaStatus = "rejected"
)

// InterestArea is a topical tag used to match professors to thesis ideas.
// Only approved areas participate in committee matching.
type InterestArea struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Status    AreaStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
