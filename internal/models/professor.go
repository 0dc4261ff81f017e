package models

import "time"

// Professor wraps a base user with advising attributes.
type Professor struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	Available bool      `db:"available" json:"available"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProfessorWithAreas carries a professor plus the ids of the approved
// interest areas associated with them. Used by the committee engine and
// the public directory.
type ProfessorWithAreas struct {
	Professor
	AreaIDs []string `json:"area_ids"`
}

// HasAnyArea reports whether the professor shares at least one interest
// area with the given set.
func (p ProfessorWithAreas) HasAnyArea(areaIDs []string) bool {
	if len(p.AreaIDs) == 0 || len(areaIDs) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(p.AreaIDs))
	for _, id := range p.AreaIDs {
		set[id] = struct{}{}
	}
	for _, id := range areaIDs {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
