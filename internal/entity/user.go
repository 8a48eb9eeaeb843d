package entity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kpcollege/studentportal/constants"
)

// Assignment grants a staff member authority over one class.
type Assignment struct {
	Department string `json:"department"`
	Year       string `json:"year"` // academic year "1".."4"
	Section    string `json:"section,omitempty"`
}

// User represents a portal account. Roll numbers are globally unique across
// all roles, compared case-insensitively.
type User struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	RollNumber     string         `json:"roll_number"`
	Password       string         `json:"-"`
	Role           constants.Role `json:"role"`
	Department     string         `json:"department"`
	Section        string         `json:"section,omitempty"`
	Year           string         `json:"year,omitempty"`
	IsLateralEntry bool           `json:"is_lateral_entry,omitempty"`
	Email          string         `json:"email,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	PhotoURL       string         `json:"photo_url,omitempty"`
	Assignments    []Assignment   `json:"assignments,omitempty"` // staff only
}

// HasAssignment reports whether the staff member may act on the given class.
// An empty candidate section matches any assignment in the same
// department/year; a non-empty one must match exactly (case-insensitive).
func (u *User) HasAssignment(department, year, section string) bool {
	for _, a := range u.Assignments {
		if !strings.EqualFold(a.Department, department) || a.Year != year {
			continue
		}
		if section == "" || strings.EqualFold(a.Section, section) {
			return true
		}
	}
	return false
}

// SameRoll compares two roll numbers the way the uniqueness invariant does.
func SameRoll(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
