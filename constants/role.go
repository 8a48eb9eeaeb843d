package constants

import "strings"

// Role is a portal user role.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleStaff      Role = "STAFF"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// StaffRollPrefix is required on every staff roll number.
const StaffRollPrefix = "T"

// DefaultImportPassword is assigned to students created by bulk import.
const DefaultImportPassword = "student123"

// months, in calendar order, full English names.
var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// CanonicalMonth resolves a month name case-insensitively to its canonical
// full English form. Returns false for anything that is not a month.
func CanonicalMonth(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, m := range months {
		if strings.ToLower(m) == n {
			return m, true
		}
	}
	return "", false
}
