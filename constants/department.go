package constants

import "strings"

// CollegeCode is the fixed institution code embedded in every generated roll number.
const CollegeCode = "KP"

// branchCodes maps a department name to its 2-digit branch code.
var branchCodes = map[string]string{
	"ECE":   "04",
	"EVT":   "66",
	"CSE":   "05",
	"AIML":  "61",
	"IT":    "12",
	"DSD":   "44",
	"CIVIL": "01",
}

// UnknownBranchCode is used when a department has no mapped branch code.
const UnknownBranchCode = "00"

// BranchCode returns the 2-digit code for a department, or "00" if unmapped.
func BranchCode(department string) string {
	if code, ok := branchCodes[strings.ToUpper(strings.TrimSpace(department))]; ok {
		return code
	}
	return UnknownBranchCode
}

// Departments returns the known department names.
func Departments() []string {
	out := make([]string, 0, len(branchCodes))
	for d := range branchCodes {
		out = append(out, d)
	}
	return out
}
