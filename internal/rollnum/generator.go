// Package rollnum synthesizes roll numbers for students imported without one.
//
// A generated roll number is 10 characters:
//
//	<yy><college><entry><branch><serial>
//	 2     2       2       2       2
//
// where yy is the admission year, entry is "1A" for regular or "4A" for
// lateral admission, branch is the department code and serial is the next
// free 2-digit counter under that prefix.
package rollnum

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kpcollege/studentportal/constants"
)

// Request is one generation call. ExistingRolls must include every roll
// number already taken, including numbers generated earlier in the same
// batch; the generator is a pure function of this snapshot.
type Request struct {
	Department    string
	AcademicYear  int // 1..4
	LateralEntry  bool
	CurrentYear   int // calendar year; 0 means time.Now()
	ExistingRolls []string
}

// Generate returns the next roll number for the request, or an error when
// the academic year is out of range.
func Generate(req Request) (string, error) {
	if req.AcademicYear < 1 || req.AcademicYear > 4 {
		return "", fmt.Errorf("academic year out of range: %d", req.AcademicYear)
	}
	year := req.CurrentYear
	if year == 0 {
		year = time.Now().Year()
	}

	// Lateral students enter directly into year 2, so they were admitted
	// one calendar year later than a regular student of the same standing.
	offset := req.AcademicYear - 1
	if req.LateralEntry {
		offset = req.AcademicYear - 2
	}
	admissionYear := year - offset

	entryCode := "1A"
	if req.LateralEntry {
		entryCode = "4A"
	}
	prefix := fmt.Sprintf("%02d%s%s%s",
		admissionYear%100,
		constants.CollegeCode,
		entryCode,
		constants.BranchCode(req.Department),
	)

	serial := nextSerial(prefix, req.ExistingRolls)
	if serial > 99 {
		return "", fmt.Errorf("serial space exhausted for prefix %s", prefix)
	}
	return fmt.Sprintf("%s%02d", prefix, serial), nil
}

// nextSerial scans the snapshot for rolls under prefix and returns
// max(trailing two digits)+1, or 1 when the prefix is unused.
func nextSerial(prefix string, existing []string) int {
	max := 0
	for _, roll := range existing {
		r := strings.ToUpper(strings.TrimSpace(roll))
		if !strings.HasPrefix(r, prefix) || len(r) != len(prefix)+2 {
			continue
		}
		n, err := strconv.Atoi(r[len(prefix):])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}
