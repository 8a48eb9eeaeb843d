// Package reconcile classifies extracted candidate records against the
// canonical collections. Every candidate gets a status; classification
// never drops or reorders rows and never mutates state.
package reconcile

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/entity"
	"github.com/kpcollege/studentportal/internal/rollnum"
)

// Catalog is the read-only view of canonical state classification needs.
// *store.Store satisfies it.
type Catalog interface {
	FindByRoll(roll string) (entity.User, bool)
	StudentData(userID uuid.UUID) (*entity.StudentData, bool)
}

// StudentRow is one classified roster candidate.
type StudentRow struct {
	Candidate  entity.ParsedStudent `json:"candidate"`
	RollNumber string               `json:"roll_number,omitempty"` // final, set when accepted
	Status     constants.RowStatus  `json:"status"`
	Reason     string               `json:"reason,omitempty"`
}

// AttendanceRow is one classified attendance candidate.
type AttendanceRow struct {
	Record entity.ParsedAttendanceRecord `json:"record"`
	Status constants.RowStatus           `json:"status"`
	Reason string                        `json:"reason,omitempty"`
}

// Summary aggregates per-status counts for operator display. NoAccess is its
// own bucket so staff can see why rows were skipped.
type Summary struct {
	Found            int `json:"found"`
	Eligible         int `json:"eligible"`
	Duplicate        int `json:"duplicate"`
	NoAccess         int `json:"no_access"`
	NotFound         int `json:"not_found"`
	GenerationFailed int `json:"generation_failed"`
	Malformed        int `json:"malformed"`
}

func (s Summary) Skipped() int {
	return s.Duplicate + s.NoAccess + s.NotFound + s.GenerationFailed + s.Malformed
}

// StudentOptions scope one roster classification run.
type StudentOptions struct {
	// ActingStaff enables the assignment check; nil means an admin-initiated
	// import, which skips it.
	ActingStaff *entity.User
	// CurrentYear feeds roll-number generation; 0 means the current
	// calendar year.
	CurrentYear int
}

// ClassifyStudents classifies candidates in the order received against the
// existing roll numbers plus everything accepted earlier in the same batch.
func ClassifyStudents(candidates []entity.ParsedStudent, existingRolls []string, opts StudentOptions, logger *slog.Logger) ([]StudentRow, Summary) {
	if logger == nil {
		logger = slog.Default()
	}

	// cumulative snapshot: existing collection + rolls accepted so far
	taken := make(map[string]struct{}, len(existingRolls))
	snapshot := make([]string, 0, len(existingRolls)+len(candidates))
	for _, r := range existingRolls {
		taken[rollKey(r)] = struct{}{}
		snapshot = append(snapshot, r)
	}

	rows := make([]StudentRow, 0, len(candidates))
	var sum Summary
	sum.Found = len(candidates)

	for _, cand := range candidates {
		row := StudentRow{Candidate: cand}

		if opts.ActingStaff != nil && !opts.ActingStaff.HasAssignment(cand.Department, cand.Year, cand.Section) {
			row.Status = constants.RowStatusNoAccess
			row.Reason = "outside your assigned classes"
			sum.NoAccess++
			rows = append(rows, row)
			continue
		}

		final := strings.TrimSpace(cand.RollNumber)
		if final == "" {
			year, err := strconv.Atoi(strings.TrimSpace(cand.Year))
			if err == nil {
				final, err = rollnum.Generate(rollnum.Request{
					Department:    cand.Department,
					AcademicYear:  year,
					LateralEntry:  cand.IsLateralEntry,
					CurrentYear:   opts.CurrentYear,
					ExistingRolls: snapshot,
				})
			}
			if err != nil || final == "" {
				logger.Warn("reconcile.students.generation_failed", "name", cand.Name, "year", cand.Year, "error", err)
				row.Status = constants.RowStatusGenerationFailed
				row.Reason = "could not determine a roll number"
				sum.GenerationFailed++
				rows = append(rows, row)
				continue
			}
		}

		if _, dup := taken[rollKey(final)]; dup {
			row.Status = constants.RowStatusDuplicate
			row.Reason = "roll number " + final + " already exists"
			sum.Duplicate++
			rows = append(rows, row)
			continue
		}

		taken[rollKey(final)] = struct{}{}
		snapshot = append(snapshot, final)
		row.RollNumber = final
		row.Status = constants.RowStatusNew
		sum.Eligible++
		rows = append(rows, row)
	}

	logger.Info("reconcile.students.done",
		"found", sum.Found,
		"eligible", sum.Eligible,
		"duplicate", sum.Duplicate,
		"no_access", sum.NoAccess,
		"generation_failed", sum.GenerationFailed,
	)
	return rows, sum
}

// ClassifyAttendance classifies attendance candidates: NotFound when the
// roll matches no user or a user with no student data (staff, admin),
// Update when the student already has that month recorded, New otherwise.
func ClassifyAttendance(records []entity.ParsedAttendanceRecord, catalog Catalog, logger *slog.Logger) ([]AttendanceRow, Summary) {
	if logger == nil {
		logger = slog.Default()
	}

	rows := make([]AttendanceRow, 0, len(records))
	var sum Summary
	sum.Found = len(records)

	for _, rec := range records {
		row := AttendanceRow{Record: rec}

		user, ok := catalog.FindByRoll(rec.RollNumber)
		if !ok {
			row.Status = constants.RowStatusNotFound
			row.Reason = "no student with roll number " + rec.RollNumber
			sum.NotFound++
			rows = append(rows, row)
			continue
		}

		data, ok := catalog.StudentData(user.ID)
		if !ok {
			row.Status = constants.RowStatusNotFound
			row.Reason = rec.RollNumber + " does not belong to a student"
			sum.NotFound++
			rows = append(rows, row)
			continue
		}

		row.Status = constants.RowStatusNew
		if data.AttendanceFor(rec.Month, rec.Year) >= 0 {
			row.Status = constants.RowStatusUpdate
		}
		sum.Eligible++
		rows = append(rows, row)
	}

	logger.Info("reconcile.attendance.done",
		"found", sum.Found,
		"eligible", sum.Eligible,
		"not_found", sum.NotFound,
	)
	return rows, sum
}

func rollKey(roll string) string {
	return strings.ToUpper(strings.TrimSpace(roll))
}
