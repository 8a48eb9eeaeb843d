package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MonthlyAttendance is one month's aggregate for a student. (Month, Year)
// pairs are unique within a StudentData record; Month is stored in canonical
// full-English form but matched case-insensitively.
type MonthlyAttendance struct {
	Month   string `json:"month"`
	Year    int    `json:"year"`
	Present int    `json:"present"`
	Total   int    `json:"total"`
}

// FeeInstallment is one of the two per-year fee installments.
type FeeInstallment struct {
	Amount  float64 `json:"amount"`
	Status  string  `json:"status"` // "Due" or "Paid"
	DueDate string  `json:"due_date"`
}

// Marks holds one academic period's marks keyed by subject, or nil when the
// period has not been recorded yet.
type Marks map[string]float64

// StudentData is the 1:1 academic record for a User of role STUDENT.
type StudentData struct {
	UserID            uuid.UUID                   `json:"user_id"`
	MonthlyAttendance []MonthlyAttendance         `json:"monthly_attendance"`
	DailyAttendance   map[string][]string         `json:"daily_attendance"` // ISO date -> per-period statuses
	Fees              map[string][]FeeInstallment `json:"fees"`             // "year<N>" -> two installments
	ImportantUpdates  []string                    `json:"important_updates"`
	Academics         map[string]Marks            `json:"academics"` // mid_1, mid_2, year1_1 .. year4_2
}

// AcademicSlots are the ten academic period keys every record carries.
var AcademicSlots = []string{
	"mid_1", "mid_2",
	"year1_1", "year1_2",
	"year2_1", "year2_2",
	"year3_1", "year3_2",
	"year4_1", "year4_2",
}

// demo due-dates for the two installments of a freshly imported student
const (
	firstDueDate  = "2025-08-15"
	secondDueDate = "2026-01-15"
)

// NewStudentData builds the skeleton record for a freshly created student:
// a two-installment fee split for the student's entry year and an empty
// marks map for the matching first-semester slot. Everything else starts
// empty.
func NewStudentData(userID uuid.UUID, entryYear string, totalFees float64, paidFees float64) *StudentData {
	d := &StudentData{
		UserID:          userID,
		DailyAttendance: map[string][]string{},
		Fees:            map[string][]FeeInstallment{},
		Academics:       map[string]Marks{},
	}
	for _, slot := range AcademicSlots {
		d.Academics[slot] = nil
	}

	year := entryYear
	if year == "" {
		year = "1"
	}
	half := totalFees / 2
	first := FeeInstallment{Amount: half, Status: "Due", DueDate: firstDueDate}
	second := FeeInstallment{Amount: half, Status: "Due", DueDate: secondDueDate}
	if paidFees >= half {
		first.Status = "Paid"
	}
	if paidFees >= totalFees && totalFees > 0 {
		second.Status = "Paid"
	}
	d.Fees["year"+year] = []FeeInstallment{first, second}
	d.Academics["year"+year+"_1"] = Marks{}
	return d
}

// AttendanceFor finds the monthly entry matching (month, year), month
// compared case-insensitively. Returns the index or -1.
func (d *StudentData) AttendanceFor(month string, year int) int {
	for i, m := range d.MonthlyAttendance {
		if m.Year == year && strings.EqualFold(m.Month, month) {
			return i
		}
	}
	return -1
}

// String implements fmt.Stringer for log output.
func (m MonthlyAttendance) String() string {
	return fmt.Sprintf("%s %d: %d/%d", m.Month, m.Year, m.Present, m.Total)
}

// ISODate formats a time as the DailyAttendance map key.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
