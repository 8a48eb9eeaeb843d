package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/common"
	"github.com/kpcollege/studentportal/internal/entity"
)

func newStudent(name, roll string) NewStudent {
	id := uuid.New()
	return NewStudent{
		User: entity.User{
			ID:         id,
			Name:       name,
			RollNumber: roll,
			Password:   constants.DefaultImportPassword,
			Role:       constants.RoleStudent,
			Department: "ECE",
			Year:       "1",
		},
		Data: entity.NewStudentData(id, "1", 100000, 0),
	}
}

func TestCommitStudentsRejectsDuplicateRoll(t *testing.T) {
	s := New(nil)
	if err := s.CommitStudents([]NewStudent{newStudent("A", "24KP1A0401")}); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	// Same roll with different casing must be rejected.
	err := s.CommitStudents([]NewStudent{newStudent("B", "24kp1a0401")})
	if !errors.Is(err, common.ErrDuplicateRollNumber) {
		t.Fatalf("got %v, want ErrDuplicateRollNumber", err)
	}
	if len(s.Users()) != 1 {
		t.Fatalf("user collection grew on rejected commit: %d users", len(s.Users()))
	}
}

func TestCommitStudentsIsAtomic(t *testing.T) {
	s := New(nil)
	batch := []NewStudent{
		newStudent("A", "24KP1A0401"),
		newStudent("B", "24KP1A0402"),
		newStudent("C", "24KP1A0401"), // duplicate within the batch
	}
	if err := s.CommitStudents(batch); err == nil {
		t.Fatal("expected batch-internal duplicate to fail the commit")
	}
	if got := len(s.Users()); got != 0 {
		t.Fatalf("partial commit observed: %d users", got)
	}
}

func TestCommitStudentsInitializesSkeleton(t *testing.T) {
	s := New(nil)
	ns := newStudent("A", "24KP1A0401")
	if err := s.CommitStudents([]NewStudent{ns}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	data, ok := s.StudentData(ns.User.ID)
	if !ok {
		t.Fatal("student data missing after commit")
	}
	fees := data.Fees["year1"]
	if len(fees) != 2 {
		t.Fatalf("want 2 fee installments, got %d", len(fees))
	}
	if fees[0].Amount != 50000 || fees[0].Status != "Due" {
		t.Fatalf("unexpected first installment: %+v", fees[0])
	}
	if data.Academics["year1_1"] == nil {
		t.Fatal("entry-year marks slot not initialized")
	}
	if data.Academics["year2_1"] != nil {
		t.Fatal("non-entry marks slot should be nil")
	}
}

func TestCommitAttendanceReplacesByKey(t *testing.T) {
	s := New(nil)
	ns := newStudent("A", "24KP1A0401")
	ns.Data.MonthlyAttendance = []entity.MonthlyAttendance{
		{Month: "January", Year: 2024, Present: 20, Total: 22},
	}
	if err := s.CommitStudents([]NewStudent{ns}); err != nil {
		t.Fatalf("commit students: %v", err)
	}

	batch := []entity.ParsedAttendanceRecord{
		// case-different month must replace, not append
		{RollNumber: "24KP1A0401", Month: "january", Year: 2024, Present: 21, Total: 22},
		{RollNumber: "24KP1A0401", Month: "February", Year: 2024, Present: 18, Total: 20},
	}
	if err := s.CommitAttendance(batch); err != nil {
		t.Fatalf("commit attendance: %v", err)
	}

	data, _ := s.StudentData(ns.User.ID)
	want := []entity.MonthlyAttendance{
		{Month: "january", Year: 2024, Present: 21, Total: 22},
		{Month: "February", Year: 2024, Present: 18, Total: 20},
	}
	if diff := cmp.Diff(want, data.MonthlyAttendance); diff != "" {
		t.Fatalf("monthly attendance mismatch (-want +got):\n%s", diff)
	}
}

func TestCommitAttendanceIsIdempotent(t *testing.T) {
	s := New(nil)
	ns := newStudent("A", "24KP1A0401")
	if err := s.CommitStudents([]NewStudent{ns}); err != nil {
		t.Fatalf("commit students: %v", err)
	}
	batch := []entity.ParsedAttendanceRecord{
		{RollNumber: "24KP1A0401", Month: "March", Year: 2024, Present: 19, Total: 21},
	}
	if err := s.CommitAttendance(batch); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	once, _ := s.StudentData(ns.User.ID)

	if err := s.CommitAttendance(batch); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	twice, _ := s.StudentData(ns.User.ID)
	if diff := cmp.Diff(once.MonthlyAttendance, twice.MonthlyAttendance); diff != "" {
		t.Fatalf("attendance not idempotent (-once +twice):\n%s", diff)
	}
	if len(twice.MonthlyAttendance) != 1 {
		t.Fatalf("entry duplicated: %d entries", len(twice.MonthlyAttendance))
	}
}

func TestDeleteStudentCascades(t *testing.T) {
	s := New(nil)
	ns := newStudent("A", "24KP1A0401")
	if err := s.CommitStudents([]NewStudent{ns}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := s.DeleteUser(ns.User.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.StudentData(ns.User.ID); ok {
		t.Fatal("student data survived user deletion")
	}
	if len(s.Users()) != 0 {
		t.Fatal("user not removed")
	}
}

func TestAddStaffRequiresPrefix(t *testing.T) {
	s := New(nil)
	staff := entity.User{
		ID:         uuid.New(),
		Name:       "Prof X",
		RollNumber: "STAFF-1",
		Role:       constants.RoleStaff,
		Department: "CSE",
	}
	if err := s.AddUser(staff, nil); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput for staff roll without T prefix", err)
	}
	staff.RollNumber = "T-CSE-01"
	if err := s.AddUser(staff, nil); err != nil {
		t.Fatalf("valid staff rejected: %v", err)
	}
}

func TestUpdateUserKeepsUniqueness(t *testing.T) {
	s := New(nil)
	a := newStudent("A", "24KP1A0401")
	b := newStudent("B", "24KP1A0402")
	if err := s.CommitStudents([]NewStudent{a, b}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	moved := b.User
	moved.RollNumber = "24KP1A0401"
	if err := s.UpdateUser(moved); !errors.Is(err, common.ErrDuplicateRollNumber) {
		t.Fatalf("got %v, want ErrDuplicateRollNumber", err)
	}
	// Re-saving with its own roll number is fine.
	if err := s.UpdateUser(b.User); err != nil {
		t.Fatalf("self update rejected: %v", err)
	}
}
