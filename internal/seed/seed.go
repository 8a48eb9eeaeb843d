// Package seed loads the demo dataset the portal ships with. The portal has
// no persistence layer, so a fresh process starts from this state.
package seed

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/entity"
	"github.com/kpcollege/studentportal/internal/store"
)

// Load populates the store with the demo users. Safe to call once, on an
// empty store only.
func Load(st *store.Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	admin := entity.User{
		ID:         uuid.New(),
		Name:       "Principal",
		RollNumber: "T-ADMIN",
		Password:   "admin123",
		Role:       constants.RoleSuperAdmin,
		Department: "ADMIN",
	}
	if err := st.AddUser(admin, nil); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	staff := entity.User{
		ID:         uuid.New(),
		Name:       "S. Rao",
		RollNumber: "T-ECE-01",
		Password:   "staff123",
		Role:       constants.RoleStaff,
		Department: "ECE",
		Assignments: []entity.Assignment{
			{Department: "ECE", Year: "1", Section: "A"},
			{Department: "ECE", Year: "2", Section: "A"},
		},
	}
	if err := st.AddUser(staff, nil); err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}

	students := []struct {
		name, roll, dept, year, section string
		lateral                         bool
		attendance                      []entity.MonthlyAttendance
	}{
		{
			name: "Anil Kumar", roll: "24KP1A0401", dept: "ECE", year: "1", section: "A",
			attendance: []entity.MonthlyAttendance{
				{Month: "January", Year: 2025, Present: 20, Total: 22},
				{Month: "February", Year: 2025, Present: 18, Total: 20},
			},
		},
		{
			name: "Bhavana Reddy", roll: "24KP1A0402", dept: "ECE", year: "1", section: "A",
			attendance: []entity.MonthlyAttendance{
				{Month: "January", Year: 2025, Present: 22, Total: 22},
			},
		},
		{
			name: "Charan Tej", roll: "24KP4A0501", dept: "CSE", year: "2", section: "B", lateral: true,
		},
	}

	batch := make([]store.NewStudent, 0, len(students))
	for _, s := range students {
		id := uuid.New()
		data := entity.NewStudentData(id, s.year, 120000, 60000)
		data.MonthlyAttendance = s.attendance
		batch = append(batch, store.NewStudent{
			User: entity.User{
				ID:             id,
				Name:           s.name,
				RollNumber:     s.roll,
				Password:       constants.DefaultImportPassword,
				Role:           constants.RoleStudent,
				Department:     s.dept,
				Section:        s.section,
				Year:           s.year,
				IsLateralEntry: s.lateral,
			},
			Data: data,
		})
	}
	if err := st.CommitStudents(batch); err != nil {
		return fmt.Errorf("seed students: %w", err)
	}

	logger.Info("seed.loaded", "users", len(students)+2)
	return nil
}
