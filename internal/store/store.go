// Package store owns the canonical User and StudentData collections. All
// mutation goes through commit or edit operations on the Store; readers get
// copies, never references into the underlying slices.
package store

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/common"
	"github.com/kpcollege/studentportal/internal/entity"
)

// Store holds the canonical collections. A single mutex serializes commits
// so batch commits are atomic with respect to every reader.
type Store struct {
	mu       sync.RWMutex
	users    []entity.User
	students map[uuid.UUID]*entity.StudentData // keyed by UserID
	logger   *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		students: map[uuid.UUID]*entity.StudentData{},
		logger:   logger,
	}
}

// Users returns a copy of the user collection.
func (s *Store) Users() []entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.User, len(s.users))
	copy(out, s.users)
	return out
}

// RollNumbers returns every roll number currently in use.
func (s *Store) RollNumbers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.users))
	for i, u := range s.users {
		out[i] = u.RollNumber
	}
	return out
}

// FindByRoll looks a user up by roll number, case-insensitively.
func (s *Store) FindByRoll(roll string) (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if entity.SameRoll(u.RollNumber, roll) {
			return u, true
		}
	}
	return entity.User{}, false
}

// FindByID looks a user up by ID.
func (s *Store) FindByID(id uuid.UUID) (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return entity.User{}, false
}

// StudentData returns a deep copy of the record for userID.
func (s *Store) StudentData(userID uuid.UUID) (*entity.StudentData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.students[userID]
	if !ok {
		return nil, false
	}
	return copyStudentData(d), true
}

// AddUser inserts a single user, enforcing roll-number uniqueness and, for
// students, creating the StudentData record alongside.
func (s *Store) AddUser(u entity.User, data *entity.StudentData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateUserLocked(u, uuid.Nil); err != nil {
		return err
	}
	if u.Role == constants.RoleStudent {
		if data == nil {
			return common.NewAppError("STORE", "student requires a student data record", common.ErrInvalidInput)
		}
		data.UserID = u.ID
		s.students[u.ID] = copyStudentData(data)
	}
	s.users = append(s.users, u)
	s.logger.Info("store.user.added", "user_id", u.ID, "roll", u.RollNumber, "role", u.Role)
	return nil
}

// UpdateUser replaces the stored user with the same ID. Roll-number
// uniqueness is re-checked against every other user.
func (s *Store) UpdateUser(u entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, cur := range s.users {
		if cur.ID == u.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return common.ErrNotFound
	}
	if err := s.validateUserLocked(u, u.ID); err != nil {
		return err
	}
	s.users[idx] = u
	s.logger.Info("store.user.updated", "user_id", u.ID, "roll", u.RollNumber)
	return nil
}

// DeleteUser removes a user; deleting a student cascades to its StudentData.
func (s *Store) DeleteUser(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID != id {
			continue
		}
		s.users = append(s.users[:i], s.users[i+1:]...)
		delete(s.students, id)
		s.logger.Info("store.user.deleted", "user_id", id, "roll", u.RollNumber)
		return nil
	}
	return common.ErrNotFound
}

// NewStudent pairs a user with its initial StudentData for a batch commit.
type NewStudent struct {
	User entity.User
	Data *entity.StudentData
}

// CommitStudents appends the whole accepted batch, or nothing. The batch is
// validated in full before the first append, so a failure leaves the
// collections untouched.
func (s *Store) CommitStudents(batch []NewStudent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]struct{}{}
	for i, ns := range batch {
		if err := s.validateUserLocked(ns.User, uuid.Nil); err != nil {
			return fmt.Errorf("batch row %d (%s): %w", i, ns.User.RollNumber, err)
		}
		key := strings.ToUpper(strings.TrimSpace(ns.User.RollNumber))
		if _, dup := seen[key]; dup {
			return fmt.Errorf("batch row %d (%s): %w", i, ns.User.RollNumber, common.ErrDuplicateRollNumber)
		}
		seen[key] = struct{}{}
		if ns.User.Role == constants.RoleStudent && ns.Data == nil {
			return fmt.Errorf("batch row %d (%s): %w", i, ns.User.RollNumber, common.ErrInvalidInput)
		}
	}

	for _, ns := range batch {
		s.users = append(s.users, ns.User)
		if ns.Data != nil {
			ns.Data.UserID = ns.User.ID
			s.students[ns.User.ID] = copyStudentData(ns.Data)
		}
	}
	s.logger.Info("store.commit.students", "count", len(batch), "total_users", len(s.users))
	return nil
}

// CommitAttendance applies accepted attendance rows with replace-by-key
// semantics: an existing (month, year) entry is overwritten, otherwise the
// row is appended. Committing the same batch twice is a no-op the second
// time. Rows whose roll number no longer resolves fail the whole commit;
// classification should have excluded them.
func (s *Store) CommitAttendance(accepted []entity.ParsedAttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type target struct {
		data *entity.StudentData
		rec  entity.ParsedAttendanceRecord
	}
	targets := make([]target, 0, len(accepted))
	for i, rec := range accepted {
		var data *entity.StudentData
		for _, u := range s.users {
			if entity.SameRoll(u.RollNumber, rec.RollNumber) {
				data = s.students[u.ID]
				break
			}
		}
		if data == nil {
			return fmt.Errorf("attendance row %d (%s): %w", i, rec.RollNumber, common.ErrNotFound)
		}
		targets = append(targets, target{data: data, rec: rec})
	}

	for _, t := range targets {
		entry := entity.MonthlyAttendance{
			Month:   t.rec.Month,
			Year:    t.rec.Year,
			Present: t.rec.Present,
			Total:   t.rec.Total,
		}
		if idx := t.data.AttendanceFor(t.rec.Month, t.rec.Year); idx >= 0 {
			t.data.MonthlyAttendance[idx] = entry
		} else {
			t.data.MonthlyAttendance = append(t.data.MonthlyAttendance, entry)
		}
	}
	s.logger.Info("store.commit.attendance", "count", len(accepted))
	return nil
}

// validateUserLocked enforces the invariants shared by every mutation path:
// global case-insensitive roll uniqueness and the staff "T" prefix. selfID
// exempts the user's own row during updates.
func (s *Store) validateUserLocked(u entity.User, selfID uuid.UUID) error {
	roll := strings.TrimSpace(u.RollNumber)
	if u.Name == "" || roll == "" {
		return common.NewAppError("STORE", "name and roll number are required", common.ErrInvalidInput)
	}
	if u.Role == constants.RoleStaff && !strings.HasPrefix(strings.ToUpper(roll), constants.StaffRollPrefix) {
		return common.NewAppError("STORE", "staff roll numbers must start with T", common.ErrInvalidInput)
	}
	for _, cur := range s.users {
		if cur.ID == selfID {
			continue
		}
		if entity.SameRoll(cur.RollNumber, roll) {
			return fmt.Errorf("roll %s: %w", roll, common.ErrDuplicateRollNumber)
		}
	}
	return nil
}

func copyStudentData(d *entity.StudentData) *entity.StudentData {
	out := &entity.StudentData{
		UserID:            d.UserID,
		MonthlyAttendance: append([]entity.MonthlyAttendance(nil), d.MonthlyAttendance...),
		DailyAttendance:   map[string][]string{},
		Fees:              map[string][]entity.FeeInstallment{},
		ImportantUpdates:  append([]string(nil), d.ImportantUpdates...),
		Academics:         map[string]entity.Marks{},
	}
	for k, v := range d.DailyAttendance {
		out.DailyAttendance[k] = append([]string(nil), v...)
	}
	for k, v := range d.Fees {
		out.Fees[k] = append([]entity.FeeInstallment(nil), v...)
	}
	for k, v := range d.Academics {
		if v == nil {
			out.Academics[k] = nil
			continue
		}
		m := entity.Marks{}
		for sub, score := range v {
			m[sub] = score
		}
		out.Academics[k] = m
	}
	return out
}
