// Package importer drives the document import flows. Each upload becomes a
// session that moves Upload -> Parsing -> Review -> (Committed | Cancelled);
// any whole-flow failure during parsing returns the session to Upload with
// the error surfaced for the operator.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/common"
	"github.com/kpcollege/studentportal/internal/doctext"
	"github.com/kpcollege/studentportal/internal/entity"
	"github.com/kpcollege/studentportal/internal/llm"
	"github.com/kpcollege/studentportal/internal/reconcile"
	"github.com/kpcollege/studentportal/internal/rollnum"
	"github.com/kpcollege/studentportal/internal/store"
)

// Kind distinguishes the two import flows.
type Kind string

const (
	KindRoster     Kind = "roster"
	KindAttendance Kind = "attendance"
)

// Session is one import flow from upload to terminal state.
type Session struct {
	ID             uuid.UUID                 `json:"id"`
	Kind           Kind                      `json:"kind"`
	State          constants.FlowState       `json:"state"`
	Error          string                    `json:"error,omitempty"`
	Message        string                    `json:"message,omitempty"`
	Summary        reconcile.Summary         `json:"summary"`
	StudentRows    []reconcile.StudentRow    `json:"student_rows,omitempty"`
	AttendanceRows []reconcile.AttendanceRow `json:"attendance_rows,omitempty"`
}

// clone copies the session so callers can read and serialize it without
// holding the service lock. Taken whenever a session leaves the service.
func (sess *Session) clone() *Session {
	cp := *sess
	cp.StudentRows = append([]reconcile.StudentRow(nil), sess.StudentRows...)
	cp.AttendanceRows = append([]reconcile.AttendanceRow(nil), sess.AttendanceRows...)
	return &cp
}

// Config tunes the import service.
type Config struct {
	// ExtractTimeout caps one extraction call; a stall surfaces as
	// ExtractionFailed rather than hanging the flow. Default 60s.
	ExtractTimeout time.Duration
	// DefaultTotalFees seeds the fee skeleton when the document does not
	// state an amount.
	DefaultTotalFees float64
}

// Service coordinates document extraction, reconciliation and commit for
// both import flows. One extraction call runs at a time per session.
type Service struct {
	cfg       Config
	store     *store.Store
	docs      *doctext.Extractor
	extractor llm.Extractor
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func New(cfg Config, st *store.Store, docs *doctext.Extractor, ex llm.Extractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = 60 * time.Second
	}
	if cfg.DefaultTotalFees <= 0 {
		cfg.DefaultTotalFees = 100000
	}
	return &Service{
		cfg:       cfg,
		store:     st,
		docs:      docs,
		extractor: ex,
		logger:    logger,
		sessions:  map[uuid.UUID]*Session{},
	}
}

// Session returns the session by ID.
func (s *Service) Session(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.clone(), true
}

// StartRoster runs the upload+parsing stages of a student roster import and
// leaves the session in Review (or back in Upload on failure).
func (s *Service) StartRoster(ctx context.Context, filename string, data []byte, actingStaff *entity.User) (*Session, error) {
	if !constants.AllowedForRoster(filepath.Ext(filename)) {
		return nil, fmt.Errorf("%q: %w", filename, common.ErrUnsupportedFileType)
	}
	sess := s.newSession(KindRoster)

	doc, err := s.docs.Extract(ctx, filename, data)
	if err != nil {
		return s.failParsing(sess, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	defer cancel()
	ext, err := s.extractor.ExtractStudents(ctx, doc.Text)
	if err != nil {
		return s.failParsing(sess, fmt.Errorf("%w: %v", common.ErrExtractionFailed, err))
	}
	if len(ext.Students) == 0 {
		return s.failParsing(sess, common.ErrNoRecordsFound)
	}

	rows, sum := reconcile.ClassifyStudents(ext.Students, s.store.RollNumbers(), reconcile.StudentOptions{
		ActingStaff: actingStaff,
	}, s.logger)
	sum.Malformed = len(ext.Malformed)
	sum.Found += len(ext.Malformed)

	s.mu.Lock()
	sess.State = constants.FlowReview
	sess.StudentRows = rows
	sess.Summary = sum
	sess.Message = summaryMessage(sum)
	snap := sess.clone()
	s.mu.Unlock()

	s.logger.Info("import.roster.review", "session_id", snap.ID, "found", sum.Found, "eligible", sum.Eligible)
	return snap, nil
}

// StartAttendance runs the upload+parsing stages of an attendance import.
func (s *Service) StartAttendance(ctx context.Context, filename string, data []byte) (*Session, error) {
	if !constants.AllowedForAttendance(filepath.Ext(filename)) {
		return nil, fmt.Errorf("%q: %w", filename, common.ErrUnsupportedFileType)
	}
	sess := s.newSession(KindAttendance)

	doc, err := s.docs.Extract(ctx, filename, data)
	if err != nil {
		return s.failParsing(sess, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	defer cancel()
	ext, err := s.extractor.ExtractAttendance(ctx, doc)
	if err != nil {
		return s.failParsing(sess, fmt.Errorf("%w: %v", common.ErrExtractionFailed, err))
	}
	if len(ext.Records) == 0 {
		return s.failParsing(sess, common.ErrNoRecordsFound)
	}

	rows, sum := reconcile.ClassifyAttendance(ext.Records, s.store, s.logger)
	sum.Malformed = len(ext.Malformed)
	sum.Found += len(ext.Malformed)

	s.mu.Lock()
	sess.State = constants.FlowReview
	sess.AttendanceRows = rows
	sess.Summary = sum
	sess.Message = summaryMessage(sum)
	snap := sess.clone()
	s.mu.Unlock()

	s.logger.Info("import.attendance.review", "session_id", snap.ID, "found", sum.Found, "eligible", sum.Eligible)
	return snap, nil
}

// Commit applies a reviewed session's eligible rows in one batch and closes
// the session. Commit with zero eligible rows is rejected; the UI disables
// it, but the flow enforces it too.
func (s *Service) Commit(sessionID uuid.UUID) (*Session, error) {
	// The lock is held across the state check, the store commit and the
	// transition to Committed, so two concurrent commits of one session
	// cannot both pass the Review check.
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if sess.State != constants.FlowReview {
		return sess.clone(), fmt.Errorf("commit from %s: %w", sess.State, common.ErrInvalidState)
	}
	if sess.Summary.Eligible == 0 {
		return sess.clone(), fmt.Errorf("no eligible records: %w", common.ErrInvalidState)
	}

	var err error
	switch sess.Kind {
	case KindRoster:
		err = s.store.CommitStudents(s.buildStudents(sess.StudentRows))
	case KindAttendance:
		accepted := make([]entity.ParsedAttendanceRecord, 0, sess.Summary.Eligible)
		for _, row := range sess.AttendanceRows {
			if row.Status.Eligible() {
				accepted = append(accepted, row.Record)
			}
		}
		err = s.store.CommitAttendance(accepted)
	default:
		err = common.ErrInvalidState
	}
	if err != nil {
		s.logger.Error("import.commit.failed", "session_id", sess.ID, "kind", sess.Kind, "error", err)
		return sess.clone(), err
	}

	sess.State = constants.FlowCommitted
	s.logger.Info("import.commit.ok", "session_id", sess.ID, "kind", sess.Kind, "count", sess.Summary.Eligible)
	return sess.clone(), nil
}

// Cancel closes a reviewed session without touching canonical state.
func (s *Service) Cancel(sessionID uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if sess.State != constants.FlowReview {
		return sess.clone(), fmt.Errorf("cancel from %s: %w", sess.State, common.ErrInvalidState)
	}
	sess.State = constants.FlowCancelled
	s.logger.Info("import.cancelled", "session_id", sess.ID, "kind", sess.Kind)
	return sess.clone(), nil
}

func (s *Service) newSession(kind Kind) *Session {
	sess := &Session{
		ID:    uuid.New(),
		Kind:  kind,
		State: constants.FlowParsing,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// failParsing records a whole-flow error and returns the session to Upload.
func (s *Service) failParsing(sess *Session, err error) (*Session, error) {
	s.mu.Lock()
	sess.State = constants.FlowUpload
	sess.Error = err.Error()
	snap := sess.clone()
	s.mu.Unlock()
	s.logger.Warn("import.parsing.failed", "session_id", snap.ID, "kind", snap.Kind, "error", err)
	return snap, err
}

// buildStudents turns accepted roster rows into User/StudentData pairs.
func (s *Service) buildStudents(rows []reconcile.StudentRow) []store.NewStudent {
	out := make([]store.NewStudent, 0, len(rows))
	for _, row := range rows {
		if !row.Status.Eligible() {
			continue
		}
		c := row.Candidate
		id := uuid.New()
		total := c.TotalFees
		if total <= 0 {
			total = s.cfg.DefaultTotalFees
		}
		out = append(out, store.NewStudent{
			User: entity.User{
				ID:             id,
				Name:           c.Name,
				RollNumber:     row.RollNumber,
				Password:       constants.DefaultImportPassword,
				Role:           constants.RoleStudent,
				Department:     c.Department,
				Section:        c.Section,
				Year:           c.Year,
				IsLateralEntry: c.IsLateralEntry,
				Email:          c.Email,
				Phone:          c.Phone,
			},
			Data: entity.NewStudentData(id, c.Year, total, c.PaidFees),
		})
	}
	return out
}

// BuildManualStudent prepares a single manually entered student for the
// store, synthesizing a roll number when none was supplied. The add itself
// still goes through the store so uniqueness is enforced there.
func (s *Service) BuildManualStudent(c entity.ParsedStudent, password string) (entity.User, *entity.StudentData, error) {
	roll := strings.TrimSpace(c.RollNumber)
	if roll == "" {
		year, err := strconv.Atoi(strings.TrimSpace(c.Year))
		if err != nil {
			return entity.User{}, nil, fmt.Errorf("year %q: %w", c.Year, common.ErrInvalidInput)
		}
		roll, err = rollnum.Generate(rollnum.Request{
			Department:    c.Department,
			AcademicYear:  year,
			LateralEntry:  c.IsLateralEntry,
			ExistingRolls: s.store.RollNumbers(),
		})
		if err != nil {
			return entity.User{}, nil, fmt.Errorf("generate roll number: %w", err)
		}
	}
	if password == "" {
		password = constants.DefaultImportPassword
	}
	total := c.TotalFees
	if total <= 0 {
		total = s.cfg.DefaultTotalFees
	}

	id := uuid.New()
	user := entity.User{
		ID:             id,
		Name:           c.Name,
		RollNumber:     roll,
		Password:       password,
		Role:           constants.RoleStudent,
		Department:     c.Department,
		Section:        c.Section,
		Year:           c.Year,
		IsLateralEntry: c.IsLateralEntry,
		Email:          c.Email,
		Phone:          c.Phone,
	}
	return user, entity.NewStudentData(id, c.Year, total, c.PaidFees), nil
}

// summaryMessage is the operator-facing count breakdown shown before commit.
func summaryMessage(sum reconcile.Summary) string {
	msg := fmt.Sprintf("Found %d record(s). %d can be imported.", sum.Found, sum.Eligible)
	if sum.Skipped() == 0 {
		return msg
	}
	var reasons []string
	add := func(n int, why string) {
		if n > 0 {
			reasons = append(reasons, fmt.Sprintf("%d %s", n, why))
		}
	}
	add(sum.Duplicate, "duplicate roll number(s)")
	add(sum.NoAccess, "outside your assigned classes")
	add(sum.NotFound, "unmatched roll number(s)")
	add(sum.GenerationFailed, "roll number generation failure(s)")
	add(sum.Malformed, "malformed row(s)")
	return fmt.Sprintf("%s %d will be skipped because of: %s.", msg, sum.Skipped(), strings.Join(reasons, ", "))
}

// IsWholeFlowError reports whether err aborts an import flow (as opposed to
// a per-record classification outcome).
func IsWholeFlowError(err error) bool {
	return errors.Is(err, common.ErrUnsupportedFileType) ||
		errors.Is(err, common.ErrEmptyDocument) ||
		errors.Is(err, common.ErrExtractionFailed) ||
		errors.Is(err, common.ErrNoRecordsFound)
}
