// Package export produces XLSX workbooks for downloadable reports.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/store"
)

// Service is a tiny façade over the store that renders XLSX bytes.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// ExportRosterXLSX returns a workbook of every student, optionally filtered
// by department (empty means all).
func (s *Service) ExportRosterXLSX(department string) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Students"
	if err := renameDefaultSheet(f, sheet); err != nil {
		return nil, err
	}

	headers := []string{"Roll Number", "Name", "Department", "Year", "Section", "Lateral Entry", "Email", "Phone"}
	writeHeader(f, sheet, headers)

	row := 2
	for _, u := range s.store.Users() {
		if u.Role != constants.RoleStudent {
			continue
		}
		if department != "" && !strings.EqualFold(u.Department, department) {
			continue
		}
		lateral := ""
		if u.IsLateralEntry {
			lateral = "Yes"
		}
		writeRow(f, sheet, row, []any{u.RollNumber, u.Name, u.Department, u.Year, u.Section, lateral, u.Email, u.Phone})
		row++
	}

	out, err := workbookBytes(f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.roster.ok", "rows", row-2, "bytes", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// ExportAttendanceXLSX returns a workbook of every student's monthly
// attendance, one row per (student, month).
func (s *Service) ExportAttendanceXLSX() ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Attendance"
	if err := renameDefaultSheet(f, sheet); err != nil {
		return nil, err
	}

	headers := []string{"Roll Number", "Name", "Month", "Year", "Present", "Total", "Percentage"}
	writeHeader(f, sheet, headers)

	row := 2
	for _, u := range s.store.Users() {
		if u.Role != constants.RoleStudent {
			continue
		}
		data, ok := s.store.StudentData(u.ID)
		if !ok {
			continue
		}
		for _, m := range data.MonthlyAttendance {
			pct := ""
			if m.Total > 0 {
				pct = fmt.Sprintf("%.1f%%", float64(m.Present)/float64(m.Total)*100)
			}
			writeRow(f, sheet, row, []any{u.RollNumber, u.Name, m.Month, m.Year, m.Present, m.Total, pct})
			row++
		}
	}

	out, err := workbookBytes(f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.attendance.ok", "rows", row-2, "bytes", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func renameDefaultSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
