package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Service) exportRoster(c *gin.Context) {
	out, err := s.export.ExportRosterXLSX(c.Query("department"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, out)
}

func (s *Service) exportAttendance(c *gin.Context) {
	out, err := s.export.ExportAttendanceXLSX()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="attendance.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, out)
}
