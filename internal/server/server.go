// Package server exposes the portal over HTTP: the two import flows, roster
// CRUD, and XLSX report downloads.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpcollege/studentportal/internal/common"
	"github.com/kpcollege/studentportal/internal/export"
	"github.com/kpcollege/studentportal/internal/importer"
	"github.com/kpcollege/studentportal/internal/store"
)

type Service struct {
	store    *store.Store
	importer *importer.Service
	export   *export.Service
	logger   *zap.Logger
}

func NewService(st *store.Store, imp *importer.Service, exp *export.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, importer: imp, export: exp, logger: logger}
}

// Router builds the gin engine with all portal routes registered.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/import/roster", s.startRosterImport)
		api.POST("/import/attendance", s.startAttendanceImport)
		api.GET("/import/sessions/:id", s.getSession)
		api.POST("/import/sessions/:id/commit", s.commitSession)
		api.POST("/import/sessions/:id/cancel", s.cancelSession)

		api.GET("/students", s.listStudents)
		api.POST("/students", s.addStudent)
		api.GET("/students/:id/data", s.getStudentData)
		api.PUT("/users/:id", s.updateUser)
		api.DELETE("/users/:id", s.deleteUser)

		api.GET("/export/roster.xlsx", s.exportRoster)
		api.GET("/export/attendance.xlsx", s.exportAttendance)
	}
	return r
}

// respondError maps application errors onto HTTP statuses. Whole-flow import
// errors are client-visible 4xx with the message passed through verbatim.
func (s *Service) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateRollNumber),
		errors.Is(err, common.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, common.ErrInvalidInput),
		importer.IsWholeFlowError(err):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
	} else {
		s.logger.Warn("request rejected", zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
