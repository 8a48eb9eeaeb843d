package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/entity"
)

// readUpload pulls the multipart "file" field into memory.
func (s *Service) readUpload(c *gin.Context) (string, []byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return "", nil, false
	}
	f, err := fh.Open()
	if err != nil {
		s.respondError(c, err)
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.respondError(c, err)
		return "", nil, false
	}
	return fh.Filename, data, true
}

// actingStaff resolves the optional scoping staff member from the
// staff_roll form field. Imports without it are admin-initiated.
func (s *Service) actingStaff(c *gin.Context) (*entity.User, bool) {
	roll := c.PostForm("staff_roll")
	if roll == "" {
		return nil, true
	}
	u, ok := s.store.FindByRoll(roll)
	if !ok || u.Role != constants.RoleStaff {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staff_roll does not match a staff member"})
		return nil, false
	}
	return &u, true
}

func (s *Service) startRosterImport(c *gin.Context) {
	filename, data, ok := s.readUpload(c)
	if !ok {
		return
	}
	staff, ok := s.actingStaff(c)
	if !ok {
		return
	}

	sess, err := s.importer.StartRoster(c.Request.Context(), filename, data, staff)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logger.Info("roster import in review",
		zap.String("session_id", sess.ID.String()),
		zap.Int("eligible", sess.Summary.Eligible),
	)
	c.JSON(http.StatusOK, sess)
}

func (s *Service) startAttendanceImport(c *gin.Context) {
	filename, data, ok := s.readUpload(c)
	if !ok {
		return
	}

	sess, err := s.importer.StartAttendance(c.Request.Context(), filename, data)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logger.Info("attendance import in review",
		zap.String("session_id", sess.ID.String()),
		zap.Int("eligible", sess.Summary.Eligible),
	)
	c.JSON(http.StatusOK, sess)
}

func (s *Service) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Service) getSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	sess, found := s.importer.Session(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Service) commitSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	sess, err := s.importer.Commit(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Service) cancelSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	sess, err := s.importer.Cancel(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
