package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/entity"
)

type addStudentRequest struct {
	Name           string  `json:"name" binding:"required"`
	RollNumber     string  `json:"roll_number"`
	Password       string  `json:"password"`
	Department     string  `json:"department" binding:"required"`
	Year           string  `json:"year" binding:"required"`
	Section        string  `json:"section"`
	IsLateralEntry bool    `json:"is_lateral_entry"`
	TotalFees      float64 `json:"total_fees"`
	PaidFees       float64 `json:"paid_fees"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
}

func (s *Service) listStudents(c *gin.Context) {
	out := make([]entity.User, 0)
	for _, u := range s.store.Users() {
		if u.Role == constants.RoleStudent {
			out = append(out, u)
		}
	}
	c.JSON(http.StatusOK, gin.H{"students": out, "count": len(out)})
}

// addStudent is the manual single-add path. It enforces the same uniqueness
// invariant as bulk import and synthesizes a roll number when none is given.
func (s *Service) addStudent(c *gin.Context) {
	var req addStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, data, err := s.importer.BuildManualStudent(entity.ParsedStudent{
		Name:           req.Name,
		RollNumber:     req.RollNumber,
		Department:     req.Department,
		Year:           req.Year,
		Section:        req.Section,
		IsLateralEntry: req.IsLateralEntry,
		TotalFees:      req.TotalFees,
		PaidFees:       req.PaidFees,
		Email:          req.Email,
		Phone:          req.Phone,
	}, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.AddUser(user, data); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Service) getStudentData(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id must be a UUID"})
		return
	}
	data, ok := s.store.StudentData(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no student data for user"})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Service) updateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id must be a UUID"})
		return
	}
	var u entity.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u.ID = id
	if err := s.store.UpdateUser(u); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Service) deleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id must be a UUID"})
		return
	}
	if err := s.store.DeleteUser(id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
