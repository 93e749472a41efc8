package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/geolens/internal/models"
)

// CreateSessionRequest is the body of POST /api/v1/sessions
type CreateSessionRequest struct {
	Email string `json:"email" binding:"required"`
}

// createSession handles POST /api/v1/sessions. An existing session for the
// same email is refreshed and returned instead of creating a duplicate.
func (s *Server) createSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		s.errorResponse(c, http.StatusBadRequest, "Invalid email address")
		return
	}

	ctx := c.Request.Context()
	if existing, err := s.sql.GetSessionByEmail(ctx, email); err == nil {
		if err := s.sql.TouchSession(ctx, existing.ID); err == nil {
			s.successResponse(c, existing)
			return
		}
	}

	session := &models.Session{Email: email}
	if err := s.sql.CreateSession(ctx, session); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to create session: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    session,
		Message: "Session created successfully",
	})
}

// getSession handles GET /api/v1/sessions/:id
func (s *Server) getSession(c *gin.Context) {
	session, err := s.sql.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Session not found: "+err.Error())
		return
	}
	s.successResponse(c, session)
}
