package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/AI2HU/geolens/internal/models"
)

// CreateScheduleRequest is the body of POST /api/v1/schedules
type CreateScheduleRequest struct {
	Name      string                 `json:"name" binding:"required"`
	SessionID string                 `json:"session_id"`
	Request   models.AnalysisRequest `json:"request" binding:"required"`
	CronExpr  string                 `json:"cron_expr" binding:"required"`
	Enabled   bool                   `json:"enabled"`
}

// UpdateScheduleRequest is the body of PUT /api/v1/schedules/:id
type UpdateScheduleRequest struct {
	Name     string                  `json:"name,omitempty"`
	Request  *models.AnalysisRequest `json:"request,omitempty"`
	CronExpr string                  `json:"cron_expr,omitempty"`
	Enabled  *bool                   `json:"enabled,omitempty"`
}

func validCronExpr(expr string) bool {
	_, err := cron.ParseStandard(expr)
	return err == nil
}

// createSchedule handles POST /api/v1/schedules
func (s *Server) createSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := req.Request.Validate(); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid analysis request: "+err.Error())
		return
	}
	if !validCronExpr(req.CronExpr) {
		s.errorResponse(c, http.StatusBadRequest, "Invalid cron expression: "+req.CronExpr)
		return
	}

	schedule := &models.Schedule{
		Name:      req.Name,
		SessionID: req.SessionID,
		Request:   req.Request,
		CronExpr:  req.CronExpr,
		Enabled:   req.Enabled,
	}

	if err := s.sql.CreateSchedule(c.Request.Context(), schedule); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to create schedule: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    schedule,
		Message: "Schedule created successfully",
	})
}

// listSchedules handles GET /api/v1/schedules
func (s *Server) listSchedules(c *gin.Context) {
	enabledStr := c.Query("enabled")
	var enabled *bool

	if enabledStr != "" {
		if enabledStr == "true" {
			enabled = &[]bool{true}[0]
		} else if enabledStr == "false" {
			enabled = &[]bool{false}[0]
		}
	}

	page, limit := s.parsePagination(c)

	schedules, err := s.sql.ListSchedules(c.Request.Context(), enabled)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list schedules: "+err.Error())
		return
	}

	// Apply pagination
	total := len(schedules)
	start := (page - 1) * limit
	end := start + limit

	if start >= total {
		schedules = []*models.Schedule{}
	} else {
		if end > total {
			end = total
		}
		schedules = schedules[start:end]
	}

	totalPages := (total + limit - 1) / limit

	c.JSON(http.StatusOK, PaginatedResponse{
		Data: schedules,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      int64(total),
			TotalPages: totalPages,
		},
	})
}

// getSchedule handles GET /api/v1/schedules/:id
func (s *Server) getSchedule(c *gin.Context) {
	schedule, err := s.sql.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Schedule not found: "+err.Error())
		return
	}
	s.successResponse(c, schedule)
}

// updateSchedule handles PUT /api/v1/schedules/:id
func (s *Server) updateSchedule(c *gin.Context) {
	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	schedule, err := s.sql.GetSchedule(ctx, c.Param("id"))
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Schedule not found: "+err.Error())
		return
	}

	if req.Name != "" {
		schedule.Name = req.Name
	}
	if req.Request != nil {
		if err := req.Request.Validate(); err != nil {
			s.errorResponse(c, http.StatusBadRequest, "Invalid analysis request: "+err.Error())
			return
		}
		schedule.Request = *req.Request
	}
	if req.CronExpr != "" {
		if !validCronExpr(req.CronExpr) {
			s.errorResponse(c, http.StatusBadRequest, "Invalid cron expression: "+req.CronExpr)
			return
		}
		schedule.CronExpr = req.CronExpr
	}
	if req.Enabled != nil {
		schedule.Enabled = *req.Enabled
	}

	if err := s.sql.UpdateSchedule(ctx, schedule); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to update schedule: "+err.Error())
		return
	}

	s.successResponse(c, schedule)
}

// deleteSchedule handles DELETE /api/v1/schedules/:id
func (s *Server) deleteSchedule(c *gin.Context) {
	if err := s.sql.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		s.errorResponse(c, http.StatusNotFound, "Schedule not found: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Schedule deleted successfully",
	})
}
