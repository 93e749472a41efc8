package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/geolens/internal/models"
	"github.com/AI2HU/geolens/internal/report"
)

// SendReportRequest is the body of POST /api/v1/reports
type SendReportRequest struct {
	SessionID  string `json:"session_id"`
	AnalysisID string `json:"analysis_id" binding:"required"`
	Recipient  string `json:"recipient" binding:"required"`
}

// sendReport handles POST /api/v1/reports: renders the analysis report and
// emails it to the recipient.
func (s *Server) sendReport(c *gin.Context) {
	var req SendReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	record, err := s.nosql.GetGeoAnalysis(ctx, req.AnalysisID)
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Analysis not found: "+err.Error())
		return
	}
	if record.Result == nil {
		s.errorResponse(c, http.StatusConflict, "Analysis has no result yet")
		return
	}

	rep, err := report.Build(record.Result)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to build report: "+err.Error())
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = record.SessionID
	}
	stored := &models.Report{
		SessionID: sessionID,
		BrandName: record.BrandName,
		Recipient: req.Recipient,
	}

	sendErr := s.mailer.Send(req.Recipient, rep)
	stored.EmailSent = sendErr == nil

	if err := s.nosql.CreateReport(ctx, stored); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to store report: "+err.Error())
		return
	}

	if sendErr != nil {
		s.errorResponse(c, http.StatusBadGateway, "Report stored but email delivery failed: "+sendErr.Error())
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    stored,
		Message: "Report sent successfully",
	})
}

// listReports handles GET /api/v1/reports?session_id=...
func (s *Server) listReports(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		s.errorResponse(c, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	reports, err := s.nosql.ListReports(c.Request.Context(), sessionID)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list reports: "+err.Error())
		return
	}
	s.successResponse(c, reports)
}
