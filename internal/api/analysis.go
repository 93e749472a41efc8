package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/geolens/internal/geo"
	"github.com/AI2HU/geolens/internal/logger"
	"github.com/AI2HU/geolens/internal/models"
)

// AnalysisRequest is the body of POST /api/v1/analyses and
// POST /api/v1/analyses/stream
type AnalysisRequest struct {
	SessionID   string         `json:"session_id"`
	BrandName   string         `json:"brand_name" binding:"required"`
	Competitors []string       `json:"competitors"`
	Queries     []models.Query `json:"queries" binding:"required"`
	Models      []string       `json:"models"`
}

func (s *Server) toAnalysisRequest(req *AnalysisRequest) *models.AnalysisRequest {
	llmModels := req.Models
	if len(llmModels) == 0 {
		llmModels = s.cfg.LLM.DefaultModels
	}
	return &models.AnalysisRequest{
		BrandName:   req.BrandName,
		Competitors: req.Competitors,
		Queries:     req.Queries,
		Models:      llmModels,
	}
}

// runAnalysis handles POST /api/v1/analyses: a blocking run returning the
// full result.
func (s *Server) runAnalysis(c *gin.Context) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	analysisReq := s.toAnalysisRequest(&req)

	record := s.startRecord(c, &req, analysisReq)

	result, err := s.analyzer.Run(ctx, analysisReq)
	if err != nil {
		s.finishRecord(c, record, nil, "failed")
		s.errorResponse(c, http.StatusBadRequest, "Analysis failed: "+err.Error())
		return
	}
	s.finishRecord(c, record, result, "completed")

	s.successResponse(c, result)
}

// streamAnalysis handles POST /api/v1/analyses/stream: progress events and
// the final result as Server-Sent Events.
func (s *Server) streamAnalysis(c *gin.Context) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	analysisReq := s.toAnalysisRequest(&req)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, _ := c.Writer.(http.Flusher)
	writeFrame := func(payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}

	record := s.startRecord(c, &req, analysisReq)

	result, err := s.analyzer.RunStreaming(ctx, analysisReq, func(event geo.Event) {
		writeFrame(event)
	})
	if err != nil {
		s.finishRecord(c, record, nil, "failed")
		writeFrame(gin.H{"error": err.Error()})
		return
	}
	s.finishRecord(c, record, result, "completed")

	writeFrame(gin.H{
		"status":   "GEO analysis complete!",
		"step":     "result",
		"progress": 100,
		"result":   result,
	})
}

// startRecord persists a running analysis record when a session is attached.
// Persistence failures never block the analysis itself.
func (s *Server) startRecord(c *gin.Context, req *AnalysisRequest, analysisReq *models.AnalysisRequest) *models.GeoAnalysisRecord {
	if req.SessionID == "" {
		return nil
	}

	record := &models.GeoAnalysisRecord{
		SessionID:     req.SessionID,
		BrandName:     analysisReq.BrandName,
		SearchQueries: analysisReq.QueryStrings(),
		Competitors:   analysisReq.Competitors,
		LLMModels:     analysisReq.Models,
		Status:        "running",
	}
	if err := s.nosql.CreateGeoAnalysis(c.Request.Context(), record); err != nil {
		logger.Warning("Failed to create analysis record for session %s: %v", req.SessionID, err)
		return nil
	}
	return record
}

func (s *Server) finishRecord(c *gin.Context, record *models.GeoAnalysisRecord, result *models.AnalysisResult, status string) {
	if record == nil {
		return
	}
	if err := s.nosql.CompleteGeoAnalysis(c.Request.Context(), record.ID, result, status); err != nil {
		logger.Warning("Failed to finish analysis record %s: %v", record.ID, err)
	}
}

// listAnalyses handles GET /api/v1/analyses?session_id=...
func (s *Server) listAnalyses(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		s.errorResponse(c, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	records, err := s.nosql.ListGeoAnalyses(c.Request.Context(), sessionID)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list analyses: "+err.Error())
		return
	}
	s.successResponse(c, records)
}

// getAnalysis handles GET /api/v1/analyses/:id
func (s *Server) getAnalysis(c *gin.Context) {
	record, err := s.nosql.GetGeoAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Analysis not found: "+err.Error())
		return
	}
	s.successResponse(c, record)
}
