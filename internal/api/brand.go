package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/geolens/internal/logger"
	"github.com/AI2HU/geolens/internal/models"
	"github.com/AI2HU/geolens/internal/services"
)

// DiscoverBrandRequest is the body of POST /api/v1/brand-info
type DiscoverBrandRequest struct {
	BrandName    string `json:"brand_name" binding:"required"`
	BrandWebsite string `json:"brand_website"`
	BrandCountry string `json:"brand_country"`
	SessionID    string `json:"session_id"`
}

// discoverBrand handles POST /api/v1/brand-info: description, industry and
// competitor discovery for a brand name.
func (s *Server) discoverBrand(c *gin.Context) {
	var req DiscoverBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	info, err := s.brandService.Discover(ctx, req.BrandName, req.BrandWebsite, req.BrandCountry)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Brand discovery failed: "+err.Error())
		return
	}

	if req.SessionID != "" {
		record := &models.BrandAnalysisRecord{
			SessionID: req.SessionID,
			Brand:     *info,
			Status:    "completed",
		}
		if err := s.nosql.CreateBrandAnalysis(ctx, record); err != nil {
			logger.Warning("Failed to persist brand analysis for session %s: %v", req.SessionID, err)
		}
	}

	s.successResponse(c, info)
}

// GenerateQueriesRequest is the body of POST /api/v1/generate-queries
type GenerateQueriesRequest struct {
	BrandName        string `json:"brand_name" binding:"required"`
	BrandCountry     string `json:"brand_country"`
	BrandDescription string `json:"brand_description"`
	BrandIndustry    string `json:"brand_industry" binding:"required"`
	TotalQueries     int    `json:"total_queries"`
}

// generateQueries handles POST /api/v1/generate-queries
func (s *Server) generateQueries(c *gin.Context) {
	var req GenerateQueriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	queries, err := s.queryService.GenerateQueries(c.Request.Context(), &services.GenerationRequest{
		BrandName:   req.BrandName,
		Country:     req.BrandCountry,
		Description: req.BrandDescription,
		Industry:    req.BrandIndustry,
		Count:       req.TotalQueries,
	})
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Query generation failed: "+err.Error())
		return
	}

	s.successResponse(c, gin.H{"queries": queries})
}
