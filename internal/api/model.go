package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/geolens/internal/logger"
	"github.com/AI2HU/geolens/internal/models"
)

// listModels handles GET /api/v1/models: the text models available from
// every registered provider. A provider that fails to answer is skipped so
// one misconfigured API key does not hide the rest.
func (s *Server) listModels(c *gin.Context) {
	ctx := c.Request.Context()

	all := []models.ModelInfo{}
	for _, name := range s.registry.Names() {
		provider, ok := s.registry.Get(name)
		if !ok {
			continue
		}

		infos, err := provider.ListModels(ctx)
		if err != nil {
			logger.Warning("Failed to list models from %s: %v", name, err)
			continue
		}
		for _, info := range infos {
			if info.Provider == "" {
				info.Provider = name
			}
			all = append(all, info)
		}
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    gin.H{"models": all},
	})
}
