package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinMiddleware())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	router.Use(OwnerMiddleware(cfg.OwnerID))

	healthController := NewHealthController(cfg.Health, cfg.Version)
	router.GET("/health", healthController.Status)

	if cfg.MediaDir != "" {
		mediaController := NewMediaController(cfg.Entries, cfg.MediaDir)
		mediaRoute := strings.TrimSuffix(cfg.MediaURLPrefix, "/") + "/:entry_id/:name"
		router.GET(mediaRoute, mediaController.ServeMedia)
		router.HEAD(mediaRoute, mediaController.ServeMedia)
	}

	api := router.Group("/api")
	{
		entriesController := NewEntriesController(cfg.Entries, cfg.Media)
		api.GET("/entries", entriesController.ListEntries)
		api.POST("/entries", entriesController.CreateEntry)
		api.GET("/entries/:id", entriesController.GetEntry)
		api.PUT("/entries/:id", entriesController.UpdateEntry)
		api.DELETE("/entries/:id", entriesController.DeleteEntry)

		tagsController := NewTagsController(cfg.Tags)
		api.GET("/tags", tagsController.GetAllTags)
		api.GET("/tags/usage", tagsController.GetTagUsage)

		promptsController := NewPromptsController(cfg.Questions)
		api.POST("/generate-question", promptsController.GenerateQuestion)
	}

	return router
}
