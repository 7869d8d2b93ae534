package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townboard/eventboard/config"
	"github.com/townboard/eventboard/controllers"
	"github.com/townboard/eventboard/media"
	"github.com/townboard/eventboard/middleware"
	"github.com/townboard/eventboard/models"
	"github.com/townboard/eventboard/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store *media.Store) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Range"},
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "Accept-Ranges"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	eventStore := models.NewEventStore(db)
	ingestor := media.NewIngestor(store, cfg.UploadMaxBytes)
	lifecycle := media.NewLifecycle(store, ingestor, eventStore, utils.Sugar)
	events := controllers.NewEventController(lifecycle)
	adminController := controllers.NewAdminController(db)
	mediaController := controllers.NewMediaController(store, cfg.ChunkCapBytes)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/events", events.ListEvents)

	mutating := api.Group("")
	mutating.Use(middleware.RateLimitMiddleware())
	mutating.POST("/events", events.CreateEvent)
	mutating.POST("/admin/change-password", adminController.ChangePassword)

	gated := api.Group("")
	gated.Use(middleware.RateLimitMiddleware(), middleware.AdminGate(db))
	gated.PUT("/events/:id", events.UpdateEvent)
	gated.DELETE("/events/:id", events.DeleteEvent)

	r.GET("/media/*filepath", mediaController.Serve)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, "api route not found")
			return
		}
		// Serve the public front end, falling back to the board page.
		clean := filepath.Clean(strings.TrimPrefix(path, "/"))
		if clean != "." && !strings.HasPrefix(clean, "..") {
			candidate := filepath.Join("public", clean)
			if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
				ctx.File(candidate)
				return
			}
		}
		ctx.File(filepath.Join("public", "index.html"))
	})

	return r
}
