package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/minibbs/config"
	"github.com/cppla/minibbs/controllers"
	"github.com/cppla/minibbs/middleware"
	"github.com/cppla/minibbs/store"
	"github.com/cppla/minibbs/templates"
	"github.com/cppla/minibbs/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, forum *store.ForumStore, sessions utils.SessionStore) (*gin.Engine, error) {
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
		utils.Logger.Warn("gin logger unavailable, using default recovery", zap.Error(err))
		r.Use(gin.Recovery())
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.MaxContentLength))

	tmpl, err := templates.Parse(utils.TemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})

	forumController := controllers.NewForumController(forum, cfg)
	apiController := controllers.NewAPIController(forum, cfg)
	statsController := controllers.NewStatsController(forum)

	pages := r.Group("")
	pages.Use(middleware.Sessions(sessions, utils.Logger))
	pages.Use(middleware.CSRF(sessions, middleware.NewCSRFGuard(), utils.Logger))
	pages.GET("/", forumController.Index)
	pages.GET("/thread/:id", forumController.ShowThread)
	pages.POST("/thread", forumController.CreateThread)
	pages.POST("/thread/:id/reply", forumController.Reply)
	pages.POST("/post/:id/comment", forumController.Comment)

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	api := r.Group("/api/v1")
	if corsCfg.AllowAllOrigins || len(corsCfg.AllowOrigins) > 0 {
		api.Use(cors.New(corsCfg))
	}
	api.GET("/categories", apiController.ListCategories)
	api.GET("/threads", apiController.ListThreads)
	api.GET("/threads/:id", apiController.GetThread)
	api.GET("/posts/recent", apiController.RecentPosts)
	api.GET("/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.String(http.StatusNotFound, "Not found")
	})

	return r, nil
}
