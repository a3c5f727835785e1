package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-favorites/internal/app"
	"github.com/qs-lzh/movie-favorites/internal/database"
)

const healthCheckTimeout = 2 * time.Second

type SystemHandler struct {
	app *app.App
}

func NewSystemHandler(app *app.App) *SystemHandler {
	return &SystemHandler{
		app: app,
	}
}

func (h *SystemHandler) HandleRoot(ctx *gin.Context) {
	cfg := h.app.Config
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the " + cfg.AppName,
		"version": cfg.AppVersion,
		"endpoints_principales": gin.H{
			"usuarios":  "/api/usuarios",
			"peliculas": "/api/peliculas",
			"favoritos": "/api/favoritos",
		},
		"status":  "activo",
		"entorno": cfg.Env,
	})
}

// HandleHealth pings the database and answers 503 when it is unreachable.
func (h *SystemHandler) HandleHealth(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthCheckTimeout)
	defer cancel()

	status, code, dbStatus := "healthy", http.StatusOK, "connected"
	if err := database.Ping(pingCtx, h.app.DB); err != nil {
		h.app.Logger.Warn("health check failed", zap.Error(err))
		status, code, dbStatus = "unhealthy", http.StatusServiceUnavailable, "error: "+err.Error()
	}
	ctx.JSON(code, gin.H{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
