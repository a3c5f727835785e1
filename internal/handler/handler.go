package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-favorites/internal/middleware"
	"github.com/qs-lzh/movie-favorites/internal/service"
	"github.com/qs-lzh/movie-favorites/internal/validation"
)

// respondError maps a service error onto a status code and the
// {"error","message"} body shared by every endpoint.
func respondError(ctx *gin.Context, logger *zap.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input",
			"message": verr.Error(),
			"details": verr.Fields,
		})
	case errors.Is(err, service.ErrConflict):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Conflict",
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
	default:
		_ = ctx.Error(err)
		logger.Error("request failed",
			zap.String("route", ctx.FullPath()),
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.Error(err),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to process the request, please try again later",
		})
	}
}

func respondBadRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request format",
		"message": err.Error(),
	})
}

// parseID reads a positive numeric path parameter.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(ctx, fmt.Errorf("%s must be a positive integer, got %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

// bindPage reads skip/limit, defaulting to the first 100 records.
func bindPage(ctx *gin.Context) (validation.Page, bool) {
	page := validation.DefaultPage()
	if err := ctx.ShouldBindQuery(&page); err != nil {
		respondBadRequest(ctx, err)
		return page, false
	}
	return page, true
}

// emptyIfNil keeps empty listings encoded as [] rather than null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
