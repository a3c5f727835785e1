package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-favorites/internal/app"
	"github.com/qs-lzh/movie-favorites/internal/validation"
)

type MovieHandler struct {
	app *app.App
}

func NewMovieHandler(app *app.App) *MovieHandler {
	return &MovieHandler{
		app: app,
	}
}

func (h *MovieHandler) HandleList(ctx *gin.Context) {
	page, ok := bindPage(ctx)
	if !ok {
		return
	}
	movies, err := h.app.MovieService.ListMovies(ctx.Request.Context(), page)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, emptyIfNil(movies))
}

func (h *MovieHandler) HandleCreate(ctx *gin.Context) {
	var req validation.MovieCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	movie, err := h.app.MovieService.CreateMovie(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) HandleGet(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	movie, err := h.app.MovieService.GetMovieByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) HandleUpdate(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req validation.MovieUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	movie, err := h.app.MovieService.UpdateMovie(ctx.Request.Context(), id, req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) HandleDelete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if _, err := h.app.MovieService.DeleteMovie(ctx.Request.Context(), id); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *MovieHandler) HandleSearch(ctx *gin.Context) {
	var req validation.MovieSearch
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	movies, err := h.app.MovieService.SearchMovies(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, emptyIfNil(movies))
}
