package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-favorites/internal/app"
	"github.com/qs-lzh/movie-favorites/internal/validation"
)

type UserHandler struct {
	app *app.App
}

func NewUserHandler(app *app.App) *UserHandler {
	return &UserHandler{
		app: app,
	}
}

func (h *UserHandler) HandleList(ctx *gin.Context) {
	page, ok := bindPage(ctx)
	if !ok {
		return
	}
	users, err := h.app.UserService.ListUsers(ctx.Request.Context(), page)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, emptyIfNil(users))
}

func (h *UserHandler) HandleCreate(ctx *gin.Context) {
	var req validation.UserCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	user, err := h.app.UserService.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, user)
}

func (h *UserHandler) HandleGet(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	user, err := h.app.UserService.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (h *UserHandler) HandleUpdate(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req validation.UserUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	user, err := h.app.UserService.UpdateUser(ctx.Request.Context(), id, req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (h *UserHandler) HandleDelete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if _, err := h.app.FavoriteWorkflow.DeleteUser(ctx.Request.Context(), id); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *UserHandler) HandleListFavorites(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	movies, err := h.app.FavoriteService.ListFavoriteMovies(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, emptyIfNil(movies))
}

func (h *UserHandler) HandleAddFavorite(ctx *gin.Context) {
	userID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	movieID, ok := parseID(ctx, "pelicula_id")
	if !ok {
		return
	}
	favorite, err := h.app.FavoriteWorkflow.AddFavorite(ctx.Request.Context(), userID, movieID)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Movie marked as favorite",
		"favorito": favorite,
	})
}

func (h *UserHandler) HandleRemoveFavorite(ctx *gin.Context) {
	userID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	movieID, ok := parseID(ctx, "pelicula_id")
	if !ok {
		return
	}
	if err := h.app.FavoriteWorkflow.RemoveFavorite(ctx.Request.Context(), userID, movieID); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *UserHandler) HandleStats(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	stats, err := h.app.StatsService.ComputeUserStats(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
