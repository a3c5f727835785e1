package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-favorites/internal/app"
	"github.com/qs-lzh/movie-favorites/internal/validation"
)

type FavoriteHandler struct {
	app *app.App
}

func NewFavoriteHandler(app *app.App) *FavoriteHandler {
	return &FavoriteHandler{
		app: app,
	}
}

func (h *FavoriteHandler) HandleList(ctx *gin.Context) {
	page, ok := bindPage(ctx)
	if !ok {
		return
	}
	favorites, err := h.app.FavoriteService.ListFavorites(ctx.Request.Context(), page)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, emptyIfNil(favorites))
}

func (h *FavoriteHandler) HandleCreate(ctx *gin.Context) {
	var req validation.FavoriteCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	favorite, err := h.app.FavoriteWorkflow.AddFavorite(ctx.Request.Context(), req.UserID, req.MovieID)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, favorite)
}

func (h *FavoriteHandler) HandleGet(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	favorite, err := h.app.FavoriteService.GetFavoriteByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, favorite)
}

func (h *FavoriteHandler) HandleDelete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := h.app.FavoriteWorkflow.RemoveFavoriteByID(ctx.Request.Context(), id); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
