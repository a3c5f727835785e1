package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-favorites/internal/app"
	"github.com/qs-lzh/movie-favorites/internal/metrics"
	"github.com/qs-lzh/movie-favorites/internal/middleware"
)

func NewRouter(app *app.App) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(app.Logger.Named("http")),
		middleware.Recovery(app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
		middleware.Metrics(app.Metrics),
	)

	system := NewSystemHandler(app)
	r.GET("/", system.HandleRoot)
	r.GET("/health", system.HandleHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler(app.Registry)))

	api := r.Group("/api")
	if app.Limiter != nil {
		api.Use(middleware.RateLimit(app.Limiter, app.Config.RateLimitCapacity, app.Logger.Named("ratelimit")))
	}

	users := NewUserHandler(app)
	usersGroup := api.Group("/usuarios")
	usersGroup.GET("", users.HandleList)
	usersGroup.POST("", users.HandleCreate)
	usersGroup.GET("/:id", users.HandleGet)
	usersGroup.PUT("/:id", users.HandleUpdate)
	usersGroup.DELETE("/:id", users.HandleDelete)
	usersGroup.GET("/:id/favoritos", users.HandleListFavorites)
	usersGroup.POST("/:id/favoritos/:pelicula_id", users.HandleAddFavorite)
	usersGroup.DELETE("/:id/favoritos/:pelicula_id", users.HandleRemoveFavorite)
	usersGroup.GET("/:id/estadisticas", users.HandleStats)

	movies := NewMovieHandler(app)
	moviesGroup := api.Group("/peliculas")
	moviesGroup.GET("", movies.HandleList)
	moviesGroup.POST("", movies.HandleCreate)
	moviesGroup.GET("/buscar", movies.HandleSearch)
	moviesGroup.GET("/:id", movies.HandleGet)
	moviesGroup.PUT("/:id", movies.HandleUpdate)
	moviesGroup.DELETE("/:id", movies.HandleDelete)

	favorites := NewFavoriteHandler(app)
	favoritesGroup := api.Group("/favoritos")
	favoritesGroup.GET("", favorites.HandleList)
	favoritesGroup.POST("", favorites.HandleCreate)
	favoritesGroup.GET("/:id", favorites.HandleGet)
	favoritesGroup.DELETE("/:id", favorites.HandleDelete)

	return r
}
