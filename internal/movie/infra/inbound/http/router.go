package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auth "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
)

// RegisterMovieRoutes registra las rutas del catálogo y la subida de vídeos.
func RegisterMovieRoutes(r *gin.RouterGroup, handler *MovieHandler) {
	auth.Mount(r.Group("/movie"), []auth.Route{
		{Method: http.MethodGet, Path: "", Policy: auth.Public, Handler: handler.ListMovies},
		{Method: http.MethodGet, Path: "/recent", Policy: auth.Public, Handler: handler.ListRecent},
		{Method: http.MethodGet, Path: "/analytics/trend", Policy: auth.Admin, Handler: handler.DailyTrend},
		{Method: http.MethodGet, Path: "/:id", Policy: auth.Public, Handler: handler.GetMovie},
		{Method: http.MethodPost, Path: "", Policy: auth.Admin, Handler: handler.CreateMovie},
		{Method: http.MethodPatch, Path: "/:id", Policy: auth.Admin, Handler: handler.UpdateMovie},
		{Method: http.MethodDelete, Path: "/:id", Policy: auth.Admin, Handler: handler.DeleteMovie},
		{Method: http.MethodPost, Path: "/:id/like", Policy: auth.Authenticated, Handler: handler.LikeMovie},
		{Method: http.MethodPost, Path: "/:id/dislike", Policy: auth.Authenticated, Handler: handler.DislikeMovie},
	})

	auth.Mount(r.Group("/common"), []auth.Route{
		{Method: http.MethodPost, Path: "/video", Policy: auth.Admin, Handler: handler.UploadVideo},
	})
}
