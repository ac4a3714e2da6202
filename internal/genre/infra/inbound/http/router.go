package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auth "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
)

func RegisterGenreRoutes(r *gin.RouterGroup, handler *GenreHandler) {
	auth.Mount(r.Group("/genre"), []auth.Route{
		{Method: http.MethodGet, Path: "", Policy: auth.Authenticated, Handler: handler.ListGenres},
		{Method: http.MethodGet, Path: "/:id", Policy: auth.Authenticated, Handler: handler.GetGenre},
		{Method: http.MethodPost, Path: "", Policy: auth.Admin, Handler: handler.CreateGenre},
		{Method: http.MethodPatch, Path: "/:id", Policy: auth.Admin, Handler: handler.RenameGenre},
		{Method: http.MethodDelete, Path: "/:id", Policy: auth.Admin, Handler: handler.DeleteGenre},
	})
}
