package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auth "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
)

// RegisterDirectorRoutes: lectura para cualquier usuario autenticado, escritura solo admin.
func RegisterDirectorRoutes(r *gin.RouterGroup, handler *DirectorHandler) {
	auth.Mount(r.Group("/director"), []auth.Route{
		{Method: http.MethodGet, Path: "", Policy: auth.Authenticated, Handler: handler.ListDirectors},
		{Method: http.MethodGet, Path: "/:id", Policy: auth.Authenticated, Handler: handler.GetDirector},
		{Method: http.MethodPost, Path: "", Policy: auth.Admin, Handler: handler.CreateDirector},
		{Method: http.MethodPatch, Path: "/:id", Policy: auth.Admin, Handler: handler.UpdateDirector},
		{Method: http.MethodDelete, Path: "/:id", Policy: auth.Admin, Handler: handler.DeleteDirector},
	})
}
