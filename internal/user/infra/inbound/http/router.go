package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auth "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
)

// RegisterUserRoutes: gestión de usuarios solo para admin, /me para cualquiera con sesión.
func RegisterUserRoutes(r *gin.RouterGroup, handler *UserHandler) {
	auth.Mount(r.Group("/user"), []auth.Route{
		{Method: http.MethodGet, Path: "/me", Policy: auth.Authenticated, Handler: handler.GetMe},
		{Method: http.MethodGet, Path: "", Policy: auth.Admin, Handler: handler.ListUsers},
		{Method: http.MethodGet, Path: "/:id", Policy: auth.Admin, Handler: handler.GetUser},
		{Method: http.MethodPost, Path: "", Policy: auth.Admin, Handler: handler.CreateUser},
		{Method: http.MethodPatch, Path: "/:id", Policy: auth.Admin, Handler: handler.UpdateUser},
		{Method: http.MethodDelete, Path: "/:id", Policy: auth.Admin, Handler: handler.DeleteUser},
	})
}
