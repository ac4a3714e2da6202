package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registra las rutas de autenticación.
// register y login leen credenciales Basic, así que van fuera del grupo con BearerAuth.
func RegisterAuthRoutes(basic, bearer *gin.RouterGroup, handler *AuthHandler) {
	Mount(basic.Group("/auth"), []Route{
		{http.MethodPost, "/register", Public, handler.Register},
		{http.MethodPost, "/login", Public, handler.Login},
	})

	Mount(bearer.Group("/auth"), []Route{
		{http.MethodPost, "/token/block", Authenticated, handler.BlockToken},
		{http.MethodPost, "/token/access", RefreshOnly, handler.RotateAccessToken},
	})
}
