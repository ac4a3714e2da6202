package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/cinelab/internal/auth/domain"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
	"github.com/davicafu/cinelab/pkg/utils"
)

const claimsKey = "auth.claims"

// Authorizer valida la cabecera Authorization completa.
type Authorizer interface {
	Authorize(ctx context.Context, header string) (domain.Claims, error)
}

// BearerAuth resuelve el token si viene; sin cabecera la petición sigue como anónima
// y es Guard quien decide si la ruta lo permite.
func BearerAuth(auth Authorizer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		claims, err := auth.Authorize(c.Request.Context(), header)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, domain.ErrMalformedHeader) {
				status = http.StatusBadRequest
			}
			log.Debug("Rejected bearer token", zap.String("path", c.FullPath()), zap.Error(err))
			utils.AbortWithError(c, status, err.Error())
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// ---------- Políticas de acceso ----------

// Policy describe quién puede llamar a una ruta.
// Role es el rol mínimo: RoleAdmin(0) < RolePaidUser(1) < RoleUser(2).
type Policy struct {
	Public  bool
	Refresh bool
	Role    userDomain.Role
}

var (
	Public        = Policy{Public: true}
	Authenticated = Policy{Role: userDomain.RoleUser}
	PaidUser      = Policy{Role: userDomain.RolePaidUser}
	Admin         = Policy{Role: userDomain.RoleAdmin}
	RefreshOnly   = Policy{Refresh: true, Role: userDomain.RoleUser}
)

func Guard(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p.Public {
			c.Next()
			return
		}

		claims, ok := ClaimsFrom(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, domain.ErrAuthRequired.Error())
			return
		}

		want := domain.AccessToken
		if p.Refresh {
			want = domain.RefreshToken
		}
		if claims.Type != want {
			utils.AbortWithError(c, http.StatusUnauthorized, domain.ErrWrongTokenType.Error())
			return
		}
		if !claims.Role.Allows(p.Role) {
			utils.AbortWithError(c, http.StatusForbidden, domain.ErrForbidden.Error())
			return
		}

		c.Next()
	}
}

func SetClaims(c *gin.Context, claims domain.Claims) {
	c.Set(claimsKey, claims)
}

func ClaimsFrom(c *gin.Context) (domain.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return domain.Claims{}, false
	}
	claims, ok := v.(domain.Claims)
	return claims, ok
}

// UserID devuelve el usuario de un access token válido, 0 si es anónimo.
func UserID(c *gin.Context) int64 {
	claims, ok := ClaimsFrom(c)
	if !ok || claims.Type != domain.AccessToken {
		return 0
	}
	return claims.UserID
}

// ---------- Rutas ----------

// Route une un endpoint con su política.
type Route struct {
	Method  string
	Path    string
	Policy  Policy
	Handler gin.HandlerFunc
}

// Mount registra las rutas en el grupo anteponiendo su Guard.
func Mount(g *gin.RouterGroup, routes []Route) {
	for _, r := range routes {
		g.Handle(r.Method, r.Path, Guard(r.Policy), r.Handler)
	}
}
