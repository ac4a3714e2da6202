package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/cinelab/internal/auth/application"
	"github.com/davicafu/cinelab/internal/auth/domain"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
	"github.com/davicafu/cinelab/pkg/utils"
)

// AuthHandler expone registro, login y gestión de tokens.
type AuthHandler struct {
	service *application.AuthService
}

func NewAuthHandler(service *application.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register endpoint POST /auth/register (Authorization: Basic)
func (h *AuthHandler) Register(c *gin.Context) {
	user, err := h.service.Register(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login endpoint POST /auth/login (Authorization: Basic)
func (h *AuthHandler) Login(c *gin.Context) {
	pair, err := h.service.Login(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pair)
}

// BlockToken endpoint POST /auth/token/block
func (h *AuthHandler) BlockToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	if err := h.service.BlockToken(c.Request.Context(), req.Token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, true)
}

// RotateAccessToken endpoint POST /auth/token/access (Authorization: Bearer <refresh>)
func (h *AuthHandler) RotateAccessToken(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		utils.SendUnauthorized(c, domain.ErrAuthRequired.Error())
		return
	}

	token, err := h.service.RotateAccessToken(claims)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"accessToken": token})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedHeader),
		errors.Is(err, userDomain.ErrInvalidUser):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, userDomain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenBlocked),
		errors.Is(err, domain.ErrWrongTokenType):
		utils.SendUnauthorized(c, err.Error())
	case errors.Is(err, userDomain.ErrUserAlreadyExists):
		utils.SendConflict(c, err.Error())
	case errors.Is(err, domain.ErrBlockUnavailable):
		utils.SendServiceUnavailable(c, err.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}
