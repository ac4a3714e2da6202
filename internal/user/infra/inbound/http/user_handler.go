package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authHttp "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/cinelab/internal/shared/infra/utils"
	"github.com/davicafu/cinelab/internal/user/application"
	"github.com/davicafu/cinelab/internal/user/domain"
	"github.com/davicafu/cinelab/pkg/utils"
)

// UserHandler encapsula los endpoints HTTP relacionados con User
type UserHandler struct {
	service *application.UserService
}

func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ---------------- Requests ----------------

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     *int   `json:"role" binding:"omitempty,min=0,max=2"`
}

type updateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=1"`
	Role     *int    `json:"role" binding:"omitempty,min=0,max=2"`
}

// ---------------- Handlers ----------------

// CreateUser endpoint POST /user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	role := domain.Role(sharedUtils.Deref(req.Role, int(domain.RoleUser)))

	user, err := h.service.CreateUser(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetMe endpoint GET /user/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), authHttp.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUser endpoint GET /user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers endpoint GET /user?email=&role=&cursor=&order=&take=
func (h *UserHandler) ListUsers(c *gin.Context) {
	req, err := utils.BindCursorRequest(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	filter := domain.UserFilter{Email: c.Query("email")}
	if raw := c.Query("role"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !domain.Role(n).Valid() {
			utils.SendBadRequest(c, "invalid role")
			return
		}
		role := domain.Role(n)
		filter.Role = &role
	}

	page, err := h.service.ListUsers(c.Request.Context(), filter, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateUser endpoint PATCH /user/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	patch := domain.UserPatch{Email: req.Email, Password: req.Password}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser endpoint DELETE /user/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendBadRequest(c, "invalid user id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidUser),
		errors.Is(err, sharedQuery.ErrMalformedCursor),
		errors.Is(err, sharedQuery.ErrInvalidOrderDirection),
		errors.Is(err, sharedQuery.ErrInvalidOrderColumn),
		errors.Is(err, sharedQuery.ErrUnknownCursorColumn):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		utils.SendNotFound(c, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		utils.SendConflict(c, err.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}
