package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/cinelab/internal/director/application"
	"github.com/davicafu/cinelab/internal/director/domain"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	"github.com/davicafu/cinelab/pkg/utils"
)

// DirectorHandler encapsula los endpoints HTTP de directores.
type DirectorHandler struct {
	service *application.DirectorService
}

func NewDirectorHandler(service *application.DirectorService) *DirectorHandler {
	return &DirectorHandler{service: service}
}

// dob admite YYYY-MM-DD o RFC3339.
type createDirectorRequest struct {
	Name        string `json:"name" binding:"required"`
	DOB         string `json:"dob" binding:"required"`
	Nationality string `json:"nationality" binding:"required"`
}

type updateDirectorRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	DOB         *string `json:"dob"`
	Nationality *string `json:"nationality" binding:"omitempty,min=1"`
}

// CreateDirector endpoint POST /director
func (h *DirectorHandler) CreateDirector(c *gin.Context) {
	var req createDirectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	dob, err := parseDate(req.DOB)
	if err != nil {
		utils.SendBadRequest(c, "invalid dob")
		return
	}

	d, err := h.service.CreateDirector(c.Request.Context(), req.Name, dob, req.Nationality)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// ListDirectors endpoint GET /director?name=&cursor=&order=&take=
func (h *DirectorHandler) ListDirectors(c *gin.Context) {
	req, err := utils.BindCursorRequest(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	page, err := h.service.ListDirectors(c.Request.Context(), domain.DirectorFilter{Name: c.Query("name")}, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetDirector endpoint GET /director/:id
func (h *DirectorHandler) GetDirector(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	d, err := h.service.GetDirector(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// UpdateDirector endpoint PATCH /director/:id
func (h *DirectorHandler) UpdateDirector(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateDirectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	patch := domain.DirectorPatch{Name: req.Name, Nationality: req.Nationality}
	if req.DOB != nil {
		dob, err := parseDate(*req.DOB)
		if err != nil {
			utils.SendBadRequest(c, "invalid dob")
			return
		}
		patch.DOB = &dob
	}

	d, err := h.service.UpdateDirector(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DeleteDirector endpoint DELETE /director/:id
func (h *DirectorHandler) DeleteDirector(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDirector(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendBadRequest(c, "invalid director id")
		return 0, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDirector),
		errors.Is(err, sharedQuery.ErrMalformedCursor),
		errors.Is(err, sharedQuery.ErrInvalidOrderDirection),
		errors.Is(err, sharedQuery.ErrInvalidOrderColumn),
		errors.Is(err, sharedQuery.ErrUnknownCursorColumn):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrDirectorNotFound):
		utils.SendNotFound(c, err.Error())
	case errors.Is(err, domain.ErrDirectorHasMovies):
		utils.SendConflict(c, err.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}
