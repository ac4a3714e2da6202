package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/cinelab/internal/genre/application"
	"github.com/davicafu/cinelab/internal/genre/domain"
	"github.com/davicafu/cinelab/pkg/utils"
)

type GenreHandler struct {
	service *application.GenreService
}

func NewGenreHandler(service *application.GenreService) *GenreHandler {
	return &GenreHandler{service: service}
}

type genreRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateGenre endpoint POST /genre
func (h *GenreHandler) CreateGenre(c *gin.Context) {
	var req genreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	g, err := h.service.CreateGenre(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// ListGenres endpoint GET /genre
func (h *GenreHandler) ListGenres(c *gin.Context) {
	genres, err := h.service.ListGenres(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

// GetGenre endpoint GET /genre/:id
func (h *GenreHandler) GetGenre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	g, err := h.service.GetGenre(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// RenameGenre endpoint PATCH /genre/:id
func (h *GenreHandler) RenameGenre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req genreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	g, err := h.service.RenameGenre(c.Request.Context(), id, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// DeleteGenre endpoint DELETE /genre/:id
func (h *GenreHandler) DeleteGenre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteGenre(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendBadRequest(c, "invalid genre id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidGenre):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrGenreNotFound):
		utils.SendNotFound(c, err.Error())
	case errors.Is(err, domain.ErrGenreAlreadyExists):
		utils.SendConflict(c, err.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}
