package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	authHttp "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
	"github.com/davicafu/cinelab/internal/movie/application"
	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	"github.com/davicafu/cinelab/pkg/utils"
)

const (
	maxVideoSize   = 10 << 20
	videoFormField = "video"
	videoMIME      = "video/mp4"
	trendDays      = 7
)

// MovieHandler encapsula los endpoints HTTP del catálogo.
type MovieHandler struct {
	movies   *application.MovieService
	activity *application.ActivityService
}

func NewMovieHandler(movies *application.MovieService, activity *application.ActivityService) *MovieHandler {
	return &MovieHandler{movies: movies, activity: activity}
}

type createMovieRequest struct {
	Title         string  `json:"title" binding:"required"`
	Detail        string  `json:"detail" binding:"required"`
	DirectorID    int64   `json:"directorId" binding:"required,gt=0"`
	GenreIDs      []int64 `json:"genreIds" binding:"required,min=1,dive,gt=0"`
	MovieFileName string  `json:"movieFileName" binding:"required,mp4"`
}

// Usamos punteros para que los campos sean opcionales en el JSON
type updateMovieRequest struct {
	Title      *string `json:"title" binding:"omitempty,min=1"`
	Detail     *string `json:"detail" binding:"omitempty,min=1"`
	DirectorID *int64  `json:"directorId" binding:"omitempty,gt=0"`
	GenreIDs   []int64 `json:"genreIds" binding:"omitempty,min=1,dive,gt=0"`
}

// --- Handlers CRUD ---

// ListMovies endpoint GET /movie?title=&directorId=&cursor=&order=&take=
func (h *MovieHandler) ListMovies(c *gin.Context) {
	req, err := utils.BindCursorRequest(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	filter := movieDomain.MovieFilter{Title: c.Query("title")}
	if raw := c.Query("directorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.SendBadRequest(c, "invalid directorId")
			return
		}
		filter.DirectorID = id
	}

	page, err := h.movies.ListMovies(c.Request.Context(), filter, req, authHttp.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListRecent endpoint GET /movie/recent
func (h *MovieHandler) ListRecent(c *gin.Context) {
	movies, err := h.movies.ListRecent(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// GetMovie endpoint GET /movie/:id
func (h *MovieHandler) GetMovie(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	movie, err := h.movies.GetMovie(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// CreateMovie endpoint POST /movie
func (h *MovieHandler) CreateMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	movie, err := h.movies.CreateMovie(c.Request.Context(), movieDomain.NewMovie{
		Title:         req.Title,
		Detail:        req.Detail,
		DirectorID:    req.DirectorID,
		GenreIDs:      req.GenreIDs,
		MovieFileName: req.MovieFileName,
	}, authHttp.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

// UpdateMovie endpoint PATCH /movie/:id
func (h *MovieHandler) UpdateMovie(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	movie, err := h.movies.UpdateMovie(c.Request.Context(), id, movieDomain.MoviePatch{
		Title:      req.Title,
		Detail:     req.Detail,
		DirectorID: req.DirectorID,
		GenreIDs:   req.GenreIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// DeleteMovie endpoint DELETE /movie/:id
func (h *MovieHandler) DeleteMovie(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.movies.DeleteMovie(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

// --- Reacciones ---

// LikeMovie endpoint POST /movie/:id/like
func (h *MovieHandler) LikeMovie(c *gin.Context) { h.toggle(c, true) }

// DislikeMovie endpoint POST /movie/:id/dislike
func (h *MovieHandler) DislikeMovie(c *gin.Context) { h.toggle(c, false) }

func (h *MovieHandler) toggle(c *gin.Context, isLike bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	status, err := h.movies.ToggleLike(c.Request.Context(), id, authHttp.UserID(c), isLike)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"isLike": status})
}

// --- Analítica ---

// DailyTrend endpoint GET /movie/analytics/trend?start=&end=
// Fechas en RFC3339 o YYYY-MM-DD; por defecto los últimos 7 días.
func (h *MovieHandler) DailyTrend(c *gin.Context) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -trendDays)

	var err error
	if raw := c.Query("start"); raw != "" {
		if start, err = parseDate(raw); err != nil {
			utils.SendBadRequest(c, "invalid start date")
			return
		}
	}
	if raw := c.Query("end"); raw != "" {
		if end, err = parseDate(raw); err != nil {
			utils.SendBadRequest(c, "invalid end date")
			return
		}
	}

	trend, err := h.activity.DailyTrend(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

// --- Subida de vídeo ---

// UploadVideo endpoint POST /common/video (multipart, campo "video")
func (h *MovieHandler) UploadVideo(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxVideoSize)

	header, err := c.FormFile(videoFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.SendError(c, http.StatusRequestEntityTooLarge, "video exceeds 10MB")
			return
		}
		utils.SendBadRequest(c, "video file is required")
		return
	}
	if header.Header.Get("Content-Type") != videoMIME || !utils.IsMP4Name(header.Filename) {
		utils.SendBadRequest(c, "only mp4 videos are accepted")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}
	defer file.Close()

	name, err := h.movies.UploadMovieFile(c.Request.Context(), file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"filename": name})
}

// --- Helpers ---

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendBadRequest(c, "invalid movie id")
		return 0, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sharedQuery.ErrMalformedCursor),
		errors.Is(err, sharedQuery.ErrInvalidOrderDirection),
		errors.Is(err, sharedQuery.ErrInvalidOrderColumn),
		errors.Is(err, sharedQuery.ErrUnknownCursorColumn),
		errors.Is(err, movieDomain.ErrInvalidMovieFile),
		errors.Is(err, movieDomain.ErrMovieFileNotFound),
		errors.Is(err, application.ErrInvalidRange):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, movieDomain.ErrMovieNotFound),
		errors.Is(err, movieDomain.ErrDirectorNotFound),
		errors.Is(err, movieDomain.ErrGenreNotFound):
		utils.SendNotFound(c, err.Error())
	case errors.Is(err, movieDomain.ErrMovieAlreadyExists):
		utils.SendConflict(c, err.Error())
	case errors.Is(err, movieDomain.ErrUnknownUser):
		utils.SendUnauthorized(c, err.Error())
	case errors.Is(err, movieDomain.ErrAnalyticsDisabled):
		utils.SendServiceUnavailable(c, err.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}
