package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authDomain "github.com/davicafu/cinelab/internal/auth/domain"
	authHttp "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
	"github.com/davicafu/cinelab/internal/movie/application"
	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
	"github.com/davicafu/cinelab/pkg/utils"
	"github.com/davicafu/cinelab/tests/mocks"
)

type movieServer struct {
	router    *gin.Engine
	repo      *mocks.InMemoryMovieRepo
	files     *mocks.MockMovieFileStorage
	analytics *mocks.MockMovieAnalyticsRepo
}

// fakeClaims sustituye a BearerAuth: "X-User: <id>:<role>" crea un access token ya validado.
func fakeClaims(c *gin.Context) {
	raw := c.GetHeader("X-User")
	if raw == "" {
		c.Next()
		return
	}
	parts := strings.SplitN(raw, ":", 2)
	id, _ := strconv.ParseInt(parts[0], 10, 64)
	role, _ := strconv.Atoi(parts[1])
	authHttp.SetClaims(c, authDomain.Claims{UserID: id, Role: userDomain.Role(role), Type: authDomain.AccessToken})
	c.Next()
}

func setupMovieServer(t *testing.T, withAnalytics bool) *movieServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())

	repo := mocks.NewInMemoryMovieRepo()
	repo.Users[1] = true
	repo.Users[2] = true
	catalog := mocks.CatalogStub{
		Directors: map[int64]bool{1: true},
		Genres:    map[int64]bool{1: true, 2: true},
	}
	files := new(mocks.MockMovieFileStorage)
	movies := application.NewMovieService(repo, catalog, catalog, files, mocks.NewDummyCache(), zap.NewNop())

	analytics := new(mocks.MockMovieAnalyticsRepo)
	var activity *application.ActivityService
	if withAnalytics {
		activity = application.NewActivityService(analytics, 10, zap.NewNop())
	} else {
		activity = application.NewActivityService(nil, 10, zap.NewNop())
	}

	r := gin.New()
	g := r.Group("/")
	g.Use(fakeClaims)
	RegisterMovieRoutes(g, NewMovieHandler(movies, activity))

	return &movieServer{router: r, repo: repo, files: files, analytics: analytics}
}

const (
	adminUser = "1:0"
	plainUser = "2:2"
)

func (s *movieServer) do(method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *movieServer) seed(title string) *movieDomain.Movie {
	s.files.On("Promote", mock.Anything, "f.mp4").Return("movie/f.mp4", nil)
	body := `{"title":"` + title + `","detail":"d","directorId":1,"genreIds":[1,2],"movieFileName":"f.mp4"}`
	rec := s.do(http.MethodPost, "/movie", adminUser, body)
	if rec.Code != http.StatusCreated {
		panic(rec.Body.String())
	}
	var m movieDomain.Movie
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		panic(err)
	}
	return &m
}

func TestCreateMovie(t *testing.T) {
	s := setupMovieServer(t, false)

	m := s.seed("Alien")
	assert.Equal(t, "Alien", m.Title)
	assert.Equal(t, int64(1), m.CreatorID)
	assert.Equal(t, "movie/f.mp4", m.MovieFilePath)

	cases := []struct {
		name string
		user string
		body string
		want int
	}{
		{"anonymous", "", `{}`, http.StatusUnauthorized},
		{"not admin", plainUser, `{}`, http.StatusForbidden},
		{"missing fields", adminUser, `{"title":"x"}`, http.StatusBadRequest},
		{"not mp4", adminUser, `{"title":"x","detail":"d","directorId":1,"genreIds":[1],"movieFileName":"f.avi"}`, http.StatusBadRequest},
		{"unknown director", adminUser, `{"title":"x","detail":"d","directorId":9,"genreIds":[1],"movieFileName":"f.mp4"}`, http.StatusNotFound},
		{"unknown genre", adminUser, `{"title":"x","detail":"d","directorId":1,"genreIds":[7],"movieFileName":"f.mp4"}`, http.StatusNotFound},
		{"duplicate title", adminUser, `{"title":"Alien","detail":"d","directorId":1,"genreIds":[1],"movieFileName":"f.mp4"}`, http.StatusConflict},
	}
	s.files.On("Demote", mock.Anything, "f.mp4").Return(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/movie", tc.user, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestListAndGetMovie(t *testing.T) {
	s := setupMovieServer(t, false)
	alien := s.seed("Alien")
	s.seed("Aliens")

	rec := s.do(http.MethodGet, "/movie?title=alien&take=5&order=title_ASC", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data       []movieDomain.Movie `json:"data"`
		NextCursor *string             `json:"nextCursor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 5, s.repo.LastReq.Take)
	assert.Equal(t, []string{"title_ASC"}, s.repo.LastReq.Order)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/movie?directorId=abc", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/movie?take=-3", "", "").Code)

	get := s.do(http.MethodGet, "/movie/"+strconv.FormatInt(alien.ID, 10), "", "")
	require.Equal(t, http.StatusOK, get.Code)
	assert.Contains(t, get.Body.String(), `"title":"Alien"`)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/movie/999", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/movie/abc", "", "").Code)

	recent := s.do(http.MethodGet, "/movie/recent", "", "")
	require.Equal(t, http.StatusOK, recent.Code)
	var movies []movieDomain.Movie
	require.NoError(t, json.Unmarshal(recent.Body.Bytes(), &movies))
	assert.Len(t, movies, 2)
}

func TestUpdateAndDeleteMovie(t *testing.T) {
	s := setupMovieServer(t, false)
	m := s.seed("Alien")
	path := "/movie/" + strconv.FormatInt(m.ID, 10)

	rec := s.do(http.MethodPatch, path, adminUser, `{"title":"Alien: Director's Cut","genreIds":[2]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated movieDomain.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Alien: Director's Cut", updated.Title)
	assert.Equal(t, []int64{2}, updated.GenreIDs)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, path, plainUser, `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, path, adminUser, `{"title":""}`).Code)

	del := s.do(http.MethodDelete, path, adminUser, "")
	require.Equal(t, http.StatusOK, del.Code)
	assert.Equal(t, strconv.FormatInt(m.ID, 10), del.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, adminUser, "").Code)
}

func TestToggleLike(t *testing.T) {
	s := setupMovieServer(t, false)
	m := s.seed("Alien")
	path := "/movie/" + strconv.FormatInt(m.ID, 10)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, path+"/like", "", "").Code)

	like := s.do(http.MethodPost, path+"/like", plainUser, "")
	require.Equal(t, http.StatusCreated, like.Code)
	assert.JSONEq(t, `{"isLike":true}`, like.Body.String())

	flip := s.do(http.MethodPost, path+"/dislike", plainUser, "")
	assert.JSONEq(t, `{"isLike":false}`, flip.Body.String())

	undo := s.do(http.MethodPost, path+"/dislike", plainUser, "")
	assert.JSONEq(t, `{"isLike":null}`, undo.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/movie/999/like", plainUser, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, path+"/like", "77:2", "").Code)
}

func TestDailyTrend(t *testing.T) {
	disabled := setupMovieServer(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, disabled.do(http.MethodGet, "/movie/analytics/trend", adminUser, "").Code)

	s := setupMovieServer(t, true)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.analytics.On("GetDailyTrend", mock.Anything, day, day.AddDate(0, 0, 2)).
		Return([]movieDomain.DailyMovieTrend{{Day: day, Created: 3, Likes: 1}}, nil).Once()

	rec := s.do(http.MethodGet, "/movie/analytics/trend?start=2024-05-01&end=2024-05-03", adminUser, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"created":3`)
	s.analytics.AssertExpectations(t)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/movie/analytics/trend?start=2024-05-03&end=2024-05-01", adminUser, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/movie/analytics/trend?start=yesterday", adminUser, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/movie/analytics/trend", plainUser, "").Code)
}

func videoRequest(t *testing.T, filename, contentType string, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="video"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/common/video", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-User", adminUser)
	return req
}

func TestUploadVideo(t *testing.T) {
	s := setupMovieServer(t, false)
	s.files.On("SaveTemp", mock.Anything, mock.Anything).Return("3f1c.mp4", nil).Once()

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, videoRequest(t, "clip.mp4", "video/mp4", 128))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"filename":"3f1c.mp4"}`, rec.Body.String())

	wrongType := httptest.NewRecorder()
	s.router.ServeHTTP(wrongType, videoRequest(t, "clip.mp4", "application/octet-stream", 16))
	assert.Equal(t, http.StatusBadRequest, wrongType.Code)

	wrongName := httptest.NewRecorder()
	s.router.ServeHTTP(wrongName, videoRequest(t, "clip.mov", "video/mp4", 16))
	assert.Equal(t, http.StatusBadRequest, wrongName.Code)

	tooBig := httptest.NewRecorder()
	s.router.ServeHTTP(tooBig, videoRequest(t, "clip.mp4", "video/mp4", maxVideoSize+1))
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, tooBig.Code)

	s.files.AssertExpectations(t)
}
