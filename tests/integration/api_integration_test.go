package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authApp "github.com/davicafu/cinelab/internal/auth/application"
	authDomain "github.com/davicafu/cinelab/internal/auth/domain"
	authHttp "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
	authJwt "github.com/davicafu/cinelab/internal/auth/infra/outbound/jwt"
	directorApp "github.com/davicafu/cinelab/internal/director/application"
	directorHttp "github.com/davicafu/cinelab/internal/director/infra/inbound/http"
	directorRepo "github.com/davicafu/cinelab/internal/director/infra/outbound/db/sqldb"
	genreApp "github.com/davicafu/cinelab/internal/genre/application"
	genreHttp "github.com/davicafu/cinelab/internal/genre/infra/inbound/http"
	genreRepo "github.com/davicafu/cinelab/internal/genre/infra/outbound/db/sqldb"
	movieApp "github.com/davicafu/cinelab/internal/movie/application"
	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	movieHttp "github.com/davicafu/cinelab/internal/movie/infra/inbound/http"
	movieRepo "github.com/davicafu/cinelab/internal/movie/infra/outbound/db/sqldb"
	movieFiles "github.com/davicafu/cinelab/internal/movie/infra/outbound/filesystem"
	sharedCache "github.com/davicafu/cinelab/internal/shared/infra/platform/cache"
	sharedDB "github.com/davicafu/cinelab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	userApp "github.com/davicafu/cinelab/internal/user/application"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
	userHttp "github.com/davicafu/cinelab/internal/user/infra/inbound/http"
	userRepo "github.com/davicafu/cinelab/internal/user/infra/outbound/db/sqldb"
	"github.com/davicafu/cinelab/pkg/utils"
	"github.com/davicafu/cinelab/tests/mocks"
)

const (
	adminEmail    = "admin@cinelab.dev"
	adminPassword = "admin-secret"
)

type api struct {
	t      *testing.T
	router *gin.Engine
}

// setupAPI monta la aplicación completa sobre sqlite en memoria, igual que main.
func setupAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())
	ctx := context.Background()
	log := zap.NewNop()

	db, err := sharedDB.Open(ctx, sharedDB.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sharedDB.InitSchema(ctx, db, sharedDB.SQLite))

	cache := sharedCache.NewInMemoryCache(time.Minute, time.Minute)

	users := userApp.NewUserService(userRepo.NewUserRepoSQL(db, sharedDB.SQLite), mocks.PlainHasher{}, cache, log)
	_, err = users.EnsureUser(ctx, adminEmail, adminPassword, userDomain.RoleAdmin)
	require.NoError(t, err)

	tokens, err := authJwt.NewTokenManager(authJwt.Config{AccessSecret: "access", RefreshSecret: "refresh"})
	require.NoError(t, err)
	auth := authApp.NewAuthService(users, tokens, cache, log)

	directors := directorApp.NewDirectorService(directorRepo.NewDirectorRepoSQL(db, sharedDB.SQLite), cache, log)
	genres := genreApp.NewGenreService(genreRepo.NewGenreRepoSQL(db, sharedDB.SQLite), cache, log)
	files, err := movieFiles.NewMovieFileStorage(t.TempDir())
	require.NoError(t, err)
	movies := movieApp.NewMovieService(movieRepo.NewMovieRepoSQL(db, sharedDB.SQLite), directors, genres, files, cache, log)
	activity := movieApp.NewActivityService(nil, 10, log)

	r := gin.New()
	bearer := r.Group("/")
	bearer.Use(authHttp.BearerAuth(auth, log))
	authHttp.RegisterAuthRoutes(&r.RouterGroup, bearer, authHttp.NewAuthHandler(auth))
	movieHttp.RegisterMovieRoutes(bearer, movieHttp.NewMovieHandler(movies, activity))
	directorHttp.RegisterDirectorRoutes(bearer, directorHttp.NewDirectorHandler(directors))
	genreHttp.RegisterGenreRoutes(bearer, genreHttp.NewGenreHandler(genres))
	userHttp.RegisterUserRoutes(bearer, userHttp.NewUserHandler(users))

	return &api{t: t, router: r}
}

func (a *api) send(req *http.Request, auth string) *httptest.ResponseRecorder {
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *api) json(method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.send(req, auth)
}

func (a *api) decode(rec *httptest.ResponseRecorder, status int, out any) {
	a.t.Helper()
	require.Equal(a.t, status, rec.Code, rec.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

func basic(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func bearer(token string) string { return "Bearer " + token }

func (a *api) login(email, password string) authDomain.TokenPair {
	a.t.Helper()
	var pair authDomain.TokenPair
	a.decode(a.json(http.MethodPost, "/auth/login", basic(email, password), ""), http.StatusCreated, &pair)
	return pair
}

func (a *api) upload(auth string) string {
	a.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="video"; filename="clip.mp4"`)
	h.Set("Content-Type", "video/mp4")
	part, err := w.CreatePart(h)
	require.NoError(a.t, err)
	_, err = part.Write([]byte("fake mp4 bytes"))
	require.NoError(a.t, err)
	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/common/video", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out struct {
		Filename string `json:"filename"`
	}
	a.decode(a.send(req, auth), http.StatusCreated, &out)
	return out.Filename
}

func TestAPI_CatalogFlow(t *testing.T) {
	a := setupAPI(t)

	// --- Registro y login ---
	a.decode(a.json(http.MethodPost, "/auth/register", basic("viewer@cinelab.dev", "pw"), ""), http.StatusCreated, nil)
	assert.Equal(t, http.StatusConflict, a.json(http.MethodPost, "/auth/register", basic("viewer@cinelab.dev", "pw"), "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.json(http.MethodPost, "/auth/login", basic("viewer@cinelab.dev", "wrong"), "").Code)

	admin := bearer(a.login(adminEmail, adminPassword).AccessToken)
	viewer := bearer(a.login("viewer@cinelab.dev", "pw").AccessToken)

	// --- Catálogo ---
	var director struct{ ID int64 }
	a.decode(a.json(http.MethodPost, "/director", admin, `{"name":"Ridley Scott","dob":"1937-11-30","nationality":"UK"}`), http.StatusCreated, &director)
	assert.Equal(t, http.StatusForbidden, a.json(http.MethodPost, "/director", viewer, `{"name":"x","dob":"2000-01-01","nationality":"y"}`).Code)

	var scifi, horror struct{ ID int64 }
	a.decode(a.json(http.MethodPost, "/genre", admin, `{"name":"Sci-Fi"}`), http.StatusCreated, &scifi)
	a.decode(a.json(http.MethodPost, "/genre", admin, `{"name":"Horror"}`), http.StatusCreated, &horror)

	titles := []string{"Alien", "Blade Runner", "Prometheus"}
	for _, title := range titles {
		body := fmt.Sprintf(`{"title":%q,"detail":"-","directorId":%d,"genreIds":[%d,%d],"movieFileName":%q}`,
			title, director.ID, scifi.ID, horror.ID, a.upload(admin))
		a.decode(a.json(http.MethodPost, "/movie", admin, body), http.StatusCreated, nil)
	}

	missingGenre := fmt.Sprintf(`{"title":"Dune","detail":"-","directorId":%d,"genreIds":[999],"movieFileName":%q}`, director.ID, a.upload(admin))
	assert.Equal(t, http.StatusNotFound, a.json(http.MethodPost, "/movie", admin, missingGenre).Code)

	// --- Paginación por cursor, anónima ---
	var first sharedQuery.Page[movieDomain.Movie]
	a.decode(a.json(http.MethodGet, "/movie?take=2", "", ""), http.StatusOK, &first)
	require.Len(t, first.Data, 2)
	assert.True(t, first.HasNextPage)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, "Prometheus", first.Data[0].Title)
	assert.Equal(t, "Blade Runner", first.Data[1].Title)
	assert.Nil(t, first.Data[0].LikeStatus)

	var second sharedQuery.Page[movieDomain.Movie]
	a.decode(a.json(http.MethodGet, "/movie?take=2&cursor="+*first.NextCursor, "", ""), http.StatusOK, &second)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "Alien", second.Data[0].Title)
	assert.False(t, second.HasNextPage)
	assert.Nil(t, second.NextCursor)

	assert.Equal(t, http.StatusBadRequest, a.json(http.MethodGet, "/movie?cursor=not-a-cursor", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, a.json(http.MethodGet, "/movie?order=title_SIDEWAYS", "", "").Code)

	// --- Likes ---
	alienPath := fmt.Sprintf("/movie/%d", second.Data[0].ID)
	assert.Equal(t, http.StatusUnauthorized, a.json(http.MethodPost, alienPath+"/like", "", "").Code)
	like := a.json(http.MethodPost, alienPath+"/like", viewer, "")
	require.Equal(t, http.StatusCreated, like.Code)
	assert.JSONEq(t, `{"isLike":true}`, like.Body.String())

	var liked sharedQuery.Page[movieDomain.Movie]
	a.decode(a.json(http.MethodGet, "/movie?order=like_count_DESC&take=1", viewer, ""), http.StatusOK, &liked)
	require.Len(t, liked.Data, 1)
	assert.Equal(t, "Alien", liked.Data[0].Title)
	assert.Equal(t, 1, liked.Data[0].LikeCount)
	require.NotNil(t, liked.Data[0].LikeStatus)
	assert.True(t, *liked.Data[0].LikeStatus)

	// --- Revocación del token ---
	a.decode(a.json(http.MethodPost, "/auth/token/block", admin, `{"token":"`+strings.TrimPrefix(viewer, "Bearer ")+`"}`), http.StatusCreated, nil)
	assert.Equal(t, http.StatusUnauthorized, a.json(http.MethodGet, "/user/me", viewer, "").Code)
}

func TestAPI_RefreshFlow(t *testing.T) {
	a := setupAPI(t)
	pair := a.login(adminEmail, adminPassword)

	// El refresh token no vale como access token y viceversa
	assert.Equal(t, http.StatusUnauthorized, a.json(http.MethodGet, "/user/me", bearer(pair.RefreshToken), "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.json(http.MethodPost, "/auth/token/access", bearer(pair.AccessToken), "").Code)

	var rotated struct {
		AccessToken string `json:"accessToken"`
	}
	a.decode(a.json(http.MethodPost, "/auth/token/access", bearer(pair.RefreshToken), ""), http.StatusCreated, &rotated)

	var me userDomain.User
	a.decode(a.json(http.MethodGet, "/user/me", bearer(rotated.AccessToken), ""), http.StatusOK, &me)
	assert.Equal(t, adminEmail, me.Email)
	assert.Equal(t, userDomain.RoleAdmin, me.Role)
}
