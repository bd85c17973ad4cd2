package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/streambox/internal/config"
	"github.com/user/streambox/internal/handler"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/repository"
	"github.com/user/streambox/internal/search"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

type testServer struct {
	engine *gin.Engine
	repos  *repository.Repositories
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.InitDB("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	idx, err := search.New()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.AppSecret = "test-secret"
	cfg.CORSOrigin = "http://localhost:3000"

	repos := repository.NewRepositories(db)
	h := handler.NewHandler(
		service.NewAuthService(repos.Account, cfg.AppSecret, time.Hour, log),
		service.NewProfileService(repos.Profile, service.NewGuard(repos.Profile), log),
		service.NewCatalogService(repos.Content, idx, utils.NewCache(time.Minute, time.Minute), log),
		service.NewTMDBService(cfg, log),
		cfg,
		log,
	)
	return &testServer{engine: NewEngine(h), repos: repos}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var res handler.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func (s *testServer) adminToken(t *testing.T, email string) string {
	t.Helper()
	token := s.signup(t, email)
	_, err := s.repos.Account.SetAdmin(context.Background(), email, true)
	require.NoError(t, err)
	return token
}

func (s *testServer) createProfile(t *testing.T, token, name string) model.Profile {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/profiles", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var p model.Profile
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	s.signup(t, "a@x.com")

	code, env := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Email already exists", env.Message)

	code, env = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	login := decode[service.LoginResult](t, env.Data)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "a@x.com", login.User.Email)

	code, env = s.do(t, http.MethodGet, "/auth/test", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	body := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "You are authorized!", body["message"])

	code, env = s.do(t, http.MethodGet, "/auth/test", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/auth/test", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLoginErrorsMatch(t *testing.T) {
	s := newTestServer(t, nil)
	s.signup(t, "a@x.com")

	code1, env1 := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "wrong12"})
	code2, env2 := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "nobody@x.com", "password": "secret1"})

	assert.Equal(t, http.StatusUnauthorized, code1)
	assert.Equal(t, code1, code2)
	assert.Equal(t, env1, env2)
}

func TestSignupValidationFields(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{"email": "bad", "password": "1"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)
	fields := decode[map[string]string](t, env.Data)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileLimitOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "a@x.com")

	for _, name := range []string{"P1", "P2", "P3", "P4"} {
		s.createProfile(t, token, name)
	}

	code, env := s.do(t, http.MethodPost, "/profiles", token, gin.H{"name": "P5"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You can only have up to 4 profiles.", env.Message)

	code, env = s.do(t, http.MethodGet, "/profiles", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Profile](t, env.Data), 4)
}

func TestMyListOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "a@x.com")
	p := s.createProfile(t, token, "Main")
	path := "/profiles/" + p.ID + "/list"

	for i := 0; i < 2; i++ {
		code, _ := s.do(t, http.MethodPost, path, token, gin.H{"contentId": "X"})
		require.Equal(t, http.StatusOK, code)
	}

	code, env := s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []model.ListItem{{ContentID: "X", Type: model.KindMovie}}, decode[[]model.ListItem](t, env.Data))

	code, env = s.do(t, http.MethodDelete, path+"/X", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]model.ListItem](t, env.Data))
}

func TestWatchHistoryOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "a@x.com")
	p := s.createProfile(t, token, "Main")
	path := "/profiles/" + p.ID + "/history"

	var last model.Profile
	for _, id := range []string{"A", "B", "A"} {
		code, env := s.do(t, http.MethodPost, path, token, gin.H{"contentId": id, "progress": 10, "duration": 100})
		require.Equal(t, http.StatusOK, code, env.Message)
		last = decode[model.Profile](t, env.Data)
	}

	require.Len(t, last.WatchHistory, 2)
	assert.Equal(t, "A", last.WatchHistory[0].ContentID)
	assert.Equal(t, "B", last.WatchHistory[1].ContentID)

	code, env := s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.HistoryEntry](t, env.Data), 2)
}

func TestWrongFieldTypeIsReportedPerField(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "a@x.com")
	p := s.createProfile(t, token, "Main")

	code, env := s.do(t, http.MethodPost, "/profiles/"+p.ID+"/history", token, gin.H{"contentId": "A", "progress": "abc"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Equal(t, map[string]string{"progress": "is invalid"}, decode[map[string]string](t, env.Data))

	code, env = s.do(t, http.MethodGet, "/profiles/"+p.ID+"/history", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]model.HistoryEntry](t, env.Data))
}

func TestForeignProfileIsRejected(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.signup(t, "a@x.com")
	intruder := s.signup(t, "b@x.com")
	p := s.createProfile(t, owner, "Main")

	code, env := s.do(t, http.MethodPost, "/profiles/"+p.ID+"/list", intruder, gin.H{"contentId": "X"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Profile not found or you do not have permission.", env.Message)

	code, _ = s.do(t, http.MethodDelete, "/profiles/"+p.ID, intruder, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodDelete, "/profiles/"+p.ID, owner, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Profile deleted successfully", decode[handler.MessageResponse](t, env.Data).Message)
}

func TestUpdateProfileOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "a@x.com")
	p := s.createProfile(t, token, "Main")
	assert.Equal(t, service.DefaultAvatarURL, p.AvatarURL)

	code, env := s.do(t, http.MethodPatch, "/profiles/"+p.ID, token, gin.H{"isKid": true})
	require.Equal(t, http.StatusOK, code)
	updated := decode[model.Profile](t, env.Data)
	assert.True(t, updated.IsKid)
	assert.Equal(t, "Main", updated.Name)
}

func contentPayload(title, genre string) gin.H {
	return gin.H{
		"title":        title,
		"description":  "desc",
		"thumbnailUrl": "https://img.example.com/t.jpg",
		"backdropUrl":  "https://img.example.com/b.jpg",
		"type":         "movie",
		"genre":        genre,
		"ageRating":    "12+",
		"trailerUrl":   "https://www.youtube.com/watch?v=abc",
		"videoUrl":     "https://cdn.example.com/v.mp4",
	}
}

func TestContentAdminFlow(t *testing.T) {
	s := newTestServer(t, nil)
	user := s.signup(t, "u@x.com")
	admin := s.adminToken(t, "admin@x.com")

	code, env := s.do(t, http.MethodPost, "/content", user, contentPayload("Heat", "Crime"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", env.Message)

	code, _ = s.do(t, http.MethodPost, "/content", "", contentPayload("Heat", "Crime"))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/content", admin, contentPayload("Heat", "Crime"))
	require.Equal(t, http.StatusCreated, code, env.Message)
	created := decode[model.Content](t, env.Data)

	code, env = s.do(t, http.MethodGet, "/content/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Heat", decode[model.Content](t, env.Data).Title)

	code, env = s.do(t, http.MethodGet, "/content/search?q=heat", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Content](t, env.Data), 1)

	code, env = s.do(t, http.MethodGet, "/content?search=crime", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Content](t, env.Data), 1)

	code, env = s.do(t, http.MethodGet, "/content?genre=Drama", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", string(env.Data))

	code, _ = s.do(t, http.MethodPost, "/content/"+created.ID+"/view", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, "/content/"+created.ID, user, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodDelete, "/content/"+created.ID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Content deleted successfully", decode[handler.MessageResponse](t, env.Data).Message)

	code, env = s.do(t, http.MethodGet, "/content/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Content not found", env.Message)
}

func TestContentWriteOpen(t *testing.T) {
	s := newTestServer(t, &config.Config{ContentWriteOpen: true})

	code, env := s.do(t, http.MethodPost, "/content", "", contentPayload("Heat", "Crime"))
	assert.Equal(t, http.StatusCreated, code, env.Message)

	code, env = s.do(t, http.MethodPost, "/content", "", gin.H{"title": "Broken"})
	require.Equal(t, http.StatusBadRequest, code)
	fields := decode[map[string]string](t, env.Data)
	assert.Equal(t, "is required", fields["trailerUrl"])
}

func TestContentListLimit(t *testing.T) {
	s := newTestServer(t, &config.Config{ContentWriteOpen: true})
	for _, title := range []string{"One", "Two", "Three"} {
		code, _ := s.do(t, http.MethodPost, "/content", "", contentPayload(title, "Drama"))
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := s.do(t, http.MethodGet, "/content?type=movie&limit=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Content](t, env.Data), 2)

	code, _ = s.do(t, http.MethodGet, "/content?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMetadataRequiresConfiguration(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(t, http.MethodGet, "/metadata/movie/1", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "TMDB is not configured", env.Message)
}

func TestMetadataProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/movie/7":
			w.Write([]byte(`{"id":7,"title":"Se7en","runtime":127}`))
		case "/movie/7/videos":
			w.Write([]byte(`{"results":[{"key":"k7","name":"Official Trailer","site":"YouTube","type":"Trailer"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	s := newTestServer(t, &config.Config{TMDBToken: "tok", TMDBBaseURL: upstream.URL, TMDBCacheTTL: time.Minute})

	code, env := s.do(t, http.MethodGet, "/metadata/movie/7", "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Se7en", decode[service.TMDBDetails](t, env.Data).Title)

	code, env = s.do(t, http.MethodGet, "/metadata/movie/7/trailer", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "https://www.youtube.com/watch?v=k7", decode[map[string]interface{}](t, env.Data)["url"])

	code, _ = s.do(t, http.MethodGet, "/metadata/movie/8", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/metadata/anime/7", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/metadata/movie/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/profiles", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
