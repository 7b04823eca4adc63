package web

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"travelsnap/internal/backend"
	"travelsnap/internal/explorer"
	"travelsnap/internal/geo"
	"travelsnap/internal/logger"
	"travelsnap/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tileTemplate = "https://tile.example.org/{z}/{x}/{y}.png"

// testSessionID is the session cookie of the browser most tests act as
const testSessionID = "9b2f6c1e-4a57-4d0e-8e5c-3f1a2b7d6e90"

type testApp struct {
	router   *gin.Engine
	browsers *Browsers
	sessions session.Manager
	explorer *explorer.Explorer
}

func newTestApp(t *testing.T, handler http.HandlerFunc) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	browsers := NewBrowsers(store, time.Hour, func(sessions session.Manager) *explorer.Explorer {
		client := backend.NewClient(backend.StaticURL(srv.URL), sessions, 0, logger.Discard())
		return explorer.New(sessions, client, logger.Discard())
	})

	return &testApp{
		router:   NewServer(browsers, tileTemplate, nil).Router(),
		browsers: browsers,
		sessions: session.NewBrowserManager(store, testSessionID, time.Hour),
		explorer: browsers.Get(testSessionID),
	}
}

// do sends a request as the test browser
func (a *testApp) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	return a.send(method, target, form, &http.Cookie{Name: sessionCookie, Value: testSessionID})
}

func (a *testApp) send(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func cookieOf(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func flashOf(w *httptest.ResponseRecorder) []string {
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookie && c.Value != "" {
			return decodeFlash(c.Value)
		}
	}
	return nil
}

// travelBackend fakes the travel API for Paris
func travelBackend(t *testing.T, favoritePosts *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			var creds backend.Credentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Invalid credentials"}`))
				return
			}
			w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer"}`))
		case r.URL.Path == "/location/":
			w.Write([]byte(`{"latitude":48.8566,"longitude":2.3522,"display_name":"Paris, France"}`))
		case r.URL.Path == "/weather":
			w.Write([]byte(`{"temperature":18.5,"description":"light rain"}`))
		case r.URL.Path == "/attractions":
			w.Write([]byte(`[{"id":1,"name":"Louvre","country":"France"}]`))
		case r.URL.Path == "/favorites/" && r.Method == http.MethodPost:
			favoritePosts.Add(1)
			w.Write([]byte(`{"message":"Added to favorites","id":7}`))
		case r.URL.Path == "/favorites/" && r.Method == http.MethodGet:
			w.Write([]byte(`{"favorites":[{"id":7,"name":"Louvre","description":"Museum"}]}`))
		case r.URL.Path == "/favorites/7" && r.Method == http.MethodDelete:
			w.Write([]byte(`{"message":"Removed successfully","id":7}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "hello")
	})
	r.GET("/missing", func(c *gin.Context) {
		c.String(http.StatusNotFound, "nope")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?x=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.Split(buf.Bytes(), []byte("\n"))[0], &entry))
	assert.Equal(t, "Request completed", entry["msg"])
	assert.Equal(t, "/test", entry["path"])
	assert.Equal(t, "x=1", entry["query"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(5), entry["response_size"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), entry["request_id"])

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestHoverCORS(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/map/hover?lat=1&lon=1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIndex(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})

	w := app.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	require.NoError(t, app.sessions.SetToken(context.Background(), "tok"))
	w = app.do(http.MethodGet, "/", nil)
	assert.Equal(t, "/map", w.Header().Get("Location"))
}

func TestGuardRedirectsToLogin(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no backend call expected, got %s", r.URL.Path)
	})

	for _, path := range []string{"/map", "/favorites"} {
		w := app.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
		assert.Equal(t, []string{explorer.MsgLoginRequired}, flashOf(w), path)
	}
}

func TestLoginFlow(t *testing.T) {
	var posts atomic.Int32
	app := newTestApp(t, travelBackend(t, &posts))

	w := app.do(http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="loginForm"`)

	w = app.do(http.MethodPost, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/map", w.Header().Get("Location"))
	assert.Equal(t, []string{explorer.MsgLoginOK}, flashOf(w))

	token, err := app.sessions.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	w = app.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, app.sessions.HasToken(context.Background()))
}

func TestLoginFailureRendersDetail(t *testing.T) {
	var posts atomic.Int32
	app := newTestApp(t, travelBackend(t, &posts))

	w := app.do(http.MethodPost, "/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.Contains(t, w.Body.String(), `value="ana@example.com"`)
	assert.False(t, app.sessions.HasToken(context.Background()))

	w = app.do(http.MethodPost, "/login", url.Values{"email": {" "}, "password": {"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), explorer.MsgMissingFields)
}

func TestSearchAndDelegatedActions(t *testing.T) {
	var posts atomic.Int32
	app := newTestApp(t, travelBackend(t, &posts))
	require.NoError(t, app.sessions.SetToken(context.Background(), "tok-1"))

	w := app.do(http.MethodPost, "/map/search", url.Values{"query": {"Paris"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/map", w.Header().Get("Location"))
	assert.Empty(t, flashOf(w))

	w = app.do(http.MethodGet, "/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Paris, France")
	assert.Contains(t, body, "18.5°C, light rain")
	assert.Contains(t, body, "Louvre")
	assert.Contains(t, body, `name="data-generation" value="1"`)
	assert.Contains(t, body, "https://tile.example.org/10/518/352.png")

	stale := url.Values{"data-action": {"favorite"}, "data-id": {"1"}, "data-generation": {"0"}}
	w = app.do(http.MethodPost, "/actions", stale)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, int32(0), posts.Load())

	current := url.Values{"data-action": {"favorite"}, "data-id": {"1"}, "data-generation": {"1"}}
	w = app.do(http.MethodPost, "/actions", current)
	assert.Equal(t, "/map", w.Header().Get("Location"))
	assert.Equal(t, []string{explorer.MsgFavoriteAdded}, flashOf(w))
	assert.Equal(t, int32(1), posts.Load())

	w = app.do(http.MethodPost, "/actions", url.Values{"data-action": {"share"}, "data-id": {"1"}, "data-generation": {"1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEmptyQuery(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no backend call expected, got %s", r.URL.Path)
	})
	require.NoError(t, app.sessions.SetToken(context.Background(), "tok-1"))

	w := app.do(http.MethodPost, "/map/search", url.Values{"query": {"  "}})
	assert.Equal(t, "/map", w.Header().Get("Location"))
	assert.Equal(t, []string{explorer.MsgEmptyQuery}, flashOf(w))
}

func TestFavoritesPage(t *testing.T) {
	var posts atomic.Int32
	app := newTestApp(t, travelBackend(t, &posts))
	require.NoError(t, app.sessions.SetToken(context.Background(), "tok-1"))

	w := app.do(http.MethodGet, "/favorites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Louvre")
	assert.Contains(t, w.Body.String(), `name="data-action" value="remove"`)

	w = app.do(http.MethodPost, "/actions", url.Values{"data-action": {"remove"}, "data-id": {"7"}, "data-generation": {"1"}})
	assert.Equal(t, "/favorites", w.Header().Get("Location"))
	assert.Equal(t, []string{explorer.MsgFavoriteRemoved}, flashOf(w))

	w = app.do(http.MethodPost, "/favorites/7/delete", nil)
	assert.Equal(t, "/favorites", w.Header().Get("Location"))
	assert.Equal(t, []string{explorer.MsgFavoriteRemoved}, flashOf(w))

	w = app.do(http.MethodPost, "/favorites/abc/delete", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHover(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})

	w := app.do(http.MethodGet, "/map/hover?lat=48&lon=2", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	features, err := geo.ParseGeoJSON(strings.NewReader(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"France"},
		 "geometry":{"type":"Polygon","coordinates":[[[-5,42],[8,42],[8,51],[-5,51],[-5,42]]]}}]}`))
	require.NoError(t, err)
	bounds, err := geo.NewBoundaries(features)
	require.NoError(t, err)
	app.explorer.SetBoundaries(bounds)

	w = app.do(http.MethodGet, "/map/hover?lat=48&lon=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Country struct {
			Name string `json:"name"`
		} `json:"country"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "France", resp.Country.Name)

	w = app.do(http.MethodGet, "/map/hover?lat=-40&lon=-30", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/map/hover?lat=north&lon=2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})

	w := app.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestBrowsersDoNotShareSessions(t *testing.T) {
	var posts atomic.Int32
	app := newTestApp(t, travelBackend(t, &posts))

	w := app.do(http.MethodPost, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret"}})
	require.Equal(t, "/map", w.Header().Get("Location"))
	w = app.do(http.MethodPost, "/map/search", url.Values{"query": {"Paris"}})
	require.Equal(t, "/map", w.Header().Get("Location"))

	// a second browser arrives without cookies
	for _, path := range []string{"/map", "/favorites"} {
		w = app.send(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
		assert.NotNil(t, cookieOf(w, sessionCookie), path)
	}

	w = app.send(http.MethodGet, "/", nil)
	other := cookieOf(w, sessionCookie)
	require.NotNil(t, other)
	assert.NotEqual(t, testSessionID, other.Value)
	assert.True(t, other.HttpOnly)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	favorite := url.Values{"data-action": {"favorite"}, "data-id": {"1"}, "data-generation": {"1"}}
	w = app.send(http.MethodPost, "/actions", favorite, other)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, int32(0), posts.Load())

	w = app.send(http.MethodGet, "/map", nil, other)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Empty(t, app.browsers.Get(other.Value).Snapshot().Cards)

	// logging in elsewhere and out again leaves the first browser alone
	w = app.send(http.MethodPost, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret"}}, other)
	require.Equal(t, "/map", w.Header().Get("Location"))
	w = app.send(http.MethodPost, "/logout", nil, other)
	require.Equal(t, "/login", w.Header().Get("Location"))

	assert.True(t, app.sessions.HasToken(context.Background()))
	w = app.do(http.MethodGet, "/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Louvre")
}

func TestSessionCookieMalformed(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, app.sessions.SetToken(context.Background(), "tok"))

	w := app.send(http.MethodGet, "/", nil, &http.Cookie{Name: sessionCookie, Value: "../" + testSessionID})
	assert.Equal(t, "/login", w.Header().Get("Location"))
	issued := cookieOf(w, sessionCookie)
	require.NotNil(t, issued)
	assert.NotEqual(t, testSessionID, issued.Value)
}

func TestBrowsers(t *testing.T) {
	store := session.NewMemoryStore()
	built := 0
	browsers := NewBrowsers(store, time.Hour, func(sessions session.Manager) *explorer.Explorer {
		built++
		return explorer.New(sessions, nil, logger.Discard())
	})

	a := browsers.Get("sid-a")
	assert.Same(t, a, browsers.Get("sid-a"))
	assert.NotSame(t, a, browsers.Get("sid-b"))
	assert.Equal(t, 2, built)
	assert.Equal(t, 2, browsers.Len())

	// sid-a goes idle past the ttl
	browsers.mu.Lock()
	browsers.sessions["sid-a"].seen = time.Now().Add(-2 * time.Hour)
	browsers.lastSweep = time.Time{}
	browsers.mu.Unlock()

	browsers.Get("sid-b")
	assert.Equal(t, 1, browsers.Len())
	assert.NotSame(t, a, browsers.Get("sid-a"))
	assert.Equal(t, 3, built)
}
