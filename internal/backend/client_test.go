package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"travelsnap/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, session.Manager) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewManager(session.NewMemoryStore())
	return NewClient(StaticURL(srv.URL), sessions, 0, nil), sessions
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var creds Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, Credentials{Email: "ana@example.com", Password: "secret"}, creds)

		w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer"}`))
	})

	resp, err := client.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.AccessToken)
}

func TestLogin_Rejected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	})

	_, err := client.Login(context.Background(), Credentials{Email: "a", Password: "b"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Invalid credentials", Message(err, "fallback"))
}

func TestLogin_MissingToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.Login(context.Background(), Credentials{Email: "a", Password: "b"})
	assert.Error(t, err)
}

func TestGeocode(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/location/", r.URL.Path)
		assert.Equal(t, "New York, NY", r.URL.Query().Get("query"))
		w.Write([]byte(`{"latitude":40.7128,"longitude":-74.006,"display_name":"New York"}`))
	})

	loc, err := client.Geocode(context.Background(), "New York, NY")
	require.NoError(t, err)
	assert.Equal(t, &Location{Latitude: 40.7128, Longitude: -74.006, DisplayName: "New York"}, loc)
}

func TestWeatherAndAttractions_UseExactCoordinates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.3522", r.URL.Query().Get("lon"))

		switch r.URL.Path {
		case "/weather":
			w.Write([]byte(`{"temperature":18.5,"description":"light rain"}`))
		case "/attractions":
			w.Write([]byte(`[{"id":1,"name":"Louvre","country":"France"},{"id":2,"name":"Eiffel Tower","country":"France"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()
	weather, err := client.Weather(ctx, 48.8566, 2.3522)
	require.NoError(t, err)
	assert.Equal(t, &Weather{Temperature: 18.5, Description: "light rain"}, weather)

	list, err := client.Attractions(ctx, 48.8566, 2.3522)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Louvre", list[0].Name)
	assert.Equal(t, 2, list[1].ID)
}

func TestFavorites_RequireTokenWithoutRequest(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	ctx := context.Background()
	_, err := client.Favorites(ctx)
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = client.AddFavorite(ctx, 42)
	assert.ErrorIs(t, err, ErrMissingToken)
	err = client.RemoveFavorite(ctx, 42)
	assert.ErrorIs(t, err, ErrMissingToken)

	assert.Equal(t, int32(0), calls.Load())
}

func TestFavorites_CRUD(t *testing.T) {
	client, sessions := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/favorites/":
			w.Write([]byte(`{"favorites":[{"id":3,"name":"Louvre","description":"museum","image":"http://img"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/favorites/":
			data, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"attraction_id":42}`, string(data))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"Added to favorites","id":7}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/favorites/7":
			w.Write([]byte(`{"message":"Removed successfully","id":7}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	ctx := context.Background()
	require.NoError(t, sessions.SetToken(ctx, "tok-9"))

	list, err := client.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Favorite{ID: 3, Name: "Louvre", Description: "museum", Image: "http://img"}, list[0])

	fav, err := client.AddFavorite(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 7, fav.ID)
	assert.Equal(t, 42, fav.AttractionID)

	require.NoError(t, client.RemoveFavorite(ctx, 7))
}

func TestFavorites_BareArray(t *testing.T) {
	client, sessions := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"attraction_id":5}]`))
	})
	require.NoError(t, sessions.SetToken(context.Background(), "t"))

	list, err := client.Favorites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Favorite{{ID: 1, AttractionID: 5}}, list)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(StaticURL(url), session.NewManager(session.NewMemoryStore()), 0, nil)
	_, err := client.Geocode(context.Background(), "Paris")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "GET /location/", netErr.Op)
	assert.Equal(t, "Failed to fetch location", Message(err, "Failed to fetch location"))
}

type failingResolver struct{}

func (failingResolver) BaseURL(ctx context.Context) (string, error) {
	return "", errors.New("no healthy instances")
}

func TestResolverFailureIsNetworkError(t *testing.T) {
	client := NewClient(failingResolver{}, session.NewManager(session.NewMemoryStore()), 0, nil)
	_, err := client.Weather(context.Background(), 1, 2)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"Already in favorites"}`, "Already in favorites"},
		{"validation list", `{"detail":[{"msg":"field required"},{"msg":"value is not a valid integer"}]}`, "field required; value is not a valid integer"},
		{"no detail", `{"message":"x"}`, ""},
		{"not json", `<html>502</html>`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: http.StatusBadGateway}
	assert.Equal(t, "backend returned 502 Bad Gateway", err.Error())
	assert.Equal(t, "Failed", Message(err, "Failed"))
}
