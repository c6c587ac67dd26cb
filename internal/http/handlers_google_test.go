package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"financaszen/internal/google"
	"financaszen/internal/storage"
)

type stubCreator struct {
	calls int
	err   error
}

func (c *stubCreator) CreateEvent(_ context.Context, tok *oauth2.Token, in google.EventInput) (google.CreatedEvent, *oauth2.Token, error) {
	c.calls++
	if c.err != nil {
		return google.CreatedEvent{}, nil, c.err
	}
	return google.CreatedEvent{ID: "evt-1", HTMLLink: "https://calendar.example/evt-1"}, tok, nil
}

// tokenEndpoint fakes Google's token URL.
func tokenEndpoint(t *testing.T, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, `{"error":"invalid_grant"}`, status)
			return
		}
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func withGoogle(tokenURL string, creator google.EventCreator) func(*Deps, storage.Store) {
	return func(d *Deps, s storage.Store) {
		d.OAuth = &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:8080/api/auth/google",
			Scopes:       []string{"https://www.googleapis.com/auth/calendar.events"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://accounts.example/o/oauth2/auth",
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
		d.Calendar = google.NewScheduler(google.NewRecordTokenStore(s), creator)
	}
}

// startConsent follows the first leg and returns the state sent to Google.
func startConsent(t *testing.T, env *testEnv) string {
	t.Helper()
	rec := env.do(http.MethodGet, "/api/auth/google", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example", loc.Host)
	assert.Equal(t, "offline", loc.Query().Get("access_type"))
	assert.Equal(t, "consent", loc.Query().Get("prompt"))

	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	c := env.cookies[StateCookie]
	require.NotNil(t, c)
	assert.Equal(t, state, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, stateMaxAge, c.MaxAge)
	require.NotNil(t, env.cookies[SessionCookie])
	return state
}

func TestGoogleConnectFlow(t *testing.T) {
	creator := &stubCreator{}
	env := newTestServer(t, withGoogle(tokenEndpoint(t, http.StatusOK).URL, creator))

	rec := env.do(http.MethodGet, "/api/auth/google/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":false,"enabled":true}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/auth/google", map[string]string{
		"title": "Consulta", "startTime": "2025-03-10T10:00:00-03:00", "endTime": "2025-03-10T11:00:00-03:00",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token stored yet")

	state := startConsent(t, env)
	rec = env.do(http.MethodGet, "/api/auth/google?code=good-code&state="+url.QueryEscape(state), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"connected":true}`, rec.Body.String())
	assert.NotContains(t, env.cookies, StateCookie, "state cookie is cleared after use")

	rec = env.do(http.MethodGet, "/api/auth/google/status", nil)
	assert.JSONEq(t, `{"connected":true,"enabled":true}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/auth/google", map[string]string{
		"title": "Consulta", "startTime": "2025-03-10T10:00:00-03:00", "endTime": "2025-03-10T11:00:00-03:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ev := decode[google.CreatedEvent](t, rec)
	assert.Equal(t, "evt-1", ev.ID)
	assert.Equal(t, 1, creator.calls)

	rec = env.do(http.MethodDelete, "/api/auth/google", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, "/api/auth/google/status", nil)
	assert.JSONEq(t, `{"connected":false,"enabled":true}`, rec.Body.String())
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	env := newTestServer(t, withGoogle(tokenEndpoint(t, http.StatusOK).URL, &stubCreator{}))

	rec := env.do(http.MethodGet, "/api/auth/google?code=good-code&state=forged", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no state cookie")

	startConsent(t, env)
	rec = env.do(http.MethodGet, "/api/auth/google?code=good-code&state=forged", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid oauth state")

	rec = env.do(http.MethodGet, "/api/auth/google?error=access_denied", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleExchangeFailure(t *testing.T) {
	env := newTestServer(t, withGoogle(tokenEndpoint(t, http.StatusInternalServerError).URL, &stubCreator{}))

	state := startConsent(t, env)
	rec := env.do(http.MethodGet, "/api/auth/google?code=good-code&state="+url.QueryEscape(state), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = env.do(http.MethodGet, "/api/auth/google/status", nil)
	assert.JSONEq(t, `{"connected":false,"enabled":true}`, rec.Body.String())
}

func TestCalendarEventErrors(t *testing.T) {
	creator := &stubCreator{}
	env := newTestServer(t, withGoogle(tokenEndpoint(t, http.StatusOK).URL, creator))
	state := startConsent(t, env)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/auth/google?code=good-code&state="+state, nil).Code)

	tests := []struct {
		name   string
		body   map[string]string
		upErr  error
		status int
	}{
		{"missing title", map[string]string{"startTime": "2025-03-10T10:00:00Z", "endTime": "2025-03-10T11:00:00Z"}, nil, http.StatusUnprocessableEntity},
		{"bad timestamp", map[string]string{"title": "x", "startTime": "10/03/2025", "endTime": "2025-03-10T11:00:00Z"}, nil, http.StatusBadRequest},
		{"end before start", map[string]string{"title": "x", "startTime": "2025-03-10T11:00:00Z", "endTime": "2025-03-10T10:00:00Z"}, nil, http.StatusUnprocessableEntity},
		{"unknown zone", map[string]string{"title": "x", "startTime": "2025-03-10T10:00:00Z", "endTime": "2025-03-10T11:00:00Z", "timeZone": "Mars/Olympus"}, nil, http.StatusUnprocessableEntity},
		{"upstream failure", map[string]string{"title": "x", "startTime": "2025-03-10T10:00:00Z", "endTime": "2025-03-10T11:00:00Z"}, errors.New("quota"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator.err = tt.upErr
			rec := env.do(http.MethodPost, "/api/auth/google", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestGoogleDisabled(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(http.MethodGet, "/api/auth/google", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = env.do(http.MethodGet, "/api/auth/google/status", nil)
	assert.JSONEq(t, `{"connected":false,"enabled":false}`, rec.Body.String())
}
