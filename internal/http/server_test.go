package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/catalog"
	"github.com/example/easyride/internal/geo"
	"github.com/example/easyride/internal/persistence/memory"
	"github.com/example/easyride/internal/testfixtures"
	"github.com/example/easyride/internal/view"
)

var testArgon2idParams = application.Argon2idParams{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

type testServer struct {
	handler http.Handler
	storage *memory.Storage
	clock   *testfixtures.Clock
	logs    *bytes.Buffer
}

func newTestServer(t *testing.T, health HealthChecker) *testServer {
	t.Helper()

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	clock := testfixtures.NewClock(time.Time{})
	storage := memory.NewWithClock(clock.NowFunc())
	c := catalog.Default()

	demo, err := application.NewDemoAccount(testArgon2idParams)
	require.NoError(t, err)
	sessions, err := application.NewSessionManager(storage, application.SessionConfig{
		Demo:        demo,
		IDGenerator: testfixtures.NewIDGenerator("user").NextFunc(),
	}, 16, logger)
	require.NoError(t, err)

	renderer, err := view.NewWithClock(clock.NowFunc())
	require.NoError(t, err)

	delay := application.Delay{Duration: 1500 * time.Millisecond, Sleep: clock.Sleep}
	booking := application.NewBookingService(c, delay, testfixtures.NewIDGenerator("order").NextFunc(), clock.NowFunc(), logger)
	contact := application.NewContactService(delay, logger)

	handler := NewRouter(RouterConfig{
		Pages:   NewPageHandler(c, renderer, logger),
		Auth:    NewAuthHandler(renderer, logger),
		Rent:    NewRentHandler(booking, c, renderer, logger),
		Contact: NewContactHandler(contact, renderer, logger),
		API:     NewAPIHandler(c, storage, health, logger),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			ClientIdentity(false, logger),
			LoadSession(sessions, logger),
		},
	})
	return &testServer{handler: handler, storage: storage, clock: clock, logs: logs}
}

// client replays the client cookie the way a browser would.
type client struct {
	t      *testing.T
	server *testServer
	cookie *http.Cookie
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, server: s}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.server.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == ClientCookieName {
			c.cookie = cookie
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) session() sessionResponse {
	c.t.Helper()
	rec := c.get("/api/session")
	require.Equal(c.t, http.StatusOK, rec.Code)
	var resp sessionResponse
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func demoLogin() url.Values {
	return url.Values{"email": {testfixtures.DemoEmail}, "password": {testfixtures.DemoPassword}}
}

func TestPages(t *testing.T) {
	t.Parallel()
	server := newTestServer(t, nil)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, "100 MAD"},
		{"/auth", http.StatusOK, `action="/auth/login"`},
		{"/auth?mode=register", http.StatusOK, `action="/auth/register"`},
		{"/rent", http.StatusOK, `action="/rent"`},
		{"/map", http.StatusOK, "/api/distance"},
		{"/contact", http.StatusOK, `action="/contact"`},
		{"/buy", http.StatusNotFound, "Page introuvable"},
		{"/auth/unknown", http.StatusNotFound, "Page introuvable"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			rec := server.client(t).get(tc.path)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			require.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	server := newTestServer(t, nil)

	rec := server.client(t).do(httptest.NewRequest(http.MethodDelete, "/rent", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET, POST", rec.Header().Get("Allow"))

	rec = server.client(t).get("/auth/login")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestClientIdentity(t *testing.T) {
	t.Parallel()
	server := newTestServer(t, nil)

	t.Run("issues a cookie on first visit and keeps it", func(t *testing.T) {
		t.Parallel()
		c := server.client(t)
		first := c.get("/")
		cookies := first.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, ClientCookieName, cookies[0].Name)
		require.True(t, cookies[0].HttpOnly)
		require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		require.Equal(t, 365*24*3600, cookies[0].MaxAge)

		second := c.get("/")
		require.Empty(t, second.Result().Cookies())
	})

	t.Run("replaces a malformed cookie", func(t *testing.T) {
		t.Parallel()
		c := server.client(t)
		c.cookie = &http.Cookie{Name: ClientCookieName, Value: "../../etc"}
		rec := c.get("/")
		require.Len(t, rec.Result().Cookies(), 1)
		require.NotEqual(t, "../../etc", c.cookie.Value)
	})
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	t.Run("demo login persists and logout clears", func(t *testing.T) {
		t.Parallel()
		server := newTestServer(t, nil)
		c := server.client(t)
		c.get("/")

		rec := c.postForm("/auth/login", demoLogin())
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))

		session := c.session()
		require.True(t, session.LoggedIn)
		require.Equal(t, "user-1", session.User.ID)
		require.Contains(t, c.get("/").Body.String(), `<span class="user-name">Demo User</span>`)

		items, err := server.storage.ListItems(context.Background(), c.cookie.Value)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, application.SessionStorageKey, items[0].Key)

		for i := 0; i < 2; i++ {
			rec = c.postForm("/auth/logout", nil)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			require.False(t, c.session().LoggedIn)
		}
		items, err = server.storage.ListItems(context.Background(), c.cookie.Value)
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("signed in clients skip the auth page", func(t *testing.T) {
		t.Parallel()
		c := newTestServer(t, nil).client(t)
		c.postForm("/auth/login", demoLogin())

		rec := c.get("/auth")
		require.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("wrong credentials show the banner", func(t *testing.T) {
		t.Parallel()
		server := newTestServer(t, nil)
		c := server.client(t)

		rec := c.postForm("/auth/login", url.Values{"email": {testfixtures.DemoEmail}, "password": {"nope"}})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), application.MsgInvalidCredentials)
		require.Contains(t, rec.Body.String(), `value="demo@example.com"`)
		require.False(t, c.session().LoggedIn)

		items, err := server.storage.ListItems(context.Background(), c.cookie.Value)
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("empty login form", func(t *testing.T) {
		t.Parallel()
		rec := newTestServer(t, nil).client(t).postForm("/auth/login", url.Values{"email": {"demo@example.com"}})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Contains(t, rec.Body.String(), "Veuillez remplir tous les champs")
	})

	t.Run("registration signs the new user in", func(t *testing.T) {
		t.Parallel()
		c := newTestServer(t, nil).client(t)

		rec := c.postForm("/auth/register", url.Values{
			"name":            {"Amina B."},
			"email":           {"amina@example.ma"},
			"phone":           {"+212600000000"},
			"age":             {"21"},
			"password":        {"secret1"},
			"confirmPassword": {"secret1"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		session := c.session()
		require.True(t, session.LoggedIn)
		require.Equal(t, "user-1", session.User.ID)
		require.Equal(t, "amina@example.ma", session.User.Email)
		require.Equal(t, 21, session.User.Age)
	})

	t.Run("registration banner keeps the typed fields", func(t *testing.T) {
		t.Parallel()
		c := newTestServer(t, nil).client(t)

		rec := c.postForm("/auth/register", url.Values{
			"name":            {"Amina B."},
			"email":           {"amina@example.ma"},
			"phone":           {"+212600000000"},
			"age":             {"21"},
			"password":        {"secret1"},
			"confirmPassword": {"secret2"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "Les mots de passe ne correspondent pas")
		require.Contains(t, body, `value="Amina B."`)
		require.NotContains(t, body, "secret1")
		require.False(t, c.session().LoggedIn)
	})
}

func bookingForm() url.Values {
	return url.Values{
		"fullName":   {"Youssef El Amrani"},
		"age":        {"24"},
		"scooterId":  {"scooter1"},
		"rentalDate": {testfixtures.ReferenceDate(1)},
		"rentalTime": {"09:00"},
		"returnDate": {testfixtures.ReferenceDate(1)},
		"returnTime": {"18:00"},
		"location":   {"store-main"},
	}
}

func TestRent(t *testing.T) {
	t.Parallel()

	t.Run("prefills the signed in user", func(t *testing.T) {
		t.Parallel()
		c := newTestServer(t, nil).client(t)
		c.postForm("/auth/login", demoLogin())

		body := c.get("/rent").Body.String()
		require.Contains(t, body, `value="Demo User"`)
		require.Contains(t, body, `value="28"`)
		require.Contains(t, body, `min="`+testfixtures.ReferenceDate(0)+`"`)
	})

	t.Run("invalid draft re-renders with errors", func(t *testing.T) {
		t.Parallel()
		server := newTestServer(t, nil)
		form := bookingForm()
		form.Set("age", "15")
		form.Set("isDelivery", "on")

		rec := server.client(t).postForm("/rent", form)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "Vous devez avoir au moins 16 ans")
		require.Contains(t, body, html.EscapeString(application.MsgDeliveryAddressRequired))
		require.Contains(t, body, `value="Youssef El Amrani"`)
		require.Empty(t, server.clock.Slept())
	})

	t.Run("valid draft is confirmed", func(t *testing.T) {
		t.Parallel()
		server := newTestServer(t, nil)

		rec := server.client(t).postForm("/rent", bookingForm())
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, `<strong class="order-id">order-1</strong>`)
		require.Contains(t, body, "create-qr-code/?size=150x150&amp;data=order-1")
		require.NotContains(t, body, `action="/rent"`)
		require.Equal(t, []time.Duration{1500 * time.Millisecond}, server.clock.Slept())
	})
}

func TestContact(t *testing.T) {
	t.Parallel()
	server := newTestServer(t, nil)

	rec := server.client(t).postForm("/contact", url.Values{"name": {"Sara"}, "email": {"sara@"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), html.EscapeString(application.MsgInvalidEmail))
	require.Contains(t, rec.Body.String(), application.MsgMessageRequired)

	rec = server.client(t).postForm("/contact", url.Values{"name": {"Sara"}, "email": {"sara@example.com"}, "message": {"Bonjour"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Message envoyé avec succès!")
}

func TestPricingAPI(t *testing.T) {
	t.Parallel()

	rec := newTestServer(t, nil).client(t).get("/api/pricing")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var tiers []pricingTierDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tiers))
	require.Len(t, tiers, 7)
	require.Equal(t, "20 MAD", tiers[0].Label)
	require.Equal(t, 100, tiers[2].Price)
	require.True(t, tiers[2].IsPopular)
}

func TestDistanceAPI(t *testing.T) {
	t.Parallel()
	server := newTestServer(t, nil)

	positionBody := func(p geo.Point) string {
		return fmt.Sprintf(`{"lat":%v,"lon":%v}`, p.Lat, p.Lon)
	}

	t.Run("measures to the main store", func(t *testing.T) {
		t.Parallel()
		rec := server.client(t).postJSON("/api/distance", positionBody(testfixtures.NadorPort))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp distanceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.InDelta(t, 4.2, resp.DistanceKm, 0.3)
		require.True(t, strings.HasSuffix(resp.Label, " km"))
		require.Equal(t, "store-main", resp.Store.ID)
	})

	t.Run("zero at the store", func(t *testing.T) {
		t.Parallel()
		rec := server.client(t).postJSON("/api/distance", positionBody(testfixtures.MainStorePosition))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"distance_km":0`)
		require.Contains(t, rec.Body.String(), `"label":"0,0 km"`)
	})

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"malformed body", `{"lat":`, http.StatusBadRequest, "Requête invalide."},
		{"missing longitude", `{"lat":34.6}`, http.StatusUnprocessableEntity, `"lon":"La longitude est requise"`},
		{"out of range", `{"lat":134.6,"lon":0}`, http.StatusUnprocessableEntity, "Position invalide."},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := server.client(t).postJSON("/api/distance", tc.body)
			require.Equal(t, tc.status, rec.Code)
			require.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestStorageAPI(t *testing.T) {
	t.Parallel()
	server := newTestServer(t, nil)
	c := server.client(t)

	list := func(c *client) storageResponse {
		t.Helper()
		rec := c.get("/api/storage")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp storageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	require.Empty(t, list(c).Items)
	require.Contains(t, c.get("/api/storage").Body.String(), `"items":[]`)

	c.postForm("/auth/login", demoLogin())
	items := list(c).Items
	require.Len(t, items, 1)
	require.Equal(t, application.SessionStorageKey, items[0].Key)
	require.Contains(t, items[0].Value, `"id":"user-1"`)
	require.Equal(t, server.clock.Now().UTC(), items[0].UpdatedAt.UTC())

	require.Empty(t, list(server.client(t)).Items)

	c.postForm("/auth/logout", nil)
	require.Empty(t, list(c).Items)

	rec := c.postJSON("/api/storage", `{}`)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type stubHealth struct {
	pingErr    error
	version    string
	versionErr error
}

func (s stubHealth) Ping(context.Context) error { return s.pingErr }

func (s stubHealth) SchemaVersion(context.Context) (string, error) { return s.version, s.versionErr }

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := newTestServer(t, nil).client(t).get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = newTestServer(t, stubHealth{version: "0001"}).client(t).get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","schema":"0001"}`, rec.Body.String())

	rec = newTestServer(t, stubHealth{pingErr: errors.New("database is closed")}).client(t).get("/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())

	rec = newTestServer(t, stubHealth{versionErr: errors.New("no such table")}).client(t).get("/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()
	server := newTestServer(t, nil)

	server.client(t).get("/missing")

	var completed map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(server.logs.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "request completed" {
			completed = entry
		}
	}
	require.NotNil(t, completed)
	require.Equal(t, float64(http.StatusNotFound), completed["status"])
	require.Equal(t, "/missing", completed["path"])
	require.NotEmpty(t, completed["request_id"])
}

func TestResponderServiceErrors(t *testing.T) {
	t.Parallel()
	r := newResponder(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &application.ValidationError{FieldErrors: map[string]string{"lat": "x"}}, http.StatusUnprocessableEntity},
		{"cancelled", application.ErrSubmissionCancelled, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			r.handleServiceError(context.Background(), rec, tc.err)
			require.Equal(t, tc.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body.Message)
		})
	}
}
