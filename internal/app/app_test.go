package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yojeong/internal/config"
	"yojeong/internal/domain"
	"yojeong/internal/store"
)

const (
	adminEmail    = "admin@yojeong.com"
	adminPassword = "admin-secret"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		AppEnv:             "test",
		StoreBackend:       backend,
		DatabaseURL:        ":memory:",
		SessionSecret:      "test-session-secret",
		SessionTTL:         time.Hour,
		CookieSameSite:     "Lax",
		StatusPolicy:       "permissive",
		BlobBackend:        "memory",
		AdminEmail:         adminEmail,
		AdminPassword:      adminPassword,
		AdminName:          "Admin User",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:          config.RateLimitConfig{Enabled: false, Capacity: 10, Refill: time.Second, TTL: time.Minute},
	}
}

// client keeps cookies between requests like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postRaw(path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

func (c *client) upload(path, service, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(c.t, mw.WriteField("service", service))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = fw.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type dashboard struct {
	Bookings []domain.Booking  `json:"bookings"`
	Sessions []domain.Session  `json:"sessions"`
	Feedback []domain.Feedback `json:"feedback"`
	Flash    string            `json:"flash"`
}

type panel struct {
	Users    []domain.User     `json:"users"`
	Bookings []domain.Booking  `json:"bookings"`
	Sessions []domain.Session  `json:"sessions"`
	Feedback []domain.Feedback `json:"feedback"`
	Flash    string            `json:"flash"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func setupApp(t *testing.T, backend string) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a, err := New(context.Background(), testConfig(backend), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func backends(t *testing.T, fn func(t *testing.T, a *App)) {
	for _, b := range []string{store.BackendMemory, store.BackendSQL} {
		t.Run(b, func(t *testing.T) { fn(t, setupApp(t, b)) })
	}
}

func signupAndLogin(t *testing.T, c *client, name, email, pass string) {
	t.Helper()
	w := c.postForm("/signup", url.Values{"name": {name}, "email": {email}, "password": {pass}, "confirm_password": {pass}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	w = c.postForm("/login", url.Values{"email": {email}, "password": {pass}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func loginAdmin(t *testing.T, c *client) {
	t.Helper()
	w := c.postForm("/admin/login", url.Values{"email": {adminEmail}, "password": {adminPassword}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, "/admin", w.Header().Get("Location"))
}

func TestSignupLoginBookSessionDashboard(t *testing.T) {
	backends(t, func(t *testing.T, a *App) {
		c := newClient(t, a.Router())
		signupAndLogin(t, c, "Jane", "jane@x.com", "p1")

		today := time.Now().Format(domain.DateLayout)
		w := c.postForm("/book_session", url.Values{
			"session_date": {today},
			"session_type": {"Portrait"},
			"photographer": {"Kim"},
			"session_time": {"10:00"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))

		w = c.get("/dashboard")
		require.Equal(t, http.StatusOK, w.Code)
		env := decode[dashboard](t, w)
		require.Len(t, env.Data.Sessions, 1)
		assert.Equal(t, domain.SessionPending, env.Data.Sessions[0].Status)
		assert.Equal(t, "Portrait (with Kim)", env.Data.Sessions[0].Service)
		assert.Equal(t, "Session booked. We will confirm it shortly.", env.Data.Flash)
	})
}

func TestPastSessionIsRejected(t *testing.T) {
	a := setupApp(t, store.BackendMemory)
	c := newClient(t, a.Router())
	signupAndLogin(t, c, "Jane", "jane@x.com", "p1")

	w := c.postForm("/book_session", url.Values{
		"session_date": {"2001-01-01"},
		"session_type": {"Portrait"},
		"photographer": {"Kim"},
		"session_time": {"10:00"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	env := decode[dashboard](t, c.get("/dashboard"))
	assert.Empty(t, env.Data.Sessions)
	assert.Equal(t, "Error: You cannot book a session for 2001-01-01.", env.Data.Flash)
}

func TestLoginFailuresAreInline(t *testing.T) {
	a := setupApp(t, store.BackendMemory)
	c := newClient(t, a.Router())
	signupAndLogin(t, c, "Jane", "jane@x.com", "p1")

	w := c.postForm("/login", url.Values{"email": {"jane@x.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid User Credentials", decode[any](t, w).Error.Message)

	w = c.postForm("/login", url.Values{"email": {adminEmail}, "password": {adminPassword}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.postForm("/admin/login", url.Values{"email": {"jane@x.com"}, "password": {"p1"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid Admin Credentials", decode[any](t, w).Error.Message)
}

func TestDuplicateSignupFlashes(t *testing.T) {
	a := setupApp(t, store.BackendMemory)
	c := newClient(t, a.Router())
	signupAndLogin(t, c, "Jane", "jane@x.com", "p1")

	w := c.postForm("/signup", url.Values{"name": {"Jane"}, "email": {"jane@x.com"}, "password": {"p2"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	env := decode[map[string]any](t, c.get("/login"))
	assert.Equal(t, "Account already exists!", env.Data["flash"])

	users, err := a.Store().Users().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAccessAsymmetry(t *testing.T) {
	a := setupApp(t, store.BackendMemory)
	anon := newClient(t, a.Router())

	w := anon.get("/admin")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = anon.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	user := newClient(t, a.Router())
	signupAndLogin(t, user, "Jane", "jane@x.com", "p1")

	for _, path := range []string{"/admin/approve/1", "/admin/reject/1", "/admin/complete_session/1000", "/admin/delete_user/jane@x.com", "/admin/delete_feedback/abc"} {
		for _, c := range []*client{anon, user} {
			w := c.get(path)
			assert.Equal(t, http.StatusForbidden, w.Code, path)
			assert.Empty(t, w.Header().Get("Location"), path)
		}
	}

	w = user.postForm("/edit_user", url.Values{"old_email": {"jane@x.com"}, "new_name": {"X"}, "new_email": {"x@x.com"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, err := a.Store().Users().GetByEmail(context.Background(), "jane@x.com")
	assert.NoError(t, err)

	w = user.get("/admin")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}

func TestUploadApproveDownload(t *testing.T) {
	backends(t, func(t *testing.T, a *App) {
		user := newClient(t, a.Router())
		signupAndLogin(t, user, "Jane", "jane@x.com", "p1")

		w := user.upload("/book", "Skin smoothing", "portrait.png", []byte("png-bytes"))
		require.Equal(t, http.StatusSeeOther, w.Code)

		w = user.upload("/book", "Skin smoothing", "virus.exe", []byte("MZ"))
		require.Equal(t, http.StatusSeeOther, w.Code)

		env := decode[dashboard](t, user.get("/dashboard"))
		require.Len(t, env.Data.Bookings, 1)
		booking := env.Data.Bookings[0]
		assert.Equal(t, domain.BookingPending, booking.Status)
		assert.Equal(t, "Retouch: Skin smoothing", booking.Service)
		assert.Contains(t, env.Data.Flash, "Invalid file type")

		w = user.get("/download/" + booking.FileID)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "png-bytes", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="portrait.png"`)

		other := newClient(t, a.Router())
		signupAndLogin(t, other, "Tom", "tom@x.com", "p2")
		w = other.get("/download/" + booking.FileID)
		assert.Equal(t, http.StatusSeeOther, w.Code)

		adm := newClient(t, a.Router())
		loginAdmin(t, adm)
		w = adm.get("/admin/approve/" + jsonID(booking.ID))
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))

		w = adm.get("/download/" + booking.FileID)
		assert.Equal(t, http.StatusOK, w.Code)

		penv := decode[panel](t, adm.get("/admin"))
		require.Len(t, penv.Data.Bookings, 1)
		assert.Equal(t, domain.BookingConfirmed, penv.Data.Bookings[0].Status)
		assert.Len(t, penv.Data.Users, 3)
	})
}

func TestAdminUserManagement(t *testing.T) {
	a := setupApp(t, store.BackendMemory)
	user := newClient(t, a.Router())
	signupAndLogin(t, user, "Jane", "jane@x.com", "p1")

	w := user.postForm("/submit_feedback", url.Values{"service": {"Portrait"}, "rating": {"5"}, "comment": {"Great"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	adm := newClient(t, a.Router())
	loginAdmin(t, adm)

	w = adm.get("/admin/delete_user/jane@x.com")
	require.Equal(t, http.StatusSeeOther, w.Code)
	penv := decode[panel](t, adm.get("/admin"))
	assert.Contains(t, penv.Data.Flash, "cannot be deleted")
	require.Len(t, penv.Data.Feedback, 1)

	w = adm.postForm("/edit_user", url.Values{"old_email": {"jane@x.com"}, "new_name": {"Jane Kim"}, "new_email": {"jk@x.com"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = adm.get("/admin/delete_feedback/" + penv.Data.Feedback[0].ID)
	require.Equal(t, http.StatusSeeOther, w.Code)

	penv = decode[panel](t, adm.get("/admin"))
	assert.Empty(t, penv.Data.Feedback)

	w = adm.get("/admin/delete_user/jk@x.com")
	require.Equal(t, http.StatusSeeOther, w.Code)
	_, err := a.Store().Users().GetByEmail(context.Background(), "jk@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	w = user.get("/logout")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	w = user.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestStaleSessionCannotWrite(t *testing.T) {
	sessionForm := url.Values{
		"session_date": {time.Now().Format(domain.DateLayout)},
		"session_type": {"Portrait"},
		"photographer": {"Kim"},
		"session_time": {"10:00"},
	}

	backends(t, func(t *testing.T, a *App) {
		ctx := context.Background()
		adm := newClient(t, a.Router())
		loginAdmin(t, adm)

		t.Run("deleted account", func(t *testing.T) {
			jane := newClient(t, a.Router())
			signupAndLogin(t, jane, "Jane", "jane@x.com", "p1")

			require.Equal(t, http.StatusSeeOther, adm.get("/admin/delete_user/jane@x.com").Code)
			_, err := a.Store().Users().GetByEmail(ctx, "jane@x.com")
			require.ErrorIs(t, err, domain.ErrNotFound)

			w := jane.postForm("/book_session", sessionForm)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))

			sessions, err := a.Store().Sessions().ListByOwner(ctx, "jane@x.com")
			require.NoError(t, err)
			assert.Empty(t, sessions)
		})

		t.Run("re-keyed account", func(t *testing.T) {
			tom := newClient(t, a.Router())
			signupAndLogin(t, tom, "Tom", "tom@x.com", "p2")

			w := adm.postForm("/edit_user", url.Values{"old_email": {"tom@x.com"}, "new_name": {"Tom Lee"}, "new_email": {"tl@x.com"}})
			require.Equal(t, http.StatusSeeOther, w.Code)

			w = tom.postForm("/submit_feedback", url.Values{"service": {"Portrait"}, "rating": {"4"}, "comment": {"ok"}})
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))

			for _, email := range []string{"tom@x.com", "tl@x.com"} {
				fb, err := a.Store().Feedback().ListByOwner(ctx, email)
				require.NoError(t, err)
				assert.Empty(t, fb, email)
			}

			w = tom.get("/dashboard")
			assert.Equal(t, http.StatusSeeOther, w.Code)

			w = tom.postForm("/login", url.Values{"email": {"tl@x.com"}, "password": {"p2"}})
			require.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, http.StatusOK, tom.get("/dashboard").Code)
		})
	})
}

func TestUnreadableFormsAreRejected(t *testing.T) {
	a := setupApp(t, store.BackendMemory)
	ctx := context.Background()

	anon := newClient(t, a.Router())
	w := anon.postRaw("/login", "application/json", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[any](t, w).Error.Code)

	user := newClient(t, a.Router())
	signupAndLogin(t, user, "Jane", "jane@x.com", "p1")

	for _, path := range []string{"/book_session", "/submit_feedback"} {
		w = user.postRaw(path, "application/json", "{")
		require.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"), path)

		env := decode[dashboard](t, user.get("/dashboard"))
		assert.Equal(t, "The form could not be read. Please try again.", env.Data.Flash, path)
	}
	sessions, err := a.Store().Sessions().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	fb, err := a.Store().Feedback().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, fb)

	adm := newClient(t, a.Router())
	loginAdmin(t, adm)
	w = adm.postRaw("/edit_user", "application/json", "{")
	require.Equal(t, http.StatusSeeOther, w.Code)
	penv := decode[panel](t, adm.get("/admin"))
	assert.Equal(t, "Please provide the current email, a new name and a valid new email.", penv.Data.Flash)
	_, err = a.Store().Users().GetByEmail(ctx, "jane@x.com")
	assert.NoError(t, err)
}

func TestHealth(t *testing.T) {
	a := setupApp(t, store.BackendMemory)
	w := newClient(t, a.Router()).get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
