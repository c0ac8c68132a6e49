package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yojeong/internal/domain"
	"yojeong/internal/pkg/jwt"
	"yojeong/internal/store/memory"
)

var (
	admin  = domain.Principal{Name: "Admin User", Email: "admin@yojeong.com", Role: domain.RoleAdmin}
	member = domain.Principal{Name: "Jane", Email: "jane@example.com", Role: domain.RoleUser}
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		p    domain.Principal
		kind AccessKind
		role domain.UserRole
		want Decision
	}{
		{"admin page as admin", admin, AccessPage, domain.RoleAdmin, Allow},
		{"admin page as user", member, AccessPage, domain.RoleAdmin, RedirectToLogin},
		{"admin page anonymous", domain.Principal{}, AccessPage, domain.RoleAdmin, RedirectToLogin},
		{"admin action as user", member, AccessAction, domain.RoleAdmin, Deny},
		{"admin action anonymous", domain.Principal{}, AccessAction, domain.RoleAdmin, Deny},
		{"user page as user", member, AccessPage, domain.RoleUser, Allow},
		{"user page as admin", admin, AccessPage, domain.RoleUser, RedirectToLogin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.p, tt.kind, tt.role))
		})
	}
}

func setupRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	for _, p := range []domain.Principal{admin, member} {
		require.NoError(t, st.Users().Create(context.Background(), &domain.User{
			Email: p.Email, Name: p.Name, PasswordHash: "x", Role: p.Role,
		}))
	}
	sessions := NewSessions(jwt.New("test-secret", time.Hour), st.Users(), false, "lax")

	r := gin.New()
	r.Use(sessions.Load())
	r.GET("/admin", RequirePage("/admin/login", domain.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "panel for "+CurrentPrincipal(c).Email)
	})
	r.GET("/admin/approve/:id", RequireAction(domain.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "approved")
	})
	r.GET("/dashboard", RequirePage("/login", domain.RoleUser), func(c *gin.Context) {
		c.String(http.StatusOK, "dashboard")
	})
	r.POST("/login-as/:role", func(c *gin.Context) {
		p := member
		if c.Param("role") == "admin" {
			p = admin
		}
		require.NoError(t, sessions.Start(c, p))
		c.Status(http.StatusNoContent)
	})
	return r, st
}

func loginCookie(t *testing.T, r *gin.Engine, role string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login-as/"+role, nil))
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func get(r *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequirePage_RedirectsAnonymous(t *testing.T) {
	r, _ := setupRouter(t)

	w := get(r, "/admin", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = get(r, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequirePage_AllowsRole(t *testing.T) {
	r, _ := setupRouter(t)

	w := get(r, "/admin", loginCookie(t, r, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "panel for admin@yojeong.com", w.Body.String())
}

func TestRequirePage_WrongRoleRedirects(t *testing.T) {
	r, _ := setupRouter(t)

	w := get(r, "/admin", loginCookie(t, r, "user"))
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = get(r, "/dashboard", loginCookie(t, r, "admin"))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireAction_Forbidden(t *testing.T) {
	r, _ := setupRouter(t)

	for _, cookie := range []*http.Cookie{nil, loginCookie(t, r, "user")} {
		w := get(r, "/admin/approve/1", cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Location"))
		assert.Contains(t, w.Body.String(), "Unauthorized")
	}

	w := get(r, "/admin/approve/1", loginCookie(t, r, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessions_TamperedCookieIsAnonymous(t *testing.T) {
	r, _ := setupRouter(t)

	cookie := loginCookie(t, r, "admin")
	cookie.Value += "x"

	w := get(r, "/admin", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestSessions_ForeignSecretRejected(t *testing.T) {
	r, _ := setupRouter(t)

	token, err := jwt.New("other-secret", time.Hour).GenerateToken(admin)
	require.NoError(t, err)

	w := get(r, "/admin", &http.Cookie{Name: SessionCookie, Value: token})
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestSessions_DeletedUserIsAnonymous(t *testing.T) {
	r, st := setupRouter(t)
	cookie := loginCookie(t, r, "user")

	deleted, err := st.Users().Delete(context.Background(), member.Email)
	require.NoError(t, err)
	require.True(t, deleted)

	w := get(r, "/dashboard", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "stale session cookie should be cleared")
}

func TestSessions_RekeyedUserIsAnonymous(t *testing.T) {
	r, st := setupRouter(t)
	cookie := loginCookie(t, r, "user")

	require.NoError(t, st.Users().Rekey(context.Background(), member.Email, "Jane K", "jk@example.com"))

	w := get(r, "/dashboard", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestSessions_RoleMustMatchStore(t *testing.T) {
	r, _ := setupRouter(t)

	// signed with the right secret but claiming admin for a plain user
	token, err := jwt.New("test-secret", time.Hour).GenerateToken(domain.Principal{
		Name: member.Name, Email: member.Email, Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	cookie := &http.Cookie{Name: SessionCookie, Value: token}

	assert.Equal(t, http.StatusSeeOther, get(r, "/admin", cookie).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin/approve/1", cookie).Code)
}
