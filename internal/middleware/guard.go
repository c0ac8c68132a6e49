package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yojeong/internal/domain"
	"yojeong/internal/pkg/jwt"
	"yojeong/internal/pkg/response"
)

const (
	SessionCookie = "session"
	principalKey  = "principal"
)

// AccessKind distinguishes page views from stateless admin mutations.
type AccessKind int

const (
	// AccessPage sends unauthorised callers to a login page.
	AccessPage AccessKind = iota
	// AccessAction rejects unauthorised callers with 403 and no redirect.
	AccessAction
)

type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	Deny
)

// Decide is the access rule for every guarded route: the principal must hold
// one of the roles; otherwise pages redirect and actions are denied.
func Decide(p domain.Principal, kind AccessKind, roles ...domain.UserRole) Decision {
	for _, r := range roles {
		if p.Is(r) {
			return Allow
		}
	}
	if kind == AccessAction {
		return Deny
	}
	return RedirectToLogin
}

// UserLookup resolves the account behind a session cookie.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Sessions issues and reads the signed session cookie.
type Sessions struct {
	jwt      *jwt.Service
	users    UserLookup
	secure   bool
	sameSite http.SameSite
}

func NewSessions(j *jwt.Service, users UserLookup, secure bool, sameSite string) *Sessions {
	mode := http.SameSiteLaxMode
	switch strings.ToLower(sameSite) {
	case "strict":
		mode = http.SameSiteStrictMode
	case "none":
		mode = http.SameSiteNoneMode
	}
	return &Sessions{jwt: j, users: users, secure: secure, sameSite: mode}
}

func (s *Sessions) Start(c *gin.Context, p domain.Principal) error {
	token, err := s.jwt.GenerateToken(p)
	if err != nil {
		return err
	}
	c.SetSameSite(s.sameSite)
	c.SetCookie(SessionCookie, token, int(s.jwt.TTL().Seconds()), "/", "", s.secure, true)
	c.Set(principalKey, p)
	return nil
}

func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(s.sameSite)
	c.SetCookie(SessionCookie, "", -1, "/", "", s.secure, true)
	c.Set(principalKey, domain.Principal{})
}

// Load attaches the principal from the session cookie. The account must still
// exist under the same email and role; a bad, expired or stale cookie is
// dropped and the request continues anonymously.
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		claims, err := s.jwt.ValidateToken(raw)
		if err != nil {
			s.Clear(c)
			c.Next()
			return
		}

		p, err := s.resolve(c.Request.Context(), claims.Principal())
		switch {
		case errors.Is(err, domain.ErrNotFound):
			s.Clear(c)
		case err != nil:
			_ = c.Error(err)
		default:
			c.Set(principalKey, p)
		}
		c.Next()
	}
}

// resolve re-reads the account so deleted, re-keyed or re-roled users lose
// their session. The display name is taken from the store.
func (s *Sessions) resolve(ctx context.Context, claimed domain.Principal) (domain.Principal, error) {
	u, err := s.users.GetByEmail(ctx, claimed.Email)
	if err != nil {
		return domain.Principal{}, err
	}
	if u.Email != domain.NormalizeEmail(claimed.Email) || u.Role != claimed.Role {
		return domain.Principal{}, domain.ErrNotFound
	}
	return domain.PrincipalOf(u), nil
}

func CurrentPrincipal(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}

// RequirePage guards a page-level entry point.
func RequirePage(loginPath string, roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch Decide(CurrentPrincipal(c), AccessPage, roles...) {
		case Allow:
			c.Next()
		default:
			response.Redirect(c, loginPath)
			c.Abort()
		}
	}
}

// RequireAction guards a mutation reached through a bare link.
func RequireAction(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Decide(CurrentPrincipal(c), AccessAction, roles...) != Allow {
			response.Error(c, http.StatusForbidden, "UNAUTHORIZED", "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
