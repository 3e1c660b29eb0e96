// middleware/exec_auth.go
package middleware

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ExecSessionCookie = "exec_dashboard"
	execSessionTTL    = 12 * time.Hour
	execSessionIssuer = "tansa-exec-dashboard"
	execSessionScope  = "exec_dashboard_verified"
)

var ErrInvalidExecSession = errors.New("invalid exec dashboard session")

type execSessionClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// ExecSessions issues and checks the signed cookie that unlocks the exec
// dashboard after the shared password has been entered.
type ExecSessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewExecSessions(secret string, secureCookie bool) *ExecSessions {
	return &ExecSessions{
		secret: []byte(secret),
		ttl:    execSessionTTL,
		secure: secureCookie,
		now:    time.Now,
	}
}

// Issue returns a signed HS256 token and when it expires.
func (s *ExecSessions) Issue() (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("exec dashboard secret not configured")
	}
	now := s.now().UTC()
	exp := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, execSessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    execSessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Scope: execSessionScope,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign exec session: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, expiry, issuer and scope.
func (s *ExecSessions) Verify(token string) error {
	if token == "" || len(s.secret) == 0 {
		return ErrInvalidExecSession
	}

	var claims execSessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(execSessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExecSession, err)
	}
	if claims.Scope != execSessionScope {
		return ErrInvalidExecSession
	}
	return nil
}

// SetCookie issues a session and attaches it to the response.
func (s *ExecSessions) SetCookie(c *fiber.Ctx) error {
	token, exp, err := s.Issue()
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     ExecSessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(s.ttl.Seconds()),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (s *ExecSessions) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     ExecSessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ExecDashboardAuth rejects requests without a valid session cookie.
func ExecDashboardAuth(sessions *ExecSessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := sessions.Verify(c.Cookies(ExecSessionCookie)); err != nil {
			log.Printf("🚫 [EXEC_AUTH] Rejected %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
