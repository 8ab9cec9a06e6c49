// internal/httpserver/auth.go
//
// Password gate for the routes that change the board.
// Responsibilities:
//   - POST /auth/login checks a single board password against a bcrypt hash
//     and issues an HS256 JWT (cookie + JSON body).
//   - requireAuth accepts the token from "Authorization: Bearer" or the cookie.
//
// Notes:
//   - An empty password hash disables the gate: every request may edit.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig configures the edit gate.
type AuthConfig struct {
	// PasswordHash is the bcrypt hash of the board password.
	PasswordHash string
	// Secret signs the tokens.
	Secret string
	// ExpiresDays is the token lifetime. Defaults to 14.
	ExpiresDays int
	// CookieName holds the token in browsers. Defaults to "dorfhelper_token".
	CookieName string
	// SecureCookie marks the cookie Secure and SameSite=None.
	SecureCookie bool
}

// ErrBadPassword is returned by HashPassword for unusable passwords.
var ErrBadPassword = errors.New("password must be 8–72 bytes")

func (a AuthConfig) enabled() bool { return a.PasswordHash != "" }

func (a AuthConfig) cookieName() string {
	if a.CookieName == "" {
		return "dorfhelper_token"
	}
	return a.CookieName
}

func (a AuthConfig) secret() []byte {
	if a.Secret == "" {
		return []byte("dev_secret_change_me")
	}
	return []byte(a.Secret)
}

// HashPassword returns the bcrypt hash to configure as the board password.
func HashPassword(pw string) (string, error) {
	if len(pw) < 8 || len(pw) > 72 {
		return "", ErrBadPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost) // cost=10
	return string(b), err
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// ctxEditorKey marks requests that passed the gate.
type ctxEditorKey struct{}

type loginReq struct {
	Password string `json:"password"`
}

// handleLogin checks the password, sets the auth cookie and returns the token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Auth.enabled() {
		writeJSON(w, http.StatusOK, map[string]any{"auth": false})
		return
	}
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !checkPassword(s.cfg.Auth.PasswordHash, body.Password) {
		writeErrorCode(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	tok, exp, err := s.signJWT()
	if err != nil {
		writeErrorCode(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"auth": true, "token": tok, "expires": exp.UTC().Format(time.RFC3339)})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// signJWT creates an HS256 JWT for the board with the configured expiry.
func (s *Server) signJWT() (string, time.Time, error) {
	days := s.cfg.Auth.ExpiresDays
	if days <= 0 {
		days = 14
	}
	now := time.Now()
	exp := now.Add(time.Duration(days) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"board": s.cfg.BoardName,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	})
	ss, err := t.SignedString(s.cfg.Auth.secret())
	return ss, exp, err
}

// setAuthCookie writes the auth token cookie with appropriate security attributes.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, s.authCookie(token, exp))
}

// clearAuthCookie deletes the auth token cookie.
func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	c := s.authCookie("", time.Time{})
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func (s *Server) authCookie(token string, exp time.Time) *http.Cookie {
	secure := s.cfg.Auth.SecureCookie
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	return &http.Cookie{
		Name:     s.cfg.Auth.cookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	}
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.Auth.cookieName()); err == nil {
		return c.Value
	}
	return ""
}

// requireAuth enforces a valid JWT for this board when a password is set.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.cfg.Auth.enabled() {
				next.ServeHTTP(w, r)
				return
			}
			tokenStr := s.bearerOrCookie(r)
			if tokenStr == "" {
				writeErrorCode(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return s.cfg.Auth.secret(), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				writeErrorCode(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			if board, _ := claims["board"].(string); board != s.cfg.BoardName {
				writeErrorCode(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxEditorKey{}, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
