package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what a valid token says about the caller. It is placed into
// the request context by the auth middleware.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Tokens signs and verifies HS256 JWTs and owns the auth cookie settings.
type Tokens struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Secure     bool // NODE_ENV=production: Secure + SameSite=None
}

// Sign creates a token with id/username that expires after TTL.
func (t Tokens) Sign(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(t.TTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := tok.SignedString(t.Secret)
	return ss, exp, err
}

// Parse verifies tokenStr and returns the identity it carries.
func (t Tokens) Parse(tokenStr string) (*Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: id, Username: username}, nil
}

func (t Tokens) sameSite() http.SameSite {
	if t.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// SetCookie writes the auth token cookie.
func (t Tokens) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: t.sameSite(),
		Expires:  exp,
	})
}

// ClearCookie deletes the auth token cookie.
func (t Tokens) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: t.sameSite(),
		MaxAge:   -1,
	})
}

// FromRequest extracts a bearer token from the Authorization header or the
// auth cookie.
func (t Tokens) FromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(t.CookieName); err == nil {
		return c.Value
	}
	return ""
}

type ctxKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the signed-in caller, or nil for guests.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
