package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/hanoi/internal/db"
)

func newUsers(t *testing.T) *Users {
	t.Helper()
	sqlDB, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewUsers(sqlDB).WithCost(bcrypt.MinCost)
}

func TestUsers_CreateAndAuthenticate(t *testing.T) {
	u := newUsers(t)
	ctx := context.Background()

	created, err := u.Create(ctx, "  disk_mover ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "disk_mover", created.Username)
	assert.NotEmpty(t, created.ID)

	got, err := u.Authenticate(ctx, "DISK_MOVER", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = u.Authenticate(ctx, "disk_mover", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = u.Authenticate(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = u.Create(ctx, "Disk_Mover", "password456")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	byID, err := u.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "disk_mover", byID.Username)
	_, err = u.ByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsers_ValidateSignup(t *testing.T) {
	u := newUsers(t)
	cases := []struct{ name, user, pw string }{
		{"short username", "ab", "password123"},
		{"long username", "abcdefghijklmnopqrstuvwxy", "password123"},
		{"bad characters", "disk mover", "password123"},
		{"short password", "mover", "1234567"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := u.Create(context.Background(), tc.user, tc.pw)
			assert.ErrorIs(t, err, ErrInvalidSignup)
		})
	}
}

func TestTokens_SignParse(t *testing.T) {
	tk := Tokens{Secret: []byte("s3cret"), TTL: time.Hour, CookieName: "hanoi_token"}
	tok, exp, err := tk.Sign("u1", "mover")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := tk.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, &Identity{ID: "u1", Username: "mover"}, id)

	other := Tokens{Secret: []byte("different")}
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := Tokens{Secret: tk.Secret, TTL: -time.Minute}
	old, _, err := expired.Sign("u1", "mover")
	require.NoError(t, err)
	_, err = tk.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_FromRequest(t *testing.T) {
	tk := Tokens{CookieName: "hanoi_token"}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, tk.FromRequest(r))

	r.AddCookie(&http.Cookie{Name: "hanoi_token", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", tk.FromRequest(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", tk.FromRequest(r))
}

func TestTokens_Cookies(t *testing.T) {
	tk := Tokens{CookieName: "hanoi_token", Secure: true}
	rec := httptest.NewRecorder()
	tk.SetCookie(rec, "tok", time.Now().Add(time.Hour))
	tk.ClearCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
	assert.Equal(t, -1, cookies[1].MaxAge)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	ctx = WithIdentity(ctx, &Identity{ID: "u1", Username: "mover"})
	assert.Equal(t, "u1", FromContext(ctx).ID)
}
