package service

import (
	"testing"
	"time"

	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/lshigami/PrepDeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*authService, UserService) {
	t.Helper()
	repo := repository.NewUserRepository(testutil.NewDB(t))
	cfg := &config.Config{Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour}}
	return NewAuthService(repo, cfg).(*authService), NewUserService(repo)
}

func TestSignupAndLogin(t *testing.T) {
	auth, _ := newAuthFixture(t)

	signed, err := auth.Signup(dto.SignupRequestDTO{Name: " Ada ", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", signed.User.Name)
	assert.Equal(t, "ada@example.com", signed.User.Email)
	assert.NotEmpty(t, signed.Token)

	_, err = auth.Signup(dto.SignupRequestDTO{Name: "Ada", Email: "ada@example.com", Password: "other12"})
	assert.ErrorIs(t, err, ErrUserExists)

	logged, err := auth.Login(dto.LoginRequestDTO{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, logged.User.ID)

	_, err = auth.Login(dto.LoginRequestDTO{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(dto.LoginRequestDTO{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseToken(t *testing.T) {
	auth, _ := newAuthFixture(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }

	token, err := auth.issueToken(42)
	require.NoError(t, err)

	id, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = auth.ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	now = now.Add(2 * time.Hour)
	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_OtherSecret(t *testing.T) {
	auth, _ := newAuthFixture(t)
	token, err := auth.issueToken(1)
	require.NoError(t, err)

	other, _ := newAuthFixture(t)
	other.secret = []byte("someone-else")
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_UpdateAndChangePassword(t *testing.T) {
	auth, users := newAuthFixture(t)
	signed, err := auth.Signup(dto.SignupRequestDTO{Name: "Lin", Email: "lin@example.com", Password: "secret1"})
	require.NoError(t, err)
	id := signed.User.ID

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	updated, err := users.UpdateUser(id, dto.UserUpdateDTO{Name: "Lin W", Contact: "+84 123"}, png)
	require.NoError(t, err)
	assert.Equal(t, "Lin W", updated.Name)
	assert.Equal(t, "+84 123", updated.Contact)
	assert.Contains(t, updated.Image, "data:image/png;base64,")

	_, err = users.UpdateUser(id, dto.UserUpdateDTO{}, []byte("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	err = users.ChangePassword(id, dto.PasswordChangeDTO{OldPassword: "nope", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	require.NoError(t, users.ChangePassword(id, dto.PasswordChangeDTO{OldPassword: "secret1", NewPassword: "secret2"}))

	_, err = auth.Login(dto.LoginRequestDTO{Email: "lin@example.com", Password: "secret2"})
	assert.NoError(t, err)
}
