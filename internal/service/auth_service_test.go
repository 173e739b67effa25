package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhom11/attendance-api/internal/models"
	"github.com/nhom11/attendance-api/pkg/clock"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

type mockAuthUserRepo struct {
	user             *models.User
	refreshTokens    map[string]*models.RefreshToken
	lastLoginUpdated bool
	passwordHash     string
	revokedAll       bool
}

func (m *mockAuthUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.user == nil || m.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthUserRepo) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	m.passwordHash = passwordHash
	if m.user != nil && m.user.ID == id {
		m.user.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID int64, now time.Time) error {
	m.revokedAll = true
	return nil
}

func (m *mockAuthUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

type mockResetRepo struct {
	created   []*models.PasswordReset
	redeemErr error
	redeemed  string
	newHash   string
}

func (m *mockResetRepo) Create(ctx context.Context, reset *models.PasswordReset) error {
	m.created = append(m.created, reset)
	return nil
}

func (m *mockResetRepo) Redeem(ctx context.Context, token, newPasswordHash string, now time.Time) error {
	if m.redeemErr != nil {
		return m.redeemErr
	}
	m.redeemed = token
	m.newHash = newPasswordHash
	return nil
}

func newAuthService(users *mockAuthUserRepo, resets *mockResetRepo, now clock.Clock) *AuthService {
	return NewAuthService(users, resets, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "attendance-api",
	}, now)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthUserRepo{user: &models.User{ID: 1, Username: "teacher01", Email: "teacher@example.com", PasswordHash: string(password), Active: true, Role: models.RoleTeacher}}
	svc := newAuthService(repo, &mockResetRepo{}, clock.System())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "teacher01", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleTeacher, res.User.Role)
	assert.True(t, repo.lastLoginUpdated)
	assert.NotEmpty(t, repo.refreshTokens)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthUserRepo{user: &models.User{ID: 1, Username: "teacher01", PasswordHash: string(password), Active: true}}
	svc := newAuthService(repo, &mockResetRepo{}, clock.System())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "teacher01", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthUserRepo{user: &models.User{ID: 1, Username: "teacher01", PasswordHash: string(password), Active: false}}
	svc := newAuthService(repo, &mockResetRepo{}, clock.System())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "teacher01", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockAuthUserRepo{
		user:          &models.User{ID: 1, Username: "teacher01", Active: true, Role: models.RoleTeacher},
		refreshTokens: map[string]*models.RefreshToken{},
	}
	repo.refreshTokens["old-token"] = &models.RefreshToken{ID: "rt1", UserID: 1, Token: "old-token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := newAuthService(repo, &mockResetRepo{}, clock.System())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "old-token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["old-token"].Revoked)
}

func TestAuthServiceRefreshRejectsRevoked(t *testing.T) {
	repo := &mockAuthUserRepo{
		user:          &models.User{ID: 1, Active: true},
		refreshTokens: map[string]*models.RefreshToken{},
	}
	repo.refreshTokens["old-token"] = &models.RefreshToken{ID: "rt1", UserID: 1, Token: "old-token", Revoked: true, ExpiresAt: time.Now().Add(time.Hour)}
	svc := newAuthService(repo, &mockResetRepo{}, clock.System())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.DefaultCost)
	repo := &mockAuthUserRepo{user: &models.User{ID: 1, PasswordHash: string(oldHash), Active: true}}
	svc := newAuthService(repo, &mockResetRepo{}, clock.System())

	err := svc.ChangePassword(context.Background(), 1, models.ChangePasswordRequest{OldPassword: "oldpass", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NotEqual(t, string(oldHash), repo.user.PasswordHash)
	assert.True(t, repo.revokedAll)
}

func TestRequestPasswordResetIssuesCode(t *testing.T) {
	frozen := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	repo := &mockAuthUserRepo{user: &models.User{ID: 1, Email: "teacher@example.com", Active: true}}
	resets := &mockResetRepo{}
	svc := newAuthService(repo, resets, clock.Fixed(frozen))

	res, err := svc.RequestPasswordReset(context.Background(), models.ResetPasswordRequest{Email: "teacher@example.com"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Token, 6)
	assert.Equal(t, frozen.In(clock.Location).Add(15*time.Minute), res.ExpiresAt)
	require.Len(t, resets.created, 1)
	assert.Equal(t, int64(1), resets.created[0].UserID)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	repo := &mockAuthUserRepo{}
	resets := &mockResetRepo{}
	svc := newAuthService(repo, resets, clock.System())

	res, err := svc.RequestPasswordReset(context.Background(), models.ResetPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, resets.created)
}

func TestConfirmPasswordResetInvalidCode(t *testing.T) {
	resets := &mockResetRepo{redeemErr: sql.ErrNoRows}
	svc := newAuthService(&mockAuthUserRepo{}, resets, clock.System())

	err := svc.ConfirmPasswordReset(context.Background(), models.ConfirmResetPasswordRequest{Token: "000000", NewPassword: "newpassword"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenInvalid.Code, appErrors.FromError(err).Code)
}

func TestConfirmPasswordResetSuccess(t *testing.T) {
	resets := &mockResetRepo{}
	svc := newAuthService(&mockAuthUserRepo{}, resets, clock.System())

	err := svc.ConfirmPasswordReset(context.Background(), models.ConfirmResetPasswordRequest{Token: "482913", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.Equal(t, "482913", resets.redeemed)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resets.newHash), []byte("newpassword")))
}

func TestValidateToken(t *testing.T) {
	svc := newAuthService(&mockAuthUserRepo{}, &mockResetRepo{}, clock.System())
	user := &models.User{ID: 1, Username: "teacher01", Role: models.RoleTeacher}
	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := newAuthService(&mockAuthUserRepo{}, &mockResetRepo{}, clock.System())
	token, _, err := issuer.generateAccessToken(&models.User{ID: 1})
	require.NoError(t, err)

	verifier := NewAuthService(&mockAuthUserRepo{}, &mockResetRepo{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "other-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour,
	}, clock.System())
	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
