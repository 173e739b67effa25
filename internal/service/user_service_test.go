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

type mockUserRepo struct {
	byUsername  map[string]*models.User
	byEmail     map[string]*models.User
	byID        map[int64]*models.User
	created     *models.User
	deactivated bool
	deleted     []int64
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var users []models.User
	for _, u := range m.byID {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.byUsername[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) CreateWithProfile(ctx context.Context, user *models.User, now time.Time) error {
	user.ID = 42
	m.created = user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User, now time.Time) error {
	return nil
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id int64, now time.Time) error {
	m.deactivated = true
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func newUserService(repo *mockUserRepo) *UserService {
	return NewUserService(repo, validator.New(), zap.NewNop(), clock.System())
}

func TestUserCreate(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "teacher01",
		Email:    "Teacher@Example.com",
		FullName: "Teacher One",
		Role:     models.RoleTeacher,
		Password: "password",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "teacher@example.com", user.Email)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password")))
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{byUsername: map[string]*models.User{"teacher01": {ID: 1}}}
	svc := newUserService(repo)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "teacher01",
		Email:    "teacher@example.com",
		FullName: "Teacher One",
		Role:     models.RoleTeacher,
		Password: "password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserCreateBadUsername(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "t!",
		Email:    "teacher@example.com",
		FullName: "Teacher One",
		Role:     models.RoleTeacher,
		Password: "password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserCreateBadRole(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "someone",
		Email:    "someone@example.com",
		FullName: "Someone",
		Role:     "PRINCIPAL",
		Password: "password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserUpdateImmutableFields(t *testing.T) {
	repo := &mockUserRepo{byID: map[int64]*models.User{1: {ID: 1, Username: "teacher01", Role: models.RoleTeacher, Email: "old@example.com"}}}
	svc := newUserService(repo)

	user, err := svc.Update(context.Background(), 1, UpdateUserRequest{Email: "new@example.com", FullName: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	// Username and role survive updates untouched.
	assert.Equal(t, "teacher01", user.Username)
	assert.Equal(t, models.RoleTeacher, user.Role)
}

func TestUserDeactivate(t *testing.T) {
	repo := &mockUserRepo{byID: map[int64]*models.User{1: {ID: 1, Active: true}}}
	svc := newUserService(repo)

	require.NoError(t, svc.Deactivate(context.Background(), 1))
	assert.True(t, repo.deactivated)
}

func TestUserDeleteMissing(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	err := svc.Delete(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
