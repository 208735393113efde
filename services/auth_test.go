package services

import (
	"context"
	"testing"
	"time"

	"MediCall/apperror"
	"MediCall/config/jwt"
	"MediCall/config/localcache"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuth(s *stores, revoker TokenRevoker) *AuthService {
	return NewAuthService(s.users, jwt.NewManager("test-secret", time.Hour), revoker, nil)
}

func signup(t *testing.T, auth *AuthService, email, password string) *models.User {
	t.Helper()
	user, err := auth.Signup(context.Background(), validation.Payload{
		"name": "Ana Agent", "email": email, "password": password,
	})
	require.NoError(t, err)
	return user
}

func TestSignupCreatesActiveAgent(t *testing.T) {
	s := newStores()
	auth := newAuth(s, nil)

	user, err := auth.Signup(context.Background(), validation.Payload{
		"name": "Ana", "email": " Ana@Medicall.test ", "password": "secret1", "role": "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, user.Role)
	assert.True(t, user.IsActive)
	assert.Equal(t, "ana@medicall.test", user.Email)
	assert.Equal(t, validation.DefaultDepartment, user.Department)
	assert.NotEqual(t, "secret1", user.Password)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	s := newStores()
	auth := newAuth(s, nil)
	signup(t, auth, "ana@medicall.test", "secret1")

	_, err := auth.Signup(context.Background(), validation.Payload{
		"name": "Other", "email": "ANA@medicall.test", "password": "secret2",
	})
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, util.EMAIL_ALREADY_EXISTS, apperror.PublicMessage(err))
}

func TestSignupValidation(t *testing.T) {
	auth := newAuth(newStores(), nil)
	_, err := auth.Signup(context.Background(), validation.Payload{"name": "A", "email": "nope", "password": "1"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Len(t, apperror.DetailsOf(err), 3)
}

func TestLoginIssuesTokenAndStampsLastLogin(t *testing.T) {
	s := newStores()
	auth := newAuth(s, nil)
	user := signup(t, auth, "ana@medicall.test", "secret1")

	session, err := auth.Login(context.Background(), validation.Payload{"email": "ANA@medicall.test", "password": "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)
	require.NotNil(t, session.User.LastLogin)
	assert.WithinDuration(t, time.Now(), *session.User.LastLogin, time.Minute)

	claims, err := auth.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleAgent, claims.Role)
}

func TestLoginRefreshesCachedUser(t *testing.T) {
	s := newStores()
	cache := localcache.NewCache(time.Minute)
	auth := NewAuthService(s.users, jwt.NewManager("test-secret", time.Hour), nil, cache)
	users := NewUserService(s.users, cache)
	user := signup(t, auth, "ana@medicall.test", "secret1")
	self := models.Caller{ID: user.ID, Role: user.Role}

	got, err := users.Get(context.Background(), self, user.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, got.LastLogin)

	_, err = auth.Login(context.Background(), validation.Payload{"email": "ana@medicall.test", "password": "secret1"})
	require.NoError(t, err)

	got, err = users.Get(context.Background(), self, user.ID.Hex())
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)
}

func TestLoginFailuresShareMessage(t *testing.T) {
	s := newStores()
	auth := newAuth(s, nil)
	signup(t, auth, "ana@medicall.test", "secret1")

	_, wrongPassword := auth.Login(context.Background(), validation.Payload{"email": "ana@medicall.test", "password": "nope"})
	_, unknown := auth.Login(context.Background(), validation.Payload{"email": "who@medicall.test", "password": "secret1"})
	for _, err := range []error{wrongPassword, unknown} {
		assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
		assert.Equal(t, util.INVALID_CREDENTIALS, apperror.PublicMessage(err))
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	s := newStores()
	auth := newAuth(s, nil)
	user := signup(t, auth, "ana@medicall.test", "secret1")
	_, err := s.users.Update(context.Background(), user.ID, bson.M{"isActive": false})
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), validation.Payload{"email": "ana@medicall.test", "password": "secret1"})
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	assert.Equal(t, util.ACCOUNT_INACTIVE, apperror.PublicMessage(err))
}

func TestLogoutRevokesUntilExpiry(t *testing.T) {
	revoker := &fakeRevoker{}
	auth := newAuth(newStores(), revoker)
	exp := time.Now().Add(time.Hour)

	require.NoError(t, auth.Logout(context.Background(), "jti-1", exp))
	assert.Equal(t, exp, revoker.revoked["jti-1"])

	assert.NoError(t, newAuth(newStores(), nil).Logout(context.Background(), "jti-2", exp))
}

func TestAccountFollowsStoredUser(t *testing.T) {
	s := newStores()
	cache := localcache.NewCache(time.Minute)
	auth := NewAuthService(s.users, jwt.NewManager("test-secret", time.Hour), nil, cache)
	users := NewUserService(s.users, cache)
	admin := models.Caller{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	user := signup(t, auth, "ana@medicall.test", "secret1")
	ctx := context.Background()

	caller, err := auth.Account(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, caller.Role)
	assert.Equal(t, "ana@medicall.test", caller.Email)

	_, err = users.Update(ctx, admin, user.ID.Hex(), validation.Payload{"role": "supervisor"})
	require.NoError(t, err)
	caller, err = auth.Account(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupervisor, caller.Role)

	_, err = users.Update(ctx, admin, user.ID.Hex(), validation.Payload{"isActive": false})
	require.NoError(t, err)
	_, err = auth.Account(ctx, user.ID)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	assert.Equal(t, util.ACCOUNT_INACTIVE, apperror.PublicMessage(err))

	require.NoError(t, users.Delete(ctx, admin, user.ID.Hex()))
	_, err = auth.Account(ctx, user.ID)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	assert.Equal(t, util.ACCOUNT_NOT_FOUND, apperror.PublicMessage(err))
}

func TestMeReturnsCaller(t *testing.T) {
	s := newStores()
	auth := newAuth(s, nil)
	caller := agent(t, s, "me@medicall.test")

	user, err := auth.Me(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, "me@medicall.test", user.Email)
}
