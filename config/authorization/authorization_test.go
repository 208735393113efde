package authorization

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MediCall/apperror"
	"MediCall/config/jwt"
	"MediCall/config/redis"
	"MediCall/models"
	"MediCall/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type accountsFunc func(ctx context.Context, id primitive.ObjectID) (models.Caller, error)

func (f accountsFunc) Account(ctx context.Context, id primitive.ObjectID) (models.Caller, error) {
	return f(ctx, id)
}

func router(t *testing.T) (*gin.Engine, *jwt.Manager, *redis.Revocations) {
	return routerWith(t, nil)
}

func routerWith(t *testing.T, accounts AccountLookup) (*gin.Engine, *jwt.Manager, *redis.Revocations) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client, err := redis.Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	revocations := redis.NewRevocations(client)
	tokens := jwt.NewManager("secret", time.Hour)

	r := gin.New()
	r.Use(JWTAuth(tokens, revocations, accounts))
	r.GET("/me", func(c *gin.Context) {
		caller, _ := GetCaller(c)
		c.JSON(http.StatusOK, gin.H{"id": caller.ID.Hex(), "role": caller.Role})
	})
	r.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, tokens, revocations
}

func token(t *testing.T, tokens *jwt.Manager, role string) (string, *jwt.Claims) {
	t.Helper()
	raw, claims, err := tokens.Generate(&models.User{ID: primitive.NewObjectID(), Role: role})
	require.NoError(t, err)
	return raw, claims
}

func do(r *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r, tokens, _ := router(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)

	raw, _ := token(t, tokens, models.RoleAgent)
	w := do(r, "/me", raw)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"agent"`)
}

func TestJWTAuthAcceptsSessionCookie(t *testing.T) {
	r, tokens, _ := router(t)
	raw, _ := token(t, tokens, models.RoleAgent)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: util.SessionCookie, Value: raw})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthRejectsRevokedToken(t *testing.T) {
	r, tokens, revocations := router(t)
	raw, claims := token(t, tokens, models.RoleAgent)

	require.NoError(t, revocations.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	w := do(r, "/me", raw)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestRequireRole(t *testing.T) {
	r, tokens, _ := router(t)

	agent, _ := token(t, tokens, models.RoleAgent)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", agent).Code)

	admin, _ := token(t, tokens, models.RoleAdmin)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", admin).Code)
}

func TestJWTAuthUsesStoredAccount(t *testing.T) {
	stored := map[primitive.ObjectID]models.Caller{}
	r, tokens, _ := routerWith(t, accountsFunc(func(_ context.Context, id primitive.ObjectID) (models.Caller, error) {
		caller, ok := stored[id]
		if !ok {
			return models.Caller{}, apperror.Unauthenticated(util.ACCOUNT_NOT_FOUND)
		}
		if caller.Role == "" {
			return models.Caller{}, apperror.Unauthenticated(util.ACCOUNT_INACTIVE)
		}
		return caller, nil
	}))

	raw, claims := token(t, tokens, models.RoleAdmin)
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	require.NoError(t, err)

	t.Run("demoted admin is treated as an agent", func(t *testing.T) {
		stored[id] = models.Caller{ID: id, Role: models.RoleAgent}
		assert.Equal(t, http.StatusForbidden, do(r, "/admin", raw).Code)
		assert.Contains(t, do(r, "/me", raw).Body.String(), `"role":"agent"`)
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		stored[id] = models.Caller{ID: id}
		w := do(r, "/me", raw)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), util.ACCOUNT_INACTIVE)
	})

	t.Run("deleted account is rejected", func(t *testing.T) {
		delete(stored, id)
		w := do(r, "/me", raw)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), util.ACCOUNT_NOT_FOUND)
	})
}
