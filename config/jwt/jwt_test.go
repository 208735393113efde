package jwt

import (
	"testing"
	"time"

	"MediCall/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleSupervisor, Name: "Sam", Email: "sam@x.io"}

	token, claims, err := m.Generate(user)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := m.Parse(token)
	require.NoError(t, err)
	caller, err := parsed.Caller()
	require.NoError(t, err)
	assert.Equal(t, user.ID, caller.ID)
	assert.Equal(t, models.RoleSupervisor, caller.Role)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestParseRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}
	token, _, err := m.Generate(user)
	require.NoError(t, err)

	_, err = NewManager("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
