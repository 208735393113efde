//go:build integration

package migrations

import (
	"context"
	"testing"

	"MediCall/models"
	"MediCall/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })
	return client.Database("medicall_migrations")
}

func TestRunIsRepeatable(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()

	_, err := db.Collection(util.DoctorCollection).InsertMany(ctx, []interface{}{
		bson.M{"name": "Legacy", "email": "legacy@x.io", "licenseNumber": "L-1"},
		bson.M{"name": "Retired", "email": "retired@x.io", "licenseNumber": "L-2", "isActive": false},
	})
	require.NoError(t, err)
	_, err = db.Collection(util.PatientCollection).InsertOne(ctx, bson.M{"name": "Old", "email": "old@x.io"})
	require.NoError(t, err)

	require.NoError(t, Run(ctx, db))
	require.NoError(t, Run(ctx, db))

	var legacy, retired models.Doctor
	require.NoError(t, db.Collection(util.DoctorCollection).FindOne(ctx, bson.M{"email": "legacy@x.io"}).Decode(&legacy))
	require.NoError(t, db.Collection(util.DoctorCollection).FindOne(ctx, bson.M{"email": "retired@x.io"}).Decode(&retired))
	assert.True(t, legacy.IsActive)
	assert.False(t, retired.IsActive)

	var old models.Patient
	require.NoError(t, db.Collection(util.PatientCollection).FindOne(ctx, bson.M{"email": "old@x.io"}).Decode(&old))
	assert.Equal(t, models.DefaultReminderPreferences(), old.ReminderPreferences)
}

func TestUniqueEmailIndex(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	require.NoError(t, CreateIndexes(ctx, db))

	users := db.Collection(util.UserCollection)
	_, err := users.InsertOne(ctx, bson.M{"email": "a@x.io"})
	require.NoError(t, err)
	_, err = users.InsertOne(ctx, bson.M{"email": "a@x.io"})
	assert.True(t, mongo.IsDuplicateKeyError(err))
}
