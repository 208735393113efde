package migrations

import (
	"context"

	"MediCall/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BackfillDoctorActive marks doctors saved before soft delete existed as active.
func BackfillDoctorActive(ctx context.Context, db *mongo.Database) (int64, error) {
	result, err := db.Collection(util.DoctorCollection).UpdateMany(
		ctx,
		bson.M{"isActive": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"isActive": true}},
	)
	if err != nil {
		log.Error().Err(err).Msg("Migration failed: backfill doctor isActive")
		return 0, err
	}
	log.Info().Int64("modified", result.ModifiedCount).Msg("Migration applied: doctor isActive")
	return result.ModifiedCount, nil
}
