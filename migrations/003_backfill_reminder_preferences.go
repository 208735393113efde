package migrations

import (
	"context"

	"MediCall/models"
	"MediCall/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func BackfillReminderPreferences(ctx context.Context, db *mongo.Database) (int64, error) {
	result, err := db.Collection(util.PatientCollection).UpdateMany(
		ctx,
		bson.M{"reminderPreferences": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"reminderPreferences": models.DefaultReminderPreferences()}},
	)
	if err != nil {
		log.Error().Err(err).Msg("Migration failed: backfill reminderPreferences")
		return 0, err
	}
	log.Info().Int64("modified", result.ModifiedCount).Msg("Migration applied: patient reminderPreferences")
	return result.ModifiedCount, nil
}
