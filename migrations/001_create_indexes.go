package migrations

import (
	"context"

	"MediCall/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func unique(field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(field + "_unique"),
	}
}

func ascending(fields ...string) mongo.IndexModel {
	keys := bson.D{}
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return mongo.IndexModel{Keys: keys}
}

func descending(field string) mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D{{Key: field, Value: -1}}}
}

// Indexes lists the indexes each collection needs.
var Indexes = map[string][]mongo.IndexModel{
	util.UserCollection: {unique("email"), ascending("role")},
	util.PatientCollection: {
		unique("email"),
		ascending("status"),
		descending("createdAt"),
		ascending("status", "medications.times"),
	},
	util.DoctorCollection: {
		unique("email"),
		unique("licenseNumber"),
		ascending("isActive", "specialty"),
		descending("createdAt"),
	},
	util.BookingCollection: {
		ascending("appointmentDate", "appointmentTime"),
		ascending("patient"),
		ascending("doctor"),
		ascending("status"),
	},
	util.CallLogCollection: {
		{Keys: bson.D{{Key: "blandAiCallId", Value: 1}}, Options: options.Index().SetSparse(true)},
		descending("callDateTime"),
		ascending("patient"),
		ascending("outcome"),
	},
}

// CreateIndexes creates the indexes; existing ones are left as they are.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range Indexes {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			log.Error().Err(err).Str("collection", name).Msg("Migration failed: create indexes")
			return err
		}
		log.Info().Str("collection", name).Strs("indexes", created).Msg("Migration applied: indexes ensured")
	}
	return nil
}
