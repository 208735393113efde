package db

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// Connect dials Mongo, pings the primary and stores the database handle.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Error().Err(err).Msg("Error connecting to mongo")
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Error().Err(err).Msg("Error pinging mongo")
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	Client = client
	DB = client.Database(database)
	log.Info().Str("database", database).Msg("Connected to mongo")
	return DB, nil
}

func OpenCollections(name string) *mongo.Collection {
	return DB.Collection(name)
}

func Disconnect(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("Error disconnecting mongo")
	}
}
