package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"MediCall/apperror"
	"MediCall/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection wraps the CRUD calls shared by every repository.
type collection[T any] struct {
	coll     *mongo.Collection
	resource string
}

func now() time.Time {
	return time.Now().UTC()
}

// translate maps driver errors onto the application taxonomy.
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperror.NotFound(resource)
	case mongo.IsDuplicateKeyError(err):
		if strings.Contains(err.Error(), "licenseNumber") {
			return apperror.Conflict(util.LICENSE_ALREADY_EXISTS)
		}
		return apperror.Conflict(util.EMAIL_ALREADY_EXISTS)
	}
	return err
}

func (c collection[T]) insert(ctx context.Context, doc *T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error from InsertOne")
		return translate(err, c.resource)
	}
	return nil
}

func (c collection[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	out := new(T)
	if err := c.coll.FindOne(ctx, filter).Decode(out); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error from FindOne")
		}
		return nil, translate(err, c.resource)
	}
	return out, nil
}

func (c collection[T]) findByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

func (c collection[T]) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error from Find")
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error decoding cursor")
		return nil, err
	}
	return out, nil
}

func (c collection[T]) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error from CountDocuments")
	}
	return n, err
}

func (c collection[T]) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := c.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error from CountDocuments")
		return false, err
	}
	return n > 0, nil
}

// update applies set to the document and returns it after the change.
func (c collection[T]) update(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	doc := bson.M{"updatedAt": now()}
	for k, v := range set {
		doc[k] = v
	}
	out := new(T)
	err := c.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": doc},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(out)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error from FindOneAndUpdate")
		}
		return nil, translate(err, c.resource)
	}
	return out, nil
}

func (c collection[T]) unset(ctx context.Context, id primitive.ObjectID, fields ...string) error {
	doc := bson.M{}
	for _, f := range fields {
		doc[f] = ""
	}
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": doc, "$set": bson.M{"updatedAt": now()}})
	if err != nil {
		log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error from UpdateOne")
		return err
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound(c.resource)
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("collection", c.coll.Name()).Msg("Error from DeleteOne")
		return err
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound(c.resource)
	}
	return nil
}

// summaries loads the projected form of every id in ids.
func summaries[S any](ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID, projection bson.M) ([]S, error) {
	out := []S{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(projection))
	if err != nil {
		log.Error().Err(err).Str("collection", coll.Name()).Msg("Error loading summaries")
		return nil, err
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func taken(ctx context.Context, c interface {
	exists(context.Context, bson.M) (bool, error)
}, field, value string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{field: value}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return c.exists(ctx, filter)
}
