package repository

import (
	"context"

	"MediCall/models"
	"MediCall/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CallLogRepo struct {
	c collection[models.CallLog]
}

func NewCallLogRepo(db *mongo.Database) *CallLogRepo {
	return &CallLogRepo{c: collection[models.CallLog]{coll: db.Collection(util.CallLogCollection), resource: "Call log"}}
}

func (r *CallLogRepo) Create(ctx context.Context, log *models.CallLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	log.CreatedAt = now()
	log.UpdatedAt = log.CreatedAt
	if log.CallDateTime.IsZero() {
		log.CallDateTime = log.CreatedAt
	}
	return r.c.insert(ctx, log)
}

func (r *CallLogRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CallLog, error) {
	return r.c.findByID(ctx, id)
}

// FindByProviderCallID looks a log up by the voice provider's call id.
func (r *CallLogRepo) FindByProviderCallID(ctx context.Context, callID string) (*models.CallLog, error) {
	return r.c.findOne(ctx, bson.M{"blandAiCallId": callID})
}

func (r *CallLogRepo) List(ctx context.Context, q models.CallLogQuery) ([]models.CallLog, error) {
	return r.c.find(ctx, CallLogFilter(q), options.Find().SetSort(bson.D{{Key: "callDateTime", Value: -1}}))
}

func (r *CallLogRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.CallLog, error) {
	return r.c.update(ctx, id, set)
}

func (r *CallLogRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}
