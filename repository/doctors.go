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

type DoctorRepo struct {
	c collection[models.Doctor]
}

func NewDoctorRepo(db *mongo.Database) *DoctorRepo {
	return &DoctorRepo{c: collection[models.Doctor]{coll: db.Collection(util.DoctorCollection), resource: "Doctor"}}
}

func (r *DoctorRepo) Create(ctx context.Context, doctor *models.Doctor) error {
	if doctor.ID.IsZero() {
		doctor.ID = primitive.NewObjectID()
	}
	doctor.CreatedAt = now()
	doctor.UpdatedAt = doctor.CreatedAt
	return r.c.insert(ctx, doctor)
}

func (r *DoctorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	return r.c.findByID(ctx, id)
}

func (r *DoctorRepo) EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	return taken(ctx, r.c, "email", email, exclude)
}

func (r *DoctorRepo) LicenseTaken(ctx context.Context, license string, exclude primitive.ObjectID) (bool, error) {
	return taken(ctx, r.c, "licenseNumber", license, exclude)
}

// List returns one page of matching doctors, newest first, and the total
// number of matches.
func (r *DoctorRepo) List(ctx context.Context, q models.DoctorQuery) ([]models.Doctor, int64, error) {
	filter := DoctorFilter(q)
	total, err := r.c.count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(q.Page-1) * int64(q.Limit)).
		SetLimit(int64(q.Limit))
	doctors, err := r.c.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return doctors, total, nil
}

func (r *DoctorRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Doctor, error) {
	return r.c.update(ctx, id, set)
}

func (r *DoctorRepo) Unset(ctx context.Context, id primitive.ObjectID, fields ...string) error {
	return r.c.unset(ctx, id, fields...)
}

func (r *DoctorRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}

func (r *DoctorRepo) Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.DoctorSummary, error) {
	return summaries[models.DoctorSummary](ctx, r.c.coll, ids, bson.M{"name": 1, "specialty": 1, "avatar": 1})
}
