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

type PatientRepo struct {
	c collection[models.Patient]
}

func NewPatientRepo(db *mongo.Database) *PatientRepo {
	return &PatientRepo{c: collection[models.Patient]{coll: db.Collection(util.PatientCollection), resource: "Patient"}}
}

func (r *PatientRepo) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID.IsZero() {
		patient.ID = primitive.NewObjectID()
	}
	patient.CreatedAt = now()
	patient.UpdatedAt = patient.CreatedAt
	return r.c.insert(ctx, patient)
}

func (r *PatientRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return r.c.findByID(ctx, id)
}

func (r *PatientRepo) EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	return taken(ctx, r.c, "email", email, exclude)
}

func (r *PatientRepo) List(ctx context.Context, q models.PatientQuery) ([]models.Patient, error) {
	return r.c.find(ctx, PatientFilter(q), options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// ListDue returns active patients with an active medication scheduled at clock.
func (r *PatientRepo) ListDue(ctx context.Context, clock string) ([]models.Patient, error) {
	return r.c.find(ctx, DueFilter(clock))
}

func (r *PatientRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Patient, error) {
	return r.c.update(ctx, id, set)
}

func (r *PatientRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}

func (r *PatientRepo) Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.PatientSummary, error) {
	return summaries[models.PatientSummary](ctx, r.c.coll, ids, bson.M{"name": 1, "email": 1, "mobileNumber": 1, "avatar": 1})
}
