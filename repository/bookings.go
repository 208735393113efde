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

type BookingRepo struct {
	c collection[models.Booking]
}

func NewBookingRepo(db *mongo.Database) *BookingRepo {
	return &BookingRepo{c: collection[models.Booking]{coll: db.Collection(util.BookingCollection), resource: "Booking"}}
}

func (r *BookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = now()
	booking.UpdatedAt = booking.CreatedAt
	return r.c.insert(ctx, booking)
}

func (r *BookingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return r.c.findByID(ctx, id)
}

func (r *BookingRepo) List(ctx context.Context, q models.BookingQuery) ([]models.Booking, error) {
	sort := bson.D{{Key: "appointmentDate", Value: 1}, {Key: "appointmentTime", Value: 1}}
	return r.c.find(ctx, BookingFilter(q), options.Find().SetSort(sort))
}

func (r *BookingRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Booking, error) {
	return r.c.update(ctx, id, set)
}

func (r *BookingRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}
