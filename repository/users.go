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

type UserRepo struct {
	c collection[models.User]
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{c: collection[models.User]{coll: db.Collection(util.UserCollection), resource: "User"}}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	return r.c.insert(ctx, user)
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.c.findByID(ctx, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.c.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	return taken(ctx, r.c, "email", email, exclude)
}

func (r *UserRepo) List(ctx context.Context, q models.UserQuery) ([]models.User, error) {
	return r.c.find(ctx, UserFilter(q), options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *UserRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	return r.c.update(ctx, id, set)
}

func (r *UserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}

func (r *UserRepo) Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	return summaries[models.UserSummary](ctx, r.c.coll, ids, bson.M{"name": 1, "email": 1, "avatar": 1})
}
