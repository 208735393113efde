package services

import (
	"context"

	"MediCall/apperror"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	users UserStore
	cache Cache
}

func NewUserService(users UserStore, cache Cache) *UserService {
	return &UserService{users: users, cache: cache}
}

func (s *UserService) List(ctx context.Context, q models.UserQuery) ([]models.User, error) {
	return s.users.List(ctx, q)
}

/*
* Validate the payload, role and isActive included
* Reject a duplicate email
* Hash the password and save
 */
func (s *UserService) Create(ctx context.Context, data validation.Payload) (*models.User, error) {
	user, err := validation.User(data)
	if err != nil {
		return nil, err
	}
	taken, err := s.users.EmailTaken(ctx, user.Email, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict(util.EMAIL_ALREADY_EXISTS)
	}
	if user.Password, err = hashPassword(user.Password); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		log.Error().Err(err).Msg("Error from createUser")
		return nil, err
	}
	return user, nil
}

// access lets admins through and everyone else only to their own account.
func access(caller models.Caller, id primitive.ObjectID) error {
	if caller.IsAdmin() || caller.ID == id {
		return nil
	}
	return apperror.Forbidden(util.ACCESS_DENIED)
}

func (s *UserService) Get(ctx context.Context, caller models.Caller, rawID string) (*models.User, error) {
	id, err := parseID("User", rawID)
	if err != nil {
		return nil, err
	}
	if err := access(caller, id); err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, util.UserKey+id.Hex(), func() (*models.User, error) {
		return s.users.FindByID(ctx, id)
	})
}

/*
* Only admins or the account owner may update
* Role and isActive are dropped for non admins
* Check the new email against other accounts
* Hash a new password
* Update and refresh the cache
 */
func (s *UserService) Update(ctx context.Context, caller models.Caller, rawID string, data validation.Payload) (*models.User, error) {
	id, err := parseID("User", rawID)
	if err != nil {
		return nil, err
	}
	if err := access(caller, id); err != nil {
		return nil, err
	}
	set, err := validation.UserUpdate(data)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		delete(set, "role")
		delete(set, "isActive")
	}
	if len(set) == 0 {
		return nil, apperror.Validation("No fields to update", nil)
	}
	if email, ok := set["email"].(string); ok {
		taken, err := s.users.EmailTaken(ctx, email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.Conflict(util.EMAIL_ALREADY_EXISTS)
		}
	}
	if password, ok := set["password"].(string); ok {
		if set["password"], err = hashPassword(password); err != nil {
			return nil, err
		}
	}
	user, err := s.users.Update(ctx, id, set)
	if err != nil {
		log.Error().Err(err).Str("userId", id.Hex()).Msg("Error from updateUser")
		return nil, err
	}
	forget(ctx, s.cache, util.UserKey+id.Hex())
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, caller models.Caller, rawID string) error {
	id, err := parseID("User", rawID)
	if err != nil {
		return err
	}
	if caller.ID == id {
		return apperror.Validation(util.CANNOT_DELETE_SELF, nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	forget(ctx, s.cache, util.UserKey+id.Hex())
	return nil
}
