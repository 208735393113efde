package services

import (
	"context"
	"time"

	"MediCall/apperror"
	"MediCall/config/jwt"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var hashCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", apperror.Unexpected(err)
	}
	return string(hash), nil
}

type AuthService struct {
	users       UserStore
	tokens      *jwt.Manager
	revocations TokenRevoker
	cache       Cache
}

func NewAuthService(users UserStore, tokens *jwt.Manager, revocations TokenRevoker, cache Cache) *AuthService {
	return &AuthService{users: users, tokens: tokens, revocations: revocations, cache: cache}
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

/*
* Validate the signup payload
* Reject an email that already has an account
* Hash the password and save the user as an active agent
 */
func (s *AuthService) Signup(ctx context.Context, data validation.Payload) (*models.User, error) {
	in, err := validation.Signup(data)
	if err != nil {
		return nil, err
	}
	taken, err := s.users.EmailTaken(ctx, in.Email, primitive.NilObjectID)
	if err != nil {
		log.Error().Err(err).Msg("Error from emailTaken")
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict(util.EMAIL_ALREADY_EXISTS)
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:        in.Name,
		Email:       in.Email,
		Password:    hash,
		Role:        models.RoleAgent,
		Department:  in.Department,
		PhoneNumber: in.PhoneNumber,
		Avatar:      in.Avatar,
		IsActive:    true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		log.Error().Err(err).Msg("Error from createUser")
		return nil, err
	}
	log.Info().Str("userId", user.ID.Hex()).Msg("User signed up")
	return user, nil
}

/*
* Validate the credentials
* Unknown email and wrong password give the same answer
* Inactive accounts cannot log in
* Stamp lastLogin and issue a token
 */
func (s *AuthService) Login(ctx context.Context, data validation.Payload) (*Session, error) {
	in, err := validation.Login(data)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, in.Email)
	if apperror.IsNotFound(err) {
		return nil, apperror.Unauthenticated(util.INVALID_CREDENTIALS)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, apperror.Unauthenticated(util.INVALID_CREDENTIALS)
	}
	if !user.IsActive {
		return nil, apperror.Unauthenticated(util.ACCOUNT_INACTIVE)
	}
	updated, err := s.users.Update(ctx, user.ID, bson.M{"lastLogin": now()})
	if err != nil {
		log.Error().Err(err).Msg("Error from updating lastLogin")
		return nil, err
	}
	forget(ctx, s.cache, util.UserKey+user.ID.Hex())
	token, claims, err := s.tokens.Generate(updated)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: *updated}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revocations == nil || tokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, tokenID, expiresAt); err != nil {
		return apperror.Unexpected(err)
	}
	return nil
}

/*
* Load the account behind a token, through the cache
* Deleted and deactivated accounts lose access at once
* Role changes apply on the next request
 */
func (s *AuthService) Account(ctx context.Context, id primitive.ObjectID) (models.Caller, error) {
	user, err := cached(ctx, s.cache, util.UserKey+id.Hex(), func() (*models.User, error) {
		return s.users.FindByID(ctx, id)
	})
	if apperror.IsNotFound(err) {
		return models.Caller{}, apperror.Unauthenticated(util.ACCOUNT_NOT_FOUND)
	}
	if err != nil {
		return models.Caller{}, err
	}
	if !user.IsActive {
		return models.Caller{}, apperror.Unauthenticated(util.ACCOUNT_INACTIVE)
	}
	return models.Caller{ID: user.ID, Role: user.Role, Name: user.Name, Email: user.Email}, nil
}

func (s *AuthService) Me(ctx context.Context, caller models.Caller) (*models.User, error) {
	return s.users.FindByID(ctx, caller.ID)
}
