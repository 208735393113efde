package services

import (
	"context"
	"time"

	"MediCall/apperror"
	"MediCall/integrations/bland"
	"MediCall/integrations/elevenlabs"
	"MediCall/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	List(ctx context.Context, q models.UserQuery) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.UserSummary, error)
}

type PatientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	List(ctx context.Context, q models.PatientQuery) ([]models.Patient, error)
	ListDue(ctx context.Context, clock string) ([]models.Patient, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Patient, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.PatientSummary, error)
}

type DoctorStore interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	LicenseTaken(ctx context.Context, license string, exclude primitive.ObjectID) (bool, error)
	List(ctx context.Context, q models.DoctorQuery) ([]models.Doctor, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Doctor, error)
	Unset(ctx context.Context, id primitive.ObjectID, fields ...string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.DoctorSummary, error)
}

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	List(ctx context.Context, q models.BookingQuery) ([]models.Booking, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Booking, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CallLogStore interface {
	Create(ctx context.Context, log *models.CallLog) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CallLog, error)
	FindByProviderCallID(ctx context.Context, callID string) (*models.CallLog, error)
	List(ctx context.Context, q models.CallLogQuery) ([]models.CallLog, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.CallLog, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Cache is optional everywhere it is accepted; nil disables caching.
type Cache interface {
	SetCache(ctx context.Context, key string, value interface{}) error
	GetCache(ctx context.Context, key string, out interface{}) (bool, error)
	DeleteCache(ctx context.Context, keys ...string) error
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
}

// Dialer places outbound calls and texts.
type Dialer interface {
	MakeCall(ctx context.Context, req bland.CallRequest) (*bland.CallResponse, error)
	SendSMS(ctx context.Context, phoneNumber, message string) (*bland.SMSResponse, error)
}

type VoiceCloner interface {
	CloneVoice(ctx context.Context, name, description string, sample elevenlabs.Sample) (*elevenlabs.Voice, error)
	DeleteVoice(ctx context.Context, voiceID string) error
}

// parseID resolves a path id. Malformed ids cannot name a document.
func parseID(resource, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(resource)
	}
	return id, nil
}

func cached[T any](ctx context.Context, cache Cache, key string, load func() (*T, error)) (*T, error) {
	if cache != nil {
		out := new(T)
		found, err := cache.GetCache(ctx, key, out)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Error from getCache")
		}
		if found {
			return out, nil
		}
	}
	doc, err := load()
	if err != nil {
		return nil, err
	}
	remember(ctx, cache, key, doc)
	return doc, nil
}

func remember(ctx context.Context, cache Cache, key string, doc interface{}) {
	if cache == nil {
		return
	}
	if err := cache.SetCache(ctx, key, doc); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Error from setCache")
	}
}

func forget(ctx context.Context, cache Cache, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.DeleteCache(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("Error from deleteCache")
	}
}

func unique(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// owners loads the user summaries for ids keyed by id.
func owners(ctx context.Context, users UserStore, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	out := map[primitive.ObjectID]*models.UserSummary{}
	ids = unique(ids)
	if len(ids) == 0 {
		return out, nil
	}
	list, err := users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func patientSummaries(ctx context.Context, patients PatientStore, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.PatientSummary, error) {
	out := map[primitive.ObjectID]*models.PatientSummary{}
	ids = unique(ids)
	if len(ids) == 0 {
		return out, nil
	}
	list, err := patients.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func doctorSummaries(ctx context.Context, doctors DoctorStore, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.DoctorSummary, error) {
	out := map[primitive.ObjectID]*models.DoctorSummary{}
	ids = unique(ids)
	if len(ids) == 0 {
		return out, nil
	}
	list, err := doctors.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func now() time.Time {
	return time.Now().UTC()
}
