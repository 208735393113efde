package services

import (
	"context"
	"fmt"

	"MediCall/apperror"
	"MediCall/integrations/elevenlabs"
	"MediCall/metrics"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// MaxPage keeps the skip offset within range for any limit.
	MaxPage = 1 << 20
)

type DoctorService struct {
	doctors DoctorStore
	cloner  VoiceCloner
	cache   Cache
}

func NewDoctorService(doctors DoctorStore, cloner VoiceCloner, cache Cache) *DoctorService {
	return &DoctorService{doctors: doctors, cloner: cloner, cache: cache}
}

// List returns one page of doctors; page and limit are clamped.
func (s *DoctorService) List(ctx context.Context, q models.DoctorQuery) (*models.DoctorPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	list, total, err := s.doctors.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.DoctorPage{
		Doctors:    list,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
	}, nil
}

func (s *DoctorService) unique(ctx context.Context, email, license string, exclude primitive.ObjectID) error {
	if email != "" {
		taken, err := s.doctors.EmailTaken(ctx, email, exclude)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict(util.EMAIL_ALREADY_EXISTS)
		}
	}
	if license != "" {
		taken, err := s.doctors.LicenseTaken(ctx, license, exclude)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict(util.LICENSE_ALREADY_EXISTS)
		}
	}
	return nil
}

/*
* Validate and coerce the payload
* Email and license number must both be unused
* The caller becomes createdBy
* Save and cache
 */
func (s *DoctorService) Create(ctx context.Context, caller models.Caller, data validation.Payload) (*models.Doctor, error) {
	doctor, err := validation.Doctor(data)
	if err != nil {
		return nil, err
	}
	if err := s.unique(ctx, doctor.Email, doctor.LicenseNumber, primitive.NilObjectID); err != nil {
		return nil, err
	}
	doctor.CreatedBy = caller.ID
	if err := s.doctors.Create(ctx, doctor); err != nil {
		log.Error().Err(err).Msg("Error from createDoctor")
		return nil, err
	}
	remember(ctx, s.cache, util.DoctorKey+doctor.ID.Hex(), doctor)
	return doctor, nil
}

// active loads a doctor that has not been deactivated.
func (s *DoctorService) active(ctx context.Context, rawID string) (*models.Doctor, error) {
	id, err := parseID("Doctor", rawID)
	if err != nil {
		return nil, err
	}
	doctor, err := cached(ctx, s.cache, util.DoctorKey+id.Hex(), func() (*models.Doctor, error) {
		return s.doctors.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return nil, apperror.NotFound("Doctor")
	}
	return doctor, nil
}

func (s *DoctorService) Get(ctx context.Context, rawID string) (*models.Doctor, error) {
	return s.active(ctx, rawID)
}

/*
* Only active doctors can be updated
* Validate the submitted fields
* Check a new email or license number against other doctors
* Update, then drop the cached copy
 */
func (s *DoctorService) Update(ctx context.Context, rawID string, data validation.Payload) (*models.Doctor, error) {
	doctor, err := s.active(ctx, rawID)
	if err != nil {
		return nil, err
	}
	set, err := validation.DoctorUpdate(data)
	if err != nil {
		return nil, err
	}
	email, _ := set["email"].(string)
	license, _ := set["licenseNumber"].(string)
	if err := s.unique(ctx, email, license, doctor.ID); err != nil {
		return nil, err
	}
	return s.apply(ctx, doctor.ID, set)
}

func (s *DoctorService) SetStatus(ctx context.Context, rawID string, data validation.Payload) (*models.Doctor, error) {
	doctor, err := s.active(ctx, rawID)
	if err != nil {
		return nil, err
	}
	status, err := validation.Status(data, "availabilityStatus", models.AvailabilityStatuses)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, doctor.ID, bson.M{"availabilityStatus": status})
}

// Deactivate is the soft delete used by the dashboard.
func (s *DoctorService) Deactivate(ctx context.Context, rawID string) (*models.Doctor, error) {
	doctor, err := s.active(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, doctor.ID, bson.M{"isActive": false})
}

func (s *DoctorService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID("Doctor", rawID)
	if err != nil {
		return err
	}
	if err := s.doctors.Delete(ctx, id); err != nil {
		return err
	}
	forget(ctx, s.cache, util.DoctorKey+id.Hex())
	return nil
}

func (s *DoctorService) apply(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Doctor, error) {
	doctor, err := s.doctors.Update(ctx, id, set)
	if err != nil {
		log.Error().Err(err).Str("doctorId", id.Hex()).Msg("Error from updateDoctor")
		return nil, err
	}
	forget(ctx, s.cache, util.DoctorKey+id.Hex())
	return doctor, nil
}

/*
* Persist pending before calling the provider
* On failure persist failed and report the provider error
* On success store the voice id as completed and drop the voice it replaces
* Posting again for a doctor left pending or failed retries the clone
 */
func (s *DoctorService) CloneVoice(ctx context.Context, rawID string, sample elevenlabs.Sample) (*models.Doctor, error) {
	doctor, err := s.active(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if s.cloner == nil {
		return nil, apperror.Upstream(util.VOICE_PROVIDER_FAILED, fmt.Errorf("voice provider is not configured"))
	}
	if _, err := s.apply(ctx, doctor.ID, bson.M{"voiceCloneStatus": models.VoiceClonePending}); err != nil {
		return nil, err
	}

	name := "Dr. " + doctor.Name
	voice, cloneErr := s.cloner.CloneVoice(ctx, name, fmt.Sprintf("Voice clone for %s - %s", name, doctor.Specialty), sample)

	// The outcome is recorded even when the caller has gone away.
	settle := context.WithoutCancel(ctx)
	if cloneErr != nil {
		metrics.VoiceClones.WithLabelValues(models.VoiceCloneFailed).Inc()
		log.Error().Err(cloneErr).Str("doctorId", doctor.ID.Hex()).Msg("Voice cloning failed")
		if _, err := s.apply(settle, doctor.ID, bson.M{"voiceCloneStatus": models.VoiceCloneFailed}); err != nil {
			return nil, err
		}
		return nil, apperror.Upstream(util.VOICE_PROVIDER_FAILED, cloneErr)
	}

	metrics.VoiceClones.WithLabelValues(models.VoiceCloneCompleted).Inc()
	updated, err := s.apply(settle, doctor.ID, bson.M{"voiceId": voice.VoiceID, "voiceCloneStatus": models.VoiceCloneCompleted})
	if err != nil {
		return nil, err
	}
	if doctor.VoiceID != "" && doctor.VoiceID != voice.VoiceID {
		if err := s.cloner.DeleteVoice(settle, doctor.VoiceID); err != nil {
			log.Warn().Err(err).Str("voiceId", doctor.VoiceID).Msg("Error from deleting replaced voice")
		}
	}
	return updated, nil
}

// DeleteVoice removes the provider voice and clears the clone fields.
func (s *DoctorService) DeleteVoice(ctx context.Context, rawID string) (*models.Doctor, error) {
	doctor, err := s.active(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if doctor.VoiceID == "" {
		return nil, apperror.NotFound("Voice clone")
	}
	if s.cloner == nil {
		return nil, apperror.Upstream(util.VOICE_PROVIDER_FAILED, fmt.Errorf("voice provider is not configured"))
	}
	if err := s.cloner.DeleteVoice(ctx, doctor.VoiceID); err != nil {
		return nil, apperror.Upstream("Failed to delete voice", err)
	}
	if err := s.doctors.Unset(ctx, doctor.ID, "voiceId", "voiceCloneStatus"); err != nil {
		return nil, err
	}
	forget(ctx, s.cache, util.DoctorKey+doctor.ID.Hex())
	return s.doctors.FindByID(ctx, doctor.ID)
}
