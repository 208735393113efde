package services

import (
	"context"

	"MediCall/apperror"
	"MediCall/integrations/bland"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PatientService struct {
	patients PatientStore
	users    UserStore
	logs     CallLogStore
	dialer   Dialer
	cache    Cache
}

func NewPatientService(patients PatientStore, users UserStore, logs CallLogStore, dialer Dialer, cache Cache) *PatientService {
	return &PatientService{patients: patients, users: users, logs: logs, dialer: dialer, cache: cache}
}

func (s *PatientService) views(ctx context.Context, list []models.Patient) ([]models.PatientView, error) {
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.CreatedBy)
	}
	byID, err := owners(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.PatientView, 0, len(list))
	for _, p := range list {
		out = append(out, models.PatientView{Patient: p, CreatedBy: byID[p.CreatedBy]})
	}
	return out, nil
}

func (s *PatientService) view(ctx context.Context, p *models.Patient) (*models.PatientView, error) {
	list, err := s.views(ctx, []models.Patient{*p})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *PatientService) List(ctx context.Context, q models.PatientQuery) ([]models.PatientView, error) {
	list, err := s.patients.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, list)
}

/*
* Validate and normalize the payload
* Reject a duplicate email
* The caller becomes createdBy
* Save and cache
 */
func (s *PatientService) Create(ctx context.Context, caller models.Caller, data validation.Payload) (*models.PatientView, error) {
	patient, err := validation.Patient(data)
	if err != nil {
		return nil, err
	}
	taken, err := s.patients.EmailTaken(ctx, patient.Email, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict(util.EMAIL_ALREADY_EXISTS)
	}
	patient.CreatedBy = caller.ID
	if err := s.patients.Create(ctx, patient); err != nil {
		log.Error().Err(err).Msg("Error from createPatient")
		return nil, err
	}
	remember(ctx, s.cache, util.PatientKey+patient.ID.Hex(), patient)
	return s.view(ctx, patient)
}

func (s *PatientService) find(ctx context.Context, rawID string) (*models.Patient, error) {
	id, err := parseID("Patient", rawID)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, util.PatientKey+id.Hex(), func() (*models.Patient, error) {
		return s.patients.FindByID(ctx, id)
	})
}

func (s *PatientService) Get(ctx context.Context, rawID string) (*models.PatientView, error) {
	patient, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, patient)
}

/*
* Validate the submitted fields only
* Check a new email against other patients
* Update, then drop the cached copy
 */
func (s *PatientService) Update(ctx context.Context, rawID string, data validation.Payload) (*models.PatientView, error) {
	id, err := parseID("Patient", rawID)
	if err != nil {
		return nil, err
	}
	set, err := validation.PatientUpdate(data)
	if err != nil {
		return nil, err
	}
	if email, ok := set["email"].(string); ok {
		taken, err := s.patients.EmailTaken(ctx, email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.Conflict(util.EMAIL_ALREADY_EXISTS)
		}
	}
	return s.apply(ctx, id, set)
}

func (s *PatientService) SetStatus(ctx context.Context, rawID string, data validation.Payload) (*models.PatientView, error) {
	id, err := parseID("Patient", rawID)
	if err != nil {
		return nil, err
	}
	status, err := validation.Status(data, "status", models.PatientStatuses)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, id, bson.M{"status": status})
}

func (s *PatientService) apply(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.PatientView, error) {
	patient, err := s.patients.Update(ctx, id, set)
	if err != nil {
		log.Error().Err(err).Str("patientId", id.Hex()).Msg("Error from updatePatient")
		return nil, err
	}
	forget(ctx, s.cache, util.PatientKey+id.Hex())
	return s.view(ctx, patient)
}

func (s *PatientService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID("Patient", rawID)
	if err != nil {
		return err
	}
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}
	forget(ctx, s.cache, util.PatientKey+id.Hex())
	return nil
}

/*
* Pick the requested active medication, or the first active one
* Call the patient with the reminder script
* Stamp lastReminderSent
 */
func (s *PatientService) Remind(ctx context.Context, caller models.Caller, rawID string, data validation.Payload) (*models.CallLog, error) {
	patient, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	wanted, _ := data["medication"].(string)
	med := activeMedication(patient, wanted)
	if med == nil {
		return nil, apperror.Validation(util.NO_ACTIVE_MEDICATION, nil)
	}
	at := ""
	if len(med.Times) > 0 {
		at = med.Times[0]
	}
	entry, err := placeCall(ctx, s.dialer, s.logs, outboundCall{
		patient:  patient,
		agent:    caller.ID,
		callType: models.CallTypeReminder,
		script:   bland.MedicationReminderScript(patient.Name, med.Name, med.Dosage, at),
		decorate: func(l *models.CallLog) {
			l.ReminderDetails = &models.ReminderDetails{MedicationName: med.Name, Dosage: med.Dosage}
		},
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.patients.Update(ctx, patient.ID, bson.M{"lastReminderSent": entry.CallDateTime}); err != nil {
		log.Warn().Err(err).Str("patientId", patient.ID.Hex()).Msg("Error from stamping lastReminderSent")
	}
	forget(ctx, s.cache, util.PatientKey+patient.ID.Hex())
	return entry, nil
}

func activeMedication(p *models.Patient, name string) *models.Medication {
	for i := range p.Medications {
		m := &p.Medications[i]
		if m.IsActive && (name == "" || m.Name == name) {
			return m
		}
	}
	return nil
}
