package services

import (
	"context"

	"MediCall/apperror"
	"MediCall/metrics"
	"MediCall/models"
	"MediCall/validation"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Webhook results.
const (
	WebhookUpdated = "updated"
	WebhookCreated = "created"
	WebhookIgnored = "ignored"
)

// webhookOutcomes maps provider call statuses onto call outcomes. Other
// statuses leave the outcome unchanged.
var webhookOutcomes = map[string]string{
	"completed": models.OutcomeCompleted,
	"no-answer": models.OutcomeNoAnswer,
	"busy":      models.OutcomeBusy,
}

type CallLogService struct {
	logs     CallLogStore
	patients PatientStore
	users    UserStore
}

func NewCallLogService(logs CallLogStore, patients PatientStore, users UserStore) *CallLogService {
	return &CallLogService{logs: logs, patients: patients, users: users}
}

func (s *CallLogService) views(ctx context.Context, list []models.CallLog) ([]models.CallLogView, error) {
	var patientIDs, agentIDs []primitive.ObjectID
	for _, l := range list {
		patientIDs = append(patientIDs, l.Patient)
		agentIDs = append(agentIDs, l.Agent)
	}
	patients, err := patientSummaries(ctx, s.patients, patientIDs)
	if err != nil {
		return nil, err
	}
	agents, err := owners(ctx, s.users, agentIDs)
	if err != nil {
		return nil, err
	}
	out := make([]models.CallLogView, 0, len(list))
	for _, l := range list {
		out = append(out, models.CallLogView{CallLog: l, Patient: patients[l.Patient], Agent: agents[l.Agent]})
	}
	return out, nil
}

func (s *CallLogService) view(ctx context.Context, l *models.CallLog) (*models.CallLogView, error) {
	list, err := s.views(ctx, []models.CallLog{*l})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *CallLogService) List(ctx context.Context, q models.CallLogQuery) ([]models.CallLogView, error) {
	list, err := s.logs.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, list)
}

/*
* Validate the payload
* The patient must exist
* The caller is recorded as the agent
 */
func (s *CallLogService) Create(ctx context.Context, caller models.Caller, data validation.Payload) (*models.CallLogView, error) {
	entry, err := validation.CallLog(data)
	if err != nil {
		return nil, err
	}
	if _, err := s.patients.FindByID(ctx, entry.Patient); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Invalid("patient", "does not reference an existing patient")
		}
		return nil, err
	}
	entry.Agent = caller.ID
	if err := s.logs.Create(ctx, entry); err != nil {
		log.Error().Err(err).Msg("Error from createCallLog")
		return nil, err
	}
	return s.view(ctx, entry)
}

func (s *CallLogService) Get(ctx context.Context, rawID string) (*models.CallLogView, error) {
	id, err := parseID("Call log", rawID)
	if err != nil {
		return nil, err
	}
	entry, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, entry)
}

func (s *CallLogService) Update(ctx context.Context, rawID string, data validation.Payload) (*models.CallLogView, error) {
	id, err := parseID("Call log", rawID)
	if err != nil {
		return nil, err
	}
	set, err := validation.CallLogUpdate(data)
	if err != nil {
		return nil, err
	}
	entry, err := s.logs.Update(ctx, id, set)
	if err != nil {
		log.Error().Err(err).Str("callLogId", id.Hex()).Msg("Error from updateCallLog")
		return nil, err
	}
	return s.view(ctx, entry)
}

func (s *CallLogService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID("Call log", rawID)
	if err != nil {
		return err
	}
	return s.logs.Delete(ctx, id)
}

/*
* Find the log by provider call id and update transcript, duration and outcome
* Without a match, create a log when metadata names both patient and agent
* Anything else is acknowledged without a change
 */
func (s *CallLogService) HandleWebhook(ctx context.Context, hook models.VoiceWebhook) (string, error) {
	result, err := s.upsert(ctx, hook)
	if err != nil {
		metrics.Webhooks.WithLabelValues("failed").Inc()
		return "", err
	}
	metrics.Webhooks.WithLabelValues(result).Inc()
	log.Info().Str("callId", hook.CallID).Str("status", hook.Status).Str("result", result).Msg("Call webhook processed")
	return result, nil
}

func (s *CallLogService) upsert(ctx context.Context, hook models.VoiceWebhook) (string, error) {
	if hook.CallID == "" {
		return WebhookIgnored, nil
	}
	existing, err := s.logs.FindByProviderCallID(ctx, hook.CallID)
	if err != nil && !apperror.IsNotFound(err) {
		return "", err
	}
	if existing != nil {
		set := bson.M{}
		if hook.Transcript != "" {
			set["transcript"] = hook.Transcript
		}
		if hook.Duration != nil {
			set["duration"] = *hook.Duration
		}
		if outcome, ok := webhookOutcomes[hook.Status]; ok {
			set["outcome"] = outcome
		}
		if _, err := s.logs.Update(ctx, existing.ID, set); err != nil {
			return "", err
		}
		return WebhookUpdated, nil
	}

	patient, err := primitive.ObjectIDFromHex(hook.Meta(MetaPatientID))
	if err != nil {
		return WebhookIgnored, nil
	}
	agent, err := primitive.ObjectIDFromHex(hook.Meta(MetaAgentID))
	if err != nil {
		return WebhookIgnored, nil
	}
	callType := hook.Meta(MetaCallType)
	if !validation.OneOf(callType, models.CallTypes) {
		callType = models.CallTypeReminder
	}
	outcome := models.OutcomeNoAnswer
	if hook.Status == "completed" {
		outcome = models.OutcomeCompleted
	}
	entry := &models.CallLog{
		Patient:       patient,
		Agent:         agent,
		CallType:      callType,
		Outcome:       outcome,
		Duration:      hook.Duration,
		Transcript:    hook.Transcript,
		BlandAICallID: hook.CallID,
		CallDateTime:  now(),
	}
	if booking, err := primitive.ObjectIDFromHex(hook.Meta(MetaBookingID)); err == nil {
		entry.AppointmentDetails = &models.AppointmentDetails{Booking: &booking}
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return "", err
	}
	return WebhookCreated, nil
}
