package services

import (
	"context"
	"errors"

	"MediCall/apperror"
	"MediCall/integrations/bland"
	"MediCall/metrics"
	"MediCall/models"
	"MediCall/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errCallsDisabled = errors.New("call provider is not configured")

// Metadata keys the call provider echoes back on its webhook.
const (
	MetaPatientID = "patient_id"
	MetaAgentID   = "agent_id"
	MetaCallType  = "call_type"
	MetaBookingID = "booking_id"
)

type outboundCall struct {
	patient  *models.Patient
	agent    primitive.ObjectID
	callType string
	script   string
	extra    map[string]string
	// decorate fills the type specific details on the new log.
	decorate func(*models.CallLog)
}

/*
* The patient needs a phone number
* Place the call with routing metadata for the webhook
* Record a call log holding the provider call id
 */
func placeCall(ctx context.Context, dialer Dialer, logs CallLogStore, call outboundCall) (*models.CallLog, error) {
	if call.patient.MobileNumber == "" {
		return nil, apperror.Validation(util.PATIENT_HAS_NO_PHONE, nil)
	}
	if dialer == nil {
		return nil, apperror.Upstream(util.CALL_PROVIDER_FAILED, errCallsDisabled)
	}
	metadata := map[string]string{
		MetaPatientID: call.patient.ID.Hex(),
		MetaAgentID:   call.agent.Hex(),
		MetaCallType:  call.callType,
	}
	for k, v := range call.extra {
		metadata[k] = v
	}
	resp, err := dialer.MakeCall(ctx, bland.CallRequest{
		PhoneNumber: call.patient.MobileNumber,
		Task:        call.script,
		Metadata:    metadata,
	})
	metrics.CallsDispatched.WithLabelValues(call.callType, metrics.Status(err)).Inc()
	if err != nil {
		log.Error().Err(err).Str("patientId", call.patient.ID.Hex()).Msg("Error from makeCall")
		return nil, apperror.Upstream(util.CALL_PROVIDER_FAILED, err)
	}
	entry := &models.CallLog{
		Patient:       call.patient.ID,
		Agent:         call.agent,
		CallType:      call.callType,
		Outcome:       models.OutcomeNoAnswer,
		CallDateTime:  now(),
		BlandAICallID: resp.CallID,
	}
	if call.decorate != nil {
		call.decorate(entry)
	}
	if err := logs.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("callId", resp.CallID).Msg("Error from createCallLog")
		return nil, err
	}
	return entry, nil
}
