package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CallTypeReminder    = "reminder"
	CallTypeAppointment = "appointment"
	CallTypeEmergency   = "emergency"
	CallTypeFollowUp    = "follow-up"
)

var CallTypes = []string{CallTypeReminder, CallTypeAppointment, CallTypeEmergency, CallTypeFollowUp}

const (
	OutcomeCompleted            = "completed"
	OutcomeNoAnswer             = "no-answer"
	OutcomeBusy                 = "busy"
	OutcomeTransferredEmergency = "transferred-emergency"
	OutcomeAppointmentRequested = "appointment-requested"
)

var CallOutcomes = []string{
	OutcomeCompleted,
	OutcomeNoAnswer,
	OutcomeBusy,
	OutcomeTransferredEmergency,
	OutcomeAppointmentRequested,
}

var EmergencyTransferStatuses = []string{"pending", "connected", "completed"}

type EmergencyTransferDetails struct {
	TransferredAt   *time.Time `json:"transferredAt,omitempty" bson:"transferredAt,omitempty"`
	EmergencyNumber string     `json:"emergencyNumber,omitempty" bson:"emergencyNumber,omitempty"`
	Status          string     `json:"status,omitempty" bson:"status,omitempty"`
}

type AppointmentDetails struct {
	RequestedDate *time.Time          `json:"requestedDate,omitempty" bson:"requestedDate,omitempty"`
	RequestedTime string              `json:"requestedTime,omitempty" bson:"requestedTime,omitempty"`
	Symptoms      string              `json:"symptoms,omitempty" bson:"symptoms,omitempty"`
	Booking       *primitive.ObjectID `json:"booking,omitempty" bson:"booking,omitempty"`
}

type ReminderDetails struct {
	MedicationName string     `json:"medicationName,omitempty" bson:"medicationName,omitempty"`
	Dosage         string     `json:"dosage,omitempty" bson:"dosage,omitempty"`
	NextDue        *time.Time `json:"nextDue,omitempty" bson:"nextDue,omitempty"`
}

type CallLog struct {
	ID                       primitive.ObjectID        `json:"id" bson:"_id,omitempty"`
	Patient                  primitive.ObjectID        `json:"patient" bson:"patient"`
	Agent                    primitive.ObjectID        `json:"agent" bson:"agent"`
	CallType                 string                    `json:"callType" bson:"callType"`
	Outcome                  string                    `json:"outcome" bson:"outcome"`
	Duration                 *float64                  `json:"duration,omitempty" bson:"duration,omitempty"`
	Transcript               string                    `json:"transcript,omitempty" bson:"transcript,omitempty"`
	AudioRecording           string                    `json:"audioRecording,omitempty" bson:"audioRecording,omitempty"`
	CallDateTime             time.Time                 `json:"callDateTime" bson:"callDateTime"`
	BlandAICallID            string                    `json:"blandAiCallId,omitempty" bson:"blandAiCallId,omitempty"`
	EmergencyTransferDetails *EmergencyTransferDetails `json:"emergencyTransferDetails,omitempty" bson:"emergencyTransferDetails,omitempty"`
	AppointmentDetails       *AppointmentDetails       `json:"appointmentDetails,omitempty" bson:"appointmentDetails,omitempty"`
	ReminderDetails          *ReminderDetails          `json:"reminderDetails,omitempty" bson:"reminderDetails,omitempty"`
	Remarks                  string                    `json:"remarks,omitempty" bson:"remarks,omitempty"`
	FollowUpRequired         bool                      `json:"followUpRequired" bson:"followUpRequired"`
	FollowUpDate             *time.Time                `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	CreatedAt                time.Time                 `json:"createdAt" bson:"createdAt"`
	UpdatedAt                time.Time                 `json:"updatedAt" bson:"updatedAt"`
}

// CallLogView is a call log with patient and agent expanded.
type CallLogView struct {
	CallLog
	Patient *PatientSummary `json:"patient"`
	Agent   *UserSummary    `json:"agent"`
}

type CallLogQuery struct {
	Outcome   string
	CallType  string
	PatientID primitive.ObjectID
	StartDate *time.Time
	EndDate   *time.Time
}

// VoiceWebhook is the payload the voice provider posts when a call ends.
// Metadata echoes what was sent with the call and may carry values of any
// type. Duration arrives as a number or a numeric string.
type VoiceWebhook struct {
	CallID     string                 `json:"call_id"`
	Status     string                 `json:"status"`
	Transcript string                 `json:"transcript"`
	Duration   *float64               `json:"duration"`
	Metadata   map[string]interface{} `json:"metadata"`
}

func (w *VoiceWebhook) UnmarshalJSON(data []byte) error {
	type plain VoiceWebhook
	aux := struct {
		*plain
		Duration json.RawMessage `json:"duration"`
	}{plain: (*plain)(w)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.Duration = flexibleFloat(aux.Duration)
	return nil
}

// Meta returns a string metadata value, or "" when missing or not a string.
func (w VoiceWebhook) Meta(key string) string {
	v, _ := w.Metadata[key].(string)
	return v
}

func flexibleFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &n
}
