package validation

import (
	"time"

	"MediCall/apperror"
	"MediCall/models"

	"go.mongodb.org/mongo-driver/bson"
)

type EmergencyTransferInput struct {
	TransferredAt   *time.Time `json:"transferredAt" bson:"transferredAt,omitempty"`
	EmergencyNumber string     `json:"emergencyNumber" bson:"emergencyNumber,omitempty"`
	Status          string     `json:"status" bson:"status,omitempty" validate:"omitempty,oneof=pending connected completed"`
}

type AppointmentDetailsInput struct {
	RequestedDate *time.Time `json:"requestedDate"`
	RequestedTime string     `json:"requestedTime" validate:"omitempty,hhmm"`
	Symptoms      string     `json:"symptoms"`
	Booking       string     `json:"booking"`
}

type ReminderDetailsInput struct {
	MedicationName string     `json:"medicationName" bson:"medicationName,omitempty"`
	Dosage         string     `json:"dosage" bson:"dosage,omitempty"`
	NextDue        *time.Time `json:"nextDue" bson:"nextDue,omitempty"`
}

type CallLogInput struct {
	Patient                  string                   `json:"patient" validate:"required"`
	CallType                 string                   `json:"callType" validate:"required,oneof=reminder appointment emergency follow-up"`
	Outcome                  string                   `json:"outcome" validate:"required,oneof=completed no-answer busy transferred-emergency appointment-requested"`
	Duration                 *float64                 `json:"duration" validate:"omitempty,gte=0"`
	Transcript               string                   `json:"transcript"`
	AudioRecording           string                   `json:"audioRecording"`
	CallDateTime             *time.Time               `json:"callDateTime"`
	BlandAICallID            string                   `json:"blandAiCallId"`
	EmergencyTransferDetails *EmergencyTransferInput  `json:"emergencyTransferDetails"`
	AppointmentDetails       *AppointmentDetailsInput `json:"appointmentDetails"`
	ReminderDetails          *ReminderDetailsInput    `json:"reminderDetails"`
	Remarks                  string                   `json:"remarks"`
	FollowUpRequired         bool                     `json:"followUpRequired"`
	FollowUpDate             *time.Time               `json:"followUpDate"`
}

type CallLogUpdateInput struct {
	Outcome                  *string                  `json:"outcome" bson:"outcome,omitempty" validate:"omitempty,oneof=completed no-answer busy transferred-emergency appointment-requested"`
	CallType                 *string                  `json:"callType" bson:"callType,omitempty" validate:"omitempty,oneof=reminder appointment emergency follow-up"`
	Duration                 *float64                 `json:"duration" bson:"duration,omitempty" validate:"omitempty,gte=0"`
	Transcript               *string                  `json:"transcript" bson:"transcript,omitempty"`
	AudioRecording           *string                  `json:"audioRecording" bson:"audioRecording,omitempty"`
	EmergencyTransferDetails *EmergencyTransferInput  `json:"emergencyTransferDetails" bson:"emergencyTransferDetails,omitempty"`
	AppointmentDetails       *AppointmentDetailsInput `json:"appointmentDetails" bson:"-"`
	ReminderDetails          *ReminderDetailsInput    `json:"reminderDetails" bson:"reminderDetails,omitempty"`
	Remarks                  *string                  `json:"remarks" bson:"remarks,omitempty"`
	FollowUpRequired         *bool                    `json:"followUpRequired" bson:"followUpRequired,omitempty"`
	FollowUpDate             *time.Time               `json:"followUpDate" bson:"followUpDate,omitempty"`
}

func normalizeCallLog(data Payload) error {
	dropIgnored(data)
	delete(data, "blandAiCallId")
	trim(data, "")
	var p problems
	number(data, "duration", "duration", &p)
	date(data, "callDateTime", "callDateTime", &p)
	date(data, "followUpDate", "followUpDate", &p)
	nested := map[string][]string{
		"emergencyTransferDetails": {"transferredAt"},
		"appointmentDetails":       {"requestedDate"},
		"reminderDetails":          {"nextDue"},
	}
	for key, dates := range nested {
		obj, ok := data[key].(map[string]interface{})
		if !ok {
			if blank(data[key]) {
				delete(data, key)
			}
			continue
		}
		if blank(obj) {
			delete(data, key)
			continue
		}
		for _, d := range dates {
			date(obj, d, path(key, d), &p)
		}
	}
	return p.err()
}

func toAppointmentDetails(in *AppointmentDetailsInput) (*models.AppointmentDetails, error) {
	if in == nil {
		return nil, nil
	}
	out := &models.AppointmentDetails{
		RequestedDate: in.RequestedDate,
		RequestedTime: in.RequestedTime,
		Symptoms:      in.Symptoms,
	}
	if in.Booking != "" {
		id, err := ObjectID("appointmentDetails.booking", in.Booking)
		if err != nil {
			return nil, err
		}
		out.Booking = &id
	}
	return out, nil
}

// CallLog validates a manually logged call. The agent is always the caller
// and is set by the service.
func CallLog(data Payload) (*models.CallLog, error) {
	if err := normalizeCallLog(data); err != nil {
		return nil, err
	}
	in := &CallLogInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	patientID, err := ObjectID("patient", in.Patient)
	if err != nil {
		return nil, err
	}
	appointment, err := toAppointmentDetails(in.AppointmentDetails)
	if err != nil {
		return nil, err
	}
	log := &models.CallLog{
		Patient:            patientID,
		CallType:           in.CallType,
		Outcome:            in.Outcome,
		Duration:           in.Duration,
		Transcript:         in.Transcript,
		AudioRecording:     in.AudioRecording,
		AppointmentDetails: appointment,
		Remarks:            in.Remarks,
		FollowUpRequired:   in.FollowUpRequired,
		FollowUpDate:       in.FollowUpDate,
	}
	if in.CallDateTime != nil {
		log.CallDateTime = *in.CallDateTime
	}
	if et := in.EmergencyTransferDetails; et != nil {
		log.EmergencyTransferDetails = &models.EmergencyTransferDetails{
			TransferredAt:   et.TransferredAt,
			EmergencyNumber: et.EmergencyNumber,
			Status:          et.Status,
		}
	}
	if rd := in.ReminderDetails; rd != nil {
		log.ReminderDetails = &models.ReminderDetails{MedicationName: rd.MedicationName, Dosage: rd.Dosage, NextDue: rd.NextDue}
	}
	return log, nil
}

// CallLogUpdate returns the $set document of the submitted fields. The
// patient, agent and provider call id cannot be changed.
func CallLogUpdate(data Payload) (bson.M, error) {
	delete(data, "patient")
	delete(data, "callDateTime")
	if err := normalizeCallLog(data); err != nil {
		return nil, err
	}
	in := &CallLogUpdateInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	set, err := setDoc(in)
	if err != nil {
		return nil, err
	}
	appointment, err := toAppointmentDetails(in.AppointmentDetails)
	if err != nil {
		return nil, err
	}
	if appointment != nil {
		set["appointmentDetails"] = appointment
	}
	if len(set) == 0 {
		return nil, apperror.Validation("No fields to update", nil)
	}
	return set, nil
}
