package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PatientActive    = "active"
	PatientPaused    = "paused"
	PatientCompleted = "completed"
)

var PatientStatuses = []string{PatientActive, PatientPaused, PatientCompleted}

type Medication struct {
	Name               string     `json:"name" bson:"name"`
	Dosage             string     `json:"dosage" bson:"dosage"`
	Times              []string   `json:"times" bson:"times"`
	Notes              string     `json:"notes,omitempty" bson:"notes,omitempty"`
	PrescribingDoctor  string     `json:"prescribingDoctor,omitempty" bson:"prescribingDoctor,omitempty"`
	Pharmacy           string     `json:"pharmacy,omitempty" bson:"pharmacy,omitempty"`
	PrescriptionNumber string     `json:"prescriptionNumber,omitempty" bson:"prescriptionNumber,omitempty"`
	RefillDate         *time.Time `json:"refillDate,omitempty" bson:"refillDate,omitempty"`
	SideEffects        []string   `json:"sideEffects,omitempty" bson:"sideEffects,omitempty"`
	DrugInteractions   []string   `json:"drugInteractions,omitempty" bson:"drugInteractions,omitempty"`
	Instructions       string     `json:"instructions,omitempty" bson:"instructions,omitempty"`
	IsActive           bool       `json:"isActive" bson:"isActive"`
}

type EmergencyContact struct {
	Name         string `json:"name" bson:"name"`
	Relationship string `json:"relationship" bson:"relationship"`
	PhoneNumber  string `json:"phoneNumber" bson:"phoneNumber"`
}

type InsuranceInfo struct {
	Provider     string `json:"provider" bson:"provider"`
	PolicyNumber string `json:"policyNumber" bson:"policyNumber"`
	GroupNumber  string `json:"groupNumber,omitempty" bson:"groupNumber,omitempty"`
}

type PrimaryCarePhysician struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

type ReminderPreferences struct {
	SMS       bool `json:"sms" bson:"sms"`
	VoiceCall bool `json:"voiceCall" bson:"voiceCall"`
	Email     bool `json:"email" bson:"email"`
}

func DefaultReminderPreferences() ReminderPreferences {
	return ReminderPreferences{SMS: true, VoiceCall: true, Email: false}
}

type Patient struct {
	ID                   primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	Name                 string                `json:"name" bson:"name"`
	Email                string                `json:"email" bson:"email"`
	MobileNumber         string                `json:"mobileNumber" bson:"mobileNumber"`
	ParentGuardianNumber string                `json:"parentGuardianNumber,omitempty" bson:"parentGuardianNumber,omitempty"`
	DateOfBirth          *time.Time            `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Address              string                `json:"address,omitempty" bson:"address,omitempty"`
	EmergencyContact     *EmergencyContact     `json:"emergencyContact,omitempty" bson:"emergencyContact,omitempty"`
	Medications          []Medication          `json:"medications" bson:"medications"`
	ReminderPreferences  ReminderPreferences   `json:"reminderPreferences" bson:"reminderPreferences"`
	Status               string                `json:"status" bson:"status"`
	Avatar               string                `json:"avatar" bson:"avatar"`
	Notes                string                `json:"notes,omitempty" bson:"notes,omitempty"`
	PrescriptionImages   []string              `json:"prescriptionImages" bson:"prescriptionImages"`
	LastReminderSent     *time.Time            `json:"lastReminderSent,omitempty" bson:"lastReminderSent,omitempty"`
	NextReminderDue      *time.Time            `json:"nextReminderDue,omitempty" bson:"nextReminderDue,omitempty"`
	Allergies            []string              `json:"allergies,omitempty" bson:"allergies,omitempty"`
	MedicalHistory       string                `json:"medicalHistory,omitempty" bson:"medicalHistory,omitempty"`
	InsuranceInfo        *InsuranceInfo        `json:"insuranceInfo,omitempty" bson:"insuranceInfo,omitempty"`
	PrimaryCarePhysician *PrimaryCarePhysician `json:"primaryCarePhysician,omitempty" bson:"primaryCarePhysician,omitempty"`
	CreatedBy            primitive.ObjectID    `json:"createdBy" bson:"createdBy"`
	CreatedAt            time.Time             `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt" bson:"updatedAt"`
}

// PatientView is a patient with its owner expanded.
type PatientView struct {
	Patient
	CreatedBy *UserSummary `json:"createdBy"`
}

// PatientSummary is the populated form of a patient reference.
type PatientSummary struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	MobileNumber string             `json:"mobileNumber" bson:"mobileNumber"`
	Avatar       string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

func (p *Patient) Summary() PatientSummary {
	return PatientSummary{ID: p.ID, Name: p.Name, Email: p.Email, MobileNumber: p.MobileNumber, Avatar: p.Avatar}
}

type PatientQuery struct {
	Status string
	Search string
}
