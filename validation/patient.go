package validation

import (
	"time"

	"MediCall/apperror"
	"MediCall/models"

	"go.mongodb.org/mongo-driver/bson"
)

type MedicationInput struct {
	Name               string     `json:"name" validate:"required"`
	Dosage             string     `json:"dosage" validate:"required"`
	Times              []string   `json:"times" validate:"required,min=1,dive,hhmm"`
	Notes              string     `json:"notes"`
	PrescribingDoctor  string     `json:"prescribingDoctor"`
	Pharmacy           string     `json:"pharmacy"`
	PrescriptionNumber string     `json:"prescriptionNumber"`
	RefillDate         *time.Time `json:"refillDate"`
	SideEffects        []string   `json:"sideEffects"`
	DrugInteractions   []string   `json:"drugInteractions"`
	Instructions       string     `json:"instructions"`
	IsActive           *bool      `json:"isActive"`
}

type EmergencyContactInput struct {
	Name         string `json:"name" bson:"name" validate:"required"`
	Relationship string `json:"relationship" bson:"relationship" validate:"required"`
	PhoneNumber  string `json:"phoneNumber" bson:"phoneNumber" validate:"required"`
}

type InsuranceInfoInput struct {
	Provider     string `json:"provider" bson:"provider" validate:"required"`
	PolicyNumber string `json:"policyNumber" bson:"policyNumber" validate:"required"`
	GroupNumber  string `json:"groupNumber" bson:"groupNumber,omitempty"`
}

type PrimaryCarePhysicianInput struct {
	Name  string `json:"name" bson:"name" validate:"required"`
	Phone string `json:"phone" bson:"phone" validate:"required"`
	Email string `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
}

type ReminderPreferencesInput struct {
	SMS       *bool `json:"sms"`
	VoiceCall *bool `json:"voiceCall"`
	Email     *bool `json:"email"`
}

type PatientInput struct {
	Name                 string                     `json:"name" validate:"required,min=2"`
	Email                string                     `json:"email" validate:"required,email"`
	MobileNumber         string                     `json:"mobileNumber" validate:"required,min=10"`
	ParentGuardianNumber string                     `json:"parentGuardianNumber"`
	DateOfBirth          *time.Time                 `json:"dateOfBirth"`
	Address              string                     `json:"address"`
	EmergencyContact     *EmergencyContactInput     `json:"emergencyContact"`
	Medications          []MedicationInput          `json:"medications" validate:"required,min=1,dive"`
	ReminderPreferences  *ReminderPreferencesInput  `json:"reminderPreferences"`
	Status               string                     `json:"status" validate:"omitempty,oneof=active paused completed"`
	Avatar               string                     `json:"avatar"`
	Notes                string                     `json:"notes"`
	PrescriptionImages   []string                   `json:"prescriptionImages"`
	Allergies            []string                   `json:"allergies"`
	MedicalHistory       string                     `json:"medicalHistory"`
	InsuranceInfo        *InsuranceInfoInput        `json:"insuranceInfo"`
	PrimaryCarePhysician *PrimaryCarePhysicianInput `json:"primaryCarePhysician"`
}

type PatientUpdateInput struct {
	Name                 *string                    `json:"name" bson:"name,omitempty" validate:"omitempty,min=2"`
	Email                *string                    `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	MobileNumber         *string                    `json:"mobileNumber" bson:"mobileNumber,omitempty" validate:"omitempty,min=10"`
	ParentGuardianNumber *string                    `json:"parentGuardianNumber" bson:"parentGuardianNumber,omitempty"`
	DateOfBirth          *time.Time                 `json:"dateOfBirth" bson:"dateOfBirth,omitempty"`
	Address              *string                    `json:"address" bson:"address,omitempty"`
	EmergencyContact     *EmergencyContactInput     `json:"emergencyContact" bson:"emergencyContact,omitempty"`
	Medications          []MedicationInput          `json:"medications" bson:"-" validate:"omitempty,min=1,dive"`
	ReminderPreferences  *ReminderPreferencesInput  `json:"reminderPreferences" bson:"-"`
	Status               *string                    `json:"status" bson:"status,omitempty" validate:"omitempty,oneof=active paused completed"`
	Avatar               *string                    `json:"avatar" bson:"avatar,omitempty"`
	Notes                *string                    `json:"notes" bson:"notes,omitempty"`
	PrescriptionImages   []string                   `json:"prescriptionImages" bson:"prescriptionImages,omitempty"`
	Allergies            []string                   `json:"allergies" bson:"allergies,omitempty"`
	MedicalHistory       *string                    `json:"medicalHistory" bson:"medicalHistory,omitempty"`
	InsuranceInfo        *InsuranceInfoInput        `json:"insuranceInfo" bson:"insuranceInfo,omitempty"`
	PrimaryCarePhysician *PrimaryCarePhysicianInput `json:"primaryCarePhysician" bson:"primaryCarePhysician,omitempty"`
}

func normalizePatient(data Payload, partial bool) error {
	dropIgnored(data)
	for _, k := range []string{"lastReminderSent", "nextReminderDue"} {
		delete(data, k)
	}
	trim(data, "")
	var p problems
	date(data, "dateOfBirth", "dateOfBirth", &p)
	if s, ok := data["dateOfBirth"].(string); ok {
		if dob, err := time.Parse(time.RFC3339, s); err == nil && dob.After(time.Now()) {
			p.add("dateOfBirth", "must not be in the future")
		}
	}
	for _, k := range []string{"allergies", "prescriptionImages"} {
		strip(data, k, k, &p)
	}
	composite(data, "emergencyContact", "emergencyContact", []string{"name", "relationship", "phoneNumber"}, &p)
	composite(data, "insuranceInfo", "insuranceInfo", []string{"provider", "policyNumber"}, &p)
	composite(data, "primaryCarePhysician", "primaryCarePhysician", []string{"name", "phone"}, &p)

	if _, present := data["medications"]; present || !partial {
		normalizeMedications(data, &p)
	}
	return p.err()
}

func normalizeMedications(data Payload, p *problems) {
	raw, ok := data["medications"]
	if !ok || raw == nil {
		p.add("medications", "at least one medication is required")
		return
	}
	list, ok := raw.([]interface{})
	if !ok {
		p.add("medications", "must be a list")
		return
	}
	if len(list) == 0 {
		p.add("medications", "at least one medication is required")
		return
	}
	for i, m := range list {
		med, ok := m.(map[string]interface{})
		if !ok {
			p.add(index("medications", i), "must be an object")
			continue
		}
		field := index("medications", i)
		strip(med, "times", path(field, "times"), p)
		strip(med, "sideEffects", path(field, "sideEffects"), p)
		strip(med, "drugInteractions", path(field, "drugInteractions"), p)
		atLeastOne(med, "times", path(field, "times"), "at least one time is required", p)
		date(med, "refillDate", path(field, "refillDate"), p)
	}
}

func toMedications(in []MedicationInput) []models.Medication {
	meds := make([]models.Medication, 0, len(in))
	for _, m := range in {
		meds = append(meds, models.Medication{
			Name:               m.Name,
			Dosage:             m.Dosage,
			Times:              m.Times,
			Notes:              m.Notes,
			PrescribingDoctor:  m.PrescribingDoctor,
			Pharmacy:           m.Pharmacy,
			PrescriptionNumber: m.PrescriptionNumber,
			RefillDate:         m.RefillDate,
			SideEffects:        m.SideEffects,
			DrugInteractions:   m.DrugInteractions,
			Instructions:       m.Instructions,
			IsActive:           boolOr(m.IsActive, true),
		})
	}
	return meds
}

func toPreferences(in *ReminderPreferencesInput) models.ReminderPreferences {
	prefs := models.DefaultReminderPreferences()
	if in == nil {
		return prefs
	}
	prefs.SMS = boolOr(in.SMS, prefs.SMS)
	prefs.VoiceCall = boolOr(in.VoiceCall, prefs.VoiceCall)
	prefs.Email = boolOr(in.Email, prefs.Email)
	return prefs
}

// Patient validates a create request and applies defaults.
func Patient(data Payload) (*models.Patient, error) {
	if err := normalizePatient(data, false); err != nil {
		return nil, err
	}
	in := &PatientInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	patient := &models.Patient{
		Name:                 in.Name,
		Email:                in.Email,
		MobileNumber:         in.MobileNumber,
		ParentGuardianNumber: in.ParentGuardianNumber,
		DateOfBirth:          in.DateOfBirth,
		Address:              in.Address,
		Medications:          toMedications(in.Medications),
		ReminderPreferences:  toPreferences(in.ReminderPreferences),
		Status:               in.Status,
		Avatar:               in.Avatar,
		Notes:                in.Notes,
		PrescriptionImages:   in.PrescriptionImages,
		Allergies:            in.Allergies,
		MedicalHistory:       in.MedicalHistory,
	}
	if patient.Status == "" {
		patient.Status = models.PatientActive
	}
	if patient.PrescriptionImages == nil {
		patient.PrescriptionImages = []string{}
	}
	if ec := in.EmergencyContact; ec != nil {
		patient.EmergencyContact = &models.EmergencyContact{Name: ec.Name, Relationship: ec.Relationship, PhoneNumber: ec.PhoneNumber}
	}
	if ii := in.InsuranceInfo; ii != nil {
		patient.InsuranceInfo = &models.InsuranceInfo{Provider: ii.Provider, PolicyNumber: ii.PolicyNumber, GroupNumber: ii.GroupNumber}
	}
	if pcp := in.PrimaryCarePhysician; pcp != nil {
		patient.PrimaryCarePhysician = &models.PrimaryCarePhysician{Name: pcp.Name, Phone: pcp.Phone, Email: pcp.Email}
	}
	return patient, nil
}

// PatientUpdate returns the $set document of the submitted fields.
// Submitted medications replace the whole list.
func PatientUpdate(data Payload) (bson.M, error) {
	if err := normalizePatient(data, true); err != nil {
		return nil, err
	}
	in := &PatientUpdateInput{}
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
	if in.Medications != nil {
		set["medications"] = toMedications(in.Medications)
	}
	if in.ReminderPreferences != nil {
		prefs := in.ReminderPreferences
		if prefs.SMS != nil {
			set["reminderPreferences.sms"] = *prefs.SMS
		}
		if prefs.VoiceCall != nil {
			set["reminderPreferences.voiceCall"] = *prefs.VoiceCall
		}
		if prefs.Email != nil {
			set["reminderPreferences.email"] = *prefs.Email
		}
	}
	if len(set) == 0 {
		return nil, apperror.Validation("No fields to update", nil)
	}
	return set, nil
}
