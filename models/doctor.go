package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DoctorOnline  = "online"
	DoctorOffline = "offline"
	DoctorOnLeave = "on-leave"
)

var AvailabilityStatuses = []string{DoctorOnline, DoctorOffline, DoctorOnLeave}

const (
	VoiceClonePending   = "pending"
	VoiceCloneCompleted = "completed"
	VoiceCloneFailed    = "failed"
)

// Weekday keys a doctor's weekly schedule.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	for _, w := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

type TimeSlot struct {
	Start       string `json:"start" bson:"start"`
	End         string `json:"end" bson:"end"`
	IsAvailable bool   `json:"isAvailable" bson:"isAvailable"`
}

type Schedule map[Weekday][]TimeSlot

type Doctor struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Email              string             `json:"email" bson:"email"`
	PhoneNumber        string             `json:"phoneNumber" bson:"phoneNumber"`
	Specialty          string             `json:"specialty" bson:"specialty"`
	Department         string             `json:"department" bson:"department"`
	LicenseNumber      string             `json:"licenseNumber" bson:"licenseNumber"`
	Bio                string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Avatar             string             `json:"avatar" bson:"avatar"`
	AvailabilityStatus string             `json:"availabilityStatus" bson:"availabilityStatus"`
	Schedule           Schedule           `json:"schedule" bson:"schedule"`
	ConsultationFee    *float64           `json:"consultationFee,omitempty" bson:"consultationFee,omitempty"`
	Experience         float64            `json:"experience" bson:"experience"`
	Qualifications     []string           `json:"qualifications" bson:"qualifications"`
	VoiceID            string             `json:"voiceId,omitempty" bson:"voiceId,omitempty"`
	VoiceCloneStatus   string             `json:"voiceCloneStatus,omitempty" bson:"voiceCloneStatus,omitempty"`
	IsActive           bool               `json:"isActive" bson:"isActive"`
	CreatedBy          primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DoctorSummary is the populated form of a doctor reference.
type DoctorSummary struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Specialty string             `json:"specialty" bson:"specialty"`
	Avatar    string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

func (d *Doctor) Summary() DoctorSummary {
	return DoctorSummary{ID: d.ID, Name: d.Name, Specialty: d.Specialty, Avatar: d.Avatar}
}

type DoctorQuery struct {
	Specialty       string
	Department      string
	Status          string
	Search          string
	IncludeInactive bool
	Page            int
	Limit           int
}

type DoctorPage struct {
	Doctors    []Doctor `json:"doctors"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
}
