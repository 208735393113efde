package validation

import (
	"sort"
	"strings"

	"MediCall/apperror"
	"MediCall/models"

	"go.mongodb.org/mongo-driver/bson"
)

type TimeSlotInput struct {
	Start       string `json:"start" validate:"required,hhmm"`
	End         string `json:"end" validate:"required,hhmm"`
	IsAvailable *bool  `json:"isAvailable"`
}

type DoctorInput struct {
	Name               string                              `json:"name" validate:"required"`
	Email              string                              `json:"email" validate:"required,email"`
	PhoneNumber        string                              `json:"phoneNumber" validate:"required,min=10"`
	Specialty          string                              `json:"specialty" validate:"required"`
	Department         string                              `json:"department" validate:"required"`
	LicenseNumber      string                              `json:"licenseNumber" validate:"required"`
	Bio                string                              `json:"bio"`
	Avatar             string                              `json:"avatar"`
	AvailabilityStatus string                              `json:"availabilityStatus" validate:"omitempty,oneof=online offline on-leave"`
	Schedule           map[models.Weekday][]TimeSlotInput `json:"schedule" validate:"omitempty,dive,keys,weekday,endkeys,dive"`
	ConsultationFee    *float64                            `json:"consultationFee" validate:"omitempty,gte=0"`
	Experience         *float64                            `json:"experience" validate:"required,gte=0"`
	Qualifications     []string                            `json:"qualifications" validate:"required,min=1"`
}

type DoctorUpdateInput struct {
	Name               *string                             `json:"name" bson:"name,omitempty" validate:"omitempty,min=1"`
	Email              *string                             `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber        *string                             `json:"phoneNumber" bson:"phoneNumber,omitempty" validate:"omitempty,min=10"`
	Specialty          *string                             `json:"specialty" bson:"specialty,omitempty" validate:"omitempty,min=1"`
	Department         *string                             `json:"department" bson:"department,omitempty" validate:"omitempty,min=1"`
	LicenseNumber      *string                             `json:"licenseNumber" bson:"licenseNumber,omitempty" validate:"omitempty,min=1"`
	Bio                *string                             `json:"bio" bson:"bio,omitempty"`
	Avatar             *string                             `json:"avatar" bson:"avatar,omitempty"`
	AvailabilityStatus *string                             `json:"availabilityStatus" bson:"availabilityStatus,omitempty" validate:"omitempty,oneof=online offline on-leave"`
	Schedule           map[models.Weekday][]TimeSlotInput `json:"schedule" bson:"-" validate:"omitempty,dive,keys,weekday,endkeys,dive"`
	ConsultationFee    *float64                            `json:"consultationFee" bson:"consultationFee,omitempty" validate:"omitempty,gte=0"`
	Experience         *float64                            `json:"experience" bson:"experience,omitempty" validate:"omitempty,gte=0"`
	Qualifications     []string                            `json:"qualifications" bson:"qualifications,omitempty" validate:"omitempty,min=1"`
}

func normalizeDoctor(data Payload, partial bool) error {
	dropIgnored(data)
	for _, k := range []string{"voiceId", "voiceCloneStatus", "isActive"} {
		delete(data, k)
	}
	trim(data, "")
	var p problems
	number(data, "experience", "experience", &p)
	number(data, "consultationFee", "consultationFee", &p)
	strip(data, "qualifications", "qualifications", &p)
	if _, present := data["qualifications"]; present || !partial {
		atLeastOne(data, "qualifications", "qualifications", "at least one qualification is required", &p)
	}
	if raw, ok := data["schedule"]; ok {
		switch sched := raw.(type) {
		case nil:
			delete(data, "schedule")
		case map[string]interface{}:
			lowered := make(map[string]interface{}, len(sched))
			for day, slots := range sched {
				lowered[strings.ToLower(day)] = slots
			}
			data["schedule"] = lowered
		default:
			p.add("schedule", "must be an object")
		}
	}
	return p.err()
}

// slotOrder rejects slots whose end is not after their start.
func slotOrder(schedule map[models.Weekday][]TimeSlotInput) error {
	days := make([]string, 0, len(schedule))
	for day := range schedule {
		days = append(days, string(day))
	}
	sort.Strings(days)
	var p problems
	for _, day := range days {
		for i, slot := range schedule[models.Weekday(day)] {
			if slot.End <= slot.Start {
				p.add(path(index(path("schedule", day), i), "end"), "must be after start")
			}
		}
	}
	return p.err()
}

func toSchedule(in map[models.Weekday][]TimeSlotInput) models.Schedule {
	schedule := models.Schedule{}
	for day, slots := range in {
		out := make([]models.TimeSlot, 0, len(slots))
		for _, s := range slots {
			out = append(out, models.TimeSlot{Start: s.Start, End: s.End, IsAvailable: boolOr(s.IsAvailable, true)})
		}
		schedule[day] = out
	}
	return schedule
}

// Doctor validates a create request and applies defaults.
func Doctor(data Payload) (*models.Doctor, error) {
	if err := normalizeDoctor(data, false); err != nil {
		return nil, err
	}
	in := &DoctorInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if err := slotOrder(in.Schedule); err != nil {
		return nil, err
	}
	doctor := &models.Doctor{
		Name:               in.Name,
		Email:              in.Email,
		PhoneNumber:        in.PhoneNumber,
		Specialty:          in.Specialty,
		Department:         in.Department,
		LicenseNumber:      in.LicenseNumber,
		Bio:                in.Bio,
		Avatar:             in.Avatar,
		AvailabilityStatus: in.AvailabilityStatus,
		Schedule:           toSchedule(in.Schedule),
		ConsultationFee:    in.ConsultationFee,
		Experience:         *in.Experience,
		Qualifications:     in.Qualifications,
		IsActive:           true,
	}
	if doctor.AvailabilityStatus == "" {
		doctor.AvailabilityStatus = models.DoctorOffline
	}
	return doctor, nil
}

// DoctorUpdate returns the $set document of the submitted fields.
func DoctorUpdate(data Payload) (bson.M, error) {
	if err := normalizeDoctor(data, true); err != nil {
		return nil, err
	}
	in := &DoctorUpdateInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if err := slotOrder(in.Schedule); err != nil {
		return nil, err
	}
	set, err := setDoc(in)
	if err != nil {
		return nil, err
	}
	if in.Schedule != nil {
		set["schedule"] = toSchedule(in.Schedule)
	}
	if len(set) == 0 {
		return nil, apperror.Validation("No fields to update", nil)
	}
	return set, nil
}
