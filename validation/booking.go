package validation

import (
	"time"

	"MediCall/apperror"
	"MediCall/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingInput struct {
	Patient          string     `json:"patient" validate:"required"`
	Doctor           string     `json:"doctor" validate:"required"`
	AppointmentDate  *time.Time `json:"appointmentDate" validate:"required"`
	AppointmentTime  string     `json:"appointmentTime" validate:"required,hhmm"`
	Duration         *int       `json:"duration" validate:"omitempty,min=15"`
	Status           string     `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no-show"`
	ConsultationType string     `json:"consultationType" validate:"omitempty,oneof=in-person video phone"`
	Symptoms         string     `json:"symptoms"`
	Notes            string     `json:"notes"`
	Fee              *float64   `json:"fee" validate:"omitempty,gte=0"`
	PaymentStatus    string     `json:"paymentStatus" validate:"omitempty,oneof=pending paid refunded"`
	CancelReason     string     `json:"cancelReason"`
}

type BookingUpdateInput struct {
	Patient          *string    `json:"patient" bson:"-"`
	Doctor           *string    `json:"doctor" bson:"-"`
	AppointmentDate  *time.Time `json:"appointmentDate" bson:"appointmentDate,omitempty"`
	AppointmentTime  *string    `json:"appointmentTime" bson:"appointmentTime,omitempty" validate:"omitempty,hhmm"`
	Duration         *int       `json:"duration" bson:"duration,omitempty" validate:"omitempty,min=15"`
	Status           *string    `json:"status" bson:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled no-show"`
	ConsultationType *string    `json:"consultationType" bson:"consultationType,omitempty" validate:"omitempty,oneof=in-person video phone"`
	Symptoms         *string    `json:"symptoms" bson:"symptoms,omitempty"`
	Notes            *string    `json:"notes" bson:"notes,omitempty"`
	Fee              *float64   `json:"fee" bson:"fee,omitempty" validate:"omitempty,gte=0"`
	PaymentStatus    *string    `json:"paymentStatus" bson:"paymentStatus,omitempty" validate:"omitempty,oneof=pending paid refunded"`
	ReminderSent     *bool      `json:"reminderSent" bson:"reminderSent,omitempty"`
	CancelReason     *string    `json:"cancelReason" bson:"cancelReason,omitempty"`
}

func normalizeBooking(data Payload) error {
	dropIgnored(data)
	trim(data, "")
	var p problems
	date(data, "appointmentDate", "appointmentDate", &p)
	number(data, "fee", "fee", &p)
	number(data, "duration", "duration", &p)
	return p.err()
}

// Booking validates a create request and applies defaults. The referenced
// patient and doctor are parsed but their existence is checked by the caller.
func Booking(data Payload) (*models.Booking, error) {
	if err := normalizeBooking(data); err != nil {
		return nil, err
	}
	in := &BookingInput{}
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
	doctorID, err := ObjectID("doctor", in.Doctor)
	if err != nil {
		return nil, err
	}
	booking := &models.Booking{
		Patient:          patientID,
		Doctor:           doctorID,
		AppointmentDate:  *in.AppointmentDate,
		AppointmentTime:  in.AppointmentTime,
		Duration:         models.DefaultBookingDuration,
		Status:           in.Status,
		ConsultationType: in.ConsultationType,
		Symptoms:         in.Symptoms,
		Notes:            in.Notes,
		Fee:              in.Fee,
		PaymentStatus:    in.PaymentStatus,
		CancelReason:     in.CancelReason,
	}
	if in.Duration != nil {
		booking.Duration = *in.Duration
	}
	if booking.Status == "" {
		booking.Status = models.BookingScheduled
	}
	if booking.ConsultationType == "" {
		booking.ConsultationType = "in-person"
	}
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = models.PaymentPending
	}
	return booking, nil
}

// BookingUpdate returns the $set document of the submitted fields. A
// changed patient or doctor reference is returned as an ObjectID for the
// caller to verify.
func BookingUpdate(data Payload) (bson.M, error) {
	if err := normalizeBooking(data); err != nil {
		return nil, err
	}
	in := &BookingUpdateInput{}
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
	for field, ref := range map[string]*string{"patient": in.Patient, "doctor": in.Doctor} {
		if ref == nil {
			continue
		}
		var id primitive.ObjectID
		if id, err = ObjectID(field, *ref); err != nil {
			return nil, err
		}
		set[field] = id
	}
	if len(set) == 0 {
		return nil, apperror.Validation("No fields to update", nil)
	}
	return set, nil
}
