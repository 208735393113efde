package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BookingScheduled = "scheduled"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingNoShow    = "no-show"
)

var BookingStatuses = []string{BookingScheduled, BookingCompleted, BookingCancelled, BookingNoShow}

var ConsultationTypes = []string{"in-person", "video", "phone"}

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentRefunded}

const (
	DefaultBookingDuration = 30
	MinBookingDuration     = 15
)

type Booking struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Patient          primitive.ObjectID `json:"patient" bson:"patient"`
	Doctor           primitive.ObjectID `json:"doctor" bson:"doctor"`
	AppointmentDate  time.Time          `json:"appointmentDate" bson:"appointmentDate"`
	AppointmentTime  string             `json:"appointmentTime" bson:"appointmentTime"`
	Duration         int                `json:"duration" bson:"duration"`
	Status           string             `json:"status" bson:"status"`
	ConsultationType string             `json:"consultationType" bson:"consultationType"`
	Symptoms         string             `json:"symptoms,omitempty" bson:"symptoms,omitempty"`
	Notes            string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Fee              *float64           `json:"fee,omitempty" bson:"fee,omitempty"`
	PaymentStatus    string             `json:"paymentStatus" bson:"paymentStatus"`
	ReminderSent     bool               `json:"reminderSent" bson:"reminderSent"`
	CancelReason     string             `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`
	CreatedBy        primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// BookingView is a booking with patient, doctor and owner expanded.
type BookingView struct {
	Booking
	Patient   *PatientSummary `json:"patient"`
	Doctor    *DoctorSummary  `json:"doctor"`
	CreatedBy *UserSummary    `json:"createdBy"`
}

type BookingQuery struct {
	Status    string
	Date      *time.Time
	PatientID primitive.ObjectID
	DoctorID  primitive.ObjectID
}
