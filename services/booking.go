package services

import (
	"context"

	"MediCall/apperror"
	"MediCall/integrations/bland"
	"MediCall/models"
	"MediCall/validation"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingService struct {
	bookings BookingStore
	patients PatientStore
	doctors  DoctorStore
	users    UserStore
	logs     CallLogStore
	dialer   Dialer
}

func NewBookingService(bookings BookingStore, patients PatientStore, doctors DoctorStore, users UserStore, logs CallLogStore, dialer Dialer) *BookingService {
	return &BookingService{bookings: bookings, patients: patients, doctors: doctors, users: users, logs: logs, dialer: dialer}
}

// views expands patient, doctor and createdBy. References to deleted
// documents are left empty.
func (s *BookingService) views(ctx context.Context, list []models.Booking) ([]models.BookingView, error) {
	var patientIDs, doctorIDs, userIDs []primitive.ObjectID
	for _, b := range list {
		patientIDs = append(patientIDs, b.Patient)
		doctorIDs = append(doctorIDs, b.Doctor)
		userIDs = append(userIDs, b.CreatedBy)
	}
	patients, err := patientSummaries(ctx, s.patients, patientIDs)
	if err != nil {
		return nil, err
	}
	doctors, err := doctorSummaries(ctx, s.doctors, doctorIDs)
	if err != nil {
		return nil, err
	}
	users, err := owners(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]models.BookingView, 0, len(list))
	for _, b := range list {
		out = append(out, models.BookingView{
			Booking:   b,
			Patient:   patients[b.Patient],
			Doctor:    doctors[b.Doctor],
			CreatedBy: users[b.CreatedBy],
		})
	}
	return out, nil
}

func (s *BookingService) view(ctx context.Context, b *models.Booking) (*models.BookingView, error) {
	list, err := s.views(ctx, []models.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// references checks that the patient and doctor a booking points at exist.
func (s *BookingService) references(ctx context.Context, patient, doctor primitive.ObjectID) error {
	if !patient.IsZero() {
		if _, err := s.patients.FindByID(ctx, patient); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.Invalid("patient", "does not reference an existing patient")
			}
			return err
		}
	}
	if !doctor.IsZero() {
		d, err := s.doctors.FindByID(ctx, doctor)
		if apperror.IsNotFound(err) || (err == nil && !d.IsActive) {
			return apperror.Invalid("doctor", "does not reference an active doctor")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *BookingService) List(ctx context.Context, q models.BookingQuery) ([]models.BookingView, error) {
	list, err := s.bookings.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, list)
}

/*
* Validate the payload and apply defaults
* Patient and doctor must exist
* The caller becomes createdBy
 */
func (s *BookingService) Create(ctx context.Context, caller models.Caller, data validation.Payload) (*models.BookingView, error) {
	booking, err := validation.Booking(data)
	if err != nil {
		return nil, err
	}
	if err := s.references(ctx, booking.Patient, booking.Doctor); err != nil {
		return nil, err
	}
	booking.CreatedBy = caller.ID
	if err := s.bookings.Create(ctx, booking); err != nil {
		log.Error().Err(err).Msg("Error from createBooking")
		return nil, err
	}
	return s.view(ctx, booking)
}

func (s *BookingService) find(ctx context.Context, rawID string) (*models.Booking, error) {
	id, err := parseID("Booking", rawID)
	if err != nil {
		return nil, err
	}
	return s.bookings.FindByID(ctx, id)
}

func (s *BookingService) Get(ctx context.Context, rawID string) (*models.BookingView, error) {
	booking, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, booking)
}

func (s *BookingService) Update(ctx context.Context, rawID string, data validation.Payload) (*models.BookingView, error) {
	id, err := parseID("Booking", rawID)
	if err != nil {
		return nil, err
	}
	set, err := validation.BookingUpdate(data)
	if err != nil {
		return nil, err
	}
	patient, _ := set["patient"].(primitive.ObjectID)
	doctor, _ := set["doctor"].(primitive.ObjectID)
	if err := s.references(ctx, patient, doctor); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, set)
}

// SetStatus changes the booking status. A cancel reason is kept only for
// cancellations.
func (s *BookingService) SetStatus(ctx context.Context, rawID string, data validation.Payload) (*models.BookingView, error) {
	id, err := parseID("Booking", rawID)
	if err != nil {
		return nil, err
	}
	status, err := validation.Status(data, "status", models.BookingStatuses)
	if err != nil {
		return nil, err
	}
	set := bson.M{"status": status}
	if reason, ok := data["cancelReason"].(string); ok && status == models.BookingCancelled {
		set["cancelReason"] = reason
	}
	return s.apply(ctx, id, set)
}

func (s *BookingService) SetPayment(ctx context.Context, rawID string, data validation.Payload) (*models.BookingView, error) {
	id, err := parseID("Booking", rawID)
	if err != nil {
		return nil, err
	}
	status, err := validation.Status(data, "paymentStatus", models.PaymentStatuses)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, id, bson.M{"paymentStatus": status})
}

func (s *BookingService) apply(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.BookingView, error) {
	booking, err := s.bookings.Update(ctx, id, set)
	if err != nil {
		log.Error().Err(err).Str("bookingId", id.Hex()).Msg("Error from updateBooking")
		return nil, err
	}
	return s.view(ctx, booking)
}

func (s *BookingService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID("Booking", rawID)
	if err != nil {
		return err
	}
	return s.bookings.Delete(ctx, id)
}

/*
* Load the booking with its patient and doctor
* Call the patient with the appointment script
* Mark the reminder as sent
 */
func (s *BookingService) Remind(ctx context.Context, caller models.Caller, rawID string) (*models.BookingView, error) {
	booking, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	patient, err := s.patients.FindByID(ctx, booking.Patient)
	if err != nil {
		return nil, err
	}
	doctor, err := s.doctors.FindByID(ctx, booking.Doctor)
	if err != nil {
		return nil, err
	}
	date := booking.AppointmentDate.Format("Monday, January 2, 2006")
	bookingID := booking.ID
	_, err = placeCall(ctx, s.dialer, s.logs, outboundCall{
		patient:  patient,
		agent:    caller.ID,
		callType: models.CallTypeAppointment,
		script:   bland.AppointmentReminderScript(patient.Name, doctor.Name, date, booking.AppointmentTime),
		extra:    map[string]string{MetaBookingID: booking.ID.Hex()},
		decorate: func(l *models.CallLog) {
			at := booking.AppointmentDate
			l.AppointmentDetails = &models.AppointmentDetails{
				RequestedDate: &at,
				RequestedTime: booking.AppointmentTime,
				Booking:       &bookingID,
			}
		},
	})
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, booking.ID, bson.M{"reminderSent": true})
}
