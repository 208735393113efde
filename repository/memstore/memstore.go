package memstore

import (
	"context"
	"sort"

	"MediCall/models"
	"MediCall/repository"
	"MediCall/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// byNewest orders rows newest first, later inserts winning ties.
func byNewest[T any](rows []T, created func(*T) int64) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	sort.SliceStable(rows, func(i, j int) bool { return created(&rows[i]) > created(&rows[j]) })
}

func emailKey(email string) map[string]string {
	if email == "" {
		return map[string]string{}
	}
	return map[string]string{"email:" + email: util.EMAIL_ALREADY_EXISTS}
}

type Users struct{ t *table[models.User] }

func NewUsers() *Users {
	return &Users{t: newTable("User", func(u *models.User) map[string]string { return emailKey(u.Email) })}
}

func (r *Users) Create(_ context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	return r.t.insert(user.ID, *user)
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.t.get(id)
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.t.first(func(u *models.User) bool { return u.Email == email })
}

func (r *Users) EmailTaken(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	return r.t.exists(func(u *models.User) bool { return u.Email == email && u.ID != exclude }), nil
}

func (r *Users) List(_ context.Context, q models.UserQuery) ([]models.User, error) {
	rows := r.t.filter(func(u *models.User) bool {
		if repository.Given(q.Role) && u.Role != q.Role {
			return false
		}
		if repository.Given(q.Department) && u.Department != q.Department {
			return false
		}
		return q.Search == "" || contains(u.Name, q.Search) || contains(u.Email, q.Search)
	})
	byNewest(rows, func(u *models.User) int64 { return u.CreatedAt.UnixNano() })
	return rows, nil
}

func (r *Users) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	return r.t.update(id, set)
}

func (r *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.t.delete(id)
}

func (r *Users) Summaries(_ context.Context, list []primitive.ObjectID) ([]models.UserSummary, error) {
	want := ids(list)
	out := []models.UserSummary{}
	for _, u := range r.t.filter(func(u *models.User) bool { return want[u.ID] }) {
		out = append(out, u.Summary())
	}
	return out, nil
}

type Patients struct{ t *table[models.Patient] }

func NewPatients() *Patients {
	return &Patients{t: newTable("Patient", func(p *models.Patient) map[string]string { return emailKey(p.Email) })}
}

func (r *Patients) Create(_ context.Context, patient *models.Patient) error {
	if patient.ID.IsZero() {
		patient.ID = primitive.NewObjectID()
	}
	patient.CreatedAt = now()
	patient.UpdatedAt = patient.CreatedAt
	return r.t.insert(patient.ID, *patient)
}

func (r *Patients) FindByID(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return r.t.get(id)
}

func (r *Patients) EmailTaken(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	return r.t.exists(func(p *models.Patient) bool { return p.Email == email && p.ID != exclude }), nil
}

func (r *Patients) List(_ context.Context, q models.PatientQuery) ([]models.Patient, error) {
	rows := r.t.filter(func(p *models.Patient) bool {
		if repository.Given(q.Status) && p.Status != q.Status {
			return false
		}
		return q.Search == "" || contains(p.Name, q.Search) || contains(p.Email, q.Search) || contains(p.MobileNumber, q.Search)
	})
	byNewest(rows, func(p *models.Patient) int64 { return p.CreatedAt.UnixNano() })
	return rows, nil
}

func (r *Patients) ListDue(_ context.Context, clock string) ([]models.Patient, error) {
	return r.t.filter(func(p *models.Patient) bool {
		if p.Status != models.PatientActive {
			return false
		}
		for _, m := range p.Medications {
			if !m.IsActive {
				continue
			}
			for _, at := range m.Times {
				if at == clock {
					return true
				}
			}
		}
		return false
	}), nil
}

func (r *Patients) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Patient, error) {
	return r.t.update(id, set)
}

func (r *Patients) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.t.delete(id)
}

func (r *Patients) Summaries(_ context.Context, list []primitive.ObjectID) ([]models.PatientSummary, error) {
	want := ids(list)
	out := []models.PatientSummary{}
	for _, p := range r.t.filter(func(p *models.Patient) bool { return want[p.ID] }) {
		out = append(out, p.Summary())
	}
	return out, nil
}

type Doctors struct{ t *table[models.Doctor] }

func NewDoctors() *Doctors {
	return &Doctors{t: newTable("Doctor", func(d *models.Doctor) map[string]string {
		keys := emailKey(d.Email)
		if d.LicenseNumber != "" {
			keys["license:"+d.LicenseNumber] = util.LICENSE_ALREADY_EXISTS
		}
		return keys
	})}
}

func (r *Doctors) Create(_ context.Context, doctor *models.Doctor) error {
	if doctor.ID.IsZero() {
		doctor.ID = primitive.NewObjectID()
	}
	doctor.CreatedAt = now()
	doctor.UpdatedAt = doctor.CreatedAt
	return r.t.insert(doctor.ID, *doctor)
}

func (r *Doctors) FindByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	return r.t.get(id)
}

func (r *Doctors) EmailTaken(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	return r.t.exists(func(d *models.Doctor) bool { return d.Email == email && d.ID != exclude }), nil
}

func (r *Doctors) LicenseTaken(_ context.Context, license string, exclude primitive.ObjectID) (bool, error) {
	return r.t.exists(func(d *models.Doctor) bool { return d.LicenseNumber == license && d.ID != exclude }), nil
}

func (r *Doctors) List(_ context.Context, q models.DoctorQuery) ([]models.Doctor, int64, error) {
	rows := r.t.filter(func(d *models.Doctor) bool {
		if !q.IncludeInactive && !d.IsActive {
			return false
		}
		if repository.Given(q.Specialty) && d.Specialty != q.Specialty {
			return false
		}
		if repository.Given(q.Department) && d.Department != q.Department {
			return false
		}
		if repository.Given(q.Status) && d.AvailabilityStatus != q.Status {
			return false
		}
		return q.Search == "" || contains(d.Name, q.Search) || contains(d.Specialty, q.Search) ||
			contains(d.Department, q.Search) || contains(d.Email, q.Search)
	})
	byNewest(rows, func(d *models.Doctor) int64 { return d.CreatedAt.UnixNano() })
	total := int64(len(rows))
	start := (q.Page - 1) * q.Limit
	if start >= len(rows) {
		return []models.Doctor{}, total, nil
	}
	end := start + q.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}

func (r *Doctors) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Doctor, error) {
	return r.t.update(id, set)
}

func (r *Doctors) Unset(_ context.Context, id primitive.ObjectID, fields ...string) error {
	return r.t.unset(id, fields)
}

func (r *Doctors) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.t.delete(id)
}

func (r *Doctors) Summaries(_ context.Context, list []primitive.ObjectID) ([]models.DoctorSummary, error) {
	want := ids(list)
	out := []models.DoctorSummary{}
	for _, d := range r.t.filter(func(d *models.Doctor) bool { return want[d.ID] }) {
		out = append(out, d.Summary())
	}
	return out, nil
}

type Bookings struct{ t *table[models.Booking] }

func NewBookings() *Bookings {
	return &Bookings{t: newTable[models.Booking]("Booking", nil)}
}

func (r *Bookings) Create(_ context.Context, booking *models.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = now()
	booking.UpdatedAt = booking.CreatedAt
	return r.t.insert(booking.ID, *booking)
}

func (r *Bookings) FindByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return r.t.get(id)
}

func (r *Bookings) List(_ context.Context, q models.BookingQuery) ([]models.Booking, error) {
	rows := r.t.filter(func(b *models.Booking) bool {
		if repository.Given(q.Status) && b.Status != q.Status {
			return false
		}
		if q.Date != nil {
			start, end := repository.DayRange(*q.Date)
			if b.AppointmentDate.Before(start) || !b.AppointmentDate.Before(end) {
				return false
			}
		}
		if !q.PatientID.IsZero() && b.Patient != q.PatientID {
			return false
		}
		return q.DoctorID.IsZero() || b.Doctor == q.DoctorID
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].AppointmentDate.Equal(rows[j].AppointmentDate) {
			return rows[i].AppointmentDate.Before(rows[j].AppointmentDate)
		}
		return rows[i].AppointmentTime < rows[j].AppointmentTime
	})
	return rows, nil
}

func (r *Bookings) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Booking, error) {
	return r.t.update(id, set)
}

func (r *Bookings) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.t.delete(id)
}

type CallLogs struct{ t *table[models.CallLog] }

func NewCallLogs() *CallLogs {
	return &CallLogs{t: newTable[models.CallLog]("Call log", nil)}
}

func (r *CallLogs) Create(_ context.Context, log *models.CallLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	log.CreatedAt = now()
	log.UpdatedAt = log.CreatedAt
	if log.CallDateTime.IsZero() {
		log.CallDateTime = log.CreatedAt
	}
	return r.t.insert(log.ID, *log)
}

func (r *CallLogs) FindByID(_ context.Context, id primitive.ObjectID) (*models.CallLog, error) {
	return r.t.get(id)
}

func (r *CallLogs) FindByProviderCallID(_ context.Context, callID string) (*models.CallLog, error) {
	return r.t.first(func(l *models.CallLog) bool { return callID != "" && l.BlandAICallID == callID })
}

func (r *CallLogs) List(_ context.Context, q models.CallLogQuery) ([]models.CallLog, error) {
	rows := r.t.filter(func(l *models.CallLog) bool {
		if repository.Given(q.Outcome) && l.Outcome != q.Outcome {
			return false
		}
		if repository.Given(q.CallType) && l.CallType != q.CallType {
			return false
		}
		if !q.PatientID.IsZero() && l.Patient != q.PatientID {
			return false
		}
		if q.StartDate != nil && l.CallDateTime.Before(*q.StartDate) {
			return false
		}
		return q.EndDate == nil || !l.CallDateTime.After(*q.EndDate)
	})
	byNewest(rows, func(l *models.CallLog) int64 { return l.CallDateTime.UnixNano() })
	return rows, nil
}

func (r *CallLogs) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.CallLog, error) {
	return r.t.update(id, set)
}

func (r *CallLogs) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.t.delete(id)
}
