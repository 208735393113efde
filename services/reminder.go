package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"MediCall/integrations/bland"
	"MediCall/metrics"
	"MediCall/models"
	"MediCall/util"
	"MediCall/notify"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

const clockLayout = "15:04"

// Reminder channels.
const (
	ChannelVoice = "voice"
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ReminderService sends the medication reminders that fall due each minute.
type ReminderService struct {
	patients PatientStore
	logs     CallLogStore
	dialer   Dialer
	mailer   Mailer
	cache    Cache
	loc      *time.Location
}

func NewReminderService(patients PatientStore, logs CallLogStore, dialer Dialer, mailer Mailer, cache Cache, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{patients: patients, logs: logs, dialer: dialer, mailer: mailer, cache: cache, loc: loc}
}

type ReminderRun struct {
	Clock    string `json:"clock"`
	Patients int    `json:"patients"`
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
}

/*
* Find active patients with an active medication due at this minute
* Send each due medication over the patient's preferred channels
* Stamp lastReminderSent and the next due time
* A failing patient or channel does not stop the run
 */
func (s *ReminderService) RunDue(ctx context.Context, at time.Time) (*ReminderRun, error) {
	clock := at.In(s.loc).Format(clockLayout)
	run := &ReminderRun{Clock: clock}
	due, err := s.patients.ListDue(ctx, clock)
	if err != nil {
		log.Error().Err(err).Str("clock", clock).Msg("Error from listDue")
		return nil, err
	}
	for i := range due {
		p := &due[i]
		run.Patients++
		for _, med := range dueMedications(p, clock) {
			sent, failed := s.remind(ctx, p, med, clock)
			run.Sent += sent
			run.Failed += failed
		}
		set := bson.M{"lastReminderSent": at.UTC()}
		if next := NextReminderDue(p, at, s.loc); next != nil {
			set["nextReminderDue"] = *next
		}
		if _, err := s.patients.Update(ctx, p.ID, set); err != nil {
			log.Error().Err(err).Str("patientId", p.ID.Hex()).Msg("Error from stamping reminder times")
		}
		forget(ctx, s.cache, util.PatientKey+p.ID.Hex())
	}
	return run, nil
}

func (s *ReminderService) remind(ctx context.Context, p *models.Patient, med models.Medication, clock string) (sent, failed int) {
	record := func(channel string, err error) {
		metrics.Reminders.WithLabelValues(channel, metrics.Status(err)).Inc()
		if err != nil {
			failed++
			log.Warn().Err(err).Str("patientId", p.ID.Hex()).Str("channel", channel).Msg("Reminder failed")
			return
		}
		sent++
	}
	prefs := p.ReminderPreferences
	if prefs.VoiceCall {
		_, err := placeCall(ctx, s.dialer, s.logs, outboundCall{
			patient:  p,
			agent:    p.CreatedBy,
			callType: models.CallTypeReminder,
			script:   bland.MedicationReminderScript(p.Name, med.Name, med.Dosage, clock),
			decorate: func(l *models.CallLog) {
				l.ReminderDetails = &models.ReminderDetails{MedicationName: med.Name, Dosage: med.Dosage}
			},
		})
		record(ChannelVoice, err)
	}
	if prefs.SMS {
		record(ChannelSMS, s.text(ctx, p, med))
	}
	if prefs.Email && p.Email != "" {
		record(ChannelEmail, s.email(ctx, p, med, clock))
	}
	return sent, failed
}

func (s *ReminderService) text(ctx context.Context, p *models.Patient, med models.Medication) error {
	if s.dialer == nil {
		return errCallsDisabled
	}
	if p.MobileNumber == "" {
		return errors.New("patient has no phone number")
	}
	_, err := s.dialer.SendSMS(ctx, p.MobileNumber, bland.MedicationReminderSMS(p.Name, med.Name, med.Dosage))
	return err
}

func (s *ReminderService) email(ctx context.Context, p *models.Patient, med models.Medication, clock string) error {
	if s.mailer == nil {
		return errors.New("mailer is not configured")
	}
	return s.mailer.Send(ctx, p.Email,
		notify.MedicationReminderSubject(med.Name),
		notify.MedicationReminderBody(p.Name, med.Name, med.Dosage, clock))
}

func dueMedications(p *models.Patient, clock string) []models.Medication {
	var out []models.Medication
	for _, m := range p.Medications {
		if !m.IsActive {
			continue
		}
		for _, t := range m.Times {
			if t == clock {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// NextReminderDue is the first active medication time strictly after at,
// looking into the next day when nothing is left today.
func NextReminderDue(p *models.Patient, at time.Time, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)
	var clocks []time.Duration
	for _, m := range p.Medications {
		if !m.IsActive {
			continue
		}
		for _, t := range m.Times {
			parsed, err := time.Parse(clockLayout, t)
			if err != nil {
				continue
			}
			clocks = append(clocks, time.Duration(parsed.Hour())*time.Hour+time.Duration(parsed.Minute())*time.Minute)
		}
	}
	if len(clocks) == 0 {
		return nil
	}
	sort.Slice(clocks, func(i, j int) bool { return clocks[i] < clocks[j] })
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	for _, c := range clocks {
		if candidate := midnight.Add(c); candidate.After(local) {
			next := candidate.UTC()
			return &next
		}
	}
	next := midnight.AddDate(0, 0, 1).Add(clocks[0]).UTC()
	return &next
}

var _ Mailer = (*notify.SMTPMailer)(nil)
