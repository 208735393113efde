package jobs

import (
	"context"
	"time"

	"MediCall/services"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultReminderSchedule runs the reminder scan every minute.
const DefaultReminderSchedule = "* * * * *"

const runTimeout = 50 * time.Second

type ReminderRunner interface {
	RunDue(ctx context.Context, at time.Time) (*services.ReminderRun, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner ReminderRunner
	now    func() time.Time
}

// NewScheduler registers the reminder scan on spec. Overlapping runs are
// skipped.
func NewScheduler(spec string, loc *time.Location, runner ReminderRunner) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultReminderSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		runner: runner,
		now:    time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.RunReminders); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Info().Msg("Starting medication reminder scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

/*
* Truncate the clock to the minute
* Run the due reminders
* Log the totals, errors never stop the scheduler
 */
func (s *Scheduler) RunReminders() {
	at := s.now().Truncate(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	run, err := s.runner.RunDue(ctx, at)
	if err != nil {
		log.Error().Err(err).Time("at", at).Msg("Error from reminder run")
		return
	}
	if run.Patients == 0 {
		log.Debug().Str("clock", run.Clock).Msg("No reminders due")
		return
	}
	log.Info().
		Str("clock", run.Clock).
		Int("patients", run.Patients).
		Int("sent", run.Sent).
		Int("failed", run.Failed).
		Msg("Medication reminders sent")
}
