package server

import (
	"context"
	"fmt"
	"time"

	"MediCall/config"
	"MediCall/config/authorization"
	"MediCall/config/db"
	"MediCall/config/jwt"
	"MediCall/config/localcache"
	"MediCall/config/redis"
	"MediCall/controllers"
	"MediCall/integrations/bland"
	"MediCall/integrations/elevenlabs"
	"MediCall/notify"
	"MediCall/repository"
	"MediCall/repository/memstore"
	"MediCall/services"
	"MediCall/storage"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

const cacheTTL = 10 * time.Minute

type stores struct {
	users    services.UserStore
	patients services.PatientStore
	doctors  services.DoctorStore
	bookings services.BookingStore
	logs     services.CallLogStore
}

// App holds the wired dependencies of one server process.
type App struct {
	Config    *config.Config
	DB        *mongo.Database
	Redis     *goredis.Client
	Tokens    *jwt.Manager
	Revoked   authorization.RevocationChecker
	Handlers  *controllers.Handlers
	Reminders *services.ReminderService
	Location  *time.Location
	// LocalFiles is set when uploads are kept on local disk.
	LocalFiles *storage.LocalStore

	closers []func()
}

/*
* Open the document store, Mongo or in memory
* Connect redis, embedded when running in memory
* Build the provider clients that are configured
* Wire the services and the handlers
 */
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, Tokens: jwt.NewManager(cfg.JWTSecret, cfg.JWTExpiry)}
	st, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	if err := app.openRedis(ctx); err != nil {
		app.Close()
		return nil, err
	}

	var cache services.Cache
	var revoker services.TokenRevoker
	if app.Redis != nil {
		revocations := redis.NewRevocations(app.Redis)
		app.Revoked, revoker = revocations, revocations
		if cfg.CacheEnabled {
			cache = redis.NewCache(app.Redis, cacheTTL)
		}
	} else {
		revocations := localcache.NewRevocations()
		app.Revoked, revoker = revocations, revocations
		if cfg.CacheEnabled {
			cache = localcache.NewCache(cacheTTL)
		}
	}

	dialer, err := newDialer(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	cloner, err := newCloner(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	files, err := app.newFileStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	var mailer services.Mailer
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Warn().Msg("SMTP is not configured, email reminders are disabled")
	}
	loc, err := time.LoadLocation(cfg.ReminderTimezone)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("reminder timezone: %w", err)
	}

	app.Handlers = &controllers.Handlers{
		Auth:           services.NewAuthService(st.users, app.Tokens, revoker, cache),
		Users:          services.NewUserService(st.users, cache),
		Patients:       services.NewPatientService(st.patients, st.users, st.logs, dialer, cache),
		Doctors:        services.NewDoctorService(st.doctors, cloner, cache),
		Bookings:       services.NewBookingService(st.bookings, st.patients, st.doctors, st.users, st.logs, dialer),
		CallLogs:       services.NewCallLogService(st.logs, st.patients, st.users),
		Files:          files,
		WebhookSecret:  cfg.BlandWebhookSecret,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.IsProduction(),
	}
	app.Location = loc
	app.Reminders = services.NewReminderService(st.patients, st.logs, dialer, mailer, cache, loc)
	return app, nil
}

func (a *App) openStores(ctx context.Context) (*stores, error) {
	if a.Config.UseMemoryStore() {
		log.Warn().Msg("Using the in-memory store, data is lost on restart")
		return &stores{
			users:    memstore.NewUsers(),
			patients: memstore.NewPatients(),
			doctors:  memstore.NewDoctors(),
			bookings: memstore.NewBookings(),
			logs:     memstore.NewCallLogs(),
		}, nil
	}
	database, err := db.Connect(ctx, a.Config.MongoURI, a.Config.MongoDB)
	if err != nil {
		return nil, err
	}
	a.DB = database
	a.closers = append(a.closers, func() { db.Disconnect(context.Background()) })
	return &stores{
		users:    repository.NewUserRepo(database),
		patients: repository.NewPatientRepo(database),
		doctors:  repository.NewDoctorRepo(database),
		bookings: repository.NewBookingRepo(database),
		logs:     repository.NewCallLogRepo(database),
	}, nil
}

func (a *App) openRedis(ctx context.Context) error {
	addr := a.Config.RedisAddr
	if a.Config.UseMemoryStore() {
		mr, err := miniredis.Run()
		if err != nil {
			return err
		}
		a.closers = append(a.closers, mr.Close)
		addr = mr.Addr()
	} else if addr == "" {
		log.Warn().Msg("REDIS_ADDR is empty, using the in-process cache")
		return nil
	}
	client, err := redis.Connect(ctx, addr, a.Config.RedisPassword, a.Config.RedisDB)
	if err != nil {
		return err
	}
	a.Redis = client
	a.closers = append(a.closers, func() { _ = client.Close() })
	return nil
}

func newDialer(cfg *config.Config) (services.Dialer, error) {
	if cfg.BlandAPIKey == "" {
		log.Warn().Msg("BLAND_AI_API_KEY is not set, outbound calls are disabled")
		return nil, nil
	}
	client, err := bland.New(bland.Config{
		BaseURL:    cfg.BlandBaseURL,
		APIKey:     cfg.BlandAPIKey,
		WebhookURL: cfg.BlandWebhookURL,
		Voice:      cfg.BlandVoice,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newCloner(cfg *config.Config) (services.VoiceCloner, error) {
	if cfg.ElevenLabsAPIKey == "" {
		log.Warn().Msg("ELEVENLABS_API_KEY is not set, voice cloning is disabled")
		return nil, nil
	}
	client, err := elevenlabs.New(elevenlabs.Config{BaseURL: cfg.ElevenLabsBaseURL, APIKey: cfg.ElevenLabsAPIKey})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *App) newFileStore(ctx context.Context) (storage.FileStore, error) {
	if a.Config.S3Bucket == "" {
		a.LocalFiles = storage.NewLocalStore(a.Config.UploadDir, a.Config.UploadURLPrefix)
		return a.LocalFiles, nil
	}
	client, err := storage.NewS3Client(ctx, a.Config.S3Region)
	if err != nil {
		return nil, err
	}
	return storage.NewS3Store(client, a.Config.S3Bucket, a.Config.S3Region, a.Config.S3PublicBaseURL), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
