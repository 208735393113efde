package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	GinMode     string `envconfig:"GIN_MODE" default:"release"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"APP_ENV" default:"development"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"mongo"`
	MongoURI     string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB      string `envconfig:"MONGO_DB" default:"medicall"`

	CacheEnabled  bool   `envconfig:"CACHE_ENABLED" default:"true"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me"`
	JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	BlandAPIKey        string `envconfig:"BLAND_AI_API_KEY"`
	BlandBaseURL       string `envconfig:"BLAND_AI_BASE_URL" default:"https://api.bland.ai/v1"`
	BlandWebhookURL    string `envconfig:"BLAND_AI_WEBHOOK_URL"`
	BlandWebhookSecret string `envconfig:"BLAND_AI_WEBHOOK_SECRET"`
	BlandVoice         string `envconfig:"BLAND_AI_VOICE" default:"maya"`

	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io/v1"`

	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Region        string `envconfig:"S3_REGION" default:"us-east-1"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
	UploadDir       string `envconfig:"UPLOAD_DIR" default:"public/uploads"`
	UploadURLPrefix string `envconfig:"UPLOAD_URL_PREFIX" default:"/uploads"`
	MaxUploadBytes  int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"reminders@medicall.local"`

	JobsEnabled       bool   `envconfig:"JOBS_ENABLED" default:"true"`
	ReminderSchedule  string `envconfig:"REMINDER_SCHEDULE" default:"* * * * *"`
	ReminderTimezone  string `envconfig:"REMINDER_TIMEZONE" default:"UTC"`
	MigrationsEnabled bool   `envconfig:"MIGRATIONS_ENABLED" default:"true"`

	RateLimitPerSecond float64 `envconfig:"RATE_LIMIT_PER_SECOND" default:"5"`
	RateLimitBurst     int     `envconfig:"RATE_LIMIT_BURST" default:"20"`

	WebhookRateLimitPerSecond float64 `envconfig:"WEBHOOK_RATE_LIMIT_PER_SECOND" default:"50"`
	WebhookRateLimitBurst     int     `envconfig:"WEBHOOK_RATE_LIMIT_BURST" default:"100"`
}

// Load reads .env when present and decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file loaded")
	}
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) UseMemoryStore() bool {
	return c.StoreBackend == "memory"
}
