package routes

import (
	"net/http"

	"MediCall/config/authorization"
	"MediCall/config/jwt"
	"MediCall/controllers"
	"MediCall/metrics"
	"MediCall/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	Tokens      *jwt.Manager
	Revocations authorization.RevocationChecker
	CORSOrigins []string

	// Accounts re-reads the caller's account on every private request when set.
	Accounts authorization.AccountLookup

	// Limiter throttles the public auth routes when set.
	Limiter        *middleware.RateLimiter
	// WebhookLimiter throttles provider callbacks apart from logins.
	WebhookLimiter *middleware.RateLimiter
}

func Routes(r *gin.Engine, h *controllers.Handlers, opts Options) {
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
		}))
	}
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//public
	public := api.Group("")
	if opts.Limiter != nil {
		public.Use(opts.Limiter.RateLimit())
	}
	h.PublicAuth(public)

	//provider callbacks
	hooks := api.Group("")
	if opts.WebhookLimiter != nil {
		hooks.Use(opts.WebhookLimiter.RateLimit())
	}
	h.Webhook(hooks)

	//private
	private := api.Group("")
	private.Use(authorization.JWTAuth(opts.Tokens, opts.Revocations, opts.Accounts))
	h.Session(private)
	h.User(private)
	h.Patient(private)
	h.Doctor(private)
	h.Booking(private)
	h.CallLog(private)
	h.Upload(private)
}
