package controllers

import (
	"net/http"
	"strconv"

	"MediCall/apperror"
	"MediCall/config/authorization"
	"MediCall/models"
	"MediCall/services"
	"MediCall/storage"
	"MediCall/util"
	"MediCall/validation"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultMaxUploadBytes = 10 << 20

// Handlers binds HTTP requests to the services.
type Handlers struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Patients *services.PatientService
	Doctors  *services.DoctorService
	Bookings *services.BookingService
	CallLogs *services.CallLogService
	Files    storage.FileStore

	// WebhookSecret, when set, must match the X-Webhook-Secret header.
	WebhookSecret  string
	MaxUploadBytes int64
	SecureCookies  bool
}

// body binds a JSON object. A malformed body is a validation error.
func body(c *gin.Context) (validation.Payload, bool) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil || data == nil {
		util.Fail(c, apperror.Validation(util.INVALID_REQUEST_BODY, nil))
		return nil, false
	}
	return data, true
}

// optionalBody binds a JSON object when the request carries one.
func optionalBody(c *gin.Context) (validation.Payload, bool) {
	if c.Request.ContentLength == 0 {
		return validation.Payload{}, true
	}
	return body(c)
}

func caller(c *gin.Context) models.Caller {
	who, _ := authorization.GetCaller(c)
	return who
}

func ok(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusOK, util.SuccessResponse(key, data))
}

func created(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusCreated, util.SuccessResponse(key, data))
}

func deleted(c *gin.Context) {
	c.JSON(http.StatusOK, util.MessageResponse(util.DELETED_SUCCESSFULLY))
}

// queryID parses an optional id filter.
func queryID(c *gin.Context, key string) (primitive.ObjectID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return primitive.NilObjectID, true
	}
	id, err := validation.ObjectID(key, raw)
	if err != nil {
		util.Fail(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
