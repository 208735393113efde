package util

import (
	"MediCall/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	UserCollection    = "users"
	PatientCollection = "patients"
	DoctorCollection  = "doctors"
	BookingCollection = "bookings"
	CallLogCollection = "calllogs"
)

const (
	UserKey    = "USER:"
	PatientKey = "PATIENT:"
	DoctorKey  = "DOCTOR:"
)

const (
	CallerKey     = "caller"
	TokenIDKey    = "tokenId"
	TokenExpKey   = "tokenExp"
	RequestIDKey  = "requestId"
	SessionCookie = "medicall_session"
)

const (
	DELETED_SUCCESSFULLY      = "Deleted successfully"
	LOGGED_OUT                = "Logged out successfully"
	WEBHOOK_PROCESSED         = "Webhook processed successfully"
	INVALID_CREDENTIALS       = "Invalid email or password"
	ACCOUNT_INACTIVE          = "Account is inactive"
	ACCOUNT_NOT_FOUND         = "Account no longer exists"
	EMAIL_ALREADY_EXISTS      = "Email already exists"
	LICENSE_ALREADY_EXISTS    = "License number already exists"
	CANNOT_DELETE_SELF        = "Cannot delete your own account"
	ACCESS_DENIED             = "You do not have access to this resource"
	INVALID_REQUEST_BODY      = "Invalid request body"
	PATIENT_HAS_NO_PHONE      = "Patient has no phone number"
	NO_ACTIVE_MEDICATION      = "Patient has no active medication"
	VOICE_PROVIDER_FAILED     = "Voice cloning failed"
	CALL_PROVIDER_FAILED      = "Failed to dispatch call"
	AUDIO_FILE_REQUIRED       = "Audio file is required"
	UPLOAD_FILE_REQUIRED      = "File is required"
	INVALID_WEBHOOK_SIGNATURE = "Invalid webhook secret"
)

func SuccessResponse(key string, data interface{}) gin.H {
	return gin.H{key: data}
}

func MessageResponse(message string) gin.H {
	return gin.H{"message": message}
}

// FailedResponse renders an error envelope. Errors outside the taxonomy
// are reported with a generic message.
func FailedResponse(err error) gin.H {
	body := gin.H{"error": apperror.PublicMessage(err)}
	if details := apperror.DetailsOf(err); len(details) > 0 {
		body["details"] = details
	}
	return body
}

// Fail writes the error envelope with the status for the error's kind.
func Fail(c *gin.Context, err error) {
	status := apperror.StatusCode(err)
	if status >= 500 {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, FailedResponse(err))
}
