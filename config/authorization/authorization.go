package authorization

import (
	"context"
	"strings"

	"MediCall/apperror"
	"MediCall/config/jwt"
	"MediCall/models"
	"MediCall/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AccountLookup returns the stored caller for a token subject.
type AccountLookup interface {
	Account(ctx context.Context, id primitive.ObjectID) (models.Caller, error)
}

func tokenFrom(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(util.SessionCookie); err == nil {
		return cookie
	}
	return ""
}

/*
* Read the token from the Authorization header or the session cookie
* Verify signature and expiry
* Reject tokens revoked by logout
* Replace the claimed role with the stored account when a lookup is set
* Store the caller, token id and expiry in the context
 */
func JWTAuth(tokens *jwt.Manager, revocations RevocationChecker, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFrom(c)
		if raw == "" {
			util.Fail(c, apperror.Unauthenticated(""))
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected token")
			util.Fail(c, apperror.Unauthenticated("Invalid or expired token"))
			return
		}
		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Error().Err(err).Msg("Error checking token revocation")
				util.Fail(c, apperror.Unexpected(err))
				return
			}
			if revoked {
				util.Fail(c, apperror.Unauthenticated("Token has been revoked"))
				return
			}
		}
		caller, err := claims.Caller()
		if err != nil {
			util.Fail(c, apperror.Unauthenticated("Invalid or expired token"))
			return
		}
		if accounts != nil {
			caller, err = accounts.Account(c.Request.Context(), caller.ID)
			if err != nil {
				util.Fail(c, err)
				return
			}
		}
		c.Set(util.CallerKey, caller)
		c.Set(util.TokenIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(util.TokenExpKey, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			util.Fail(c, apperror.Unauthenticated(""))
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		util.Fail(c, apperror.Forbidden(util.ACCESS_DENIED))
	}
}

func GetCaller(c *gin.Context) (models.Caller, bool) {
	v, ok := c.Get(util.CallerKey)
	if !ok {
		return models.Caller{}, false
	}
	caller, ok := v.(models.Caller)
	return caller, ok && !caller.IsZero()
}
