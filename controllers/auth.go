package controllers

import (
	"net/http"
	"time"

	"MediCall/util"

	"github.com/gin-gonic/gin"
)

// PublicAuth registers the routes reachable without a token.
func (h *Handlers) PublicAuth(router gin.IRouter) {
	auth := router.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
}

func (h *Handlers) Session(router gin.IRouter) {
	auth := router.Group("/auth")
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)
}

/*
* Bind JSON
* Pass to the service, which always creates an agent
 */
func (h *Handlers) Signup(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	user, err := h.Auth.Signup(c.Request.Context(), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	created(c, "user", user)
}

/*
* Bind the credentials and pass to the service
* Return the token and also set it as the session cookie
 */
func (h *Handlers) Login(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	session, err := h.Auth.Login(c.Request.Context(), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(util.SessionCookie, session.Token, maxAge, "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"token": session.Token, "expiresAt": session.ExpiresAt, "user": session.User})
}

/*
* Read the token id and expiry stored by the auth middleware
* Revoke the token and clear the cookie
 */
func (h *Handlers) Logout(c *gin.Context) {
	tokenID := c.GetString(util.TokenIDKey)
	expiresAt := c.GetTime(util.TokenExpKey)
	if err := h.Auth.Logout(c.Request.Context(), tokenID, expiresAt); err != nil {
		util.Fail(c, err)
		return
	}
	c.SetCookie(util.SessionCookie, "", -1, "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, util.MessageResponse(util.LOGGED_OUT))
}

func (h *Handlers) Me(c *gin.Context) {
	user, err := h.Auth.Me(c.Request.Context(), caller(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "user", user)
}
