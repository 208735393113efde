package controllers

import (
	"crypto/subtle"
	"net/http"

	"MediCall/apperror"
	"MediCall/models"
	"MediCall/util"

	"github.com/gin-gonic/gin"
)

const webhookSecretHeader = "X-Webhook-Secret"

// Webhook registers the public provider callbacks. The legacy path is
// kept for call provider accounts configured against it.
func (h *Handlers) Webhook(router gin.IRouter) {
	router.POST("/webhooks/bland", h.BlandWebhook)
	router.POST("/bland-ai/webhook", h.BlandWebhook)
}

/*
* Check the shared secret when one is configured
* Bind the provider payload
* Update or create the call log for the provider call id
 */
func (h *Handlers) BlandWebhook(c *gin.Context) {
	if h.WebhookSecret != "" {
		given := c.GetHeader(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.WebhookSecret)) != 1 {
			util.Fail(c, apperror.Unauthenticated(util.INVALID_WEBHOOK_SIGNATURE))
			return
		}
	}
	var hook models.VoiceWebhook
	if err := c.ShouldBindJSON(&hook); err != nil {
		util.Fail(c, apperror.Validation(util.INVALID_REQUEST_BODY, nil))
		return
	}
	result, err := h.CallLogs.HandleWebhook(c.Request.Context(), hook)
	if err != nil {
		util.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": util.WEBHOOK_PROCESSED, "result": result})
}
