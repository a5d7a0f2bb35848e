package handlers

import (
	"io"
	"net/http"

	"marketplace/services/payment"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 65536

type PaymentHandler struct {
	Service payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: svc}
}

func (h *PaymentHandler) Checkout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.Service.CreateCheckout(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Webhook is unauthenticated; the Stripe signature is the credential.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, utils.Validation("body", "failed to read webhook body"))
		return
	}
	if err := h.Service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
