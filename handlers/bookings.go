package handlers

import (
	"net/http"

	"marketplace/services/bookings"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Service bookings.BookingService
}

func NewBookingHandler(svc bookings.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) Book(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	booking, err := h.Service.Book(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Service request booked", "booking": booking})
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	found, err := h.Service.ListMine(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": found, "count": len(found)})
}

func (h *BookingHandler) ListForRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	found, err := h.Service.ListForRequest(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": found, "count": len(found)})
}
