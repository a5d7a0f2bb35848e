package handlers

import (
	"net/http"

	"marketplace/models"
	"marketplace/services/requests"

	"github.com/gin-gonic/gin"
)

type ServiceRequestHandler struct {
	Service requests.RequestService
}

func NewServiceRequestHandler(svc requests.RequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{Service: svc}
}

func (h *ServiceRequestHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in models.ServiceRequestInput
	if !bindJSON(c, &in) {
		return
	}
	req, err := h.Service.Create(c.Request.Context(), p, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Service request created", "service_request": req})
}

func (h *ServiceRequestHandler) Browse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	q := requests.BrowseQuery{
		Status:          c.Query("status"),
		Category:        c.Query("category"),
		ExperienceLevel: c.Query("experience_level"),
		MinBudget:       queryFloat(c, "min_budget"),
		MaxBudget:       queryFloat(c, "max_budget"),
		Limit:           queryInt(c, "limit"),
	}
	views, err := h.Service.Browse(c.Request.Context(), p, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_requests": views, "count": len(views)})
}

func (h *ServiceRequestHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	view, err := h.Service.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ServiceRequestHandler) Complete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	req, err := h.Service.Complete(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service request marked as completed", "service_request": req})
}

func (h *ServiceRequestHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service request deleted"})
}
