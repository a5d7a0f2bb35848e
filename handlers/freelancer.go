package handlers

import (
	"net/http"
	"strings"

	"marketplace/models"
	"marketplace/services/freelancer"

	"github.com/gin-gonic/gin"
)

type FreelancerHandler struct {
	Service freelancer.ProfileService
}

func NewFreelancerHandler(svc freelancer.ProfileService) *FreelancerHandler {
	return &FreelancerHandler{Service: svc}
}

func (h *FreelancerHandler) Upsert(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in models.FreelancerProfileInput
	if !bindJSON(c, &in) {
		return
	}
	profile, created, err := h.Service.Upsert(c.Request.Context(), p, in)
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Profile created", "profile": profile})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "profile": profile})
}

func (h *FreelancerHandler) GetMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	profile, err := h.Service.GetMine(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *FreelancerHandler) GetByUserID(c *gin.Context) {
	profile, err := h.Service.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Search accepts ?category=&skills=a,b&min_rate=&max_rate=&limit=.
func (h *FreelancerHandler) Search(c *gin.Context) {
	filter := models.FreelancerFilter{
		Category: c.Query("category"),
		MinRate:  queryFloat(c, "min_rate"),
		MaxRate:  queryFloat(c, "max_rate"),
		Limit:    queryInt(c, "limit"),
	}
	if raw := c.Query("skills"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Skills = append(filter.Skills, s)
			}
		}
	}
	found, err := h.Service.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"freelancers": found, "count": len(found)})
}

func (h *FreelancerHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}
