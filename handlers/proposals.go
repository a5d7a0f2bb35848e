package handlers

import (
	"net/http"

	"marketplace/models"
	"marketplace/services/proposals"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	Service proposals.ProposalService
}

func NewProposalHandler(svc proposals.ProposalService) *ProposalHandler {
	return &ProposalHandler{Service: svc}
}

func (h *ProposalHandler) Submit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in models.ProposalInput
	if !bindJSON(c, &in) {
		return
	}
	proposal, err := h.Service.Submit(c.Request.Context(), p, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Proposal submitted", "proposal": proposal})
}

func (h *ProposalHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	views, err := h.Service.List(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": views, "count": len(views)})
}

func (h *ProposalHandler) Accept(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	proposal, err := h.Service.Accept(c.Request.Context(), p, c.Param("id"), c.Param("pid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Proposal accepted", "proposal": proposal})
}

func (h *ProposalHandler) Reject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	proposal, err := h.Service.Reject(c.Request.Context(), p, c.Param("id"), c.Param("pid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Proposal rejected", "proposal": proposal})
}

func (h *ProposalHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	views, err := h.Service.ListMine(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": views, "count": len(views)})
}
