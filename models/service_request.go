package models

import (
	"strings"
	"time"
)

// Request statuses.
const (
	RequestOpen       = "open"
	RequestInProgress = "in_progress"
	RequestCompleted  = "completed"
)

// Experience levels, in ascending order.
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceExpert       = "expert"
)

// Payment statuses for the accepted proposal.
const (
	PaymentNone    = ""
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// ServiceRequest is a unit of work posted by a buyer.
type ServiceRequest struct {
	ID                 string     `bson:"id" json:"id"`
	ClientID           string     `bson:"client_id" json:"client_id"`
	ClientName         string     `bson:"client_name" json:"client_name"`
	Title              string     `bson:"title" json:"title"`
	Description        string     `bson:"description" json:"description"`
	Category           string     `bson:"category" json:"category"`
	Budget             float64    `bson:"budget" json:"budget"`
	Deadline           time.Time  `bson:"deadline" json:"deadline"`
	SkillsRequired     []string   `bson:"skills_required" json:"skills_required"`
	ExperienceLevel    string     `bson:"experience_level" json:"experience_level"`
	Status             string     `bson:"status" json:"status"`
	AcceptedProposalID string     `bson:"accepted_proposal_id,omitempty" json:"accepted_proposal_id,omitempty"`
	PaymentStatus      string     `bson:"payment_status,omitempty" json:"payment_status,omitempty"`
	StripeSessionID    string     `bson:"stripe_session_id,omitempty" json:"-"`
	CreatedAt          time.Time  `bson:"created_at" json:"created_at"`
	CompletedAt        *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Normalize fills defaults for documents written before a field existed.
func (r *ServiceRequest) Normalize() {
	if r.Status == "" {
		r.Status = RequestOpen
	}
	if r.ExperienceLevel == "" {
		r.ExperienceLevel = ExperienceIntermediate
	}
	if r.SkillsRequired == nil {
		r.SkillsRequired = []string{}
	}
}

// ExperienceOrdinal maps an experience level to 0, 1 or 2.
// Unknown levels rank as intermediate.
func ExperienceOrdinal(level string) int {
	switch strings.ToLower(level) {
	case ExperienceBeginner:
		return 0
	case ExperienceExpert:
		return 2
	default:
		return 1
	}
}

func ValidExperienceLevel(level string) bool {
	switch level {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceExpert:
		return true
	}
	return false
}

// ServiceRequestInput is the body accepted when a buyer posts a request.
type ServiceRequestInput struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Budget          float64  `json:"budget"`
	Deadline        string   `json:"deadline"`
	SkillsRequired  []string `json:"skills_required"`
	ExperienceLevel string   `json:"experience_level"`
}

// RequestFilter narrows request lookups. Zero values are ignored.
type RequestFilter struct {
	ClientID        string
	Status          string
	Category        string
	ExperienceLevel string
	MinBudget       float64
	MaxBudget       float64
	Limit           int
}

// ServiceRequestView is a request as returned to a specific caller.
type ServiceRequestView struct {
	ServiceRequest
	ProposalCount int       `json:"proposal_count"`
	MatchScore    *int      `json:"ai_match_score,omitempty"`
	HasApplied    *bool     `json:"has_applied,omitempty"`
	MyProposal    *Proposal `json:"my_proposal,omitempty"`
}
