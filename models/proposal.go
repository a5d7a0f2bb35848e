package models

import "time"

// Proposal statuses.
const (
	ProposalPending  = "pending"
	ProposalAccepted = "accepted"
	ProposalRejected = "rejected"
)

// Proposal is a freelancer's bid on a service request. MatchScore is frozen
// at submission time.
type Proposal struct {
	ID               string     `bson:"id" json:"id"`
	ServiceRequestID string     `bson:"service_request_id" json:"service_request_id"`
	FreelancerID     string     `bson:"freelancer_id" json:"freelancer_id"`
	FreelancerName   string     `bson:"freelancer_name" json:"freelancer_name"`
	CoverLetter      string     `bson:"cover_letter" json:"cover_letter"`
	ProposedPrice    float64    `bson:"proposed_price" json:"proposed_price"`
	DeliveryTimeDays int        `bson:"delivery_time_days" json:"delivery_time_days"`
	MatchScore       int        `bson:"ai_match_score" json:"ai_match_score"`
	Status           string     `bson:"status" json:"status"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	DecidedAt        *time.Time `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
}

func (p *Proposal) Normalize() {
	if p.Status == "" {
		p.Status = ProposalPending
	}
}

type ProposalInput struct {
	CoverLetter      string  `json:"cover_letter"`
	ProposedPrice    float64 `json:"proposed_price"`
	DeliveryTimeDays int     `json:"delivery_time_days"`
}

// FreelancerSummary is the slice of a profile shown next to a proposal.
type FreelancerSummary struct {
	Title             string   `json:"title"`
	Rating            float64  `json:"rating"`
	CompletedProjects int      `json:"completed_projects"`
	SuccessRate       float64  `json:"success_rate"`
	HourlyRate        float64  `json:"hourly_rate"`
	Skills            []string `json:"skills"`
}

// ProposalView is a proposal enriched for the request owner.
type ProposalView struct {
	Proposal
	Freelancer *FreelancerSummary `json:"freelancer_profile,omitempty"`
}

// MyProposalView is a proposal as listed for the freelancer who sent it.
type MyProposalView struct {
	Proposal
	RequestTitle  string `json:"request_title,omitempty"`
	RequestStatus string `json:"request_status,omitempty"`
}
