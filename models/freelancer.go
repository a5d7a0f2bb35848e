package models

import "time"

const AvailabilityAvailable = "available"

type PortfolioItem struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

type EducationItem struct {
	Institution string `bson:"institution" json:"institution"`
	Degree      string `bson:"degree,omitempty" json:"degree,omitempty"`
	Field       string `bson:"field,omitempty" json:"field,omitempty"`
	Year        int    `bson:"year,omitempty" json:"year,omitempty"`
}

type CertificationItem struct {
	Name   string `bson:"name" json:"name"`
	Issuer string `bson:"issuer,omitempty" json:"issuer,omitempty"`
	Year   int    `bson:"year,omitempty" json:"year,omitempty"`
	URL    string `bson:"url,omitempty" json:"url,omitempty"`
}

// FreelancerStats are earned over time and never set through a profile save.
type FreelancerStats struct {
	Rating            float64 `bson:"rating" json:"rating"`
	TotalJobs         int     `bson:"total_jobs" json:"total_jobs"`
	TotalEarnings     float64 `bson:"total_earnings" json:"total_earnings"`
	CompletedProjects int     `bson:"completed_projects" json:"completed_projects"`
	SuccessRate       float64 `bson:"success_rate" json:"success_rate"`
}

// FreelancerProfile is the seller-side profile used for matching. One per user.
type FreelancerProfile struct {
	UserID          string              `bson:"user_id" json:"user_id"`
	Name            string              `bson:"name,omitempty" json:"name,omitempty"`
	Title           string              `bson:"title" json:"title"`
	Bio             string              `bson:"bio" json:"bio"`
	Skills          []string            `bson:"skills" json:"skills"`
	Categories      []string            `bson:"categories" json:"categories"`
	ExperienceYears int                 `bson:"experience_years" json:"experience_years"`
	HourlyRate      float64             `bson:"hourly_rate" json:"hourly_rate"`
	PortfolioURL    string              `bson:"portfolio_url,omitempty" json:"portfolio_url,omitempty"`
	Portfolio       []PortfolioItem     `bson:"portfolio,omitempty" json:"portfolio,omitempty"`
	Education       []EducationItem     `bson:"education,omitempty" json:"education,omitempty"`
	Certifications  []CertificationItem `bson:"certifications,omitempty" json:"certifications,omitempty"`
	Languages       []string            `bson:"languages" json:"languages"`
	Location        string              `bson:"location,omitempty" json:"location,omitempty"`
	Website         string              `bson:"website,omitempty" json:"website,omitempty"`
	Availability    string              `bson:"availability" json:"availability"`
	FreelancerStats `bson:",inline"`
	CreatedAt       time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updated_at"`
}

func (p *FreelancerProfile) Normalize() {
	if len(p.Languages) == 0 {
		p.Languages = []string{"English"}
	}
	if p.Availability == "" {
		p.Availability = AvailabilityAvailable
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
}

// Summary returns the fields shown alongside a proposal.
func (p *FreelancerProfile) Summary() *FreelancerSummary {
	return &FreelancerSummary{
		Title:             p.Title,
		Rating:            p.Rating,
		CompletedProjects: p.CompletedProjects,
		SuccessRate:       p.SuccessRate,
		HourlyRate:        p.HourlyRate,
		Skills:            p.Skills,
	}
}

// FreelancerProfileInput carries the editable fields of a profile.
type FreelancerProfileInput struct {
	Title           string              `json:"title"`
	Bio             string              `json:"bio"`
	Skills          []string            `json:"skills"`
	Categories      []string            `json:"categories"`
	ExperienceYears int                 `json:"experience_years"`
	HourlyRate      float64             `json:"hourly_rate"`
	PortfolioURL    string              `json:"portfolio_url"`
	Portfolio       []PortfolioItem     `json:"portfolio"`
	Education       []EducationItem     `json:"education"`
	Certifications  []CertificationItem `json:"certifications"`
	Languages       []string            `json:"languages"`
	Location        string              `json:"location"`
	Website         string              `json:"website"`
	Availability    string              `json:"availability"`
}

// FreelancerFilter narrows profile searches. Zero values are ignored.
type FreelancerFilter struct {
	Category string
	Skills   []string
	MinRate  float64
	MaxRate  float64
	Limit    int
}

// StatsDelta is applied when a freelancer's project completes.
type StatsDelta struct {
	CompletedProjects int
	TotalJobs         int
	TotalEarnings     float64
}
