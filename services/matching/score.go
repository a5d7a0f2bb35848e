package matching

import "marketplace/models"

// Sub-score weights. They sum to 100.
const (
	SkillWeight       = 40
	ExperienceWeight  = 20
	BudgetWeight      = 15
	TrackRecordWeight = 15
	CategoryWeight    = 10

	MaxScore = 100

	// MatchThreshold is the minimum score for a new-opportunity notification.
	MatchThreshold = 60
)

// Score rates how well a freelancer profile fits a service request, 0 to 100.
// It is deterministic and returns 0 when either side is nil.
func Score(p *models.FreelancerProfile, r *models.ServiceRequest) int {
	if p == nil || r == nil {
		return 0
	}
	total := capAt(skillScore(p, r), SkillWeight) +
		capAt(experienceScore(p, r), ExperienceWeight) +
		capAt(budgetScore(p, r), BudgetWeight) +
		capAt(trackRecordScore(p), TrackRecordWeight) +
		capAt(categoryScore(p, r), CategoryWeight)
	return capAt(total, MaxScore)
}

// skillScore is the share of required skills the profile lists, scaled to
// the weight and truncated. Skills compare as sets.
func skillScore(p *models.FreelancerProfile, r *models.ServiceRequest) int {
	required := toSet(r.SkillsRequired)
	if len(required) == 0 {
		return 0
	}
	have := toSet(p.Skills)
	overlap := 0
	for s := range required {
		if _, ok := have[s]; ok {
			overlap++
		}
	}
	return overlap * SkillWeight / len(required)
}

func experienceScore(p *models.FreelancerProfile, r *models.ServiceRequest) int {
	ord := models.ExperienceOrdinal(r.ExperienceLevel)
	switch {
	case p.ExperienceYears >= 2*ord:
		return ExperienceWeight
	case p.ExperienceYears >= ord:
		return ExperienceWeight / 2
	}
	return 0
}

// budgetScore favours requests that buy 10 to 100 hours at the profile's rate.
func budgetScore(p *models.FreelancerProfile, r *models.ServiceRequest) int {
	if p.HourlyRate <= 0 || r.Budget <= 0 {
		return 0
	}
	hours := r.Budget / p.HourlyRate
	switch {
	case hours >= 10 && hours <= 100:
		return BudgetWeight
	case hours > 5:
		return 8
	}
	return 0
}

func trackRecordScore(p *models.FreelancerProfile) int {
	switch rate := p.SuccessRate; {
	case rate >= 90:
		return TrackRecordWeight
	case rate >= 70:
		return 10
	case rate >= 50:
		return 5
	}
	return 0
}

func categoryScore(p *models.FreelancerProfile, r *models.ServiceRequest) int {
	if r.Category == "" {
		return 0
	}
	for _, c := range p.Categories {
		if c == r.Category {
			return CategoryWeight
		}
	}
	return 0
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func capAt(v, max int) int {
	if v > max {
		return max
	}
	if v < 0 {
		return 0
	}
	return v
}
