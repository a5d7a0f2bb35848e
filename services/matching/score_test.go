package matching

import (
	"math/rand"
	"testing"

	"marketplace/models"
)

func fullMatch() (*models.FreelancerProfile, *models.ServiceRequest) {
	req := &models.ServiceRequest{
		ID:              "r1",
		Category:        "web",
		Budget:          5000,
		SkillsRequired:  []string{"python", "react"},
		ExperienceLevel: models.ExperienceIntermediate,
	}
	profile := &models.FreelancerProfile{
		UserID:          "f1",
		Skills:          []string{"python", "react", "go"},
		Categories:      []string{"design", "web"},
		ExperienceYears: 3,
		HourlyRate:      50,
		FreelancerStats: models.FreelancerStats{SuccessRate: 95},
	}
	return profile, req
}

func TestScore_EndToEndFullMatch(t *testing.T) {
	p, r := fullMatch()
	if got := Score(p, r); got != 100 {
		t.Fatalf("Score = %d; want 100", got)
	}
}

func TestScore_NilInputs(t *testing.T) {
	p, r := fullMatch()
	if Score(nil, r) != 0 || Score(p, nil) != 0 || Score(nil, nil) != 0 {
		t.Fatalf("nil input should score 0")
	}
}

func TestSkillScore(t *testing.T) {
	tests := []struct {
		name     string
		have     []string
		required []string
		want     int
	}{
		{"no required skills", []string{"go"}, nil, 0},
		{"empty required skills", []string{"go"}, []string{}, 0},
		{"full overlap", []string{"go", "sql"}, []string{"go"}, 40},
		{"one of three truncates", []string{"go"}, []string{"go", "sql", "k8s"}, 13},
		{"two of three truncates", []string{"go", "sql"}, []string{"go", "sql", "k8s"}, 26},
		{"duplicates count once", []string{"go"}, []string{"go", "go", "sql"}, 20},
		{"case sensitive", []string{"Go"}, []string{"go"}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &models.FreelancerProfile{Skills: tc.have}
			r := &models.ServiceRequest{SkillsRequired: tc.required}
			if got := skillScore(p, r); got != tc.want {
				t.Fatalf("skillScore = %d; want %d", got, tc.want)
			}
		})
	}
}

func TestExperienceScore(t *testing.T) {
	tests := []struct {
		level string
		years int
		want  int
	}{
		{models.ExperienceBeginner, 0, 20},
		{models.ExperienceIntermediate, 2, 20},
		{models.ExperienceIntermediate, 1, 10},
		{models.ExperienceIntermediate, 0, 0},
		{models.ExperienceExpert, 4, 20},
		{models.ExperienceExpert, 3, 10},
		{models.ExperienceExpert, 1, 0},
		{"guru", 1, 10},
		{"", 2, 20},
	}
	for _, tc := range tests {
		p := &models.FreelancerProfile{ExperienceYears: tc.years}
		r := &models.ServiceRequest{ExperienceLevel: tc.level}
		if got := experienceScore(p, r); got != tc.want {
			t.Errorf("experienceScore(%q, %d) = %d; want %d", tc.level, tc.years, got, tc.want)
		}
	}
}

func TestBudgetScore(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		budget float64
		want   int
	}{
		{"lower band edge", 100, 1000, 15},
		{"upper band edge", 10, 1000, 15},
		{"above band", 10, 1010, 8},
		{"between 5 and 10 hours", 100, 600, 8},
		{"exactly 5 hours", 100, 500, 0},
		{"no rate", 0, 1000, 0},
		{"no budget", 50, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &models.FreelancerProfile{HourlyRate: tc.rate}
			r := &models.ServiceRequest{Budget: tc.budget}
			if got := budgetScore(p, r); got != tc.want {
				t.Fatalf("budgetScore = %d; want %d", got, tc.want)
			}
		})
	}
}

func TestTrackRecordAndCategory(t *testing.T) {
	rates := map[float64]int{100: 15, 90: 15, 89.9: 10, 70: 10, 50: 5, 49: 0, 0: 0}
	for rate, want := range rates {
		p := &models.FreelancerProfile{FreelancerStats: models.FreelancerStats{SuccessRate: rate}}
		if got := trackRecordScore(p); got != want {
			t.Errorf("trackRecordScore(%v) = %d; want %d", rate, got, want)
		}
	}

	p := &models.FreelancerProfile{Categories: []string{"web"}}
	if categoryScore(p, &models.ServiceRequest{Category: "web"}) != 10 {
		t.Errorf("matching category should score 10")
	}
	if categoryScore(p, &models.ServiceRequest{Category: "data"}) != 0 {
		t.Errorf("other category should score 0")
	}
	if categoryScore(&models.FreelancerProfile{}, &models.ServiceRequest{}) != 0 {
		t.Errorf("empty category should score 0")
	}
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	skills := []string{"go", "python", "react", "sql", "k8s"}
	levels := []string{models.ExperienceBeginner, models.ExperienceIntermediate, models.ExperienceExpert, "other"}
	pick := func() []string {
		var out []string
		for _, s := range skills {
			if rng.Intn(2) == 0 {
				out = append(out, s)
			}
		}
		return out
	}

	for i := 0; i < 2000; i++ {
		p := &models.FreelancerProfile{
			Skills:          pick(),
			Categories:      pick(),
			ExperienceYears: rng.Intn(30) - 5,
			HourlyRate:      rng.Float64()*400 - 50,
			FreelancerStats: models.FreelancerStats{SuccessRate: rng.Float64() * 120},
		}
		r := &models.ServiceRequest{
			SkillsRequired:  pick(),
			Category:        skills[rng.Intn(len(skills))],
			Budget:          rng.Float64()*20000 - 100,
			ExperienceLevel: levels[rng.Intn(len(levels))],
		}
		got := Score(p, r)
		if got < 0 || got > MaxScore {
			t.Fatalf("Score out of bounds: %d for %+v / %+v", got, p, r)
		}
		if again := Score(p, r); again != got {
			t.Fatalf("Score not deterministic: %d then %d", got, again)
		}
	}
}
