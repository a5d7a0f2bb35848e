package requests

import (
	"strings"
	"time"

	"marketplace/models"
	"marketplace/utils"
)

const defaultDeadline = 30 * 24 * time.Hour

var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseDeadline accepts RFC3339 or a plain date. An empty value means
// 30 days from now.
func parseDeadline(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.Add(defaultDeadline), nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, utils.Validation("deadline", "deadline must be an RFC3339 timestamp or YYYY-MM-DD date")
}

// normalizeSkills trims, drops blanks and removes duplicates, keeping order.
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func validateInput(in models.ServiceRequestInput, now time.Time) (*models.ServiceRequest, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, utils.Validation("title", "title is required")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, utils.Validation("description", "description is required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, utils.Validation("category", "category is required")
	}
	if in.Budget <= 0 {
		return nil, utils.Validation("budget", "budget must be greater than 0")
	}

	level := strings.ToLower(strings.TrimSpace(in.ExperienceLevel))
	if level == "" {
		level = models.ExperienceIntermediate
	}
	if !models.ValidExperienceLevel(level) {
		return nil, utils.Validation("experience_level", "experience_level must be beginner, intermediate or expert")
	}

	deadline, err := parseDeadline(in.Deadline, now)
	if err != nil {
		return nil, err
	}

	return &models.ServiceRequest{
		Title:           title,
		Description:     description,
		Category:        category,
		Budget:          in.Budget,
		Deadline:        deadline,
		SkillsRequired:  normalizeSkills(in.SkillsRequired),
		ExperienceLevel: level,
	}, nil
}
