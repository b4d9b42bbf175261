package scoring

import (
	"strings"

	"go-jobmatch-backend/internal/domain"
)

// Organisation names only count toward the profile when they look technical.
var techOrgHints = []string{
	"tech", "software", "digital", "data", "cloud", "labs", "systems",
	"solutions", "ai", "analytics", "dev", "google", "microsoft", "amazon",
}

// ProfileTokens flattens a candidate profile into one token bag. Structured
// skills are repeated skillWeight times so they outweigh prose.
func ProfileTokens(t *Tokenizer, p *domain.CandidateProfile, skillWeight int) []string {
	if p == nil {
		return []string{}
	}
	if skillWeight < 1 {
		skillWeight = 1
	}

	tokens := []string{}
	skills := t.NormalizeKeywords(p.Skills.All())
	for i := 0; i < skillWeight; i++ {
		tokens = append(tokens, skills...)
	}

	s := p.Sections
	for _, text := range []string{s.Experience, s.Projects, s.Education, s.Objective, s.Skills} {
		tokens = append(tokens, t.Normalize(text)...)
	}
	tokens = append(tokens, t.NormalizeKeywords(p.ExperienceIndicators)...)
	tokens = append(tokens, t.NormalizeKeywords(p.EducationInfo)...)
	tokens = append(tokens, t.NormalizeKeywords(technicalOrgs(p.Entities.Organizations))...)

	if strings.TrimSpace(p.ContactInfo.GitHub) != "" {
		tokens = append(tokens, t.Normalize("github")...)
	}
	if strings.TrimSpace(p.ContactInfo.LinkedIn) != "" {
		tokens = append(tokens, t.Normalize("linkedin")...)
	}
	return tokens
}

func technicalOrgs(orgs []string) []string {
	var out []string
	for _, org := range orgs {
		lower := strings.ToLower(org)
		for _, hint := range techOrgHints {
			if strings.Contains(lower, hint) {
				out = append(out, org)
				break
			}
		}
	}
	return out
}
