package services

const (
	InsightStrongMatch    = "Strong match based on required skills."
	InsightAddMoreSkills  = "You might want to add more skills to match the job description."
	InsightSeniorEmphasis = "Emphasize leadership and project management experience."
	strongMatchThreshold  = 0.7
	seniorExperienceLevel = "senior"
)

// GenerateInsights returns the match-ratio advisory followed by the
// experience-level advisory, if any. The ratio is undefined when no skills were
// required, which is reported as a DivisionUndefined error.
func GenerateInsights(experienceLevel string, matched, missing []string) ([]string, error) {
	total := len(matched) + len(missing)
	if total == 0 {
		return nil, NewDivisionUndefinedError("generate_insights")
	}

	var insights []string
	ratio := float64(len(matched)) / float64(total)
	if ratio > strongMatchThreshold {
		insights = append(insights, InsightStrongMatch)
	} else {
		insights = append(insights, InsightAddMoreSkills)
	}

	if experienceLevel == seniorExperienceLevel {
		insights = append(insights, InsightSeniorEmphasis)
	}

	return insights, nil
}
