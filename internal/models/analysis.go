package models

// DefaultExperienceLevel is used when the caller does not supply one.
const DefaultExperienceLevel = "mid"

type AnalyzeRequest struct {
	Document        Document
	JobDescription  string
	ExperienceLevel string
	RequiredSkills  []string
}

// AnalysisReport is built once per request and owned by the caller.
type AnalysisReport struct {
	SimilarityScore float64  `json:"similarity_score"`
	ExtractedSkills []string `json:"extracted_skills"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Insights        []string `json:"insights"`
	ResumeText      string   `json:"resume_text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Code  int    `json:"code"`
}
