package services

import (
	"fmt"
	"strings"
)

// EntityLabels is the label set the recognizer is asked to use.
var EntityLabels = []string{
	"PERSON", "NORP", "FAC", "ORG", "GPE", "LOC", "PRODUCT", "EVENT",
	"WORK_OF_ART", "LAW", "LANGUAGE", "DATE", "TIME", "PERCENT", "MONEY",
	"QUANTITY", "ORDINAL", "CARDINAL", "SKILL",
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildEntityRecognitionPrompt creates prompt for named-entity recognition
func (pb *PromptBuilder) BuildEntityRecognitionPrompt(text string) string {
	return fmt.Sprintf(`You are a named-entity recognizer. Tag every named entity in the TEXT below.

ALLOWED LABELS:
%s

RULES:
1. "text" must be copied exactly as it appears in TEXT, same casing and spacing.
2. Use SKILL only for technical or professional skills (e.g. programming languages, tools, methodologies).
3. Use ORG for companies, institutions and organizations; GPE for countries, cities and states.
4. List an entity once per occurrence, in order of appearance.
5. Do not invent entities that are not in TEXT.

Return your response in the following JSON format:
{
  "entities": [
    {"text": "<exact span>", "label": "<one of the allowed labels>"}
  ]
}

TEXT:
%s`,
		strings.Join(EntityLabels, ", "), text)
}
