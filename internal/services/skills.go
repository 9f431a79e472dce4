package services

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
)

// DefaultSkillLabels are the entity categories treated as candidate skills.
// Company and place names pass this filter too; matching relies on the exact
// entity text so the list is kept as is.
var DefaultSkillLabels = []string{"ORG", "GPE", "SKILL"}

// Entity is a recognized text span and its category.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// EntityRecognizer runs named-entity recognition over plain text.
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, text string) ([]Entity, error)
}

type SkillExtractor interface {
	ExtractSkills(ctx context.Context, text string) ([]string, error)
}

type skillExtractor struct {
	recognizer EntityRecognizer
	labels     map[string]struct{}
}

// NewSkillExtractor filters recognized entities to labels, or to
// DefaultSkillLabels when none are given.
func NewSkillExtractor(recognizer EntityRecognizer, labels ...string) SkillExtractor {
	if len(labels) == 0 {
		labels = DefaultSkillLabels
	}
	allowed := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		allowed[l] = struct{}{}
	}
	return &skillExtractor{recognizer: recognizer, labels: allowed}
}

// ExtractSkills implements SkillExtractor.
//
// Entities are deduplicated by exact text; no trimming or case folding happens
// here. The result keeps first-seen order.
func (s *skillExtractor) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	entities, err := s.recognizer.RecognizeEntities(ctx, text)
	if err != nil {
		return nil, asModelError("recognize_entities", fmt.Errorf("failed to recognize entities: %w", err))
	}

	seen := make(map[string]struct{}, len(entities))
	skills := make([]string, 0, len(entities))
	for _, ent := range entities {
		if _, ok := s.labels[ent.Label]; !ok {
			continue
		}
		if _, dup := seen[ent.Text]; dup {
			continue
		}
		seen[ent.Text] = struct{}{}
		skills = append(skills, ent.Text)
	}

	return skills, nil
}

// MatchSkills partitions required into skills present in extracted and skills
// absent from it. Comparison uses Unicode case folding; both outputs keep the
// order and casing of required.
func MatchSkills(extracted, required []string) (matched, missing []string) {
	fold := cases.Fold()

	present := make(map[string]struct{}, len(extracted))
	for _, skill := range extracted {
		present[fold.String(skill)] = struct{}{}
	}

	matched = make([]string, 0, len(required))
	missing = make([]string, 0, len(required))
	for _, skill := range required {
		if _, ok := present[fold.String(skill)]; ok {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	return matched, missing
}
