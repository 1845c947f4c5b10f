package talenthub

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// defaultCategory is applied when no payload shape carries a category.
const defaultCategory = "General"

// rawDocument tolerates the hub's historical payload shapes: flat fields,
// nested candidate objects, and structured_info blocks may each carry
// overlapping data depending on when the document was ingested.
type rawDocument struct {
	ID                    string  `mapstructure:"id"`
	Name                  string  `mapstructure:"name"`
	Title                 string  `mapstructure:"title"`
	DisplayName           string  `mapstructure:"display_name"`
	ExperienceYears       float64 `mapstructure:"experience_years"`
	Skills                []any   `mapstructure:"skills"`
	SkillsCount           int     `mapstructure:"skills_count"`
	Responsibilities      []any   `mapstructure:"responsibilities"`
	ResponsibilitiesCount int     `mapstructure:"responsibilities_count"`
	Category              string  `mapstructure:"category"`
	NotesCount            int     `mapstructure:"notes_count"`
	UploadDate            string  `mapstructure:"upload_date"`

	Candidate struct {
		Name            string  `mapstructure:"name"`
		Category        string  `mapstructure:"category"`
		ExperienceYears float64 `mapstructure:"experience_years"`
	} `mapstructure:"candidate"`

	StructuredInfo struct {
		Category         string  `mapstructure:"category"`
		ExperienceYears  float64 `mapstructure:"experience_years"`
		Skills           []any   `mapstructure:"skills"`
		Responsibilities []any   `mapstructure:"responsibilities"`
	} `mapstructure:"structured_info"`
}

// DecodeDocument turns one raw hub payload into a Document. Category and
// name precedence is applied here and nowhere else.
func DecodeDocument(kind Kind, payload map[string]any) (Document, error) {
	var raw rawDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Document{}, err
	}
	if err := decoder.Decode(payload); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	if strings.TrimSpace(raw.ID) == "" {
		return Document{}, fmt.Errorf("decode document: missing id")
	}

	doc := Document{
		ID:                    raw.ID,
		Kind:                  kind,
		DisplayName:           resolveDisplayName(raw),
		ExperienceYears:       resolveExperience(raw),
		SkillsCount:           resolveCount(raw.Skills, raw.SkillsCount, raw.StructuredInfo.Skills),
		ResponsibilitiesCount: resolveCount(raw.Responsibilities, raw.ResponsibilitiesCount, raw.StructuredInfo.Responsibilities),
		Category:              ResolveCategory(raw.Candidate.Category, raw.StructuredInfo.Category, raw.Category),
		NotesCount:            raw.NotesCount,
		UploadedAt:            parseUploadDate(raw.UploadDate),
	}
	return doc, nil
}

// ResolveCategory applies the canonical precedence: candidate field, then
// structured_info field, then the flat field, then the default. Every place
// a category is derived must go through this function.
func ResolveCategory(candidate, structured, flat string) string {
	for _, v := range []string{candidate, structured, flat} {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return defaultCategory
}

func resolveDisplayName(raw rawDocument) string {
	for _, v := range []string{raw.Candidate.Name, raw.Name, raw.Title, raw.DisplayName} {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return raw.ID
}

func resolveExperience(raw rawDocument) float64 {
	if raw.Candidate.ExperienceYears > 0 {
		return raw.Candidate.ExperienceYears
	}
	if raw.StructuredInfo.ExperienceYears > 0 {
		return raw.StructuredInfo.ExperienceYears
	}
	return raw.ExperienceYears
}

func resolveCount(flat []any, flatCount int, structured []any) int {
	if len(flat) > 0 {
		return len(flat)
	}
	if flatCount > 0 {
		return flatCount
	}
	return len(structured)
}

func parseUploadDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
