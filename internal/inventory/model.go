package inventory

import (
	"time"

	"recruiting-console/internal/talenthub"
)

// Summary is the console's denormalized view of one hub document.
type Summary struct {
	ID                    string
	Kind                  talenthub.Kind
	DisplayName           string
	ExperienceYears       float64
	SkillsCount           int
	ResponsibilitiesCount int
	Category              string
	NotesCount            int
	UploadedAt            time.Time
}

// FromHub maps a decoded hub document into a Summary.
func FromHub(doc talenthub.Document) Summary {
	return Summary{
		ID:                    doc.ID,
		Kind:                  doc.Kind,
		DisplayName:           doc.DisplayName,
		ExperienceYears:       doc.ExperienceYears,
		SkillsCount:           doc.SkillsCount,
		ResponsibilitiesCount: doc.ResponsibilitiesCount,
		Category:              doc.Category,
		NotesCount:            doc.NotesCount,
		UploadedAt:            doc.UploadedAt,
	}
}
