package listing

import (
	"sort"
	"strings"

	"recruiting-console/internal/inventory"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Sort orders accepted by the projection.
const (
	SortName       = "name"
	SortExperience = "experience"
	SortUploaded   = "uploaded"
)

// Query describes one view over the document mirror. The projection owns
// visibility only; selection state is untouched by filtering or paging.
type Query struct {
	Search    string
	Category  string
	NotesOnly bool
	Sort      string
	Page      int
	PageSize  int
}

// Page is the paginated slice handed to the caller.
type Page struct {
	Items      []inventory.Summary `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}

// Apply filters, sorts and pages the mirror snapshot. Pure: the input slice
// is never mutated, out-of-range pages clamp to the nearest valid page.
func Apply(docs []inventory.Summary, q Query) Page {
	filtered := make([]inventory.Summary, 0, len(docs))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, doc := range docs {
		if search != "" && !strings.Contains(strings.ToLower(doc.DisplayName), search) {
			continue
		}
		if q.Category != "" && doc.Category != q.Category {
			continue
		}
		if q.NotesOnly && doc.NotesCount == 0 {
			continue
		}
		filtered = append(filtered, doc)
	}

	sortDocs(filtered, q.Sort)

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      filtered[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func sortDocs(docs []inventory.Summary, order string) {
	switch order {
	case SortExperience:
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].ExperienceYears > docs[j].ExperienceYears
		})
	case SortUploaded:
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].UploadedAt.After(docs[j].UploadedAt)
		})
	case SortName:
		fallthrough
	default:
		sort.SliceStable(docs, func(i, j int) bool {
			return strings.ToLower(docs[i].DisplayName) < strings.ToLower(docs[j].DisplayName)
		})
	}
}
