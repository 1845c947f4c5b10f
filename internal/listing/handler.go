package listing

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recruiting-console/internal/inventory"
	"recruiting-console/internal/selection"
	"recruiting-console/internal/shared/server/middleware"
	"recruiting-console/internal/shared/server/respond"
	"recruiting-console/internal/talenthub"
)

// Handler serves the filtered, paginated document views over the mirror.
// Selection flags are attached per row so a page flip never loses state.
type Handler struct {
	Inventory *inventory.Store
	Selection *selection.Store
}

// NewHandler constructs a Handler.
func NewHandler(inv *inventory.Store, sel *selection.Store) *Handler {
	return &Handler{Inventory: inv, Selection: sel}
}

// RegisterRoutes attaches listing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
}

func (h *Handler) list(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	kind := talenthub.Kind(c.DefaultQuery("kind", string(talenthub.KindCV)))
	if !kind.Valid() {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown document kind", nil)
		return
	}

	q := Query{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		NotesOnly: c.Query("notesOnly") == "true",
		Sort:      c.Query("sort"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "pageSize", 0),
	}

	page := Apply(h.Inventory.Snapshot(owner, kind), q)

	items := make([]gin.H, 0, len(page.Items))
	for _, doc := range page.Items {
		selected := false
		switch kind {
		case talenthub.KindCV:
			selected = h.Selection.IsSelected(owner, doc.ID)
		case talenthub.KindJD:
			_, jdID := h.Selection.Snapshot(owner)
			selected = jdID == doc.ID
		}
		items = append(items, gin.H{
			"id":                    doc.ID,
			"kind":                  doc.Kind,
			"displayName":           doc.DisplayName,
			"experienceYears":       doc.ExperienceYears,
			"skillsCount":           doc.SkillsCount,
			"responsibilitiesCount": doc.ResponsibilitiesCount,
			"category":              doc.Category,
			"notesCount":            doc.NotesCount,
			"uploadedAt":            doc.UploadedAt,
			"selected":              selected,
		})
	}

	respond.OK(c, gin.H{
		"items":      items,
		"total":      page.Total,
		"page":       page.Page,
		"pageSize":   page.PageSize,
		"totalPages": page.TotalPages,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
