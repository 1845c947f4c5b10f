package inventory

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"recruiting-console/internal/shared/server/middleware"
	"recruiting-console/internal/shared/server/respond"
	"recruiting-console/internal/talenthub"
)

// Handler wires HTTP handlers to the inventory service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches inventory routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:kind/refresh", h.refresh)
	rg.DELETE("/documents/:kind/:id", h.deleteOne)
	rg.DELETE("/documents/:kind", middleware.RequireAdmin(), h.deleteAll)
	rg.POST("/documents/:kind/:id/reprocess", h.reprocess)
	rg.GET("/categories", h.categories)
	rg.GET("/categories/:name/documents", h.categoryDocuments)
}

func (h *Handler) refresh(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	kind := talenthub.Kind(c.Param("kind"))

	docs, err := h.Svc.Refresh(c.Request.Context(), owner, kind)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKind):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown document kind", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upstream_error", "failed to refresh documents", nil)
		}
		return
	}

	respond.OK(c, gin.H{"kind": kind, "count": len(docs)})
}

func (h *Handler) deleteOne(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	kind := talenthub.Kind(c.Param("kind"))
	id := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), owner, kind, id); err != nil {
		switch {
		case errors.Is(err, ErrUnknownKind):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown document kind", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upstream_error", "failed to delete document", nil)
		}
		return
	}

	respond.OK(c, gin.H{"deleted": id})
}

func (h *Handler) deleteAll(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	kind := talenthub.Kind(c.Param("kind"))

	deleted, err := h.Svc.DeleteAll(c.Request.Context(), owner, kind)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKind):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown document kind", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upstream_error", "failed to delete documents", gin.H{"deleted": deleted})
		}
		return
	}

	respond.OK(c, gin.H{"deleted": deleted})
}

func (h *Handler) reprocess(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	kind := talenthub.Kind(c.Param("kind"))
	id := c.Param("id")

	if err := h.Svc.Reprocess(c.Request.Context(), owner, kind, id); err != nil {
		switch {
		case errors.Is(err, ErrUnknownKind):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown document kind", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upstream_error", "failed to reprocess document", nil)
		}
		return
	}

	respond.OK(c, gin.H{"reprocessed": id})
}

func (h *Handler) categories(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	index := BuildIndex(h.Svc.Store.Snapshot(owner, talenthub.KindCV))

	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := make([]gin.H, 0, len(names))
	for _, name := range names {
		resp = append(resp, gin.H{
			"category": name,
			"count":    index[name].Count,
		})
	}
	respond.OK(c, resp)
}

func (h *Handler) categoryDocuments(c *gin.Context) {
	docs, err := h.Svc.CategoryDocuments(c.Request.Context(), c.Param("name"))
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "upstream_error", "failed to list category documents", nil)
		return
	}
	respond.OK(c, toDocumentList(docs))
}

func toDocumentList(docs []Summary) []gin.H {
	resp := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, gin.H{
			"id":                    doc.ID,
			"kind":                  doc.Kind,
			"displayName":           doc.DisplayName,
			"experienceYears":       doc.ExperienceYears,
			"skillsCount":           doc.SkillsCount,
			"responsibilitiesCount": doc.ResponsibilitiesCount,
			"category":              doc.Category,
			"notesCount":            doc.NotesCount,
			"uploadedAt":            doc.UploadedAt,
		})
	}
	return resp
}
