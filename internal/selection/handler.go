package selection

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruiting-console/internal/inventory"
	"recruiting-console/internal/shared/server/middleware"
	"recruiting-console/internal/shared/server/respond"
	"recruiting-console/internal/talenthub"
)

// Handler wires HTTP handlers to the selection store. Category operations
// rebuild the index from the inventory mirror on every call.
type Handler struct {
	Store     *Store
	Inventory *inventory.Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store, inv *inventory.Store) *Handler {
	return &Handler{Store: store, Inventory: inv}
}

// RegisterRoutes attaches selection routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/selection", h.get)
	rg.POST("/selection/cvs/:id", h.selectCV)
	rg.DELETE("/selection/cvs/:id", h.deselectCV)
	rg.POST("/selection/jd/:id", h.selectJD)
	rg.POST("/selection/categories/:name/toggle", h.toggleCategory)
	rg.POST("/selection/categories/select-all", h.selectAllCategories)
	rg.POST("/selection/categories/deselect-all", h.deselectAllCategories)
	rg.DELETE("/selection", h.clear)
}

func (h *Handler) get(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	h.respondSelection(c, owner)
}

func (h *Handler) selectCV(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	id := c.Param("id")

	if _, ok := h.Inventory.IDs(owner, talenthub.KindCV)[id]; !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "cv is not in the inventory", nil)
		return
	}
	h.Store.SelectCV(owner, id)
	h.respondSelection(c, owner)
}

func (h *Handler) deselectCV(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	h.Store.DeselectCV(owner, c.Param("id"))
	h.respondSelection(c, owner)
}

func (h *Handler) selectJD(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	id := c.Param("id")

	if _, ok := h.Inventory.IDs(owner, talenthub.KindJD)[id]; !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "jd is not in the inventory", nil)
		return
	}
	h.Store.SelectJD(owner, id)
	h.respondSelection(c, owner)
}

func (h *Handler) toggleCategory(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	name := c.Param("name")

	index := h.index(owner)
	bucket, ok := index[name]
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown category", nil)
		return
	}
	h.Store.ToggleCategory(owner, bucket)
	h.respondSelection(c, owner)
}

func (h *Handler) selectAllCategories(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	h.Store.SelectAllCategories(owner, h.index(owner))
	h.respondSelection(c, owner)
}

func (h *Handler) deselectAllCategories(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	h.Store.DeselectAllCategories(owner, h.index(owner))
	h.respondSelection(c, owner)
}

func (h *Handler) clear(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	h.Store.Clear(owner)
	h.respondSelection(c, owner)
}

func (h *Handler) index(owner string) map[string]inventory.CategoryBucket {
	return inventory.BuildIndex(h.Inventory.Snapshot(owner, talenthub.KindCV))
}

func (h *Handler) respondSelection(c *gin.Context, owner string) {
	cvIDs, jdID := h.Store.Snapshot(owner)
	respond.OK(c, gin.H{
		"cvIds":              cvIDs,
		"jdId":               jdID,
		"selectedCategories": h.Store.SelectedCategories(owner, h.index(owner)),
	})
}
