package posting

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recruiting-console/internal/shared/server/middleware"
	"recruiting-console/internal/shared/server/respond"
	"recruiting-console/internal/talenthub"
)

const maxAttachmentBytes = 10 << 20

// Handler wires HTTP handlers to the posting workflow.
type Handler struct {
	Flow *Workflow
}

// NewHandler constructs a Handler.
func NewHandler(flow *Workflow) *Handler {
	return &Handler{Flow: flow}
}

// RegisterRoutes attaches posting routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/posting", h.get)
	rg.POST("/posting/attachment", h.attach)
	rg.POST("/posting/upload", h.upload)
	rg.POST("/posting/autofill", h.autofill)
	rg.PUT("/posting/fields", h.setFields)
	rg.POST("/posting/publish", h.publish)
	rg.POST("/posting/save", h.save)
	rg.DELETE("/posting", h.cancel)
	rg.GET("/posting/jobs", h.listJobs)
}

func (h *Handler) get(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	respond.OK(c, toDraftResponse(h.Flow.Get(owner)))
}

func (h *Handler) attach(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, CodeValidation, "file is required", nil)
		return
	}
	if fileHeader.Size > maxAttachmentBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, CodeValidation, "file exceeds the 10MB limit", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, CodeValidation, "failed to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes+1))
	if err != nil || len(data) > maxAttachmentBytes {
		respond.Error(c, http.StatusBadRequest, CodeValidation, "failed to read file", nil)
		return
	}

	draft := h.Flow.Attach(owner, fileHeader.Filename, data)
	respond.OK(c, toDraftResponse(draft))
}

func (h *Handler) upload(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	draft, err := h.Flow.Upload(c.Request.Context(), owner)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoAttachment):
			respond.Error(c, http.StatusUnprocessableEntity, CodeValidation, "attach a file before uploading", nil)
		default:
			respond.Error(c, http.StatusBadGateway, CodeUpstream, "upload failed, the attachment is kept for retry", nil)
		}
		return
	}
	respond.OK(c, toDraftResponse(draft))
}

func (h *Handler) autofill(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	draft, err := h.Flow.AutoFill(c.Request.Context(), owner)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoReference):
			respond.Error(c, http.StatusUnprocessableEntity, CodeValidation, "upload the job description first", nil)
		default:
			respond.Error(c, http.StatusBadGateway, CodeUpstream, "auto-fill failed, the upload is kept for retry", nil)
		}
		return
	}
	respond.OK(c, toDraftResponse(draft))
}

func (h *Handler) setFields(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	var fields talenthub.JobFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		respond.Error(c, http.StatusBadRequest, CodeValidation, "invalid fields payload", nil)
		return
	}
	respond.OK(c, toDraftResponse(h.Flow.SetFields(owner, fields)))
}

func (h *Handler) publish(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	draft, err := h.Flow.Publish(c.Request.Context(), owner)
	if err != nil {
		switch {
		case errors.Is(err, ErrPublishInFlight):
			respond.Error(c, http.StatusConflict, CodeConflict, "a publish is already in flight", nil)
		case errors.Is(err, ErrAlreadyPublished):
			respond.Error(c, http.StatusConflict, CodeConflict, "already published, save edits instead", nil)
		case errors.Is(err, ErrNothingToPublish):
			respond.Error(c, http.StatusUnprocessableEntity, CodeValidation, "nothing to publish", nil)
		case errors.Is(err, ErrTitleRequired):
			respond.Error(c, http.StatusUnprocessableEntity, CodeValidation, "a title is required", nil)
		default:
			respond.Error(c, http.StatusBadGateway, CodeUpstream, "publish failed", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, toDraftResponse(draft))
}

func (h *Handler) save(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	draft, err := h.Flow.Save(c.Request.Context(), owner)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotPublished):
			respond.Error(c, http.StatusUnprocessableEntity, CodeValidation, "publish before saving edits", nil)
		default:
			respond.Error(c, http.StatusBadGateway, CodeUpstream, "save failed", nil)
		}
		return
	}
	respond.OK(c, toDraftResponse(draft))
}

func (h *Handler) cancel(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	h.Flow.Cancel(owner)
	respond.OK(c, gin.H{"cancelled": true})
}

func (h *Handler) listJobs(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	postings, err := h.Flow.List(c.Request.Context(), owner, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list postings", nil)
		return
	}
	respond.OK(c, postings)
}

func toDraftResponse(d Draft) gin.H {
	resp := gin.H{
		"phase":         d.Phase,
		"hasAttachment": len(d.FileData) > 0,
		"fields":        d.Fields,
	}
	if d.FileName != "" {
		resp["fileName"] = d.FileName
	}
	if d.ReferenceID != "" {
		resp["referenceId"] = d.ReferenceID
	}
	if d.Published() {
		resp["publishedJobId"] = d.PublishedJobID
		resp["publicToken"] = d.PublicToken
		resp["publicLink"] = d.PublicLink
	}
	return resp
}
