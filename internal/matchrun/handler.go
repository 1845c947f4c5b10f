package matchrun

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recruiting-console/internal/export"
	"recruiting-console/internal/shared/server/middleware"
	"recruiting-console/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the orchestrator.
type Handler struct {
	Orch *Orchestrator
}

// NewHandler constructs a Handler.
func NewHandler(orch *Orchestrator) *Handler {
	return &Handler{Orch: orch}
}

// RegisterRoutes attaches match routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/match", h.start)
	rg.GET("/match/current", h.current)
	rg.DELETE("/match/current", h.dismiss)
	rg.GET("/match/runs", h.list)
	rg.GET("/match/runs/:id", h.get)
	rg.GET("/match/runs/:id/report", h.report)
}

func (h *Handler) start(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	run, err := h.Orch.Start(c.Request.Context(), owner)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoCVsSelected):
			respond.Error(c, http.StatusUnprocessableEntity, CodeValidation, "select at least one cv before matching", nil)
		case errors.Is(err, ErrNoJDSelected):
			respond.Error(c, http.StatusUnprocessableEntity, CodeValidation, "select a job description before matching", nil)
		case errors.Is(err, ErrRunInFlight):
			respond.Error(c, http.StatusConflict, CodeConflict, "a match run is already in flight", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start match run", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, toRunResponse(run))
}

func (h *Handler) current(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	if !h.Orch.limiter.Allow(owner) {
		c.Header("Retry-After", strconv.Itoa(h.Orch.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "poll less frequently", nil)
		return
	}

	run, err := h.Orch.Current(c.Request.Context(), owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no current match run", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load match run", nil)
		return
	}
	respond.OK(c, toRunResponse(run))
}

func (h *Handler) dismiss(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	if err := h.Orch.Dismiss(owner); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no current match run", nil)
		return
	}
	respond.OK(c, gin.H{"dismissed": true})
}

func (h *Handler) list(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	runs, err := h.Orch.List(c.Request.Context(), owner, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list match runs", nil)
		return
	}

	resp := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	run, err := h.Orch.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "match run not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load match run", nil)
		return
	}
	respond.OK(c, toRunResponse(run))
}

func (h *Handler) report(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	run, err := h.Orch.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "match run not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load match run", nil)
		return
	}
	if run.Status != StatusSucceeded || run.Result == nil {
		respond.Error(c, http.StatusConflict, CodeConflict, "report is only available for succeeded runs", nil)
		return
	}

	meta := export.ReportMeta{
		RunID:       run.ID,
		JDID:        run.RequestedJDID,
		CVCount:     len(run.RequestedCVIDs),
		RequestedAt: run.CreatedAt,
	}
	if run.CompletedAt != nil {
		meta.CompletedAt = *run.CompletedAt
	}
	rows := make([]export.ReportRow, 0, len(run.Result.Matches))
	for _, match := range run.Result.Matches {
		rows = append(rows, export.ReportRow{
			CVID:        match.CVID,
			DisplayName: match.DisplayName,
			Score:       match.Score,
			Strengths:   match.Strengths,
			Gaps:        match.Gaps,
		})
	}

	payload, err := export.MatchReport(meta, rows)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render report", nil)
		return
	}

	fileName := fmt.Sprintf("match-report-%s.xlsx", run.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

func toRunResponse(run Run) gin.H {
	resp := gin.H{
		"id":             run.ID,
		"status":         run.Status,
		"requestedCvIds": run.RequestedCVIDs,
		"requestedJdId":  run.RequestedJDID,
		"createdAt":      run.CreatedAt,
	}
	if run.Progress != nil {
		resp["progress"] = run.Progress
	}
	if run.Result != nil {
		resp["result"] = run.Result
	}
	if run.ErrorCode != "" {
		resp["errorCode"] = run.ErrorCode
		resp["errorMessage"] = run.ErrorMessage
	}
	if run.StartedAt != nil {
		resp["startedAt"] = run.StartedAt
	}
	if run.CompletedAt != nil {
		resp["completedAt"] = run.CompletedAt
	}
	return resp
}
