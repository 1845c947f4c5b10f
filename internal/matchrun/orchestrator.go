package matchrun

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"recruiting-console/internal/shared/metrics"
	"recruiting-console/internal/shared/telemetry"
	"recruiting-console/internal/talenthub"
)

// SelectionSource exposes the frozen view of the owner's current selection.
type SelectionSource interface {
	Snapshot(owner string) (cvIDs []string, jdID string)
}

// Orchestrator drives match runs: it guards re-entrancy, validates the
// selection before any hub call, persists the run as running and then
// observes hub progress from a background goroutine.
type Orchestrator struct {
	Hub          talenthub.Client
	Repo         Repo
	Selection    SelectionSource
	PollInterval time.Duration

	mu     sync.Mutex
	active map[string]*activeRun

	limiter *pollLimiter
}

type activeRun struct {
	runID    string
	inFlight bool
	cancel   context.CancelFunc
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(hub talenthub.Client, repo Repo, sel SelectionSource, pollInterval time.Duration) *Orchestrator {
	if pollInterval <= 0 {
		pollInterval = 1 * time.Second
	}
	return &Orchestrator{
		Hub:          hub,
		Repo:         repo,
		Selection:    sel,
		PollInterval: pollInterval,
		active:       make(map[string]*activeRun),
		limiter:      newPollLimiter(pollLimitWindow, nil),
	}
}

// Start begins a match run for the owner's current selection. The returned
// run is already persisted as running; the hub has not been called yet when
// Start returns. Rejections (empty selection, run in flight) happen before
// any network traffic and leave the selection untouched.
func (o *Orchestrator) Start(ctx context.Context, owner string) (Run, error) {
	o.mu.Lock()
	if st, ok := o.active[owner]; ok && st.inFlight {
		o.mu.Unlock()
		metrics.IncMatchRejected()
		return Run{}, ErrRunInFlight
	}
	o.mu.Unlock()

	cvIDs, jdID := o.Selection.Snapshot(owner)
	if len(cvIDs) == 0 {
		metrics.IncMatchRejected()
		return Run{}, ErrNoCVsSelected
	}
	if jdID == "" {
		metrics.IncMatchRejected()
		return Run{}, ErrNoJDSelected
	}

	now := time.Now().UTC()
	run := Run{
		ID:             uuid.NewString(),
		OwnerID:        owner,
		Status:         StatusRunning,
		RequestedCVIDs: cvIDs,
		RequestedJDID:  jdID,
		CreatedAt:      now,
		StartedAt:      &now,
	}

	// Claim the guard before persisting: a Start that loses this race must
	// leave no record behind.
	runCtx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	prev, hadPrev := o.active[owner]
	if hadPrev && prev.inFlight {
		o.mu.Unlock()
		cancel()
		metrics.IncMatchRejected()
		return Run{}, ErrRunInFlight
	}
	o.active[owner] = &activeRun{runID: run.ID, inFlight: true, cancel: cancel}
	o.mu.Unlock()

	if err := o.Repo.Create(ctx, run); err != nil {
		cancel()
		o.mu.Lock()
		if st, ok := o.active[owner]; ok && st.runID == run.ID {
			if hadPrev {
				o.active[owner] = prev
			} else {
				delete(o.active, owner)
			}
		}
		o.mu.Unlock()
		return Run{}, err
	}

	metrics.IncMatchStarted()
	telemetry.Info("match.status", map[string]any{
		"user_id":           owner,
		"run_id":            run.ID,
		"status":            StatusRunning,
		"status_transition": "idle->running",
		"cv_count":          len(cvIDs),
	})

	go o.observe(runCtx, run)

	return run, nil
}

// Current returns the owner's current run, if any.
func (o *Orchestrator) Current(ctx context.Context, owner string) (Run, error) {
	o.mu.Lock()
	st, ok := o.active[owner]
	o.mu.Unlock()
	if !ok {
		return Run{}, ErrNotFound
	}
	return o.Repo.GetByID(ctx, owner, st.runID)
}

// Dismiss clears the owner's current-run pointer. An in-flight run is
// cancelled and recorded as failed; history is never dropped.
func (o *Orchestrator) Dismiss(owner string) error {
	o.mu.Lock()
	st, ok := o.active[owner]
	if ok {
		delete(o.active, owner)
	}
	o.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if st.inFlight {
		st.cancel()
	}
	return nil
}

// Get returns one of the owner's runs from history.
func (o *Orchestrator) Get(ctx context.Context, owner, runID string) (Run, error) {
	return o.Repo.GetByID(ctx, owner, runID)
}

// List returns the owner's run history, newest first.
func (o *Orchestrator) List(ctx context.Context, owner string, limit, offset int) ([]Run, error) {
	return o.Repo.ListByOwner(ctx, owner, limit, offset)
}

func (o *Orchestrator) observe(ctx context.Context, run Run) {
	defer func() {
		if r := recover(); r != nil {
			o.fail(run, "internal_error", fmt.Errorf("panic: %v", r))
		}
	}()

	handle, err := o.Hub.StartMatch(ctx, run.RequestedCVIDs, run.RequestedJDID)
	if err != nil {
		o.fail(run, CodeUpstream, err)
		return
	}
	run.Handle = handle
	if err := o.Repo.Update(context.Background(), run); err != nil {
		o.fail(run, "internal_error", fmt.Errorf("store handle: %w", err))
		return
	}

	ticker := time.NewTicker(o.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.fail(run, "cancelled", ctx.Err())
			return
		case <-ticker.C:
		}

		progress, err := o.Hub.GetMatchProgress(ctx, handle)
		if err != nil {
			o.fail(run, CodeUpstream, err)
			return
		}
		clamped := clampProgress(run.Progress, progress)
		run.Progress = &clamped
		if err := o.Repo.Update(context.Background(), run); err != nil {
			o.fail(run, "internal_error", fmt.Errorf("store progress: %w", err))
			return
		}

		if !progressComplete(clamped) {
			continue
		}

		result, err := o.Hub.GetMatchResult(ctx, handle)
		if err != nil {
			o.fail(run, CodeUpstream, err)
			return
		}
		if result.Pending {
			continue
		}
		o.succeed(run, result)
		return
	}
}

func (o *Orchestrator) succeed(run Run, result talenthub.MatchResult) {
	completedAt := time.Now().UTC()
	run.Status = StatusSucceeded
	run.Progress = nil
	run.Result = &result
	run.CompletedAt = &completedAt
	if err := o.Repo.Update(context.Background(), run); err != nil {
		telemetry.Error("match.store_result_failed", map[string]any{
			"run_id": run.ID,
			"error":  err.Error(),
		})
	}
	o.settle(run.OwnerID, run.ID)
	metrics.IncMatchSucceeded()
	metrics.ObserveMatchDurationMs(durationMs(run.StartedAt, &completedAt))
	telemetry.Info("match.status", map[string]any{
		"user_id":           run.OwnerID,
		"run_id":            run.ID,
		"status":            StatusSucceeded,
		"status_transition": "running->succeeded",
		"duration_ms":       durationMs(run.StartedAt, &completedAt),
	})
}

func (o *Orchestrator) fail(run Run, code string, cause error) {
	completedAt := time.Now().UTC()
	run.Status = StatusFailed
	run.ErrorCode = code
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &completedAt
	if err := o.Repo.Update(context.Background(), run); err != nil {
		telemetry.Error("match.store_failure_failed", map[string]any{
			"run_id": run.ID,
			"error":  err.Error(),
		})
	}
	o.settle(run.OwnerID, run.ID)
	metrics.IncMatchFailed()
	telemetry.Info("match.status", map[string]any{
		"user_id":           run.OwnerID,
		"run_id":            run.ID,
		"status":            StatusFailed,
		"status_transition": "running->failed",
		"error_code":        code,
		"error":             cause.Error(),
	})
}

// settle marks the owner's pointer as no longer in flight so a new run may
// start. Dismissed runs have already lost their pointer.
func (o *Orchestrator) settle(owner, runID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if st, ok := o.active[owner]; ok && st.runID == runID {
		st.inFlight = false
	}
}

// clampProgress keeps reported progress monotonic: processed never regresses
// and never exceeds total.
func clampProgress(prev *talenthub.Progress, next talenthub.Progress) talenthub.Progress {
	if prev != nil && next.Processed < prev.Processed {
		next.Processed = prev.Processed
	}
	if next.Total > 0 && next.Processed > next.Total {
		next.Processed = next.Total
	}
	if next.Processed < 0 {
		next.Processed = 0
	}
	return next
}

func progressComplete(p talenthub.Progress) bool {
	if p.Stage == "completed" {
		return true
	}
	return p.Total > 0 && p.Processed >= p.Total
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Milliseconds())
}
