package matchrun

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"recruiting-console/internal/talenthub"
)

type fakeSelection struct {
	cvIDs []string
	jdID  string
}

func (f *fakeSelection) Snapshot(owner string) ([]string, string) {
	return append([]string(nil), f.cvIDs...), f.jdID
}

type fakeHub struct {
	talenthub.Client

	startCalls  atomic.Int32
	startErr    error
	progressSeq []talenthub.Progress
	progressIdx atomic.Int32
	progressErr error
	result      talenthub.MatchResult
	resultErr   error
}

func (f *fakeHub) StartMatch(ctx context.Context, cvIDs []string, jdID string) (talenthub.MatchHandle, error) {
	f.startCalls.Add(1)
	if f.startErr != nil {
		return "", f.startErr
	}
	return "handle-1", nil
}

func (f *fakeHub) GetMatchProgress(ctx context.Context, handle talenthub.MatchHandle) (talenthub.Progress, error) {
	if f.progressErr != nil {
		return talenthub.Progress{}, f.progressErr
	}
	idx := int(f.progressIdx.Add(1)) - 1
	if idx >= len(f.progressSeq) {
		idx = len(f.progressSeq) - 1
	}
	if idx < 0 {
		return talenthub.Progress{}, nil
	}
	return f.progressSeq[idx], nil
}

func (f *fakeHub) GetMatchResult(ctx context.Context, handle talenthub.MatchHandle) (talenthub.MatchResult, error) {
	if f.resultErr != nil {
		return talenthub.MatchResult{}, f.resultErr
	}
	return f.result, nil
}

func newTestOrchestrator(hub talenthub.Client, sel SelectionSource) (*Orchestrator, *MemoryRepo) {
	repo := NewMemoryRepo()
	orch := NewOrchestrator(hub, repo, sel, 5*time.Millisecond)
	return orch, repo
}

func waitForTerminal(t *testing.T, repo Repo, owner, runID string) Run {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		run, err := repo.GetByID(context.Background(), owner, runID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if run.Terminal() {
			return run
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("run never reached a terminal state")
	return Run{}
}

func TestStartRejectsEmptySelectionWithoutHubCall(t *testing.T) {
	hub := &fakeHub{}
	orch, _ := newTestOrchestrator(hub, &fakeSelection{})

	if _, err := orch.Start(context.Background(), "user-1"); !errors.Is(err, ErrNoCVsSelected) {
		t.Fatalf("expected ErrNoCVsSelected, got %v", err)
	}

	orch.Selection = &fakeSelection{cvIDs: []string{"cv-1"}}
	if _, err := orch.Start(context.Background(), "user-1"); !errors.Is(err, ErrNoJDSelected) {
		t.Fatalf("expected ErrNoJDSelected, got %v", err)
	}

	if calls := hub.startCalls.Load(); calls != 0 {
		t.Fatalf("expected no hub calls on rejection, got %d", calls)
	}
}

func TestStartReturnsRunningBeforeHubResponds(t *testing.T) {
	hub := &fakeHub{
		progressSeq: []talenthub.Progress{{Processed: 0, Total: 2}},
	}
	orch, repo := newTestOrchestrator(hub, &fakeSelection{cvIDs: []string{"cv-1", "cv-2"}, jdID: "jd-1"})

	run, err := orch.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if run.Status != StatusRunning {
		t.Fatalf("expected running at return, got %s", run.Status)
	}

	stored, err := repo.GetByID(context.Background(), "user-1", run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != StatusRunning {
		t.Fatalf("expected persisted running, got %s", stored.Status)
	}
	orch.Dismiss("user-1")
}

func TestSecondStartConflictsWhileInFlight(t *testing.T) {
	hub := &fakeHub{
		progressSeq: []talenthub.Progress{{Processed: 0, Total: 5}},
	}
	orch, _ := newTestOrchestrator(hub, &fakeSelection{cvIDs: []string{"cv-1"}, jdID: "jd-1"})

	if _, err := orch.Start(context.Background(), "user-1"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := orch.Start(context.Background(), "user-1"); !errors.Is(err, ErrRunInFlight) {
		t.Fatalf("expected ErrRunInFlight, got %v", err)
	}
	if calls := hub.startCalls.Load(); calls > 1 {
		t.Fatalf("conflicting start must not reach the hub, got %d calls", calls)
	}
	orch.Dismiss("user-1")
}

// gatedRepo parks Create between the orchestrator's guard claim and the
// insert so tests can interleave a concurrent Start.
type gatedRepo struct {
	*MemoryRepo
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) Create(ctx context.Context, run Run) error {
	r.entered <- struct{}{}
	<-r.release
	return r.MemoryRepo.Create(ctx, run)
}

func TestRejectedStartLeavesNoRunRecord(t *testing.T) {
	hub := &fakeHub{
		progressSeq: []talenthub.Progress{{Processed: 1, Total: 1, Stage: "completed"}},
	}
	repo := &gatedRepo{
		MemoryRepo: NewMemoryRepo(),
		entered:    make(chan struct{}, 1),
		release:    make(chan struct{}),
	}
	orch := NewOrchestrator(hub, repo, &fakeSelection{cvIDs: []string{"cv-1"}, jdID: "jd-1"}, 5*time.Millisecond)

	type startResult struct {
		run Run
		err error
	}
	done := make(chan startResult, 1)
	go func() {
		run, err := orch.Start(context.Background(), "user-1")
		done <- startResult{run: run, err: err}
	}()
	<-repo.entered // first Start holds the guard, parked inside Create

	if _, err := orch.Start(context.Background(), "user-1"); !errors.Is(err, ErrRunInFlight) {
		t.Fatalf("expected ErrRunInFlight, got %v", err)
	}

	close(repo.release)
	first := <-done
	if first.err != nil {
		t.Fatalf("first Start: %v", first.err)
	}

	final := waitForTerminal(t, repo, "user-1", first.run.ID)
	if final.Status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %s (%s)", final.Status, final.ErrorMessage)
	}

	runs, err := repo.ListByOwner(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("rejected start must not leave a run record, got %d", len(runs))
	}
	if !runs[0].Terminal() {
		t.Fatalf("run %s stuck in %s", runs[0].ID, runs[0].Status)
	}
}

type failingRepo struct {
	*MemoryRepo
	createErr error
}

func (r *failingRepo) Create(ctx context.Context, run Run) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.MemoryRepo.Create(ctx, run)
}

func TestStartReleasesGuardWhenStoreFails(t *testing.T) {
	hub := &fakeHub{
		progressSeq: []talenthub.Progress{{Processed: 1, Total: 1, Stage: "completed"}},
	}
	repo := &failingRepo{MemoryRepo: NewMemoryRepo(), createErr: errors.New("insert failed")}
	orch := NewOrchestrator(hub, repo, &fakeSelection{cvIDs: []string{"cv-1"}, jdID: "jd-1"}, 5*time.Millisecond)

	if _, err := orch.Start(context.Background(), "user-1"); err == nil || errors.Is(err, ErrRunInFlight) {
		t.Fatalf("expected store error, got %v", err)
	}

	repo.createErr = nil
	run, err := orch.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected start after store recovery, got %v", err)
	}
	waitForTerminal(t, repo, "user-1", run.ID)
}

func TestRunSucceedsAndClearsProgress(t *testing.T) {
	hub := &fakeHub{
		progressSeq: []talenthub.Progress{
			{Processed: 1, Total: 3, Stage: "scoring"},
			{Processed: 3, Total: 3, Stage: "completed"},
		},
		result: talenthub.MatchResult{
			Matches: []talenthub.CandidateMatch{{CVID: "cv-1", Score: 92}},
		},
	}
	orch, repo := newTestOrchestrator(hub, &fakeSelection{cvIDs: []string{"cv-1", "cv-2", "cv-3"}, jdID: "jd-1"})

	run, err := orch.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	final := waitForTerminal(t, repo, "user-1", run.ID)
	if final.Status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %s (%s)", final.Status, final.ErrorMessage)
	}
	if final.Progress != nil {
		t.Fatalf("progress must be cleared on success, got %+v", final.Progress)
	}
	if final.Result == nil || len(final.Result.Matches) != 1 {
		t.Fatalf("expected stored result, got %+v", final.Result)
	}
	if final.CompletedAt == nil {
		t.Fatal("expected completedAt to be set")
	}
}

func TestRunFailsTerminalOnTransportError(t *testing.T) {
	hub := &fakeHub{startErr: errors.New("connection refused")}
	orch, repo := newTestOrchestrator(hub, &fakeSelection{cvIDs: []string{"cv-1"}, jdID: "jd-1"})

	run, err := orch.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	final := waitForTerminal(t, repo, "user-1", run.ID)
	if final.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.ErrorCode != CodeUpstream {
		t.Fatalf("expected upstream error code, got %s", final.ErrorCode)
	}
	// terminal means no silent retry
	time.Sleep(20 * time.Millisecond)
	if calls := hub.startCalls.Load(); calls != 1 {
		t.Fatalf("expected exactly one hub start, got %d", calls)
	}
}

func TestDismissFreesTheGuard(t *testing.T) {
	hub := &fakeHub{
		progressSeq: []talenthub.Progress{
			{Processed: 1, Total: 1, Stage: "completed"},
		},
	}
	orch, repo := newTestOrchestrator(hub, &fakeSelection{cvIDs: []string{"cv-1"}, jdID: "jd-1"})

	run, err := orch.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForTerminal(t, repo, "user-1", run.ID)

	if err := orch.Dismiss("user-1"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if _, err := orch.Current(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no current run after dismiss, got %v", err)
	}
	if _, err := orch.Start(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected new start after dismiss, got %v", err)
	}
}

func TestRunSnapshotIgnoresLaterSelectionEdits(t *testing.T) {
	hub := &fakeHub{
		progressSeq: []talenthub.Progress{
			{Processed: 1, Total: 1, Stage: "completed"},
		},
	}
	sel := &fakeSelection{cvIDs: []string{"cv-1", "cv-2"}, jdID: "jd-1"}
	orch, repo := newTestOrchestrator(hub, sel)

	run, err := orch.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	sel.cvIDs = []string{"cv-9"}
	sel.jdID = "jd-9"

	final := waitForTerminal(t, repo, "user-1", run.ID)
	if len(final.RequestedCVIDs) != 2 || final.RequestedJDID != "jd-1" {
		t.Fatalf("snapshot leaked selection edits: %v %s", final.RequestedCVIDs, final.RequestedJDID)
	}
}

func TestClampProgressMonotonic(t *testing.T) {
	prev := &talenthub.Progress{Processed: 5, Total: 10}

	got := clampProgress(prev, talenthub.Progress{Processed: 3, Total: 10})
	if got.Processed != 5 {
		t.Fatalf("processed regressed: %d", got.Processed)
	}

	got = clampProgress(prev, talenthub.Progress{Processed: 15, Total: 10})
	if got.Processed != 10 {
		t.Fatalf("processed exceeded total: %d", got.Processed)
	}

	got = clampProgress(nil, talenthub.Progress{Processed: -2, Total: 10})
	if got.Processed != 0 {
		t.Fatalf("expected negative processed clamped to 0, got %d", got.Processed)
	}
}
