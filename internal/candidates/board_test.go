package candidates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func threeCandidates() *fakeSource {
	src := newFakeSource()
	src.resumes["job"] = []*model.Resume{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}}
	src.evals["r1"] = []*model.Evaluation{{ID: "e1", ResumeID: "r1", JobID: "job", Score: 90}}
	src.evals["r2"] = []*model.Evaluation{{ID: "x2", ResumeID: "r2", JobID: "other", Score: 10}}
	src.evals["r3"] = []*model.Evaluation{{ID: "e3", ResumeID: "r3", JobID: "job", Score: 40}}
	return src
}

func TestLoadPublishesRowsBeforeEvaluations(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	g1, g2, g3 := src.gate("r1"), src.gate("r2"), src.gate("r3")

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := board.Snapshot()
	if snap.Loading {
		t.Fatalf("expected loading to be finished once rows are published")
	}
	if len(snap.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(snap.Rows))
	}
	for i, id := range []string{"r1", "r2", "r3"} {
		if snap.Rows[i].ID() != id {
			t.Fatalf("row %d: expected %s, got %s", i, id, snap.Rows[i].ID())
		}
		if snap.Rows[i].Evaluated() || snap.Rows[i].Evaluating {
			t.Fatalf("row %s must start unevaluated", id)
		}
	}

	// complete in reverse order
	close(g3)
	eventually(t, func() bool { return rowOf(t, board, "r3").Evaluated() })
	if rowOf(t, board, "r1").Evaluated() {
		t.Fatalf("r1 must not be touched by r3 completion")
	}

	close(g2)
	close(g1)
	waitBoard(t, board)

	if ev := rowOf(t, board, "r1").Evaluation; ev == nil || ev.ID != "e1" {
		t.Fatalf("unexpected r1 evaluation %+v", ev)
	}
	if rowOf(t, board, "r2").Evaluated() {
		t.Fatalf("r2 has no evaluation for this job")
	}
	if ev := rowOf(t, board, "r3").Evaluation; ev == nil || ev.ID != "e3" {
		t.Fatalf("unexpected r3 evaluation %+v", ev)
	}
}

func TestLoadPicksFirstEvaluationForJob(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.resumes["job"] = []*model.Resume{{ID: "r1"}}
	src.evals["r1"] = []*model.Evaluation{
		{ID: "other", JobID: "elsewhere"},
		{ID: "first", JobID: "job"},
		{ID: "second", JobID: "job"},
	}

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)

	if ev := rowOf(t, board, "r1").Evaluation; ev == nil || ev.ID != "first" {
		t.Fatalf("expected first matching evaluation, got %+v", ev)
	}
}

func TestFailedFetchOnlyAffectsItsRow(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	src.evalErrs["r1"] = errors.New("connection reset")

	core, observed := observer.New(zapcore.WarnLevel)
	board := NewBoard(src, zap.New(core))
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)

	if rowOf(t, board, "r1").Evaluated() {
		t.Fatalf("failed row must stay unevaluated")
	}
	if !rowOf(t, board, "r3").Evaluated() {
		t.Fatalf("other rows must still be evaluated")
	}

	entries := observed.FilterMessage("fetching evaluations").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["resume_id"] != "r1" {
		t.Fatalf("unexpected log context %v", entries[0].ContextMap())
	}
}

func TestResumeListFailureLeavesEmptyBoard(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.resumesErr = errors.New("boom")

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	err := board.Load(context.Background(), "job")
	if err == nil {
		t.Fatalf("expected error")
	}

	snap := board.Snapshot()
	if snap.Loading || len(snap.Rows) != 0 {
		t.Fatalf("expected empty, settled board, got %+v", snap)
	}
	waitBoard(t, board)
}

func TestUploadPrependsWhileFetchesRun(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	g1 := src.gate("r1")

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resume, err := board.UploadAndInsert(context.Background(), UploadFile{
		Filename: "cv.pdf",
		Content:  []byte("%PDF-1.7 minimal"),
	}, "job", "New Person", "new@example.com")
	if err != nil {
		t.Fatalf("unexpected upload error: %v", err)
	}

	snap := board.Snapshot()
	if snap.Rows[0].ID() != resume.ID {
		t.Fatalf("uploaded resume must be first, got %s", snap.Rows[0].ID())
	}
	if len(snap.Candidates()) != 4 || len(snap.EvaluatingFlags()) != 4 {
		t.Fatalf("sequences must stay aligned")
	}

	close(g1)
	waitBoard(t, board)

	if ev := rowOf(t, board, "r1").Evaluation; ev == nil || ev.ID != "e1" {
		t.Fatalf("r1 evaluation must land on r1 after the shift, got %+v", ev)
	}
	if rowOf(t, board, "uploaded").Evaluated() {
		t.Fatalf("uploaded resume must stay unevaluated")
	}

	src.mu.Lock()
	defer src.mu.Unlock()
	if len(src.uploads) != 1 || src.uploads[0].CandidateName != "New Person" || src.uploads[0].Email != "new@example.com" {
		t.Fatalf("unexpected uploads %+v", src.uploads)
	}
}

func TestEvaluateSetsAndClearsFlag(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	started := make(chan struct{})
	release := make(chan struct{})
	src.evaluate = func(_ context.Context, resumeID, jobID string) (*model.Evaluation, error) {
		close(started)
		<-release
		return &model.Evaluation{ID: "fresh", ResumeID: resumeID, JobID: jobID, Score: 77}, nil
	}

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)

	type result struct {
		ev  *model.Evaluation
		err error
	}
	done := make(chan result, 1)
	go func() {
		ev, err := board.Evaluate(context.Background(), "r2")
		done <- result{ev, err}
	}()

	<-started
	if !rowOf(t, board, "r2").Evaluating {
		t.Fatalf("expected evaluating flag while request runs")
	}
	flags := board.Snapshot().EvaluatingFlags()
	if flags[0] || !flags[1] || flags[2] {
		t.Fatalf("only r2 must be flagged, got %v", flags)
	}

	if _, err := board.Evaluate(context.Background(), "r2"); !errors.Is(err, ErrEvaluationInFlight) {
		t.Fatalf("expected ErrEvaluationInFlight, got %v", err)
	}

	close(release)
	res := <-done
	if res.err != nil || res.ev.ID != "fresh" {
		t.Fatalf("unexpected result %+v", res)
	}

	row := rowOf(t, board, "r2")
	if row.Evaluating || row.Evaluation == nil || row.Evaluation.Score != 77 {
		t.Fatalf("unexpected row after evaluation %+v", row)
	}

	src.mu.Lock()
	defer src.mu.Unlock()
	if src.evaluations != 1 {
		t.Fatalf("expected exactly one evaluation request, got %d", src.evaluations)
	}
}

func TestEvaluateFailureClearsFlag(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	src.evaluate = func(context.Context, string, string) (*model.Evaluation, error) {
		return nil, store.ErrProvider
	}

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)

	if _, err := board.Evaluate(context.Background(), "r2"); !errors.Is(err, store.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}

	row := rowOf(t, board, "r2")
	if row.Evaluating || row.Evaluated() {
		t.Fatalf("failed evaluation must leave the row idle and unevaluated: %+v", row)
	}

	if _, err := board.Evaluate(context.Background(), "nobody"); !errors.Is(err, ErrUnknownCandidate) {
		t.Fatalf("expected ErrUnknownCandidate, got %v", err)
	}
}

func TestExplicitEvaluationIsNotOverwrittenByFetch(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	g1 := src.gate("r1")

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := board.Evaluate(context.Background(), "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(g1)
	waitBoard(t, board)

	if ev := rowOf(t, board, "r1").Evaluation; ev == nil || ev.ID != "new-r1" {
		t.Fatalf("expected explicit evaluation to stay, got %+v", ev)
	}
}

func TestStaleLoadResultsAreDropped(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.ignoreCancel = true
	src.resumes["job-a"] = []*model.Resume{{ID: "r1"}}
	src.resumes["job-b"] = []*model.Resume{{ID: "r1"}}
	src.evals["r1"] = []*model.Evaluation{{ID: "ea", JobID: "job-a"}, {ID: "eb", JobID: "job-b"}}
	gate := src.gate("r1")

	core, observed := observer.New(zapcore.DebugLevel)
	board := NewBoard(src, zap.New(core))
	defer board.Close()

	if err := board.Load(context.Background(), "job-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, func() bool { return src.fetches("r1") == 1 })

	if err := board.Load(context.Background(), "job-b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)

	if ev := rowOf(t, board, "r1").Evaluation; ev == nil || ev.ID != "eb" {
		t.Fatalf("expected job-b evaluation, got %+v", ev)
	}

	close(gate)
	eventually(t, func() bool { return observed.FilterMessage("dropping stale evaluation").Len() == 1 })

	if ev := rowOf(t, board, "r1").Evaluation; ev == nil || ev.ID != "eb" {
		t.Fatalf("stale result must not replace current evaluation, got %+v", ev)
	}
}

func TestCloseDropsLateResults(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	src.ignoreCancel = true
	gate := src.gate("r1")

	board := NewBoard(src, zap.NewNop())

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, func() bool { return rowOf(t, board, "r3").Evaluated() })

	board.Close()
	close(gate)
	waitBoard(t, board)

	if rowOf(t, board, "r1").Evaluated() {
		t.Fatalf("result arriving after Close must be dropped")
	}

	if _, err := board.Evaluate(context.Background(), "r1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := board.Load(context.Background(), "job"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestCloseCancelsInFlightFetches(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	src.gate("r1")

	board := NewBoard(src, zap.NewNop())
	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	board.Close()
	// the gate is never released, so only cancellation lets Wait return
	waitBoard(t, board)
}

func TestConcurrencyLimit(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.delay = 20 * time.Millisecond
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		src.resumes["job"] = append(src.resumes["job"], &model.Resume{ID: id})
	}

	board := NewBoard(src, zap.NewNop(), WithConcurrency(2))
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)

	src.mu.Lock()
	defer src.mu.Unlock()
	if src.maxInflight > 2 {
		t.Fatalf("expected at most 2 fetches in flight, got %d", src.maxInflight)
	}
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		if src.evalFetches[id] != 1 {
			t.Fatalf("expected one fetch for %s, got %d", id, src.evalFetches[id])
		}
	}
}

func TestEvaluatePending(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	board := NewBoard(src, zap.NewNop(), WithConcurrency(2))
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)

	if n := board.EvaluatePending(context.Background()); n != 1 {
		t.Fatalf("expected only r2 to be evaluated, got %d", n)
	}

	total, evaluated, evaluating := board.Snapshot().Counts()
	if total != 3 || evaluated != 3 || evaluating != 0 {
		t.Fatalf("unexpected counts %d/%d/%d", total, evaluated, evaluating)
	}

	if n := board.EvaluatePending(context.Background()); n != 0 {
		t.Fatalf("expected nothing left to evaluate, got %d", n)
	}
}

func TestOnChangeSnapshotsStayAligned(t *testing.T) {
	t.Parallel()

	src := threeCandidates()

	var mu sync.Mutex
	var snaps []Snapshot
	board := NewBoard(src, zap.NewNop(), WithOnChange(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		snaps = append(snaps, s)
	}))
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)
	if _, err := board.Evaluate(context.Background(), "r2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(snaps) == 0 {
		t.Fatalf("expected change notifications")
	}
	for _, s := range snaps {
		if len(s.Candidates()) != len(s.EvaluatingFlags()) {
			t.Fatalf("misaligned snapshot %+v", s)
		}
	}
	if !snaps[0].Loading {
		t.Fatalf("first notification must report loading")
	}
}

func TestReloadGivesSameRowsWhateverTheArrivalOrder(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	load := func(order []string) Snapshot {
		gates := make(map[string]chan struct{}, len(order))
		for _, id := range order {
			gates[id] = src.gate(id)
		}

		if err := board.Load(context.Background(), "job"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		eventually(t, func() bool { return src.inFlight() == len(order) })
		for i, id := range order {
			close(gates[id])
			left := len(order) - i - 1
			eventually(t, func() bool { return src.inFlight() == left })
		}
		waitBoard(t, board)

		return board.Snapshot()
	}

	forward := load([]string{"r1", "r2", "r3"})
	reversed := load([]string{"r3", "r2", "r1"})

	if len(forward.Rows) != 3 || len(reversed.Rows) != len(forward.Rows) {
		t.Fatalf("expected 3 rows twice, got %d and %d", len(forward.Rows), len(reversed.Rows))
	}
	for i := range forward.Rows {
		a, b := forward.Rows[i], reversed.Rows[i]
		if a.ID() != b.ID() {
			t.Fatalf("row %d: %s vs %s", i, a.ID(), b.ID())
		}
		if a.Evaluated() != b.Evaluated() {
			t.Fatalf("row %s: evaluated %v vs %v", a.ID(), a.Evaluated(), b.Evaluated())
		}
		if a.Evaluated() && a.Evaluation.ID != b.Evaluation.ID {
			t.Fatalf("row %s: evaluation %s vs %s", a.ID(), a.Evaluation.ID, b.Evaluation.ID)
		}
		if a.Evaluating || b.Evaluating {
			t.Fatalf("row %s must not be flagged after load", a.ID())
		}
	}
}

func TestEvaluateWithEmptyResultFails(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	src.evaluate = func(context.Context, string, string) (*model.Evaluation, error) { return nil, nil }

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	if err := board.Load(context.Background(), "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitBoard(t, board)

	if _, err := board.Evaluate(context.Background(), "r2"); err == nil {
		t.Fatalf("expected an error for an empty result")
	}

	row := rowOf(t, board, "r2")
	if row.Evaluating || row.Evaluated() {
		t.Fatalf("row must stay idle and unevaluated: %+v", row)
	}
}

func TestUploadDuringListFetchSurvivesPublish(t *testing.T) {
	t.Parallel()

	src := threeCandidates()
	src.listGate = make(chan struct{})

	board := NewBoard(src, zap.NewNop())
	defer board.Close()

	loaded := make(chan error, 1)
	go func() { loaded <- board.Load(context.Background(), "job") }()
	eventually(t, func() bool { return src.lists() == 1 })

	pdf := UploadFile{Filename: "cv.pdf", Content: []byte("%PDF-1.7 minimal")}
	if _, err := board.UploadAndInsert(context.Background(), pdf, "job", "New Person", ""); err != nil {
		t.Fatalf("unexpected upload error: %v", err)
	}

	// the list already knows r2, so it must not show up twice
	src.mu.Lock()
	src.upload = func(store.Upload) (*model.Resume, error) { return &model.Resume{ID: "r2"}, nil }
	src.mu.Unlock()
	if _, err := board.UploadAndInsert(context.Background(), pdf, "job", "", ""); err != nil {
		t.Fatalf("unexpected upload error: %v", err)
	}

	close(src.listGate)
	if err := <-loaded; err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	waitBoard(t, board)

	snap := board.Snapshot()
	want := []string{"uploaded", "r1", "r2", "r3"}
	if len(snap.Rows) != len(want) {
		t.Fatalf("expected %v, got %d rows", want, len(snap.Rows))
	}
	for i, id := range want {
		if snap.Rows[i].ID() != id {
			t.Fatalf("row %d: expected %s, got %s", i, id, snap.Rows[i].ID())
		}
	}
}
