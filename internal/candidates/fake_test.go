package candidates

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/store"
)

type fakeSource struct {
	mu sync.Mutex

	resumes    map[string][]*model.Resume
	resumesErr error
	// listGate blocks ResumesByJob until closed
	listGate    chan struct{}
	resumeLists int
	evals      map[string][]*model.Evaluation
	evalErrs   map[string]error
	// gates block the first evaluation fetch of a resume until closed
	gates        map[string]chan struct{}
	ignoreCancel bool
	delay        time.Duration

	evaluate func(ctx context.Context, resumeID, jobID string) (*model.Evaluation, error)
	upload   func(up store.Upload) (*model.Resume, error)

	uploads     []store.Upload
	evalFetches map[string]int
	evaluations int
	inflight    int
	maxInflight int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		resumes:     make(map[string][]*model.Resume),
		evals:       make(map[string][]*model.Evaluation),
		evalErrs:    make(map[string]error),
		gates:       make(map[string]chan struct{}),
		evalFetches: make(map[string]int),
	}
}

func (f *fakeSource) gate(resumeID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan struct{})
	f.gates[resumeID] = ch
	return ch
}

func (f *fakeSource) ResumesByJob(ctx context.Context, jobID string, _ store.Page) ([]*model.Resume, error) {
	f.mu.Lock()
	f.resumeLists++
	gate := f.listGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resumesErr != nil {
		return nil, f.resumesErr
	}
	return f.resumes[jobID], nil
}

func (f *fakeSource) inFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight
}

func (f *fakeSource) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumeLists
}

func (f *fakeSource) EvaluationsByResume(ctx context.Context, resumeID string, _ store.Page) ([]*model.Evaluation, error) {
	f.mu.Lock()
	f.evalFetches[resumeID]++
	gate := f.gates[resumeID]
	delete(f.gates, resumeID)
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	evals, err := f.evals[resumeID], f.evalErrs[resumeID]
	ignore, delay := f.ignoreCancel, f.delay
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if gate != nil {
		if ignore {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	return evals, err
}

func (f *fakeSource) Evaluate(ctx context.Context, resumeID, jobID string) (*model.Evaluation, error) {
	f.mu.Lock()
	f.evaluations++
	fn := f.evaluate
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, resumeID, jobID)
	}
	return &model.Evaluation{ID: "new-" + resumeID, ResumeID: resumeID, JobID: jobID, Score: 50}, nil
}

func (f *fakeSource) UploadResume(_ context.Context, up store.Upload) (*model.Resume, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, up)
	fn := f.upload
	f.mu.Unlock()

	if fn != nil {
		return fn(up)
	}
	return &model.Resume{ID: "uploaded", CandidateName: up.CandidateName, JobIDs: []string{up.JobID}}, nil
}

func (f *fakeSource) fetches(resumeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evalFetches[resumeID]
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func waitBoard(t *testing.T, b *Board) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.Wait(ctx); err != nil {
		t.Fatalf("waiting for board: %v", err)
	}
}

func rowOf(t *testing.T, b *Board, resumeID string) Row {
	t.Helper()

	row, ok := b.Snapshot().Row(resumeID)
	if !ok {
		t.Fatalf("row %s not found", resumeID)
	}
	return row
}
