// Package candidates aggregates the resumes of one job with their evaluations.
//
// The resume list is fetched once and published right away. Evaluations are
// fetched per resume in parallel and attached to the row with the same resume
// ID as they arrive, so completion order never matters.
package candidates

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
)

var (
	ErrEvaluationInFlight = errors.New("evaluation already in progress")
	ErrUnknownCandidate   = errors.New("candidate is not on the board")
	ErrClosed             = errors.New("board is closed")

	errEmptyEvaluation = errors.New("evaluation returned no result")
)

// Source is the data the board reads from and writes to. *store.Client implements it.
type Source interface {
	ResumesByJob(ctx context.Context, jobID string, page store.Page) ([]*model.Resume, error)
	EvaluationsByResume(ctx context.Context, resumeID string, page store.Page) ([]*model.Evaluation, error)
	Evaluate(ctx context.Context, resumeID, jobID string) (*model.Evaluation, error)
	UploadResume(ctx context.Context, up store.Upload) (*model.Resume, error)
}

// Row is one candidate: the resume, its evaluation for the board's job if
// any, and whether an explicit evaluation is running.
type Row struct {
	Resume     *model.Resume
	Evaluation *model.Evaluation
	Evaluating bool
}

func (r Row) Evaluated() bool { return r.Evaluation != nil }

func (r Row) ID() string {
	if r.Resume == nil {
		return ""
	}
	return r.Resume.ID
}

type Option func(*Board)

// WithConcurrency caps in-flight requests. Zero or less means one request per row.
func WithConcurrency(n int) Option {
	return func(b *Board) { b.concurrency = n }
}

// WithPage sets the window of the resume list.
func WithPage(page store.Page) Option {
	return func(b *Board) { b.page = page }
}

// WithOnChange registers a callback receiving a snapshot after every change.
// Calls are serialized.
func WithOnChange(fn func(Snapshot)) Option {
	return func(b *Board) { b.onChange = fn }
}

// Board is the live candidate list of one job. It is safe for concurrent use.
type Board struct {
	src         Source
	logger      *zap.Logger
	concurrency int
	page        store.Page
	onChange    func(Snapshot)
	notifyMu    sync.Mutex

	// ctx bounds every background fetch and is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	jobID      string
	rows       []Row
	loading    bool
	closed     bool
	generation uint64
	cancelLoad context.CancelFunc
	done       chan struct{}
}

func NewBoard(src Source, log *zap.Logger, opts ...Option) *Board {
	ctx, cancel := context.WithCancel(context.Background())

	b := &Board{
		src:    src,
		logger: logger.WithFields(log),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Load replaces the board content with the resumes of jobID. It returns once
// the rows are published; evaluations keep arriving in the background until
// Wait returns. Results of an earlier Load are discarded.
func (b *Board) Load(ctx context.Context, jobID string) error {
	if jobID == "" {
		return fmt.Errorf("job id is required")
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.generation++
	gen := b.generation
	if b.cancelLoad != nil {
		b.cancelLoad()
		b.cancelLoad = nil
	}
	b.jobID = jobID
	b.rows = nil
	b.loading = true
	b.done = nil
	b.mu.Unlock()
	b.notify()

	log := b.logger.With(zap.String(logger.FieldJobID, jobID))

	resumes, err := b.src.ResumesByJob(ctx, jobID, b.page)
	if err != nil {
		log.Error("loading candidates", zap.Error(err))

		b.mu.Lock()
		if gen == b.generation {
			b.loading = false
		}
		b.mu.Unlock()
		b.notify()

		return fmt.Errorf("load candidates for job %s: %w", jobID, err)
	}

	loadCtx, cancel := context.WithCancel(b.ctx)
	stop := context.AfterFunc(ctx, cancel)
	done := make(chan struct{})

	rows := make([]Row, 0, len(resumes))
	ids := make([]string, 0, len(resumes))
	for _, r := range resumes {
		if r == nil || r.ID == "" {
			continue
		}
		rows = append(rows, Row{Resume: r})
		ids = append(ids, r.ID)
	}

	b.mu.Lock()
	if b.closed || gen != b.generation {
		b.mu.Unlock()
		stop()
		cancel()
		log.Debug("dropping superseded resume list", zap.Int("count", len(rows)))
		return nil
	}
	// Uploads that finished while the list was in flight stay on top.
	var uploaded []Row
	for _, r := range b.rows {
		if !slices.Contains(ids, r.ID()) {
			uploaded = append(uploaded, r)
		}
	}
	b.rows = append(uploaded, rows...)
	b.loading = false
	b.cancelLoad = cancel
	b.done = done
	b.mu.Unlock()
	b.notify()

	log.Info("candidates loaded", zap.Int("count", len(rows)), zap.Int("uploaded", len(uploaded)))

	go func() {
		defer close(done)
		defer cancel()
		defer stop()
		b.fetchEvaluations(loadCtx, gen, jobID, ids)
	}()

	return nil
}

func (b *Board) fetchEvaluations(ctx context.Context, gen uint64, jobID string, ids []string) {
	var sem chan struct{}
	if b.concurrency > 0 {
		sem = make(chan struct{}, b.concurrency)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(resumeID string) {
			defer wg.Done()

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					return
				}
			}

			b.fetchEvaluation(ctx, gen, jobID, resumeID)
		}(id)
	}
	wg.Wait()
}

func (b *Board) fetchEvaluation(ctx context.Context, gen uint64, jobID, resumeID string) {
	log := logger.WithCandidate(b.logger, jobID, resumeID, "")

	evals, err := b.src.EvaluationsByResume(ctx, resumeID, store.Page{})
	if err != nil {
		if ctx.Err() != nil {
			log.Debug("evaluation fetch cancelled", zap.Error(err))
			return
		}
		log.Warn("fetching evaluations", zap.Error(err))
		return
	}

	ev := model.FirstForJob(evals, jobID)
	if ev == nil {
		log.Debug("candidate is not evaluated", zap.Int("evaluations", len(evals)))
		return
	}

	b.mu.Lock()
	if b.closed || gen != b.generation {
		b.mu.Unlock()
		log.Debug("dropping stale evaluation", zap.String(logger.FieldEvaluationID, ev.ID))
		return
	}
	i := b.indexOf(resumeID)
	// an explicit evaluation that already landed is newer than the stored one
	if i < 0 || b.rows[i].Evaluation != nil {
		b.mu.Unlock()
		return
	}
	b.rows[i].Evaluation = ev
	b.mu.Unlock()
	b.notify()
}

// Wait blocks until all evaluation fetches of the current load have settled.
func (b *Board) Wait(ctx context.Context) error {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight fetches. Results arriving afterwards are dropped.
func (b *Board) Close() {
	b.mu.Lock()
	b.closed = true
	b.cancelLoad = nil
	b.mu.Unlock()

	b.cancel()
}

// Evaluate requests an evaluation of the candidate against the board's job
// and attaches it. While it runs the row is flagged as evaluating; a second
// call for the same row fails with ErrEvaluationInFlight.
func (b *Board) Evaluate(ctx context.Context, resumeID string) (*model.Evaluation, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	i := b.indexOf(resumeID)
	if i < 0 {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownCandidate, resumeID)
	}
	if b.rows[i].Evaluating {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrEvaluationInFlight, resumeID)
	}
	b.rows[i].Evaluating = true
	jobID := b.jobID
	gen := b.generation
	b.mu.Unlock()
	b.notify()

	log := logger.WithCandidate(b.logger, jobID, resumeID, "")
	log.Info("evaluating candidate")

	ev, err := b.src.Evaluate(ctx, resumeID, jobID)
	if err == nil && ev == nil {
		err = errEmptyEvaluation
	}

	b.mu.Lock()
	if !b.closed && gen == b.generation {
		if i := b.indexOf(resumeID); i >= 0 {
			b.rows[i].Evaluating = false
			if err == nil {
				b.rows[i].Evaluation = ev
			}
		}
	}
	b.mu.Unlock()
	b.notify()

	if err != nil {
		log.Error("evaluating candidate", zap.Error(err))
		return nil, fmt.Errorf("evaluate candidate %s: %w", resumeID, err)
	}

	log.Info("candidate evaluated",
		zap.String(logger.FieldEvaluationID, ev.ID),
		zap.Int("score", ev.Score),
		zap.String("verdict", ev.Verdict),
	)

	return ev, nil
}

func (b *Board) indexOf(resumeID string) int {
	for i := range b.rows {
		if b.rows[i].ID() == resumeID {
			return i
		}
	}
	return -1
}

func (b *Board) notify() {
	if b.onChange == nil {
		return
	}

	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.onChange(b.Snapshot())
}
