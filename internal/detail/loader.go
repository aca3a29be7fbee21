package detail

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/cv-ranker/internal/classify"
	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrNoJobContext      = errors.New("candidate has no job to evaluate against")

	errEmptyEvaluation = errors.New("evaluation returned no result")
)

type Source interface {
	GetResume(ctx context.Context, id string) (*model.Resume, error)
	GetJob(ctx context.Context, id string) (*model.JobDescription, error)
	EvaluationsByResume(ctx context.Context, resumeID string, page store.Page) ([]*model.Evaluation, error)
	Evaluate(ctx context.Context, resumeID, jobID string) (*model.Evaluation, error)
}

// View is everything the detail screen shows.
type View struct {
	Resume *model.Resume
	// Job is the context job, nil when the resume has none or it failed to load.
	Job        *model.JobDescription
	JobID      string
	Evaluation *model.Evaluation
	// Carried reports whether the evaluation state came with the navigation.
	Carried bool
}

func (v *View) Evaluated() bool { return v != nil && v.Evaluation != nil }

func (v *View) SkillsMatch() (int, bool) {
	if v == nil {
		return 0, false
	}
	return classify.SkillsMatch(v.Evaluation)
}

type Loader struct {
	src    Source
	logger *zap.Logger
}

func NewLoader(src Source, log *zap.Logger) *Loader {
	return &Loader{src: src, logger: logger.WithFields(log)}
}

// Open loads the view. The resume is always fetched. Evaluations are fetched
// alongside it only when the request carries no state; the request job then
// selects which one is shown. Only the first linked job is loaded as context.
func (l *Loader) Open(ctx context.Context, req Request) (*View, error) {
	if req.ResumeID == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	log := logger.WithCandidate(l.logger, req.JobID, req.ResumeID, "")
	view := &View{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resume, err := l.src.GetResume(gctx, req.ResumeID)
		if err != nil {
			return err
		}
		view.Resume = resume
		return nil
	})

	switch st := req.State.(type) {
	case WithEvaluation:
		view.Evaluation = st.Evaluation
		view.Carried = true
	case NotEvaluated:
		view.Carried = true
	case nil:
		g.Go(func() error {
			evals, err := l.src.EvaluationsByResume(gctx, req.ResumeID, store.Page{})
			if err != nil {
				if gctx.Err() == nil {
					log.Warn("fetching evaluations", zap.Error(err))
				}
				return nil
			}
			if req.JobID != "" {
				view.Evaluation = model.FirstForJob(evals, req.JobID)
			} else {
				view.Evaluation = model.First(evals)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("loading candidate", zap.Error(err))
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrCandidateNotFound, req.ResumeID, err)
		}
		return nil, fmt.Errorf("load candidate %s: %w", req.ResumeID, err)
	}
	if view.Resume == nil {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, req.ResumeID)
	}

	view.JobID = view.Resume.FirstJobID()
	if view.JobID != "" {
		job, err := l.src.GetJob(ctx, view.JobID)
		if err != nil {
			log.Warn("loading job context", zap.String("context_job_id", view.JobID), zap.Error(err))
		} else {
			view.Job = job
		}
	}

	log.Debug("candidate view loaded",
		zap.Bool("carried", view.Carried),
		zap.Bool("evaluated", view.Evaluated()),
		zap.String("context_job_id", view.JobID),
	)

	return view, nil
}

// Evaluate scores the candidate against the view's job and stores the result
// in the view. On failure the view is left unchanged.
func (l *Loader) Evaluate(ctx context.Context, view *View) (*model.Evaluation, error) {
	if view == nil || view.Resume == nil {
		return nil, fmt.Errorf("view is not loaded")
	}
	if view.JobID == "" {
		return nil, ErrNoJobContext
	}

	log := logger.WithCandidate(l.logger, view.JobID, view.Resume.ID, view.Resume.CandidateName)

	ev, err := l.src.Evaluate(ctx, view.Resume.ID, view.JobID)
	if err == nil && ev == nil {
		err = errEmptyEvaluation
	}
	if err != nil {
		log.Error("evaluating candidate", zap.Error(err))
		return nil, err
	}

	view.Evaluation = ev
	log.Info("candidate evaluated", zap.Int("score", ev.Score), zap.String("verdict", ev.Verdict))

	return ev, nil
}
