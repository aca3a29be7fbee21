package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spigell/cv-ranker/internal/model"
	"go.uber.org/zap"
)

const evaluationsPath = "/evaluations"

type evaluateRequest struct {
	ResumeID string `json:"resume_id"`
	JobID    string `json:"jd_id"`
}

// Evaluate asks the API to score a resume against a job. Rejections other
// than a missing resource match ErrProvider.
func (c *Client) Evaluate(ctx context.Context, resumeID, jobID string) (*model.Evaluation, error) {
	if resumeID == "" || jobID == "" {
		return nil, fmt.Errorf("resume id and job id are required")
	}

	var ev model.Evaluation
	err := c.sendJSON(ctx, http.MethodPost, evaluationsPath+"/evaluate", evaluateRequest{
		ResumeID: resumeID,
		JobID:    jobID,
	}, &ev)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && !errors.Is(apiErr, ErrNotFound) {
			return nil, fmt.Errorf("evaluate resume %s for job %s: %w: %w", resumeID, jobID, ErrProvider, err)
		}
		return nil, fmt.Errorf("evaluate resume %s for job %s: %w", resumeID, jobID, err)
	}

	c.check(&ev)
	return &ev, nil
}

func (c *Client) ListEvaluations(ctx context.Context, page Page) ([]*model.Evaluation, error) {
	return c.evaluations(ctx, evaluationsPath+"/", page.values(), "list evaluations")
}

func (c *Client) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	if id == "" {
		return nil, fmt.Errorf("evaluation id is required")
	}

	var ev model.Evaluation
	if err := c.getJSON(ctx, evaluationsPath+"/"+escape(id), nil, &ev); err != nil {
		return nil, fmt.Errorf("get evaluation %s: %w", id, err)
	}

	c.check(&ev)
	return &ev, nil
}

func (c *Client) DeleteEvaluation(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("evaluation id is required")
	}

	if err := c.sendJSON(ctx, http.MethodDelete, evaluationsPath+"/"+escape(id), nil, nil); err != nil {
		return fmt.Errorf("delete evaluation %s: %w", id, err)
	}

	return nil
}

func (c *Client) EvaluationsByJob(ctx context.Context, jobID string, page Page) ([]*model.Evaluation, error) {
	return c.evaluations(ctx, evaluationsPath+"/by-jd/"+escape(jobID), page.values(),
		"list evaluations for job "+jobID)
}

// EvaluationsByResume returns every evaluation of a resume in store order.
func (c *Client) EvaluationsByResume(ctx context.Context, resumeID string, page Page) ([]*model.Evaluation, error) {
	return c.evaluations(ctx, evaluationsPath+"/by-resume/"+escape(resumeID), page.values(),
		"list evaluations for resume "+resumeID)
}

// EvaluationFor returns the stored evaluation of one (job, resume) pair.
func (c *Client) EvaluationFor(ctx context.Context, jobID, resumeID string) (*model.Evaluation, error) {
	path := fmt.Sprintf("%s/by-jd-and-resume/%s/%s", evaluationsPath, escape(jobID), escape(resumeID))

	var ev model.Evaluation
	if err := c.getJSON(ctx, path, nil, &ev); err != nil {
		return nil, fmt.Errorf("get evaluation of resume %s for job %s: %w", resumeID, jobID, err)
	}

	c.check(&ev)
	return &ev, nil
}

// TopEvaluations returns the best scored evaluations of a job. A non-positive
// limit means 10.
func (c *Client) TopEvaluations(ctx context.Context, jobID string, limit int) ([]*model.Evaluation, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	return c.evaluations(ctx, evaluationsPath+"/top/"+escape(jobID), q, "top evaluations for job "+jobID)
}

func (c *Client) EvaluationsByScoreRange(ctx context.Context, minScore, maxScore int, page Page) ([]*model.Evaluation, error) {
	if minScore > maxScore {
		return nil, fmt.Errorf("min score %d is greater than max score %d", minScore, maxScore)
	}

	q := page.values()
	q.Set("min_score", strconv.Itoa(minScore))
	q.Set("max_score", strconv.Itoa(maxScore))

	return c.evaluations(ctx, evaluationsPath+"/search/score-range", q, "search evaluations by score")
}

func (c *Client) EvaluationsByVerdict(ctx context.Context, verdict string, page Page) ([]*model.Evaluation, error) {
	return c.evaluations(ctx, evaluationsPath+"/search/verdict/"+escape(verdict), page.values(),
		"search evaluations by verdict")
}

func (c *Client) CountEvaluations(ctx context.Context) (int, error) {
	return c.count(ctx, evaluationsPath+"/stats/count", "evaluations")
}

func (c *Client) CountEvaluationsByJob(ctx context.Context, jobID string) (int, error) {
	return c.count(ctx, evaluationsPath+"/stats/count-by-jd/"+escape(jobID), "evaluations for job "+jobID)
}

func (c *Client) CountEvaluationsByResume(ctx context.Context, resumeID string) (int, error) {
	return c.count(ctx, evaluationsPath+"/stats/count-by-resume/"+escape(resumeID), "evaluations for resume "+resumeID)
}

func (c *Client) evaluations(ctx context.Context, path string, q url.Values, what string) ([]*model.Evaluation, error) {
	var evals []*model.Evaluation
	if err := c.getJSON(ctx, path, q, &evals); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	for _, ev := range evals {
		c.check(ev)
	}
	return evals, nil
}

// check logs evaluations the API returned in an inconsistent state. They are
// still returned as is.
func (c *Client) check(ev *model.Evaluation) {
	if ev == nil {
		return
	}
	if err := ev.Validate(); err != nil {
		c.logger.Warn("inconsistent evaluation",
			zap.String("evaluation_id", ev.ID),
			zap.String("resume_id", ev.ResumeID),
			zap.Error(err),
		)
	}
}
