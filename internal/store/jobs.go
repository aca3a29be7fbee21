package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spigell/cv-ranker/internal/model"
)

const jobsPath = "/job-descriptions"

// JobInput is the payload to create a job description.
type JobInput struct {
	Title string `json:"title"`
	Text  string `json:"jd_text"`
}

// JobPatch is a partial update. Nil fields are left unchanged.
type JobPatch struct {
	Title *string `json:"title,omitempty"`
	Text  *string `json:"jd_text,omitempty"`
}

func (c *Client) ListJobs(ctx context.Context, page Page) ([]*model.JobDescription, error) {
	var jobs []*model.JobDescription
	if err := c.getJSON(ctx, jobsPath+"/", page.values(), &jobs); err != nil {
		return nil, fmt.Errorf("list job descriptions: %w", err)
	}

	return jobs, nil
}

func (c *Client) CreateJob(ctx context.Context, in JobInput) (*model.JobDescription, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errors.New("job title is required")
	}

	var job model.JobDescription
	if err := c.sendJSON(ctx, http.MethodPost, jobsPath+"/", in, &job); err != nil {
		return nil, fmt.Errorf("create job description: %w", err)
	}

	return &job, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (*model.JobDescription, error) {
	if id == "" {
		return nil, fmt.Errorf("job id is required")
	}

	var job model.JobDescription
	if err := c.getJSON(ctx, jobsPath+"/"+escape(id), nil, &job); err != nil {
		return nil, fmt.Errorf("get job description %s: %w", id, err)
	}

	return &job, nil
}

func (c *Client) UpdateJob(ctx context.Context, id string, patch JobPatch) (*model.JobDescription, error) {
	if id == "" {
		return nil, fmt.Errorf("job id is required")
	}

	var job model.JobDescription
	if err := c.sendJSON(ctx, http.MethodPut, jobsPath+"/"+escape(id), patch, &job); err != nil {
		return nil, fmt.Errorf("update job description %s: %w", id, err)
	}

	return &job, nil
}

func (c *Client) DeleteJob(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("job id is required")
	}

	if err := c.sendJSON(ctx, http.MethodDelete, jobsPath+"/"+escape(id), nil, nil); err != nil {
		return fmt.Errorf("delete job description %s: %w", id, err)
	}

	return nil
}

func (c *Client) SearchJobs(ctx context.Context, title string, page Page) ([]*model.JobDescription, error) {
	q := page.values()
	q.Set("title", title)

	var jobs []*model.JobDescription
	if err := c.getJSON(ctx, jobsPath+"/search/", q, &jobs); err != nil {
		return nil, fmt.Errorf("search job descriptions: %w", err)
	}

	return jobs, nil
}

func (c *Client) CountJobs(ctx context.Context) (int, error) {
	return c.count(ctx, jobsPath+"/stats/count", "job descriptions")
}

func (c *Client) count(ctx context.Context, path, what string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, path, url.Values{}, &out); err != nil {
		return 0, fmt.Errorf("count %s: %w", what, err)
	}

	return out.Count, nil
}
