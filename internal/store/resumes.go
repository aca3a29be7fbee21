package store

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spigell/cv-ranker/internal/model"
)

const (
	resumesPath = "/resumes"

	maxFilenameBase = 50
)

// Upload is a resume file sent for parsing and linking to a job.
type Upload struct {
	JobID         string
	Filename      string
	Content       []byte
	CandidateName string
	Email         string
}

// ResumePatch is a partial update. Nil fields are left unchanged.
type ResumePatch struct {
	CandidateName *string   `json:"candidate_name,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Skills        *[]string `json:"skills,omitempty"`
	JobIDs        *[]string `json:"jd_ids,omitempty"`
}

func (c *Client) ListResumes(ctx context.Context, page Page) ([]*model.Resume, error) {
	var resumes []*model.Resume
	if err := c.getJSON(ctx, resumesPath+"/", page.values(), &resumes); err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}

	return resumes, nil
}

// UploadResume sends the file as multipart form data. When a candidate name
// is set the file is renamed after the candidate.
func (c *Client) UploadResume(ctx context.Context, up Upload) (*model.Resume, error) {
	if up.JobID == "" {
		return nil, fmt.Errorf("job id is required")
	}

	filename := up.Filename
	if up.CandidateName != "" {
		filename = uploadFilename(up.CandidateName, up.Filename, c.now().UnixMilli())
	}

	fields := map[string]string{
		"jd_id":          up.JobID,
		"candidate_name": up.CandidateName,
		"email":          up.Email,
	}

	var resume model.Resume
	err := c.postMultipart(ctx, resumesPath+"/upload", fields, formFile{
		Field:    "file",
		Filename: filename,
		Content:  bytes.NewReader(up.Content),
	}, &resume)
	if err != nil {
		return nil, fmt.Errorf("upload resume %q: %w", filename, err)
	}

	return &resume, nil
}

// uploadFilename builds <base>_<millis>.<ext>. base keeps [A-Za-z0-9_-] of the
// candidate name and is cut to 50 characters. ext is the text after the last
// dot, or the whole original name when it has none.
func uploadFilename(candidate, original string, millis int64) string {
	var b strings.Builder
	for _, r := range candidate {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r > 0xFFFF:
			// one replacement per UTF-16 unit
			b.WriteString("__")
		default:
			b.WriteByte('_')
		}
	}

	base := b.String()
	if len(base) > maxFilenameBase {
		base = base[:maxFilenameBase]
	}

	ext := original
	if i := strings.LastIndex(original, "."); i >= 0 {
		ext = original[i+1:]
	}

	return base + "_" + strconv.FormatInt(millis, 10) + "." + ext
}

func (c *Client) GetResume(ctx context.Context, id string) (*model.Resume, error) {
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	var resume model.Resume
	if err := c.getJSON(ctx, resumesPath+"/"+escape(id), nil, &resume); err != nil {
		return nil, fmt.Errorf("get resume %s: %w", id, err)
	}

	return &resume, nil
}

func (c *Client) UpdateResume(ctx context.Context, id string, patch ResumePatch) (*model.Resume, error) {
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	var resume model.Resume
	if err := c.sendJSON(ctx, http.MethodPut, resumesPath+"/"+escape(id), patch, &resume); err != nil {
		return nil, fmt.Errorf("update resume %s: %w", id, err)
	}

	return &resume, nil
}

func (c *Client) DeleteResume(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("resume id is required")
	}

	if err := c.sendJSON(ctx, http.MethodDelete, resumesPath+"/"+escape(id), nil, nil); err != nil {
		return fmt.Errorf("delete resume %s: %w", id, err)
	}

	return nil
}

func (c *Client) SearchResumesByName(ctx context.Context, name string, page Page) ([]*model.Resume, error) {
	q := page.values()
	q.Set("name", name)

	var resumes []*model.Resume
	if err := c.getJSON(ctx, resumesPath+"/search/name", q, &resumes); err != nil {
		return nil, fmt.Errorf("search resumes: %w", err)
	}

	return resumes, nil
}

// ResumesByJob returns the resumes linked to a job in store order.
func (c *Client) ResumesByJob(ctx context.Context, jobID string, page Page) ([]*model.Resume, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job id is required")
	}

	var resumes []*model.Resume
	if err := c.getJSON(ctx, resumesPath+"/by-jd/"+escape(jobID), page.values(), &resumes); err != nil {
		return nil, fmt.Errorf("list resumes for job %s: %w", jobID, err)
	}

	return resumes, nil
}

// AssociateJob links an existing resume to another job.
func (c *Client) AssociateJob(ctx context.Context, resumeID, jobID string) error {
	path := fmt.Sprintf("%s/%s/associate-jd/%s", resumesPath, escape(resumeID), escape(jobID))
	if err := c.sendJSON(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("associate resume %s with job %s: %w", resumeID, jobID, err)
	}

	return nil
}

// DissociateJob removes a resume to job link.
func (c *Client) DissociateJob(ctx context.Context, resumeID, jobID string) error {
	path := fmt.Sprintf("%s/%s/associate-jd/%s", resumesPath, escape(resumeID), escape(jobID))
	if err := c.sendJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("dissociate resume %s from job %s: %w", resumeID, jobID, err)
	}

	return nil
}

func (c *Client) CountResumes(ctx context.Context) (int, error) {
	return c.count(ctx, resumesPath+"/stats/count", "resumes")
}
