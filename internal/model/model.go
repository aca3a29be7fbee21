package model

import (
	"fmt"
	"time"
)

// JobDescription is a posted job that resumes are evaluated against.
type JobDescription struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Text      string    `json:"jd_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resume is a candidate resume linked to zero or more jobs.
type Resume struct {
	ID            string           `json:"_id"`
	CandidateName string           `json:"candidate_name"`
	Email         string           `json:"email,omitempty"`
	Skills        []string         `json:"skills"`
	Education     []map[string]any `json:"education"`
	Experience    []map[string]any `json:"experience"`
	RawText       string           `json:"raw_text,omitempty"`
	JobIDs        []string         `json:"jd_ids"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// FirstJobID returns the first linked job or an empty string.
func (r *Resume) FirstJobID() string {
	if r == nil || len(r.JobIDs) == 0 {
		return ""
	}
	return r.JobIDs[0]
}

// CategoryBreakdown holds per-category scores. Any category may be missing.
type CategoryBreakdown struct {
	Skills        *int `json:"skills,omitempty"`
	Experience    *int `json:"experience,omitempty"`
	Education     *int `json:"education,omitempty"`
	JDAlignment   *int `json:"jd_alignment,omitempty"`
	Communication *int `json:"communication,omitempty"`

	// TechnicalSkills is the legacy name of Skills used by older store schemas.
	TechnicalSkills *int `json:"technical_skills,omitempty"`
}

// SkillsScore returns the skills category, falling back to the legacy key.
func (b CategoryBreakdown) SkillsScore() (int, bool) {
	switch {
	case b.Skills != nil:
		return *b.Skills, true
	case b.TechnicalSkills != nil:
		return *b.TechnicalSkills, true
	default:
		return 0, false
	}
}

// Category is a named breakdown entry.
type Category struct {
	Name  string
	Score int
}

// Categories returns the present categories in display order.
func (b CategoryBreakdown) Categories() []Category {
	out := make([]Category, 0, 5)
	if v, ok := b.SkillsScore(); ok {
		out = append(out, Category{Name: "skills", Score: v})
	}
	if b.Experience != nil {
		out = append(out, Category{Name: "experience", Score: *b.Experience})
	}
	if b.Education != nil {
		out = append(out, Category{Name: "education", Score: *b.Education})
	}
	if b.JDAlignment != nil {
		out = append(out, Category{Name: "jd_alignment", Score: *b.JDAlignment})
	}
	if b.Communication != nil {
		out = append(out, Category{Name: "communication", Score: *b.Communication})
	}
	return out
}

// Evaluation is a scored assessment of one resume against one job.
type Evaluation struct {
	ID            string            `json:"_id"`
	ResumeID      string            `json:"resume_id"`
	JobID         string            `json:"jd_id"`
	Score         int               `json:"score"`
	Verdict       string            `json:"verdict"`
	Breakdown     CategoryBreakdown `json:"category_breakdown"`
	MatchedSkills []string          `json:"matched_skills"`
	MissingSkills []string          `json:"missing_skills"`
	Pros          []string          `json:"pros"`
	Cons          []string          `json:"cons"`
	Feedback      string            `json:"feedback"`
	EvaluatedAt   time.Time         `json:"evaluated_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Validate checks the score range and that no skill is both matched and missing.
func (e *Evaluation) Validate() error {
	if e == nil {
		return fmt.Errorf("evaluation is nil")
	}
	if e.Score < 0 || e.Score > 100 {
		return fmt.Errorf("score %d is out of range [0,100]", e.Score)
	}

	matched := make(map[string]struct{}, len(e.MatchedSkills))
	for _, s := range e.MatchedSkills {
		matched[s] = struct{}{}
	}
	for _, s := range e.MissingSkills {
		if _, ok := matched[s]; ok {
			return fmt.Errorf("skill %q is both matched and missing", s)
		}
	}

	return nil
}

// FirstForJob returns the first evaluation targeting jobID, or nil.
// Evaluations are taken in the order the store returned them.
func FirstForJob(evals []*Evaluation, jobID string) *Evaluation {
	for _, ev := range evals {
		if ev != nil && ev.JobID == jobID {
			return ev
		}
	}
	return nil
}

// First returns the first non-nil evaluation, or nil.
func First(evals []*Evaluation) *Evaluation {
	for _, ev := range evals {
		if ev != nil {
			return ev
		}
	}
	return nil
}
