package render

import (
	"strconv"
	"time"

	"github.com/spigell/cv-ranker/internal/candidates"
	"github.com/spigell/cv-ranker/internal/classify"
	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/utils"
)

const timeLayout = "2006-01-02 15:04"

// Candidates prints the rows of a board in the given order.
func (r *Renderer) Candidates(rows []candidates.Row) {
	if len(rows) == 0 {
		r.heading("No candidates yet. Upload the first resume to get started.")
		return
	}

	t := r.table([]string{"#", "ID", "Candidate", "Email", "Score", "Verdict", "Skills", "Status"})
	for i, row := range rows {
		name, email := "", ""
		if row.Resume != nil {
			name, email = row.Resume.CandidateName, row.Resume.Email
		}

		score, verdict, status := notAvailable, notAvailable, r.dim("not evaluated")
		skills := notAvailable
		if row.Evaluation != nil {
			score = r.Score(row.Evaluation.Score)
			verdict = r.Verdict(row.Evaluation.Verdict)
			skills = r.Percent(classify.SkillsMatch(row.Evaluation))
			status = r.paint(classify.TextBand(row.Evaluation.Score), "evaluated")
		}
		if row.Evaluating {
			status = r.paint(classify.BandNeutral, "evaluating...")
		}

		t.Append([]string{
			strconv.Itoa(i + 1),
			row.ID(),
			utils.TruncateForLog(name, cellWidth),
			email,
			score,
			verdict,
			skills,
			status,
		})
	}
	t.Render()
}

func (r *Renderer) Jobs(jobs []*model.JobDescription) {
	t := r.table([]string{"ID", "Title", "Description", "Created"})
	for _, j := range jobs {
		if j == nil {
			continue
		}
		t.Append([]string{
			j.ID,
			j.Title,
			utils.TruncateForLog(utils.OneLine(j.Text), cellWidth),
			formatTime(j.CreatedAt),
		})
	}
	t.Render()
}

func (r *Renderer) Resumes(resumes []*model.Resume) {
	t := r.table([]string{"ID", "Candidate", "Email", "Skills", "Jobs", "Created"})
	for _, res := range resumes {
		if res == nil {
			continue
		}
		t.Append([]string{
			res.ID,
			res.CandidateName,
			res.Email,
			utils.JoinLimit(res.Skills, listLimit),
			strconv.Itoa(len(res.JobIDs)),
			formatTime(res.CreatedAt),
		})
	}
	t.Render()
}

func (r *Renderer) Evaluations(evals []*model.Evaluation) {
	t := r.table([]string{"ID", "Resume", "Job", "Score", "Verdict", "Skills", "Evaluated"})
	for _, ev := range evals {
		if ev == nil {
			continue
		}
		t.Append([]string{
			ev.ID,
			ev.ResumeID,
			ev.JobID,
			r.Score(ev.Score),
			r.Verdict(ev.Verdict),
			r.Percent(classify.SkillsMatch(ev)),
			formatTime(ev.EvaluatedAt),
		})
	}
	t.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// Count is one labelled total.
type Count struct {
	Label string
	Value int
}

func (r *Renderer) Counts(counts []Count) {
	t := r.table([]string{"Record", "Count"})
	for _, c := range counts {
		t.Append([]string{c.Label, strconv.Itoa(c.Value)})
	}
	t.Render()
}
