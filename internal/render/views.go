package render

import (
	"fmt"
	"strings"

	"github.com/spigell/cv-ranker/internal/classify"
	"github.com/spigell/cv-ranker/internal/detail"
	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/store"
)

// Detail prints the single-candidate view.
func (r *Renderer) Detail(v *detail.View) {
	if v == nil || v.Resume == nil {
		r.heading("Candidate not found.")
		return
	}

	res := v.Resume
	r.heading(res.CandidateName)
	email := res.Email
	if email == "" {
		email = "No email provided"
	}
	fmt.Fprintf(r.w, "  %s\n", email)
	if len(res.Skills) > 0 {
		fmt.Fprintf(r.w, "  Skills: %s\n", strings.Join(res.Skills, ", "))
	}

	if v.Job != nil {
		fmt.Fprintf(r.w, "\n  Job: %s (%s)\n", v.Job.Title, v.Job.ID)
	} else if v.JobID != "" {
		fmt.Fprintf(r.w, "\n  Job: %s\n", v.JobID)
	}

	fmt.Fprintln(r.w)
	if v.Evaluation == nil {
		fmt.Fprintln(r.w, "  This candidate has not been evaluated yet.")
		return
	}

	r.Evaluation(v.Evaluation)
}

// Evaluation prints one evaluation with its breakdown.
func (r *Renderer) Evaluation(ev *model.Evaluation) {
	fmt.Fprintf(r.w, "  Score:   %s\n", r.paint(classify.TextBand(ev.Score), fmt.Sprintf("%d/100", ev.Score)))
	fmt.Fprintf(r.w, "  Verdict: %s\n", r.Verdict(ev.Verdict))
	fmt.Fprintf(r.w, "  Skills match: %s\n", r.Percent(classify.SkillsMatch(ev)))

	if cats := ev.Breakdown.Categories(); len(cats) > 0 {
		fmt.Fprintln(r.w, "\n  Breakdown:")
		for _, c := range cats {
			fmt.Fprintf(r.w, "    %-14s %s\n", c.Name, r.Bar(c.Score))
		}
	}

	r.list("Matched skills", ev.MatchedSkills, classify.BandPositive)
	r.list("Missing skills", ev.MissingSkills, classify.BandNegative)
	r.list("Pros", ev.Pros, classify.BandPositive)
	r.list("Cons", ev.Cons, classify.BandNegative)

	if ev.Feedback != "" {
		fmt.Fprintf(r.w, "\n  Feedback:\n    %s\n", ev.Feedback)
	}
}

func (r *Renderer) list(title string, items []string, band classify.Band) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(r.w, "\n  %s:\n", title)
	for _, item := range items {
		fmt.Fprintf(r.w, "    %s %s\n", r.paint(band, "•"), item)
	}
}

// Health prints probe results. Failed probes keep their message.
func (r *Renderer) Health(name string, h store.HealthStatus) {
	band := classify.BandNegative
	if h.OK() {
		band = classify.BandPositive
	}

	line := fmt.Sprintf("%-10s %s", name, r.paint(band, h.Status))
	if h.Version != "" {
		line += " v" + h.Version
	}
	if h.Message != "" {
		line += "  " + h.Message
	}
	fmt.Fprintln(r.w, line)
}
