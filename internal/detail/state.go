// Package detail loads the single-candidate view.
//
// Navigation from a candidate list carries what the list already knows about
// the evaluation, so the view only fetches evaluations on direct entry.
package detail

import "github.com/spigell/cv-ranker/internal/model"

// Carried is state attached to a navigation. A nil Carried means nothing was
// carried and the loader fetches the evaluation itself.
type Carried interface {
	carried()
}

// WithEvaluation carries a known evaluation.
type WithEvaluation struct {
	Evaluation *model.Evaluation
}

// NotEvaluated carries the knowledge that the candidate has no evaluation.
type NotEvaluated struct{}

func (WithEvaluation) carried() {}
func (NotEvaluated) carried()   {}

// Carry builds the state for a list row.
func Carry(ev *model.Evaluation) Carried {
	if ev == nil {
		return NotEvaluated{}
	}
	return WithEvaluation{Evaluation: ev}
}

// Request opens the detail view of one resume. JobID is the job the
// navigation came from, if any.
type Request struct {
	ResumeID string
	JobID    string
	State    Carried
}
