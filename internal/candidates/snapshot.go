package candidates

import "github.com/spigell/cv-ranker/internal/model"

// Snapshot is an immutable copy of the board.
type Snapshot struct {
	JobID   string
	Loading bool
	Rows    []Row
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := make([]Row, len(b.rows))
	copy(rows, b.rows)

	return Snapshot{
		JobID:   b.jobID,
		Loading: b.loading,
		Rows:    rows,
	}
}

// Candidates returns the resumes in display order.
func (s Snapshot) Candidates() []*model.Resume {
	out := make([]*model.Resume, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Resume
	}
	return out
}

// EvaluatingFlags is index-aligned with Candidates.
func (s Snapshot) EvaluatingFlags() []bool {
	out := make([]bool, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Evaluating
	}
	return out
}

// Row returns the row of a resume.
func (s Snapshot) Row(resumeID string) (Row, bool) {
	for _, r := range s.Rows {
		if r.ID() == resumeID {
			return r, true
		}
	}
	return Row{}, false
}

// Counts returns the number of rows, evaluated rows and rows being evaluated.
func (s Snapshot) Counts() (total, evaluated, evaluating int) {
	for _, r := range s.Rows {
		if r.Evaluated() {
			evaluated++
		}
		if r.Evaluating {
			evaluating++
		}
	}
	return len(s.Rows), evaluated, evaluating
}
