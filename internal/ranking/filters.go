package ranking

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/cv-ranker/internal/candidates"
	"github.com/spigell/cv-ranker/internal/classify"
)

type minScoreFilter struct {
	toggle
	min int
}

// NewMinScore drops evaluated rows scoring below min. Unevaluated rows are kept.
func NewMinScore(min int) Filter {
	return &minScoreFilter{min: min}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Validate() error {
	if f.min < 0 || f.min > 100 {
		return fmt.Errorf("minimum score %d is out of range [0,100]", f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, rows []candidates.Row) ([]candidates.Row, Step, error) {
	left := keep(rows, func(r candidates.Row) bool {
		return !r.Evaluated() || r.Evaluation.Score >= f.min
	})
	return left, stepOf(rows, left), nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum": strconv.Itoa(f.min)},
	}
}

type verdictFilter struct {
	toggle
	labels []string
	bands  map[classify.Band]struct{}
}

// NewVerdicts keeps evaluated rows whose verdict is one of labels. Labels are
// matched like VerdictBand does. Unevaluated rows are kept.
func NewVerdicts(labels ...string) Filter {
	f := &verdictFilter{labels: labels, bands: make(map[classify.Band]struct{}, len(labels))}
	for _, l := range labels {
		f.bands[classify.VerdictBand(l)] = struct{}{}
	}
	if len(labels) == 0 {
		f.Disable("no verdicts configured")
	}
	return f
}

func (f *verdictFilter) Name() string { return "verdict" }

func (f *verdictFilter) Validate() error {
	for _, l := range f.labels {
		if classify.VerdictBand(l).Scale() != "verdict" {
			return fmt.Errorf("unknown verdict %q", l)
		}
	}
	return nil
}

func (f *verdictFilter) Apply(_ context.Context, rows []candidates.Row) ([]candidates.Row, Step, error) {
	left := keep(rows, func(r candidates.Row) bool {
		if !r.Evaluated() {
			return true
		}
		_, ok := f.bands[classify.VerdictBand(r.Evaluation.Verdict)]
		return ok
	})
	return left, stepOf(rows, left), nil
}

func (f *verdictFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"verdicts": strings.Join(f.labels, ", ")},
	}
}

type evaluatedOnlyFilter struct {
	toggle
}

// NewEvaluatedOnly drops rows without an evaluation.
func NewEvaluatedOnly() Filter {
	return &evaluatedOnlyFilter{}
}

func (f *evaluatedOnlyFilter) Name() string { return "evaluated_only" }

func (f *evaluatedOnlyFilter) Validate() error { return nil }

func (f *evaluatedOnlyFilter) Apply(_ context.Context, rows []candidates.Row) ([]candidates.Row, Step, error) {
	left := keep(rows, candidates.Row.Evaluated)
	return left, stepOf(rows, left), nil
}

func (f *evaluatedOnlyFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

func keep(rows []candidates.Row, pred func(candidates.Row) bool) []candidates.Row {
	out := make([]candidates.Row, 0, len(rows))
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
