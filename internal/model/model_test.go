package model

import "testing"

func intPtr(v int) *int { return &v }

func TestFirstForJob(t *testing.T) {
	t.Parallel()

	evals := []*Evaluation{
		{ID: "e1", JobID: "other"},
		nil,
		{ID: "e2", JobID: "job"},
		{ID: "e3", JobID: "job"},
	}

	got := FirstForJob(evals, "job")
	if got == nil || got.ID != "e2" {
		t.Fatalf("expected first matching evaluation e2, got %+v", got)
	}

	if got := FirstForJob(evals, "missing"); got != nil {
		t.Fatalf("expected nil for unknown job, got %+v", got)
	}

	if got := FirstForJob(nil, "job"); got != nil {
		t.Fatalf("expected nil for empty list, got %+v", got)
	}
}

func TestFirst(t *testing.T) {
	t.Parallel()

	if got := First([]*Evaluation{nil, {ID: "a"}}); got == nil || got.ID != "a" {
		t.Fatalf("expected a, got %+v", got)
	}
	if got := First(nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestEvaluationValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ev      *Evaluation
		wantErr bool
	}{
		{name: "valid", ev: &Evaluation{Score: 70, MatchedSkills: []string{"go"}, MissingSkills: []string{"rust"}}},
		{name: "lower bound", ev: &Evaluation{Score: 0}},
		{name: "upper bound", ev: &Evaluation{Score: 100}},
		{name: "negative score", ev: &Evaluation{Score: -1}, wantErr: true},
		{name: "score above range", ev: &Evaluation{Score: 101}, wantErr: true},
		{name: "overlapping skills", ev: &Evaluation{Score: 50, MatchedSkills: []string{"go"}, MissingSkills: []string{"go"}}, wantErr: true},
		{name: "nil", ev: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.ev.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBreakdownSkillsScoreFallsBackToLegacyKey(t *testing.T) {
	t.Parallel()

	b := CategoryBreakdown{TechnicalSkills: intPtr(40)}
	if v, ok := b.SkillsScore(); !ok || v != 40 {
		t.Fatalf("expected legacy skills 40, got %d %v", v, ok)
	}

	b.Skills = intPtr(90)
	if v, ok := b.SkillsScore(); !ok || v != 90 {
		t.Fatalf("expected skills 90 to win, got %d %v", v, ok)
	}

	if _, ok := (CategoryBreakdown{}).SkillsScore(); ok {
		t.Fatalf("expected absent skills score")
	}
}

func TestBreakdownCategoriesSkipsMissing(t *testing.T) {
	t.Parallel()

	b := CategoryBreakdown{Skills: intPtr(80), Education: intPtr(50)}
	cats := b.Categories()
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].Name != "skills" || cats[1].Name != "education" {
		t.Fatalf("unexpected order: %+v", cats)
	}
}

func TestResumeJobLinks(t *testing.T) {
	t.Parallel()

	var nilResume *Resume
	if nilResume.FirstJobID() != "" {
		t.Fatalf("expected empty job id for nil resume")
	}

	r := &Resume{JobIDs: []string{"j1", "j2"}}
	if r.FirstJobID() != "j1" {
		t.Fatalf("expected j1, got %q", r.FirstJobID())
	}
}
