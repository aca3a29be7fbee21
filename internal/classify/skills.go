package classify

import "github.com/spigell/cv-ranker/internal/model"

// SkillsMatchPercent returns round(100*matched/(matched+missing)) with halves
// rounded up. The second result is false when both counts are zero; the
// percentage is then undefined rather than zero.
func SkillsMatchPercent(matched, missing int) (int, bool) {
	if matched < 0 {
		matched = 0
	}
	if missing < 0 {
		missing = 0
	}

	total := matched + missing
	if total == 0 {
		return 0, false
	}

	return (200*matched + total) / (2 * total), true
}

// SkillsMatch prefers the skills category supplied by the provider and falls
// back to the matched/missing lists.
func SkillsMatch(ev *model.Evaluation) (int, bool) {
	if ev == nil {
		return 0, false
	}
	if v, ok := ev.Breakdown.SkillsScore(); ok {
		return v, true
	}
	return SkillsMatchPercent(len(ev.MatchedSkills), len(ev.MissingSkills))
}
