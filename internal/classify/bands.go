// Package classify maps scores and verdict labels onto display bands.
package classify

import "strings"

// Band is a discrete classification of a score or verdict.
// Bands of one scale are ordered from worst to best.
type Band int

const (
	BandDefault Band = iota

	// Color scale.
	BandCritical
	BandWarning
	BandCaution
	BandMid
	BandStrong
	BandLightest

	// Text scale.
	BandNegative
	BandNeutral
	BandPositive

	// Verdict scale.
	BandWeakMatch
	BandModerateMatch
	BandGoodMatch
	BandStrongMatch
)

var bandNames = map[Band]string{
	BandDefault:       "default",
	BandCritical:      "critical",
	BandWarning:       "warning",
	BandCaution:       "caution",
	BandMid:           "mid",
	BandStrong:        "strong",
	BandLightest:      "lightest",
	BandNegative:      "negative",
	BandNeutral:       "neutral",
	BandPositive:      "positive",
	BandWeakMatch:     "weak match",
	BandModerateMatch: "moderate match",
	BandGoodMatch:     "good match",
	BandStrongMatch:   "strong match",
}

func (b Band) String() string {
	if name, ok := bandNames[b]; ok {
		return name
	}
	return "unknown"
}

// Scale names the scale the band belongs to.
func (b Band) Scale() string {
	switch {
	case b >= BandCritical && b <= BandLightest:
		return "color"
	case b >= BandNegative && b <= BandPositive:
		return "text"
	case b >= BandWeakMatch && b <= BandStrongMatch:
		return "verdict"
	default:
		return "none"
	}
}

type threshold struct {
	min  int
	band Band
}

// Highest threshold first.
var (
	colorThresholds = []threshold{
		{81, BandLightest},
		{61, BandStrong},
		{41, BandMid},
		{21, BandCaution},
		{11, BandWarning},
	}
	textThresholds = []threshold{
		{80, BandPositive},
		{60, BandNeutral},
	}
)

func classify(score int, thresholds []threshold, fallback Band) Band {
	for _, th := range thresholds {
		if score >= th.min {
			return th.band
		}
	}
	return fallback
}

// ColorBand classifies a score on the six-step color scale.
func ColorBand(score int) Band {
	return classify(score, colorThresholds, BandCritical)
}

// TextBand classifies a score on the three-step text scale.
// Its boundaries (80, 60) differ from the color scale (81, 61).
func TextBand(score int) Band {
	return classify(score, textThresholds, BandNegative)
}

var verdicts = map[string]Band{
	"strong match":   BandStrongMatch,
	"good match":     BandGoodMatch,
	"moderate match": BandModerateMatch,
	"weak match":     BandWeakMatch,
}

// VerdictBand matches the lower-cased label exactly. Unknown labels map to BandDefault.
func VerdictBand(label string) Band {
	if band, ok := verdicts[strings.ToLower(label)]; ok {
		return band
	}
	return BandDefault
}
