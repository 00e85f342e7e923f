package geometry

import (
	"math"
	"strings"
)

const (
	// longTextDefault is the character threshold past which a label is
	// considered for a two-line split when no override is configured.
	longTextDefault = 12

	// rebalanceRatio triggers moving one word to the second line when the
	// first half would be disproportionately longer than the second.
	rebalanceRatio = 1.5
)

// SplitLabel breaks a label onto at most two lines. Labels at or under the
// longText threshold (or with a single word) stay on one line. Longer labels
// split at the median word boundary; if the first half ends up more than
// 1.5× the length of the second, one word shifts toward the shorter half.
//
// A non-positive longText falls back to the default threshold.
func SplitLabel(text string, longText int) []string {
	if longText <= 0 {
		longText = longTextDefault
	}
	words := strings.Fields(text)
	if len(words) < 2 || len([]rune(text)) <= longText {
		if len(words) == 0 {
			return nil
		}
		return []string{strings.Join(words, " ")}
	}

	split := len(words) / 2
	if len(words)%2 != 0 {
		split++ // median boundary: first half takes the middle word
	}
	first := strings.Join(words[:split], " ")
	second := strings.Join(words[split:], " ")

	// Rebalance one word toward the shorter half.
	if split > 1 && float64(len(first)) > rebalanceRatio*float64(len(second)) {
		split--
		first = strings.Join(words[:split], " ")
		second = strings.Join(words[split:], " ")
	}
	return []string{first, second}
}

// LabelOffset returns the radial clearance between an outer-ring node and
// its label anchor. The angle-dependent term pushes labels near the left and
// right extremes of the ring further out, where horizontal text would
// otherwise collide with the ring itself. Angle 0 points straight up, so the
// left and right extremes sit at odd multiples of π/2 where |sin| peaks.
//
// offset = base + side·|sin(angle)|^1.5
func LabelOffset(angle, base, side float64) float64 {
	return base + side*math.Pow(math.Abs(math.Sin(angle)), 1.5)
}
