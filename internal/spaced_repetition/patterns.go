package spaced_repetition

import (
	"time"

	"github.com/helloimabid/compstudy/pkg/models"
)

// StandardPatternID is the preset used when an item's interval sequence
// cannot be resolved
const StandardPatternID = "standard"

// presetPatterns is the static catalog of fixed review cadences
var presetPatterns = []models.PresetPattern{
	{
		ID:          StandardPatternID,
		Name:        "Standard",
		Description: "Balanced long-term retention schedule",
		Intervals:   models.IntervalList{1, 4, 7, 14, 30, 60, 120},
	},
	{
		ID:          "intensive",
		Name:        "Intensive",
		Description: "Frequent early reviews for difficult material",
		Intervals:   models.IntervalList{1, 2, 3, 7, 15, 25, 40},
	},
	{
		ID:          "relaxed",
		Name:        "Relaxed",
		Description: "Fewer reviews, spread further apart",
		Intervals:   models.IntervalList{2, 7, 21, 60, 120},
	},
	{
		ID:          "exam",
		Name:        "Exam prep",
		Description: "Short cycle for upcoming exams",
		Intervals:   models.IntervalList{1, 2, 4, 7, 10},
	},
}

// Patterns returns the preset pattern catalog
func Patterns() []models.PresetPattern {
	out := make([]models.PresetPattern, len(presetPatterns))
	copy(out, presetPatterns)
	return out
}

// PatternByID looks up a preset pattern by id
func PatternByID(id string) (models.PresetPattern, bool) {
	for _, p := range presetPatterns {
		if p.ID == id {
			return p, true
		}
	}
	return models.PresetPattern{}, false
}

// ResolveIntervals returns the interval sequence an item reviews on:
// the named preset, the item's own custom sequence, or the standard
// preset when neither resolves to a usable sequence.
func ResolveIntervals(item *models.SpacedRepetitionItem) models.IntervalList {
	if item.PatternID != "" && item.PatternID != models.PatternIDCustom {
		if p, ok := PatternByID(item.PatternID); ok && len(p.Intervals) > 0 {
			return p.Intervals
		}
	}
	if len(item.CustomIntervals) > 0 {
		return item.CustomIntervals
	}
	standard, _ := PatternByID(StandardPatternID)
	return standard.Intervals
}

// AdvanceCustom applies one correct/incorrect review to an item in
// custom mode. There is no ease factor here: correct answers walk the
// interval sequence, incorrect answers restart it.
func (sm *SM2) AdvanceCustom(item *models.SpacedRepetitionItem, correct bool) error {
	return sm.AdvanceCustomAt(item, correct, time.Now())
}

// AdvanceCustomAt is AdvanceCustom with an explicit review time.
func (sm *SM2) AdvanceCustomAt(item *models.SpacedRepetitionItem, correct bool, now time.Time) error {
	intervals := ResolveIntervals(item)

	if correct {
		// The final interval repeats once the sequence is exhausted
		if item.CurrentStep < len(intervals)-1 {
			item.CurrentStep++
		} else {
			item.CurrentStep = len(intervals) - 1
		}
		item.CorrectReviews++
	} else {
		item.CurrentStep = 0
	}

	item.Interval = intervals[item.CurrentStep]
	finishReview(item, now)
	return nil
}
