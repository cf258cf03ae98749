package spaced_repetition

import (
	"errors"
	"math"
	"time"

	"github.com/helloimabid/compstudy/pkg/models"
)

// ErrInvalidQuality is returned when a grade is outside 0..5
var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// QualityResponse represents the quality of recall in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// IsCorrect reports whether the grade counts as successful recall
func (q QualityResponse) IsCorrect() bool {
	return q >= QualityCorrectDifficult
}

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Grades at or above this value count as successful recall
	PassThreshold QualityResponse
	// Maximum review interval in days
	MaxInterval int
}

// NewSM2 creates a new SM2 instance with default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: QualityCorrectDifficult,
		MaxInterval:   365,
	}
}

// Advance applies one graded review to the item's scheduling state.
func (sm *SM2) Advance(item *models.SpacedRepetitionItem, quality QualityResponse) error {
	return sm.AdvanceAt(item, quality, time.Now())
}

// AdvanceAt is Advance with an explicit review time, used by tests and
// callers that replay historical reviews.
func (sm *SM2) AdvanceAt(item *models.SpacedRepetitionItem, quality QualityResponse, now time.Time) error {
	if quality < QualityBlackout || quality > QualityPerfect {
		return ErrInvalidQuality
	}

	// The ease factor update applies regardless of pass or fail
	q := float64(quality)
	newEF := item.EaseFactor + (0.1 - (5.0-q)*(0.08+(5.0-q)*0.02))
	if newEF < models.MinEaseFactor {
		newEF = models.MinEaseFactor
	}
	item.EaseFactor = newEF

	if quality >= sm.PassThreshold {
		item.Repetitions++
		switch item.Repetitions {
		case 1:
			item.Interval = 1
		case 2:
			item.Interval = 6
		default:
			item.Interval = int(math.Round(float64(item.Interval) * newEF))
		}
		if item.Interval > sm.MaxInterval {
			item.Interval = sm.MaxInterval
		}
		item.CorrectReviews++
	} else {
		// Failed recall resets the repetition chain
		item.Repetitions = 0
		item.Interval = 1
	}

	finishReview(item, now)
	return nil
}

// finishReview applies the bookkeeping shared by both scheduling modes
func finishReview(item *models.SpacedRepetitionItem, now time.Time) {
	item.TotalReviews++
	reviewed := now
	item.LastReviewDate = &reviewed
	item.NextReviewDate = now.AddDate(0, 0, item.Interval)
	item.EmailReminderSent = false
	item.PushReminderSent = false
	item.UpdatedAt = now
}
