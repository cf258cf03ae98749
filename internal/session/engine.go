package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/helloimabid/compstudy/internal/spaced_repetition"
	"github.com/helloimabid/compstudy/pkg/models"
)

// Phase is the current state of a review session
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhasePresenting Phase = "presenting"
	PhaseRevealed   Phase = "revealed"
	PhaseGrading    Phase = "grading"
	PhaseComplete   Phase = "complete"
)

var (
	// ErrNotStarted is returned by transitions before Start has loaded a queue
	ErrNotStarted = errors.New("session not started")
	// ErrSessionComplete is returned by transitions on a finished session
	ErrSessionComplete = errors.New("session already complete")
	// ErrNotRevealed is returned when grading is attempted before reveal
	ErrNotRevealed = errors.New("answer not revealed yet")
	// ErrAlreadyRevealed is returned by Reveal outside the presenting phase
	ErrAlreadyRevealed = errors.New("answer already revealed")
	// ErrGradingInFlight is returned while a previous grade is still persisting
	ErrGradingInFlight = errors.New("a grading operation is already in flight")
	// ErrNoPendingPersist is returned by RetryPersist when nothing failed
	ErrNoPendingPersist = errors.New("no failed persist to retry")
	// ErrPersistPending is returned by Grade while a failed persist awaits retry
	ErrPersistPending = errors.New("previous grade not persisted yet, retry it first")
	// ErrWrongMode is returned when a grade does not match the item's review mode
	ErrWrongMode = errors.New("grade does not match the item's review mode")
)

// Store is the persistence contract the engine depends on
type Store interface {
	// ListDueItems returns active items due at or before now, ordered by
	// due date ascending, at most limit entries
	ListDueItems(ctx context.Context, userID string, limit int) ([]models.SpacedRepetitionItem, error)
	// UpdateItem writes the item's scheduling fields back
	UpdateItem(ctx context.Context, item *models.SpacedRepetitionItem) error
}

// Stats are the running counters for one session
type Stats struct {
	Reviewed  int
	Correct   int
	Incorrect int
}

// Accuracy returns correct/reviewed as a fraction, 0 for an empty session
func (s Stats) Accuracy() float64 {
	if s.Reviewed == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Reviewed)
}

// State is a snapshot of the session, safe to hand to callers
type State struct {
	Phase     Phase
	QueueSize int
	Index     int
	Stats     Stats
}

// Engine drives a single review session through its queue of due items.
// One engine instance serves one session; it is safe for concurrent use
// but grading is serialized: at most one persist call is in flight at a
// time, enforced here rather than by caller discipline.
type Engine struct {
	store Store
	sm2   *spaced_repetition.SM2
	now   func() time.Time

	mu       sync.Mutex
	phase    Phase
	queue    []models.SpacedRepetitionItem
	index    int
	stats    Stats
	inFlight bool
	// Graded item whose persist failed; committed by RetryPersist
	pending *models.SpacedRepetitionItem
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the engine's time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSM2 overrides the default scheduler settings
func WithSM2(sm *spaced_repetition.SM2) Option {
	return func(e *Engine) { e.sm2 = sm }
}

// New creates a session engine over the given store
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		sm2:   spaced_repetition.NewSM2(),
		now:   time.Now,
		phase: PhaseLoading,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start loads the due-item queue for the user. Items failing validation
// are dropped from the queue rather than failing the session. An empty
// queue completes the session immediately.
func (e *Engine) Start(ctx context.Context, userID string, maxReviews int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseLoading {
		return fmt.Errorf("session already started (phase %s)", e.phase)
	}
	if maxReviews <= 0 {
		maxReviews = 20
	}

	items, err := e.store.ListDueItems(ctx, userID, maxReviews)
	if err != nil {
		return fmt.Errorf("failed to load due items: %w", err)
	}

	queue := make([]models.SpacedRepetitionItem, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Printf("session: skipping malformed item: %v", err)
			continue
		}
		queue = append(queue, item)
	}

	e.queue = queue
	e.index = 0
	if len(e.queue) == 0 {
		e.phase = PhaseComplete
	} else {
		e.phase = PhasePresenting
	}
	return nil
}

// Current returns the item being presented, if any
func (e *Engine) Current() (models.SpacedRepetitionItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseLoading || e.phase == PhaseComplete || e.index >= len(e.queue) {
		return models.SpacedRepetitionItem{}, false
	}
	return e.queue[e.index], true
}

// Reveal shows the answer for the current item
func (e *Engine) Reveal() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.phase {
	case PhaseLoading:
		return ErrNotStarted
	case PhaseComplete:
		return ErrSessionComplete
	case PhasePresenting:
		e.phase = PhaseRevealed
		return nil
	default:
		return ErrAlreadyRevealed
	}
}

// Grade applies an SM-2 quality grade (0..5) to the current item. For
// items in custom mode the grade is collapsed to correct/incorrect.
func (e *Engine) Grade(ctx context.Context, quality spaced_repetition.QualityResponse) error {
	return e.grade(ctx, func(item *models.SpacedRepetitionItem, now time.Time) (bool, error) {
		if item.ReviewMode == models.ReviewModeCustom {
			return quality.IsCorrect(), e.sm2.AdvanceCustomAt(item, quality.IsCorrect(), now)
		}
		return quality.IsCorrect(), e.sm2.AdvanceAt(item, quality, now)
	})
}

// GradeBinary applies a correct/incorrect grade to the current item.
// Only valid for items in custom mode; SM-2 items need a quality grade.
func (e *Engine) GradeBinary(ctx context.Context, correct bool) error {
	return e.grade(ctx, func(item *models.SpacedRepetitionItem, now time.Time) (bool, error) {
		if item.ReviewMode != models.ReviewModeCustom {
			return false, ErrWrongMode
		}
		return correct, e.sm2.AdvanceCustomAt(item, correct, now)
	})
}

// grade runs one grading transition: schedule, count, persist, advance.
// The scheduler output is committed to session counters before the
// persist call; a persist failure leaves the session in the grading
// phase so the exact same write can be retried without re-grading.
func (e *Engine) grade(ctx context.Context, apply func(*models.SpacedRepetitionItem, time.Time) (bool, error)) error {
	e.mu.Lock()
	switch e.phase {
	case PhaseLoading:
		e.mu.Unlock()
		return ErrNotStarted
	case PhaseComplete:
		e.mu.Unlock()
		return ErrSessionComplete
	case PhasePresenting:
		e.mu.Unlock()
		return ErrNotRevealed
	case PhaseGrading:
		pending := e.pending != nil
		e.mu.Unlock()
		if pending {
			return ErrPersistPending
		}
		return ErrGradingInFlight
	}

	item := e.queue[e.index]
	correct, err := apply(&item, e.now())
	if err != nil {
		e.mu.Unlock()
		return err
	}

	e.inFlight = true
	e.phase = PhaseGrading
	e.stats.Reviewed++
	if correct {
		e.stats.Correct++
	} else {
		e.stats.Incorrect++
	}
	e.mu.Unlock()

	persistErr := e.persistWithRetry(ctx, &item)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if e.phase == PhaseComplete {
		// Abandoned while persisting; the write stands, the session is over
		return nil
	}
	if persistErr != nil {
		e.pending = &item
		return fmt.Errorf("failed to persist graded item %s: %w", item.ID, persistErr)
	}
	e.commit(item)
	return nil
}

// RetryPersist retries the persist call for a grade whose write failed
func (e *Engine) RetryPersist(ctx context.Context) error {
	e.mu.Lock()
	if e.pending == nil {
		e.mu.Unlock()
		return ErrNoPendingPersist
	}
	if e.inFlight {
		e.mu.Unlock()
		return ErrGradingInFlight
	}
	item := *e.pending
	e.inFlight = true
	e.mu.Unlock()

	persistErr := e.persistWithRetry(ctx, &item)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if e.phase == PhaseComplete {
		return nil
	}
	if persistErr != nil {
		return fmt.Errorf("failed to persist graded item %s: %w", item.ID, persistErr)
	}
	e.pending = nil
	e.commit(item)
	return nil
}

// persistWithRetry writes the item, retrying once on failure. Grading is
// interactive and touches a single document, so one immediate retry is
// enough; anything beyond that is surfaced to the caller.
func (e *Engine) persistWithRetry(ctx context.Context, item *models.SpacedRepetitionItem) error {
	err := e.store.UpdateItem(ctx, item)
	if err == nil {
		return nil
	}
	log.Printf("session: persist failed for item %s, retrying: %v", item.ID, err)
	return e.store.UpdateItem(ctx, item)
}

// commit writes the graded item back into the queue and advances.
// Caller holds e.mu.
func (e *Engine) commit(item models.SpacedRepetitionItem) {
	e.queue[e.index] = item
	e.index++
	if e.index >= len(e.queue) {
		e.phase = PhaseComplete
	} else {
		e.phase = PhasePresenting
	}
}

// Abandon ends the session early. Grades already persisted stay
// persisted; nothing else is written.
func (e *Engine) Abandon() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = PhaseComplete
	e.pending = nil
}

// State returns a snapshot of the session
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Phase:     e.phase,
		QueueSize: len(e.queue),
		Index:     e.index,
		Stats:     e.stats,
	}
}

// Stats returns the running session counters
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}
