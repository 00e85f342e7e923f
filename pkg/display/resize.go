package display

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultDebounceDelay is the resize debounce interval.
const DefaultDebounceDelay = 250 * time.Millisecond

// guardState makes overlapping recalculations unrepresentable: a resize
// flush only runs from the idle state.
type guardState int

const (
	guardIdle guardState = iota
	guardInFlight
)

// Resizer debounces container size notifications and recomputes dimensions
// when the noise settles. Sub-threshold changes (see SignificantChange) are
// swallowed so animation work isn't thrashed by pixel-level jitter.
//
// Notifications may arrive from any goroutine. The onChange callback runs on
// the debounce timer's goroutine, never concurrently with itself.
type Resizer struct {
	calc     *Calculator
	delay    time.Duration
	logger   *log.Logger
	onChange func(Dimensions)

	mu      sync.Mutex
	timer   *time.Timer
	state   guardState
	current Dimensions
	pendW   float64
	pendH   float64
	stopped bool
}

// NewResizer creates a resizer around the calculator. The initial dimensions
// are computed immediately from the given box; onChange is not invoked for
// that first value.
func NewResizer(calc *Calculator, width, height float64, delay time.Duration, logger *log.Logger, onChange func(Dimensions)) *Resizer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resizer{
		calc:     calc,
		delay:    delay,
		logger:   logger,
		onChange: onChange,
		current:  calc.Calculate(width, height),
	}
}

// Current returns the most recently settled dimensions.
func (r *Resizer) Current() Dimensions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Notify records a new container size and (re)arms the debounce timer.
// Rapid sequences of notifications collapse into a single recalculation.
func (r *Resizer) Notify(width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.pendW, r.pendH = width, height
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, r.flush)
}

// flush recomputes dimensions for the last notified size. A notification
// arriving while a flush is already running is dropped rather than queued;
// the next Notify re-arms the timer.
func (r *Resizer) flush() {
	r.mu.Lock()
	if r.stopped || r.state != guardIdle {
		r.mu.Unlock()
		return
	}
	r.state = guardInFlight
	w, h := r.pendW, r.pendH
	old := r.current
	r.mu.Unlock()

	next := r.calc.Calculate(w, h)

	r.mu.Lock()
	r.state = guardIdle
	if !SignificantChange(old, next) {
		r.mu.Unlock()
		r.logger.Debug("resize below threshold, ignored",
			"width", next.Width, "height", next.Height)
		return
	}
	r.current = next
	cb := r.onChange
	r.mu.Unlock()

	r.logger.Debug("dimensions recomputed",
		"width", next.Width,
		"height", next.Height,
		"profile", next.Profile,
		"orientation", next.Orientation)

	if cb != nil {
		cb(next)
	}
}

// Stop cancels any pending debounce. Safe to call more than once.
func (r *Resizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
