package scene

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default animation timing. Enters are slower than exits so new elements
// settle after the old ones have cleared.
const (
	EnterDuration = 300 * time.Millisecond
	MoveDuration  = 300 * time.Millisecond
	ExitDuration  = 200 * time.Millisecond
)

// AnimState is the lifecycle of one animation handle. An explicit enum
// rather than a done flag: a cancelled animation must stay distinguishable
// from one that ran to completion, because only completed exits remove
// their element.
type AnimState int

const (
	AnimRunning AnimState = iota
	AnimDone
	AnimCancelled
)

// Animation is a cancellable handle for one in-flight animation. The
// coordinator holds the handle and can cancel or inspect it at any time.
type Animation struct {
	id       string
	target   string
	start    time.Time
	duration time.Duration

	mu     sync.Mutex
	state  AnimState
	apply  func(progress float64)
	onDone func(cancelled bool)
}

// ID returns the unique animation id.
func (a *Animation) ID() string { return a.id }

// Target returns the element key the animation is driving.
func (a *Animation) Target() string { return a.target }

// State returns the current lifecycle state.
func (a *Animation) State() AnimState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Cancel stops the animation without running it to completion. Idempotent;
// cancelling a finished animation is a no-op.
func (a *Animation) Cancel() {
	a.mu.Lock()
	if a.state != AnimRunning {
		a.mu.Unlock()
		return
	}
	a.state = AnimCancelled
	done := a.onDone
	a.mu.Unlock()
	if done != nil {
		done(true)
	}
}

// step advances the animation to now and reports whether it is finished.
func (a *Animation) step(now time.Time) bool {
	a.mu.Lock()
	if a.state != AnimRunning {
		a.mu.Unlock()
		return true
	}
	p := float64(now.Sub(a.start)) / float64(a.duration)
	if p >= 1 {
		p = 1
		a.state = AnimDone
	}
	apply, done := a.apply, a.onDone
	a.mu.Unlock()

	if apply != nil {
		apply(easeInOutCubic(p))
	}
	if p >= 1 {
		if done != nil {
			done(false)
		}
		return true
	}
	return false
}

func easeInOutCubic(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	return 1 - math.Pow(-2*p+2, 3)/2
}

// Animator tracks every in-flight animation so the coordinator can advance
// or cancel them as a group. At most one animation runs per target: starting
// a new one cancels whatever was driving that target before, so rapid
// updates to the same element are last-writer-wins instead of queueing.
type Animator struct {
	mu     sync.Mutex
	active map[string]*Animation // keyed by target
}

// NewAnimator returns an empty animator.
func NewAnimator() *Animator {
	return &Animator{active: make(map[string]*Animation)}
}

// Start registers a new animation driving the element under target,
// cancelling any animation already running on that target. The apply
// callback receives eased progress in [0,1]; onDone fires exactly once
// with cancelled=true when the animation is cancelled before completion.
func (an *Animator) Start(target string, d time.Duration, apply func(float64), onDone func(cancelled bool)) *Animation {
	a := &Animation{
		id:       uuid.NewString(),
		target:   target,
		start:    time.Now(),
		duration: d,
		apply:    apply,
		onDone:   onDone,
	}
	an.mu.Lock()
	prev := an.active[target]
	an.active[target] = a
	an.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}
	return a
}

// Step advances all animations to now, dropping the ones that finished. A
// finished animation only vacates its slot if it still owns it; a newer
// animation on the same target must not be evicted by a stale one.
func (an *Animator) Step(now time.Time) {
	an.mu.Lock()
	anims := make([]*Animation, 0, len(an.active))
	for _, a := range an.active {
		anims = append(anims, a)
	}
	an.mu.Unlock()

	for _, a := range anims {
		if a.step(now) {
			an.mu.Lock()
			if an.active[a.target] == a {
				delete(an.active, a.target)
			}
			an.mu.Unlock()
		}
	}
}

// CancelAll cancels every in-flight animation. New transitions call this
// first so stale exits cannot fight the incoming enter pass.
func (an *Animator) CancelAll() {
	an.mu.Lock()
	anims := make([]*Animation, 0, len(an.active))
	for _, a := range an.active {
		anims = append(anims, a)
	}
	an.active = make(map[string]*Animation)
	an.mu.Unlock()

	for _, a := range anims {
		a.Cancel()
	}
}

// Active returns the number of in-flight animations.
func (an *Animator) Active() int {
	an.mu.Lock()
	defer an.mu.Unlock()
	return len(an.active)
}
