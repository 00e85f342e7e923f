package display

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestProfileFor(t *testing.T) {
	calc := NewCalculator(Options{Breakpoints: Breakpoints{Small: 480, Medium: 1024, Large: 1440}})

	tests := []struct {
		name  string
		width float64
		want  Profile
	}{
		{name: "Narrow", width: 320, want: ProfileMobile},
		{name: "JustUnderSmall", width: 479, want: ProfileMobile},
		{name: "AtSmall", width: 480, want: ProfileTablet},
		{name: "Mid", width: 800, want: ProfileTablet},
		{name: "AtMedium", width: 1024, want: ProfileDesktop},
		{name: "Wide", width: 1920, want: ProfileDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.ProfileFor(tt.width); got != tt.want {
				t.Errorf("ProfileFor(%v) = %v, want %v", tt.width, got, tt.want)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	calc := NewCalculator(Options{Breakpoints: Breakpoints{Small: 480, Medium: 1024, Large: 1440}})

	// An 800x600 container with these breakpoints is
	// tablet-profile landscape.
	d := calc.Calculate(800, 600)
	if d.Profile != ProfileTablet {
		t.Errorf("profile = %v, want tablet", d.Profile)
	}
	if d.Orientation != OrientationLandscape {
		t.Errorf("orientation = %v, want landscape", d.Orientation)
	}
	if d.Radius <= 0 || d.OuterRadius <= d.Radius {
		t.Errorf("ring radii = (%v, %v), want 0 < radius < outer", d.Radius, d.OuterRadius)
	}

	// A 1200-wide container with medium at 1024 is desktop.
	if got := calc.Calculate(1200, 600).Profile; got != ProfileDesktop {
		t.Errorf("profile at 1200 = %v, want desktop", got)
	}

	// Below the minimums the box is clamped up.
	small := calc.Calculate(10, 10)
	if small.Width != DefaultMinWidth || small.Height != DefaultMinHeight {
		t.Errorf("clamped box = (%v, %v), want (%v, %v)",
			small.Width, small.Height, DefaultMinWidth, DefaultMinHeight)
	}

	// Portrait orientation.
	if got := calc.Calculate(600, 900).Orientation; got != OrientationPortrait {
		t.Errorf("orientation = %v, want portrait", got)
	}
}

func TestFluidText(t *testing.T) {
	calc := NewCalculator(Options{Breakpoints: Breakpoints{Small: 480, Medium: 1024, Large: 1440}})

	atSmall := calc.Calculate(480, 600).Text.Central
	mid := calc.Calculate(960, 600).Text.Central
	atLarge := calc.Calculate(1440, 900).Text.Central
	beyond := calc.Calculate(2400, 900).Text.Central

	if !(atSmall < mid && mid < atLarge) {
		t.Errorf("text should grow with width: %v, %v, %v", atSmall, mid, atLarge)
	}
	if beyond != atLarge {
		t.Errorf("text beyond large breakpoint = %v, want clamped to %v", beyond, atLarge)
	}

	// The interpolation midpoint sits halfway between base and max for the
	// active profile. 960 is tablet, base 16, max 24, halfway at t=0.5.
	wantMid := 16 + (24-16)*0.5
	if mid != wantMid {
		t.Errorf("mid = %v, want %v", mid, wantMid)
	}
}

func TestSignificantChange(t *testing.T) {
	calc := NewCalculator(Options{})
	base := calc.Calculate(800, 600)

	tests := []struct {
		name string
		next Dimensions
		want bool
	}{
		{name: "Identical", next: calc.Calculate(800, 600), want: false},
		{name: "SubThresholdNoise", next: calc.Calculate(803, 600), want: false},
		{name: "WidthDelta", next: calc.Calculate(810, 600), want: true},
		{name: "HeightDelta", next: calc.Calculate(800, 650), want: true},
		{name: "ProfileFlip", next: calc.Calculate(1200, 600), want: true},
		{name: "OrientationFlip", next: calc.Calculate(800, 820), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignificantChange(base, tt.next); got != tt.want {
				t.Errorf("SignificantChange = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResizerDebounce(t *testing.T) {
	calc := NewCalculator(Options{})
	logger := log.NewWithOptions(io.Discard, log.Options{})

	var mu sync.Mutex
	var calls []Dimensions
	r := NewResizer(calc, 800, 600, 20*time.Millisecond, logger, func(d Dimensions) {
		mu.Lock()
		calls = append(calls, d)
		mu.Unlock()
	})
	defer r.Stop()

	// A burst of notifications collapses into one recalculation.
	r.Notify(900, 600)
	r.Notify(1000, 600)
	r.Notify(1100, 700)
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	n := len(calls)
	var last Dimensions
	if n > 0 {
		last = calls[n-1]
	}
	mu.Unlock()

	if n != 1 {
		t.Fatalf("callbacks = %d, want 1", n)
	}
	if last.Width != 1100 || last.Height != 700 {
		t.Errorf("settled size = (%v, %v), want (1100, 700)", last.Width, last.Height)
	}
	if got := r.Current(); got.Width != 1100 {
		t.Errorf("Current width = %v, want 1100", got.Width)
	}
}

func TestResizerIgnoresNoise(t *testing.T) {
	calc := NewCalculator(Options{})
	logger := log.NewWithOptions(io.Discard, log.Options{})

	calls := 0
	r := NewResizer(calc, 800, 600, 10*time.Millisecond, logger, func(Dimensions) { calls++ })
	defer r.Stop()

	r.Notify(802, 601) // under 1% on both axes, same profile/orientation
	time.Sleep(50 * time.Millisecond)

	if calls != 0 {
		t.Errorf("callbacks = %d, want 0 for sub-threshold resize", calls)
	}
	if got := r.Current(); got.Width != 800 {
		t.Errorf("Current width = %v, want unchanged 800", got.Width)
	}
}

func TestResizerStopIsIdempotent(t *testing.T) {
	calc := NewCalculator(Options{})
	logger := log.NewWithOptions(io.Discard, log.Options{})
	r := NewResizer(calc, 800, 600, 10*time.Millisecond, logger, nil)

	r.Stop()
	r.Stop()
	r.Notify(1000, 1000) // ignored after stop
	time.Sleep(30 * time.Millisecond)

	if got := r.Current(); got.Width != 800 {
		t.Errorf("Current width = %v, want 800 after stop", got.Width)
	}
}
