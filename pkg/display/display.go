// Package display computes responsive dimensions for the radial diagram.
//
// A container's pixel box selects a profile (mobile, tablet, desktop) via
// width breakpoints, and the profile plus the box produce a complete
// Dimensions value. Dimensions are always recomputed wholesale - callers
// never patch individual fields, so a half-updated size can't be observed.
package display

import "math"

// Profile is a named bundle of size and typography settings selected by
// container width.
type Profile string

// Profiles, narrowest first.
const (
	ProfileMobile  Profile = "mobile"
	ProfileTablet  Profile = "tablet"
	ProfileDesktop Profile = "desktop"
)

// Orientation of the container box.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Breakpoints are the width thresholds separating profiles and bounding the
// fluid text interpolation range.
type Breakpoints struct {
	Small  float64 `json:"small" bson:"small" toml:"small"`
	Medium float64 `json:"medium" bson:"medium" toml:"medium"`
	Large  float64 `json:"large" bson:"large" toml:"large"`
}

// TextSizes holds the font sizes for the three node tiers.
type TextSizes struct {
	Central   float64 `json:"central" bson:"central"`
	Primary   float64 `json:"primary" bson:"primary"`
	Secondary float64 `json:"secondary" bson:"secondary"`
}

// NodeSizes holds the node radii for the three tiers.
type NodeSizes struct {
	Central   float64 `json:"central" bson:"central"`
	Primary   float64 `json:"primary" bson:"primary"`
	Secondary float64 `json:"secondary" bson:"secondary"`
}

// IndicatorSizes holds the outer-ring indicator radii.
type IndicatorSizes struct {
	Inner float64 `json:"inner" bson:"inner"`
	Outer float64 `json:"outer" bson:"outer"`
}

// Dimensions is the complete responsive geometry for one container size.
// Values are immutable once computed; a resize produces a fresh value.
type Dimensions struct {
	Width       float64        `json:"width" bson:"width"`
	Height      float64        `json:"height" bson:"height"`
	Radius      float64        `json:"radius" bson:"radius"`
	OuterRadius float64        `json:"outer_radius" bson:"outer_radius"`
	Text        TextSizes      `json:"text" bson:"text"`
	Nodes       NodeSizes      `json:"nodes" bson:"nodes"`
	Indicators  IndicatorSizes `json:"indicators" bson:"indicators"`
	Profile     Profile        `json:"profile" bson:"profile"`
	Orientation Orientation    `json:"orientation" bson:"orientation"`
}

// Options configures the calculator. Zero values fall back to defaults via
// ValidateAndSetDefaults, mirroring how the rest of the module treats
// configuration.
type Options struct {
	Breakpoints Breakpoints
	MinWidth    float64
	MinHeight   float64

	// Base text sizes per profile and the shared fluid maximum.
	BaseText map[Profile]TextSizes
	MaxText  TextSizes

	// Node radii per profile.
	Nodes map[Profile]NodeSizes

	Indicators IndicatorSizes

	// RingRatio scales the primary ring radius relative to the smaller
	// container dimension; OuterRatio does the same for the secondary ring.
	RingRatio  float64
	OuterRatio float64
}

// Default geometry values.
const (
	DefaultSmallBreakpoint  = 480.0
	DefaultMediumBreakpoint = 1024.0
	DefaultLargeBreakpoint  = 1440.0
	DefaultMinWidth         = 320.0
	DefaultMinHeight        = 240.0
	DefaultRingRatio        = 0.28
	DefaultOuterRatio       = 0.42
)

// ValidateAndSetDefaults fills in any unset option with its default.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() {
	if o.Breakpoints.Small == 0 {
		o.Breakpoints.Small = DefaultSmallBreakpoint
	}
	if o.Breakpoints.Medium == 0 {
		o.Breakpoints.Medium = DefaultMediumBreakpoint
	}
	if o.Breakpoints.Large == 0 {
		o.Breakpoints.Large = DefaultLargeBreakpoint
	}
	if o.MinWidth == 0 {
		o.MinWidth = DefaultMinWidth
	}
	if o.MinHeight == 0 {
		o.MinHeight = DefaultMinHeight
	}
	if o.RingRatio == 0 {
		o.RingRatio = DefaultRingRatio
	}
	if o.OuterRatio == 0 {
		o.OuterRatio = DefaultOuterRatio
	}
	if o.BaseText == nil {
		o.BaseText = map[Profile]TextSizes{
			ProfileMobile:  {Central: 14, Primary: 11, Secondary: 9},
			ProfileTablet:  {Central: 16, Primary: 12, Secondary: 10},
			ProfileDesktop: {Central: 18, Primary: 14, Secondary: 11},
		}
	}
	if o.MaxText == (TextSizes{}) {
		o.MaxText = TextSizes{Central: 24, Primary: 18, Secondary: 14}
	}
	if o.Nodes == nil {
		o.Nodes = map[Profile]NodeSizes{
			ProfileMobile:  {Central: 28, Primary: 18, Secondary: 6},
			ProfileTablet:  {Central: 34, Primary: 22, Secondary: 7},
			ProfileDesktop: {Central: 40, Primary: 26, Secondary: 8},
		}
	}
	if o.Indicators == (IndicatorSizes{}) {
		o.Indicators = IndicatorSizes{Inner: 4, Outer: 10}
	}
}

// Calculator turns container sizes into Dimensions. It is stateless apart
// from its options and safe for concurrent use.
type Calculator struct {
	opts Options
}

// NewCalculator creates a calculator, applying defaults to unset options.
func NewCalculator(opts Options) *Calculator {
	opts.ValidateAndSetDefaults()
	return &Calculator{opts: opts}
}

// ProfileFor selects the active profile for a container width.
func (c *Calculator) ProfileFor(width float64) Profile {
	switch {
	case width < c.opts.Breakpoints.Small:
		return ProfileMobile
	case width < c.opts.Breakpoints.Medium:
		return ProfileTablet
	default:
		return ProfileDesktop
	}
}

// Calculate computes the full dimension set for a container box. Widths and
// heights below the configured minimums are clamped up before anything else
// derives from them.
func (c *Calculator) Calculate(width, height float64) Dimensions {
	width = math.Max(width, c.opts.MinWidth)
	height = math.Max(height, c.opts.MinHeight)

	profile := c.ProfileFor(width)
	orientation := OrientationLandscape
	if height > width {
		orientation = OrientationPortrait
	}

	short := math.Min(width, height)
	base := c.opts.BaseText[profile]

	return Dimensions{
		Width:       width,
		Height:      height,
		Radius:      short * c.opts.RingRatio,
		OuterRadius: short * c.opts.OuterRatio,
		Text: TextSizes{
			Central:   c.fluidSize(width, base.Central, c.opts.MaxText.Central),
			Primary:   c.fluidSize(width, base.Primary, c.opts.MaxText.Primary),
			Secondary: c.fluidSize(width, base.Secondary, c.opts.MaxText.Secondary),
		},
		Nodes:       c.opts.Nodes[profile],
		Indicators:  c.opts.Indicators,
		Profile:     profile,
		Orientation: orientation,
	}
}

// fluidSize interpolates linearly between base and max as the container
// width moves from the small to the large breakpoint, clamped to [base, max].
func (c *Calculator) fluidSize(width, base, max float64) float64 {
	small, large := c.opts.Breakpoints.Small, c.opts.Breakpoints.Large
	if large <= small {
		return base
	}
	t := (width - small) / (large - small)
	t = math.Max(0, math.Min(1, t))
	return base + (max-base)*t
}

// significantDelta is the relative size change below which a resize is
// treated as noise and ignored.
const significantDelta = 0.01

// SignificantChange reports whether moving from old to new dimensions
// should trigger a full scene update: at least a 1% delta in width or
// height, or a profile or orientation flip.
func SignificantChange(old, new Dimensions) bool {
	if old.Profile != new.Profile || old.Orientation != new.Orientation {
		return true
	}
	if old.Width == 0 || old.Height == 0 {
		return true
	}
	dw := math.Abs(new.Width-old.Width) / old.Width
	dh := math.Abs(new.Height-old.Height) / old.Height
	return dw >= significantDelta || dh >= significantDelta
}
