package face

import "time"

// MouthMode selects how the renderer draws the mouth.
type MouthMode string

const (
	// MouthModeBar renders the mouth as a filled bar whose geometry tracks
	// openness.
	MouthModeBar MouthMode = "bar"
	// MouthModeGlyph renders a fixed text label instead of the bar.
	MouthModeGlyph MouthMode = "glyph"
)

// Geometry holds the on-screen eye/mouth dimensions the resolver scales
// against. The renderer owns these numbers; the engine only needs the bounds
// to clamp pupil displacement and derive visibility.
type Geometry struct {
	EyeWidthPx     int
	EyeHeightMinPx int
	EyeHeightMaxPx int
	PupilRadiusPx  int

	// Margins keeping the pupil inside the eye outline.
	PupilMarginXPx int
	PupilMarginYPx int
	// Extra height beyond the pupil diameter required for the pupil to show.
	PupilVisibleMarginPx int
}

// DefaultGeometry matches the device's 120px eye rig.
func DefaultGeometry() Geometry {
	return Geometry{
		EyeWidthPx:           120,
		EyeHeightMinPx:       18,
		EyeHeightMaxPx:       96,
		PupilRadiusPx:        14,
		PupilMarginXPx:       8,
		PupilMarginYPx:       6,
		PupilVisibleMarginPx: 10,
	}
}

// Frame is one tick's resolved render parameter set. It is everything the
// external renderer needs; no live references to the state escape.
type Frame struct {
	TsMs int64 `json:"ts_ms"`

	EyeOpenness float64 `json:"eye_openness"`
	EyeHeightPx int     `json:"eye_height_px"`
	BlinkActive bool    `json:"blink_active"`

	PupilsVisible bool `json:"pupils_visible"`
	PupilOffsetX  int  `json:"pupil_offset_x_px"`
	PupilOffsetY  int  `json:"pupil_offset_y_px"`

	MouthMode     MouthMode `json:"mouth_mode"`
	MouthLabel    string    `json:"mouth_label,omitempty"`
	MouthOpenness float64   `json:"mouth_openness"`
	MouthWidthPx  int       `json:"mouth_width_px"`
	MouthHeightPx int       `json:"mouth_height_px"`
	MouthRadiusPx int       `json:"mouth_radius_px"`

	CaptionText string `json:"caption_text"`
}

// expressionEyeOpenness is the fixed per-expression default, used when no
// eye override is active.
func expressionEyeOpenness(e Expression) float64 {
	switch e {
	case ExpressionSurprised:
		return 1.0
	case ExpressionHappy:
		return 0.85
	case ExpressionSad:
		return 0.55
	case ExpressionThinking:
		return 0.35
	case ExpressionAngry:
		return 0.25
	case ExpressionSleeping:
		return 0.05
	default:
		return 0.80
	}
}

// expressionMouthLabel returns the glyph for label-mode expressions, or
// ("", false) for bar-mode ones. Surprised deliberately renders as a wide
// open bar rather than a tiny "O" glyph.
func expressionMouthLabel(e Expression) (string, bool) {
	switch e {
	case ExpressionHappy:
		return ")", true
	case ExpressionSad:
		return "(", true
	case ExpressionThinking:
		return "...", true
	case ExpressionSleeping:
		return "z", true
	default:
		return "", false
	}
}

// expire clears TTL-bound fields whose deadlines have passed. Blink is not
// touched here: whether a blink is showing also depends on the expression, so
// it is cleared lazily in Tick once resolution observes it inactive.
func expire(s *State, nowMs int64) {
	if s.CaptionUntil.Expired(nowMs) {
		s.Caption = ""
		s.CaptionUntil.Clear()
	}
	if s.VisemeUntil.Expired(nowMs) {
		s.Viseme = VisemeRest
		s.VisemeWeight = 0
		s.VisemeUntil.Clear()
	}
}

// Resolve derives one Frame from a snapshot and the current time. It is pure
// and total: every input is pre-clamped by the dispatcher, so no path fails.
func Resolve(s State, nowMs int64, geo Geometry) Frame {
	f := Frame{TsMs: nowMs}

	// Eye openness: sticky override wins over the expression default.
	open := expressionEyeOpenness(s.Expression)
	if s.EyeOpenOverride {
		open = s.EyeOpen
	}
	open = clamp01(open)
	f.EyeOpenness = open
	f.EyeHeightPx = geo.EyeHeightMinPx + int(float64(geo.EyeHeightMaxPx-geo.EyeHeightMinPx)*open)

	// Blink: an active blink window, or sleeping which keeps the lids down.
	f.BlinkActive = s.BlinkUntil.Active(nowMs) || s.Expression == ExpressionSleeping

	// Gaze -> pupil offset, clamped symmetrically so the pupil stays inside
	// the eye outline at the current height.
	maxPx := geo.EyeWidthPx/2 - geo.PupilRadiusPx - geo.PupilMarginXPx
	maxPy := f.EyeHeightPx/2 - geo.PupilRadiusPx - geo.PupilMarginYPx
	if maxPy < 0 {
		maxPy = 0
	}
	f.PupilOffsetX = clampInt(int(s.GazeX*float64(maxPx)), -maxPx, maxPx)
	f.PupilOffsetY = clampInt(int(s.GazeY*float64(maxPy)), -maxPy, maxPy)

	// Visibility is a derived geometric predicate, not a stored flag.
	f.PupilsVisible = !f.BlinkActive && f.EyeHeightPx >= geo.PupilRadiusPx*2+geo.PupilVisibleMarginPx

	resolveMouth(&f, s)

	f.CaptionText = s.Caption
	return f
}

func resolveMouth(f *Frame, s State) {
	// A sticky mouth override always renders the bar, suppressing glyphs.
	if !s.MouthOpenOverride {
		if label, ok := expressionMouthLabel(s.Expression); ok {
			f.MouthMode = MouthModeGlyph
			f.MouthLabel = label
			return
		}
	}

	f.MouthMode = MouthModeBar

	// Angry is a fixed small bar, not openness-driven.
	if !s.MouthOpenOverride && s.Expression == ExpressionAngry {
		f.MouthWidthPx, f.MouthHeightPx, f.MouthRadiusPx = 90, 12, 2
		return
	}

	var open float64
	switch {
	case s.MouthOpenOverride:
		open = s.MouthOpen
	case s.Expression == ExpressionSurprised:
		open = 1.0
	case s.Viseme != VisemeRest && s.VisemeWeight > 0.1:
		open = s.VisemeWeight
	}
	open = clamp01(open)
	f.MouthOpenness = open

	if open > 0.05 {
		w := 96
		if !s.MouthOpenOverride && s.Expression == ExpressionSurprised {
			w = 120
		}
		h := 10 + int(open*54)
		if h > 72 {
			h = 72
		}
		f.MouthWidthPx, f.MouthHeightPx, f.MouthRadiusPx = w, h, h/2
		return
	}

	// Resting mouth: thick filled bar.
	f.MouthWidthPx, f.MouthHeightPx, f.MouthRadiusPx = 96, 10, 6
}

// Tick runs one render tick: expire TTL fields, resolve a Frame, and clear a
// finished blink window, all under one lock acquisition. Returns false when
// the lock was not acquired within timeout; the caller simply skips the tick.
func (s *Store) Tick(timeout time.Duration, nowMs int64, geo Geometry) (Frame, bool) {
	if s == nil || !s.acquire(timeout) {
		return Frame{}, false
	}
	defer s.release()

	expire(&s.state, nowMs)
	frame := Resolve(s.state, nowMs, geo)
	if !frame.BlinkActive && s.state.BlinkUntil.Set() {
		s.state.BlinkUntil.Clear()
	}
	return frame, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
