package face

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Expression drives the default rig values when no override is active.
type Expression string

const (
	ExpressionNeutral   Expression = "neutral"
	ExpressionHappy     Expression = "happy"
	ExpressionSad       Expression = "sad"
	ExpressionAngry     Expression = "angry"
	ExpressionSurprised Expression = "surprised"
	ExpressionThinking  Expression = "thinking"
	ExpressionSleeping  Expression = "sleeping"
)

// ParseExpression maps a wire string to an Expression. Unknown strings fall
// back to neutral.
func ParseExpression(s string) Expression {
	switch Expression(strings.ToLower(s)) {
	case ExpressionHappy:
		return ExpressionHappy
	case ExpressionSad:
		return ExpressionSad
	case ExpressionAngry:
		return ExpressionAngry
	case ExpressionSurprised:
		return ExpressionSurprised
	case ExpressionThinking:
		return ExpressionThinking
	case ExpressionSleeping:
		return ExpressionSleeping
	default:
		return ExpressionNeutral
	}
}

const (
	// MaxCaptionBytes is the caption limit; assignment truncates beyond it.
	MaxCaptionBytes = 95
	// MaxVisemeBytes is the viseme name limit.
	MaxVisemeBytes = 7

	// VisemeRest is the viseme rest value (mouth at rest, no lip-sync).
	VisemeRest = "rest"
)

// Deadline is an optional monotonic-milliseconds expiry timestamp. The unset
// state is distinct from any timestamp; on the wire it serializes as a plain
// number where 0 means unset, for compatibility with the original protocol.
type Deadline struct {
	ms  int64
	set bool
}

// DeadlineAt returns a set Deadline at the given monotonic millisecond time.
func DeadlineAt(ms int64) Deadline { return Deadline{ms: ms, set: true} }

// Set returns whether the deadline holds a timestamp.
func (d Deadline) Set() bool { return d.set }

// Millis returns the timestamp, or 0 when unset.
func (d Deadline) Millis() int64 {
	if !d.set {
		return 0
	}
	return d.ms
}

// Expired reports whether the deadline is set and strictly in the past.
// An unset deadline never expires.
func (d Deadline) Expired(nowMs int64) bool { return d.set && nowMs > d.ms }

// Active reports whether the deadline is set and not yet reached.
func (d Deadline) Active(nowMs int64) bool { return d.set && nowMs < d.ms }

// Clear resets the deadline to unset.
func (d *Deadline) Clear() { *d = Deadline{} }

func (d Deadline) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Millis())
}

func (d *Deadline) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	if ms == 0 {
		d.Clear()
		return nil
	}
	*d = DeadlineAt(ms)
	return nil
}

// State is the single shared face entity. All bounded floats are clamped at
// the moment they are written; the struct never holds an out-of-range value.
// JSON field names are the wire schema.
type State struct {
	Expression Expression `json:"expression"`
	Intensity  float64    `json:"intensity"`
	GazeX      float64    `json:"gaze_x"`
	GazeY      float64    `json:"gaze_y"`

	// Sticky rig values, used only while the matching override flag is set.
	// Clearing an override keeps the stored value so a later re-override
	// resumes from it.
	EyeOpen           float64 `json:"eye_open"`
	MouthOpen         float64 `json:"mouth_open"`
	EyeOpenOverride   bool    `json:"eye_open_override"`
	MouthOpenOverride bool    `json:"mouth_open_override"`

	Caption      string   `json:"caption"`
	CaptionUntil Deadline `json:"caption_until_ms"`

	Viseme       string   `json:"viseme"`
	VisemeWeight float64  `json:"viseme_weight"`
	VisemeUntil  Deadline `json:"viseme_until_ms"`

	BlinkUntil Deadline `json:"blink_until_ms"`
}

// NewState returns the rest state the face boots with.
func NewState() State {
	return State{
		Expression: ExpressionNeutral,
		Intensity:  1.0,
		EyeOpen:    0.8,
		MouthOpen:  0.0,
		Viseme:     VisemeRest,
	}
}

// SetCaption assigns the caption, truncating to MaxCaptionBytes.
func (s *State) SetCaption(text string) {
	s.Caption = truncate(text, MaxCaptionBytes)
}

// SetViseme assigns the viseme name, truncating to MaxVisemeBytes.
func (s *State) SetViseme(name string) {
	s.Viseme = truncate(name, MaxVisemeBytes)
}

// truncate cuts s to at most max bytes, backing off to a rune boundary so a
// multi-byte character is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
