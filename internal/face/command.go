package face

import "encoding/json"

// Command is the closed set of wire commands. Payloads are decoded into a
// variant exactly once, at the transport boundary; each variant carries only
// its own field set, with nil meaning "absent or not of the expected type"
// (absent fields are ignored at the field level, never fatal).
type Command interface {
	// name is the wire tag echoed back in acknowledgements.
	name() string
}

type PingCommand struct{}

type GetStateCommand struct{}

type SetExpressionCommand struct {
	Expression *string
	Intensity  *float64
}

type GazeCommand struct {
	X *float64
	Y *float64
}

type CaptionCommand struct {
	Text  *string
	TTLMs *float64
}

type VisemeCommand struct {
	Name   *string
	Weight *float64
	TTLMs  *float64
}

type BlinkCommand struct {
	DurationMs *float64
}

type EyesCommand struct {
	Open     *float64
	Override *bool
}

type MouthCommand struct {
	Open     *float64
	Override *bool
}

type RigCommand struct {
	EyeOpen   *float64
	MouthOpen *float64
}

type RigClearCommand struct{}

// SetStateCommand is the bulk field-level merge. Present means the nested
// state object existed at all.
type SetStateCommand struct {
	Present           bool
	Expression        *string
	Intensity         *float64
	GazeX             *float64
	GazeY             *float64
	Caption           *string
	CaptionTTLMs      *float64
	EyeOpen           *float64
	EyeOpenOverride   *bool
	MouthOpen         *float64
	MouthOpenOverride *bool
}

type BeepCommand struct {
	FreqHz     *float64
	DurationMs *float64
}

type SpeakPCMCommand struct {
	DataB64 *string
}

// UnknownCommand carries an unrecognized type tag so the acknowledgement can
// still echo it.
type UnknownCommand struct {
	Type string
}

func (PingCommand) name() string          { return "ping" }
func (GetStateCommand) name() string      { return "get_state" }
func (SetExpressionCommand) name() string { return "set_expression" }
func (GazeCommand) name() string          { return "gaze" }
func (CaptionCommand) name() string       { return "caption" }
func (VisemeCommand) name() string        { return "viseme" }
func (BlinkCommand) name() string         { return "blink" }
func (EyesCommand) name() string          { return "eyes" }
func (MouthCommand) name() string         { return "mouth" }
func (RigCommand) name() string           { return "rig" }
func (RigClearCommand) name() string      { return "rig_clear" }
func (SetStateCommand) name() string      { return "set_state" }
func (BeepCommand) name() string          { return "beep" }
func (SpeakPCMCommand) name() string      { return "speak_pcm" }
func (c UnknownCommand) name() string     { return c.Type }

// decodeErr distinguishes the two pre-lock failure modes.
type decodeErr string

func (e decodeErr) Error() string { return string(e) }

const (
	errInvalidJSON decodeErr = "invalid_json"
	errMissingType decodeErr = "missing_type"
)

// DecodeCommand parses one structured payload into its command variant.
// Fields of the wrong JSON type are dropped, matching the field-level
// tolerance of the grammar; only a non-object payload or a missing type tag
// is an error.
func DecodeCommand(payload []byte) (Command, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return nil, errInvalidJSON
	}

	t, ok := strField(raw, "type")
	if !ok {
		return nil, errMissingType
	}

	switch t {
	case "ping":
		return PingCommand{}, nil
	case "get_state":
		return GetStateCommand{}, nil
	case "set_expression":
		return SetExpressionCommand{
			Expression: strPtr(raw, "expression"),
			Intensity:  numPtr(raw, "intensity"),
		}, nil
	case "gaze":
		return GazeCommand{X: numPtr(raw, "x"), Y: numPtr(raw, "y")}, nil
	case "caption":
		return CaptionCommand{Text: strPtr(raw, "text"), TTLMs: numPtr(raw, "ttl_ms")}, nil
	case "viseme":
		return VisemeCommand{
			Name:   strPtr(raw, "name"),
			Weight: numPtr(raw, "weight"),
			TTLMs:  numPtr(raw, "ttl_ms"),
		}, nil
	case "blink":
		return BlinkCommand{DurationMs: numPtr(raw, "duration_ms")}, nil
	case "eyes":
		return EyesCommand{Open: numPtr(raw, "open"), Override: boolPtr(raw, "override")}, nil
	case "mouth":
		return MouthCommand{Open: numPtr(raw, "open"), Override: boolPtr(raw, "override")}, nil
	case "rig":
		return RigCommand{EyeOpen: numPtr(raw, "eye_open"), MouthOpen: numPtr(raw, "mouth_open")}, nil
	case "rig_clear":
		return RigClearCommand{}, nil
	case "set_state":
		return decodeSetState(raw), nil
	case "beep":
		return BeepCommand{FreqHz: numPtr(raw, "freq_hz"), DurationMs: numPtr(raw, "duration_ms")}, nil
	case "speak_pcm":
		return SpeakPCMCommand{DataB64: strPtr(raw, "data_b64")}, nil
	default:
		return UnknownCommand{Type: t}, nil
	}
}

func decodeSetState(raw map[string]any) SetStateCommand {
	st, ok := raw["state"].(map[string]any)
	if !ok {
		return SetStateCommand{}
	}
	return SetStateCommand{
		Present:           true,
		Expression:        strPtr(st, "expression"),
		Intensity:         numPtr(st, "intensity"),
		GazeX:             numPtr(st, "gaze_x"),
		GazeY:             numPtr(st, "gaze_y"),
		Caption:           strPtr(st, "caption"),
		CaptionTTLMs:      numPtr(st, "caption_ttl_ms"),
		EyeOpen:           numPtr(st, "eye_open"),
		EyeOpenOverride:   boolPtr(st, "eye_open_override"),
		MouthOpen:         numPtr(st, "mouth_open"),
		MouthOpenOverride: boolPtr(st, "mouth_open_override"),
	}
}

func strField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func strPtr(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func numPtr(m map[string]any, key string) *float64 {
	if n, ok := m[key].(float64); ok {
		return &n
	}
	return nil
}

func boolPtr(m map[string]any, key string) *bool {
	if b, ok := m[key].(bool); ok {
		return &b
	}
	return nil
}
