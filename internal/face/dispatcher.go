package face

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/Travid/littleAI/internal/domain"
	"github.com/Travid/littleAI/internal/metrics"
)

// MaxPCMBytes caps a single speak_pcm payload after base64 decoding.
const MaxPCMBytes = 16 * 1024

// Ack is the acknowledgement payload returned for every answered command.
// Fields not applicable to a given command are omitted on the wire.
type Ack struct {
	OK    bool   `json:"ok"`
	Type  string `json:"type,omitempty"`
	Cmd   string `json:"cmd,omitempty"`
	TsMs  *int64 `json:"ts_ms,omitempty"`
	State *State `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
}

// Dispatcher validates decoded commands against the grammar and applies them
// to the store. One Dispatch call holds the lock for the whole
// validate-and-apply sequence, so neither concurrent commands nor a render
// tick can interleave within a single command's application.
type Dispatcher struct {
	store       *Store
	clock       *Clock
	player      domain.Player
	lockTimeout time.Duration
}

// NewDispatcher wires the dispatcher to its store, clock, and audio
// collaborator. lockTimeout is the command-path lock bound.
func NewDispatcher(store *Store, clock *Clock, player domain.Player, lockTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		store:       store,
		clock:       clock,
		player:      player,
		lockTimeout: lockTimeout,
	}
}

// Dispatch decodes and executes one command payload, returning the
// acknowledgement. It never panics and never fails the process; every failure
// mode maps to a wire error code.
func (d *Dispatcher) Dispatch(ctx context.Context, payload []byte) Ack {
	cmd, err := DecodeCommand(payload)
	if err != nil {
		metrics.CommandsTotal.WithLabelValues("_decode", err.Error()).Inc()
		return Ack{OK: false, Error: err.Error()}
	}

	now := d.clock.NowMs()

	switch c := cmd.(type) {
	case PingCommand:
		metrics.CommandsTotal.WithLabelValues("ping", "ok").Inc()
		return Ack{OK: true, Type: "pong", TsMs: &now}
	case GetStateCommand:
		return d.getState()
	case BeepCommand:
		return d.beep(ctx, c)
	case SpeakPCMCommand:
		return d.speakPCM(ctx, c)
	default:
		return d.applyStateCommand(ctx, cmd, now)
	}
}

func (d *Dispatcher) getState() Ack {
	snap, err := d.store.Snapshot(d.lockTimeout)
	if err != nil {
		code := domain.CodeFaceBusy
		if errors.Is(err, domain.ErrFaceUnavailable) {
			code = domain.CodeFaceUnavail
		}
		metrics.CommandsTotal.WithLabelValues("get_state", code).Inc()
		return Ack{OK: false, Type: "state", Error: code}
	}
	metrics.CommandsTotal.WithLabelValues("get_state", "ok").Inc()
	return Ack{OK: true, Type: "state", State: &snap}
}

func (d *Dispatcher) applyStateCommand(ctx context.Context, cmd Command, now int64) Ack {
	var (
		updated bool
		snap    State
	)
	err := d.store.Update(d.lockTimeout, func(st *State) {
		updated = applyState(cmd, st, now)
		snap = *st
	})
	if err != nil {
		code := domain.CodeFaceBusy
		if errors.Is(err, domain.ErrFaceUnavailable) {
			code = domain.CodeFaceUnavail
		}
		slog.WarnContext(ctx, "command dropped", "cmd", cmd.name(), "error", code)
		metrics.CommandsTotal.WithLabelValues(cmd.name(), code).Inc()
		return Ack{OK: false, Error: code}
	}

	ack := Ack{OK: updated, Type: "ack", Cmd: cmd.name(), TsMs: &now, State: &snap}
	if !updated {
		ack.Error = domain.CodeUnknownCommand
		metrics.CommandsTotal.WithLabelValues(cmd.name(), domain.CodeUnknownCommand).Inc()
		return ack
	}

	slog.DebugContext(ctx, "command applied", "cmd", cmd.name(), "ts_ms", now)
	metrics.CommandsTotal.WithLabelValues(cmd.name(), "ok").Inc()
	return ack
}

func (d *Dispatcher) beep(ctx context.Context, c BeepCommand) Ack {
	freq, dur := 880, 140
	if c.FreqHz != nil {
		freq = int(*c.FreqHz)
	}
	if c.DurationMs != nil {
		dur = int(*c.DurationMs)
	}

	ack := Ack{OK: true, Type: "ack", Cmd: "beep"}
	if err := d.player.Beep(freq, dur); err != nil {
		slog.WarnContext(ctx, "beep failed", "error", err)
		ack.OK = false
		ack.Error = err.Error()
	}
	metrics.CommandsTotal.WithLabelValues("beep", ackStatus(ack)).Inc()
	return ack
}

func (d *Dispatcher) speakPCM(ctx context.Context, c SpeakPCMCommand) Ack {
	ack := Ack{Type: "ack", Cmd: "speak_pcm"}

	if c.DataB64 == nil {
		ack.Error = domain.CodeMissingDataB64
		metrics.CommandsTotal.WithLabelValues("speak_pcm", ack.Error).Inc()
		return ack
	}

	data, err := base64.StdEncoding.DecodeString(*c.DataB64)
	if err != nil || len(data) < 2 {
		ack.Error = domain.CodeBadBase64
		metrics.CommandsTotal.WithLabelValues("speak_pcm", ack.Error).Inc()
		return ack
	}
	if len(data) > MaxPCMBytes {
		ack.Error = domain.CodeNoMem
		metrics.CommandsTotal.WithLabelValues("speak_pcm", ack.Error).Inc()
		return ack
	}

	// Round down to a whole number of 16-bit samples.
	data = data[:len(data)&^1]
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	ack.OK = true
	if err := d.player.PlayPCM16Mono(samples); err != nil {
		slog.WarnContext(ctx, "pcm playback failed", "samples", len(samples), "error", err)
		ack.OK = false
		ack.Error = err.Error()
	}
	metrics.CommandsTotal.WithLabelValues("speak_pcm", ackStatus(ack)).Inc()
	return ack
}

func ackStatus(a Ack) string {
	if a.OK {
		return "ok"
	}
	return "error"
}

// applyState mutates the state per the command grammar. The return value is
// true iff at least one recognized field was applied.
func applyState(cmd Command, st *State, nowMs int64) bool {
	switch c := cmd.(type) {
	case SetExpressionCommand:
		return c.apply(st)
	case GazeCommand:
		return c.apply(st)
	case CaptionCommand:
		return c.apply(st, nowMs)
	case VisemeCommand:
		return c.apply(st, nowMs)
	case BlinkCommand:
		return c.apply(st, nowMs)
	case EyesCommand:
		return c.apply(st)
	case MouthCommand:
		return c.apply(st)
	case RigCommand:
		return c.apply(st)
	case RigClearCommand:
		st.EyeOpenOverride = false
		st.MouthOpenOverride = false
		return true
	case SetStateCommand:
		return c.apply(st, nowMs)
	default:
		return false
	}
}

func (c SetExpressionCommand) apply(st *State) bool {
	updated := false
	if c.Expression != nil {
		st.Expression = ParseExpression(*c.Expression)
		updated = true
	}
	if c.Intensity != nil {
		st.Intensity = clamp01(*c.Intensity)
		updated = true
	}
	return updated
}

func (c GazeCommand) apply(st *State) bool {
	updated := false
	if c.X != nil {
		st.GazeX = clamp(*c.X, -1, 1)
		updated = true
	}
	if c.Y != nil {
		st.GazeY = clamp(*c.Y, -1, 1)
		updated = true
	}
	return updated
}

func (c CaptionCommand) apply(st *State, nowMs int64) bool {
	updated := false
	if c.Text != nil {
		st.SetCaption(*c.Text)
		updated = true
	}
	if c.TTLMs != nil {
		st.CaptionUntil = deadlineFromTTL(*c.TTLMs, nowMs)
		updated = true
	}
	return updated
}

func (c VisemeCommand) apply(st *State, nowMs int64) bool {
	updated := false
	if c.Name != nil {
		st.SetViseme(*c.Name)
		updated = true
	}
	if c.Weight != nil {
		st.VisemeWeight = clamp01(*c.Weight)
		updated = true
	}
	if c.TTLMs != nil {
		st.VisemeUntil = deadlineFromTTL(*c.TTLMs, nowMs)
		updated = true
	}
	return updated
}

func (c BlinkCommand) apply(st *State, nowMs int64) bool {
	d := int64(150)
	if c.DurationMs != nil {
		d = int64(*c.DurationMs)
	}
	if d < 0 {
		d = 0
	}
	if d > 2000 {
		d = 2000
	}
	st.BlinkUntil = DeadlineAt(nowMs + d)
	return true
}

func (c EyesCommand) apply(st *State) bool {
	updated := false
	if c.Open != nil {
		st.EyeOpen = clamp01(*c.Open)
		st.EyeOpenOverride = true
		updated = true
	}
	if c.Override != nil {
		st.EyeOpenOverride = *c.Override
		updated = true
	}
	return updated
}

func (c MouthCommand) apply(st *State) bool {
	updated := false
	if c.Open != nil {
		st.MouthOpen = clamp01(*c.Open)
		st.MouthOpenOverride = true
		updated = true
	}
	if c.Override != nil {
		st.MouthOpenOverride = *c.Override
		updated = true
	}
	return updated
}

func (c RigCommand) apply(st *State) bool {
	updated := false
	if c.EyeOpen != nil {
		st.EyeOpen = clamp01(*c.EyeOpen)
		st.EyeOpenOverride = true
		updated = true
	}
	if c.MouthOpen != nil {
		st.MouthOpen = clamp01(*c.MouthOpen)
		st.MouthOpenOverride = true
		updated = true
	}
	return updated
}

func (c SetStateCommand) apply(st *State, nowMs int64) bool {
	if !c.Present {
		return false
	}
	updated := false
	if c.Expression != nil {
		st.Expression = ParseExpression(*c.Expression)
		updated = true
	}
	if c.Intensity != nil {
		st.Intensity = clamp01(*c.Intensity)
		updated = true
	}
	if c.GazeX != nil {
		st.GazeX = clamp(*c.GazeX, -1, 1)
		updated = true
	}
	if c.GazeY != nil {
		st.GazeY = clamp(*c.GazeY, -1, 1)
		updated = true
	}
	if c.EyeOpen != nil {
		st.EyeOpen = clamp01(*c.EyeOpen)
		updated = true
	}
	if c.EyeOpenOverride != nil {
		st.EyeOpenOverride = *c.EyeOpenOverride
		updated = true
	}
	if c.MouthOpen != nil {
		st.MouthOpen = clamp01(*c.MouthOpen)
		updated = true
	}
	if c.MouthOpenOverride != nil {
		st.MouthOpenOverride = *c.MouthOpenOverride
		updated = true
	}
	if c.Caption != nil {
		st.SetCaption(*c.Caption)
		updated = true
	}
	if c.CaptionTTLMs != nil {
		st.CaptionUntil = deadlineFromTTL(*c.CaptionTTLMs, nowMs)
		updated = true
	}
	return updated
}

// deadlineFromTTL converts a wire ttl_ms into a deadline. A ttl of zero (or
// below) means no expiry, the protocol's long-standing sentinel.
func deadlineFromTTL(ttlMs float64, nowMs int64) Deadline {
	ttl := int64(ttlMs)
	if ttl <= 0 {
		return Deadline{}
	}
	return DeadlineAt(nowMs + ttl)
}
