// Package face implements the face-state engine.
//
// One State entity is shared between inbound commands (Dispatcher) and the
// periodic render tick. The Store serializes all access behind a single
// bounded-wait lock, the Dispatcher applies the command grammar field by
// field, and Resolve derives concrete render parameters (a Frame) from a
// snapshot plus the current time. TTL-bound fields (caption, viseme, blink)
// expire against the engine's monotonic millisecond clock.
package face
