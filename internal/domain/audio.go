package domain

// Player is the audio collaborator. Calls are fire-and-forget from the
// engine's perspective; a returned error is passed through verbatim in the
// command acknowledgement.
type Player interface {
	// Beep plays a test tone.
	Beep(freqHz, durationMs int) error
	// PlayPCM16Mono plays 16-bit signed little-endian mono PCM at the
	// player's configured sample rate.
	PlayPCM16Mono(samples []int16) error
}

// AudioSink is the platform output device a Player writes rendered samples to.
type AudioSink interface {
	WriteSamples(samples []int16) error
}
