package audio

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Travid/littleAI/internal/domain"
)

const (
	// beepAmplitude keeps test tones gentle relative to full scale.
	beepAmplitude = 0.25

	maxBeepDurationMs = 2000
)

// Synth renders tones and forwards PCM to an output sink, applying the
// configured volume on the way through.
type Synth struct {
	sink         domain.AudioSink
	sampleRateHz int
	gain         float64
}

// NewSynth creates a player writing to sink at the given sample rate.
// volumePercent is clamped to 0..100.
func NewSynth(sink domain.AudioSink, sampleRateHz, volumePercent int) *Synth {
	if sampleRateHz <= 0 {
		sampleRateHz = 16000
	}
	if volumePercent < 0 {
		volumePercent = 0
	}
	if volumePercent > 100 {
		volumePercent = 100
	}
	return &Synth{
		sink:         sink,
		sampleRateHz: sampleRateHz,
		gain:         float64(volumePercent) / 100,
	}
}

// Beep synthesizes a sine tone and plays it.
func (s *Synth) Beep(freqHz, durationMs int) error {
	if freqHz <= 0 {
		freqHz = 880
	}
	if durationMs <= 0 {
		durationMs = 120
	}
	if durationMs > maxBeepDurationMs {
		durationMs = maxBeepDurationMs
	}

	total := s.sampleRateHz * durationMs / 1000
	samples := make([]int16, total)
	for i := range samples {
		t := float64(i) / float64(s.sampleRateHz)
		v := math.Sin(2 * math.Pi * float64(freqHz) * t)
		samples[i] = int16(v * beepAmplitude * 32767)
	}
	return s.PlayPCM16Mono(samples)
}

// PlayPCM16Mono forwards samples to the sink with the volume gain applied.
func (s *Synth) PlayPCM16Mono(samples []int16) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples")
	}
	if s.gain < 1 {
		scaled := make([]int16, len(samples))
		for i, v := range samples {
			scaled[i] = int16(float64(v) * s.gain)
		}
		samples = scaled
	}
	if err := s.sink.WriteSamples(samples); err != nil {
		return fmt.Errorf("audio sink: %w", err)
	}
	return nil
}

// NopSink discards samples, logging at debug level. Used on headless builds
// where no output device is wired up.
type NopSink struct{}

func (NopSink) WriteSamples(samples []int16) error {
	slog.Debug("audio discarded", "samples", len(samples))
	return nil
}
