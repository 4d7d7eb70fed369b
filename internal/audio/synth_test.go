package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records everything written to it.
type captureSink struct {
	written [][]int16
	err     error
}

func (c *captureSink) WriteSamples(samples []int16) error {
	c.written = append(c.written, samples)
	return c.err
}

func TestBeep_SampleCountAndDefaults(t *testing.T) {
	sink := &captureSink{}
	synth := NewSynth(sink, 16000, 100)

	require.NoError(t, synth.Beep(440, 100))
	require.Len(t, sink.written, 1)
	assert.Len(t, sink.written[0], 1600)

	// Non-positive inputs fall back to the default tone.
	require.NoError(t, synth.Beep(0, 0))
	require.Len(t, sink.written, 2)
	assert.Len(t, sink.written[1], 16000*120/1000)

	// Duration is capped.
	require.NoError(t, synth.Beep(440, 60000))
	assert.Len(t, sink.written[2], 16000*2)
}

func TestBeep_AmplitudeBounded(t *testing.T) {
	sink := &captureSink{}
	synth := NewSynth(sink, 16000, 100)

	require.NoError(t, synth.Beep(880, 50))

	amp := 0.25
	limit := int16(amp*32767) + 1
	for _, v := range sink.written[0] {
		assert.LessOrEqual(t, v, limit)
		assert.GreaterOrEqual(t, v, -limit)
	}
}

func TestPlayPCM16Mono_GainApplied(t *testing.T) {
	sink := &captureSink{}
	synth := NewSynth(sink, 16000, 50)

	require.NoError(t, synth.PlayPCM16Mono([]int16{1000, -1000, 0}))
	require.Len(t, sink.written, 1)
	assert.Equal(t, []int16{500, -500, 0}, sink.written[0])
}

func TestPlayPCM16Mono_FullVolumePassthrough(t *testing.T) {
	sink := &captureSink{}
	synth := NewSynth(sink, 16000, 100)

	in := []int16{32767, -32768}
	require.NoError(t, synth.PlayPCM16Mono(in))
	assert.Equal(t, in, sink.written[0])
}

func TestPlayPCM16Mono_Errors(t *testing.T) {
	sink := &captureSink{}
	synth := NewSynth(sink, 16000, 100)

	assert.Error(t, synth.PlayPCM16Mono(nil))

	sink.err = errors.New("device gone")
	err := synth.PlayPCM16Mono([]int16{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device gone")
}

func TestNewSynth_ClampsConfig(t *testing.T) {
	sink := &captureSink{}

	// Out-of-range volume and rate fall back to sane values.
	synth := NewSynth(sink, -1, 200)
	require.NoError(t, synth.PlayPCM16Mono([]int16{100}))
	assert.Equal(t, []int16{100}, sink.written[0])

	muted := NewSynth(sink, 16000, -5)
	require.NoError(t, muted.PlayPCM16Mono([]int16{100}))
	assert.Equal(t, []int16{0}, sink.written[1])
}
