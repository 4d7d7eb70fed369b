// Package audio implements the audio collaborator: sine-tone synthesis and
// 16-bit mono PCM playback behind a pluggable output sink.
package audio
