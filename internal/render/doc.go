// Package render runs the periodic render loop.
//
// Each tick expires TTL-bound face fields and resolves a Frame from the
// store, handing it to a sink callback (the render-feed broadcaster). A tick
// that cannot take the face lock within its short bound is skipped; the next
// tick re-resolves from current values, so a missed frame is invisible.
package render
