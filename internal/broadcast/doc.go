// Package broadcast implements the render-feed fan-out using the actor pattern.
//
// The render loop publishes each resolved frame; the Broadcaster forwards it
// to every connected renderer client. Uses a single goroutine + command
// channel (no mutexes). Per-connection write goroutines handle slow clients
// gracefully: a client whose send buffer stays full is evicted rather than
// allowed to stall the feed.
package broadcast
