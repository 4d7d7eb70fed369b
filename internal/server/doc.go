// Package server implements the HTTP surface using the Echo framework.
//
// Routes: /ws (command channel), /ws/render (render feed), /api (state +
// command REST conveniences), /health, /metrics, /version. Handlers split by
// concern: handlers_ws.go, handlers_api.go, handlers_health.go.
package server
