// Package monitor provides system and storage monitoring snapshots and the
// authenticated WebSocket stream that pushes them.
//
// # Snapshots
//
// Service composes a Dashboard from three sources: OS-level metrics from a
// SystemSampler (optional; a nil sampler omits the system block, a failing
// sampler degrades the snapshot with a warning instead of erroring), storage
// statistics aggregated from the file store, and server uptime measured from
// an explicit start time.
//
// # Streaming
//
// StreamHandler upgrades the connection first and authorizes second, so
// rejections are delivered as application close codes rather than HTTP
// errors:
//
//	4001 no token provided
//	4002 invalid or expired token
//	4003 token missing identity claims
//	4004 unknown or inactive account
//
// The token is read from the `token` query parameter. After authorization
// the handler pushes a snapshot immediately and then on every tick until
// the client disconnects or the server shuts down.
package monitor
