// Package gateway wires the hearth components together and serves the HTTP
// and WebSocket API.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, sampler, logger)
//	err = gw.Run(ctx) // blocks until ctx is canceled, then shuts down
//
// Run listens on the configured address, serves until the context is
// canceled or the server fails, and then performs a graceful shutdown with
// a 5 second deadline, closing the HTTP server before the store.
//
// # Surfaces
//
//   - /api/v1/auth: registration, login, self-service account management,
//     superuser account lookup
//   - /api/v1/browser: sandboxed filesystem listing, info, and download
//   - /api/v1/files: file metadata registry (rows only, never bytes)
//   - /api/v1/monitoring: snapshot endpoints plus the authenticated
//     WebSocket stream at /api/v1/monitoring/ws
//
// Errors are returned as JSON bodies of the form {"error": "message"}.
package gateway
