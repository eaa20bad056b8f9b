// Package server exposes the booking service over HTTP: appointment and
// slot endpoints under /api, the conversational endpoint under /chat, the
// tool catalog under /functions, the Google OAuth handshake under /auth,
// an optional MCP transport on /mcp, and a metrics server on a dedicated
// port.
package server
