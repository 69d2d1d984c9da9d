// Package http wraps the standard HTTP transport for the catalog clients.
// It chains two round-trippers under every client: one stamps requests with
// the tool's User-Agent, the other dumps traffic to the debug log with
// credentials scrubbed.
package http
