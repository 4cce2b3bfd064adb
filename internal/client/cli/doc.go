// Package cli implements the escrowctl commands. Every invocation restores
// the persisted session (renewing it if needed), runs one command through the
// session-aware API client, and exits.
package cli
