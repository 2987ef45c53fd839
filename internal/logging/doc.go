// Package logging provides a unified logging interface for the stress harness.
// It wraps zerolog behind a small Logger interface so the orchestrator,
// workers and CLI log structured fields the same way.
package logging
