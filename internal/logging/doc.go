// Package logging provides concrete implementations of the emis.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: human-readable lines on stderr, the default for interactive use
//   - ZapLogger: structured JSON lines via zap, selected with --log-format json
//   - NullLogger: discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
