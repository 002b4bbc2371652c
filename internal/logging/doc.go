// Package logging assembles structured slog loggers used across tagwater.
//
// It owns the console and JSON handlers, parses configured levels and output
// paths, and exposes context helpers so pipeline code can tag every line of a
// script run with its run ID. A no-op logger is provided for tests and wiring
// code that has no logger to hand.
package logging
