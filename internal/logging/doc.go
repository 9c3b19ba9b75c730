// Package logging provides the slog handler used on stderr by col.
//
// Loggers are tagged with a dotted target ("col", "col.cli", "col.merge").
// The base level comes from the -v count; TARGET:LEVEL directives override
// it for a target and its descendants, longest target first.
package logging
