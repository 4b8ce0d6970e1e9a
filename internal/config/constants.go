package config

// Version is the current polex version.
// Set at build time via -ldflags or by writing to this file.
var Version = "0.3.1"

// MaxRecursionDepth bounds expression nesting in the parser. Deeply nested
// input is rejected with a syntax error instead of exhausting the stack.
const MaxRecursionDepth = 250

// MaxExpressionSize bounds the accepted source length in bytes.
const MaxExpressionSize = 100 * 1024

// AccumulatorName is the reserved accumulator variable used by the
// comprehensions that macros expand into. The name is not addressable from
// source text.
const AccumulatorName = "__result__"

// DefaultRegexProgramSize is the RE2 program-size cap applied to matches()
// when the host does not configure one. Zero disables the cap.
const DefaultRegexProgramSize = 0

// IsTestMode indicates if the program is running under the test harness.
// No command in this module sets it; it stays false unless a host sets it.
var IsTestMode = false
