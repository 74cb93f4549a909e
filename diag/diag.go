// Package diag provides the structured diagnostic type shared by the lexer
// and parser. The reference implementation models diagnostics as bare
// static strings; this module keeps the ability to reproduce those
// messages verbatim (Message) while adding a machine-checkable Kind and a
// source Pos, as called for when a diagnostic type is structured rather
// than a raw string.
package diag

import (
	"strings"

	"github.com/aledsdavies/gml/text"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Kind classifies a diagnostic without requiring callers to pattern-match
// on Message text.
type Kind uint8

const (
	// UnrecognizedBytes reports a run of bytes the lexer could not
	// classify into any token.
	UnrecognizedBytes Kind = iota
	// RawCR reports a bare carriage return not followed by a line feed.
	RawCR
	// LFCR reports a line feed immediately followed by a carriage
	// return (as opposed to the supported CRLF ordering).
	LFCR
	// UnexpectedToken reports a token consumed by panic-mode recovery
	// or by an unconditional advance-and-report in the parser.
	UnexpectedToken
	// MissingNode reports a required node that recovery could not
	// locate any token for.
	MissingNode
	// RecoveryFailed reports that eat_or_recover hit a stronger token
	// before finding the one it was scanning for.
	RecoveryFailed
)

// historicalMessages preserves the exact diagnostic text from the
// reference implementation, verbatim, for Kinds that carry no extra
// interpolated data.
var historicalMessages = map[Kind]string{
	UnrecognizedBytes: "unrecognized characters while parsing",
	RawCR:             "a raw CR line ending is not supported, only LF and CR+LF are supported",
	LFCR:              "the LF+CR line ending is not supported, only LF and CR+LF are supported",
}

// Diagnostic is a single lex-time or parse-time problem report.
type Diagnostic struct {
	Kind    Kind
	Pos     text.TextSize
	Message string
	// Hint is an optional "did you mean" suggestion, populated only for
	// UnexpectedToken diagnostics where the unexpected token looked like
	// a near-miss on a keyword.
	Hint string
}

// New builds a Diagnostic using the historical message for Kind, or an
// empty message if Kind has none; use NewWithMessage for explicit text.
func New(kind Kind, pos text.TextSize) Diagnostic {
	return Diagnostic{Kind: kind, Pos: pos, Message: historicalMessages[kind]}
}

// NewWithMessage builds a Diagnostic with an explicit message, for Kinds
// (Unexpected/Missing/RecoveryFailed) whose text depends on what was found.
func NewWithMessage(kind Kind, pos text.TextSize, message string) Diagnostic {
	return Diagnostic{Kind: kind, Pos: pos, Message: message}
}

// SuggestKeyword returns the closest match for candidate among keywords,
// or "" if nothing is close enough to be a useful suggestion. It is pure
// enrichment: callers decide whether and how to attach the result as a
// Diagnostic's Hint, and it never influences parser control flow.
func SuggestKeyword(candidate string, keywords []string) string {
	folded := strings.ToLower(candidate)
	best, bestDistance := "", -1
	for _, k := range keywords {
		d := fuzzy.LevenshteinDistance(folded, strings.ToLower(k))
		if bestDistance < 0 || d < bestDistance || (d == bestDistance && k < best) {
			best, bestDistance = k, d
		}
	}
	// A distance this large means "not actually a typo of anything" -
	// don't suggest a keyword that shares only a couple of letters.
	if bestDistance < 0 || bestDistance > 3 {
		return ""
	}
	return best
}
