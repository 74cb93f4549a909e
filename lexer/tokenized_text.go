package lexer

import (
	"github.com/aledsdavies/gml/arena"
	"github.com/aledsdavies/gml/config"
	"github.com/aledsdavies/gml/diag"
	"github.com/aledsdavies/gml/internal/invariant"
	"github.com/aledsdavies/gml/text"
)

// TokenizedText is the complete output of lexing a buffer: the dense
// token stream plus the out-of-line comment and line tables needed to
// recover source locations and comment text from a TokenIndex.
type TokenizedText struct {
	Tokens   *arena.Arena[Token, TokenIndex]
	Comments *arena.Arena[Comment, CommentIndex]
	Lines    *arena.Arena[Line, LineIndex]

	Diagnostics []diag.Diagnostic

	// LastLineIsInserted is true when the lexer appended a synthetic
	// trailing line because the input did not end with a line break; any
	// downstream consumer must never attach a token to that line.
	LastLineIsInserted bool

	buf text.Buffer
}

func newTokenizedText(buf text.Buffer) *TokenizedText {
	return &TokenizedText{
		Tokens:   arena.New[Token, TokenIndex](),
		Comments: arena.New[Comment, CommentIndex](),
		Lines:    arena.New[Line, LineIndex](),
		buf:      buf,
	}
}

// IdentifierSpelling returns the source text of an Identifier token, for
// callers (the parser's "did you mean a keyword?" diagnostics) that need
// the actual spelling rather than just the token's kind.
func (tt *TokenizedText) IdentifierSpelling(token TokenIndex) string {
	info := tt.Tokens.Get(token)
	invariant.Precondition(info.Kind() == Identifier, "IdentifierSpelling requires an Identifier token")
	length := scanIdentifier(tt.buf.SliceFrom(info.Start()), config.ScannerSWAR)
	return string(tt.buf.Slice(info.Start(), info.Start()+text.TextSize(length)))
}

// FindLineIndex returns the index of the line containing position, via
// binary search over line start offsets.
func (tt *TokenizedText) FindLineIndex(position text.TextSize) LineIndex {
	invariant.Precondition(tt.Lines.Len() > 0, "tokenized text must have at least one line")

	left, right := 0, tt.Lines.Len()
	for left < right {
		mid := (left + right) / 2
		if tt.Lines.Get(LineIndex(mid)).Start <= position {
			left = mid + 1
		} else {
			right = mid
		}
	}

	invariant.Invariant(left >= 1, "binary search must find at least the first line")
	index := left - 1

	// Never attach a token to the fake trailing line.
	isLast := index == tt.Lines.Len()-1
	if isLast && index != 0 && tt.LastLineIsInserted {
		index--
	}

	lineIndex := LineIndex(index)
	invariant.Invariant(tt.Lines.Get(lineIndex).Start <= position, "resolved line must start at or before position")
	return lineIndex
}

// GetLineNumber returns the 1-based line number of token.
func (tt *TokenizedText) GetLineNumber(token TokenIndex) uint32 {
	info := tt.Tokens.Get(token)
	return uint32(tt.FindLineIndex(info.Start())) + 1
}

// GetColumnNumber returns the 1-based column number of token within its
// line.
func (tt *TokenizedText) GetColumnNumber(token TokenIndex) uint32 {
	info := tt.Tokens.Get(token)
	line := tt.Lines.Get(tt.FindLineIndex(info.Start()))
	return uint32(info.Start()-line.Start) + 1
}

// GetLoc returns (line, column), both 1-based.
func (tt *TokenizedText) GetLoc(token TokenIndex) (line, column uint32) {
	return tt.GetLineNumber(token), tt.GetColumnNumber(token)
}
