package lexer_test

import (
	"testing"

	"github.com/aledsdavies/gml/diag"
	"github.com/aledsdavies/gml/lexer"
	"github.com/aledsdavies/gml/text"
	"github.com/stretchr/testify/require"
)

func kinds(tt *lexer.TokenizedText) []lexer.TokenKind {
	var out []lexer.TokenKind
	tt.Tokens.All(func(_ lexer.TokenIndex, t lexer.Token) bool {
		out = append(out, t.Kind())
		return true
	})
	return out
}

func TestEmptyInputProducesFileStartAndEnd(t *testing.T) {
	tt := lexer.Lex(text.New(nil))
	require.Equal(t, []lexer.TokenKind{lexer.FileStart, lexer.FileEnd}, kinds(tt))
	require.Equal(t, 1, tt.Lines.Len())
}

func TestTrailingInputWithoutNewlineInsertsSyntheticLine(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("var x")))
	require.True(t, tt.LastLineIsInserted)
}

func TestTrailingNewlineInsertsNoSyntheticLine(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("var x\n")))
	require.False(t, tt.LastLineIsInserted)
}

func TestTokenStartOffsetsNeverDecrease(t *testing.T) {
	src := "var x = 1 + 2 * (3 - 4);"
	tt := lexer.Lex(text.New([]byte(src)))

	var prevStart text.TextSize
	first := true
	tt.Tokens.All(func(idx lexer.TokenIndex, tok lexer.Token) bool {
		if tok.Kind() == lexer.FileStart || tok.Kind() == lexer.FileEnd {
			return true
		}
		if !first {
			require.GreaterOrEqual(t, tok.Start(), prevStart, "token start offsets must not decrease")
		}
		first = false
		prevStart = tok.Start()
		return true
	})
}

func TestMatchedBracketsBackPatchPayloads(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("(a)")))

	var openIdx, closeIdx lexer.TokenIndex
	tt.Tokens.All(func(idx lexer.TokenIndex, tok lexer.Token) bool {
		switch tok.Kind() {
		case lexer.LeftParen:
			openIdx = idx
		case lexer.RightParen:
			closeIdx = idx
		}
		return true
	})

	open := tt.Tokens.Get(openIdx)
	close := tt.Tokens.Get(closeIdx)
	require.Equal(t, uint32(closeIdx), open.Payload())
	require.Equal(t, uint32(openIdx), close.Payload())
}

func TestMismatchedBracketsDoNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		lexer.Lex(text.New([]byte("(]")))
	})
}

func TestMaximalMunchTripleCharOperator(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("x >>= 1")))
	ks := kinds(tt)
	require.Contains(t, ks, lexer.RightShiftAssign)
	require.NotContains(t, ks, lexer.RightShift)
	require.NotContains(t, ks, lexer.GreaterThan)
}

func TestDoubledOperatorsLexCorrectly(t *testing.T) {
	cases := map[string]lexer.TokenKind{
		"++": lexer.PlusPlus,
		"--": lexer.MinusMinus,
		"**": lexer.Power,
		"||": lexer.Or,
		"&&": lexer.And,
	}
	for src, want := range cases {
		tt := lexer.Lex(text.New([]byte(src)))
		require.Contains(t, kinds(tt), want, "source %q", src)
	}
}

func TestBareAndDoubledEqualsBothLexAsEquals(t *testing.T) {
	tt1 := lexer.Lex(text.New([]byte("x = 1")))
	tt2 := lexer.Lex(text.New([]byte("x == 1")))
	require.Contains(t, kinds(tt1), lexer.Equals)
	require.Contains(t, kinds(tt2), lexer.Equals)
}

func TestCRLFIsTreatedAsASingleLineBreak(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("var a\r\nvar b\r\n")))
	require.Empty(t, tt.Diagnostics)
	require.Equal(t, 3, tt.Lines.Len())
}

func TestRawCRProducesDiagnostic(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("var a\rvar b")))
	require.NotEmpty(t, tt.Diagnostics)
	require.Equal(t, diag.RawCR, tt.Diagnostics[0].Kind)
}

func TestStaticIsAKeyword(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("static x")))
	require.Contains(t, kinds(tt), lexer.Static)
	require.Equal(t, []lexer.TokenKind{lexer.FileStart, lexer.Static, lexer.Identifier, lexer.FileEnd}, kinds(tt))
}

func TestVerbatimStringWithSingleQuoteDelimiter(t *testing.T) {
	tt := lexer.Lex(text.New([]byte(`@'C:\no\escapes'`)))
	require.Contains(t, kinds(tt), lexer.VerbatimStringLiteral)
	require.Empty(t, tt.Diagnostics)
}

func TestVerbatimStringWithDoubledQuoteEscape(t *testing.T) {
	tt := lexer.Lex(text.New([]byte(`@"a""b"`)))
	require.Contains(t, kinds(tt), lexer.VerbatimStringLiteral)
	require.Empty(t, tt.Diagnostics)
}

func TestLineAndColumnNumbersAreOneBased(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("var x\nvar yy\n")))

	var secondVar lexer.TokenIndex
	seenFirst := false
	tt.Tokens.All(func(idx lexer.TokenIndex, tok lexer.Token) bool {
		if tok.Kind() == lexer.Var {
			if !seenFirst {
				seenFirst = true
				return true
			}
			secondVar = idx
			return false
		}
		return true
	})

	line, col := tt.GetLoc(secondVar)
	require.Equal(t, uint32(2), line)
	require.Equal(t, uint32(1), col)
}

func TestColumnNumberOfIndentedToken(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("var x\n  var yy\n")))

	var secondVar lexer.TokenIndex
	seenFirst := false
	tt.Tokens.All(func(idx lexer.TokenIndex, tok lexer.Token) bool {
		if tok.Kind() == lexer.Var {
			if !seenFirst {
				seenFirst = true
				return true
			}
			secondVar = idx
			return false
		}
		return true
	})

	_, col := tt.GetLoc(secondVar)
	require.Equal(t, uint32(3), col)
}

func TestUnterminatedStringProducesErrorToken(t *testing.T) {
	var tt *lexer.TokenizedText
	require.NotPanics(t, func() {
		tt = lexer.Lex(text.New([]byte(`"abc`)))
	})
	require.Contains(t, kinds(tt), lexer.Error)
}

func TestUnterminatedStringEndingInBackslashDoesNotPanic(t *testing.T) {
	var tt *lexer.TokenizedText
	require.NotPanics(t, func() {
		tt = lexer.Lex(text.New([]byte(`"\`)))
	})
	require.Contains(t, kinds(tt), lexer.Error)
}

func TestTerminatedSingleLineComment(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("// a comment\nvar x\n")))
	require.Contains(t, kinds(tt), lexer.SingleLineComment)
	require.Contains(t, kinds(tt), lexer.Var)
}

func TestTerminatedMultiLineComment(t *testing.T) {
	tt := lexer.Lex(text.New([]byte("/* a\nmultiline\ncomment */ var x")))
	require.Contains(t, kinds(tt), lexer.MultiLineComment)
	require.Contains(t, kinds(tt), lexer.Var)
}

func TestUnterminatedMultiLineCommentDoesNotHang(t *testing.T) {
	var tt *lexer.TokenizedText
	require.NotPanics(t, func() {
		tt = lexer.Lex(text.New([]byte("/* never closes")))
	})
	require.Contains(t, kinds(tt), lexer.MultiLineComment)
}

func TestBareUnterminatedMultiLineCommentDoesNotHang(t *testing.T) {
	require.NotPanics(t, func() {
		lexer.Lex(text.New([]byte("/*")))
	})
}

func TestSnapshotIsDeterministic(t *testing.T) {
	src := "function foo() { return 1 + 2; }"
	a, err := lexer.Lex(text.New([]byte(src))).Snapshot()
	require.NoError(t, err)
	b, err := lexer.Lex(text.New([]byte(src))).Snapshot()
	require.NoError(t, err)
	require.Equal(t, a, b)
}
