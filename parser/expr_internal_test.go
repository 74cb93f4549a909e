package parser

import (
	"testing"

	"github.com/aledsdavies/gml/lexer"
	"github.com/aledsdavies/gml/text"
	"github.com/stretchr/testify/require"
)

// exprParser lexes src and returns a Parser positioned just past
// FileStart, ready to drive an expression function directly without
// going through the statement-level stack machine.
func exprParser(t *testing.T, src string) *Parser {
	t.Helper()
	tt := lexer.Lex(text.New([]byte(src)))
	p := &Parser{input: tt, cursor: 1}
	require.NotEqual(t, lexer.FileStart, p.current())
	return p
}

func TestPrimaryExprIdentifier(t *testing.T) {
	p := exprParser(t, "abc")
	p.primaryExpr()
	require.Len(t, p.output.Events, 1)
	require.Equal(t, EventLeaf, p.output.Events[0].Kind)
	require.Equal(t, lexer.Identifier, p.output.Events[0].TokenKind)
	require.Empty(t, p.output.Diagnostics)
}

func TestPrimaryExprIntegerLiteral(t *testing.T) {
	p := exprParser(t, "42")
	p.primaryExpr()
	require.Equal(t, lexer.IntegerLiteral, p.output.Events[0].TokenKind)
}

func TestPrimaryExprParenExpr(t *testing.T) {
	p := exprParser(t, "(x)")
	p.primaryExpr()
	require.Empty(t, p.output.Diagnostics)
	require.Equal(t, EventStart, p.output.Events[0].Kind)
	require.Equal(t, ParenExpr, p.output.Events[0].NodeKind)
	require.Equal(t, EventEnd, p.output.Events[len(p.output.Events)-1].Kind)
}

func TestPrimaryExprMissingIsReported(t *testing.T) {
	p := exprParser(t, ";")
	p.primaryExpr()
	require.Equal(t, EventMissing, p.output.Events[0].Kind)
	require.Equal(t, Ignore, p.output.Events[0].NodeKind)
	require.NotEmpty(t, p.output.Diagnostics)
}

func TestUnaryExprPrefixOperator(t *testing.T) {
	p := exprParser(t, "-x")
	p.unaryExpr()
	require.Equal(t, EventStart, p.output.Events[0].Kind)
	require.Equal(t, PrefixOpExpr, p.output.Events[0].NodeKind)
	require.Equal(t, lexer.Minus, p.output.Events[1].TokenKind)
	require.Equal(t, lexer.Identifier, p.output.Events[2].TokenKind)
	require.Equal(t, EventEnd, p.output.Events[3].Kind)
}

func TestArrayExprSimple(t *testing.T) {
	p := exprParser(t, "[1, 2, 3]")
	p.arrayExpr()
	require.Empty(t, p.output.Diagnostics)

	var leaves int
	for _, e := range p.output.Events {
		if e.Kind == EventLeaf && (e.TokenKind == lexer.IntegerLiteral) {
			leaves++
		}
	}
	require.Equal(t, 3, leaves)
}

func TestArrayExprDoubleCommaIsMissingItem(t *testing.T) {
	p := exprParser(t, "[1,,3]")
	var missing int
	p.arrayExpr()
	for _, e := range p.output.Events {
		if e.Kind == EventMissing && e.NodeKind == Ignore {
			missing++
		}
	}
	require.Equal(t, 1, missing)
}

func TestArrayExprTrailingCommaAllowed(t *testing.T) {
	p := exprParser(t, "[1, 2,]")
	p.arrayExpr()
	require.Empty(t, p.output.Diagnostics)
}

func TestArrayExprMissingCloseRecovers(t *testing.T) {
	p := exprParser(t, "[1, 2")
	p.arrayExpr()
	require.NotEmpty(t, p.output.Diagnostics)
}
