package parser

import "github.com/aledsdavies/gml/lexer"

// tokenPrecedence totally orders token classes for panic-mode recovery
// only; it has nothing to do with expression-operator precedence.
type tokenPrecedence uint8

const (
	precUnknown tokenPrecedence = iota
	precIdentifierOrLiteral
	precExpressionOperator
	precWeakBracketOpen
	precWeakPunctuator
	precMediumPunctuator
	precWeakBracketClose
	precLeftBrace
	precStrongPunctuator
	precIntroducerKeyword
	precRightBrace
)

// introducerKeywords are the statement-starting keywords that rank
// above ordinary punctuation during recovery: skipping past one of
// these to find a weaker expected token would swallow the start of the
// next statement, which panic-mode recovery must never do. New is listed
// too, but precedenceOf checks prefix operators first, so it ranks as an
// expression operator.
var introducerKeywords = map[lexer.TokenKind]bool{
	lexer.If:         true,
	lexer.Then:       true,
	lexer.Else:       true,
	lexer.Repeat:     true,
	lexer.Do:         true,
	lexer.While:      true,
	lexer.Until:      true,
	lexer.For:        true,
	lexer.Switch:     true,
	lexer.Case:       true,
	lexer.Default:    true,
	lexer.Catch:      true,
	lexer.Finally:    true,
	lexer.Break:      true,
	lexer.Continue:   true,
	lexer.Return:     true,
	lexer.Throw:      true,
	lexer.Delete:     true,
	lexer.Try:        true,
	lexer.With:       true,
	lexer.Exit:       true,
	lexer.New:        true,
	lexer.Var:        true,
	lexer.GlobalVar:  true,
	lexer.Static:     true,
	lexer.Enum:       true,
	lexer.Function:   true,
}

func precedenceOf(kind lexer.TokenKind) tokenPrecedence {
	switch {
	case kind == lexer.Identifier:
		return precIdentifierOrLiteral
	case kind == lexer.RealLiteral || kind == lexer.IntegerLiteral:
		return precIdentifierOrLiteral
	case kind.IsPrefixOperator() || kind.IsPostfixOperator() || kind.IsBinaryOperator():
		return precExpressionOperator
	case kind == lexer.LeftParen || kind == lexer.LeftSquare:
		return precWeakBracketOpen
	case kind == lexer.Dot:
		return precWeakPunctuator
	case kind == lexer.Comma:
		return precMediumPunctuator
	case kind == lexer.RightParen || kind == lexer.RightSquare:
		return precWeakBracketClose
	case kind == lexer.LeftBrace:
		return precLeftBrace
	case kind == lexer.Semicolon || kind == lexer.FileEnd:
		return precStrongPunctuator
	case kind == lexer.RightBrace:
		return precRightBrace
	case introducerKeywords[kind]:
		return precIntroducerKeyword
	default:
		return precUnknown
	}
}
