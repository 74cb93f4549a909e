// Package parser turns a lexed TokenizedText into a flat ParseEvents
// stream via an explicit work-stack state machine with panic-mode
// recovery. Events accumulate in a plain slice, which may reallocate as
// it grows.
package parser

import (
	"github.com/aledsdavies/gml/diag"
	"github.com/aledsdavies/gml/lexer"
)

// NodeKind classifies a Start/Missing event's syntax node. The set is
// open to extension: Ignore exists precisely for constructs (like array
// elements) that need a placeholder without a dedicated semantic kind.
type NodeKind uint8

const (
	Ignore NodeKind = iota
	ErrorNode
	File
	Block
	EnumDecl
	EnumBlock
	EnumMember
	Function
	PrefixOpExpr
	ParenExpr
	ArrayExpr
)

func (k NodeKind) String() string {
	switch k {
	case Ignore:
		return "Ignore"
	case ErrorNode:
		return "Error"
	case File:
		return "File"
	case Block:
		return "Block"
	case EnumDecl:
		return "EnumDecl"
	case EnumBlock:
		return "EnumBlock"
	case EnumMember:
		return "EnumMember"
	case Function:
		return "Function"
	case PrefixOpExpr:
		return "PrefixOpExpr"
	case ParenExpr:
		return "ParenExpr"
	case ArrayExpr:
		return "ArrayExpr"
	default:
		return "Unknown"
	}
}

// EventKind tags which variant of Event a record holds.
type EventKind uint8

const (
	EventStart EventKind = iota
	EventEnd
	EventLeaf
	EventUnexpected
	EventMissing
)

// Event is one record of the flat parse output. Only the fields
// relevant to Kind are meaningful; Start/End/Missing carry a NodeKind,
// Leaf/Unexpected carry a token.
type Event struct {
	Kind      EventKind
	NodeKind  NodeKind
	Token     lexer.TokenIndex
	TokenKind lexer.TokenKind
}

// ParseEvents is the complete output of parsing: the flat event stream
// plus any parse-time diagnostics.
type ParseEvents struct {
	Events      []Event
	Diagnostics []diag.Diagnostic
}
