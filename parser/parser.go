package parser

import (
	"log/slog"

	"github.com/aledsdavies/gml/config"
	"github.com/aledsdavies/gml/diag"
	"github.com/aledsdavies/gml/internal/invariant"
	"github.com/aledsdavies/gml/lexer"
)

// stateKind tags one entry of the explicit work stack the parser drives
// instead of recursing: statements, blocks and enums all resume into a
// stateKind handler rather than returning up a call chain.
type stateKind uint8

const (
	stateStatement stateKind = iota
	stateStatementLoop
	stateBlockStart
	stateBlockEnd
	stateEnumStart
	stateEnumItem
	stateEnumLoop
	stateEnumEnd
	stateFunctionStart
	stateFunctionEnd
)

// state is one entry of the parser's work stack.
type state struct {
	kind stateKind
}

// listNodeKind parameterizes the comma-separated list loop: which state
// produces one item, which state loops back, which state closes the
// list, what NodeKind a Missing item should carry, and which tokens
// separate and close the list.
type listNodeKind struct {
	itemState  stateKind
	loopState  stateKind
	endState   stateKind
	itemKind   NodeKind
	separator  lexer.TokenKind
	closeToken lexer.TokenKind
}

var enumMemberList = listNodeKind{
	itemState:  stateEnumItem,
	loopState:  stateEnumLoop,
	endState:   stateEnumEnd,
	itemKind:   EnumMember,
	separator:  lexer.Comma,
	closeToken: lexer.RightBrace,
}

// Parser drives the token arena through the explicit stack machine,
// accumulating a flat Event stream plus any diagnostics raised along
// the way.
type Parser struct {
	input      *lexer.TokenizedText
	output     ParseEvents
	cursor     lexer.TokenIndex
	stack      []state
	blockDepth int
	cfg        config.ParserConfig
}

// Parse converts a lexed TokenizedText into its ParseEvents stream.
func Parse(tt *lexer.TokenizedText, opts ...config.ParserOpt) *ParseEvents {
	invariant.NotNil(tt, "tt")
	p := &Parser{
		input: tt,
		cfg:   config.NewParserConfig(opts...),
	}
	p.parse()
	return &p.output
}

func (p *Parser) parse() {
	invariant.Invariant(p.current() == lexer.FileStart, "parse must start at FileStart")
	p.emitStart(File)
	p.emitLeaf(p.cursor)
	p.advance()

	p.pushState(stateStatementLoop)

	for len(p.stack) > 0 {
		top := p.popState()
		p.dispatch(top)
	}

	invariant.Invariant(p.current() == lexer.FileEnd, "parse must end at FileEnd")
	p.emitLeaf(p.cursor)
	p.emitEnd(File)

	if p.cfg.Debug >= config.DebugPaths {
		p.cfg.Logger.Debug("gml parser: finished",
			slog.Int("events", len(p.output.Events)),
			slog.Int("diagnostics", len(p.output.Diagnostics)))
	}
}

func (p *Parser) dispatch(s state) {
	if p.cfg.Debug >= config.DebugDetailed {
		p.cfg.Logger.Debug("gml parser: dispatch", slog.Any("state", s.kind))
	}
	switch s.kind {
	case stateStatement:
		p.statement()
	case stateStatementLoop:
		p.statementLoop()
	case stateBlockStart:
		p.blockStart()
	case stateBlockEnd:
		p.blockDepth--
		p.eatOrRecover(lexer.RightBrace, Block)
		p.emitEnd(Block)
	case stateEnumStart:
		p.enumStart()
	case stateEnumItem:
		p.enumItem()
	case stateEnumLoop:
		p.listLoop(enumMemberList)
	case stateEnumEnd:
		p.eatOrRecover(lexer.RightBrace, EnumBlock)
		p.emitEnd(EnumBlock)
		p.emitEnd(EnumDecl)
	case stateFunctionStart:
		p.functionStart()
	case stateFunctionEnd:
		p.emitEnd(Function)
	}
}

// pushState pushes a single state onto the work stack.
func (p *Parser) pushState(kind stateKind) {
	p.stack = append(p.stack, state{kind: kind})
}

// pushSequence pushes a sequence of states so they run in the order
// given: since the stack pops from the tail, the states are appended in
// reverse.
func (p *Parser) pushSequence(kinds ...stateKind) {
	for i := len(kinds) - 1; i >= 0; i-- {
		p.pushState(kinds[i])
	}
}

func (p *Parser) popState() state {
	n := len(p.stack)
	top := p.stack[n-1]
	p.stack = p.stack[:n-1]
	return top
}

func (p *Parser) current() lexer.TokenKind {
	return p.input.Tokens.Get(p.cursor).Kind()
}

func (p *Parser) advance() {
	invariant.Precondition(p.current() != lexer.FileEnd, "must not advance past FileEnd")
	p.cursor++
}

func (p *Parser) hitEOF() bool {
	return p.current() == lexer.FileEnd
}

func (p *Parser) emitStart(kind NodeKind) {
	p.output.Events = append(p.output.Events, Event{Kind: EventStart, NodeKind: kind})
}

func (p *Parser) emitEnd(kind NodeKind) {
	p.output.Events = append(p.output.Events, Event{Kind: EventEnd, NodeKind: kind})
}

func (p *Parser) emitLeaf(token lexer.TokenIndex) {
	p.output.Events = append(p.output.Events, Event{
		Kind:      EventLeaf,
		Token:     token,
		TokenKind: p.input.Tokens.Get(token).Kind(),
	})
}

func (p *Parser) emitMissing(kind NodeKind) {
	p.output.Events = append(p.output.Events, Event{Kind: EventMissing, NodeKind: kind})
	p.output.Diagnostics = append(p.output.Diagnostics, diag.NewWithMessage(
		diag.MissingNode,
		p.input.Tokens.Get(p.cursor).Start(),
		"expected a "+kind.String(),
	))
}

// emitUnexpected consumes and reports the current token as unexpected,
// attaching a "did you mean" hint when an unexpected identifier is a
// near-miss spelling of a reserved keyword.
func (p *Parser) emitUnexpected() {
	tok := p.cursor
	kind := p.current()
	pos := p.input.Tokens.Get(tok).Start()

	msg := "unexpected " + kind.String()
	d := diag.NewWithMessage(diag.UnexpectedToken, pos, msg)
	if kind == lexer.Identifier {
		spelling := p.input.IdentifierSpelling(tok)
		d.Hint = diag.SuggestKeyword(spelling, lexer.KeywordSpellings)
	}
	p.output.Diagnostics = append(p.output.Diagnostics, d)

	p.output.Events = append(p.output.Events, Event{
		Kind:      EventUnexpected,
		Token:     tok,
		TokenKind: kind,
	})
	if !p.hitEOF() {
		p.advance()
	}
}

// eat consumes the current token unconditionally and emits it as a leaf.
func (p *Parser) eat() {
	invariant.Precondition(!p.hitEOF(), "eat must not be called at FileEnd")
	tok := p.cursor
	p.emitLeaf(tok)
	p.advance()
}

// tryEat consumes and emits the current token as a leaf if it matches
// kind, returning whether it did.
func (p *Parser) tryEat(kind lexer.TokenKind) bool {
	if p.current() != kind {
		return false
	}
	p.eat()
	return true
}

// eatExpect consumes the current token as kind's leaf if it matches,
// otherwise emits a Missing event for kind without consuming anything.
func (p *Parser) eatExpect(kind lexer.TokenKind, nodeKind NodeKind) bool {
	if p.tryEat(kind) {
		return true
	}
	p.emitMissing(nodeKind)
	return false
}

// eatOrRecover implements panic-mode recovery: if the current token
// isn't kind, tokens strictly weaker than kind (by tokenPrecedence) are
// consumed as Unexpected until kind is found or a token at or above
// kind's strength is hit, at which point recovery gives up and reports
// a Missing node instead of eating into the caller's sync point.
func (p *Parser) eatOrRecover(kind lexer.TokenKind, nodeKind NodeKind) bool {
	if p.tryEat(kind) {
		return true
	}

	wanted := precedenceOf(kind)
	for !p.hitEOF() && precedenceOf(p.current()) < wanted {
		p.emitUnexpected()
		if p.tryEat(kind) {
			return true
		}
	}

	p.output.Diagnostics = append(p.output.Diagnostics, diag.NewWithMessage(
		diag.RecoveryFailed,
		p.input.Tokens.Get(p.cursor).Start(),
		"expected "+kind.String()+" while recovering",
	))
	p.emitMissing(nodeKind)
	return false
}

// statementLoop stops at FileEnd always, and at a RightBrace only when
// nested inside an open block: a stray RightBrace at file scope (e.g.
// one left unconsumed by a failed recovery) has no block to close and
// must instead fall through to statement() to be reported and
// consumed, or parse() would return with a token still unread before
// FileEnd.
func (p *Parser) statementLoop() {
	if p.hitEOF() || (p.blockDepth > 0 && p.current() == lexer.RightBrace) {
		return
	}
	p.pushSequence(stateStatement, stateStatementLoop)
}

func (p *Parser) statement() {
	switch p.current() {
	case lexer.LeftBrace:
		p.pushState(stateBlockStart)
	case lexer.Enum:
		p.pushState(stateEnumStart)
	case lexer.Function:
		p.pushState(stateFunctionStart)
	default:
		p.emitUnexpected()
	}
}

func (p *Parser) blockStart() {
	p.blockDepth++
	p.emitStart(Block)
	p.eat() // {
	p.pushSequence(stateStatementLoop, stateBlockEnd)
}

// pushListStart begins a comma-separated list bounded by closeToken: the
// first item, if any, is parsed immediately, then loop/end states are
// scheduled to continue or close the list.
func (p *Parser) pushListStart(list listNodeKind) {
	if p.current() == list.closeToken {
		p.pushState(list.endState)
		return
	}
	p.pushSequence(list.itemState, list.loopState)
}

// listLoop runs after one list item: a separator continues the list, the
// close token ends it, anything else is treated as a missing separator
// and recovery takes over to find either one. When recovery stops on a
// stronger token instead, the list ends and the end state's own recovery
// looks for the close token.
func (p *Parser) listLoop(list listNodeKind) {
	if p.current() == list.closeToken {
		p.pushState(list.endState)
		return
	}
	if !p.eatOrRecover(list.separator, list.itemKind) {
		p.pushState(list.endState)
		return
	}
	if p.current() == list.closeToken {
		p.pushState(list.endState)
		return
	}
	p.pushSequence(list.itemState, list.loopState)
}

func (p *Parser) enumStart() {
	p.emitStart(EnumDecl)
	p.eat() // enum
	p.eatExpect(lexer.Identifier, EnumDecl)
	p.emitStart(EnumBlock)
	if !p.eatOrRecover(lexer.LeftBrace, EnumBlock) {
		p.emitEnd(EnumBlock)
		p.emitEnd(EnumDecl)
		return
	}
	p.pushListStart(enumMemberList)
}

// enumItem parses one enum member: an identifier, optionally followed by
// an initializer.
func (p *Parser) enumItem() {
	p.emitStart(EnumMember)
	p.eatExpect(lexer.Identifier, EnumMember)
	if p.tryEat(lexer.Equals) {
		p.expr()
	}
	p.emitEnd(EnumMember)
}

// functionStart parses a function declaration's header (name and
// parameter list) then defers to the shared block machinery for the
// body, closing with functionEnd once the block completes.
func (p *Parser) functionStart() {
	p.emitStart(Function)
	p.eat() // function
	p.eatExpect(lexer.Identifier, Function)
	p.eatOrRecover(lexer.LeftParen, Function)

	for !p.hitEOF() && p.current() != lexer.RightParen {
		if !p.tryEat(lexer.Identifier) {
			p.emitUnexpected()
			continue
		}
		if p.current() == lexer.RightParen {
			break
		}
		if !p.tryEat(lexer.Comma) {
			p.eatOrRecover(lexer.Comma, Function)
		}
	}
	p.eatOrRecover(lexer.RightParen, Function)

	p.pushSequence(stateBlockStart, stateFunctionEnd)
}

// expr parses the minimum expression grammar required: a unary chain
// terminating in a primary expression. It is plain recursive descent
// rather than stack-driven, since nothing here needs to survive a
// suspend/resume cycle across statement boundaries.
func (p *Parser) expr() {
	p.unaryExpr()
}

func (p *Parser) unaryExpr() {
	if p.current().IsPrefixOperator() {
		p.emitStart(PrefixOpExpr)
		p.eat()
		p.unaryExpr()
		p.emitEnd(PrefixOpExpr)
		return
	}
	p.primaryExpr()
}

func (p *Parser) primaryExpr() {
	switch p.current() {
	case lexer.Identifier, lexer.IntegerLiteral, lexer.RealLiteral,
		lexer.StringLiteral, lexer.VerbatimStringLiteral, lexer.BooleanLiteral:
		p.eat()
	case lexer.LeftParen:
		p.emitStart(ParenExpr)
		p.eat()
		p.expr()
		p.eatOrRecover(lexer.RightParen, ParenExpr)
		p.emitEnd(ParenExpr)
	case lexer.LeftSquare:
		p.arrayExpr()
	default:
		p.emitMissing(Ignore)
	}
}

// arrayExpr parses a bracketed, comma-separated expression list. It
// reuses Ignore as the Missing item's NodeKind since array elements have
// no dedicated semantic kind of their own.
func (p *Parser) arrayExpr() {
	p.emitStart(ArrayExpr)
	p.eat() // [

	for !p.hitEOF() && p.current() != lexer.RightSquare {
		if p.current() == lexer.Comma {
			p.emitMissing(Ignore)
		} else {
			p.expr()
		}
		if p.current() == lexer.RightSquare {
			break
		}
		if !p.tryEat(lexer.Comma) {
			break
		}
	}

	p.eatOrRecover(lexer.RightSquare, ArrayExpr)
	p.emitEnd(ArrayExpr)
}
