// Package lexer turns a source buffer into a TokenizedText: a dense
// array of packed tokens plus out-of-line comment and line tables.
package lexer

import (
	"log/slog"

	"github.com/aledsdavies/gml/config"
	"github.com/aledsdavies/gml/diag"
	"github.com/aledsdavies/gml/internal/invariant"
	"github.com/aledsdavies/gml/text"
)

type dispatchKind uint8

const (
	dispatchIdentifierStart dispatchKind = iota
	dispatchCommonSymbolStart
	dispatchUniqueSymbolStart
	dispatchNumberOrDot
	dispatchQuote
	dispatchAt
	dispatchDollar
	dispatchHorizontalWhitespace
	dispatchCommentOrDivide
	dispatchNewline
	dispatchCR
	dispatchError
)

var dispatchTable [256]dispatchKind

func isCommonSymbolStart(c byte) bool {
	switch c {
	case '>', '<', '&', '|', '^', '~', '+', '*', '/', '%', '=', '!', '-', '?', '[':
		return true
	default:
		return false
	}
}

func isUniqueSymbolStart(c byte) bool {
	switch c {
	case ';', ':', ',', '.', '{', '}', '(', ')', ']':
		return true
	default:
		return false
	}
}

func isHorizontalWhitespace(c byte) bool { return c == ' ' || c == '\t' }

func init() {
	for c := 0; c < 256; c++ {
		b := byte(c)
		switch {
		case b == '/':
			dispatchTable[c] = dispatchCommentOrDivide
		case b == '\n':
			dispatchTable[c] = dispatchNewline
		case b == '\r':
			dispatchTable[c] = dispatchCR
		case b == '.':
			dispatchTable[c] = dispatchNumberOrDot
		case b == '"':
			dispatchTable[c] = dispatchQuote
		case b == '@':
			dispatchTable[c] = dispatchAt
		case b == '$':
			dispatchTable[c] = dispatchDollar
		case b >= '0' && b <= '9':
			dispatchTable[c] = dispatchNumberOrDot
		case isIdentifierStart(b):
			dispatchTable[c] = dispatchIdentifierStart
		case isCommonSymbolStart(b):
			dispatchTable[c] = dispatchCommonSymbolStart
		case isUniqueSymbolStart(b):
			dispatchTable[c] = dispatchUniqueSymbolStart
		case isHorizontalWhitespace(b):
			dispatchTable[c] = dispatchHorizontalWhitespace
		default:
			dispatchTable[c] = dispatchError
		}
	}
}

// keywords maps reserved words to their TokenKind. "static" is present
// here though the reference keyword table omits it, despite Static
// existing as a TokenKind and being documented as a reserved word -
// this table restores it.
var keywords = map[string]TokenKind{
	"and":         And,
	"or":          Or,
	"xor":         Xor,
	"not":         Not,
	"mod":         Modulo,
	"div":         IntegerDivide,
	"begin":       LeftBrace,
	"end":         RightBrace,
	"true":        BooleanLiteral,
	"false":       BooleanLiteral,
	"break":       Break,
	"exit":        Exit,
	"do":          Do,
	"until":       Until,
	"case":        Case,
	"else":        Else,
	"new":         New,
	"var":         Var,
	"globalvar":   GlobalVar,
	"try":         Try,
	"catch":       Catch,
	"finally":     Finally,
	"return":      Return,
	"continue":    Continue,
	"for":         For,
	"switch":      Switch,
	"while":       While,
	"repeat":      Repeat,
	"function":    Function,
	"with":        With,
	"default":     Default,
	"if":          If,
	"then":        Then,
	"throw":       Throw,
	"delete":      Delete,
	"enum":        Enum,
	"constructor": Constructor,
	"static":      Static,
}

// KeywordSpellings lists every reserved word, for "did you mean"
// suggestions when a parser finds an identifier where a keyword was
// expected.
var KeywordSpellings []string

func init() {
	KeywordSpellings = make([]string, 0, len(keywords))
	for k := range keywords {
		KeywordSpellings = append(KeywordSpellings, k)
	}
}

// Lexer converts a source buffer into a TokenizedText by walking it
// once, byte by byte, through a 256-entry dispatch table.
type Lexer struct {
	output *TokenizedText
	buf    text.Buffer
	cfg    config.LexerConfig

	cursor    text.TextSize
	lineIndex LineIndex

	openBrackets []TokenIndex

	hasLeadingSpace       bool
	hasMismatchedBrackets bool
}

// Lex tokenizes buf into a TokenizedText.
func Lex(buf text.Buffer, opts ...config.LexerOpt) *TokenizedText {
	cfg := config.NewLexerConfig(opts...)
	l := &Lexer{
		output: newTokenizedText(buf),
		buf:    buf,
		cfg:    cfg,
	}
	l.lex()
	return l.output
}

func (l *Lexer) lex() {
	l.makeLines()
	l.lexFileStart()

	for l.cursor < l.buf.Len() {
		b := l.buf.UncheckedByteAt(l.cursor)
		switch dispatchTable[b] {
		case dispatchIdentifierStart:
			l.lexKeywordOrIdentifier()
		case dispatchCommonSymbolStart:
			l.lexCommonStartSymbol()
		case dispatchUniqueSymbolStart:
			l.lexUniqueStartSymbol()
		case dispatchNumberOrDot:
			l.lexNumberLiteralOrDot()
		case dispatchQuote:
			l.lexStringLiteral()
		case dispatchAt:
			l.lexVerbatimStringLiteral()
		case dispatchDollar:
			l.lexTemplateStringOrHexLiteral()
		case dispatchHorizontalWhitespace:
			l.lexHorizontalWhitespace()
		case dispatchNewline:
			l.lexVerticalWhitespace()
		case dispatchCR:
			l.lexCR()
		case dispatchCommentOrDivide:
			l.lexCommentOrDivide()
		case dispatchError:
			l.lexError()
		}
	}

	l.lexFileEnd()

	invariant.Postcondition(l.output.Tokens.Len() < MaxTokenIndex,
		"token count %d reached the limit of %d a token payload can address", l.output.Tokens.Len(), MaxTokenIndex)

	if l.cfg.Debug >= config.DebugPaths {
		l.cfg.Logger.Debug("gml lexer: finished",
			slog.Int("tokens", l.output.Tokens.Len()),
			slog.Int("lines", l.output.Lines.Len()),
			slog.Int("diagnostics", len(l.output.Diagnostics)))
	}
}

func (l *Lexer) addToken(kind TokenKind, start text.TextSize) TokenIndex {
	return l.addTokenWithPayload(kind, 0, start)
}

func (l *Lexer) addTokenWithPayload(kind TokenKind, payload uint32, start text.TextSize) TokenIndex {
	token := NewToken(kind, l.hasLeadingSpace, payload, start)
	l.hasLeadingSpace = false
	return l.output.Tokens.Push(token)
}

func (l *Lexer) peek() byte {
	if l.cursor+1 < l.buf.Len() {
		return l.buf.UncheckedByteAt(l.cursor + 1)
	}
	return 0
}

func (l *Lexer) current() byte { return l.buf.UncheckedByteAt(l.cursor) }

func (l *Lexer) lexFileStart() {
	invariant.Invariant(l.cursor == 0, "lexFileStart must run before any bytes are consumed")
	l.addToken(FileStart, text.TextSize(0))
	l.hasLeadingSpace = true

	currentLine := l.output.Lines.Get(l.lineIndex)
	invariant.Invariant(currentLine.Start == 0, "first line must start at offset 0")

	l.advanceToLine(LineIndex(0))
}

func (l *Lexer) lexFileEnd() {
	invariant.Invariant(l.cursor == l.buf.Len(), "lexFileEnd must run only once all bytes are consumed")
	l.hasLeadingSpace = true
	l.addToken(FileEnd, l.cursor)
}

func (l *Lexer) makeLines() {
	if l.buf.Len() == 0 {
		l.output.Lines.Push(Line{Start: 0})
		return
	}

	var start text.TextSize = 0

	for {
		newLineStart, ok := l.buf.FindNext('\n', start)
		if !ok {
			break
		}
		l.output.Lines.Push(Line{Start: start})
		start = newLineStart + 1
	}

	l.output.Lines.Push(Line{Start: start})

	if start != l.buf.Len() {
		l.output.Lines.Push(Line{Start: l.buf.Len()})
		l.output.LastLineIsInserted = true
	}
}

func (l *Lexer) advanceToLine(toLine LineIndex) {
	invariant.Precondition(toLine > l.lineIndex || (toLine == 0 && l.lineIndex == 0), "advanceToLine must move forward")
	l.lineIndex = toLine
	l.cursor = l.output.Lines.Get(toLine).Start
	l.skipHorizontalWhitespace()
	line := l.output.Lines.Get(l.lineIndex)
	l.output.Lines.Set(l.lineIndex, Line{Start: line.Start, Indent: uint32(l.cursor - line.Start)})
}

// advanceToNextLine moves to the first line that starts after the cursor.
// A token spanning line breaks (a block comment, a verbatim string) has
// already stepped over some line starts, so this may skip several lines.
func (l *Lexer) advanceToNextLine() {
	next := l.lineIndex + 1
	for int(next) < l.output.Lines.Len()-1 && l.output.Lines.Get(next).Start <= l.cursor {
		next++
	}
	l.advanceToLine(next)
}

func (l *Lexer) skipHorizontalWhitespace() {
	for l.cursor < l.buf.Len() && isHorizontalWhitespace(l.current()) {
		l.cursor++
	}
}

func (l *Lexer) lexHorizontalWhitespace() {
	l.hasLeadingSpace = true
	l.skipHorizontalWhitespace()
}

func (l *Lexer) lexVerticalWhitespace() {
	l.hasLeadingSpace = true
	l.advanceToNextLine()
}

func (l *Lexer) lexCR() {
	if l.peek() == '\n' {
		l.lexVerticalWhitespace()
		return
	}

	isLFCR := l.cursor > 0 && l.buf.ByteAt(l.cursor-1) == '\n'

	if isLFCR {
		l.output.Diagnostics = append(l.output.Diagnostics, diag.New(diag.LFCR, l.cursor))
	} else {
		l.output.Diagnostics = append(l.output.Diagnostics, diag.New(diag.RawCR, l.cursor))
	}

	l.hasLeadingSpace = true
	l.cursor++
}

// lexCommonStartSymbol lexes the maximal-munch operator/punctuator
// starting at the cursor. Beyond the reference algorithm, this adds the
// doubled forms ++, --, **, and || (the reference leaves these as dead
// fallthroughs to their single-character tokens despite PlusPlus,
// MinusMinus, Power, and Or all existing as token kinds; && is handled
// correctly and is kept as-is) and folds the bare and doubled forms of
// = into the single Equals kind, since no Assign token kind exists.
func (l *Lexer) lexCommonStartSymbol() {
	invariant.Invariant(isCommonSymbolStart(l.current()), "lexCommonStartSymbol must start on a common-symbol byte")

	start := l.cursor
	rest := l.buf.SliceFrom(start)

	kind, length, ok := matchCommonSymbol(rest)
	if !ok {
		l.lexError()
		return
	}

	l.cursor += text.TextSize(length)
	tokenIndex := l.addToken(kind, start)

	if kind.isOpenDelimiter() {
		l.openBrackets = append(l.openBrackets, tokenIndex)
	}
}

func hasPrefix(data []byte, prefix string) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if data[i] != prefix[i] {
			return false
		}
	}
	return true
}

func matchCommonSymbol(data []byte) (TokenKind, int, bool) {
	switch data[0] {
	case '>':
		switch {
		case hasPrefix(data, ">>="):
			return RightShiftAssign, 3, true
		case hasPrefix(data, ">>"):
			return RightShift, 2, true
		case hasPrefix(data, ">="):
			return GreaterThanEquals, 2, true
		default:
			return GreaterThan, 1, true
		}
	case '<':
		switch {
		case hasPrefix(data, "<<="):
			return LeftShiftAssign, 3, true
		case hasPrefix(data, "<<"):
			return LeftShift, 2, true
		case hasPrefix(data, "<="):
			return LessThanEquals, 2, true
		default:
			return LessThan, 1, true
		}
	case '&':
		switch {
		case hasPrefix(data, "&="):
			return BitAndAssign, 2, true
		case hasPrefix(data, "&&"):
			return And, 2, true
		default:
			return BitAnd, 1, true
		}
	case '|':
		switch {
		case hasPrefix(data, "|="):
			return BitOrAssign, 2, true
		case hasPrefix(data, "||"):
			return Or, 2, true
		default:
			return BitOr, 1, true
		}
	case '^':
		if hasPrefix(data, "^=") {
			return BitXorAssign, 2, true
		}
		return BitXor, 1, true
	case '~':
		if hasPrefix(data, "~=") {
			return BitNotAssign, 2, true
		}
		return BitNot, 1, true
	case '+':
		switch {
		case hasPrefix(data, "+="):
			return PlusAssign, 2, true
		case hasPrefix(data, "++"):
			return PlusPlus, 2, true
		default:
			return Plus, 1, true
		}
	case '*':
		switch {
		case hasPrefix(data, "*="):
			return MultiplyAssign, 2, true
		case hasPrefix(data, "**"):
			return Power, 2, true
		default:
			return Multiply, 1, true
		}
	case '/':
		if hasPrefix(data, "/=") {
			return DivideAssign, 2, true
		}
		return Divide, 1, true
	case '%':
		if hasPrefix(data, "%=") {
			return ModuloAssign, 2, true
		}
		return Modulo, 1, true
	case '=':
		if hasPrefix(data, "==") {
			return Equals, 2, true
		}
		return Equals, 1, true
	case '!':
		if hasPrefix(data, "!=") {
			return NotEquals, 2, true
		}
		return Not, 1, true
	case '-':
		switch {
		case hasPrefix(data, "-="):
			return MinusAssign, 2, true
		case hasPrefix(data, "--"):
			return MinusMinus, 2, true
		default:
			return Minus, 1, true
		}
	case '?':
		switch {
		case hasPrefix(data, "??="):
			return NullCoalesceAssign, 3, true
		case hasPrefix(data, "??"):
			return NullCoalesce, 2, true
		default:
			return QuestionMark, 1, true
		}
	case '[':
		switch {
		case hasPrefix(data, "[|"):
			return ListAccessor, 2, true
		case hasPrefix(data, "[?"):
			return MapAccessor, 2, true
		case hasPrefix(data, "[#"):
			return GridAccessor, 2, true
		case hasPrefix(data, "[@"):
			return ArrayAccessor, 2, true
		case hasPrefix(data, "[$"):
			return StructAccessor, 2, true
		default:
			return LeftSquare, 1, true
		}
	default:
		return Error, 0, false
	}
}

func (l *Lexer) lexUniqueStartSymbol() {
	invariant.Invariant(isUniqueSymbolStart(l.current()), "lexUniqueStartSymbol must start on a unique-symbol byte")
	start := l.cursor
	var kind TokenKind
	switch l.current() {
	case ';':
		kind = Semicolon
	case ':':
		kind = Colon
	case ',':
		kind = Comma
	case '.':
		kind = Dot
	case '{':
		kind = LeftBrace
	case '}':
		kind = RightBrace
	case '(':
		kind = LeftParen
	case ')':
		kind = RightParen
	case ']':
		kind = RightSquare
	default:
		l.lexError()
		return
	}

	l.cursor++

	if !kind.isCloseDelimiter() {
		tokenIndex := l.addToken(kind, start)
		if kind.isOpenDelimiter() {
			l.openBrackets = append(l.openBrackets, tokenIndex)
		}
		return
	}

	if n := len(l.openBrackets); n > 0 {
		openTokenIndex := l.openBrackets[n-1]
		l.openBrackets = l.openBrackets[:n-1]

		closeTokenIndex := l.addTokenWithPayload(kind, uint32(openTokenIndex), start)
		openToken := l.output.Tokens.GetPtr(openTokenIndex)
		if isMatchingDelimiter(openToken.Kind(), kind) {
			openToken.SetPayload(uint32(closeTokenIndex))
		} else {
			l.hasMismatchedBrackets = true
		}
	} else {
		l.hasMismatchedBrackets = true
		l.addToken(kind, start)
	}
}

func (l *Lexer) lexKeywordOrIdentifier() {
	start := l.cursor
	if l.buf.ByteAt(start) > 0x7F {
		l.lexError()
		return
	}

	length := scanIdentifier(l.buf.SliceFrom(l.cursor), l.cfg.IdentifierScanner)
	l.cursor += text.TextSize(length)
	spelling := l.buf.Slice(start, l.cursor)

	if kind, ok := keywords[string(spelling)]; ok {
		l.addToken(kind, start)
		return
	}

	l.addTokenWithPayload(Identifier, 0, start)
}

func (l *Lexer) lexNumberLiteralOrDot() {
	start := l.cursor
	length, kind := scanNumberOrDot(l.buf.SliceFrom(start))

	if kind == Error {
		l.lexError()
		return
	}

	l.cursor += text.TextSize(length)

	if kind == Dot {
		l.addToken(Dot, start)
		return
	}

	l.addTokenWithPayload(kind, 0, start)
}

func (l *Lexer) lexStringLiteral() {
	start := l.cursor
	length, kind := scanStringLiteral(l.buf.SliceFrom(start))

	if kind == Error {
		l.lexError()
		return
	}

	l.cursor += text.TextSize(length)
	l.addTokenWithPayload(kind, 0, start)
}

func (l *Lexer) lexVerbatimStringLiteral() {
	start := l.cursor
	rest := l.buf.SliceFrom(start)

	if len(rest) <= 2 || (rest[1] != '"' && rest[1] != '\'') {
		l.lexError()
		return
	}

	length, kind := scanVerbatimStringLiteral(rest)

	if kind == Error {
		l.lexError()
		return
	}

	l.cursor += text.TextSize(length)
	l.addTokenWithPayload(kind, 0, start)
}

// lexTemplateStringOrHexLiteral is reserved: template strings and
// $-prefixed hex/binary literals are not part of this lexer's scope, so
// a leading '$' is reported the same way any other unrecognized input
// is.
func (l *Lexer) lexTemplateStringOrHexLiteral() {
	invariant.Invariant(l.current() == '$', "lexTemplateStringOrHexLiteral must start on '$'")
	l.lexError()
}

func (l *Lexer) lexCommentOrDivide() {
	invariant.Invariant(l.current() == '/', "lexCommentOrDivide must start on '/'")
	start := l.cursor

	switch l.peek() {
	case '/':
		l.advanceToNextLine()
		id := l.output.Comments.Push(Comment{Start: start, End: l.cursor})
		l.addTokenWithPayload(SingleLineComment, uint32(id), start)
	case '*':
		l.cursor++
		for l.cursor < l.buf.Len() {
			if l.current() == '*' && l.cursor+1 < l.buf.Len() && l.peek() == '/' {
				l.cursor += 2
				break
			}
			l.cursor++
		}
		// An unterminated block comment runs to EOF and is tolerated
		// silently here, matching an unterminated "//" comment.
		id := l.output.Comments.Push(Comment{Start: start, End: l.cursor})
		l.addTokenWithPayload(MultiLineComment, uint32(id), start)
	default:
		l.lexCommonStartSymbol()
	}
}

func (l *Lexer) lexError() {
	start := l.cursor

	for l.cursor < l.buf.Len() {
		c := l.current()
		if isIdentifierByte(c) || isHorizontalWhitespace(c) {
			break
		}
		l.cursor++
	}

	length := l.cursor - start

	if length == 0 {
		l.cursor++
		length++
	}

	l.output.Diagnostics = append(l.output.Diagnostics, diag.New(diag.UnrecognizedBytes, start))
	l.addTokenWithPayload(Error, uint32(length), start)
}
