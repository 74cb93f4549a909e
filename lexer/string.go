package lexer

import "github.com/aledsdavies/gml/internal/invariant"

// scanStringLiteral scans a double-quoted string starting at data[0]
// ('"'), honoring backslash escapes but never crossing a line break.
// Returns the consumed length and StringLiteral, or Error if the string
// runs off the end of the line or the buffer unterminated.
func scanStringLiteral(data []byte) (int, TokenKind) {
	invariant.Precondition(len(data) > 0 && data[0] == '"', "string literal must start with a double quote")

	index := 1
	unterminated := true

	for index < len(data) {
		switch data[index] {
		case '\\':
			if index+1 < len(data) {
				index += 2
			} else {
				index = len(data)
			}
			continue
		case '"':
			index++
			unterminated = false
		case '\n':
		default:
			index++
			continue
		}
		break
	}

	if unterminated {
		return index, Error
	}
	return index, StringLiteral
}

// scanVerbatimStringLiteral scans an @"..." or @'...' verbatim string
// starting at data[0] ('@'). A doubled quote of whichever kind opened
// the literal is an escaped literal quote; any other byte, including
// line breaks, is taken verbatim. The closing delimiter must match the
// byte that opened the literal - matching only '"' regardless of the
// opening quote would let an @'...' literal run past its real
// terminator or stop early on an embedded '"'.
func scanVerbatimStringLiteral(data []byte) (int, TokenKind) {
	invariant.Precondition(len(data) > 2, "verbatim string literal must have an opening quote and at least one more byte")
	invariant.Precondition(data[0] == '@', "verbatim string literal must start with '@'")
	quote := data[1]
	invariant.Precondition(quote == '"' || quote == '\'', "verbatim string literal must open with '\"' or '\\''")

	index := 2
	unterminated := true

	for index < len(data) {
		if data[index] == quote {
			index++
			if index < len(data) && data[index] == quote {
				index++
				continue
			}
			unterminated = false
			break
		}
		index++
	}

	if unterminated {
		return index, Error
	}
	return index, VerbatimStringLiteral
}
