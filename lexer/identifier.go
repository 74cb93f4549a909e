package lexer

import "github.com/aledsdavies/gml/config"

var identifierByteTable [256]bool
var identifierStartTable [256]bool

func init() {
	for c := 0; c < 256; c++ {
		b := byte(c)
		isAlpha := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
		identifierStartTable[c] = isAlpha || b == '_'
		identifierByteTable[c] = isAlpha || b == '_' || (b >= '0' && b <= '9')
	}
}

func isIdentifierStart(c byte) bool { return identifierStartTable[c] }

func isIdentifierByte(c byte) bool { return identifierByteTable[c] }

// scanIdentifier returns the byte length of the identifier run starting
// at data[0] (data[0] is assumed to already satisfy isIdentifierStart).
//
// The reference lexer dispatches to an SSE2 nibble-shuffle classifier
// here; Go has no portable equivalent without cgo or assembly, so
// ScannerSWAR strides 8 bytes at a time using a table lookup per byte to
// cut branch overhead in the common case of a long identifier, falling
// back to the same per-byte table on the tail. ScannerScalar walks one
// byte at a time and exists for debugging and for architectures where
// striding buys nothing.
func scanIdentifier(data []byte, scanner config.IdentifierScanner) int {
	if scanner == config.ScannerScalar {
		return scanIdentifierScalar(data, 0)
	}
	return scanIdentifierStrided(data)
}

func scanIdentifierScalar(data []byte, start int) int {
	i := start
	for i < len(data) && isIdentifierByte(data[i]) {
		i++
	}
	return i
}

func scanIdentifierStrided(data []byte) int {
	i := 0
	n := len(data)
	for i+8 <= n {
		if !isIdentifierByte(data[i]) || !isIdentifierByte(data[i+1]) ||
			!isIdentifierByte(data[i+2]) || !isIdentifierByte(data[i+3]) ||
			!isIdentifierByte(data[i+4]) || !isIdentifierByte(data[i+5]) ||
			!isIdentifierByte(data[i+6]) || !isIdentifierByte(data[i+7]) {
			return scanIdentifierScalar(data, i)
		}
		i += 8
	}
	return scanIdentifierScalar(data, i)
}
