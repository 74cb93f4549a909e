package lexer

import (
	"fmt"

	"github.com/aledsdavies/gml/text"
	"github.com/fxamacker/cbor/v2"
)

// snapshotToken and snapshotComment/snapshotLine mirror the arena
// contents in a plain, exported shape so cbor doesn't need to reach
// into the unexported Token.data bit packing or the generic Arena type.
type snapshotToken struct {
	Kind            TokenKind
	Payload         uint32
	HasLeadingSpace bool
	Start           text.TextSize
}

type snapshotComment struct {
	Start text.TextSize
	End   text.TextSize
}

type snapshotLine struct {
	Start  text.TextSize
	Indent uint32
}

// Snapshot is the deterministic, serializable form of a TokenizedText,
// suitable for diffing across lexer revisions or storing as a golden
// test fixture.
type Snapshot struct {
	Tokens             []snapshotToken
	Comments           []snapshotComment
	Lines              []snapshotLine
	Diagnostics        []string
	LastLineIsInserted bool
}

func (tt *TokenizedText) toSnapshot() Snapshot {
	snap := Snapshot{
		Tokens:             make([]snapshotToken, 0, tt.Tokens.Len()),
		Comments:           make([]snapshotComment, 0, tt.Comments.Len()),
		Lines:              make([]snapshotLine, 0, tt.Lines.Len()),
		Diagnostics:        make([]string, 0, len(tt.Diagnostics)),
		LastLineIsInserted: tt.LastLineIsInserted,
	}

	tt.Tokens.All(func(_ TokenIndex, t Token) bool {
		snap.Tokens = append(snap.Tokens, snapshotToken{
			Kind:            t.Kind(),
			Payload:         t.Payload(),
			HasLeadingSpace: t.HasLeadingSpace(),
			Start:           t.Start(),
		})
		return true
	})

	tt.Comments.All(func(_ CommentIndex, c Comment) bool {
		snap.Comments = append(snap.Comments, snapshotComment{Start: c.Start, End: c.End})
		return true
	})

	tt.Lines.All(func(_ LineIndex, l Line) bool {
		snap.Lines = append(snap.Lines, snapshotLine{Start: l.Start, Indent: l.Indent})
		return true
	})

	for _, d := range tt.Diagnostics {
		snap.Diagnostics = append(snap.Diagnostics, d.Message)
	}

	return snap
}

// Snapshot produces a deterministic CBOR encoding of the token stream,
// suitable for golden-file comparisons across lexer changes.
func (tt *TokenizedText) Snapshot() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("lexer: failed to create CBOR encoder: %w", err)
	}

	data, err := encMode.Marshal(tt.toSnapshot())
	if err != nil {
		return nil, fmt.Errorf("lexer: CBOR encoding failed: %w", err)
	}
	return data, nil
}
