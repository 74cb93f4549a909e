package parser

import (
	"fmt"

	"github.com/aledsdavies/gml/lexer"
	"github.com/fxamacker/cbor/v2"
)

// snapshotEvent mirrors Event in a plain exported shape for CBOR encoding.
type snapshotEvent struct {
	Kind      EventKind
	NodeKind  NodeKind
	Token     lexer.TokenIndex
	TokenKind lexer.TokenKind
}

// Snapshot is the deterministic, serializable form of a ParseEvents
// stream, suitable for golden-file comparisons across parser revisions.
type Snapshot struct {
	Events      []snapshotEvent
	Diagnostics []string
}

func (pe *ParseEvents) toSnapshot() Snapshot {
	snap := Snapshot{
		Events:      make([]snapshotEvent, 0, len(pe.Events)),
		Diagnostics: make([]string, 0, len(pe.Diagnostics)),
	}
	for _, e := range pe.Events {
		snap.Events = append(snap.Events, snapshotEvent{
			Kind:      e.Kind,
			NodeKind:  e.NodeKind,
			Token:     e.Token,
			TokenKind: e.TokenKind,
		})
	}
	for _, d := range pe.Diagnostics {
		snap.Diagnostics = append(snap.Diagnostics, d.Message)
	}
	return snap
}

// Snapshot produces a deterministic CBOR encoding of the event stream.
func (pe *ParseEvents) Snapshot() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("parser: failed to create CBOR encoder: %w", err)
	}

	data, err := encMode.Marshal(pe.toSnapshot())
	if err != nil {
		return nil, fmt.Errorf("parser: CBOR encoding failed: %w", err)
	}
	return data, nil
}
