// Package corpus stores the notes a model is learned from.
//
// Notes are kept in a kv.Store under "corpus:note:{id}" as msgpack records.
// They come from Misskey (see package misskey) or from JSON exports read by
// Decode.
package corpus

import (
	"errors"
)

// Note is one corpus document. A nil Text marks a note without text, such as
// a renote or a file-only post; it is stored but not learned from.
type Note struct {
	ID        string  `msgpack:"id" json:"id"`
	Text      *string `msgpack:"text" json:"text"`
	CreatedAt string  `msgpack:"created_at,omitempty" json:"createdAt,omitempty"`
}

// HasText reports whether the note carries text.
func (n Note) HasText() bool { return n.Text != nil }

var (
	// ErrDecode wraps every corpus decoding failure.
	ErrDecode = errors.New("corpus: decode")

	// ErrEmpty is returned when a model is requested from a corpus without
	// any text.
	ErrEmpty = errors.New("corpus: no notes with text")
)

// Texts returns the texts of notes that have one, in order.
func Texts(notes []Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		if n.Text != nil {
			out = append(out, *n.Text)
		}
	}
	return out
}
