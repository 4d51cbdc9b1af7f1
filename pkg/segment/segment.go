// Package segment splits literal text runs into word units.
//
// A Segmenter must cover its input: concatenating the returned words yields
// the input text again. The chain builder relies on that to keep generated
// text faithful to the corpus spelling, including whitespace and newlines.
package segment

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segmenter splits a text run into ordered words.
type Segmenter interface {
	Segment(text string) []string
}

// Names of the built-in segmenters, as used in configuration.
const (
	NameIPA   = "ipa"
	NameSpace = "space"
	NameRune  = "rune"
)

// ByName returns the segmenter registered under name. An empty name selects
// the IPA dictionary segmenter.
func ByName(name string) (Segmenter, error) {
	switch name {
	case "", NameIPA:
		return NewKagome()
	case NameSpace:
		return Spaces{}, nil
	case NameRune:
		return Runes{}, nil
	default:
		return nil, fmt.Errorf("segment: unknown segmenter %q", name)
	}
}

// Spaces splits text into alternating runs of whitespace and non-whitespace.
// Whitespace runs are kept as words of their own.
type Spaces struct{}

func (Spaces) Segment(text string) []string {
	var words []string
	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i > start && space != inSpace {
			words = append(words, text[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(text) {
		words = append(words, text[start:])
	}
	return words
}

// Runes returns every rune as its own word. Invalid UTF-8 bytes are returned
// one byte at a time.
type Runes struct{}

func (Runes) Segment(text string) []string {
	words := make([]string, 0, utf8.RuneCountInString(text))
	for len(text) > 0 {
		_, size := utf8.DecodeRuneInString(text)
		words = append(words, text[:size])
		text = text[size:]
	}
	return words
}

// cover aligns surfaces against text and fills any gap the underlying
// analyzer skipped with the skipped substring, so the result always
// concatenates back to text.
func cover(text string, surfaces []string) []string {
	words := make([]string, 0, len(surfaces))
	pos := 0
	for _, s := range surfaces {
		if s == "" {
			continue
		}
		i := strings.Index(text[pos:], s)
		if i < 0 {
			continue
		}
		if i > 0 {
			words = append(words, text[pos:pos+i])
		}
		words = append(words, s)
		pos += i + len(s)
	}
	if pos < len(text) {
		words = append(words, text[pos:])
	}
	return words
}
