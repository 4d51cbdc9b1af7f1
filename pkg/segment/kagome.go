package segment

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome segments Japanese text with the kagome morphological analyzer and
// the IPADIC dictionary in normal mode.
//
// A Kagome is safe for concurrent use.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome loads the IPA dictionary and returns a segmenter using it.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("segment: kagome: %w", err)
	}
	return &Kagome{t: t}, nil
}

func (k *Kagome) Segment(text string) []string {
	if text == "" {
		return nil
	}
	tokens := k.t.Tokenize(text)
	surfaces := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		surfaces = append(surfaces, tok.Surface)
	}
	return cover(text, surfaces)
}
