package markup

import "strings"

// Repair downgrades unmatched markers to literal text so that the remaining
// Open and Close tokens nest properly.
//
// A forward pass turns every Close without a pending Open into the text "]".
// A backward pass then turns every Open without a later Close into text
// carrying the whole marker. The passes are independent: a close dropped by
// the first pass is never paired with an open dropped by the second.
//
// The result has the same length and the same Render output as the input.
func Repair(tokens []Token) []Token {
	out := make([]Token, len(tokens))

	depth := 0
	for i, t := range tokens {
		switch t.Kind {
		case Open:
			depth++
		case Close:
			if depth == 0 {
				t = literal("]")
			} else {
				depth--
			}
		}
		out[i] = t
	}

	closes := 0
	for i := len(out) - 1; i >= 0; i-- {
		switch out[i].Kind {
		case Close:
			closes++
		case Open:
			if closes == 0 {
				out[i] = literal(out[i].Text)
			} else {
				closes--
			}
		}
	}
	return out
}

// Merge coalesces adjacent Text tokens into a single Text token. Emoji, Open
// and Close tokens are kept as they are.
func Merge(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	var run strings.Builder
	inRun := false

	flush := func() {
		if inRun {
			out = append(out, literal(run.String()))
			run.Reset()
			inRun = false
		}
	}

	for _, t := range tokens {
		if t.Kind == Text {
			run.WriteString(t.Text)
			inRun = true
			continue
		}
		flush()
		out = append(out, t)
	}
	flush()
	return out
}

// Balanced reports whether every Open is closed by a later Close in proper
// nesting order.
func Balanced(tokens []Token) bool {
	depth := 0
	for _, t := range tokens {
		switch t.Kind {
		case Open:
			depth++
		case Close:
			if depth == 0 {
				return false
			}
			depth--
		}
	}
	return depth == 0
}
