// Package markup scans note text into a token stream and repairs unbalanced
// function markers.
//
// The surface syntax has three structural forms on top of literal text:
//
//   - ":name:"           emoji reference
//   - "$[name.k=v,flag " function open (the trailing whitespace is part of it)
//   - "]"                function close
//
// Everything else, including newlines, is literal text. Scanning never fails:
// every input byte ends up in exactly one token, and [Render] of any token
// stream produced by this package reproduces the original input.
//
// The usual pipeline is [Parse], which is Merge(Repair(Lex(s))).
package markup

import "strings"

// Kind identifies the lexical class of a Token.
type Kind uint8

const (
	// Text is literal text: a single rune straight out of the lexer, a run
	// after Merge, or a marker downgraded by Repair.
	Text Kind = iota
	// Emoji is an emoji reference such as ":smile:".
	Emoji
	// Open is a function open marker such as "$[x2 ".
	Open
	// Close is a function close marker "]".
	Close
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Emoji:
		return "emoji"
	case Open:
		return "open"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// Arg is one parameter of a function open marker: "key" or "key=value".
type Arg struct {
	Key      string
	Value    string
	HasValue bool
}

func (a Arg) String() string {
	if a.HasValue {
		return a.Key + "=" + a.Value
	}
	return a.Key
}

// Token is a single lexical unit.
type Token struct {
	Kind Kind

	// Text is the exact source text of the token. For Open it is the whole
	// marker including the trailing whitespace; for Emoji the colons are
	// included.
	Text string

	// Name is the function name of an Open token.
	Name string

	// Args are the parameters of an Open token in source order.
	Args []Arg
}

func literal(s string) Token {
	return Token{Kind: Text, Text: s}
}

// Arg returns the parameter with the given key.
func (t Token) Arg(key string) (Arg, bool) {
	for _, a := range t.Args {
		if a.Key == key {
			return a, true
		}
	}
	return Arg{}, false
}

// Render concatenates the source text of all tokens.
func Render(tokens []Token) string {
	n := 0
	for i := range tokens {
		n += len(tokens[i].Text)
	}
	var b strings.Builder
	b.Grow(n)
	for i := range tokens {
		b.WriteString(tokens[i].Text)
	}
	return b.String()
}

// Parse lexes s, repairs unbalanced markers and merges literal runs.
func Parse(s string) []Token {
	return Merge(Repair(Lex(s)))
}
