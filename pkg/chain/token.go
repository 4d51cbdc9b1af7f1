// Package chain implements the note Markov chain: the transition and
// parameter tables built from a corpus, and the depth-bounded generator that
// samples new notes from them.
//
// The chain is context sensitive. Every function call opens a sub-chain keyed
// by the function's body token, so the content of "$[x2 ...]" is learned
// separately from top-level text and from the content of other functions.
package chain

import (
	"cmp"
	"strconv"
)

// Kind is the variant of a Token. The numeric values define the token order
// and are stable.
type Kind uint8

const (
	KindStart Kind = iota
	KindWord
	KindCall
	KindBody
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindWord:
		return "word"
	case KindCall:
		return "call"
	case KindBody:
		return "body"
	case KindEnd:
		return "end"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is a state of the chain.
//
// Start is the initial context of a note. Word carries literal text or an
// emoji reference. Call is emitted when a function is invoked and becomes the
// context after its close marker. Body is the context that keys the body of a
// function and is never emitted. End terminates the current sub-chain.
type Token struct {
	Kind Kind
	// Text is the word text for KindWord and the function name for KindCall
	// and KindBody.
	Text string
}

func Start() Token { return Token{Kind: KindStart} }
func Word(text string) Token { return Token{Kind: KindWord, Text: text} }
func Call(name string) Token { return Token{Kind: KindCall, Text: name} }
func Body(name string) Token { return Token{Kind: KindBody, Text: name} }
func End() Token { return Token{Kind: KindEnd} }

// Compare orders tokens by kind, then by text.
func Compare(a, b Token) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.Text, b.Text)
}

func (t Token) String() string {
	switch t.Kind {
	case KindStart, KindEnd:
		return t.Kind.String()
	default:
		return t.Kind.String() + "(" + strconv.Quote(t.Text) + ")"
	}
}

// ParseToken parses the String form of a token. Bare words are accepted as
// Word tokens.
func ParseToken(s string) (Token, error) {
	for _, k := range []Kind{KindStart, KindEnd} {
		if s == k.String() {
			return Token{Kind: k}, nil
		}
	}
	for _, k := range []Kind{KindWord, KindCall, KindBody} {
		prefix := k.String() + "("
		if len(s) > len(prefix) && s[:len(prefix)] == prefix && s[len(s)-1] == ')' {
			text, err := strconv.Unquote(s[len(prefix) : len(s)-1])
			if err != nil {
				return Token{}, err
			}
			return Token{Kind: k, Text: text}, nil
		}
	}
	return Word(s), nil
}

// ParamState is the variant of a ParamValue.
type ParamState uint8

const (
	ParamAbsent ParamState = iota
	ParamNoValue
	ParamWithValue
)

// ParamValue is the observed state of one parameter key in one invocation.
type ParamValue struct {
	State ParamState
	Text  string
}

func Absent() ParamValue { return ParamValue{State: ParamAbsent} }
func NoValue() ParamValue { return ParamValue{State: ParamNoValue} }
func WithValue(v string) ParamValue { return ParamValue{State: ParamWithValue, Text: v} }

func (v ParamValue) String() string {
	switch v.State {
	case ParamAbsent:
		return "absent"
	case ParamNoValue:
		return "flag"
	default:
		return "=" + v.Text
	}
}
