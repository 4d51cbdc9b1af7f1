package markup

import (
	"unicode"
	"unicode/utf8"
)

// Lex scans s into tokens. Each position takes the longest of the emoji,
// function-open, function-close and single-rune rules, so no input is ever
// rejected.
func Lex(s string) []Token {
	l := lexer{src: s}
	var tokens []Token
	for l.pos < len(l.src) {
		tokens = append(tokens, l.next())
	}
	return tokens
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() Token {
	switch l.src[l.pos] {
	case ':':
		if end, ok := l.scanEmoji(); ok {
			tok := Token{Kind: Emoji, Text: l.src[l.pos:end]}
			l.pos = end
			return tok
		}
	case '$':
		if tok, end, ok := l.scanOpen(); ok {
			l.pos = end
			return tok
		}
	case ']':
		l.pos++
		return Token{Kind: Close, Text: "]"}
	}
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	tok := literal(l.src[l.pos : l.pos+size])
	l.pos += size
	return tok
}

// scanEmoji matches ':' [A-Za-z0-9_]+ ':' at the current position.
func (l *lexer) scanEmoji() (int, bool) {
	i := l.pos + 1
	start := i
	i = skip(l.src, i, isEmojiByte)
	if i == start || i >= len(l.src) || l.src[i] != ':' {
		return 0, false
	}
	return i + 1, true
}

// scanOpen matches
//
//	"$[" name ( "." arg ( "," arg )* )? whitespace
//	arg = key ( "=" value )?
//
// at the current position. The single trailing whitespace rune belongs to the
// marker.
func (l *lexer) scanOpen() (Token, int, bool) {
	s := l.src
	i := l.pos
	if i+1 >= len(s) || s[i+1] != '[' {
		return Token{}, 0, false
	}
	i += 2

	nameStart := i
	i = skip(s, i, isAlnum)
	if i == nameStart {
		return Token{}, 0, false
	}
	tok := Token{Kind: Open, Name: s[nameStart:i]}

	if i < len(s) && s[i] == '.' {
		i++
		for {
			keyStart := i
			i = skip(s, i, isAlnum)
			if i == keyStart {
				return Token{}, 0, false
			}
			arg := Arg{Key: s[keyStart:i]}
			if i < len(s) && s[i] == '=' {
				i++
				valueStart := i
				i = skip(s, i, isValueByte)
				if i == valueStart {
					return Token{}, 0, false
				}
				arg.Value = s[valueStart:i]
				arg.HasValue = true
			}
			tok.Args = putArg(tok.Args, arg)
			if i < len(s) && s[i] == ',' {
				i++
				continue
			}
			break
		}
	}

	if i >= len(s) {
		return Token{}, 0, false
	}
	r, size := utf8.DecodeRuneInString(s[i:])
	if r == utf8.RuneError || !unicode.IsSpace(r) {
		return Token{}, 0, false
	}
	i += size

	tok.Text = s[l.pos:i]
	return tok, i, true
}

// putArg appends arg, or overwrites the value of an earlier arg with the same
// key while keeping that arg's position.
func putArg(args []Arg, arg Arg) []Arg {
	for i := range args {
		if args[i].Key == arg.Key {
			args[i] = arg
			return args
		}
	}
	return append(args, arg)
}

func skip(s string, i int, accept func(byte) bool) int {
	for i < len(s) && accept(s[i]) {
		i++
	}
	return i
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isEmojiByte(c byte) bool {
	return isAlnum(c) || c == '_'
}

func isValueByte(c byte) bool {
	return isAlnum(c) || c == '.' || c == '-'
}
