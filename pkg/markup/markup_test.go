package markup

import (
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "plain",
			input: "ab",
			want:  []Token{literal("a"), literal("b")},
		},
		{
			name:  "emoji",
			input: "x:blob_cat:y",
			want:  []Token{literal("x"), {Kind: Emoji, Text: ":blob_cat:"}, literal("y")},
		},
		{
			name:  "unterminated emoji",
			input: ":abc",
			want:  []Token{literal(":"), literal("a"), literal("b"), literal("c")},
		},
		{
			name:  "empty emoji",
			input: "::",
			want:  []Token{literal(":"), literal(":")},
		},
		{
			name:  "open without args",
			input: "$[x2 hi]",
			want: []Token{
				{Kind: Open, Text: "$[x2 ", Name: "x2"},
				literal("h"), literal("i"),
				{Kind: Close, Text: "]"},
			},
		},
		{
			name:  "open with newline terminator",
			input: "$[flip\n]",
			want: []Token{
				{Kind: Open, Text: "$[flip\n", Name: "flip"},
				{Kind: Close, Text: "]"},
			},
		},
		{
			name:  "open with args",
			input: "$[spin.speed=1.5s,left ]",
			want: []Token{
				{Kind: Open, Text: "$[spin.speed=1.5s,left ", Name: "spin", Args: []Arg{
					{Key: "speed", Value: "1.5s", HasValue: true},
					{Key: "left"},
				}},
				{Kind: Close, Text: "]"},
			},
		},
		{
			name:  "open with ideographic space",
			input: "$[x2　",
			want:  []Token{{Kind: Open, Text: "$[x2　", Name: "x2"}},
		},
		{
			name:  "open missing whitespace",
			input: "$[x]",
			want:  []Token{literal("$"), literal("["), literal("x"), {Kind: Close, Text: "]"}},
		},
		{
			name:  "open with empty value",
			input: "$[a.b= ",
			want: []Token{
				literal("$"), literal("["), literal("a"), literal("."),
				literal("b"), literal("="), literal(" "),
			},
		},
		{
			name:  "multibyte literal",
			input: "猫:",
			want:  []Token{literal("猫"), literal(":")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lex(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lex(%q) =\n%+v\nwant\n%+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLexDuplicateKeys(t *testing.T) {
	tokens := Lex("$[f.a=1,b,a=2 ")
	if len(tokens) != 1 || tokens[0].Kind != Open {
		t.Fatalf("Lex = %+v, want single open", tokens)
	}
	want := []Arg{{Key: "a", Value: "2", HasValue: true}, {Key: "b"}}
	if !reflect.DeepEqual(tokens[0].Args, want) {
		t.Errorf("Args = %+v, want %+v", tokens[0].Args, want)
	}
	if a, ok := tokens[0].Arg("a"); !ok || a.String() != "a=2" {
		t.Errorf("Arg(a) = %v, %v", a, ok)
	}
}

func TestRepairExample(t *testing.T) {
	const input = "a$[b.x=1,y ]c]"

	tokens := Lex(input)
	wantKinds := []Kind{Text, Open, Close, Text, Close}
	if got := kinds(tokens); !reflect.DeepEqual(got, wantKinds) {
		t.Fatalf("Lex kinds = %v, want %v", got, wantKinds)
	}
	wantArgs := []Arg{{Key: "x", Value: "1", HasValue: true}, {Key: "y"}}
	if tokens[1].Name != "b" || !reflect.DeepEqual(tokens[1].Args, wantArgs) {
		t.Fatalf("open = %+v", tokens[1])
	}

	repaired := Repair(tokens)
	wantKinds = []Kind{Text, Open, Close, Text, Text}
	if got := kinds(repaired); !reflect.DeepEqual(got, wantKinds) {
		t.Fatalf("Repair kinds = %v, want %v", got, wantKinds)
	}
	if repaired[4].Text != "]" {
		t.Errorf("trailing token = %q, want %q", repaired[4].Text, "]")
	}
	if got := Render(repaired); got != input {
		t.Errorf("Render = %q, want %q", got, input)
	}

	merged := Merge(repaired)
	wantKinds = []Kind{Text, Open, Close, Text}
	if got := kinds(merged); !reflect.DeepEqual(got, wantKinds) {
		t.Fatalf("Merge kinds = %v, want %v", got, wantKinds)
	}
	if merged[3].Text != "c]" {
		t.Errorf("merged run = %q, want %q", merged[3].Text, "c]")
	}
}

func TestRepairUnmatchedOpen(t *testing.T) {
	tokens := Repair(Lex("$[a.k=v $[b x]"))
	got := kinds(Merge(tokens))
	want := []Kind{Text, Open, Text, Close}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if tokens[0].Kind != Text || tokens[0].Text != "$[a.k=v " {
		t.Errorf("downgraded open = %+v", tokens[0])
	}
}

func TestRepairAsymmetry(t *testing.T) {
	// The stray close and the later open are never paired with each other.
	tokens := Repair(Lex("]$[a "))
	for _, tok := range tokens {
		if tok.Kind != Text {
			t.Fatalf("token %+v survived repair", tok)
		}
	}
}

func TestMergeKeepsBoundaries(t *testing.T) {
	got := Merge(Lex("ab:e:cd"))
	want := []Token{literal("ab"), {Kind: Emoji, Text: ":e:"}, literal("cd")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
	if len(Merge(nil)) != 0 {
		t.Error("Merge(nil) should be empty")
	}
}

// randomMarkup builds inputs that are dense in markup fragments.
func randomMarkup(rng *rand.Rand) string {
	pieces := []string{
		"$[", "]", ":", "x", "_", ".", ",", "=", " ", "\n", "\t",
		"$[f ", "$[g.a=1,b ", ":ok:", "猫", "1", "-", "$", "[", "\xff",
	}
	var b strings.Builder
	n := rng.IntN(40)
	for range n {
		b.WriteString(pieces[rng.IntN(len(pieces))])
	}
	return b.String()
}

func TestProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 5000 {
		input := randomMarkup(rng)

		lexed := Lex(input)
		if got := Render(lexed); got != input {
			t.Fatalf("#%d: lex round trip %q -> %q", i, input, got)
		}

		repaired := Repair(lexed)
		if len(repaired) != len(lexed) {
			t.Fatalf("#%d: repair changed length %d -> %d", i, len(lexed), len(repaired))
		}
		if got := Render(repaired); got != input {
			t.Fatalf("#%d: repair round trip %q -> %q", i, input, got)
		}
		if !Balanced(repaired) {
			t.Fatalf("#%d: %q not balanced after repair", i, input)
		}
		if again := Repair(repaired); !reflect.DeepEqual(again, repaired) {
			t.Fatalf("#%d: repair not idempotent for %q", i, input)
		}

		merged := Merge(repaired)
		if got := Render(merged); got != input {
			t.Fatalf("#%d: merge round trip %q -> %q", i, input, got)
		}
		for j := 1; j < len(merged); j++ {
			if merged[j].Kind == Text && merged[j-1].Kind == Text {
				t.Fatalf("#%d: adjacent text tokens after merge in %q", i, input)
			}
		}
	}
}

func BenchmarkParse(b *testing.B) {
	note := strings.Repeat("今日は $[x2 :blobcat: $[spin.speed=2s,left とても] いい天気] です]\n", 32)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Parse(note)
	}
}

func TestParse(t *testing.T) {
	tokens := Parse("hi $[x2 :cat:]!")
	want := []Kind{Text, Open, Emoji, Close, Text}
	if got := kinds(tokens); !reflect.DeepEqual(got, want) {
		t.Errorf("Parse kinds = %v, want %v", got, want)
	}
}
