package chain

import (
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"

	"github.com/White-Green/MkMarkov/pkg/markup"
	"github.com/White-Green/MkMarkov/pkg/segment"
)

func spaceBuilder() *Builder {
	return &Builder{Segmenter: segment.Spaces{}}
}

func successorsOf(m *Model, from Token) map[Token]uint64 {
	out := make(map[Token]uint64)
	for _, t := range m.Successors(from) {
		out[t.To] = t.Count
	}
	return out
}

func TestTokenOrder(t *testing.T) {
	ordered := []Token{Start(), Word("a"), Word("b"), Call("a"), Body("a"), End()}
	for i := 1; i < len(ordered); i++ {
		if Compare(ordered[i-1], ordered[i]) >= 0 {
			t.Errorf("Compare(%v, %v) >= 0", ordered[i-1], ordered[i])
		}
	}
	for _, tok := range append(ordered, Word("quote\"d"), Word("")) {
		got, err := ParseToken(tok.String())
		if err != nil {
			t.Fatalf("ParseToken(%q): %v", tok.String(), err)
		}
		if got != tok {
			t.Errorf("ParseToken(%q) = %v, want %v", tok.String(), got, tok)
		}
	}
	if got, _ := ParseToken("こんにちは"); got != Word("こんにちは") {
		t.Errorf("bare word parsed as %v", got)
	}
}

func TestAddDocument(t *testing.T) {
	c := NewCounter()
	spaceBuilder().AddDocument(c, "a $[x2.k=1 b] c")
	m := c.Model()

	want := map[Token]map[Token]uint64{
		Start():    {Word("a"): 1},
		Word("a"):  {Word(" "): 1},
		Word(" "):  {Call("x2"): 1, Word("c"): 1},
		Body("x2"): {Word("b"): 1},
		Word("b"):  {End(): 1},
		Call("x2"): {Word(" "): 1},
		Word("c"):  {End(): 1},
	}
	for from, succ := range want {
		if got := successorsOf(m, from); !reflect.DeepEqual(got, succ) {
			t.Errorf("Successors(%v) = %v, want %v", from, got, succ)
		}
	}
	if got := len(m.Transitions()); got != 8 {
		t.Errorf("len(Transitions) = %d, want 8", got)
	}
	for _, tr := range m.Transitions() {
		if tr.To.Kind == KindBody || tr.To.Kind == KindStart {
			t.Errorf("emitted %v", tr.To)
		}
	}
}

func TestAddDocumentEmptyAndUnbalanced(t *testing.T) {
	c := NewCounter()
	b := spaceBuilder()
	b.AddDocument(c, "")
	b.AddDocument(c, "]x $[f ")
	m := c.Model()

	if got := successorsOf(m, Start()); got[End()] != 1 || got[Word("]x")] != 1 {
		t.Errorf("Successors(start) = %v", got)
	}
	if c.Invocations("f") != 0 {
		t.Errorf("unmatched open counted as invocation")
	}
}

func TestDerivedAbsence(t *testing.T) {
	notes := []string{
		"$[f.a ]",
		"$[f.b=1 ]",
		"$[f ]",
		"$[f.a,b=2 ]",
		"$[g.z=9 $[f.a x]]",
	}
	m := spaceBuilder().Build(notes).Model()

	want := []ParamCount{
		{"f", "a", Absent(), 2},
		{"f", "a", NoValue(), 3},
		{"f", "b", Absent(), 3},
		{"f", "b", WithValue("1"), 1},
		{"f", "b", WithValue("2"), 1},
		{"g", "z", Absent(), 0},
		{"g", "z", WithValue("9"), 1},
	}
	if got := m.Params(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Params =\n%v\nwant\n%v", got, want)
	}

	invocations := map[string]uint64{"f": 5, "g": 1}
	for fn, n := range invocations {
		for _, key := range m.Parameters(fn) {
			var sum uint64
			for _, c := range key.Choices {
				sum += c.Count
			}
			if sum != n {
				t.Errorf("%s.%s: counts sum to %d, want %d", fn, key.Key, sum, n)
			}
		}
	}
}

func randomNote(rng *rand.Rand) string {
	pieces := []string{
		"hello", "world", " ", "\n", ":cat:", ":dog:", "]",
		"$[x2 ", "$[spin.speed=2s ", "$[spin.left,speed=1s ", "$[flip.h ",
		"猫", "です", "$[",
	}
	var b strings.Builder
	for range rng.IntN(30) {
		b.WriteString(pieces[rng.IntN(len(pieces))])
	}
	return b.String()
}

func TestBuildCorpusMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	notes := make([]string, 500)
	for i := range notes {
		notes[i] = randomNote(rng)
	}

	b := spaceBuilder()
	seq := b.Build(notes).Model()

	for _, workers := range []int{1, 3, 8, 1000} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			c, err := BuildCorpus(context.Background(), notes, b, workers)
			if err != nil {
				t.Fatalf("BuildCorpus: %v", err)
			}
			par := c.Model()
			if !reflect.DeepEqual(par.Transitions(), seq.Transitions()) {
				t.Error("transitions differ from sequential build")
			}
			if !reflect.DeepEqual(par.Params(), seq.Params()) {
				t.Errorf("params differ:\n%v\n%v", par.Params(), seq.Params())
			}
		})
	}
}

func TestBuildCorpusCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	notes := []string{"a", "b", "c", "d"}
	for _, workers := range []int{1, 2} {
		if _, err := BuildCorpus(ctx, notes, spaceBuilder(), workers); err == nil {
			t.Errorf("workers=%d: expected error from canceled context", workers)
		}
	}
}

func TestGenerateReproducesSingleNote(t *testing.T) {
	const note = "hello $[x2.k=v world]:e:"
	m := spaceBuilder().Build([]string{note}).Model()
	g := &Generator{Model: m}
	rng := rand.New(rand.NewPCG(1, 1))

	if got := g.GenerateDocument(DefaultMaxDepth, rng); got != note {
		t.Errorf("GenerateDocument = %q, want %q", got, note)
	}
	if got := g.GenerateDocument(0, rng); got != "hello " {
		t.Errorf("GenerateDocument(depth 0) = %q, want %q", got, "hello ")
	}
	if got := g.Generate(Body("x2"), 0, rng); got != "world" {
		t.Errorf("Generate(body) = %q, want %q", got, "world")
	}
}

func TestGenerateTermination(t *testing.T) {
	notes := []string{
		"$[a $[a $[a x]]]",
		"$[a y]$[b.k=1 $[a z]] tail",
		"plain text",
	}
	m := spaceBuilder().Build(notes).Model()
	g := &Generator{Model: m}
	rng := rand.New(rand.NewPCG(3, 4))

	for depth := 0; depth <= 4; depth++ {
		for range 200 {
			out := g.GenerateDocument(depth, rng)
			tokens := markup.Parse(out)
			if !markup.Balanced(tokens) {
				t.Fatalf("depth %d: unbalanced output %q", depth, out)
			}
			nesting, maxNesting := 0, 0
			for _, tok := range tokens {
				switch tok.Kind {
				case markup.Open:
					nesting++
					maxNesting = max(maxNesting, nesting)
				case markup.Close:
					nesting--
				}
			}
			if maxNesting > depth {
				t.Fatalf("depth %d: nesting %d in %q", depth, maxNesting, out)
			}
		}
	}
}

func TestGenerateMaxSteps(t *testing.T) {
	m := NewModel([]Transition{
		{Start(), Word("a"), 1},
		{Word("a"), Word("a"), 1},
	}, nil)
	g := &Generator{Model: m, MaxSteps: 50}
	out := g.GenerateDocument(DefaultMaxDepth, rand.New(rand.NewPCG(0, 0)))
	if out != strings.Repeat("a", 50) {
		t.Errorf("GenerateDocument = %q", out)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	g := &Generator{Model: NewModel(nil, nil)}
	if got := g.GenerateDocument(DefaultMaxDepth, rand.New(rand.NewPCG(0, 0))); got != "" {
		t.Errorf("GenerateDocument on empty model = %q", got)
	}
}

func TestWeightedChoice(t *testing.T) {
	m := NewModel([]Transition{
		{Start(), Word("a"), 3},
		{Start(), Word("b"), 1},
		{Word("a"), End(), 1},
		{Word("b"), End(), 1},
	}, nil)
	g := &Generator{Model: m}
	rng := rand.New(rand.NewPCG(42, 42))

	const trials = 40000
	counts := map[string]int{}
	for range trials {
		counts[g.GenerateDocument(DefaultMaxDepth, rng)]++
	}
	if len(counts) != 2 {
		t.Fatalf("outputs = %v", counts)
	}
	ratio := float64(counts["a"]) / trials
	if ratio < 0.73 || ratio > 0.77 {
		t.Errorf("P(a) = %.4f, want about 0.75", ratio)
	}
}

func TestGenerateParams(t *testing.T) {
	m := NewModel([]Transition{
		{Start(), Call("f"), 1},
		{Body("f"), End(), 1},
		{Call("f"), End(), 1},
	}, []ParamCount{
		{"f", "a", Absent(), 0},
		{"f", "a", NoValue(), 1},
		{"f", "b", Absent(), 1},
		{"f", "c", Absent(), 0},
		{"f", "c", WithValue("1.5s"), 1},
		{"f", "d", Absent(), 0},
	})
	g := &Generator{Model: m}
	got := g.GenerateDocument(1, rand.New(rand.NewPCG(9, 9)))
	if want := "$[f.a,c=1.5s ]"; got != want {
		t.Errorf("GenerateDocument = %q, want %q", got, want)
	}
}

func TestNewModelMergesDuplicates(t *testing.T) {
	m := NewModel([]Transition{
		{Word("b"), End(), 1},
		{Start(), Word("b"), 2},
		{Start(), Word("b"), 3},
	}, []ParamCount{
		{"f", "k", Absent(), 1},
		{"f", "k", Absent(), 1},
	})
	want := []Transition{
		{Start(), Word("b"), 5},
		{Word("b"), End(), 1},
	}
	if !reflect.DeepEqual(m.Transitions(), want) {
		t.Errorf("Transitions = %v, want %v", m.Transitions(), want)
	}
	if got := m.Params(); len(got) != 1 || got[0].Count != 2 {
		t.Errorf("Params = %v", got)
	}
	if got := m.Successors(Word("zzz")); len(got) != 0 {
		t.Errorf("Successors(unknown) = %v", got)
	}
}

func TestStats(t *testing.T) {
	m := spaceBuilder().Build([]string{"a b", "a", "$[f.k x]"}).Model()
	s := m.Stats()
	if s.Notes != 3 {
		t.Errorf("Notes = %d, want 3", s.Notes)
	}
	if s.Functions != 1 || s.Params != 2 {
		t.Errorf("Functions = %d, Params = %d", s.Functions, s.Params)
	}
	if s.Contexts == 0 || s.MaxSuccessors != 2 {
		t.Errorf("Contexts = %d, MaxSuccessors = %d", s.Contexts, s.MaxSuccessors)
	}
}

func BenchmarkGenerate(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	notes := make([]string, 2000)
	for i := range notes {
		notes[i] = randomNote(rng)
	}
	g := &Generator{Model: spaceBuilder().Build(notes).Model()}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.GenerateDocument(DefaultMaxDepth, rng)
	}
}
