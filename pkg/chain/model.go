package chain

import (
	"slices"
	"sort"
)

// Transition counts how often To was emitted in context From.
type Transition struct {
	From  Token
	To    Token
	Count uint64
}

// ParamCount counts how often parameter Key of Function was observed in
// state Value.
type ParamCount struct {
	Function string
	Key      string
	Value    ParamValue
	Count    uint64
}

// ParamKey is the value distribution of one parameter key of a function.
type ParamKey struct {
	Key     string
	Choices []ParamCount
}

// Model holds the transition and parameter tables. A Model is immutable once
// built and safe for concurrent use.
type Model struct {
	transitions []Transition // sorted by (From, To)
	params      []ParamCount
	functions   []string
	byFunction  map[string][]ParamKey
}

// NewModel builds a Model from flat tables as persisted. Duplicate entries
// are summed. Transitions are sorted by context, then emitted token.
// Parameter keys and values keep the order of their first appearance.
func NewModel(transitions []Transition, params []ParamCount) *Model {
	m := &Model{byFunction: make(map[string][]ParamKey)}

	sorted := slices.Clone(transitions)
	slices.SortStableFunc(sorted, compareTransitions)
	for _, t := range sorted {
		if n := len(m.transitions); n > 0 && compareTransitions(m.transitions[n-1], t) == 0 {
			m.transitions[n-1].Count += t.Count
			continue
		}
		m.transitions = append(m.transitions, t)
	}

	for _, p := range params {
		keys, ok := m.byFunction[p.Function]
		if !ok {
			m.functions = append(m.functions, p.Function)
		}
		ki := slices.IndexFunc(keys, func(k ParamKey) bool { return k.Key == p.Key })
		if ki < 0 {
			keys = append(keys, ParamKey{Key: p.Key})
			ki = len(keys) - 1
		}
		choices := keys[ki].Choices
		if vi := slices.IndexFunc(choices, func(c ParamCount) bool { return c.Value == p.Value }); vi >= 0 {
			choices[vi].Count += p.Count
		} else {
			keys[ki].Choices = append(choices, p)
		}
		m.byFunction[p.Function] = keys
	}
	for _, fn := range m.functions {
		for _, k := range m.byFunction[fn] {
			m.params = append(m.params, k.Choices...)
		}
	}
	return m
}

func compareTransitions(a, b Transition) int {
	if c := Compare(a.From, b.From); c != 0 {
		return c
	}
	return Compare(a.To, b.To)
}

// Successors returns every transition whose context is from, ordered by the
// emitted token. The returned slice must not be modified.
func (m *Model) Successors(from Token) []Transition {
	lo := sort.Search(len(m.transitions), func(i int) bool {
		return Compare(m.transitions[i].From, from) >= 0
	})
	hi := lo
	for hi < len(m.transitions) && m.transitions[hi].From == from {
		hi++
	}
	return m.transitions[lo:hi:hi]
}

// Parameters returns the parameter keys of function name in first-seen
// order. The returned slice must not be modified.
func (m *Model) Parameters(name string) []ParamKey {
	return m.byFunction[name]
}

// Transitions returns the transition table sorted by (From, To).
func (m *Model) Transitions() []Transition {
	return m.transitions
}

// Params returns the parameter table grouped by function and key.
func (m *Model) Params() []ParamCount {
	return m.params
}

// Functions returns the names of functions that have parameters, in
// first-seen order.
func (m *Model) Functions() []string {
	return m.functions
}

// Stats summarizes a model.
type Stats struct {
	Transitions   int    `json:"transitions" yaml:"transitions"`
	Contexts      int    `json:"contexts" yaml:"contexts"`
	Words         int    `json:"words" yaml:"words"`
	Functions     int    `json:"functions" yaml:"functions"`
	Params        int    `json:"params" yaml:"params"`
	Notes         uint64 `json:"notes" yaml:"notes"`
	TotalEmitted  uint64 `json:"total_emitted" yaml:"total_emitted"`
	MaxSuccessors int    `json:"max_successors" yaml:"max_successors"`
}

// Stats computes summary statistics.
func (m *Model) Stats() Stats {
	s := Stats{Transitions: len(m.transitions), Params: len(m.params)}
	words := make(map[string]struct{})
	calls := make(map[string]struct{})
	run := 0
	for i, t := range m.transitions {
		s.TotalEmitted += t.Count
		if t.From.Kind == KindStart {
			s.Notes += t.Count
		}
		switch t.To.Kind {
		case KindWord:
			words[t.To.Text] = struct{}{}
		case KindCall:
			calls[t.To.Text] = struct{}{}
		}
		if i == 0 || t.From != m.transitions[i-1].From {
			s.Contexts++
			run = 0
		}
		run++
		s.MaxSuccessors = max(s.MaxSuccessors, run)
	}
	s.Words = len(words)
	s.Functions = len(calls)
	return s
}
