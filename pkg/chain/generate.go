package chain

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
)

// DefaultMaxDepth is the default nesting budget for function expansion.
const DefaultMaxDepth = 10

// Generator samples notes from a Model. A Generator holds no mutable state;
// concurrent calls are safe as long as each uses its own rand source.
type Generator struct {
	Model *Model

	// MaxSteps caps the number of tokens emitted per Generate call. Zero
	// means no cap.
	MaxSteps int

	Logger *slog.Logger
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// GenerateDocument samples a whole note starting from the Start context.
func (g *Generator) GenerateDocument(maxDepth int, rng *rand.Rand) string {
	return g.Generate(Start(), maxDepth, rng)
}

// Generate walks the chain from state until End is emitted or no candidate
// remains, and returns the rendered text. Function calls are expanded
// recursively with depth-1; at depth 0 no function call is emitted.
func (g *Generator) Generate(state Token, depth int, rng *rand.Rand) string {
	w := walker{g: g, rng: rng, steps: g.MaxSteps, trace: g.logger().Enabled(context.Background(), slog.LevelDebug)}
	w.walk(state, depth)
	return w.b.String()
}

type walker struct {
	g     *Generator
	rng   *rand.Rand
	b     strings.Builder
	steps int // remaining; <= 0 with MaxSteps set means exhausted
	trace bool
}

func (w *walker) exhausted() bool {
	if w.g.MaxSteps <= 0 {
		return false
	}
	if w.steps <= 0 {
		return true
	}
	w.steps--
	return false
}

func (w *walker) walk(state Token, depth int) {
	for {
		next, ok := w.pick(state, depth)
		if !ok || w.exhausted() {
			return
		}
		if w.trace {
			w.g.logger().Debug("transition", "from", state.String(), "to", next.String(), "depth", depth)
		}

		switch next.Kind {
		case KindWord:
			w.b.WriteString(next.Text)
		case KindCall:
			w.b.WriteString("$[")
			w.b.WriteString(next.Text)
			w.writeParams(next.Text)
			w.b.WriteByte(' ')
			w.walk(Body(next.Text), depth-1)
			w.b.WriteByte(']')
		default:
			return
		}
		state = next
	}
}

// pick draws one successor of state proportionally to its count.
func (w *walker) pick(state Token, depth int) (Token, bool) {
	candidates := w.g.Model.Successors(state)
	allowed := func(t Transition) bool {
		return depth > 0 || t.To.Kind != KindCall
	}

	var total uint64
	for _, t := range candidates {
		if allowed(t) {
			total += t.Count
		}
	}
	if total == 0 {
		return Token{}, false
	}

	n := w.rng.Uint64N(total)
	for _, t := range candidates {
		if !allowed(t) {
			continue
		}
		if n < t.Count {
			return t.To, true
		}
		n -= t.Count
	}
	return Token{}, false
}

func (w *walker) writeParams(name string) {
	first := true
	for _, key := range w.g.Model.Parameters(name) {
		v := w.drawParam(key.Choices)
		if v.State == ParamAbsent {
			continue
		}
		if first {
			w.b.WriteByte('.')
			first = false
		} else {
			w.b.WriteByte(',')
		}
		w.b.WriteString(key.Key)
		if v.State == ParamWithValue {
			w.b.WriteByte('=')
			w.b.WriteString(v.Text)
		}
	}
}

// drawParam returns Absent when every weight is zero.
func (w *walker) drawParam(choices []ParamCount) ParamValue {
	var total uint64
	for _, c := range choices {
		total += c.Count
	}
	if total == 0 {
		return Absent()
	}
	n := w.rng.Uint64N(total)
	for _, c := range choices {
		if n < c.Count {
			return c.Value
		}
		n -= c.Count
	}
	return Absent()
}
