package chain

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/White-Green/MkMarkov/pkg/markup"
	"github.com/White-Green/MkMarkov/pkg/segment"
)

// Builder folds notes into a Counter.
type Builder struct {
	// Segmenter splits literal runs into words. Nil splits on whitespace.
	Segmenter segment.Segmenter
}

func (b *Builder) segmenter() segment.Segmenter {
	if b.Segmenter == nil {
		return segment.Spaces{}
	}
	return b.Segmenter
}

// AddDocument counts the transitions and invocations of one note.
func (b *Builder) AddDocument(c *Counter, text string) {
	seg := b.segmenter()
	ctx := Start()
	var stack []string

	for _, tok := range markup.Parse(text) {
		switch tok.Kind {
		case markup.Emoji:
			next := Word(tok.Text)
			c.Transition(ctx, next)
			ctx = next
		case markup.Open:
			c.Transition(ctx, Call(tok.Name))
			stack = append(stack, tok.Name)
			c.Invoke(tok.Name, tok.Args)
			ctx = Body(tok.Name)
		case markup.Close:
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			c.Transition(ctx, End())
			ctx = Call(name)
		case markup.Text:
			for _, w := range seg.Segment(tok.Text) {
				next := Word(w)
				c.Transition(ctx, next)
				ctx = next
			}
		}
	}
	c.Transition(ctx, End())
}

// Build counts every note sequentially.
func (b *Builder) Build(notes []string) *Counter {
	c := NewCounter()
	for _, n := range notes {
		b.AddDocument(c, n)
	}
	return c
}

// BuildCorpus counts notes on up to workers goroutines. The corpus is split
// into contiguous chunks, one Counter per chunk, and the chunk counters are
// merged in corpus order. workers <= 0 uses GOMAXPROCS.
func BuildCorpus(ctx context.Context, notes []string, b *Builder, workers int) (*Counter, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(notes))
	if workers <= 1 {
		c := NewCounter()
		for i, n := range notes {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			b.AddDocument(c, n)
		}
		return c, nil
	}

	size := (len(notes) + workers - 1) / workers
	parts := make([]*Counter, 0, workers)
	for lo := 0; lo < len(notes); lo += size {
		parts = append(parts, nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range parts {
		lo := i * size
		hi := min(lo+size, len(notes))
		g.Go(func() error {
			c := NewCounter()
			for j := lo; j < hi; j++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				b.AddDocument(c, notes[j])
			}
			parts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := parts[0]
	for _, p := range parts[1:] {
		total.Merge(p)
	}
	return total, nil
}
