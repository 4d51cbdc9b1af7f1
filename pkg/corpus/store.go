package corpus

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/White-Green/MkMarkov/pkg/kv"
)

var (
	notePrefix = kv.Key{"corpus", "note"}
	cursorKey  = kv.Key{"corpus", "meta", "fetch"}
)

// batchSize bounds the number of entries per kv batch.
const batchSize = 1000

// Store keeps notes in a kv.Store.
type Store struct {
	kv kv.Store
}

// NewStore returns a Store over s.
func NewStore(s kv.Store) *Store {
	return &Store{kv: s}
}

func noteKey(id string) kv.Key {
	return append(notePrefix[:len(notePrefix):len(notePrefix)], id)
}

// Put stores notes, replacing notes with the same id.
func (s *Store) Put(ctx context.Context, notes []Note) error {
	entries := make([]kv.Entry, 0, min(len(notes), batchSize))
	flush := func() error {
		if len(entries) == 0 {
			return nil
		}
		if err := s.kv.BatchSet(ctx, entries); err != nil {
			return fmt.Errorf("corpus: put: %w", err)
		}
		entries = entries[:0]
		return nil
	}
	for _, n := range notes {
		data, err := msgpack.Marshal(&n)
		if err != nil {
			return fmt.Errorf("corpus: marshal note %s: %w", n.ID, err)
		}
		entries = append(entries, kv.Entry{Key: noteKey(n.ID), Value: data})
		if len(entries) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// Get returns the note with the given id. A missing note yields an error
// wrapping kv.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Note, error) {
	data, err := s.kv.Get(ctx, noteKey(id))
	if err != nil {
		return Note{}, fmt.Errorf("corpus: get %s: %w", id, err)
	}
	var n Note
	if err := msgpack.Unmarshal(data, &n); err != nil {
		return Note{}, fmt.Errorf("corpus: unmarshal note %s: %w", id, err)
	}
	return n, nil
}

// All yields every stored note in id order.
func (s *Store) All(ctx context.Context) iter.Seq2[Note, error] {
	return func(yield func(Note, error) bool) {
		for e, err := range s.kv.List(ctx, notePrefix) {
			if err != nil {
				yield(Note{}, fmt.Errorf("corpus: list: %w", err))
				return
			}
			var n Note
			if err := msgpack.Unmarshal(e.Value, &n); err != nil {
				yield(Note{}, fmt.Errorf("corpus: unmarshal %s: %w", e.Key, err))
				return
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

// Texts returns the text of every stored note that has one. It returns
// ErrEmpty when there is none.
func (s *Store) Texts(ctx context.Context) ([]string, error) {
	var texts []string
	for n, err := range s.All(ctx) {
		if err != nil {
			return nil, err
		}
		if n.Text != nil {
			texts = append(texts, *n.Text)
		}
	}
	if len(texts) == 0 {
		return nil, ErrEmpty
	}
	return texts, nil
}

// Count returns the number of stored notes.
func (s *Store) Count(ctx context.Context) (int, error) {
	return kv.Count(ctx, s.kv, notePrefix)
}

// Clear removes every note and the fetch cursor.
func (s *Store) Clear(ctx context.Context) (int, error) {
	n, err := kv.DeletePrefix(ctx, s.kv, notePrefix)
	if err != nil {
		return 0, fmt.Errorf("corpus: clear: %w", err)
	}
	if err := s.kv.Delete(ctx, cursorKey); err != nil {
		return n, fmt.Errorf("corpus: clear cursor: %w", err)
	}
	return n, nil
}

// Cursor returns the id of the oldest note fetched so far, or "" if nothing
// was fetched.
func (s *Store) Cursor(ctx context.Context) (string, error) {
	v, err := s.kv.Get(ctx, cursorKey)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("corpus: cursor: %w", err)
	}
	return string(v), nil
}

// SetCursor records the id of the oldest note fetched so far.
func (s *Store) SetCursor(ctx context.Context, id string) error {
	if err := s.kv.Set(ctx, cursorKey, []byte(id)); err != nil {
		return fmt.Errorf("corpus: set cursor: %w", err)
	}
	return nil
}
