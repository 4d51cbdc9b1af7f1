// Package kv is the key-value layer under the corpus store.
//
// Keys are paths of string segments, joined with a separator byte (':' by
// default) when written to the backend, so Key{"corpus", "note", "9abc"} is
// stored as "corpus:note:9abc". Listing by prefix works on whole segments.
//
// Two backends are provided: Badger for persistent corpora and Memory for
// tests and throwaway runs. Open selects one from a URL.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("kv: not found")

	// ErrInvalidKey is returned when a key segment contains the separator.
	ErrInvalidKey = errors.New("kv: invalid key")
)

// Key is a hierarchical key.
type Key []string

// String joins the segments with ':'. Display only.
func (k Key) String() string {
	return strings.Join(k, string(DefaultSeparator))
}

// Entry is a key with its value.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with hierarchical keys.
//
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value of key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes key. Missing keys are ignored.
	Delete(ctx context.Context, key Key) error

	// List yields the entries below prefix in ascending key order. An empty
	// prefix lists everything.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet stores all entries in one batch.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete removes all keys in one batch.
	BatchDelete(ctx context.Context, keys []Key) error

	Close() error
}

// DefaultSeparator joins key segments.
const DefaultSeparator byte = ':'

// Options are shared by all backends. A nil *Options is valid.
type Options struct {
	// Separator joins key segments. Zero means DefaultSeparator.
	Separator byte
}

func (o *Options) sep() byte {
	if o == nil || o.Separator == 0 {
		return DefaultSeparator
	}
	return o.Separator
}

func (o *Options) encode(k Key) ([]byte, error) {
	s := o.sep()
	for _, seg := range k {
		if strings.IndexByte(seg, s) >= 0 {
			return nil, fmt.Errorf("%w: segment %q contains %q", ErrInvalidKey, seg, s)
		}
	}
	return []byte(strings.Join(k, string(s))), nil
}

// prefix encodes p followed by the separator, so that "a:b" does not match
// "a:bc". The empty key yields an empty prefix.
func (o *Options) prefix(p Key) ([]byte, error) {
	if len(p) == 0 {
		return nil, nil
	}
	b, err := o.encode(p)
	if err != nil {
		return nil, err
	}
	return append(b, o.sep()), nil
}

func (o *Options) decode(b []byte) Key {
	return Key(strings.Split(string(b), string(o.sep())))
}

// Count returns the number of entries below prefix.
func Count(ctx context.Context, s Store, prefix Key) (int, error) {
	n := 0
	for _, err := range s.List(ctx, prefix) {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// DeletePrefix removes every entry below prefix and returns how many were
// removed.
func DeletePrefix(ctx context.Context, s Store, prefix Key) (int, error) {
	var keys []Key
	for e, err := range s.List(ctx, prefix) {
		if err != nil {
			return 0, err
		}
		keys = append(keys, e.Key)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := s.BatchDelete(ctx, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}
