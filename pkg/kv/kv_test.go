package kv_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/White-Green/MkMarkov/pkg/kv"
)

type factory struct {
	name string
	open func(t *testing.T, opts *kv.Options) kv.Store
}

var factories = []factory{
	{"memory", func(t *testing.T, opts *kv.Options) kv.Store {
		return kv.NewMemory(opts)
	}},
	{"badger", func(t *testing.T, opts *kv.Options) kv.Store {
		t.Helper()
		s, err := kv.NewBadger(kv.BadgerOptions{Options: opts, InMemory: true})
		if err != nil {
			t.Fatalf("NewBadger: %v", err)
		}
		return s
	}},
}

// eachStore runs fn against every backend.
func eachStore(t *testing.T, opts *kv.Options, fn func(t *testing.T, s kv.Store)) {
	for _, f := range factories {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t, opts)
			t.Cleanup(func() { s.Close() })
			fn(t, s)
		})
	}
}

func listKeys(t *testing.T, s kv.Store, prefix kv.Key) []string {
	t.Helper()
	var keys []string
	for e, err := range s.List(context.Background(), prefix) {
		if err != nil {
			t.Fatalf("List(%v): %v", prefix, err)
		}
		keys = append(keys, e.Key.String())
	}
	return keys
}

func TestGetSetDelete(t *testing.T) {
	eachStore(t, nil, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		key := kv.Key{"corpus", "note", "9abc"}

		if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
		}
		for _, v := range []string{"first", "second"} {
			if err := s.Set(ctx, key, []byte(v)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, key)
			if err != nil || string(got) != v {
				t.Fatalf("Get = %q, %v; want %q", got, err, v)
			}
		}
		if err := s.Delete(ctx, key); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("Get after Delete err = %v", err)
		}
		if err := s.Delete(ctx, kv.Key{"never", "set"}); err != nil {
			t.Fatalf("Delete(missing): %v", err)
		}
	})
}

func TestListPrefix(t *testing.T) {
	eachStore(t, nil, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		err := s.BatchSet(ctx, []kv.Entry{
			{Key: kv.Key{"corpus", "note", "b"}, Value: []byte("2")},
			{Key: kv.Key{"corpus", "note", "a"}, Value: []byte("1")},
			{Key: kv.Key{"corpus", "notes", "x"}, Value: []byte("boundary")},
			{Key: kv.Key{"corpus", "meta", "fetch"}, Value: []byte("cursor")},
		})
		if err != nil {
			t.Fatalf("BatchSet: %v", err)
		}

		got := listKeys(t, s, kv.Key{"corpus", "note"})
		want := []string{"corpus:note:a", "corpus:note:b"}
		if !slices.Equal(got, want) {
			t.Errorf("List(corpus:note) = %v, want %v", got, want)
		}
		if got := listKeys(t, s, nil); len(got) != 4 {
			t.Errorf("List(all) = %v", got)
		}

		n, err := kv.Count(ctx, s, kv.Key{"corpus"})
		if err != nil || n != 4 {
			t.Errorf("Count = %d, %v", n, err)
		}

		// Stop early.
		seen := 0
		for range s.List(ctx, kv.Key{"corpus"}) {
			seen++
			break
		}
		if seen != 1 {
			t.Errorf("early break saw %d entries", seen)
		}
	})
}

func TestBatchDeleteAndDeletePrefix(t *testing.T) {
	eachStore(t, nil, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		var entries []kv.Entry
		for _, id := range []string{"1", "2", "3"} {
			entries = append(entries, kv.Entry{Key: kv.Key{"corpus", "note", id}, Value: []byte(id)})
		}
		entries = append(entries, kv.Entry{Key: kv.Key{"other"}, Value: []byte("keep")})
		if err := s.BatchSet(ctx, entries); err != nil {
			t.Fatal(err)
		}

		if err := s.BatchDelete(ctx, []kv.Key{{"corpus", "note", "1"}}); err != nil {
			t.Fatal(err)
		}
		n, err := kv.DeletePrefix(ctx, s, kv.Key{"corpus"})
		if err != nil || n != 2 {
			t.Fatalf("DeletePrefix = %d, %v; want 2", n, err)
		}
		if got := listKeys(t, s, nil); !slices.Equal(got, []string{"other"}) {
			t.Errorf("remaining = %v", got)
		}
	})
}

func TestCustomSeparator(t *testing.T) {
	eachStore(t, &kv.Options{Separator: '/'}, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		key := kv.Key{"a:b", "c"}
		if err := s.Set(ctx, key, []byte("v")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		for e, err := range s.List(ctx, kv.Key{"a:b"}) {
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(e.Key, key) {
				t.Errorf("key = %q, want %q", e.Key, key)
			}
		}
	})
}

func TestInvalidKey(t *testing.T) {
	eachStore(t, nil, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		if err := s.Set(ctx, kv.Key{"bad:seg"}, nil); !errors.Is(err, kv.ErrInvalidKey) {
			t.Errorf("Set err = %v, want ErrInvalidKey", err)
		}
		if _, err := s.Get(ctx, kv.Key{"bad:seg"}); !errors.Is(err, kv.ErrInvalidKey) {
			t.Errorf("Get err = %v, want ErrInvalidKey", err)
		}
		for _, err := range s.List(ctx, kv.Key{"bad:seg"}) {
			if !errors.Is(err, kv.ErrInvalidKey) {
				t.Errorf("List err = %v, want ErrInvalidKey", err)
			}
		}
	})
}

func TestValueIsolation(t *testing.T) {
	s := kv.NewMemory(nil)
	ctx := context.Background()
	val := []byte("original")
	s.Set(ctx, kv.Key{"k"}, val)
	val[0] = 'X'
	got, _ := s.Get(ctx, kv.Key{"k"})
	if string(got) != "original" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
	got[0] = 'Y'
	again, _ := s.Get(ctx, kv.Key{"k"})
	if string(again) != "original" {
		t.Fatalf("stored value aliased returned slice: %q", again)
	}
}

func TestOpen(t *testing.T) {
	for _, url := range []string{"memory://", "badger://memory", "badger://" + t.TempDir()} {
		s, err := kv.Open(url, nil)
		if err != nil {
			t.Fatalf("Open(%q): %v", url, err)
		}
		if err := s.Set(context.Background(), kv.Key{"k"}, []byte("v")); err != nil {
			t.Errorf("%s: Set: %v", url, err)
		}
		s.Close()
	}
	if _, err := kv.Open("redis://localhost", nil); err == nil {
		t.Error("Open(redis) should fail")
	}
}
