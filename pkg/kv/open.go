package kv

import (
	"fmt"
	"log/slog"
	"strings"
)

// Open opens a store from a URL:
//
//	badger:///path/to/dir   persistent Badger database
//	badger://memory         in-memory Badger database
//	memory://               Memory store
func Open(url string, logger *slog.Logger) (Store, error) {
	switch {
	case url == "memory://":
		return NewMemory(nil), nil
	case url == "badger://memory":
		return NewBadger(BadgerOptions{InMemory: true, Logger: logger})
	case strings.HasPrefix(url, "badger://"):
		return NewBadger(BadgerOptions{Dir: strings.TrimPrefix(url, "badger://"), Logger: logger})
	default:
		return nil, fmt.Errorf("kv: unsupported store URL %q", url)
	}
}
