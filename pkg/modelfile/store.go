package modelfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/White-Green/MkMarkov/pkg/chain"
	"github.com/White-Green/MkMarkov/pkg/storage"
)

// Dir is the directory of model files inside a store.
const Dir = "models"

// DefaultName names the model used when none is given.
const DefaultName = "default"

// Path returns the storage path of model name under opts.
func Path(name string, opts Options) string {
	return path.Join(Dir, name+opts.Ext())
}

// candidates lists every path a model called name may be stored under.
func candidates(name string) []string {
	var out []string
	for _, f := range []Format{MsgPack, JSON} {
		for _, c := range []bool{false, true} {
			out = append(out, Path(name, Options{Format: f, Compress: c}))
		}
	}
	return out
}

// Save encodes m and writes it to the store. It returns the path written.
func Save(ctx context.Context, s storage.Store, name string, m *chain.Model, opts Options) (string, error) {
	p := Path(name, opts)
	w, err := s.Write(ctx, p)
	if err != nil {
		return "", fmt.Errorf("modelfile: save %s: %w", p, err)
	}
	if err := Encode(w, m, opts); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("modelfile: save %s: %w", p, err)
	}
	return p, nil
}

// Load reads model name from the store, trying every supported extension.
// A name that already ends in a model extension is read as a path.
func Load(ctx context.Context, s storage.Store, name string) (*chain.Model, string, error) {
	paths := candidates(name)
	if hasModelExt(name) {
		paths = []string{name}
	}
	for _, p := range paths {
		r, err := s.Read(ctx, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("modelfile: load %s: %w", p, err)
		}
		m, err := Decode(r)
		r.Close()
		if err != nil {
			return nil, "", fmt.Errorf("modelfile: load %s: %w", p, err)
		}
		return m, p, nil
	}
	return nil, "", fmt.Errorf("modelfile: model %q: %w", name, fs.ErrNotExist)
}

// List returns the names of all models in the store.
func List(ctx context.Context, s storage.Store) ([]string, error) {
	paths, err := s.List(ctx, Dir+"/")
	if err != nil {
		return nil, err
	}
	var names []string
	seen := make(map[string]bool)
	for _, p := range paths {
		if !hasModelExt(p) {
			continue
		}
		name := strings.TrimPrefix(p, Dir+"/")
		name = strings.TrimSuffix(name, ".zst")
		name = strings.TrimSuffix(strings.TrimSuffix(name, "."+string(MsgPack)), "."+string(JSON))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

func hasModelExt(p string) bool {
	p = strings.TrimSuffix(p, ".zst")
	return strings.HasSuffix(p, "."+string(MsgPack)) || strings.HasSuffix(p, "."+string(JSON))
}
