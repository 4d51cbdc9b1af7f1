package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/White-Green/MkMarkov/pkg/chain"
	"github.com/White-Green/MkMarkov/pkg/cli"
	"github.com/White-Green/MkMarkov/pkg/corpus"
	"github.com/White-Green/MkMarkov/pkg/kv"
	"github.com/White-Green/MkMarkov/pkg/modelfile"
	"github.com/White-Green/MkMarkov/pkg/storage"
)

// openCorpus opens the context's corpus store. The caller closes the
// returned kv.Store.
func openCorpus(c cli.Context) (*corpus.Store, kv.Store, error) {
	store, err := kv.Open(c.Corpus, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("open corpus %s: %w", c.Corpus, err)
	}
	return corpus.NewStore(store), store, nil
}

// openStorage opens the context's model store.
func openStorage(c cli.Context) (storage.Store, error) {
	s, err := storage.Open(c.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", c.Storage, err)
	}
	return s, nil
}

// modelOptions returns the model file options of the context.
func modelOptions(c cli.Context) (modelfile.Options, error) {
	format, err := modelfile.ParseFormat(c.Format)
	if err != nil {
		return modelfile.Options{}, err
	}
	return modelfile.Options{Format: format, Compress: c.Compress}, nil
}

// loadModel loads model name from the context's storage.
func loadModel(ctx context.Context, c cli.Context, name string) (*chain.Model, string, error) {
	s, err := openStorage(c)
	if err != nil {
		return nil, "", err
	}
	m, path, err := modelfile.Load(ctx, s, name)
	if err != nil {
		return nil, "", err
	}
	slog.Debug("loaded model", "path", path, "transitions", len(m.Transitions()))
	return m, path, nil
}
