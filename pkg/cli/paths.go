package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the ~/.mkmarkov directory structure
type Paths struct {
	// Base is the base directory, normally ~/.mkmarkov
	Base string
}

// NewPaths returns the paths under the user's home directory
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{Base: filepath.Join(home, DefaultBaseDir)}, nil
}

// BaseDir returns the base directory (~/.mkmarkov)
func (p *Paths) BaseDir() string {
	return p.Base
}

// ConfigFile returns the config file path (~/.mkmarkov/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.Base, DefaultConfigFile)
}

// CorpusDir returns the default Badger corpus directory (~/.mkmarkov/corpus)
func (p *Paths) CorpusDir() string {
	return filepath.Join(p.Base, "corpus")
}

// DataDir returns the default model storage directory (~/.mkmarkov/data)
func (p *Paths) DataDir() string {
	return filepath.Join(p.Base, "data")
}

// EnsureDataDir creates the data directory if it doesn't exist
func (p *Paths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir(), 0755)
}
