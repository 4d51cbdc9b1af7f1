package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".mkmarkov"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"

	// DefaultMaxDepth is the call nesting bound used when a context sets none.
	DefaultMaxDepth = 10
	// DefaultSegmenter names the word segmenter used when a context sets none.
	DefaultSegmenter = "ipa"
	// DefaultFormat names the model file format used when a context sets none.
	DefaultFormat = "msgpack"
)

// Config represents the configuration file
type Config struct {
	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Context is one named setup: where notes come from, where they are kept and
// how models are built from them.
type Context struct {
	Name string `yaml:"name"`

	// MisskeyHost is the instance notes are fetched from.
	MisskeyHost string `yaml:"misskey_host,omitempty"`
	// APIKey is the Misskey access token.
	APIKey string `yaml:"api_key,omitempty"`
	// Username is the account whose notes are fetched.
	Username string `yaml:"username,omitempty"`

	// Corpus is the kv URL of the note store (badger:///dir or memory://).
	Corpus string `yaml:"corpus,omitempty"`
	// Storage is the URL models are saved to (file:///dir or s3://bucket/prefix).
	Storage string `yaml:"storage,omitempty"`

	MaxDepth  int    `yaml:"max_depth,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
	Segmenter string `yaml:"segmenter,omitempty"`
	Format    string `yaml:"format,omitempty"`
	Compress  bool   `yaml:"compress,omitempty"`
}

// ContextKeys lists the keys accepted by Context.Set, in display order.
var ContextKeys = []string{
	"misskey_host", "api_key", "username",
	"corpus", "storage",
	"max_depth", "workers", "segmenter", "format", "compress",
}

// LoadConfig loads or creates the configuration file. An empty path selects
// ~/.mkmarkov/config.yaml.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		paths, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = paths.ConfigFile()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Contexts:   make(map[string]*Context),
		configPath: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			cfg.Contexts[name] = &Context{Name: name}
			continue
		}
		ctx.Name = name
	}
	cfg.configPath = path

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds or replaces a context
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// GetCurrentContext returns the current context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the context by name, or the current context if name
// is empty. With no name and no current context it returns an empty context,
// so every setting falls back to its default.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		if c.CurrentContext == "" {
			return &Context{}, nil
		}
		return c.GetCurrentContext()
	}
	return c.GetContext(name)
}

// ListContexts returns all context names, sorted
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Set assigns a setting by its config file key.
func (ctx *Context) Set(key, value string) error {
	switch key {
	case "misskey_host":
		ctx.MisskeyHost = value
	case "api_key":
		ctx.APIKey = value
	case "username":
		ctx.Username = strings.TrimPrefix(value, "@")
	case "corpus":
		ctx.Corpus = value
	case "storage":
		ctx.Storage = value
	case "segmenter":
		ctx.Segmenter = value
	case "format":
		ctx.Format = value
	case "max_depth", "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
		}
		if key == "max_depth" {
			ctx.MaxDepth = n
		} else {
			ctx.Workers = n
		}
	case "compress":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("compress must be a boolean, got %q", value)
		}
		ctx.Compress = b
	default:
		return fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(ContextKeys, ", "))
	}
	return nil
}

// WithDefaults returns a copy of ctx with unset locations and tuning filled
// in. Stores default to directories under paths.
func (ctx *Context) WithDefaults(paths *Paths) Context {
	out := *ctx
	if out.Corpus == "" {
		out.Corpus = "badger://" + filepath.ToSlash(paths.CorpusDir())
	}
	if out.Storage == "" {
		out.Storage = "file://" + filepath.ToSlash(paths.DataDir())
	}
	if out.MaxDepth == 0 {
		out.MaxDepth = DefaultMaxDepth
	}
	if out.Segmenter == "" {
		out.Segmenter = DefaultSegmenter
	}
	if out.Format == "" {
		out.Format = DefaultFormat
	}
	return out
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
