package search

import (
	"strconv"

	"github.com/pkg/errors"
)

// Option-store keys recognized by the engine.
const (
	OptionMaxDepth  = "max_depth"
	OptionInitDepth = "init_depth"
	OptionIncDepth  = "inc_depth"
)

// Default depth settings for the iterative-deepening loop.
const (
	DefaultMaxDepth  = 128
	DefaultInitDepth = 1
	DefaultIncDepth  = 5
)

// Config controls the iterative-deepening loop and carries the hint inputs.
// InitDepth greater than MaxDepth is not a configuration error: it makes the
// search fail immediately without performing any work.
type Config struct {
	MaxDepth  int // absolute deepening ceiling
	InitDepth int // first depth tried
	IncDepth  int // increment per deepening round

	// Hints are accepted and stored for actions beyond the current
	// skeleton; the engine does not consume them yet.
	LemmaHints  []string
	UnfoldHints []string
}

// DefaultConfig returns the default depth settings.
func DefaultConfig() Config {
	return Config{
		MaxDepth:  DefaultMaxDepth,
		InitDepth: DefaultInitDepth,
		IncDepth:  DefaultIncDepth,
	}
}

// Validate checks that every depth setting is a positive integer.
func (c Config) Validate() error {
	if c.MaxDepth <= 0 {
		return errors.Errorf("%s must be positive, got %d", OptionMaxDepth, c.MaxDepth)
	}
	if c.InitDepth <= 0 {
		return errors.Errorf("%s must be positive, got %d", OptionInitDepth, c.InitDepth)
	}
	if c.IncDepth <= 0 {
		return errors.Errorf("%s must be positive, got %d", OptionIncDepth, c.IncDepth)
	}
	return nil
}

// ConfigFromOptions reads the recognized keys from an option store,
// falling back to defaults for absent keys.
func ConfigFromOptions(opts map[string]string) (Config, error) {
	cfg := DefaultConfig()
	read := func(key string, dst *int) error {
		raw, ok := opts[key]
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.Wrapf(err, "option %s", key)
		}
		*dst = n
		return nil
	}
	if err := read(OptionMaxDepth, &cfg.MaxDepth); err != nil {
		return Config{}, err
	}
	if err := read(OptionInitDepth, &cfg.InitDepth); err != nil {
		return Config{}, err
	}
	if err := read(OptionIncDepth, &cfg.IncDepth); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
