package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format int

const (
	YAML Format = iota
	TOML
)

// FormatOf returns the format of a file by its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	f, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Decode(bytes.NewReader(b), f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a configuration from r. Options absent from the input
// keep the defaults of the mode the input names. Unknown keys are errors.
func Decode(r io.Reader, f Format) (Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	var head struct {
		Mode Mode `yaml:"mode" toml:"mode"`
	}
	if err := unmarshal(raw, f, &head, false); err != nil {
		return Config{}, err
	}
	cfg := Defaults(head.Mode)
	if err := unmarshal(raw, f, &cfg, true); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func unmarshal(raw []byte, f Format, v any, strict bool) error {
	switch f {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(strict)
		err := dec.Decode(v)
		if errors.Is(err, io.EOF) {
			// empty document
			return nil
		}
		return err
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(raw))
		if strict {
			dec.DisallowUnknownFields()
		}
		return dec.Decode(v)
	}
	return fmt.Errorf("unknown config format %d", f)
}

// Encode writes cfg to w in format f.
func Encode(w io.Writer, cfg Config, f Format) error {
	switch f {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Encode(cfg)
	}
	return fmt.Errorf("unknown config format %d", f)
}
