package prog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config keeps settings read from the configuration file. Command-line flags
// take precedence over the corresponding fields.
type Config struct {
	RC   string `yaml:"rc"`
	DB   string `yaml:"db"`
	Sock string `yaml:"sock"`
	Log  string `yaml:"log"`
	// Torrent files loaded into the engine at startup.
	Torrents []string `yaml:"torrents"`
	// Named views, each a list of info hashes.
	Views map[string][]string `yaml:"views"`
}

// DefaultConfigPath returns the path of the configuration file used when
// -config is not given.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rtorc", "config.yaml"), nil
}

// LoadConfig reads the configuration file at path. An empty path means the
// default location, which is allowed to not exist.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return &Config{}, nil
		}
		path = p
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseConfig(path, f)
}

// ParseConfig parses a configuration file. Unknown fields are rejected.
func ParseConfig(name string, r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &c, nil
}

func (c *Config) applyTo(f *Flags) {
	setIfEmpty := func(p *string, v string) {
		if *p == "" {
			*p = v
		}
	}
	setIfEmpty(&f.RC, c.RC)
	setIfEmpty(&f.DB, c.DB)
	setIfEmpty(&f.Sock, c.Sock)
	setIfEmpty(&f.Log, c.Log)
}
