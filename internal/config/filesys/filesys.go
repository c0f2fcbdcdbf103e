package filesys

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"secondbrain/internal/config"
)

// Provider is a concrete implementation of config.Provider that reads YAML
// config files, with optional .env bootstrap for secrets like the Postgres
// connection string.
type Provider struct {
	cfg *config.Config
}

// NewProvider loads the configuration from the given path. A missing file is
// not an error: the built-in defaults are used so the CLI works out of the
// box.
func NewProvider(path string) (*Provider, error) {
	// Best effort; absence of a .env file is normal
	_ = godotenv.Load()

	prov := &Provider{}
	cfg, err := prov.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	prov.cfg = cfg
	return prov, nil
}

// LoadConfig reads and unmarshals the YAML configuration file.
func (p *Provider) LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg := config.Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML config: %w", err)
	}
	return cfg, nil
}
