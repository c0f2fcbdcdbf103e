package config

import "fmt"

// Identity describes how the owner of this brain is referenced in text.
// Matching is literal substring, not NLU, so the alias list should carry
// every spelling that shows up in transcripts.
type Identity struct {
	Names  []string `yaml:"names" json:"names"`   // e.g. "lucas", "luke", "support team"
	Emails []string `yaml:"emails" json:"emails"` // email fragments, e.g. "lucas@example.com", "lucas.willett@"
}

// StoreConfig points at the persisted documents.
type StoreConfig struct {
	Backend      string `yaml:"backend" json:"backend"` // "file" or "postgres"
	MemoryFile   string `yaml:"memoryFile" json:"memoryFile"`
	EntitiesFile string `yaml:"entitiesFile" json:"entitiesFile"`
	PostgresEnv  string `yaml:"postgresEnv" json:"postgresEnv"` // env var holding the connection string
}

// Config is the whole YAML configuration for the memory core.
type Config struct {
	Identity Identity `yaml:"identity" json:"identity"`

	// Roster maps a direct report's key to their name variants, used for
	// wellness tracking.
	Roster map[string][]string `yaml:"roster" json:"roster"`

	// Known account names and project keywords watched for in free text.
	CustomerKeywords []string `yaml:"customerKeywords" json:"customerKeywords"`
	ProjectKeywords  []string `yaml:"projectKeywords" json:"projectKeywords"`

	// Channels whose content is always persisted in full, signal match or not.
	CuratedChannels []string `yaml:"curatedChannels" json:"curatedChannels"`

	Store   StoreConfig `yaml:"store" json:"store"`
	LogFile string      `yaml:"logFile" json:"logFile"`
}

// Provider is an interface for loading a configuration.
type Provider interface {
	LoadConfig(path string) (*Config, error)
}

// Global references
var (
	provider     Provider
	loadedConfig *Config
	ErrNotLoaded = fmt.Errorf("configuration not loaded")
)

// SetProvider sets the configuration provider.
func SetProvider(p Provider) {
	provider = p
}

// Load uses the current provider to load configuration from the given path.
func Load(path string) (*Config, error) {
	if provider == nil {
		return nil, fmt.Errorf("no configuration provider set")
	}
	cfg, err := provider.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	loadedConfig = cfg
	return cfg, nil
}

// Get returns the loaded configuration.
func Get() (*Config, error) {
	if loadedConfig == nil {
		return nil, ErrNotLoaded
	}
	return loadedConfig, nil
}

// Default returns a usable configuration when no file is present.
func Default() *Config {
	return &Config{
		Identity: Identity{
			Names:  []string{"lucas", "luke", "lucas willett", "support", "support team"},
			Emails: []string{"lucas@visitingmedia.com", "lucas.willett@"},
		},
		Roster: map[string][]string{
			"christian": {"christian", "christian staley"},
			"hannah":    {"hannah", "hannah holbrook"},
		},
		CustomerKeywords: []string{"acme", "bigco"},
		ProjectKeywords: []string{
			"truetour", "embed", "integration", "api", "webhook",
			"beta", "pilot", "migration", "rollout", "launch",
			"dashboard", "reporting", "analytics", "automation",
		},
		CuratedChannels: []string{"lucas-briefing"},
		Store: StoreConfig{
			Backend:      "file",
			MemoryFile:   "./data/memory.json",
			EntitiesFile: "./data/entities.json",
			PostgresEnv:  "BRAIN_PGSQL_CN",
		},
		LogFile: "./data/brain.log",
	}
}
