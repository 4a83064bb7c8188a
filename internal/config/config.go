package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const (
	ConfigFileName = "config.toml"
	LogFileName    = "walletconn.log"
	EnvPrefix      = "WALLETCONN"

	DefaultPollInterval = 2 * time.Second
	DefaultProbeTimeout = 3 * time.Second
	DefaultInstallURL   = "https://metamask.io/download/"
	DefaultLogLevel     = "info"
)

// Network maps a chain id to a display name
type Network struct {
	ChainID string `mapstructure:"chain_id" toml:"chain_id" yaml:"chain_id"`
	Name    string `mapstructure:"name" toml:"name" yaml:"name"`
}

// KnownNetworks are shown by name when no [[networks]] are configured
var KnownNetworks = []Network{
	{ChainID: "0x1", Name: "Ethereum Mainnet"},
	{ChainID: "0xaa36a7", Name: "Sepolia"},
	{ChainID: "0x89", Name: "Polygon"},
	{ChainID: "0xa4b1", Name: "Arbitrum One"},
	{ChainID: "0x2105", Name: "Base"},
}

// ProviderConfig locates the wallet agent
type ProviderConfig struct {
	URL          string        `mapstructure:"url" yaml:"url"`                     // Empty means no provider installed
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"` // Watcher throttle
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	InstallURL   string        `mapstructure:"install_url" yaml:"install_url"`
}

// LoggingConfig controls the log file
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Config holds the runtime configuration
type Config struct {
	ConfigDir  string `mapstructure:"-" yaml:"-"`
	ConfigPath string `mapstructure:"-" yaml:"-"`

	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Networks []Network      `mapstructure:"networks" yaml:"networks"`
}

// ConfigFile represents the TOML config file structure
type ConfigFile struct {
	Provider struct {
		URL          string `toml:"url"`
		PollInterval string `toml:"poll_interval"`
		ProbeTimeout string `toml:"probe_timeout"`
		InstallURL   string `toml:"install_url"`
	} `toml:"provider"`
	Logging struct {
		Level string `toml:"level"`
		File  string `toml:"file,omitempty"`
	} `toml:"logging"`
	Networks []Network `toml:"networks,omitempty"`
}

// ExpandPath expands ~ to home directory in a path
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// DefaultPath returns the config file location, honoring WALLETCONN_CONFIG
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return ExpandPath(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".walletconn", ConfigFileName), nil
}

// DefaultConfig loads the configuration from the default location
func DefaultConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load reads defaults, then the file at path if it exists, then WALLETCONN_*
// environment overrides
func Load(path string) (*Config, error) {
	dir := filepath.Dir(path)

	v := viper.New()
	v.SetDefault("provider.url", "")
	v.SetDefault("provider.poll_interval", DefaultPollInterval)
	v.SetDefault("provider.probe_timeout", DefaultProbeTimeout)
	v.SetDefault("provider.install_url", DefaultInstallURL)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.file", filepath.Join(dir, LogFileName))

	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{ConfigDir: dir, ConfigPath: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.Networks) == 0 {
		cfg.Networks = make([]Network, len(KnownNetworks))
		copy(cfg.Networks, KnownNetworks)
	}
	if cfg.Provider.PollInterval < 0 {
		return nil, fmt.Errorf("provider.poll_interval must not be negative, got %s", cfg.Provider.PollInterval)
	}
	if cfg.Provider.ProbeTimeout <= 0 {
		cfg.Provider.ProbeTimeout = DefaultProbeTimeout
	}
	logFile, err := ExpandPath(cfg.Logging.File)
	if err != nil {
		return nil, err
	}
	cfg.Logging.File = logFile
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	if err := c.EnsureDirs(); err != nil {
		return err
	}

	var cf ConfigFile
	cf.Provider.URL = c.Provider.URL
	cf.Provider.PollInterval = c.Provider.PollInterval.String()
	cf.Provider.ProbeTimeout = c.Provider.ProbeTimeout.String()
	cf.Provider.InstallURL = c.Provider.InstallURL
	cf.Logging.Level = c.Logging.Level
	if c.Logging.File != filepath.Join(c.ConfigDir, LogFileName) {
		cf.Logging.File = c.Logging.File
	}
	cf.Networks = c.Networks

	f, err := os.Create(c.ConfigPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cf)
}

// EnsureDirs creates necessary directories if they don't exist
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.ConfigDir, 0755); err != nil {
		return err
	}
	if dir := filepath.Dir(c.Logging.File); dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// NetworkName returns the display name of chainID, or chainID itself when it
// is not a configured network
func (c *Config) NetworkName(chainID string) string {
	for _, n := range c.Networks {
		if strings.EqualFold(n.ChainID, chainID) {
			return n.Name
		}
	}
	return chainID
}
