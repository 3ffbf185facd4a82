// Copyright 2024-2026 Aiku AI

package relay

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"go.mau.fi/util/ptr"
	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// Config holds the process configuration.
type Config struct {
	// ListenAddr is the control-channel listen address. The PORT
	// environment variable overrides the port, defaulting to :3000.
	ListenAddr string `yaml:"listen_addr"`
	// AccountsFile is the flat credential file used for auto-login.
	AccountsFile string `yaml:"accounts_file"`

	Logging zeroconfig.Config `yaml:"logging"`
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	return node.Decode((*rawConfig)(c))
}

// LoadConfig reads the config file and applies env overrides and defaults.
// A missing file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.PostProcess()
	return &cfg, nil
}

// PostProcess fills defaults and applies the PORT environment override.
func (c *Config) PostProcess() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":3000"
	}
	if port := os.Getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
	if c.AccountsFile == "" {
		c.AccountsFile = "accounts.json"
	}
	if len(c.Logging.Writers) == 0 {
		c.Logging.Writers = []zeroconfig.WriterConfig{{
			Type:   zeroconfig.WriterTypeStdout,
			Format: zeroconfig.LogFormatPrettyColored,
		}}
	}
	if c.Logging.MinLevel == nil {
		c.Logging.MinLevel = ptr.Ptr(zerolog.InfoLevel)
	}
}
