// Package agentconn manages subprocess ACP agent connections: the
// well-known agent table, viper-backed configuration, and the
// Manager that owns one acp.ClientSideConnection per spawned agent.
package agentconn

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// AgentConfig describes one ACP-compatible agent binary the client can
// spawn.
type AgentConfig struct {
	Name        string            `mapstructure:"name" validate:"required"`
	DisplayName string            `mapstructure:"displayName"`
	Command     string            `mapstructure:"command" validate:"required"`
	Args        []string          `mapstructure:"args"`
	Env         map[string]string `mapstructure:"env"`
	Description string            `mapstructure:"description"`
	AutoDetect  bool              `mapstructure:"autoDetect"`
}

// MCPServerConfig describes an MCP server the client can wire into a new
// session's mcpServers list.
type MCPServerConfig struct {
	Name    string            `mapstructure:"name"`
	Command string            `mapstructure:"command"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
}

// AppSettings holds application-wide preferences.
type AppSettings struct {
	DefaultAgent string `mapstructure:"defaultAgent"`
	DefaultCwd   string `mapstructure:"defaultCwd"`
	AutoApprove  bool   `mapstructure:"autoApprove"`
}

// Config is the top-level client configuration.
type Config struct {
	Agents     []AgentConfig     `mapstructure:"agents"`
	MCPServers []MCPServerConfig `mapstructure:"mcpServers"`
	Settings   AppSettings       `mapstructure:"settings"`
}

// ConfigPath returns the default configuration file path
// (~/.config/acp-go/config.yaml).
func ConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "acp-go", "config.yaml")
}

// DefaultConfig returns a Config populated with the well-known ACP agent
// table and sensible default settings.
func DefaultConfig() *Config {
	return &Config{
		Agents: WellKnownAgents(),
		Settings: AppSettings{
			DefaultAgent: "opencode",
			AutoApprove:  false,
		},
	}
}

// LoadConfig reads configuration through viper, layering a config file at
// path over the built-in defaults and environment variables prefixed
// ACP_GO_. A missing file is not an error: defaults apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ACP_GO")
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("agents", def.Agents)
	v.SetDefault("settings.defaultAgent", def.Settings.DefaultAgent)
	v.SetDefault("settings.autoApprove", def.Settings.AutoApprove)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("agentconn: read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("agentconn: parse config: %w", err)
	}
	for _, agent := range cfg.Agents {
		if err := validate.Struct(agent); err != nil {
			return nil, fmt.Errorf("agentconn: config: agent %q: %w", agent.Name, err)
		}
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating parent directories as
// needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("agentconn: create config dir: %w", err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("agents", cfg.Agents)
	v.Set("mcpServers", cfg.MCPServers)
	v.Set("settings", cfg.Settings)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("agentconn: write config: %w", err)
	}
	return nil
}
