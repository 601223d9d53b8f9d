package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/moonhowl/onenight/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// GameSettings contains the session defaults applied to every game
type GameSettings struct {
	MinPlayers        int   `hcl:"min_players,optional"`
	MaxPlayers        int   `hcl:"max_players,optional"`
	DiscussionSeconds int   `hcl:"discussion_seconds,optional"`
	SessionTTLMinutes int   `hcl:"session_ttl_minutes,optional"`
	Seed              int64 `hcl:"seed,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			LogFile:  "onenight-server.log",
		},
		Game: GameSettings{
			MinPlayers:        3,
			MaxPlayers:        10,
			DiscussionSeconds: 300,
			SessionTTLMinutes: 30,
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Missing file means defaults, not an error
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = "onenight-server.log"
	}

	if config.Game.MinPlayers == 0 {
		config.Game.MinPlayers = 3
	}
	if config.Game.MaxPlayers == 0 {
		config.Game.MaxPlayers = 10
	}
	if config.Game.DiscussionSeconds == 0 {
		config.Game.DiscussionSeconds = 300
	}
	if config.Game.SessionTTLMinutes == 0 {
		config.Game.SessionTTLMinutes = 30
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Game.MinPlayers < 3 {
		return fmt.Errorf("min players must be at least 3, got %d", c.Game.MinPlayers)
	}
	if c.Game.MaxPlayers < c.Game.MinPlayers {
		return fmt.Errorf("max players %d is below min players %d", c.Game.MaxPlayers, c.Game.MinPlayers)
	}
	if c.Game.DiscussionSeconds <= 0 {
		return fmt.Errorf("discussion seconds must be positive, got %d", c.Game.DiscussionSeconds)
	}
	if c.Game.SessionTTLMinutes <= 0 {
		return fmt.Errorf("session TTL minutes must be positive, got %d", c.Game.SessionTTLMinutes)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameConfig converts the settings into the session configuration
func (c *ServerConfig) GameConfig() game.Config {
	return game.Config{
		MinPlayers:     c.Game.MinPlayers,
		MaxPlayers:     c.Game.MaxPlayers,
		DiscussionTime: time.Duration(c.Game.DiscussionSeconds) * time.Second,
	}
}

// SessionTTL returns how long finished sessions are retained
func (c *ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.Game.SessionTTLMinutes) * time.Minute
}
