package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Redis   RedisConfig   `toml:"redis"`
	Data    DataConfig    `toml:"data"`
	Tracker TrackerConfig `toml:"tracker"`
	Player  PlayerConfig  `toml:"player"`
}

// ServerConfig contains HTTP server settings for the vote tracking endpoint.
type ServerConfig struct {
	Host           string  `toml:"host"`
	Port           int     `toml:"port"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
	BurstSize      int     `toml:"burst_size"`
}

// RedisConfig contains connection settings for the key-value store backing
// aggregate statistics. An empty Addr disables the store (degraded mode).
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// DataConfig contains paths to local data files.
type DataConfig struct {
	PlaylistsPath string `toml:"playlists_path"`
	VotesDBPath   string `toml:"votes_db_path"`
}

// TrackerConfig contains settings for the client side of vote submission.
type TrackerConfig struct {
	Endpoint string `toml:"endpoint"`
}

// PlayerConfig contains settings for the external playback daemon bridge.
type PlayerConfig struct {
	BridgeURL string `toml:"bridge_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
