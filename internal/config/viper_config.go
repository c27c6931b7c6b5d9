package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	// Set config file details
	v.SetConfigName("server")
	v.SetConfigType("yaml")

	// Add config paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/aiscribble")
	}

	// Enable environment variable binding
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables
	// These allow both AISCRIBBLE-style keys and the plain names to work
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("server.logformat", "LOG_FORMAT")
	v.BindEnv("server.maxrequestsize", "MAX_REQUEST_SIZE")
	v.BindEnv("ai.baseurl", "AI_BASE_URL")
	v.BindEnv("ai.apikey", "AI_API_KEY")
	v.BindEnv("game.wordsfile", "WORDS_FILE")

	// Timeout defaults
	v.SetDefault("server.readtimeout", "15s")
	v.SetDefault("server.writetimeout", "0s") // 0 for WS/SSE support
	v.SetDefault("server.idletimeout", "0s")  // 0 for WS/SSE support
	v.SetDefault("server.shutdowntimeout", "30s")
	v.SetDefault("server.requesttimeout", "60s")

	// Rate limiting defaults
	v.SetDefault("server.ratelimit", 10)
	v.SetDefault("server.ratelimitburst", 20)

	// Request limits
	v.SetDefault("server.maxrequestsize", 1048576) // 1MB

	// Logging defaults
	v.SetDefault("server.loglevel", "info")
	v.SetDefault("server.logformat", "text")

	// Game rule defaults
	v.SetDefault("game.roundduration", "60s")
	v.SetDefault("game.tickinterval", "1s")
	v.SetDefault("game.cooldown", "5s")
	v.SetDefault("game.scoring", "flat")
	v.SetDefault("game.guesseraward", 10)
	v.SetDefault("game.draweraward", 10)
	v.SetDefault("game.decaybonus", 5)
	v.SetDefault("game.agentguesschance", 0.2)
	v.SetDefault("game.agentcorrectchance", 0.3)
	v.SetDefault("game.minsolvedelay", "10s")
	v.SetDefault("game.countagentguessers", false)

	// AI capability defaults
	v.SetDefault("ai.baseurl", "https://api.openai.com/v1")
	v.SetDefault("ai.maxretries", 2)
	v.SetDefault("ai.retrybackoff", "300ms")
	v.SetDefault("ai.requesttimeout", "90s")

	// Try to read config file (it's optional)
	if err := v.ReadInConfig(); err != nil {
		// If a specific config file was requested and not found, that's OK
		// We'll continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// For other errors (like permission issues), check if it's just file not found
			if strings.Contains(err.Error(), "no such file or directory") {
				// File doesn't exist, continue with defaults
			} else {
				// Config file was found but another error occurred
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
		// Config file not found; continue with env vars and defaults
	}

	// Create config struct
	cfg := &ServerConfig{}

	// Unmarshal into the struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate required fields
	if v.GetString("server.port") == "" {
		return nil, fmt.Errorf("PORT environment variable must be set")
	}
	if v.GetString("server.host") == "" {
		return nil, fmt.Errorf("HOST environment variable must be set")
	}

	// Load the default agent roster if not in config file
	if len(cfg.Agents) == 0 {
		cfg.Agents = DefaultConfig().Agents
	}

	// Additional validation
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
