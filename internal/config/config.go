package config

import (
	"fmt"
	"time"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// ServerConfig represents the full application configuration
type ServerConfig struct {
	Server ServerSettings `yaml:"server"`
	Game   GameSettings   `yaml:"game"`
	AI     AISettings     `yaml:"ai"`
	Agents []AgentSeed    `yaml:"agents"`
}

// ServerSettings contains server-wide settings
type ServerSettings struct {
	Port            string        `yaml:"port" envconfig:"PORT" required:"true"`
	Host            string        `yaml:"host" envconfig:"HOST" required:"true"`
	ReadTimeout     time.Duration `yaml:"readTimeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" envconfig:"WRITE_TIMEOUT" default:"0s"` // 0 for WS/SSE support
	IdleTimeout     time.Duration `yaml:"idleTimeout" envconfig:"IDLE_TIMEOUT" default:"0s"`  // 0 for WS/SSE support
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"` // Timeout for plain API requests (middleware)

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit" envconfig:"RATE_LIMIT" default:"10"`            // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst" envconfig:"RATE_LIMIT_BURST" default:"20"` // burst size

	// Request limits
	MaxRequestSize int64 `yaml:"maxRequestSize" envconfig:"MAX_REQUEST_SIZE" default:"1048576"` // 1MB

	// Logging
	LogLevel  string `yaml:"logLevel" envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `yaml:"logFormat" envconfig:"LOG_FORMAT" default:"text"`
}

// GameSettings contains the round and scoring rules
type GameSettings struct {
	RoundDuration time.Duration `yaml:"roundDuration"` // countdown per round
	TickInterval  time.Duration `yaml:"tickInterval"`  // timer tick granularity
	CoolDown      time.Duration `yaml:"coolDown"`      // delay between rounds

	// Scoring rule set: "flat" or "time-decay"
	Scoring      string `yaml:"scoring"`
	GuesserAward int    `yaml:"guesserAward"`
	DrawerAward  int    `yaml:"drawerAward"`
	DecayBonus   int    `yaml:"decayBonus"` // max extra points in time-decay mode

	// Simulated agent guessing during a round
	AgentGuessChance   float64       `yaml:"agentGuessChance"`   // per-tick chance an agent guesses
	AgentCorrectChance float64       `yaml:"agentCorrectChance"` // chance the guess is the target word
	MinSolveDelay      time.Duration `yaml:"minSolveDelay"`      // no correct agent guesses before this

	// Whether agents count toward the all-guessed early round end
	CountAgentGuessers bool `yaml:"countAgentGuessers"`

	// Optional YAML vocabulary file; built-in word lists are used when empty
	WordsFile string `yaml:"wordsFile" envconfig:"WORDS_FILE"`
}

// AISettings configures the drawing/guessing capability client
type AISettings struct {
	BaseURL        string        `yaml:"baseURL" envconfig:"AI_BASE_URL"`
	APIKey         string        `yaml:"apiKey" envconfig:"AI_API_KEY" required:"true"`
	MaxRetries     uint64        `yaml:"maxRetries"`
	RetryBackoff   time.Duration `yaml:"retryBackoff"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// AgentSeed describes one automated agent pre-seeded into every room
type AgentSeed struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Port:            "", // Must be set via env
			Host:            "", // Must be set via env
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // 0 for WS/SSE support
			IdleTimeout:     0, // 0 for WS/SSE support
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
			RateLimit:       10,
			RateLimitBurst:  20,
			MaxRequestSize:  1048576, // 1MB
			LogLevel:        "info",
			LogFormat:       "text",
		},
		Game: GameSettings{
			RoundDuration:      60 * time.Second,
			TickInterval:       1 * time.Second,
			CoolDown:           5 * time.Second,
			Scoring:            "flat",
			GuesserAward:       10,
			DrawerAward:        10,
			DecayBonus:         5,
			AgentGuessChance:   0.2,
			AgentCorrectChance: 0.3,
			MinSolveDelay:      10 * time.Second,
			CountAgentGuessers: false,
		},
		AI: AISettings{
			BaseURL:        "https://api.openai.com/v1",
			APIKey:         "", // Must be set via env
			MaxRetries:     2,
			RetryBackoff:   300 * time.Millisecond,
			RequestTimeout: 90 * time.Second,
		},
		Agents: []AgentSeed{
			{ID: "agent-pixel", Name: "Pixel", Model: "gpt-4o-mini"},
			{ID: "agent-doodle", Name: "Doodle", Model: "claude-3-5-haiku"},
			{ID: "agent-sketchy", Name: "Sketchy", Model: "gemini-2.0-flash"},
			{ID: "agent-inky", Name: "Inky", Model: "llama-3.3-70b"},
			{ID: "agent-scribbles", Name: "Scribbles", Model: "mistral-small"},
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	// Required fields
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI_API_KEY environment variable must be set")
	}

	if c.Game.RoundDuration <= 0 {
		return fmt.Errorf("roundDuration must be positive")
	}
	if c.Game.TickInterval <= 0 {
		return fmt.Errorf("tickInterval must be positive")
	}
	if c.Game.TickInterval > c.Game.RoundDuration {
		return fmt.Errorf("tickInterval cannot be greater than roundDuration")
	}
	if c.Game.CoolDown < 0 {
		return fmt.Errorf("coolDown cannot be negative")
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rateLimit cannot be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rateLimitBurst must be at least 1 when rate limiting is enabled")
	}

	// Default and validate the scoring rule set
	if c.Game.Scoring == "" {
		c.Game.Scoring = "flat"
	}
	if c.Game.Scoring != "flat" && c.Game.Scoring != "time-decay" {
		return fmt.Errorf("scoring must be %q or %q, got %q", "flat", "time-decay", c.Game.Scoring)
	}
	if c.Game.GuesserAward < 0 || c.Game.DrawerAward < 0 || c.Game.DecayBonus < 0 {
		return fmt.Errorf("score awards cannot be negative")
	}

	if c.Game.AgentGuessChance < 0 || c.Game.AgentGuessChance > 1 {
		return fmt.Errorf("agentGuessChance must be between 0 and 1")
	}
	if c.Game.AgentCorrectChance < 0 || c.Game.AgentCorrectChance > 1 {
		return fmt.Errorf("agentCorrectChance must be between 0 and 1")
	}

	if len(c.Agents) == 0 {
		return fmt.Errorf("at least one agent must be configured")
	}
	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.ID == "" || a.Name == "" || a.Model == "" {
			return fmt.Errorf("agent entries need id, name and model")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate agent id %q", a.ID)
		}
		seen[a.ID] = true
	}

	return nil
}
