package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "LANDLORD"

// Seat kinds understood by bot.NewProvider.
const (
	SeatRule   = "rule"
	SeatLLM    = "llm"
	SeatScript = "script"
)

type Config struct {
	Game  GameConfig   `mapstructure:"game"`
	Seats []SeatConfig `mapstructure:"seats"`
	Ally  AllyConfig   `mapstructure:"ally"`
	LLM   LLMConfig    `mapstructure:"llm"`
	Bots  BotConfig    `mapstructure:"bots"`
	NATS  NATSConfig   `mapstructure:"nats"`
	Redis RedisConfig  `mapstructure:"redis"`
	Log   LogConfig    `mapstructure:"log"`
}

type GameConfig struct {
	// DecisionTimeout bounds every provider call.
	DecisionTimeout time.Duration `mapstructure:"decision_timeout"`
	// MaxRedeals caps consecutive all-pass bidding rounds before a landlord is
	// forced. The default 0 redeals until someone bids.
	MaxRedeals int   `mapstructure:"max_redeals"`
	Seed       int64 `mapstructure:"seed"`
	Games      int   `mapstructure:"games"`
	Parallel   int   `mapstructure:"parallel"`
}

type SeatConfig struct {
	Kind   string `mapstructure:"kind"`
	Script string `mapstructure:"script"`
}

type AllyConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	CheapPlayMax      int  `mapstructure:"cheap_play_max"`
	SpareCardsMin     int  `mapstructure:"spare_cards_min"`
	KeepOverrideAbove int  `mapstructure:"keep_override_above"`
}

type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

// BotConfig tunes rule bots inside Nakama matches.
type BotConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	MinDelaySec      int  `mapstructure:"min_delay_sec"`
	MaxDelaySec      int  `mapstructure:"max_delay_sec"`
	AutoFillDelaySec int  `mapstructure:"auto_fill_delay_sec"`
	// TurnSeconds is how long a human may think before the search plays for them.
	TurnSeconds int `mapstructure:"turn_seconds"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Node     string        `mapstructure:"node"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.decision_timeout", 5*time.Second)
	v.SetDefault("game.max_redeals", 0)
	v.SetDefault("game.games", 1)
	v.SetDefault("game.parallel", 4)
	v.SetDefault("seats", []map[string]interface{}{
		{"kind": SeatRule}, {"kind": SeatRule}, {"kind": SeatRule},
	})
	v.SetDefault("ally.enabled", true)
	v.SetDefault("ally.cheap_play_max", 4)
	v.SetDefault("ally.spare_cards_min", 4)
	v.SetDefault("ally.keep_override_above", 10)
	v.SetDefault("llm.base_url", "http://localhost:11434/v1")
	v.SetDefault("llm.model", "qwen2.5:32b")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.backoff", time.Second)
	v.SetDefault("bots.enabled", true)
	v.SetDefault("bots.min_delay_sec", 1)
	v.SetDefault("bots.max_delay_sec", 3)
	v.SetDefault("bots.auto_fill_delay_sec", 5)
	v.SetDefault("bots.turn_seconds", 30)
	v.SetDefault("nats.subject_prefix", "landlord.game")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("redis.node", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads path (YAML or JSON by extension) on top of the defaults. An
// empty path loads defaults and LANDLORD_* environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects configurations the table cannot run with.
func (c *Config) Validate() error {
	if len(c.Seats) != 3 {
		return fmt.Errorf("config: need exactly 3 seats, got %d", len(c.Seats))
	}
	for i, s := range c.Seats {
		switch s.Kind {
		case SeatRule, SeatLLM:
		case SeatScript:
			if s.Script == "" {
				return fmt.Errorf("config: seat %d is a script seat without a script path", i)
			}
		default:
			return fmt.Errorf("config: seat %d has unknown kind %q", i, s.Kind)
		}
	}
	if c.Game.DecisionTimeout <= 0 {
		return fmt.Errorf("config: game.decision_timeout must be positive")
	}
	if c.Bots.MaxDelaySec < c.Bots.MinDelaySec {
		return fmt.Errorf("config: bots.max_delay_sec below bots.min_delay_sec")
	}
	return nil
}
