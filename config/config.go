// Package config holds the simulator configuration.
package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/f3rmion/frostrelay/frost"
)

// EnvPrefix prefixes environment variable overrides (FROSTSIM_PARTIES, ...).
const EnvPrefix = "FROSTSIM"

// Config describes one simulated keygen and signing run.
type Config struct {
	Parties   int    `mapstructure:"parties" json:"parties"`
	Threshold int    `mapstructure:"threshold" json:"threshold"`
	SessionID string `mapstructure:"session_id" json:"session_id"`

	// Signers lists keygen indices taking part in signing. Empty means the
	// first Threshold parties.
	Signers []int `mapstructure:"signers" json:"signers"`

	// Message is signed after hashing with SHA-256 unless MessageHash is set.
	Message     string `mapstructure:"message" json:"message"`
	MessageHash string `mapstructure:"message_hash" json:"message_hash"`

	Ciphersuite string        `mapstructure:"ciphersuite" json:"ciphersuite"`
	Wire        string        `mapstructure:"wire" json:"wire"`
	QueueSize   int           `mapstructure:"queue_size" json:"queue_size"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	Benchmark   bool          `mapstructure:"benchmark" json:"benchmark"`

	LogLevel  string `mapstructure:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" json:"log_format"`
}

// Default returns the stock 2-of-3 configuration.
func Default() Config {
	return Config{
		Parties:     3,
		Threshold:   2,
		SessionID:   "s1",
		Message:     "frostrelay",
		Ciphersuite: frost.SuiteBitcoin,
		Wire:        "json",
		QueueSize:   256,
		Timeout:     30 * time.Second,
		Benchmark:   true,
		LogLevel:    "info",
		LogFormat:   "console",
	}
}

// Validate checks the configuration and fills in derived defaults.
func (c *Config) Validate() error {
	if c.Parties < 1 || c.Parties > frost.MaxParticipants {
		return fmt.Errorf("parties must be between 1 and %d", frost.MaxParticipants)
	}
	if c.Threshold < 1 || c.Threshold > c.Parties {
		return fmt.Errorf("threshold must be between 1 and parties (%d)", c.Parties)
	}
	if c.SessionID == "" {
		return fmt.Errorf("session id must not be empty")
	}
	if len(c.Signers) == 0 {
		c.Signers = make([]int, c.Threshold)
		for i := range c.Signers {
			c.Signers[i] = i
		}
	}
	if len(c.Signers) < c.Threshold {
		return fmt.Errorf("need at least %d signers, got %d", c.Threshold, len(c.Signers))
	}
	seen := make(map[int]bool, len(c.Signers))
	for _, s := range c.Signers {
		if s < 0 || s >= c.Parties {
			return fmt.Errorf("signer %d out of range for %d parties", s, c.Parties)
		}
		if seen[s] {
			return fmt.Errorf("signer %d listed twice", s)
		}
		seen[s] = true
	}
	if c.MessageHash != "" {
		b, err := hex.DecodeString(c.MessageHash)
		if err != nil || len(b) != 32 {
			return fmt.Errorf("message hash must be 32 bytes of hex")
		}
	}
	if _, err := c.Suite(); err != nil {
		return err
	}
	if c.Wire != "json" && c.Wire != "protobuf" {
		return fmt.Errorf("wire must be 'json' or 'protobuf'")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue size must be positive")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}
	return nil
}

// Suite resolves the configured ciphersuite.
func (c *Config) Suite() (*frost.Ciphersuite, error) {
	switch strings.ToLower(c.Ciphersuite) {
	case "", strings.ToLower(frost.SuiteBitcoin), "bitcoin", "secp256k1":
		return frost.Bitcoin(), nil
	case strings.ToLower(frost.SuiteBabyJubjub), "babyjubjub", "bjj":
		return frost.BabyJubjub(), nil
	default:
		return nil, fmt.Errorf("unknown ciphersuite %q", c.Ciphersuite)
	}
}

// SignerIndices returns Signers as party indices.
func (c *Config) SignerIndices() []uint16 {
	out := make([]uint16, len(c.Signers))
	for i, s := range c.Signers {
		out[i] = uint16(s)
	}
	return out
}

// SetDefaults registers Default() with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("parties", d.Parties)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("session_id", d.SessionID)
	v.SetDefault("signers", []int{})
	v.SetDefault("message", d.Message)
	v.SetDefault("message_hash", d.MessageHash)
	v.SetDefault("ciphersuite", d.Ciphersuite)
	v.SetDefault("wire", d.Wire)
	v.SetDefault("queue_size", d.QueueSize)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("benchmark", d.Benchmark)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// Load reads the configuration from v: defaults, then an optional config
// file, then FROSTSIM_* environment variables, then any flags bound to v.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
