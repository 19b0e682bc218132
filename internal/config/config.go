package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName   = "todo-agent"
	EnvPrefix = "TODO_AGENT"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Agent    AgentConfig    `mapstructure:"agent"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite3", "postgres", "mysql"
	DSN    string `mapstructure:"dsn"`
}

type LLMConfig struct {
	Provider  string        `mapstructure:"provider"` // "openai", "go-openai", "anthropic"
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

type AgentConfig struct {
	Prompt          string `mapstructure:"prompt"`
	MaxSteps        int    `mapstructure:"max_steps"`         // model round trips per user input
	MaxReplyRetries int    `mapstructure:"max_reply_retries"` // corrective retries per malformed reply
}

type HistoryConfig struct {
	Backend     string      `mapstructure:"backend"` // "memory", "redis"
	MaxMessages int         `mapstructure:"max_messages"`
	MaxTokens   int         `mapstructure:"max_tokens"` // 0 disables token budgeting
	Encoding    string      `mapstructure:"encoding"`
	Redis       RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from configPath, or from todo-agent.yaml in the
// usual places when configPath is empty. A missing default file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKeyFromEnv(cfg.LLM.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "todos.db")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_tokens", 1024)

	v.SetDefault("agent.prompt", "Enter your query: ")
	v.SetDefault("agent.max_steps", 10)
	v.SetDefault("agent.max_reply_retries", 1)

	v.SetDefault("history.backend", "memory")
	v.SetDefault("history.max_messages", 50)
	v.SetDefault("history.max_tokens", 0)
	v.SetDefault("history.encoding", "cl100k_base")
	v.SetDefault("history.redis.addr", "127.0.0.1:6379")
	v.SetDefault("history.redis.password", "")
	v.SetDefault("history.redis.db", 0)
	v.SetDefault("history.redis.ttl", "24h")
	v.SetDefault("history.redis.key_prefix", AppName+":history")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("http.addr", ":8100")
}

// providerKeyFromEnv falls back to the credential variable each SDK reads.
func providerKeyFromEnv(provider string) string {
	if strings.EqualFold(provider, "anthropic") {
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}

func (c *Config) Validate() error {
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be positive, got %d", c.Agent.MaxSteps)
	}
	if c.Agent.MaxReplyRetries < 0 {
		return fmt.Errorf("agent.max_reply_retries must not be negative, got %d", c.Agent.MaxReplyRetries)
	}
	if c.History.MaxMessages <= 0 {
		return fmt.Errorf("history.max_messages must be positive, got %d", c.History.MaxMessages)
	}
	if c.History.MaxTokens < 0 {
		return fmt.Errorf("history.max_tokens must not be negative, got %d", c.History.MaxTokens)
	}
	switch strings.ToLower(c.History.Backend) {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	return nil
}
