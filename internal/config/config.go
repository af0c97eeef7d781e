package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LLM     LLMConfig
	Server  ServerConfig
	Client  ClientConfig
	Journal JournalConfig
	Log     LogConfig
}

// LLMConfig holds the completion capability configuration.
// There is deliberately no system prompt field: the persona is fixed in the relay.
type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds the relay server configuration
type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
}

// ClientConfig holds the chat client configuration
type ClientConfig struct {
	RelayURL         string        `mapstructure:"relay_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	DropStaleReplies bool          `mapstructure:"drop_stale_replies"`
}

// JournalConfig holds the exchange journal configuration. An empty path keeps it in memory.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var envBindings = map[string][]string{
	"llm.api_key":               {"GEMINI_API_KEY", "LLM_API_KEY"},
	"llm.provider":              {"LLM_PROVIDER"},
	"llm.model":                 {"LLM_MODEL"},
	"llm.base_url":              {"LLM_BASE_URL"},
	"llm.timeout":               {"LLM_TIMEOUT"},
	"server.host":               {"HOST"},
	"server.port":               {"PORT"},
	"server.static_dir":         {"STATIC_DIR"},
	"client.relay_url":          {"RELAY_URL"},
	"client.timeout":            {"RELAY_TIMEOUT"},
	"client.drop_stale_replies": {"DROP_STALE_REPLIES"},
	"journal.path":              {"JOURNAL_PATH"},
	"log.level":                 {"LOG_LEVEL"},
	"log.format":                {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-3-flash-preview")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "3000")
	v.SetDefault("client.relay_url", "http://localhost:3000")
	v.SetDefault("client.timeout", 90*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load loads the configuration from .env, the YAML file (CONFIG_PATH or ./config.yaml)
// and the environment, in increasing order of precedence.
// A missing config file is not an error, and neither is a missing API key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
