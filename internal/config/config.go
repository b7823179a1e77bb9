package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Model        ModelConfig        `mapstructure:"model"`
	Doubao       DoubaoConfig       `mapstructure:"doubao"`
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
	Qwen         QwenConfig         `mapstructure:"qwen"`
	Capabilities CapabilitiesConfig `mapstructure:"capabilities"`
	Processing   ProcessingConfig   `mapstructure:"processing"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Log          LogConfig          `mapstructure:"log"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Email        EmailConfig        `mapstructure:"email"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type ModelConfig struct {
	Provider string `mapstructure:"provider"`
}

type DoubaoConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type QwenConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float32       `mapstructure:"temperature"`
	TopP         float32       `mapstructure:"top_p"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DebugRequest bool          `mapstructure:"debug_request"`
}

// CapabilityConfig describes one host capability. Enabled=false means the
// capability is not supported at all; Availability mirrors the
// "readily" / "after-download" / "no" states of an on-device model.
type CapabilityConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Availability string `mapstructure:"availability"`
}

type CapabilitiesConfig struct {
	Translation   CapabilityConfig `mapstructure:"translation"`
	Detection     CapabilityConfig `mapstructure:"detection"`
	Summarization CapabilityConfig `mapstructure:"summarization"`
}

type ProcessingConfig struct {
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	Type    string `mapstructure:"type"`
	DataDir string `mapstructure:"data_dir"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// NotifyTo receives the new-registration notice; defaults to Username.
	NotifyTo string `mapstructure:"notify_to"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("model.provider", "openai")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("qwen.timeout", 60*time.Second)
	v.SetDefault("qwen.max_tokens", 2048)
	v.SetDefault("qwen.temperature", 0.2)
	v.SetDefault("qwen.top_p", 0.9)

	for _, name := range []string{"translation", "detection", "summarization"} {
		v.SetDefault("capabilities."+name+".enabled", true)
		v.SetDefault("capabilities."+name+".availability", "readily")
	}

	v.SetDefault("processing.operation_timeout", 60*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept"})
	v.SetDefault("cors.max_age", 43200)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.type", "disk")
	v.SetDefault("storage.data_dir", "./data")

	v.SetDefault("email.port", 587)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}

	// The config file wins; well-known provider variables fill the gaps.
	if c.Doubao.APIKey == "" {
		if apiKey := os.Getenv("ARK_API_KEY"); apiKey != "" {
			c.Doubao.APIKey = apiKey
		}
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Qwen.APIKey == "" {
		c.Qwen.APIKey = os.Getenv("DASHSCOPE_API_KEY")
	}
	if c.Email.NotifyTo == "" {
		c.Email.NotifyTo = c.Email.Username
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "doubao", "openai", "qwen":
	default:
		return fmt.Errorf("unsupported model provider: %q", c.Model.Provider)
	}

	switch c.Storage.Type {
	case "memory", "disk", "sqlite":
	default:
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}

	for name, cc := range map[string]CapabilityConfig{
		"translation":   c.Capabilities.Translation,
		"detection":     c.Capabilities.Detection,
		"summarization": c.Capabilities.Summarization,
	} {
		switch cc.Availability {
		case "readily", "after-download", "no":
		default:
			return fmt.Errorf("capabilities.%s.availability: unknown value %q", name, cc.Availability)
		}
	}

	if c.Processing.OperationTimeout <= 0 {
		return fmt.Errorf("processing.operation_timeout must be positive")
	}

	if c.Email.Enabled && c.Email.Host == "" {
		return fmt.Errorf("email.host is required when email is enabled")
	}

	return nil
}
