package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/claimguard/internal/common"
)

// EnvPrefix is the prefix for environment variable overrides (CLAIMGUARD_SERVER_ADDR).
const EnvPrefix = "CLAIMGUARD"

// Config is the fully resolved application configuration.
type Config struct {
	Auth    AuthConfig
	Logging LoggingConfig
	Session SessionConfig
	Server  ServerConfig
	LLM     LLMConfig
	Data    DataConfig
	Models  ModelsConfig
	Notify  NotifyConfig
	Lambda  LambdaConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string
	StaticDir       string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// SessionConfig configures the session store and cookie.
type SessionConfig struct {
	Backend    string // memory or sqlite
	Path       string // sqlite database path
	CookieName string
	MaxAge     time.Duration // 0 keeps sessions until logout
	Secure     bool
}

// AuthConfig holds the bcrypt password hashes keyed by username.
type AuthConfig struct {
	Users map[string]string
}

// LLMConfig configures the remote inference client.
type LLMConfig struct {
	Provider  string // bedrock or openai
	Model     string
	Region    string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per minute, 0 = unlimited
}

// NotifyConfig configures the chat webhook sink.
type NotifyConfig struct {
	WebhookURL  string
	Timeout     time.Duration
	QueueSize   int
	MaxAttempts int
}

// DataConfig configures the dataset preview page.
type DataConfig struct {
	CSVPath string
	MaxRows int
}

// ModelsConfig points at an optional model registry override file.
type ModelsConfig struct {
	RegistryPath string
}

// LambdaConfig configures the serverless handler.
type LambdaConfig struct {
	InvokeRemote bool // call the inference backend instead of the stub
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5001")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.path", "$HOME/.local/share/claimguard/sessions.db")
	v.SetDefault("session.cookie_name", "claimguard_session")
	v.SetDefault("session.max_age", 0)
	v.SetDefault("session.secure", false)

	v.SetDefault("llm.provider", "bedrock")
	v.SetDefault("llm.model", "amazon.nova-micro-v1:0")
	v.SetDefault("llm.region", "us-east-1")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.rate_limit", 0)

	v.SetDefault("notify.timeout", 5*time.Second)
	v.SetDefault("notify.queue_size", 64)
	v.SetDefault("notify.max_attempts", 3)

	v.SetDefault("data.csv_path", "static/data/mock_data.csv")
	v.SetDefault("data.max_rows", 100)

	v.SetDefault("lambda.invoke_remote", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv enables CLAIMGUARD_* environment overrides for nested keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves the configuration from v. Precedence follows viper:
// flags, then environment, then config file, then defaults.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			StaticDir:       ExpandPath(v.GetString("server.static_dir")),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
		},
		Session: SessionConfig{
			Backend:    strings.ToLower(v.GetString("session.backend")),
			Path:       ExpandPath(v.GetString("session.path")),
			CookieName: v.GetString("session.cookie_name"),
			MaxAge:     v.GetDuration("session.max_age"),
			Secure:     v.GetBool("session.secure"),
		},
		Auth: AuthConfig{
			Users: v.GetStringMapString("auth.users"),
		},
		LLM: LLMConfig{
			Provider:  strings.ToLower(v.GetString("llm.provider")),
			Model:     v.GetString("llm.model"),
			Region:    v.GetString("llm.region"),
			APIKey:    v.GetString("llm.api_key"),
			BaseURL:   v.GetString("llm.base_url"),
			Timeout:   v.GetDuration("llm.timeout"),
			RateLimit: v.GetInt("llm.rate_limit"),
		},
		Notify: NotifyConfig{
			WebhookURL:  v.GetString("notify.webhook_url"),
			Timeout:     v.GetDuration("notify.timeout"),
			QueueSize:   v.GetInt("notify.queue_size"),
			MaxAttempts: v.GetInt("notify.max_attempts"),
		},
		Data: DataConfig{
			CSVPath: ExpandPath(v.GetString("data.csv_path")),
			MaxRows: v.GetInt("data.max_rows"),
		},
		Models: ModelsConfig{
			RegistryPath: ExpandPath(v.GetString("models.registry_path")),
		},
		Lambda: LambdaConfig{
			InvokeRemote: v.GetBool("lambda.invoke_remote"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	// Fall back to the conventional variable for OpenAI-compatible backends
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr", common.ErrMissingConfig)
	}

	switch c.Session.Backend {
	case "memory":
	case "sqlite":
		if c.Session.Path == "" {
			return fmt.Errorf("%w: session.path is required for the sqlite backend", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported session backend %q", common.ErrInvalidConfig, c.Session.Backend)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("%w: session.cookie_name", common.ErrMissingConfig)
	}

	switch c.LLM.Provider {
	case "bedrock", "openai":
	default:
		return fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}

	if c.LLM.RateLimit < 0 {
		return fmt.Errorf("%w: llm.rate_limit must not be negative", common.ErrInvalidConfig)
	}

	if c.Data.MaxRows <= 0 {
		return fmt.Errorf("%w: data.max_rows must be positive", common.ErrInvalidConfig)
	}

	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("%w: notify.queue_size must be positive", common.ErrInvalidConfig)
	}

	return nil
}
