package config

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIBaseURL      string        `env:"EVENTDASH_API_BASE_URL,default=http://localhost:8000"`
	APITimeout      time.Duration `env:"EVENTDASH_API_TIMEOUT,default=0s"`
	FeedURL         string        `env:"EVENTDASH_WS_URL"`
	FeedReadTimeout time.Duration `env:"EVENTDASH_WS_READ_TIMEOUT,default=0s"`

	ListenAddr   string `env:"EVENTDASH_LISTEN_ADDR,default=:8080"`
	CookieKey    string `env:"EVENTDASH_COOKIE_KEY"`
	CookieSecure bool   `env:"EVENTDASH_COOKIE_SECURE,default=false"`
	StateFile    string `env:"EVENTDASH_STATE_FILE,default=eventdash-state.yaml"`
	ExportDir    string `env:"EVENTDASH_EXPORT_DIR,default=."`

	// SessionIdle is how long an unused web session keeps its workspace.
	SessionIdle time.Duration `env:"EVENTDASH_SESSION_IDLE,default=30m"`

	// Database settings are optional; without DB_HOST preferences and
	// subscribers live in the state file and audit entries only in the log.
	DBHost            string        `env:"DB_HOST"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME,default=eventdash"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`

	LogLevel string `env:"EVENTDASH_LOG_LEVEL,default=info"`
	LogFile  string `env:"EVENTDASH_LOG_FILE"`
}

var (
	ErrMissingBotToken = errors.New("TELEGRAM_BOT_TOKEN is required for the bot")
	ErrMissingBaseURL  = errors.New("EVENTDASH_API_BASE_URL is required")
)

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	return cfg, nil
}

// LoadFrom reads configuration from an explicit lookuper instead of the
// process environment.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	return cfg, nil
}

func (c Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrMissingBaseURL
	}
	return nil
}

// ValidateBot checks the settings the chat bot needs on top of Validate.
func (c Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TelegramBotToken == "" {
		return ErrMissingBotToken
	}
	return nil
}
