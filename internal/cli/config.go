package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIBase     string        `env:"LEDGER_API_BASE"     envDefault:"http://localhost:8000/api/v1"` // API root including version prefix
	StateDir    string        `env:"LEDGER_STATE_DIR"`                                              // Optional: token db and key live here (default: $HOME/.ledger)
	KeyFile     string        `env:"LEDGER_KEY_FILE"`                                               // Optional: key material for sealing tokens (default: <state dir>/key)
	AccessTTL   time.Duration `env:"LEDGER_ACCESS_TTL"   envDefault:"15m"`
	RefreshTTL  time.Duration `env:"LEDGER_REFRESH_TTL"  envDefault:"168h"`
	HTTPTimeout time.Duration `env:"LEDGER_HTTP_TIMEOUT" envDefault:"10s"`
	RateLimit   float64       `env:"LEDGER_RATE_LIMIT"   envDefault:"0"` // requests per second, 0 disables

	Env       string `env:"ENV"        envDefault:"prod"` // Environment (dev, staging, prod)
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // json or text
}

// LoadConfig reads a .env file from the working directory if there is one,
// then parses the environment. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// resolve fills path defaults and checks the values flags may have changed.
func (c *Config) resolve() error {
	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base %q: want an http(s) URL", c.APIBase)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit %v", c.RateLimit)
	}

	if c.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		c.StateDir = filepath.Join(home, ".ledger")
	}
	if c.KeyFile == "" {
		c.KeyFile = filepath.Join(c.StateDir, "key")
	}
	return nil
}

// DatabasePath is where the sealed tokens are stored.
func (c Config) DatabasePath() string {
	return filepath.Join(c.StateDir, "tokens.db")
}
