package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPollInterval = time.Hour
	defaultStatePath    = "domainsync.db"
	defaultServerAddr   = ":3000"
	defaultMetricsAddr  = ":9090"
	defaultLogLevel     = "info"
	defaultLogEnv       = "prod"
)

type Config struct {
	PollInterval time.Duration `yaml:"pollInterval"`
	StatePath    string        `yaml:"statePath"`
	Log          Log           `yaml:"log"`
	Server       Server        `yaml:"server"`
	Metrics      Metrics       `yaml:"metrics"`
	Porkbun      Porkbun       `yaml:"porkbun"`
	Cloudflare   Cloudflare    `yaml:"cloudflare"`
	Ntfy         Ntfy          `yaml:"ntfy"`
	Telegram     Telegram      `yaml:"telegram"`
}

type Log struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Metrics struct {
	Addr    string `yaml:"addr"`
	Enabled bool   `yaml:"enabled"`
}

type Porkbun struct {
	APIKey    string  `yaml:"apiKey"`
	SecretKey string  `yaml:"secretKey"`
	Pricing   Pricing `yaml:"pricing"`
}

type Pricing struct {
	Enabled bool `yaml:"enabled"`
}

type Cloudflare struct {
	APIToken string `yaml:"apiToken"`
}

type Ntfy struct {
	URL      string `yaml:"url"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Telegram struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chatId"`
}

// Configured reports whether the porkbun provider has credentials.
func (p Porkbun) Configured() bool {
	return p.APIKey != "" && p.SecretKey != ""
}

// Configured reports whether the cloudflare provider has credentials.
func (c Cloudflare) Configured() bool {
	return c.APIToken != ""
}

// Configured reports whether a ntfy transport is set up.
func (n Ntfy) Configured() bool {
	return n.URL != "" && n.Topic != ""
}

// Configured reports whether a telegram transport is set up.
func (t Telegram) Configured() bool {
	return t.Token != "" && t.ChatID != 0
}

func Load(path string) (*Config, error) {
	configFile := true
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Default().Warn("fail find config file, proceeding", "path", path)
		configFile = false
	}

	var cfg Config
	if configFile {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
		if err := f.Close(); err != nil {
			slog.Default().Warn("fail close config file", "path", path, "error", err)
		}
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.StatePath == "" {
		cfg.StatePath = defaultStatePath
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaultMetricsAddr
	}

	// Set log defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Env == "" {
		cfg.Log.Env = defaultLogEnv
	}

	// Override from environment if set
	if interval := os.Getenv("DOMAIN_SYNC_POLL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.PollInterval = d
		} else {
			slog.Default().Warn("fail parse poll interval to duration from string", "interval", interval, "error", err)
		}
	}
	if statePath := os.Getenv("DOMAIN_SYNC_STATE_PATH"); statePath != "" {
		cfg.StatePath = statePath
	}
	if addr := os.Getenv("DOMAIN_SYNC_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if apiKey := os.Getenv("PORKBUN_API_KEY"); apiKey != "" {
		cfg.Porkbun.APIKey = apiKey
	}
	if secretKey := os.Getenv("PORKBUN_SECRET_KEY"); secretKey != "" {
		cfg.Porkbun.SecretKey = secretKey
	}
	if token := os.Getenv("CLOUDFLARE_API_TOKEN"); token != "" {
		cfg.Cloudflare.APIToken = token
	}
	if url := os.Getenv("NTFY_URL"); url != "" {
		cfg.Ntfy.URL = url
	}
	if topic := os.Getenv("NTFY_TOPIC"); topic != "" {
		cfg.Ntfy.Topic = topic
	}
	if username := os.Getenv("NTFY_USERNAME"); username != "" {
		cfg.Ntfy.Username = username
	}
	if password := os.Getenv("NTFY_PASSWORD"); password != "" {
		cfg.Ntfy.Password = password
	}
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		} else {
			slog.Default().Warn("fail parse telegram chat id to int from string", "chatId", chatID, "error", err)
		}
	}
	if loglevel := os.Getenv("DOMAIN_SYNC_LOG_LEVEL"); loglevel != "" {
		cfg.Log.Level = loglevel
	}
	if logenv := os.Getenv("DOMAIN_SYNC_LOG_ENV"); logenv != "" {
		cfg.Log.Env = logenv
	}
	return &cfg, nil
}
