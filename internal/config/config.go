// Package config loads server configuration from an optional YAML file
// with environment-variable overrides. Env always wins so deployments can
// keep secrets out of the file.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderRuleBased = "rulebased"
	ProviderOpenAI    = "openai"
)

// Duration decodes YAML strings like "30m" or "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	World     World     `yaml:"world"`
	Cognition Cognition `yaml:"cognition"`
	Cache     Cache     `yaml:"cache"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Database struct {
	// DSN is usually supplied via DRIFTWORLD_DB_DSN rather than the file.
	DSN           string `yaml:"dsn"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type World struct {
	TickStep      Duration `yaml:"tick_step"`
	ReminderLeads []int64  `yaml:"reminder_leads"`
	CatchUpCap    int64    `yaml:"catch_up_cap"`
}

type Cognition struct {
	Provider string   `yaml:"provider"`
	Model    string   `yaml:"model"`
	BaseURL  string   `yaml:"base_url"`
	Timeout  Duration `yaml:"timeout"`
	// APIKey comes from DRIFTWORLD_OPENAI_API_KEY only; never the file.
	APIKey string `yaml:"-"`
}

type Cache struct {
	Enabled bool `yaml:"enabled"`
}

func Default() Config {
	return Config{
		Server:   Server{Addr: ":8080"},
		Database: Database{MigrationsDir: "./migrations"},
		World: World{
			TickStep:      Duration(time.Hour),
			ReminderLeads: []int64{24, 2},
			CatchUpCap:    336,
		},
		Cognition: Cognition{
			Provider: ProviderRuleBased,
			Model:    "gpt-4o-mini",
			Timeout:  Duration(10 * time.Second),
		},
		Cache: Cache{Enabled: true},
	}
}

// Load reads path if it exists, then applies env overrides. A missing file
// is not an error; env alone is a valid configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			cfg, err = decode(f, cfg)
			if err != nil {
				return Config{}, fmt.Errorf("config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFromReader(r io.Reader) (Config, error) {
	cfg, err := decode(r, Default())
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, base Config) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	cfg := base
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return base, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DRIFTWORLD_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("DRIFTWORLD_DB_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("DRIFTWORLD_COGNITION_PROVIDER")); v != "" {
		cfg.Cognition.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("DRIFTWORLD_COGNITION_MODEL")); v != "" {
		cfg.Cognition.Model = v
	}
	cfg.Cognition.APIKey = strings.TrimSpace(os.Getenv("DRIFTWORLD_OPENAI_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("DRIFTWORLD_CATCH_UP_CAP")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.World.CatchUpCap = n
		}
	}
}

func (c Config) validate() error {
	switch c.Cognition.Provider {
	case ProviderRuleBased:
	case ProviderOpenAI:
		if c.Cognition.APIKey == "" {
			return fmt.Errorf("cognition provider %q requires DRIFTWORLD_OPENAI_API_KEY", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("unknown cognition provider %q", c.Cognition.Provider)
	}
	if c.World.TickStep <= 0 {
		return fmt.Errorf("tick_step must be positive, got %s", c.World.TickStep.Std())
	}
	if c.World.CatchUpCap <= 0 {
		return fmt.Errorf("catch_up_cap must be positive, got %d", c.World.CatchUpCap)
	}
	return nil
}
