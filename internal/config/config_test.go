package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromReader_OverridesDefaults(t *testing.T) {
	in := `
server:
  addr: ":9090"
world:
  tick_step: 30m
  reminder_leads: [12, 1]
cognition:
  provider: rulebased
  timeout: 3s
cache:
  enabled: false
`
	cfg, err := LoadFromReader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr: got %q", cfg.Server.Addr)
	}
	if cfg.World.TickStep.Std() != 30*time.Minute {
		t.Fatalf("tick step: got %s", cfg.World.TickStep.Std())
	}
	if len(cfg.World.ReminderLeads) != 2 || cfg.World.ReminderLeads[0] != 12 {
		t.Fatalf("reminder leads: got %v", cfg.World.ReminderLeads)
	}
	if cfg.Cognition.Timeout.Std() != 3*time.Second {
		t.Fatalf("timeout: got %s", cfg.Cognition.Timeout.Std())
	}
	if cfg.Cache.Enabled {
		t.Fatal("cache should be disabled")
	}
}

func TestLoadFromReader_EmptyKeepsDefaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Server.Addr != def.Server.Addr || cfg.World.TickStep != def.World.TickStep {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadFromReader_RejectsUnknownProvider(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("cognition:\n  provider: oracle\n"))
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadFromReader_RejectsUnknownField(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("sever:\n  addr: \":1\"\n"))
	if err == nil {
		t.Fatal("expected error for misspelled field")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("DRIFTWORLD_ADDR", ":7070")
	t.Setenv("DRIFTWORLD_DB_DSN", "postgres://env")
	cfg, err := LoadFromReader(strings.NewReader("server:\n  addr: \":9090\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env should win: got %q", cfg.Server.Addr)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("dsn: got %q", cfg.Database.DSN)
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	t.Setenv("DRIFTWORLD_OPENAI_API_KEY", "")
	_, err := LoadFromReader(strings.NewReader("cognition:\n  provider: openai\n"))
	if err == nil {
		t.Fatal("expected error without api key")
	}

	t.Setenv("DRIFTWORLD_OPENAI_API_KEY", "sk-test")
	cfg, err := LoadFromReader(strings.NewReader("cognition:\n  provider: openai\n"))
	if err != nil {
		t.Fatalf("load with key: %v", err)
	}
	if cfg.Cognition.APIKey != "sk-test" {
		t.Fatalf("api key not applied")
	}
}
