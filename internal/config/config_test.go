package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("Load() with a missing explicit file succeeded: %+v", cfg)
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scraper.MaxDays != 5 {
		t.Errorf("Scraper.MaxDays = %d, want 5", cfg.Scraper.MaxDays)
	}
	if cfg.Scraper.LoadTimeout != 10*time.Second {
		t.Errorf("Scraper.LoadTimeout = %v, want 10s", cfg.Scraper.LoadTimeout)
	}
	if cfg.Schedule.SweepInterval != 200*time.Second {
		t.Errorf("Schedule.SweepInterval = %v, want 200s", cfg.Schedule.SweepInterval)
	}
	if cfg.Notify.Repeat != "always" {
		t.Errorf("Notify.Repeat = %q, want always", cfg.Notify.Repeat)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courtwatch.yaml")
	content := []byte(`
storage:
  driver: memory
scraper:
  max_days: 3
notify:
  enabled: true
  transport: console
  broadcast_to: ["-100123"]
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COURTWATCH_SCHEDULE_CHECK_INTERVAL", "90s")
	t.Setenv("COURTWATCH_TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Driver != "memory" || cfg.Scraper.MaxDays != 3 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Schedule.CheckInterval != 90*time.Second {
		t.Errorf("CheckInterval = %v, want 90s from env", cfg.Schedule.CheckInterval)
	}
	if len(cfg.Notify.BroadcastTo) != 1 || cfg.Notify.BroadcastTo[0] != "-100123" {
		t.Errorf("BroadcastTo = %v", cfg.Notify.BroadcastTo)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %q, want it from env", cfg.Telegram.Token)
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("COURTWATCH_STORAGE_DRIVER", "memory")
	t.Setenv("COURTWATCH_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("COURTWATCH_NOTIFY_BROADCAST_TO", "-100123,-100456")
	t.Setenv("COURTWATCH_SCRAPER_CHROME_PATH", "/usr/bin/chromium")
	t.Setenv("COURTWATCH_SCRAPER_SELECTORS_NEXT_DAY", ".next")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %q, want it from env", cfg.Telegram.Token)
	}
	if len(cfg.Notify.BroadcastTo) != 2 || cfg.Notify.BroadcastTo[0] != "-100123" {
		t.Errorf("Notify.BroadcastTo = %v, want two chats from env", cfg.Notify.BroadcastTo)
	}
	if cfg.Scraper.ChromePath != "/usr/bin/chromium" {
		t.Errorf("Scraper.ChromePath = %q", cfg.Scraper.ChromePath)
	}
	if cfg.Scraper.Selectors.NextDay != ".next" {
		t.Errorf("Scraper.Selectors.NextDay = %q", cfg.Scraper.Selectors.NextDay)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Timezone: "UTC",
			Server:   ServerConfig{Port: 3000},
			Storage:  StorageConfig{Driver: "memory"},
			Scraper:  ScraperConfig{BaseURL: "https://example.test", MaxDays: 5},
			Schedule: ScheduleConfig{CheckInterval: time.Minute, SweepInterval: time.Minute},
			Notify:   NotifyConfig{Repeat: "always", Transport: "console", BroadcastAfter: "17:00"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "postgres without url", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: true},
		{name: "bad repeat", mutate: func(c *Config) { c.Notify.Repeat = "sometimes" }, wantErr: true},
		{name: "bad transport", mutate: func(c *Config) { c.Notify.Transport = "smtp" }, wantErr: true},
		{name: "bad broadcast cutoff", mutate: func(c *Config) { c.Notify.BroadcastAfter = "5pm" }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
