package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BotToken != "test-token" {
		t.Errorf("Expected token from env, got %q", cfg.BotToken)
	}
	if cfg.DBPath != "./data/trivial.db" {
		t.Errorf("Unexpected default DB path: %q", cfg.DBPath)
	}
	if cfg.HealthPort != "8080" {
		t.Errorf("Unexpected default health port: %q", cfg.HealthPort)
	}
	if cfg.PollTimeout != 60 {
		t.Errorf("Unexpected default poll timeout: %d", cfg.PollTimeout)
	}
	if cfg.Debug {
		t.Error("Expected debug off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test-token")
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("HEALTH_PORT", "9090")
	t.Setenv("POLL_TIMEOUT", "30")
	t.Setenv("BOT_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != "/tmp/other.db" || cfg.HealthPort != "9090" || cfg.PollTimeout != 30 || !cfg.Debug {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when BOT_TOKEN is empty")
	}
}

func TestValidate(t *testing.T) {
	base := Config{BotToken: "t", DBPath: "db", HealthPort: "8080", PollTimeout: 60}

	if err := base.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty token", func(c *Config) { c.BotToken = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"empty health port", func(c *Config) { c.HealthPort = "" }},
		{"zero poll timeout", func(c *Config) { c.PollTimeout = 0 }},
	}
	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestGetEnvBool(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"garbage", false},
	}

	for _, tc := range cases {
		t.Setenv("TEST_BOOL", tc.value)
		if got := getEnvBool("TEST_BOOL", false); got != tc.want {
			t.Errorf("getEnvBool(%q) = %v, expected %v", tc.value, got, tc.want)
		}
	}
}
