package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Browser.ViewportWidth != 1920 || cfg.Browser.ViewportHeight != 1080 {
		t.Errorf("unexpected default viewport: %dx%d",
			cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
	}
	if cfg.Naver.BaseURL != "https://finance.naver.com" {
		t.Errorf("unexpected naver base url: %s", cfg.Naver.BaseURL)
	}
	if cfg.MagicSplit.FirstBuyProfitPct != 10 {
		t.Errorf("first_buy_profit = %d, want 10", cfg.MagicSplit.FirstBuyProfitPct)
	}
	if cfg.MagicSplit.MaxBuyCount != 20 {
		t.Errorf("max_buy_count = %d, want 20", cfg.MagicSplit.MaxBuyCount)
	}
	if len(cfg.Prompts.Strategies) != 5 {
		t.Errorf("expected 5 strategies, got %d", len(cfg.Prompts.Strategies))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if cfg.Naver.QuoteURL != DefaultConfig().Naver.QuoteURL {
		t.Errorf("missing file should fall back to defaults")
	}
}

func TestLoadPartialFileBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
browser:
  headless: true
magic_split:
  first_buy_profit: 12
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Browser.Headless {
		t.Error("headless override lost")
	}
	if cfg.MagicSplit.FirstBuyProfitPct != 12 {
		t.Errorf("first_buy_profit = %d, want 12", cfg.MagicSplit.FirstBuyProfitPct)
	}
	if cfg.MagicSplit.MaxBuyCount != 20 {
		t.Errorf("max_buy_count should backfill to 20, got %d", cfg.MagicSplit.MaxBuyCount)
	}
	if cfg.Browser.ViewportWidth != 1920 {
		t.Errorf("viewport width should backfill, got %d", cfg.Browser.ViewportWidth)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Browser.Headless = true
	cfg.GeminiAPI.Model = "gemini-2.5-pro"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Browser.Headless {
		t.Error("headless not round-tripped")
	}
	if loaded.GeminiAPI.Model != "gemini-2.5-pro" {
		t.Errorf("model = %s", loaded.GeminiAPI.Model)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MAGICSPLIT_GEMINI_API_KEY", "test-key")
	t.Setenv("MAGICSPLIT_HEADLESS", "true")
	t.Setenv("MAGICSPLIT_DISABLE_SERVICES", "claude, gemini")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GeminiAPI.APIKey != "test-key" || !cfg.GeminiAPI.Enabled {
		t.Error("gemini api key env override not applied")
	}
	if !cfg.Browser.Headless {
		t.Error("headless env override not applied")
	}
	if cfg.Services.Claude.Enabled || cfg.Services.Gemini.Enabled {
		t.Error("service disable env override not applied")
	}
	if !cfg.Services.ChatGPT.Enabled {
		t.Error("chatgpt should remain enabled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero viewport", func(c *Config) { c.Browser.ViewportWidth = 0 }},
		{"bad format", func(c *Config) { c.Screenshot.Format = "bmp" }},
		{"profit over 100", func(c *Config) { c.MagicSplit.FirstBuyProfitPct = 150 }},
		{"negative drop", func(c *Config) { c.MagicSplit.AdditionalBuyDropPct = -5 }},
		{"zero max buys", func(c *Config) { c.MagicSplit.MaxBuyCount = 0 }},
		{"api enabled without key", func(c *Config) { c.GeminiAPI.Enabled = true; c.GeminiAPI.APIKey = "" }},
		{"no strategies", func(c *Config) { c.Prompts.Strategies = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestValidStockCode(t *testing.T) {
	valid := []string{"005930", "000660", "035420"}
	invalid := []string{"", "5930", "0059301", "00593a", "APPLE"}

	for _, code := range valid {
		if !ValidStockCode(code) {
			t.Errorf("ValidStockCode(%q) = false, want true", code)
		}
	}
	for _, code := range invalid {
		if ValidStockCode(code) {
			t.Errorf("ValidStockCode(%q) = true, want false", code)
		}
	}
}

func TestStockURLs(t *testing.T) {
	cfg := DefaultConfig()
	code := "005930"

	if got := cfg.StockURL(code); got != "https://finance.naver.com/item/main.naver?code=005930" {
		t.Errorf("StockURL = %s", got)
	}
	if got := cfg.ChartURL(code); got != "https://finance.naver.com/item/fchart.naver?code=005930" {
		t.Errorf("ChartURL = %s", got)
	}
	if got := cfg.NewsURL(code); got != "https://finance.naver.com/item/news.naver?code=005930" {
		t.Errorf("NewsURL = %s", got)
	}
}
