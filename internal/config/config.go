// Package config holds the magicsplitgpt configuration: browser and
// Naver Finance settings, AI service endpoints, magic-split strategy
// parameters, prompt template locations, and storage paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all magicsplitgpt configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Browser    BrowserConfig    `yaml:"browser"`
	Naver      NaverConfig      `yaml:"naver"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Services   ServicesConfig   `yaml:"services"`
	GeminiAPI  GeminiAPIConfig  `yaml:"gemini_api"`
	MagicSplit MagicSplitConfig `yaml:"magic_split"`
	Prompts    PromptsConfig    `yaml:"prompts"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BrowserConfig configures the Chrome instance.
type BrowserConfig struct {
	Bin                 string `yaml:"bin"`
	Headless            bool   `yaml:"headless"`
	ViewportWidth       int    `yaml:"viewport_width"`
	ViewportHeight      int    `yaml:"viewport_height"`
	UserAgent           string `yaml:"user_agent"`
	ProfileDir          string `yaml:"profile_dir"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms"`
	DebuggerURL         string `yaml:"debugger_url"`
}

// NaverConfig configures the Naver Finance endpoints.
type NaverConfig struct {
	BaseURL        string `yaml:"base_url"`
	QuoteURL       string `yaml:"quote_url"`
	RequestDelayMs int    `yaml:"request_delay_ms"`
}

// ScreenshotConfig configures chart capture output.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or jpeg
}

// ServiceConfig configures one AI chat service web endpoint.
type ServiceConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// ServicesConfig configures the AI chat services used for delivery.
type ServicesConfig struct {
	ChatGPT ServiceConfig `yaml:"chatgpt"`
	Claude  ServiceConfig `yaml:"claude"`
	Gemini  ServiceConfig `yaml:"gemini"`
}

// GeminiAPIConfig configures the direct Gemini API path.
type GeminiAPIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Enabled bool   `yaml:"enabled"`
}

// MagicSplitConfig holds the magic-split strategy parameters that are
// injected into analysis prompts.
type MagicSplitConfig struct {
	FirstBuyProfitPct      int `yaml:"first_buy_profit"`
	AdditionalBuyDropPct   int `yaml:"additional_buy_drop"`
	AdditionalBuyProfitPct int `yaml:"additional_buy_profit"`
	MaxBuyCount            int `yaml:"max_buy_count"`
}

// PromptsConfig configures strategy prompt templates.
type PromptsConfig struct {
	TemplateDir string   `yaml:"template_dir"`
	Strategies  []string `yaml:"strategies"`
	Watch       bool     `yaml:"watch"`
}

// StorageConfig configures local persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	DataDir      string `yaml:"data_dir"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "magicsplitgpt",
		Version: "1.0.0",
		Browser: BrowserConfig{
			Headless:            false,
			ViewportWidth:       1920,
			ViewportHeight:      1080,
			UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			NavigationTimeoutMs: 30000,
		},
		Naver: NaverConfig{
			BaseURL:        "https://finance.naver.com",
			QuoteURL:       "https://finance.naver.com/item/main.naver",
			RequestDelayMs: 2000,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Format: "png",
		},
		Services: ServicesConfig{
			ChatGPT: ServiceConfig{URL: "https://chat.openai.com", Enabled: true},
			Claude:  ServiceConfig{URL: "https://claude.ai", Enabled: true},
			Gemini:  ServiceConfig{URL: "https://gemini.google.com", Enabled: true},
		},
		GeminiAPI: GeminiAPIConfig{
			Model:   "gemini-2.0-flash",
			Enabled: false,
		},
		MagicSplit: MagicSplitConfig{
			FirstBuyProfitPct:      10,
			AdditionalBuyDropPct:   15,
			AdditionalBuyProfitPct: 15,
			MaxBuyCount:            20,
		},
		Prompts: PromptsConfig{
			TemplateDir: "prompts/templates",
			Strategies: []string{
				"magic_split_optimization",
				"short_term_discovery",
				"buy_timing_diagnosis",
				"hold_or_cut_decision",
				"valuation_analysis",
			},
		},
		Storage: StorageConfig{
			DatabasePath: "data/magicsplit.db",
			DataDir:      "data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "logs/magicsplit.log",
		},
	}
}

// Load reads a config file, layers it over the defaults, and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to disk as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// fillDefaults backfills zero values left by a partial config file.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Browser.ViewportWidth == 0 {
		c.Browser.ViewportWidth = def.Browser.ViewportWidth
	}
	if c.Browser.ViewportHeight == 0 {
		c.Browser.ViewportHeight = def.Browser.ViewportHeight
	}
	if c.Browser.NavigationTimeoutMs == 0 {
		c.Browser.NavigationTimeoutMs = def.Browser.NavigationTimeoutMs
	}
	if c.Browser.UserAgent == "" {
		c.Browser.UserAgent = def.Browser.UserAgent
	}
	if c.Naver.BaseURL == "" {
		c.Naver.BaseURL = def.Naver.BaseURL
	}
	if c.Naver.QuoteURL == "" {
		c.Naver.QuoteURL = def.Naver.QuoteURL
	}
	if c.Naver.RequestDelayMs == 0 {
		c.Naver.RequestDelayMs = def.Naver.RequestDelayMs
	}
	if c.Screenshot.Dir == "" {
		c.Screenshot.Dir = def.Screenshot.Dir
	}
	if c.Screenshot.Format == "" {
		c.Screenshot.Format = def.Screenshot.Format
	}
	if c.GeminiAPI.Model == "" {
		c.GeminiAPI.Model = def.GeminiAPI.Model
	}
	if c.MagicSplit.FirstBuyProfitPct == 0 {
		c.MagicSplit.FirstBuyProfitPct = def.MagicSplit.FirstBuyProfitPct
	}
	if c.MagicSplit.AdditionalBuyDropPct == 0 {
		c.MagicSplit.AdditionalBuyDropPct = def.MagicSplit.AdditionalBuyDropPct
	}
	if c.MagicSplit.AdditionalBuyProfitPct == 0 {
		c.MagicSplit.AdditionalBuyProfitPct = def.MagicSplit.AdditionalBuyProfitPct
	}
	if c.MagicSplit.MaxBuyCount == 0 {
		c.MagicSplit.MaxBuyCount = def.MagicSplit.MaxBuyCount
	}
	if c.Prompts.TemplateDir == "" {
		c.Prompts.TemplateDir = def.Prompts.TemplateDir
	}
	if len(c.Prompts.Strategies) == 0 {
		c.Prompts.Strategies = def.Prompts.Strategies
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = def.Storage.DatabasePath
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = def.Storage.DataDir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
}

// applyEnvOverrides layers environment variables over the file config.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("MAGICSPLIT_GEMINI_API_KEY"); key != "" {
		c.GeminiAPI.APIKey = key
		c.GeminiAPI.Enabled = true
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.GeminiAPI.APIKey = key
		c.GeminiAPI.Enabled = true
	}
	if v := os.Getenv("MAGICSPLIT_HEADLESS"); v == "1" || strings.EqualFold(v, "true") {
		c.Browser.Headless = true
	}
	if v := os.Getenv("MAGICSPLIT_CHROME_BIN"); v != "" {
		c.Browser.Bin = v
	}
	if v := os.Getenv("MAGICSPLIT_PROFILE_DIR"); v != "" {
		c.Browser.ProfileDir = v
	}
	if v := os.Getenv("MAGICSPLIT_DISABLE_SERVICES"); v != "" {
		for _, name := range strings.Split(v, ",") {
			switch strings.ToLower(strings.TrimSpace(name)) {
			case "chatgpt":
				c.Services.ChatGPT.Enabled = false
			case "claude":
				c.Services.Claude.Enabled = false
			case "gemini":
				c.Services.Gemini.Enabled = false
			}
		}
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d",
			c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	switch c.Screenshot.Format {
	case "png", "jpeg":
	default:
		return fmt.Errorf("screenshot format must be png or jpeg, got %q", c.Screenshot.Format)
	}
	for name, pct := range map[string]int{
		"first_buy_profit":      c.MagicSplit.FirstBuyProfitPct,
		"additional_buy_drop":   c.MagicSplit.AdditionalBuyDropPct,
		"additional_buy_profit": c.MagicSplit.AdditionalBuyProfitPct,
	} {
		if pct <= 0 || pct > 100 {
			return fmt.Errorf("magic_split.%s must be in (0,100], got %d", name, pct)
		}
	}
	if c.MagicSplit.MaxBuyCount <= 0 {
		return fmt.Errorf("magic_split.max_buy_count must be positive, got %d", c.MagicSplit.MaxBuyCount)
	}
	if c.GeminiAPI.Enabled && c.GeminiAPI.APIKey == "" {
		return fmt.Errorf("gemini_api enabled but no api key configured")
	}
	if len(c.Prompts.Strategies) == 0 {
		return fmt.Errorf("at least one prompt strategy is required")
	}
	return nil
}

// EnsureDirs creates the directories the pipeline writes into.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.Screenshot.Dir,
		c.Storage.DataDir,
		filepath.Dir(c.Storage.DatabasePath),
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

// NavigationTimeout returns the page navigation timeout.
func (c *Config) NavigationTimeout() time.Duration {
	if c.Browser.NavigationTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Browser.NavigationTimeoutMs) * time.Millisecond
}

// RequestDelay returns the pause between Naver page loads.
func (c *Config) RequestDelay() time.Duration {
	if c.Naver.RequestDelayMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Naver.RequestDelayMs) * time.Millisecond
}

var stockCodeRe = regexp.MustCompile(`^\d{6}$`)

// ValidStockCode reports whether code is a six-digit KRX ticker.
func ValidStockCode(code string) bool {
	return stockCodeRe.MatchString(code)
}

// StockURL returns the main quote page for a ticker.
func (c *Config) StockURL(code string) string {
	return fmt.Sprintf("%s?code=%s", c.Naver.QuoteURL, code)
}

// CompanyAnalysisURL returns the company analysis (coinfo) page.
func (c *Config) CompanyAnalysisURL(code string) string {
	return fmt.Sprintf("%s/item/coinfo.naver?code=%s", c.Naver.BaseURL, code)
}

// NewsURL returns the news and disclosures page.
func (c *Config) NewsURL(code string) string {
	return fmt.Sprintf("%s/item/news.naver?code=%s", c.Naver.BaseURL, code)
}

// InvestorTrendURL returns the per-investor trading trend page.
func (c *Config) InvestorTrendURL(code string) string {
	return fmt.Sprintf("%s/item/frgn.naver?code=%s", c.Naver.BaseURL, code)
}

// ChartURL returns the full-feature chart page.
func (c *Config) ChartURL(code string) string {
	return fmt.Sprintf("%s/item/fchart.naver?code=%s", c.Naver.BaseURL, code)
}
