// Package collector gathers research data for one KRX ticker from
// Naver Finance: quote, company summary, news and disclosures,
// per-investor trading trends, and candle chart captures.
package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// NewsItem is one row from the news and disclosures table.
type NewsItem struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Date   string `json:"date"`
	URL    string `json:"url,omitempty"`
}

// InvestorTrend is one day of per-investor net trading volumes.
type InvestorTrend struct {
	Date          string `json:"date"`
	ClosePrice    string `json:"close_price"`
	Change        string `json:"change"`
	Institutional string `json:"institutional_net"`
	Foreign       string `json:"foreign_net"`
	ForeignRatio  string `json:"foreign_ratio"`
}

// Screenshot is one captured image belonging to a run.
type Screenshot struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// StockData is the full snapshot collected for one run.
type StockData struct {
	RunID          string          `json:"run_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	CurrentPrice   string          `json:"current_price"`
	Change         string          `json:"change"`
	ChangeRate     string          `json:"change_rate"`
	Volume         string          `json:"volume"`
	MarketCap      string          `json:"market_cap"`
	CompanySummary string          `json:"company_summary,omitempty"`
	News           []NewsItem      `json:"news,omitempty"`
	InvestorTrends []InvestorTrend `json:"investor_trends,omitempty"`
	Screenshots    []Screenshot    `json:"screenshots,omitempty"`
	CollectedAt    time.Time       `json:"collected_at"`
}

// ScreenshotPaths returns the capture file paths in collection order.
func (d *StockData) ScreenshotPaths() []string {
	paths := make([]string, 0, len(d.Screenshots))
	for _, s := range d.Screenshots {
		paths = append(paths, s.Path)
	}
	return paths
}

// SaveJSON writes the snapshot under dir as <code>_<timestamp>.json
// and returns the written path.
func (d *StockData) SaveJSON(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.json", d.Code, d.CollectedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal stock data: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
