package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"magicsplitgpt/internal/browser"
	"magicsplitgpt/internal/config"
)

// Naver Finance selectors. The quote page markup has been stable for
// years; the chart page uses cq-* custom elements.
const (
	selStockName      = ".wrap_company h2 a"
	selCurrentPrice   = ".today .no_today .blind"
	selChangeBlock    = ".today .no_exday"
	selCompanySummary = "#summary_info"
	selMarketCap      = "#_market_sum"
)

// Collector runs the Naver Finance collection pipeline.
type Collector struct {
	cfg *config.Config
	mgr *browser.Manager
	log *zap.Logger
}

// New creates a Collector sharing the given browser manager.
func New(cfg *config.Config, mgr *browser.Manager, log *zap.Logger) *Collector {
	return &Collector{cfg: cfg, mgr: mgr, log: log.Named("collector")}
}

// Collect gathers the full snapshot for one ticker. Page sections that
// fail to resolve degrade to partial data; only navigation-level
// failures on the quote page abort the run.
func (c *Collector) Collect(ctx context.Context, code string) (*StockData, error) {
	if !config.ValidStockCode(code) {
		return nil, fmt.Errorf("invalid stock code %q: expected six digits", code)
	}

	data := &StockData{
		RunID:       uuid.NewString(),
		Code:        code,
		CollectedAt: time.Now(),
	}
	shotDir := filepath.Join(c.cfg.Screenshot.Dir,
		fmt.Sprintf("%s_%s", code, data.CollectedAt.Format("0601021504")))

	page, err := c.mgr.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := c.collectQuote(page, data); err != nil {
		return nil, err
	}
	c.pause(ctx)

	c.collectCompanyAnalysis(page, data, shotDir)
	c.pause(ctx)
	c.collectNews(page, data, shotDir)
	c.pause(ctx)
	c.collectInvestorTrends(page, data, shotDir)
	c.pause(ctx)
	c.collectCharts(page, data, shotDir)

	c.log.Info("collection complete",
		zap.String("code", data.Code),
		zap.String("name", data.Name),
		zap.Int("news", len(data.News)),
		zap.Int("investor_rows", len(data.InvestorTrends)),
		zap.Int("screenshots", len(data.Screenshots)))
	return data, nil
}

// collectQuote reads the basic quote block from the main item page.
func (c *Collector) collectQuote(page *rod.Page, data *StockData) error {
	timeout := c.cfg.NavigationTimeout()
	if err := browser.Navigate(page, c.cfg.StockURL(data.Code), timeout); err != nil {
		return fmt.Errorf("quote page: %w", err)
	}

	data.Name = browser.ElementText(page, selStockName, 5*time.Second)
	if data.Name == "" {
		return fmt.Errorf("stock %s not found on quote page", data.Code)
	}
	data.CurrentPrice = NormalizePrice(browser.ElementText(page, selCurrentPrice, 3*time.Second))

	// The change block reads "상승 1,200 +1.61%" (or 하락 for a drop).
	if chg := browser.ElementText(page, selChangeBlock, 3*time.Second); chg != "" {
		data.Change, data.ChangeRate = splitChange(chg)
	}
	data.MarketCap = NormalizePrice(browser.ElementText(page, selMarketCap, 3*time.Second))
	data.Volume = c.readVolume(page)
	data.CompanySummary = browser.ElementText(page, selCompanySummary, 3*time.Second)
	return nil
}

// readVolume pulls today's volume out of the quote info table.
func (c *Collector) readVolume(page *rod.Page) string {
	res, err := page.Evaluate(&rod.EvalOptions{
		JS: `() => {
			const el = document.querySelector('table.no_info tr:first-child td:first-child .blind');
			return el ? el.textContent.trim() : '';
		}`,
		ByValue: true,
	})
	if err != nil {
		return ""
	}
	return NormalizePrice(res.Value.String())
}

// collectCompanyAnalysis captures the coinfo page with the analysis
// iframe expanded to its full height.
func (c *Collector) collectCompanyAnalysis(page *rod.Page, data *StockData, shotDir string) {
	timeout := c.cfg.NavigationTimeout()
	if err := browser.Navigate(page, c.cfg.CompanyAnalysisURL(data.Code), timeout); err != nil {
		c.log.Warn("company analysis page skipped", zap.Error(err))
		return
	}

	// Stretch the iframe so the CDP capture includes the whole report.
	_, err := page.Evaluate(&rod.EvalOptions{
		JS: `() => {
			const frame = document.querySelector('iframe#coinfo_cp');
			if (!frame) return false;
			const h = frame.contentWindow.document.body.scrollHeight;
			frame.style.height = h + 'px';
			return true;
		}`,
		ByValue: true,
	})
	if err != nil {
		c.log.Debug("iframe resize failed", zap.Error(err))
	}

	shot, err := browser.FullPageScreenshot(page)
	if err != nil {
		c.log.Warn("company analysis capture failed", zap.Error(err))
		return
	}
	c.saveShot(data, shotDir, "company_analysis", shot)
}

// collectNews captures and parses the news and disclosures page.
func (c *Collector) collectNews(page *rod.Page, data *StockData, shotDir string) {
	timeout := c.cfg.NavigationTimeout()
	if err := browser.Navigate(page, c.cfg.NewsURL(data.Code), timeout); err != nil {
		c.log.Warn("news page skipped", zap.Error(err))
		return
	}

	if shot, err := browser.FullPageScreenshot(page); err == nil {
		c.saveShot(data, shotDir, "news", shot)
	}

	pageHTML, err := page.HTML()
	if err != nil {
		c.log.Warn("news html unavailable", zap.Error(err))
		return
	}
	items, err := ParseNewsTable(pageHTML, 10)
	if err != nil {
		c.log.Warn("news parse failed", zap.Error(err))
		return
	}
	data.News = items
}

// collectInvestorTrends captures and parses the frgn page.
func (c *Collector) collectInvestorTrends(page *rod.Page, data *StockData, shotDir string) {
	timeout := c.cfg.NavigationTimeout()
	if err := browser.Navigate(page, c.cfg.InvestorTrendURL(data.Code), timeout); err != nil {
		c.log.Warn("investor trend page skipped", zap.Error(err))
		return
	}

	if shot, err := browser.FullPageScreenshot(page); err == nil {
		c.saveShot(data, shotDir, "investor_trends", shot)
	}

	pageHTML, err := page.HTML()
	if err != nil {
		return
	}
	trends, err := ParseInvestorTable(pageHTML, 10)
	if err != nil {
		c.log.Warn("investor table parse failed", zap.Error(err))
		return
	}
	data.InvestorTrends = trends
}

func (c *Collector) saveShot(data *StockData, shotDir, label string, img []byte) {
	path := filepath.Join(shotDir, label+".png")
	if err := browser.SaveScreenshot(path, img); err != nil {
		c.log.Warn("screenshot not saved", zap.String("label", label), zap.Error(err))
		return
	}
	data.Screenshots = append(data.Screenshots, Screenshot{Label: label, Path: path})
}

// pause spaces requests out so Naver does not throttle the session.
func (c *Collector) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.cfg.RequestDelay()):
	}
}

// splitChange splits "상승 1,200 +1.61%" into amount and rate.
func splitChange(s string) (change, rate string) {
	for _, f := range strings.Fields(s) {
		switch {
		case strings.HasSuffix(f, "%"):
			rate = f
		case change == "" && strings.ContainsAny(f, "0123456789"):
			change = NormalizePrice(f)
		}
	}
	return change, rate
}
