package collector

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"magicsplitgpt/internal/browser"
)

// The fchart page is a web component app; periods and studies are
// driven through its cq-* custom elements.
const (
	selChartRoot = "cq-context"
	selStudyMenu = "cq-menu.ciq-menu.ciq-studies"
)

// chartPeriods in capture order. The label doubles as the screenshot
// file name.
var chartPeriods = []struct {
	label    string
	selector string
}{
	{"chart_monthly", `cq-item[stxtap*="month"]`},
	{"chart_weekly", `cq-item[stxtap*="week"]`},
	{"chart_daily", `cq-item[stxtap*="day"]`},
	{"chart_60min", `cq-item[stxtap*="60"]`},
}

// studies installed once per profile; the persistent user-data-dir
// keeps them across runs.
var chartStudies = []string{"MACD", "RSI", "Stochastics"}

// collectCharts captures the advanced chart in four timeframes with
// the technical studies installed.
func (c *Collector) collectCharts(page *rod.Page, data *StockData, shotDir string) {
	timeout := c.cfg.NavigationTimeout()
	if err := browser.Navigate(page, c.cfg.ChartURL(data.Code), timeout); err != nil {
		c.log.Warn("chart page skipped", zap.Error(err))
		return
	}
	if _, err := page.Timeout(10 * time.Second).Element(selChartRoot); err != nil {
		c.log.Warn("chart app did not render", zap.Error(err))
		return
	}

	c.ensureStudies(page)

	for _, period := range chartPeriods {
		if err := browser.Click(page, period.selector, 5*time.Second); err != nil {
			c.log.Warn("chart period unavailable",
				zap.String("period", period.label), zap.Error(err))
			continue
		}
		// Candles redraw after the period switch.
		_ = page.WaitStable(800 * time.Millisecond)

		shot, err := browser.ElementScreenshot(page, selChartRoot, 5*time.Second)
		if err != nil {
			c.log.Debug("element capture failed, falling back to full page",
				zap.String("period", period.label), zap.Error(err))
			shot, err = browser.FullPageScreenshot(page)
			if err != nil {
				c.log.Warn("chart capture failed",
					zap.String("period", period.label), zap.Error(err))
				continue
			}
		}
		c.saveShot(data, shotDir, period.label, shot)
	}
}

// ensureStudies installs MACD, RSI, and Stochastics when the chart
// shows none. Already-installed studies are left alone.
func (c *Collector) ensureStudies(page *rod.Page) {
	res, err := page.Evaluate(&rod.EvalOptions{
		JS: `() => {
			const legend = document.querySelector('cq-study-legend');
			return legend ? legend.querySelectorAll('cq-item').length : 0;
		}`,
		ByValue: true,
	})
	if err == nil && res.Value.Int() > 0 {
		return
	}

	for _, study := range chartStudies {
		if err := browser.Click(page, selStudyMenu, 5*time.Second); err != nil {
			c.log.Debug("studies menu unavailable", zap.Error(err))
			return
		}
		el, err := page.Timeout(5*time.Second).ElementR("cq-item", study)
		if err != nil {
			c.log.Debug("study not listed", zap.String("study", study), zap.Error(err))
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			c.log.Debug("study install click failed", zap.String("study", study), zap.Error(err))
		}
		time.Sleep(500 * time.Millisecond)
	}
}
