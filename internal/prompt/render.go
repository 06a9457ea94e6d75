package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"magicsplitgpt/internal/collector"
	"magicsplitgpt/internal/config"
)

// maxNewsInPrompt caps the news titles included in the header.
const maxNewsInPrompt = 3

// Rendered is a composed prompt ready for delivery.
type Rendered struct {
	Text        string
	Attachments []string
}

// Render composes the final prompt: a stock header block, the latest
// news titles, then the template body with its placeholders filled.
// The snapshot's screenshots become the attachment list.
func Render(data *collector.StockData, template string, ms config.MagicSplitConfig) Rendered {
	var b strings.Builder

	b.WriteString("## 종목 정보\n")
	fmt.Fprintf(&b, "- 종목명: %s (%s)\n", data.Name, data.Code)
	if data.CurrentPrice != "" {
		fmt.Fprintf(&b, "- 현재가: %s원", data.CurrentPrice)
		if data.Change != "" || data.ChangeRate != "" {
			fmt.Fprintf(&b, " (%s %s)", data.Change, data.ChangeRate)
		}
		b.WriteString("\n")
	}
	if data.Volume != "" {
		fmt.Fprintf(&b, "- 거래량: %s\n", data.Volume)
	}
	if data.MarketCap != "" {
		fmt.Fprintf(&b, "- 시가총액: %s억원\n", data.MarketCap)
	}
	if data.CompanySummary != "" {
		fmt.Fprintf(&b, "- 기업개요: %s\n", data.CompanySummary)
	}

	if len(data.News) > 0 {
		b.WriteString("\n## 최근 뉴스\n")
		for i, n := range data.News {
			if i >= maxNewsInPrompt {
				break
			}
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, n.Title, n.Date)
		}
	}

	b.WriteString("\n")
	b.WriteString(fillPlaceholders(template, data, ms))

	return Rendered{
		Text:        b.String(),
		Attachments: data.ScreenshotPaths(),
	}
}

// fillPlaceholders substitutes the {placeholder} tokens templates may
// carry. Unknown tokens pass through untouched.
func fillPlaceholders(template string, data *collector.StockData, ms config.MagicSplitConfig) string {
	r := strings.NewReplacer(
		"{stock_name}", data.Name,
		"{stock_code}", data.Code,
		"{current_price}", data.CurrentPrice,
		"{first_buy_profit}", strconv.Itoa(ms.FirstBuyProfitPct),
		"{additional_buy_drop}", strconv.Itoa(ms.AdditionalBuyDropPct),
		"{additional_buy_profit}", strconv.Itoa(ms.AdditionalBuyProfitPct),
		"{max_buy_count}", strconv.Itoa(ms.MaxBuyCount),
	)
	return r.Replace(template)
}
