package prompt

import (
	"strings"
	"testing"
	"time"

	"magicsplitgpt/internal/collector"
	"magicsplitgpt/internal/config"
)

func sampleData() *collector.StockData {
	return &collector.StockData{
		RunID:        "run-1",
		Code:         "005930",
		Name:         "삼성전자",
		CurrentPrice: "75300",
		Change:       "1200",
		ChangeRate:   "+1.61%",
		Volume:       "12345678",
		News: []collector.NewsItem{
			{Title: "뉴스 1", Date: "2026.08.25"},
			{Title: "뉴스 2", Date: "2026.08.24"},
			{Title: "뉴스 3", Date: "2026.08.23"},
			{Title: "뉴스 4", Date: "2026.08.22"},
		},
		Screenshots: []collector.Screenshot{
			{Label: "chart_daily", Path: "shots/chart_daily.png"},
		},
		CollectedAt: time.Now(),
	}
}

func TestRenderComposesHeaderNewsAndTemplate(t *testing.T) {
	ms := config.DefaultConfig().MagicSplit
	out := Render(sampleData(), "매직스플릿 주식 분석을 시작합니다.", ms)

	if !strings.Contains(out.Text, "삼성전자 (005930)") {
		t.Error("header missing stock name")
	}
	if !strings.Contains(out.Text, "75300원") {
		t.Error("header missing price")
	}
	if !strings.Contains(out.Text, "뉴스 3") {
		t.Error("third news title missing")
	}
	if strings.Contains(out.Text, "뉴스 4") {
		t.Error("more than three news titles included")
	}
	if !strings.HasSuffix(strings.TrimSpace(out.Text), "매직스플릿 주식 분석을 시작합니다.") {
		t.Error("template body should come last")
	}
	if len(out.Attachments) != 1 || out.Attachments[0] != "shots/chart_daily.png" {
		t.Errorf("attachments = %v", out.Attachments)
	}
}

func TestRenderFillsPlaceholders(t *testing.T) {
	ms := config.MagicSplitConfig{
		FirstBuyProfitPct:      10,
		AdditionalBuyDropPct:   15,
		AdditionalBuyProfitPct: 15,
		MaxBuyCount:            20,
	}
	tpl := "{stock_name} 매직스플릿: 1차 익절 {first_buy_profit}%, 추가매수 하락 {additional_buy_drop}%, 최대 {max_buy_count}차"
	out := Render(sampleData(), tpl, ms)

	for _, want := range []string{"삼성전자 매직스플릿", "익절 10%", "하락 15%", "최대 20차"} {
		if !strings.Contains(out.Text, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
	if strings.Contains(out.Text, "{first_buy_profit}") {
		t.Error("placeholder left unfilled")
	}
}

func TestRenderSkipsEmptySections(t *testing.T) {
	data := &collector.StockData{Code: "000660", Name: "SK하이닉스", CollectedAt: time.Now()}
	out := Render(data, "매직스플릿 주식 분석", config.DefaultConfig().MagicSplit)

	if strings.Contains(out.Text, "최근 뉴스") {
		t.Error("news section rendered without news")
	}
	if strings.Contains(out.Text, "현재가") {
		t.Error("price line rendered without a price")
	}
}
