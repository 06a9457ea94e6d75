package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsFixture = `
<html><body>
<table class="type5" summary="종목뉴스">
 <tr><th>제목</th><th>정보제공</th><th>날짜</th></tr>
 <tr>
  <td class="title"><a href="/item/news_read.naver?article_id=1">삼성전자, 신형 반도체 공개</a></td>
  <td class="info">연합뉴스</td>
  <td class="date">2026.08.25 09:10</td>
 </tr>
 <tr class="relation_lst">
  <td class="title"><a href="/item/news_read.naver?article_id=2">외국인 순매수 지속</a></td>
  <td class="info">한국경제</td>
  <td class="date">2026.08.24 15:40</td>
 </tr>
 <tr><td colspan="3" class="pgRR"><a href="?page=2">다음</a></td></tr>
</table>
</body></html>`

func TestParseNewsTable(t *testing.T) {
	items, err := ParseNewsTable(newsFixture, 0)
	if err != nil {
		t.Fatalf("ParseNewsTable: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "삼성전자, 신형 반도체 공개" {
		t.Errorf("title = %q", items[0].Title)
	}
	if items[0].Source != "연합뉴스" {
		t.Errorf("source = %q", items[0].Source)
	}
	if items[0].Date != "2026.08.25 09:10" {
		t.Errorf("date = %q", items[0].Date)
	}
	if items[0].URL == "" {
		t.Error("url missing")
	}
}

func TestParseNewsTableLimit(t *testing.T) {
	items, err := ParseNewsTable(newsFixture, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Errorf("limit 1 returned %d items", len(items))
	}
}

func TestParseNewsTableMissingTable(t *testing.T) {
	items, err := ParseNewsTable("<html><body><p>점검중</p></body></html>", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

const investorFixture = `
<html><body>
<table class="type2">
 <tr><th>날짜</th><th>종가</th><th>전일비</th><th>등락률</th><th>거래량</th>
     <th>기관</th><th>외국인</th><th>보유주수</th><th>보유율</th></tr>
 <tr>
  <td>26.08.25</td><td>75,300</td><td>상승 1,200</td><td>+1.62%</td>
  <td>12,345,678</td><td>-120,000</td><td>+340,000</td><td>3,100,000,000</td><td>51.90%</td>
 </tr>
 <tr><td colspan="9" class="blank"></td></tr>
 <tr>
  <td>26.08.24</td><td>74,100</td><td>하락 500</td><td>-0.67%</td>
  <td>9,876,543</td><td>+80,000</td><td>-210,000</td><td>3,099,660,000</td><td>51.88%</td>
 </tr>
</table>
</body></html>`

func TestParseInvestorTable(t *testing.T) {
	trends, err := ParseInvestorTable(investorFixture, 0)
	require.NoError(t, err)
	require.Len(t, trends, 2)

	assert.Equal(t, InvestorTrend{
		Date:          "26.08.25",
		ClosePrice:    "75300",
		Change:        "상승 1,200",
		Institutional: "-120000",
		Foreign:       "+340000",
		ForeignRatio:  "51.90%",
	}, trends[0])
	assert.Equal(t, "26.08.24", trends[1].Date)
	assert.Equal(t, "74100", trends[1].ClosePrice)
}

func TestNormalizePrice(t *testing.T) {
	cases := map[string]string{
		" 75,300 ":  "75300",
		"1,234,567": "1234567",
		"":          "",
		"75300":     "75300",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePrice(in), "input %q", in)
	}
}

func TestSplitChange(t *testing.T) {
	change, rate := splitChange("상승 1,200 +1.61%")
	if change != "1200" {
		t.Errorf("change = %q", change)
	}
	if rate != "+1.61%" {
		t.Errorf("rate = %q", rate)
	}

	change, rate = splitChange("하락 500 -0.67%")
	if change != "500" {
		t.Errorf("change = %q", change)
	}
	if rate != "-0.67%" {
		t.Errorf("rate = %q", rate)
	}
}

func TestLooksLikeDate(t *testing.T) {
	if !looksLikeDate("26.08.25") {
		t.Error("valid date rejected")
	}
	for _, bad := range []string{"", "2026.08.25", "26-08-25", "날짜"} {
		if looksLikeDate(bad) {
			t.Errorf("looksLikeDate(%q) = true", bad)
		}
	}
}
