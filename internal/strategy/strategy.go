// Package strategy defines the five analysis strategies and resolves
// user input (menu key, strategy key, or empty for the default) to a
// concrete choice.
package strategy

import (
	"fmt"
	"strings"
)

// Strategy is one analysis approach with its prompt template key.
type Strategy struct {
	Key         string // template file base name
	MenuKey     string // single digit shown in the picker
	Title       string
	Description string
}

// DefaultKey is the strategy used when the user just presses enter.
const DefaultKey = "magic_split_optimization"

// registry in menu order.
var registry = []Strategy{
	{
		Key:         "magic_split_optimization",
		MenuKey:     "1",
		Title:       "매직스플릿 최적화 분석",
		Description: "보유 종목의 매직스플릿 매매 구간과 차수별 비중을 최적화합니다",
	},
	{
		Key:         "short_term_discovery",
		MenuKey:     "2",
		Title:       "단타 종목 발굴 분석",
		Description: "단기 매매 관점에서 진입 근거와 리스크를 점검합니다",
	},
	{
		Key:         "buy_timing_diagnosis",
		MenuKey:     "3",
		Title:       "매수 타이밍 진단",
		Description: "현재 가격대가 신규 매수에 적절한지 기술적으로 진단합니다",
	},
	{
		Key:         "hold_or_cut_decision",
		MenuKey:     "4",
		Title:       "보유/손절 판단",
		Description: "보유 종목의 유지 또는 정리 여부를 판단합니다",
	},
	{
		Key:         "valuation_analysis",
		MenuKey:     "5",
		Title:       "기업 가치 평가",
		Description: "재무와 업황을 기준으로 적정 가치를 평가합니다",
	},
}

// All returns the strategies in menu order.
func All() []Strategy {
	out := make([]Strategy, len(registry))
	copy(out, registry)
	return out
}

// Default returns the default strategy.
func Default() Strategy {
	s, _ := ByKey(DefaultKey)
	return s
}

// ByKey looks a strategy up by its template key.
func ByKey(key string) (Strategy, bool) {
	for _, s := range registry {
		if s.Key == key {
			return s, true
		}
	}
	return Strategy{}, false
}

// Resolve maps user input to a strategy. Accepted forms: empty (the
// default), a menu digit, or a strategy key.
func Resolve(input string) (Strategy, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return Default(), nil
	}
	for _, s := range registry {
		if input == s.MenuKey || input == s.Key {
			return s, nil
		}
	}
	return Strategy{}, fmt.Errorf("unknown strategy %q (use 1-5 or a strategy key)", input)
}
