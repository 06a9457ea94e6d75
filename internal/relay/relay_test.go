package relay

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"magicsplitgpt/internal/browser"
	"magicsplitgpt/internal/config"
)

func newTestRelay(cfg *config.Config) *Relay {
	return New(cfg, browser.NewManager(cfg.Browser, zap.NewNop()), zap.NewNop())
}

func TestTargetsDefaultOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	r := newTestRelay(cfg)

	got := r.targets(nil)
	want := []string{ServiceChatGPT, ServiceClaude, ServiceGemini}
	if len(got) != len(want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("targets[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTargetsIncludesAPIWhenConfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GeminiAPI.Enabled = true
	cfg.GeminiAPI.APIKey = "key"
	r := newTestRelay(cfg)

	got := r.targets(nil)
	if got[len(got)-1] != ServiceGeminiAPI {
		t.Errorf("api path missing from targets: %v", got)
	}
}

func TestTargetsRespectsDisableAndSelection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Services.Claude.Enabled = false
	r := newTestRelay(cfg)

	got := r.targets([]string{"claude", "gemini"})
	if len(got) != 1 || got[0] != ServiceGemini {
		t.Errorf("targets = %v, want [gemini]", got)
	}

	got = r.targets([]string{" ChatGPT "})
	if len(got) != 1 || got[0] != ServiceChatGPT {
		t.Errorf("case/space-insensitive match failed: %v", got)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Service: ServiceChatGPT, OK: true, Message: "전송 완료", URL: "https://chat.openai.com/c/1", Duration: time.Second},
		{Service: ServiceClaude, OK: false, Message: "composer not found"},
	}
	out := Summarize(results)

	if !strings.Contains(out, "성공 1 / 2") {
		t.Errorf("summary missing tally:\n%s", out)
	}
	if !strings.Contains(out, "https://chat.openai.com/c/1") {
		t.Error("summary missing conversation url")
	}
	if !strings.Contains(out, "composer not found") {
		t.Error("summary missing failure message")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if out := Summarize(nil); !strings.Contains(out, "없습니다") {
		t.Errorf("empty summary = %q", out)
	}
}

func TestImageMIME(t *testing.T) {
	if imageMIME("a/chart.png") != "image/png" {
		t.Error("png mime")
	}
	if imageMIME("a/chart.JPG") != "image/jpeg" {
		t.Error("jpeg mime")
	}
}
