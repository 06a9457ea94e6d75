// Package relay delivers a rendered prompt and its chart screenshots
// to AI chat services, through their web UIs via the shared browser or
// directly through the Gemini API.
package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"magicsplitgpt/internal/browser"
	"magicsplitgpt/internal/config"
)

// Service names.
const (
	ServiceChatGPT   = "chatgpt"
	ServiceClaude    = "claude"
	ServiceGemini    = "gemini"
	ServiceGeminiAPI = "gemini-api"
)

// Request is one delivery job.
type Request struct {
	Prompt      string
	Attachments []string
	Services    []string // empty means every enabled service
}

// Result is the outcome of one service delivery.
type Result struct {
	Service  string
	OK       bool
	Message  string
	URL      string
	Response string // only the API path captures response text
	Duration time.Duration
}

// Relay dispatches deliveries.
type Relay struct {
	cfg *config.Config
	mgr *browser.Manager
	log *zap.Logger
}

// New creates a Relay sharing the given browser manager.
func New(cfg *config.Config, mgr *browser.Manager, log *zap.Logger) *Relay {
	return &Relay{cfg: cfg, mgr: mgr, log: log.Named("relay")}
}

// Dispatch sends the request to every selected service. Web uploads
// run sequentially on one page; the Gemini API call runs alongside
// them. Per-service failures are reported, not propagated.
func (r *Relay) Dispatch(ctx context.Context, req Request) []Result {
	targets := r.targets(req.Services)
	if len(targets) == 0 {
		return nil
	}

	var (
		webResults []Result
		apiResult  *Result
	)
	g, gctx := errgroup.WithContext(ctx)

	var webTargets []string
	for _, t := range targets {
		if t == ServiceGeminiAPI {
			g.Go(func() error {
				res := r.sendGeminiAPI(gctx, req)
				apiResult = &res
				return nil
			})
			continue
		}
		webTargets = append(webTargets, t)
	}

	if len(webTargets) > 0 {
		g.Go(func() error {
			webResults = r.dispatchWeb(gctx, webTargets, req)
			return nil
		})
	}
	_ = g.Wait()

	results := webResults
	if apiResult != nil {
		results = append(results, *apiResult)
	}
	return results
}

// targets resolves the requested service list against config enable
// flags. The API path joins automatically when a key is configured.
func (r *Relay) targets(requested []string) []string {
	enabled := map[string]bool{
		ServiceChatGPT:   r.cfg.Services.ChatGPT.Enabled,
		ServiceClaude:    r.cfg.Services.Claude.Enabled,
		ServiceGemini:    r.cfg.Services.Gemini.Enabled,
		ServiceGeminiAPI: r.cfg.GeminiAPI.Enabled && r.cfg.GeminiAPI.APIKey != "",
	}
	order := []string{ServiceChatGPT, ServiceClaude, ServiceGemini, ServiceGeminiAPI}

	want := func(name string) bool {
		if len(requested) == 0 {
			return true
		}
		for _, s := range requested {
			if strings.EqualFold(strings.TrimSpace(s), name) {
				return true
			}
		}
		return false
	}

	var out []string
	for _, name := range order {
		if enabled[name] && want(name) {
			out = append(out, name)
		}
	}
	return out
}

// dispatchWeb runs the browser uploads one service at a time on a
// single page so logins and focus do not fight each other.
func (r *Relay) dispatchWeb(ctx context.Context, services []string, req Request) []Result {
	page, err := r.mgr.NewPage(ctx)
	if err != nil {
		results := make([]Result, 0, len(services))
		for _, s := range services {
			results = append(results, Result{Service: s, Message: fmt.Sprintf("browser unavailable: %v", err)})
		}
		return results
	}
	defer page.Close()

	results := make([]Result, 0, len(services))
	for _, service := range services {
		if ctx.Err() != nil {
			results = append(results, Result{Service: service, Message: "cancelled"})
			continue
		}
		start := time.Now()
		res := r.sendWeb(ctx, page, service, req)
		res.Duration = time.Since(start)
		r.log.Info("delivery finished",
			zap.String("service", res.Service),
			zap.Bool("ok", res.OK),
			zap.String("message", res.Message))
		results = append(results, res)
	}
	return results
}

// Summarize renders a short outcome report for a result set.
func Summarize(results []Result) string {
	if len(results) == 0 {
		return "전송된 서비스가 없습니다."
	}
	var b strings.Builder
	ok := 0
	b.WriteString("## 전송 결과\n")
	for _, res := range results {
		mark := "✗"
		if res.OK {
			mark = "✓"
			ok++
		}
		fmt.Fprintf(&b, "%s %-10s", mark, res.Service)
		if res.Message != "" {
			fmt.Fprintf(&b, " %s", res.Message)
		}
		if res.URL != "" {
			fmt.Fprintf(&b, " (%s)", res.URL)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "성공 %d / %d\n", ok, len(results))
	return b.String()
}
