// Package browser manages the Chrome instance used for Naver Finance
// collection and AI service uploads. One Manager owns one browser; a
// persistent profile directory keeps chart indicator settings and AI
// service logins across runs.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"magicsplitgpt/internal/config"
)

// Manager owns the Chrome process and its DevTools connection.
type Manager struct {
	mu      sync.Mutex
	cfg     config.BrowserConfig
	log     *zap.Logger
	browser *rod.Browser
	lnchr   *launcher.Launcher
	ctrlURL string
}

// NewManager creates a Manager for the given browser configuration.
func NewManager(cfg config.BrowserConfig, log *zap.Logger) *Manager {
	return &Manager{cfg: cfg, log: log.Named("browser")}
}

// Start launches Chrome (or attaches to a configured debugger URL) and
// connects. Calling Start on a healthy Manager is a no-op; a stale
// connection is detected and replaced.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.log.Warn("stale browser connection, relaunching")
		m.closeLocked()
	}

	url := m.cfg.DebuggerURL
	if url == "" {
		l := launcher.New().
			Headless(m.cfg.Headless).
			Set("window-size", fmt.Sprintf("%d,%d", m.cfg.ViewportWidth, m.cfg.ViewportHeight)).
			Set("disable-blink-features", "AutomationControlled").
			Set("lang", "ko-KR")
		if m.cfg.Bin != "" {
			l = l.Bin(m.cfg.Bin)
		}
		if dir, err := m.profileDir(); err == nil && dir != "" {
			l = l.UserDataDir(dir)
		}
		launched, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		m.lnchr = l
		url = launched
	}

	b := rod.New().ControlURL(url).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect to chrome at %s: %w", url, err)
	}
	if _, err := b.Version(); err != nil {
		return fmt.Errorf("chrome health check: %w", err)
	}

	m.browser = b
	m.ctrlURL = url
	m.log.Info("browser ready",
		zap.Bool("headless", m.cfg.Headless),
		zap.String("control_url", url))
	return nil
}

// profileDir resolves the persistent user-data-dir, creating it when
// needed. Empty config falls back under the user config dir.
func (m *Manager) profileDir() (string, error) {
	dir := m.cfg.ProfileDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "magicsplitgpt", "chrome-profile")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// NewPage opens a page with viewport emulation and the configured user
// agent. The caller owns the page.
func (m *Manager) NewPage(ctx context.Context) (*rod.Page, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("browser not started")
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	page = page.Context(ctx)

	err = (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.ViewportWidth,
		Height:            m.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}).Call(page)
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if m.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: m.cfg.UserAgent,
		}); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}
	return page, nil
}

// Shutdown closes the browser connection and kills the launched
// process. Safe to call more than once.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.log.Debug("browser close", zap.Error(err))
		}
		m.browser = nil
	}
	if m.lnchr != nil {
		m.lnchr.Cleanup()
		m.lnchr = nil
	}
	m.ctrlURL = ""
}

// Navigate loads url and waits for the page to settle.
func Navigate(page *rod.Page, url string, timeout time.Duration) error {
	p := page.Timeout(timeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	// Settle dynamic content; chart pages keep animating, so a
	// stability miss is not fatal.
	_ = p.WaitStable(500 * time.Millisecond)
	return nil
}

// ElementText returns the trimmed text of the first match, or "" when
// the selector resolves nothing within the timeout.
func ElementText(page *rod.Page, selector string, timeout time.Duration) string {
	el, err := page.Timeout(timeout).Element(selector)
	if err != nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return text
}

// Click clicks the first match of selector.
func Click(page *rod.Page, selector string, timeout time.Duration) error {
	el, err := page.Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("find %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

// ElementScreenshot captures one element as PNG.
func ElementScreenshot(page *rod.Page, selector string, timeout time.Duration) ([]byte, error) {
	el, err := page.Timeout(timeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", selector, err)
	}
	return data, nil
}

// FullPageScreenshot captures the whole document, beyond the viewport,
// via CDP layout metrics.
func FullPageScreenshot(page *rod.Page) ([]byte, error) {
	metrics, err := proto.PageGetLayoutMetrics{}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("layout metrics: %w", err)
	}
	size := metrics.CSSContentSize
	if size == nil {
		return page.Screenshot(true, nil)
	}
	shot, err := proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  size.Width,
			Height: size.Height,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
		FromSurface:           true,
	}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return shot.Data, nil
}

// SaveScreenshot writes image bytes to path, creating parents.
func SaveScreenshot(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write screenshot %s: %w", path, err)
	}
	return nil
}
