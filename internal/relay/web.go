package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"go.uber.org/zap"

	"magicsplitgpt/internal/browser"
)

// loginWait is how long a user gets to complete a manual login before
// the service is skipped.
const loginWait = 3 * time.Minute

// serviceSelectors describes how to drive one chat web UI.
type serviceSelectors struct {
	composer   string // prompt input, present only when logged in
	fileInput  string
	sendButton string // empty means submit with Enter
}

var webSelectors = map[string]serviceSelectors{
	ServiceChatGPT: {
		composer:   "#prompt-textarea",
		fileInput:  `input[type="file"]`,
		sendButton: `button[data-testid="send-button"]`,
	},
	ServiceClaude: {
		composer:  `div[contenteditable="true"]`,
		fileInput: `input[type="file"]`,
	},
	ServiceGemini: {
		composer:   "rich-textarea",
		fileInput:  `input[type="file"]`,
		sendButton: `button[aria-label*="Send"]`,
	},
}

func (r *Relay) serviceURL(service string) string {
	switch service {
	case ServiceChatGPT:
		return r.cfg.Services.ChatGPT.URL
	case ServiceClaude:
		return r.cfg.Services.Claude.URL
	case ServiceGemini:
		return r.cfg.Services.Gemini.URL
	}
	return ""
}

// sendWeb delivers one request through a chat web UI: navigate, wait
// for the composer (giving the user time to log in), attach images,
// type the prompt, send.
func (r *Relay) sendWeb(ctx context.Context, page *rod.Page, service string, req Request) Result {
	res := Result{Service: service}
	sel, ok := webSelectors[service]
	if !ok {
		res.Message = "unknown service"
		return res
	}
	url := r.serviceURL(service)

	if err := browser.Navigate(page, url, r.cfg.NavigationTimeout()); err != nil {
		res.Message = fmt.Sprintf("navigation failed: %v", err)
		return res
	}

	composer, err := r.waitComposer(ctx, page, service, sel.composer)
	if err != nil {
		res.Message = fmt.Sprintf("composer not found (login?): %v", err)
		return res
	}

	if len(req.Attachments) > 0 {
		if err := attachFiles(page, sel.fileInput, req.Attachments); err != nil {
			r.log.Warn("attachment upload failed, sending text only",
				zap.String("service", service), zap.Error(err))
		} else {
			// Uploads need a moment to register before send.
			_ = page.WaitStable(time.Second)
		}
	}

	if err := composer.Input(req.Prompt); err != nil {
		res.Message = fmt.Sprintf("prompt input failed: %v", err)
		return res
	}

	if sel.sendButton != "" {
		err = browser.Click(page, sel.sendButton, 10*time.Second)
	} else {
		err = composer.Type(input.Enter)
	}
	if err != nil {
		res.Message = fmt.Sprintf("send failed: %v", err)
		return res
	}

	// Let the conversation URL settle before recording it.
	_ = page.WaitStable(2 * time.Second)
	if info, err := page.Info(); err == nil {
		res.URL = info.URL
	}
	res.OK = true
	res.Message = "전송 완료"
	return res
}

// waitComposer polls for the prompt input, logging once when it looks
// like a login screen.
func (r *Relay) waitComposer(ctx context.Context, page *rod.Page, service, selector string) (*rod.Element, error) {
	deadline := time.Now().Add(loginWait)
	warned := false
	for {
		if el, err := page.Timeout(5 * time.Second).Element(selector); err == nil {
			if visible, _ := el.Visible(); visible {
				return el, nil
			}
		}
		if !warned {
			r.log.Info("waiting for login",
				zap.String("service", service),
				zap.Duration("timeout", loginWait))
			warned = true
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("no composer within %s", loginWait)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// attachFiles feeds image paths into the hidden file input.
func attachFiles(page *rod.Page, selector string, paths []string) error {
	el, err := page.Timeout(10 * time.Second).Element(selector)
	if err != nil {
		return fmt.Errorf("file input %s: %w", selector, err)
	}
	if err := el.SetFiles(paths); err != nil {
		return fmt.Errorf("set files: %w", err)
	}
	return nil
}
