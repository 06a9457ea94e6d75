package relay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// sendGeminiAPI delivers the request straight to the Gemini model,
// bypassing the browser. Unlike the web path this captures the
// response text.
func (r *Relay) sendGeminiAPI(ctx context.Context, req Request) Result {
	res := Result{Service: ServiceGeminiAPI}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: r.cfg.GeminiAPI.APIKey,
	})
	if err != nil {
		res.Message = fmt.Sprintf("client init failed: %v", err)
		return res
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, path := range req.Attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn("attachment unreadable, skipped",
				zap.String("path", path), zap.Error(err))
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(data, imageMIME(path)))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, r.cfg.GeminiAPI.Model, contents, nil)
	if err != nil {
		res.Message = fmt.Sprintf("generate failed: %v", err)
		return res
	}

	text := resp.Text()
	if text == "" {
		res.Message = "empty response"
		return res
	}
	res.OK = true
	res.Message = fmt.Sprintf("응답 %d자 수신", len([]rune(text)))
	res.Response = text
	return res
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
