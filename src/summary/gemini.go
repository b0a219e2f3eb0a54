package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"twstock-observer/src/logger"
	"twstock-observer/src/models"
)

// fallbackText replaces the narrative when the model call fails; the rest of
// the view renders regardless.
const fallbackText = "AI 籌碼解讀暫時無法使用，請稍後再試。"

// -----------------------------------------------------------------------------

type GeminiNarrator struct {
	Config *models.MNarrativeConfig
	Logger *logger.Logger
	client *genai.Client
}

// -----------------------------------------------------------------------------

func NewGeminiNarrator(cfg *models.MConfig) (*GeminiNarrator, error) {
	if cfg.Narrative.APIKey == "" {
		return nil, fmt.Errorf("narrative api key is empty")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.Narrative.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiNarrator{
		Config: &cfg.Narrative,
		Logger: logger.NewLogger(cfg.LogLevel, "GeminiNarrator"),
		client: client,
	}, nil
}

// -----------------------------------------------------------------------------

// Narrate asks the model for a short reading of the latest chip summary.
// It never returns an error: any failure is logged and replaced with a
// human-readable fallback string.
func (n *GeminiNarrator) Narrate(ctx context.Context, stockID, stockName, chipSummary string) string {
	if chipSummary == "" {
		return ""
	}

	prompt := fmt.Sprintf(
		"你是一位台股籌碼分析師。以下是 %s（%s）的最新三大法人買賣超資訊：\n%s\n"+
			"請用繁體中文、一段話（100字以內）解讀這個籌碼動向，不要提供投資建議。",
		stockName, stockID, chipSummary)

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(n.Config.Timeout)*time.Second)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(n.Config.Temperature),
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := n.client.Models.GenerateContent(timeoutCtx, n.Config.ModelName, contents, config)
	if err != nil {
		n.Logger.Error("Narrative generation failed for %s: %v", stockID, err)
		return fallbackText
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}

	if text.Len() == 0 {
		n.Logger.Warning("Narrative model returned no text for %s", stockID)
		return fallbackText
	}

	return strings.TrimSpace(text.String())
}
