package summarizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/meeting-notes/internal/logger"
)

// gemini calls the Gemini API and rotates through API keys on quota errors.
type gemini struct {
	apiKeys    []string
	mu         sync.Mutex
	currentKey int
	model      string
	logger     logger.Logger
}

func newGemini(apiKeys []string, model string, log logger.Logger) *gemini {
	return &gemini{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
	}
}

func (g *gemini) name() string {
	return g.model
}

func (g *gemini) generate(ctx context.Context, transcript string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions(), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(),
	}

	var lastErr error
	for range len(g.apiKeys) {
		idx, key := g.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(transcript), cfg)
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var sb strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part != nil && part.Text != "" {
					sb.WriteString(part.Text)
				}
			}
			return sb.String(), nil
		}

		return "", fmt.Errorf("%w: empty response from Gemini", ErrInvalidResponse)
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *gemini) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

func (g *gemini) rotateKey() {
	g.mu.Lock()
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	g.mu.Unlock()
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func geminiSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(summaryFields))
	required := make([]string, 0, len(summaryFields))
	for _, f := range summaryFields {
		if f.list {
			props[f.name] = &genai.Schema{
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: f.about,
			}
		} else {
			props[f.name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: f.about,
			}
		}
		required = append(required, f.name)
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   required,
	}
}
