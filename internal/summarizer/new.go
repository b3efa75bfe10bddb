package summarizer

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meeting-notes/internal/config"
	"github.com/nguyentantai21042004/meeting-notes/internal/logger"
)

type implSummarizer struct {
	backend generator
	timeout time.Duration
	logger  logger.Logger
}

// New creates a Summarizer for the provider in cfg.LLM.Provider.
func New(cfg *config.Config, log logger.Logger) (Summarizer, error) {
	var backend generator
	switch cfg.LLM.Provider {
	case config.ProviderDatabricks, "":
		backend = newDatabricks(cfg.Databricks.BaseURL, cfg.Databricks.Token, cfg.Databricks.Model)
	case config.ProviderGemini:
		if len(cfg.Gemini.APIKeys) == 0 {
			return nil, fmt.Errorf("gemini provider needs at least one API key")
		}
		backend = newGemini(cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}

	log.Info(context.Background(), "Initializing summarizer with model: %s", backend.name())
	return &implSummarizer{
		backend: backend,
		timeout: cfg.LLM.Timeout,
		logger:  log,
	}, nil
}
