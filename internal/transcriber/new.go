package transcriber

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/meeting-notes/internal/config"
	"github.com/nguyentantai21042004/meeting-notes/internal/logger"
	"github.com/nguyentantai21042004/meeting-notes/pkg/executor"
)

type whisperCpp struct {
	cfg      config.WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

type openAI struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

// New picks the backend named by cfg.Whisper.Backend.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	switch cfg.Whisper.Backend {
	case config.BackendWhisperCpp, "":
		return NewWhisperCpp(cfg.Whisper, exec, log), nil
	case config.BackendOpenAI:
		return NewOpenAI(cfg.Whisper.APIURL, cfg.Whisper.APIKey, cfg.Whisper.Model, cfg.Whisper.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown transcription backend %q", cfg.Whisper.Backend)
	}
}

// NewWhisperCpp runs the whisper.cpp CLI. Input must already be 16 kHz mono WAV.
func NewWhisperCpp(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) Transcriber {
	return &whisperCpp{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}

// NewOpenAI talks to an OpenAI-compatible /audio/transcriptions endpoint.
// A zero timeout means no limit.
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration, log logger.Logger) Transcriber {
	return &openAI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// NeedsWAV reports whether backend expects audio normalized to 16 kHz mono WAV first.
func NeedsWAV(backend string) bool {
	return backend == config.BackendWhisperCpp || backend == ""
}
