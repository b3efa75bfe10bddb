package pipeline

import (
	"fmt"
	"os"
	"sync"

	"github.com/nguyentantai21042004/meeting-notes/internal/config"
	"github.com/nguyentantai21042004/meeting-notes/internal/logger"
	"github.com/nguyentantai21042004/meeting-notes/internal/storage"
	"github.com/nguyentantai21042004/meeting-notes/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-notes/internal/transcriber"
	"github.com/nguyentantai21042004/meeting-notes/pkg/executor"
)

type implPipeline struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
	store    storage.Store

	// built on first use; whisper model load and LLM client setup are slow
	mu          sync.Mutex
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer

	decodeSlots *semaphore
}

// Option customizes a Pipeline.
type Option func(*implPipeline)

// WithTranscriber injects a transcriber instead of building one from config.
func WithTranscriber(t transcriber.Transcriber) Option {
	return func(p *implPipeline) {
		p.transcriber = t
	}
}

// WithSummarizer injects a summarizer instead of building one from config.
func WithSummarizer(s summarizer.Summarizer) Option {
	return func(p *implPipeline) {
		p.summarizer = s
	}
}

// WithStore records every run in the history store.
func WithStore(s storage.Store) Option {
	return func(p *implPipeline) {
		p.store = s
	}
}

// New creates a Pipeline and makes sure the output and log directories exist.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger, opts ...Option) (Pipeline, error) {
	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	p := &implPipeline{
		cfg:         cfg,
		executor:    exec,
		logger:      log,
		decodeSlots: newSemaphore(1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *implPipeline) getTranscriber() (transcriber.Transcriber, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.transcriber == nil {
		t, err := transcriber.New(p.cfg, p.executor, p.logger)
		if err != nil {
			return nil, err
		}
		p.transcriber = t
	}
	return p.transcriber, nil
}

func (p *implPipeline) getSummarizer() (summarizer.Summarizer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.summarizer == nil {
		s, err := summarizer.New(p.cfg, p.logger)
		if err != nil {
			return nil, err
		}
		p.summarizer = s
	}
	return p.summarizer, nil
}
