package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-notes/internal/report"
	"github.com/nguyentantai21042004/meeting-notes/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-notes/internal/transcriber"
)

// ProcessAudio orchestrates transcription, summarization and output for one file
func (p *implPipeline) ProcessAudio(ctx context.Context, audioPath string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrAudioNotFound, audioPath)
	}

	startTime := time.Now()
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing: %s", filepath.Base(audioPath))
	p.logger.Info(ctx, "========================================")

	runID := p.startRun(ctx, audioPath)

	summaryPath, summary, err := p.process(ctx, audioPath)
	if err != nil {
		p.failRun(ctx, runID, err)
		return "", err
	}
	p.completeRun(ctx, runID, summaryPath, summary)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Summary: %s", summaryPath)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime).Round(time.Millisecond))
	p.logger.Info(ctx, "========================================")
	return summaryPath, nil
}

func (p *implPipeline) process(ctx context.Context, audioPath string) (string, *summarizer.Summary, error) {
	name := stem(audioPath)
	languages := p.cfg.Whisper.Languages

	// Step 1: one transcription pass per language
	p.logger.Info(ctx, "STEP 1: TRANSCRIPTION (%s)", languageList(languages))

	parts, err := p.transcribeAll(ctx, audioPath, languages)
	if err != nil {
		return "", nil, fmt.Errorf("transcribe: %w", err)
	}

	blank := true
	for _, part := range parts {
		path := filepath.Join(p.cfg.Paths.Output, name+"_transcript"+fileSuffix(part.language)+".txt")
		if err := writeText(path, part.text); err != nil {
			return "", nil, fmt.Errorf("save transcript: %w", err)
		}
		p.logger.Info(ctx, "%s transcript saved: %s", languageName(part.language), path)
		if strings.TrimSpace(part.text) != "" {
			blank = false
		}
	}
	if blank {
		return "", nil, fmt.Errorf("transcribe: %w", summarizer.ErrEmptyTranscript)
	}

	// Step 2: summarize the combined transcripts
	p.logger.Info(ctx, "STEP 2: GENERATING SUMMARY")

	sum, err := p.getSummarizer()
	if err != nil {
		return "", nil, fmt.Errorf("init summarizer: %w", err)
	}
	summary, err := sum.Summarize(ctx, buildPrompt(parts))
	if err != nil {
		return "", nil, fmt.Errorf("summarize: %w", err)
	}

	// Step 3: write outputs
	summaryPath := filepath.Join(p.cfg.Paths.Output, name+".txt")
	if err := writeText(summaryPath, report.Format(summary)); err != nil {
		return "", nil, fmt.Errorf("save summary: %w", err)
	}
	p.logger.Info(ctx, "Summary saved: %s", summaryPath)

	if p.cfg.Output.Docx {
		docxPath := filepath.Join(p.cfg.Paths.Output, name+".docx")
		if err := report.WriteDocx(name, summary, docxPath); err != nil {
			return "", nil, fmt.Errorf("save docx: %w", err)
		}
		p.logger.Info(ctx, "Docx saved: %s", docxPath)
	}

	return summaryPath, summary, nil
}

// transcribeAll runs the passes in order over a single normalized copy of the audio.
func (p *implPipeline) transcribeAll(ctx context.Context, audioPath string, languages []string) ([]transcript, error) {
	t, err := p.getTranscriber()
	if err != nil {
		return nil, fmt.Errorf("init transcriber: %w", err)
	}

	input := audioPath
	if transcriber.NeedsWAV(p.cfg.Whisper.Backend) {
		wavPath, err := p.normalizeAudio(ctx, audioPath)
		if err != nil {
			return nil, err
		}
		defer p.cleanupTempFile(ctx, wavPath)
		input = wavPath
	}

	parts := make([]transcript, 0, len(languages))
	for _, lang := range languages {
		res, err := p.transcribeOne(ctx, t, input, lang)
		if err != nil {
			return nil, fmt.Errorf("%s pass: %w", languageName(lang), err)
		}
		parts = append(parts, transcript{language: lang, text: res.Text})
	}
	return parts, nil
}

func (p *implPipeline) transcribeOne(ctx context.Context, t transcriber.Transcriber, path, lang string) (*transcriber.Result, error) {
	if err := p.decodeSlots.acquire(ctx); err != nil {
		return nil, err
	}
	defer p.decodeSlots.release()

	return t.Transcribe(ctx, path, lang)
}

// ProcessDirectory processes every audio file in dir in name order
func (p *implPipeline) ProcessDirectory(ctx context.Context, dir string) ([]string, error) {
	if dir == "" {
		dir = p.cfg.Paths.Input
	}

	files, err := discoverAudio(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoAudioFiles, dir)
	}

	p.logger.Info(ctx, "Found %d audio file(s) in %s", len(files), dir)

	outputs := make([]string, 0, len(files))
	for i, file := range files {
		p.logger.Info(ctx, "[%d/%d] %s", i+1, len(files), filepath.Base(file))
		out, err := p.ProcessAudio(ctx, file)
		if err != nil {
			return outputs, fmt.Errorf("process %s: %w", filepath.Base(file), err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// ProcessAndArchive processes one file and archives it on success
func (p *implPipeline) ProcessAndArchive(ctx context.Context, audioPath string) error {
	if _, err := p.ProcessAudio(ctx, audioPath); err != nil {
		return err
	}
	if p.cfg.Paths.Archived == "" {
		return nil
	}
	if err := p.archive(ctx, audioPath); err != nil {
		p.logger.Warn(ctx, "Failed to archive %s: %v", audioPath, err)
	}
	return nil
}

func (p *implPipeline) startRun(ctx context.Context, audioPath string) string {
	if p.store == nil {
		return ""
	}
	id, err := p.store.Start(ctx, audioPath)
	if err != nil {
		p.logger.Warn(ctx, "Failed to record run start: %v", err)
		return ""
	}
	return id
}

func (p *implPipeline) completeRun(ctx context.Context, id, summaryPath string, summary *summarizer.Summary) {
	if p.store == nil || id == "" {
		return
	}
	if err := p.store.Complete(ctx, id, summaryPath, summary); err != nil {
		p.logger.Warn(ctx, "Failed to record run %s: %v", id, err)
	}
}

func (p *implPipeline) failRun(ctx context.Context, id string, cause error) {
	if p.store == nil || id == "" {
		return
	}
	// the job context may already be cancelled
	if err := p.store.Fail(context.WithoutCancel(ctx), id, cause); err != nil {
		p.logger.Warn(ctx, "Failed to record run %s: %v", id, err)
	}
}

func languageList(languages []string) string {
	names := make([]string, len(languages))
	for i, lang := range languages {
		names[i] = strings.ToUpper(languageName(lang))
	}
	return strings.Join(names, " + ")
}
