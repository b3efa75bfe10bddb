package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// normalizeAudio converts the input to 16kHz mono WAV in the temp dir.
// The file is shared by every language pass and is unique per call, so
// concurrent jobs on inputs with the same stem never touch each other's audio.
func (p *implPipeline) normalizeAudio(ctx context.Context, audioPath string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Temp, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	tmp, err := os.CreateTemp(p.cfg.Paths.Temp, name+"_*_16k.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	wavPath := tmp.Name()
	tmp.Close()

	p.logger.Info(ctx, "Normalizing audio: %s", audioPath)

	// -vn drops any cover art or video stream, whisper.cpp wants 16kHz mono s16le
	args := []string{
		"-i", audioPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		wavPath,
	}

	if _, err := p.executor.Execute(ctx, p.cfg.Audio.FFmpegBinary, args...); err != nil {
		p.cleanupTempFile(ctx, wavPath)
		return "", fmt.Errorf("ffmpeg normalize audio: %w", err)
	}

	p.logger.Debug(ctx, "Audio normalized: %s", wavPath)
	return wavPath, nil
}
