package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// whisperJSON is the subset of whisper-cli -oj output we read.
type whisperJSON struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs whisper-cli against a WAV file and reads its JSON output.
func (w *whisperCpp) Transcribe(ctx context.Context, audioPath, language string) (*Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not found: %s: %w", audioPath, err)
	}

	lang := language
	if isAuto(lang) {
		lang = "auto"
	}
	w.logger.Info(ctx, "Transcribing [%s]: %s", label(language), filepath.Base(audioPath))

	// whisper-cli appends .json to the prefix; keep one prefix per language so passes don't collide.
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_" + lang
	jsonPath := outputPrefix + ".json"
	defer os.Remove(jsonPath)

	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", audioPath,
		"-l", lang,
		"-t", strconv.Itoa(w.cfg.Threads),
		"-oj",
		"-of", outputPrefix,
		"-np",
	}
	if strings.EqualFold(w.cfg.Device, "cpu") {
		args = append(args, "-ng")
	}

	w.logger.Debug(ctx, "%s %s", w.cfg.Binary, strings.Join(args, " "))

	if _, err := w.executor.Execute(ctx, w.cfg.Binary, args...); err != nil {
		return nil, fmt.Errorf("whisper transcribe: %w", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	res, err := parseWhisperJSON(data)
	if err != nil {
		return nil, err
	}
	if res.Language == "" {
		res.Language = language
	}

	w.logger.Info(ctx, "Transcription complete [%s]. Detected language: %s", label(language), orUnknown(res.Language))
	return res, nil
}

func parseWhisperJSON(data []byte) (*Result, error) {
	var out whisperJSON
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}

	var sb strings.Builder
	for _, seg := range out.Transcription {
		sb.WriteString(seg.Text)
	}

	return &Result{
		Text:     strings.TrimSpace(sb.String()),
		Language: out.Result.Language,
	}, nil
}

// isAuto reports whether language asks the backend to detect it.
func isAuto(language string) bool {
	return language == "" || strings.EqualFold(language, "auto")
}

func label(language string) string {
	if isAuto(language) {
		return "AUTO-DETECT"
	}
	return strings.ToUpper(language)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
