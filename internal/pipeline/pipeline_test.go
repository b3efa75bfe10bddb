package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-notes/internal/config"
	"github.com/nguyentantai21042004/meeting-notes/internal/logger"
	"github.com/nguyentantai21042004/meeting-notes/internal/storage"
	"github.com/nguyentantai21042004/meeting-notes/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-notes/internal/transcriber"
)

type transcribeCall struct {
	path     string
	language string
}

type fakeTranscriber struct {
	mu    sync.Mutex
	calls []transcribeCall
	texts map[string]string
	err   error
	// readAudio returns the audio file content as the transcript
	readAudio bool
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, language string) (*transcriber.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, transcribeCall{path: audioPath, language: language})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.readAudio {
		data, err := os.ReadFile(audioPath)
		if err != nil {
			return nil, err
		}
		time.Sleep(10 * time.Millisecond)
		return &transcriber.Result{Text: string(data), Language: language}, nil
	}
	return &transcriber.Result{Text: f.texts[language], Language: language}, nil
}

type fakeSummarizer struct {
	mu      sync.Mutex
	inputs  []string
	summary *summarizer.Summary
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (*summarizer.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, transcript)
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

// fakeExecutor stands in for ffmpeg: it writes the input path into the output file named by the last argument.
type fakeExecutor struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "", os.WriteFile(args[len(args)-1], []byte(args[1]), 0644)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Paths: config.PathsConfig{
			Input:  filepath.Join(root, "in"),
			Output: filepath.Join(root, "out"),
			Logs:   filepath.Join(root, "logs"),
			Temp:   filepath.Join(root, "out", "tmp"),
		},
		Whisper: config.WhisperConfig{
			Backend:   config.BackendOpenAI,
			Languages: []string{"hi", "en"},
		},
		Audio: config.AudioConfig{FFmpegBinary: "ffmpeg"},
	}
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0644))
	return path
}

func sampleSummary() *summarizer.Summary {
	return &summarizer.Summary{
		OverallSummary:  "Sprint planning.",
		KeyDecisions:    []string{"Ship on Friday"},
		SummaryByTopics: "Release: on track.",
		ActionItems:     []string{"Asha to tag the release"},
		OpenPoints:      []string{},
	}
}

type fixture struct {
	cfg  *config.Config
	exec *fakeExecutor
	tr   *fakeTranscriber
	sum  *fakeSummarizer
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		cfg:  testConfig(t),
		exec: &fakeExecutor{},
		tr:   &fakeTranscriber{texts: map[string]string{"hi": "namaste sabko", "en": "hello everyone"}},
		sum:  &fakeSummarizer{summary: sampleSummary()},
	}
}

func (f *fixture) pipeline(t *testing.T, opts ...Option) Pipeline {
	t.Helper()
	opts = append([]Option{WithTranscriber(f.tr), WithSummarizer(f.sum)}, opts...)
	p, err := New(f.cfg, f.exec, logger.NewNop(), opts...)
	require.NoError(t, err)
	return p
}

func TestNewCreatesDirectories(t *testing.T) {
	f := newFixture(t)
	f.pipeline(t)

	assert.DirExists(t, f.cfg.Paths.Output)
	assert.DirExists(t, f.cfg.Paths.Logs)
}

func TestProcessAudio(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)
	audio := writeFile(t, f.cfg.Paths.Input, "standup.mp3")

	out, err := p.ProcessAudio(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.cfg.Paths.Output, "standup.txt"), out)

	assert.Equal(t, []transcribeCall{{audio, "hi"}, {audio, "en"}}, f.tr.calls)
	assert.Empty(t, f.exec.calls, "openai backend takes the original file")

	hindi, err := os.ReadFile(filepath.Join(f.cfg.Paths.Output, "standup_transcript_hindi.txt"))
	require.NoError(t, err)
	assert.Equal(t, "namaste sabko", string(hindi))
	english, err := os.ReadFile(filepath.Join(f.cfg.Paths.Output, "standup_transcript_english.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello everyone", string(english))

	require.Len(t, f.sum.inputs, 1)
	assert.Contains(t, f.sum.inputs[0], "HINDI TRANSCRIPTION:\nnamaste sabko")
	assert.Contains(t, f.sum.inputs[0], "ENGLISH TRANSCRIPTION:\nhello everyone")

	summary, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "OVERALL SUMMARY")
	assert.Contains(t, string(summary), "1. Ship on Friday")
	assert.Contains(t, string(summary), "No open points identified.")
	assert.NoFileExists(t, filepath.Join(f.cfg.Paths.Output, "standup.docx"))
}

func TestProcessAudioNormalizesForWhisperCpp(t *testing.T) {
	f := newFixture(t)
	f.cfg.Whisper.Backend = config.BackendWhisperCpp
	p := f.pipeline(t)
	audio := writeFile(t, f.cfg.Paths.Input, "standup.m4a")

	_, err := p.ProcessAudio(context.Background(), audio)
	require.NoError(t, err)

	require.Len(t, f.exec.calls, 1, "audio is converted once for both passes")
	wav := f.exec.calls[0][len(f.exec.calls[0])-1]
	assert.Equal(t, "ffmpeg", f.exec.calls[0][0])
	assert.Equal(t, f.cfg.Paths.Temp, filepath.Dir(wav))
	assert.True(t, strings.HasPrefix(filepath.Base(wav), "standup_"), wav)
	assert.True(t, strings.HasSuffix(wav, "_16k.wav"), wav)
	assert.Contains(t, strings.Join(f.exec.calls[0], " "), "-ar 16000 -ac 1")

	assert.Equal(t, []transcribeCall{{wav, "hi"}, {wav, "en"}}, f.tr.calls)
	assert.NoFileExists(t, wav)
}

func TestProcessAudioSameStemConcurrently(t *testing.T) {
	f := newFixture(t)
	f.cfg.Whisper.Backend = config.BackendWhisperCpp
	f.tr.readAudio = true
	p := f.pipeline(t)
	inputs := []string{
		writeFile(t, f.cfg.Paths.Input, "standup.mp3"),
		writeFile(t, f.cfg.Paths.Input, "standup.m4a"),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(inputs))
	for i, audio := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = p.ProcessAudio(context.Background(), audio)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, inputs[i])
	}

	require.Len(t, f.exec.calls, 2)
	first := f.exec.calls[0][len(f.exec.calls[0])-1]
	second := f.exec.calls[1][len(f.exec.calls[1])-1]
	assert.NotEqual(t, first, second)
	assert.NoFileExists(t, first)
	assert.NoFileExists(t, second)

	// every prompt holds the audio of a single input for both passes
	require.Len(t, f.sum.inputs, 2)
	for _, prompt := range f.sum.inputs {
		hasMP3 := strings.Count(prompt, inputs[0])
		hasM4A := strings.Count(prompt, inputs[1])
		assert.True(t, (hasMP3 == 2 && hasM4A == 0) || (hasMP3 == 0 && hasM4A == 2), prompt)
	}
}

func TestProcessAudioWritesDocx(t *testing.T) {
	f := newFixture(t)
	f.cfg.Output.Docx = true
	p := f.pipeline(t)
	audio := writeFile(t, f.cfg.Paths.Input, "review.wav")

	_, err := p.ProcessAudio(context.Background(), audio)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(f.cfg.Paths.Output, "review.docx"))
}

func TestProcessAudioErrors(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		setup   func(f *fixture)
		missing bool
		wantErr error
		summary bool
	}{
		{
			name:    "missing file",
			missing: true,
			wantErr: ErrAudioNotFound,
		},
		{
			name:    "transcriber fails",
			setup:   func(f *fixture) { f.tr.err = errBoom },
			wantErr: errBoom,
		},
		{
			name:    "blank transcripts",
			setup:   func(f *fixture) { f.tr.texts = map[string]string{"hi": " ", "en": ""} },
			wantErr: summarizer.ErrEmptyTranscript,
		},
		{
			name:    "summarizer fails",
			setup:   func(f *fixture) { f.sum.err = errBoom },
			wantErr: errBoom,
			summary: true,
		},
		{
			name: "ffmpeg fails",
			setup: func(f *fixture) {
				f.cfg.Whisper.Backend = config.BackendWhisperCpp
				f.exec.err = errBoom
			},
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			p := f.pipeline(t)

			audio := filepath.Join(f.cfg.Paths.Input, "meeting.mp3")
			if !tt.missing {
				audio = writeFile(t, f.cfg.Paths.Input, "meeting.mp3")
			}

			out, err := p.ProcessAudio(context.Background(), audio)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, out)
			assert.Equal(t, tt.summary, len(f.sum.inputs) > 0)
			assert.NoFileExists(t, filepath.Join(f.cfg.Paths.Output, "meeting.txt"))
		})
	}
}

func TestProcessAudioRecordsHistory(t *testing.T) {
	f := newFixture(t)
	store, err := storage.New(filepath.Join(f.cfg.Paths.Output, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	p := f.pipeline(t, WithStore(store))
	ok := writeFile(t, f.cfg.Paths.Input, "a.mp3")
	_, err = p.ProcessAudio(context.Background(), ok)
	require.NoError(t, err)

	f.sum.err = errors.New("endpoint down")
	bad := writeFile(t, f.cfg.Paths.Input, "b.mp3")
	_, err = p.ProcessAudio(context.Background(), bad)
	require.Error(t, err)

	runs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byPath := map[string]storage.Run{}
	for _, r := range runs {
		byPath[r.AudioPath] = r
	}
	assert.Equal(t, storage.StatusCompleted, byPath[ok].Status)
	assert.Equal(t, "Sprint planning.", byPath[ok].Summary.OverallSummary)
	assert.Equal(t, storage.StatusFailed, byPath[bad].Status)
	assert.Contains(t, byPath[bad].Error, "endpoint down")
}

func TestProcessDirectory(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)
	dir := f.cfg.Paths.Input
	writeFile(t, dir, "b_retro.WAV")
	writeFile(t, dir, "a_standup.mp3")
	writeFile(t, dir, "notes.md")
	writeFile(t, dir, ".hidden.mp3")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.mp3"), 0755))

	outs, err := p.ProcessDirectory(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(f.cfg.Paths.Output, "a_standup.txt"),
		filepath.Join(f.cfg.Paths.Output, "b_retro.txt"),
	}, outs)
	assert.Len(t, f.sum.inputs, 2)
}

func TestProcessDirectoryNoAudio(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)
	writeFile(t, f.cfg.Paths.Input, "readme.txt")

	_, err := p.ProcessDirectory(context.Background(), f.cfg.Paths.Input)
	assert.ErrorIs(t, err, ErrNoAudioFiles)
}

func TestProcessDirectoryStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	f.sum.err = errors.New("quota")
	p := f.pipeline(t)
	writeFile(t, f.cfg.Paths.Input, "one.mp3")
	writeFile(t, f.cfg.Paths.Input, "two.mp3")

	outs, err := p.ProcessDirectory(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one.mp3")
	assert.Empty(t, outs)
	assert.Len(t, f.sum.inputs, 1)
}

func TestProcessAndArchive(t *testing.T) {
	f := newFixture(t)
	f.cfg.Paths.Archived = filepath.Join(t.TempDir(), "archived")
	p := f.pipeline(t)
	audio := writeFile(t, f.cfg.Paths.Input, "sync.ogg")

	require.NoError(t, p.ProcessAndArchive(context.Background(), audio))
	assert.NoFileExists(t, audio)
	assert.FileExists(t, filepath.Join(f.cfg.Paths.Archived, "sync.ogg"))
}

func TestProcessAndArchiveKeepsFailedInput(t *testing.T) {
	f := newFixture(t)
	f.cfg.Paths.Archived = filepath.Join(t.TempDir(), "archived")
	f.tr.err = errors.New("decode")
	p := f.pipeline(t)
	audio := writeFile(t, f.cfg.Paths.Input, "sync.ogg")

	require.Error(t, p.ProcessAndArchive(context.Background(), audio))
	assert.FileExists(t, audio)
}
