package pipeline

import (
	"context"
	"errors"
)

var (
	// ErrAudioNotFound means the input audio path does not exist.
	ErrAudioNotFound = errors.New("audio file not found")
	// ErrNoAudioFiles means a directory held nothing with a supported extension.
	ErrNoAudioFiles = errors.New("no audio files found")
)

// AudioExtensions are the formats handed to the transcriber.
var AudioExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".opus", ".webm"}

// Pipeline transcribes meeting audio and writes a structured summary.
type Pipeline interface {
	// ProcessAudio runs one file end to end and returns the summary path.
	ProcessAudio(ctx context.Context, audioPath string) (string, error)
	// ProcessDirectory runs every audio file in dir, stopping at the first failure.
	// An empty dir means the configured input directory.
	ProcessDirectory(ctx context.Context, dir string) ([]string, error)
	// ProcessAndArchive runs ProcessAudio and then moves the input to the archive directory, if one is set.
	ProcessAndArchive(ctx context.Context, audioPath string) error
}
