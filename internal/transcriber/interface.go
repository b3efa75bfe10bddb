package transcriber

import "context"

// Result is the text of one transcription pass and the language the engine settled on.
type Result struct {
	Text     string
	Language string
}

// Transcriber turns an audio file into text in the requested language.
// An empty language asks the engine to auto-detect.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (*Result, error)
}
