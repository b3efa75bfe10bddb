package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Summarize validates the transcript, calls the backend once and decodes its answer.
func (s *implSummarizer) Summarize(ctx context.Context, transcript string) (*Summary, error) {
	if len(transcript) == 0 {
		return nil, ErrEmptyTranscript
	}

	s.logger.Info(ctx, "Generating summary for transcript (%d chars)", len(transcript))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.backend.generate(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.backend.name(), err)
	}

	summary, err := decodeSummary(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Summary generated successfully")
	return summary, nil
}

var codeBlockRegex = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*(.+?)\\s*```\\s*$")

func stripMarkdownCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if matches := codeBlockRegex.FindStringSubmatch(s); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return s
}

// decodeSummary copies the model's fields verbatim; absent lists become empty, never nil.
func decodeSummary(raw string) (*Summary, error) {
	text := stripMarkdownCodeBlock(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty model output", ErrInvalidResponse)
	}

	if err := validateResponse(text); err != nil {
		return nil, err
	}

	var summary Summary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if summary.KeyDecisions == nil {
		summary.KeyDecisions = []string{}
	}
	if summary.ActionItems == nil {
		summary.ActionItems = []string{}
	}
	if summary.OpenPoints == nil {
		summary.OpenPoints = []string{}
	}
	return &summary, nil
}

func validateResponse(text string) error {
	schemaLoader := gojsonschema.NewGoLoader(responseSchema())
	documentLoader := gojsonschema.NewStringLoader(text)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(errs, "; "))
	}
	return nil
}
