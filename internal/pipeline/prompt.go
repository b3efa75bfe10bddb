package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// transcript is the output of one language pass.
type transcript struct {
	language string
	text     string
}

// languageName returns the English name of an ISO code, e.g. "hi" is "Hindi".
// Empty means auto-detect.
func languageName(code string) string {
	if code == "" || strings.EqualFold(code, "auto") {
		return "Auto-detected"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(code)
	}
	return name
}

// fileSuffix turns a language into the transcript file suffix, e.g. "_hindi".
func fileSuffix(code string) string {
	name := strings.ToLower(languageName(code))
	return "_" + strings.Join(strings.Fields(name), "_")
}

var countWords = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

func countWord(n int) string {
	if n < len(countWords) {
		return countWords[n]
	}
	return fmt.Sprint(n)
}

// buildPrompt merges the per-language transcripts into a single LLM input.
func buildPrompt(parts []transcript) string {
	var b strings.Builder

	if len(parts) == 1 {
		fmt.Fprintf(&b, "I have a transcription of a meeting audio in %s.\n", languageName(parts[0].language))
		b.WriteString("Please analyze the transcription to create the most accurate and comprehensive summary.\n\n")
	} else {
		phrases := make([]string, len(parts))
		for i, part := range parts {
			phrases[i] = "one in " + languageName(part.language)
		}
		joined := strings.Join(phrases[:len(phrases)-1], ", ") + " and " + phrases[len(phrases)-1]

		fmt.Fprintf(&b, "I have %s transcriptions of the same meeting audio - %s.\n", countWord(len(parts)), joined)
		fmt.Fprintf(&b, "Please analyze %s transcriptions to create the most accurate and comprehensive summary.\n\n", quantifier(len(parts), true))
	}

	for _, part := range parts {
		fmt.Fprintf(&b, "%s TRANSCRIPTION:\n%s\n\n", strings.ToUpper(languageName(part.language)), part.text)
	}

	if len(parts) == 1 {
		b.WriteString("Please provide a summary that captures all important information from the transcription.")
	} else {
		fmt.Fprintf(&b, "Please provide a unified summary that captures all important information from %s transcriptions.", quantifier(len(parts), false))
	}
	return b.String()
}

func quantifier(n int, upper bool) string {
	word := "all"
	if n == 2 {
		word = "both"
	}
	if upper {
		return strings.ToUpper(word)
	}
	return word
}
