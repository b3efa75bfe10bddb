package summarizer

import "strings"

const systemPrompt = `You summarize meeting transcripts into topics, decisions, action items, and open points.
Answer with a single JSON object containing exactly these fields:
`

type field struct {
	name  string
	list  bool
	about string
}

var summaryFields = []field{
	{"overall_summary", false, "Overall summary of the meeting, including key points and context"},
	{"key_decisions", true, "List of key decisions made during the meeting with context"},
	{"summary_by_topics", false, "Summary organized by topics/themes with bullet points"},
	{"action_items", true, "List of action items, tasks, or next steps with responsible parties if mentioned"},
	{"open_points", true, "List of unresolved issues, pending questions, or topics needing further discussion"},
}

func instructions() string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	for _, f := range summaryFields {
		kind := "string"
		if f.list {
			kind = "array of strings"
		}
		sb.WriteString("- " + f.name + " (" + kind + "): " + f.about + "\n")
	}
	return sb.String()
}

// jsonSchema is the OpenAI-style response_format schema.
func jsonSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(summaryFields))
	required := make([]string, 0, len(summaryFields))
	for _, f := range summaryFields {
		if f.list {
			props[f.name] = map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": f.about,
			}
		} else {
			props[f.name] = map[string]interface{}{
				"type":        "string",
				"description": f.about,
			}
		}
		required = append(required, f.name)
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// responseSchema checks field types of a model answer. It is looser than
// jsonSchema: fields may be missing and lists may be null.
func responseSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(summaryFields))
	for _, f := range summaryFields {
		if f.list {
			props[f.name] = map[string]interface{}{
				"type":  []string{"array", "null"},
				"items": map[string]interface{}{"type": "string"},
			}
		} else {
			props[f.name] = map[string]interface{}{"type": []string{"string", "null"}}
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
}
