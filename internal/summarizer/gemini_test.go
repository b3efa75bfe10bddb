package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/meeting-notes/internal/logger"
)

type geminiReply struct {
	status int
	body   interface{}
}

func quotaReply() geminiReply {
	return geminiReply{
		status: http.StatusTooManyRequests,
		body: map[string]interface{}{
			"error": map[string]interface{}{"code": 429, "message": "Resource has been exhausted (e.g. check quota).", "status": "RESOURCE_EXHAUSTED"},
		},
	}
}

func badRequestReply() geminiReply {
	return geminiReply{
		status: http.StatusBadRequest,
		body: map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
		},
	}
}

func textReply(text string) geminiReply {
	return geminiReply{
		status: http.StatusOK,
		body: map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{
					"content": map[string]interface{}{
						"role":  "model",
						"parts": []interface{}{map[string]interface{}{"text": text}},
					},
				},
			},
		},
	}
}

func emptyReply() geminiReply {
	return geminiReply{status: http.StatusOK, body: map[string]interface{}{"candidates": []interface{}{}}}
}

// geminiServer answers generateContent per API key and records which keys were used.
func geminiServer(t *testing.T, replies map[string]geminiReply) *[]string {
	t.Helper()
	var (
		mu   sync.Mutex
		hits []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-goog-api-key")
		mu.Lock()
		hits = append(hits, key)
		mu.Unlock()

		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)

		reply, ok := replies[key]
		if !ok {
			reply = badRequestReply()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.status)
		json.NewEncoder(w).Encode(reply.body)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("GOOGLE_GEMINI_BASE_URL", "")
	genai.SetDefaultBaseURLs(genai.BaseURLParameters{GeminiURL: srv.URL})
	t.Cleanup(func() { genai.SetDefaultBaseURLs(genai.BaseURLParameters{}) })

	return &hits
}

func TestGeminiGenerate(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		replies    map[string]geminiReply
		want       string
		wantErr    string
		wantErrIs  error
		wantHits   []string
		wantKeyIdx int
	}{
		{
			name:     "first key answers",
			keys:     []string{"k1", "k2"},
			replies:  map[string]geminiReply{"k1": textReply(`{"overall_summary":"ok"}`)},
			want:     `{"overall_summary":"ok"}`,
			wantHits: []string{"k1"},
		},
		{
			name:       "rotates to next key on quota error",
			keys:       []string{"k1", "k2"},
			replies:    map[string]geminiReply{"k1": quotaReply(), "k2": textReply(`{"overall_summary":"ok"}`)},
			want:       `{"overall_summary":"ok"}`,
			wantHits:   []string{"k1", "k2"},
			wantKeyIdx: 1,
		},
		{
			name:     "all keys exhausted",
			keys:     []string{"k1", "k2", "k3"},
			replies:  map[string]geminiReply{"k1": quotaReply(), "k2": quotaReply(), "k3": quotaReply()},
			wantErr:  "all API keys exhausted",
			wantHits: []string{"k1", "k2", "k3"},
		},
		{
			name:     "other errors stop immediately",
			keys:     []string{"k1", "k2"},
			replies:  map[string]geminiReply{"k1": badRequestReply(), "k2": textReply("{}")},
			wantErr:  "generate content",
			wantHits: []string{"k1"},
		},
		{
			name:      "empty candidates",
			keys:      []string{"k1"},
			replies:   map[string]geminiReply{"k1": emptyReply()},
			wantErrIs: ErrInvalidResponse,
			wantHits:  []string{"k1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := geminiServer(t, tt.replies)
			g := newGemini(tt.keys, "gemini-test", logger.NewNop())

			got, err := g.generate(context.Background(), "transcript")
			switch {
			case tt.wantErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			case tt.wantErrIs != nil:
				assert.ErrorIs(t, err, tt.wantErrIs)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.Equal(t, tt.wantHits, *hits)
			if tt.wantErr == "" && tt.wantErrIs == nil {
				idx, _ := g.key()
				assert.Equal(t, tt.wantKeyIdx, idx)
			}
		})
	}
}

func TestGeminiRotationPersistsAcrossCalls(t *testing.T) {
	hits := geminiServer(t, map[string]geminiReply{
		"k1": quotaReply(),
		"k2": textReply(`{"overall_summary":"ok"}`),
	})
	g := newGemini([]string{"k1", "k2"}, "gemini-test", logger.NewNop())

	for range 2 {
		_, err := g.generate(context.Background(), "transcript")
		require.NoError(t, err)
	}
	// the second call starts from the key that worked
	assert.Equal(t, []string{"k1", "k2", "k2"}, *hits)
}
