package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeGemini serves generateContent requests from canned responses and
// records the request bodies it received.
type fakeGemini struct {
	mu        sync.Mutex
	requests  []map[string]any
	responses []string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, ":generateContent") {
		http.NotFound(w, r)
		return
	}
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	var resp string
	if len(f.responses) > 0 {
		resp, f.responses = f.responses[0], f.responses[1:]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, resp)
}

func (f *fakeGemini) Requests() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// textResponse builds a generateContent response with a single text part.
func textResponse(t *testing.T, text string) string {
	t.Helper()
	return mustJSON(t, map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
			"finishReason": "STOP",
		}},
	})
}

// callResponse builds a generateContent response with a single function call.
func callResponse(t *testing.T, name string, args map[string]any) string {
	t.Helper()
	return mustJSON(t, map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{
				"functionCall": map[string]any{"name": name, "args": args},
			}}},
			"finishReason": "STOP",
		}},
	})
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

// newTestClient returns a client talking to fake, plus the server URL.
func newTestClient(t *testing.T, fake *fakeGemini) (*genai.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return client, srv
}

// systemText returns the system instruction text of a recorded request.
func systemText(req map[string]any) string {
	si, _ := req["systemInstruction"].(map[string]any)
	parts, _ := si["parts"].([]any)
	if len(parts) == 0 {
		return ""
	}
	p, _ := parts[0].(map[string]any)
	s, _ := p["text"].(string)
	return s
}

// userText returns the first user part of a recorded request.
func userText(req map[string]any) string {
	contents, _ := req["contents"].([]any)
	if len(contents) == 0 {
		return ""
	}
	c, _ := contents[0].(map[string]any)
	parts, _ := c["parts"].([]any)
	if len(parts) == 0 {
		return ""
	}
	p, _ := parts[0].(map[string]any)
	s, _ := p["text"].(string)
	return s
}
