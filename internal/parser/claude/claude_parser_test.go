package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendbot/internal/config"
	"spendbot/internal/parser"
	"spendbot/internal/parser/claude"
	"spendbot/internal/port"
)

func newTestParser(serverURL string) *claude.Parser {
	return claude.NewParserWithEndpoint(&config.ParserProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-test",
		TimeoutSecs:  5,
	}, serverURL)
}

func TestParse_ImageSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-test", reqBody["model"])

		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)
		assert.Equal(t, "image", content[0].(map[string]interface{})["type"])
		assert.Equal(t, "text", content[1].(map[string]interface{})["type"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{
				"type": "text",
				"text": `{"data":{"total":12.5,"merchant":"Shop"},"confidence_scores":{"total":0.95}}`,
			}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	out, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("\x89PNG"),
		ContentType: "image/png",
		SourceTag:   "receipt_photo",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":12.5,"merchant":"Shop"}`, string(out.StructuredData))
	assert.Equal(t, "claude-test", out.ModelUsed)
	assert.NotEmpty(t, out.PromptUsed)
}

func TestParse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes: []byte("%PDF"), ContentType: "application/pdf",
	})
	var rlErr *parser.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 17.0, rlErr.RetryAfter.Seconds())
}

func TestParse_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes: []byte("%PDF"), ContentType: "application/pdf",
	})
	assert.ErrorContains(t, err, "status 500")
}

func TestParse_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{"}],"stop_reason":"max_tokens"}`))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes: []byte("%PDF"), ContentType: "application/pdf",
	})
	assert.ErrorContains(t, err, "truncated")
}

func TestParse_UnsupportedContentType(t *testing.T) {
	_, err := newTestParser("http://unused").Parse(context.Background(), port.ParseInput{
		FileBytes: []byte("x"), ContentType: "text/plain",
	})
	assert.ErrorContains(t, err, "unsupported content type")
}
