package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pantrypal-app/pantrypal-backend/pkg/config"
)

func candidateResponse(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(config.GeminiConfig{
		APIKey:          "test-key",
		Model:           "gemini-1.5-flash",
		BaseURL:         server.URL,
		MaxOutputTokens: 256,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestGenerateText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateResponse("hello from the model")))
	})

	out, err := client.GenerateText(context.Background(), "suggest dinner")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "hello from the model" {
		t.Fatalf("unexpected output %q", out)
	}
	if gotPath != "/v1beta/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header missing, got %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "suggest dinner" {
		t.Fatalf("prompt not forwarded: %+v", gotBody)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.MaxOutputTokens != 256 {
		t.Fatalf("generation config not forwarded: %+v", gotBody.GenerationConfig)
	}
}

func TestGenerateWithImage(t *testing.T) {
	var gotBody generateRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateResponse("{\"success\": true}")))
	})

	out, err := client.GenerateWithImage(context.Background(), "read this bill", ImagePart{
		MIMEType: "image/png",
		Data:     []byte{0x89, 0x50, 0x4e, 0x47},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "success") {
		t.Fatalf("unexpected output %q", out)
	}

	parts := gotBody.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected text + image parts, got %d", len(parts))
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/png" {
		t.Fatalf("inline image missing: %+v", parts[1])
	}
	if parts[1].InlineData.Data == "" {
		t.Fatal("image bytes not encoded")
	}
}

func TestGenerateNonOKStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := client.GenerateText(context.Background(), "suggest dinner")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := client.GenerateText(context.Background(), "suggest dinner")
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(config.GeminiConfig{Model: "gemini-1.5-flash"})
	if err == nil {
		t.Fatal("expected error without api key")
	}
}
