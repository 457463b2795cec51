package embedding

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"delm/config"
	"delm/internal/domain"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(16)

	a, err := e.Embed([]string{"primary button"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed([]string{"primary button"})
	if err != nil {
		t.Fatal(err)
	}

	if len(a[0]) != 16 {
		t.Fatalf("expected dimension 16, got %d", len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("identical text must embed identically, differs at %d", i)
		}
	}

	other, err := e.Embed([]string{"grid layout"})
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a[0] {
		if a[0][i] != other[0][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts must embed differently")
	}
}

func TestMockEmbedder_RejectsEmptyText(t *testing.T) {
	e := NewMockEmbedder(8)
	if _, err := e.Embed([]string{"ok", ""}); !errors.Is(err, domain.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestNew_Providers(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: "mock", Dimension: 32})
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimension() != 32 || e.ModelName() != "mock" {
		t.Errorf("unexpected mock embedder: dim=%d model=%s", e.Dimension(), e.ModelName())
	}

	// Ollama needs no API key
	if _, err := New(config.EmbeddingConfig{Provider: "ollama", Model: "nomic-embed-text", Dimension: 768}); err != nil {
		t.Errorf("ollama provider must not require a key, got %v", err)
	}

	if _, err := New(config.EmbeddingConfig{Provider: "openai", APIKeyEnv: "DELM_TEST_UNSET_KEY"}); err == nil {
		t.Error("expected error for missing API key")
	}

	if _, err := New(config.EmbeddingConfig{Provider: "cohere"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestClient_EmbedBatching(t *testing.T) {
	var requests [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		requests = append(requests, req.Input)

		resp := embeddingResponse{Data: make([]embeddingData, len(req.Input))}
		for i := range req.Input {
			resp.Data[i] = embeddingData{Embedding: []float32{1, 0}, Index: i}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newClient("key", "test-model", server.URL, config.EmbeddingConfig{Dimension: 2, BatchSize: 2})

	embeddings, err := client.Embed([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(embeddings))
	}
	if len(requests) != 2 || len(requests[0]) != 2 || len(requests[1]) != 1 {
		t.Errorf("expected batches of 2+1, got %v", requests)
	}
}

func TestClient_EmbedErrors(t *testing.T) {
	client := newClient("key", "test-model", "http://unused", config.EmbeddingConfig{Dimension: 2})

	if _, err := client.Embed([]string{"ok", ""}); !errors.Is(err, domain.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client = newClient("key", "test-model", server.URL, config.EmbeddingConfig{Dimension: 2})
	if _, err := client.Embed([]string{"a"}); err == nil {
		t.Error("expected error for non-200 response")
	}
}
