package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChunkClient_ChunkText(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"text":"the source passage"}`))
	}))
	defer server.Close()

	c := NewChunkClient(server.URL, "secret")
	text, err := c.ChunkText(context.Background(), 7)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}
	if text != "the source passage" {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/api/chunk/7" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestChunkClient_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewChunkClient(server.URL, "secret")
	if _, err := c.ChunkText(context.Background(), 7); err == nil {
		t.Fatal("expected error on 404")
	}
}
