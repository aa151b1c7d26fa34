package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("expected POST /generate, got %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Topic string `json:"topic"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Topic != "Quantum Computing" {
			t.Errorf("bad request body: topic=%q err=%v", req.Topic, err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"report_path": "output/strategic_report.md",
			"blog_path":   "output/blog_post.md",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	artifacts, err := c.Generate(context.Background(), "Quantum Computing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifacts.ReportPath != "output/strategic_report.md" || artifacts.BlogPath != "output/blog_post.md" {
		t.Errorf("unexpected artifacts: %+v", artifacts)
	}
}

func TestGenerate_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestGenerate_MissingArtifacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"report_path": "only-one"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error when artifact paths are missing")
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL)
	if _, err := c.Generate(ctx, "x"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
