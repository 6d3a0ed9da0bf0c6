package ml

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"DailyBrief/internal/config"
)

func TestGenerateImage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer img-key" {
			t.Errorf("unexpected auth %q", got)
		}
		var body struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Prompt != "teal harbor" {
			t.Errorf("unexpected prompt %q", body.Prompt)
		}
		_, _ = w.Write([]byte(`{"imageUrl":"https://img.example.org/1.png"}`))
	}))
	defer srv.Close()

	client := NewClient(config.ImagesConfig{Endpoint: srv.URL, APIKey: "img-key"})
	url, err := client.GenerateImage(context.Background(), "teal harbor")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if url != "https://img.example.org/1.png" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestGenerateImageFailures(t *testing.T) {
	t.Parallel()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()
	if _, err := NewClient(config.ImagesConfig{Endpoint: empty.URL}).GenerateImage(context.Background(), "p"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()
	if _, err := NewClient(config.ImagesConfig{Endpoint: failing.URL}).GenerateImage(context.Background(), "p"); err == nil {
		t.Fatal("expected an error for a failing service")
	}

	if NewClient(config.ImagesConfig{}) != nil {
		t.Fatal("client without endpoint should be nil")
	}
}
