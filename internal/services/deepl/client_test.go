package deepl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ctxmenu/internal/services"
)

func TestClientTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "DeepL-Auth-Key secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Text) != 1 || req.Text[0] != "Guten Tag" || req.TargetLang != "EN-GB" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []any{
				map[string]any{"detected_source_language": "DE", "text": "Good day"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: " secret ", BaseURL: server.URL})
	got, err := client.Translate(context.Background(), "Guten Tag", "en-gb")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got.Text != "Good day" || got.DetectedSourceLanguage != "DE" {
		t.Fatalf("unexpected translation %+v", got)
	}
}

func TestClientTranslateRequiresKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := client.Translate(context.Background(), "hola", "EN-GB")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestClientTranslateRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []any{map[string]any{"text": "hello"}},
		})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL},
		WithRetryMaxAttempts(3),
		WithRetryBackoff(time.Second, 5*time.Second),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	got, err := client.Translate(context.Background(), "hola", "EN-GB")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got.Text != "hello" {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
	if len(slept) != 2 || slept[0] != 2*time.Second {
		t.Fatalf("expected Retry-After delays, got %v", slept)
	}
}

func TestClientTranslateDoesNotRetryAuthOrQuota(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, statusQuotaExceeded} {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))

		client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
		_, err := client.Translate(context.Background(), "hola", "EN-GB")
		server.Close()

		if !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("status %d: expected configuration error, got %v", status, err)
		}
		if calls.Load() != 1 {
			t.Fatalf("status %d: expected a single call, got %d", status, calls.Load())
		}
	}
}

func TestClientTranslateGivesUpOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL},
		WithRetryMaxAttempts(2),
		WithSleeper(func(time.Duration) {}),
	)
	_, err := client.Translate(context.Background(), "hola", "EN-GB")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClientTranslateEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translations":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if _, err := client.Translate(context.Background(), "hola", "EN-GB"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 3*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: got %v want %v", i+1, got, expected)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative values should be rejected")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage should be rejected")
	}
}
