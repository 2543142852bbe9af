package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trazahq/go-signing/core"
)

func TestBuildEnvelopeShape(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	body, err := BuildEnvelope("document.signed", "doc-1", map[string]any{"signature_id": "sig-1"}, at)
	if err != nil {
		t.Fatalf("expected envelope, got error: %v", err)
	}

	var envelope struct {
		Event     string         `json:"event"`
		Timestamp string         `json:"timestamp"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("expected valid json envelope: %v", err)
	}
	if envelope.Event != "document.signed" {
		t.Fatalf("unexpected event: %q", envelope.Event)
	}
	if envelope.Timestamp != "2026-03-01T09:30:00Z" {
		t.Fatalf("unexpected timestamp: %q", envelope.Timestamp)
	}
	if envelope.Data["documentId"] != "doc-1" || envelope.Data["signature_id"] != "sig-1" {
		t.Fatalf("unexpected data: %+v", envelope.Data)
	}
}

func TestSenderSignsAndSetsHeaders(t *testing.T) {
	var (
		gotHeaders http.Header
		gotBody    []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	payload, err := BuildEnvelope("document.completed", "doc-1", nil, time.Now())
	if err != nil {
		t.Fatalf("expected envelope, got error: %v", err)
	}
	webhook := core.Webhook{ID: "wh-1", URL: server.URL, Secret: "whsec_secret"}
	delivery := core.WebhookDelivery{ID: "dl-1", WebhookID: "wh-1", EventType: "document.completed", Payload: payload}

	result := NewSender().Send(context.Background(), webhook, delivery, 0)
	if !result.Success || result.ResponseCode != http.StatusOK {
		t.Fatalf("expected success, got %+v", result)
	}
	if gotHeaders.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", gotHeaders.Get("Content-Type"))
	}
	if gotHeaders.Get(HeaderEvent) != "document.completed" {
		t.Fatalf("unexpected event header %q", gotHeaders.Get(HeaderEvent))
	}
	if gotHeaders.Get(HeaderDelivery) != "dl-1" {
		t.Fatalf("unexpected delivery header %q", gotHeaders.Get(HeaderDelivery))
	}
	if gotHeaders.Get(HeaderRetry) != "" {
		t.Fatalf("first attempt must not carry retry header, got %q", gotHeaders.Get(HeaderRetry))
	}
	if err := VerifySignature("whsec_secret", gotBody, gotHeaders.Get(HeaderSignature)); err != nil {
		t.Fatalf("receiver-side signature verification failed: %v", err)
	}
}

func TestSenderMarksRetryAttempts(t *testing.T) {
	var retryHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		retryHeader = r.Header.Get(HeaderRetry)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := core.Webhook{ID: "wh-1", URL: server.URL, Secret: "whsec_secret"}
	delivery := core.WebhookDelivery{ID: "dl-1", EventType: "document.signed", Payload: []byte(`{}`), Attempts: 2}

	result := NewSender().Send(context.Background(), webhook, delivery, 2)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if retryHeader != "2" {
		t.Fatalf("expected retry header 2, got %q", retryHeader)
	}
}

func TestSenderRecordsFailureAndTruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer server.Close()

	webhook := core.Webhook{ID: "wh-1", URL: server.URL, Secret: "whsec_secret"}
	delivery := core.WebhookDelivery{ID: "dl-1", EventType: "document.signed", Payload: []byte(`{}`)}

	result := NewSender().Send(context.Background(), webhook, delivery, 0)
	if result.Success {
		t.Fatal("expected failure on 500")
	}
	if result.ResponseCode != http.StatusInternalServerError {
		t.Fatalf("unexpected response code %d", result.ResponseCode)
	}
	if len(result.ResponseBody) != 1000 {
		t.Fatalf("expected body truncated to 1000 chars, got %d", len(result.ResponseBody))
	}
	if result.Err == "" {
		t.Fatal("expected recorded error for non-2xx response")
	}
}

func TestSenderReportsTransportError(t *testing.T) {
	webhook := core.Webhook{ID: "wh-1", URL: "http://127.0.0.1:1", Secret: "whsec_secret"}
	delivery := core.WebhookDelivery{ID: "dl-1", EventType: "document.signed", Payload: []byte(`{}`)}

	result := NewSender().Send(context.Background(), webhook, delivery, 0)
	if result.Success {
		t.Fatal("expected transport failure")
	}
	if result.Err == "" {
		t.Fatal("expected recorded transport error")
	}
	if result.ResponseCode != 0 {
		t.Fatalf("expected zero response code, got %d", result.ResponseCode)
	}
}
