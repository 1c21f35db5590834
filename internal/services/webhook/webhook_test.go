package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

func TestSignPayload(t *testing.T) {
	a := SignPayload([]byte(`{"event":"x"}`), "secret")
	b := SignPayload([]byte(`{"event":"x"}`), "secret")
	c := SignPayload([]byte(`{"event":"x"}`), "other")
	if a != b {
		t.Error("signature is not deterministic")
	}
	if a == c {
		t.Error("different secrets produced the same signature")
	}
	if len(a) != 64 {
		t.Errorf("signature length = %d, want 64 hex chars", len(a))
	}
}

func TestGenerateSecret(t *testing.T) {
	s1, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error = %v", err)
	}
	s2, _ := GenerateSecret()
	if len(s1) != 64 || s1 == s2 {
		t.Errorf("GenerateSecret() = %q, %q", s1, s2)
	}
}

func TestNotifyEvent_SignedDelivery(t *testing.T) {
	got := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- r
		bodies <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := New([]string{srv.URL}, "topsecret")
	s.NotifyEvent(context.Background(), "ingest.job.completed", map[string]string{"job_id": "j1"})

	select {
	case r := <-got:
		body := <-bodies
		if sig := r.Header.Get(SignatureHeader); sig != SignPayload(body, "topsecret") {
			t.Errorf("signature = %q does not match body", sig)
		}
		var payload models.WebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if payload.Event != "ingest.job.completed" {
			t.Errorf("event = %q", payload.Event)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not delivered")
	}
	s.Shutdown()
}

func TestNotifyEvent_RetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New([]string{srv.URL}, "")
	s.retryDelays = []time.Duration{0, time.Millisecond, time.Millisecond, time.Millisecond}
	s.NotifyEvent(context.Background(), "ingest.job.completed", nil)

	// Wait for the delivery goroutine without signalling shutdown first.
	s.wg.Wait()
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("server saw %d attempts, want 3", n)
	}
}

func TestNotifyEvent_NoEndpoints(t *testing.T) {
	s := New(nil, "")
	s.NotifyEvent(context.Background(), "ingest.job.completed", nil)
	s.Shutdown()
}
