// Package webhook notifies external endpoints when ingestion jobs finish.
//
// Endpoints come from configuration. Each delivery is a signed JSON POST
// retried with backoff; failures are logged and never affect ingestion.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// SignatureHeader carries the hex HMAC-SHA256 of the body.
const SignatureHeader = "X-Webhook-Signature"

// Service handles webhook notification delivery.
type Service struct {
	urls        []string
	secret      string
	client      *http.Client
	retryDelays []time.Duration
	shutdownCh  chan struct{} // Signals pending deliveries to stop
	wg          sync.WaitGroup
	once        sync.Once
}

// New creates a webhook service. With no URLs NotifyEvent is a no-op.
func New(urls []string, secret string) *Service {
	return &Service{
		urls:   urls,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryDelays: []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second},
		shutdownCh:  make(chan struct{}),
	}
}

// Shutdown stops pending retries and waits for in-flight deliveries.
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
	s.wg.Wait()
}

// GenerateSecret creates a random HMAC secret.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SignPayload creates an HMAC-SHA256 signature for a payload.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// NotifyEvent sends the event to every configured endpoint.
// Delivery happens asynchronously with retry logic.
func (s *Service) NotifyEvent(ctx context.Context, event string, data interface{}) {
	if len(s.urls) == 0 {
		return
	}

	payloadJSON, err := json.Marshal(models.WebhookPayload{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("⚠️  Failed to marshal webhook payload: %v", err)
		return
	}

	for _, url := range s.urls {
		s.wg.Add(1)
		go func(url string) {
			defer s.wg.Done()
			s.deliverWithRetry(url, event, payloadJSON)
		}(url)
	}
}

// deliverWithRetry attempts a delivery with increasing delays between
// attempts, giving up on shutdown.
func (s *Service) deliverWithRetry(url, event string, payloadJSON []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var lastErr string
	for attempt := 0; attempt < len(s.retryDelays); attempt++ {
		if attempt > 0 {
			select {
			case <-s.shutdownCh:
				log.Printf("⚠️  Webhook delivery aborted due to shutdown: %s → %s", event, url)
				return
			case <-ctx.Done():
				log.Printf("⚠️  Webhook delivery timed out: %s → %s", event, url)
				return
			case <-time.After(s.retryDelays[attempt]):
			}
		}

		statusCode, err := s.deliver(ctx, url, payloadJSON)
		if err == nil && statusCode >= 200 && statusCode < 300 {
			log.Printf("✅ Webhook delivered: %s → %s (attempt %d)", event, url, attempt+1)
			return
		}

		if err != nil {
			lastErr = err.Error()
		} else {
			lastErr = fmt.Sprintf("HTTP %d", statusCode)
		}
		log.Printf("⚠️  Webhook delivery failed (attempt %d/%d): %s → %s: %s",
			attempt+1, len(s.retryDelays), event, url, lastErr)
	}

	log.Printf("❌ Webhook delivery failed permanently: %s → %s: %s", event, url, lastErr)
}

// deliver sends a single webhook HTTP request.
func (s *Service) deliver(ctx context.Context, url string, payloadJSON []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadJSON))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PlayerTrack-Webhook/1.0")
	if s.secret != "" {
		req.Header.Set(SignatureHeader, SignPayload(payloadJSON, s.secret))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
