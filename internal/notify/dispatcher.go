package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Result reports the outcome of a delivery. Delivery failure is a value, not
// an error: callers must keep going when a send fails.
type Result struct {
	OK       bool
	Status   int
	Attempts int
	Err      string
}

// Dispatcher posts rendered cards to a webhook endpoint with bounded retries
// and linear backoff. Retried deliveries are not deduplicated downstream;
// at-most-once holds at the trigger level, not the transport level.
type Dispatcher struct {
	client   *http.Client
	attempts int
	backoff  time.Duration

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// NewDispatcher creates a dispatcher with the given retry policy. attempts
// is the total attempt count (not a retry count); backoff is the base delay,
// multiplied by the attempt number between failures.
func NewDispatcher(attempts int, backoff time.Duration) *Dispatcher {
	if attempts <= 0 {
		attempts = 3
	}
	return &Dispatcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		attempts: attempts,
		backoff:  backoff,
		sleep:    time.Sleep,
	}
}

// Send delivers one card message to the endpoint. It retries failed attempts
// up to the configured total, sleeping backoff × attemptNumber between them,
// and returns a failed Result (never an error) after exhaustion.
func (d *Dispatcher) Send(ctx context.Context, endpoint string, msg ChatMessage) Result {
	body, err := json.Marshal(msg)
	if err != nil {
		return Result{OK: false, Err: fmt.Sprintf("failed to encode payload: %v", err)}
	}

	var lastErr string
	for attempt := 1; attempt <= d.attempts; attempt++ {
		status, lastBody, err := d.post(ctx, endpoint, body)
		if err != nil {
			lastErr = err.Error()
		} else if status < 200 || status >= 300 {
			lastErr = fmt.Sprintf("status %d: %s", status, lastBody)
		} else {
			return Result{OK: true, Status: status, Attempts: attempt}
		}

		log.Printf("WARNING: webhook delivery attempt %d/%d failed: %s", attempt, d.attempts, lastErr)
		if attempt < d.attempts {
			d.sleep(d.backoff * time.Duration(attempt))
		}
	}

	return Result{OK: false, Attempts: d.attempts, Err: lastErr}
}

func (d *Dispatcher) post(ctx context.Context, endpoint string, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	// Body is only reported on failure; cap it to keep log lines sane
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return resp.StatusCode, string(respBody), nil
}
