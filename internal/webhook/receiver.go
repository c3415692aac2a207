// Package webhook receives GitHub Actions webhook deliveries and appends
// them to the shared event log. It is the producer side of the event-store
// contract: the MCP tools only ever read the file this package writes.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"

	"pragent/internal/logger"
)

// Receiver handles GitHub webhook requests and persists each delivery.
type Receiver struct {
	eventsFile string
	secret     string
	log        *logger.Logger

	// mu serializes appends; the receiver is the event log's only writer.
	mu sync.Mutex
}

// NewReceiver creates a Receiver that appends to eventsFile. secret is the
// GitHub webhook secret; empty disables signature verification.
func NewReceiver(eventsFile, secret string, log *logger.Logger) *Receiver {
	return &Receiver{
		eventsFile: eventsFile,
		secret:     secret,
		log:        log,
	}
}

// ServeHTTP implements http.Handler for the webhook endpoint.
func (rcv *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	if !rcv.verifySignature(body, r.Header.Get("X-Hub-Signature-256")) {
		rcv.log.Warn("invalid webhook signature")
		http.Error(w, "invalid webhook signature", http.StatusUnauthorized)
		return
	}

	// Reject payloads that are not JSON objects before persisting them:
	// a corrupt entry would poison every later read of the log.
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid webhook payload", http.StatusBadRequest)
		return
	}

	if err := rcv.append(body); err != nil {
		rcv.log.Error("failed to persist event", err)
		http.Error(w, "failed to persist event", http.StatusInternalServerError)
		return
	}

	rcv.log.Infof("stored %s event", r.Header.Get("X-GitHub-Event"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "event stored"})
}

// verifySignature checks the HMAC-SHA256 signature GitHub sends in
// X-Hub-Signature-256. Comparison is constant-time.
func (rcv *Receiver) verifySignature(payload []byte, headerSignature string) bool {
	if rcv.secret == "" {
		rcv.log.Warn("webhook secret not configured, skipping signature verification")
		return true
	}

	if !strings.HasPrefix(headerSignature, "sha256=") {
		return false
	}
	provided := strings.TrimPrefix(headerSignature, "sha256=")

	mac := hmac.New(sha256.New, []byte(rcv.secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(provided), []byte(expected))
}

// append adds one raw event to the end of the log, creating the file on
// first delivery. The log is a single JSON array, rewritten whole: event
// volume is webhook-scale, not stream-scale.
func (rcv *Receiver) append(raw json.RawMessage) error {
	rcv.mu.Lock()
	defer rcv.mu.Unlock()

	var evs []json.RawMessage
	data, err := os.ReadFile(rcv.eventsFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First event, start a fresh log.
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(data, &evs); err != nil {
			return err
		}
	}

	evs = append(evs, raw)

	out, err := json.MarshalIndent(evs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rcv.eventsFile, out, 0644)
}

// Healthz is a trivial liveness endpoint.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
