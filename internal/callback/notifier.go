package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Data is the routing information supplied at admission. LetterID is the
// caller-side correlator: when it is empty no callback is ever sent.
type Data struct {
	LetterID    string
	DownloadURL string
}

type successPayload struct {
	LetterID          string `json:"letter_id"`
	ExtractedText     string `json:"extracted_text"`
	DownloadURL       string `json:"download_url"`
	HasCopyProtection bool   `json:"has_copy_protection"`
	TotalPages        int    `json:"total_pages"`
	Status            string `json:"status"`
}

type failurePayload struct {
	LetterID string `json:"letter_id"`
	Status   string `json:"status"`
	Error    string `json:"error"`
}

// Notifier delivers terminal job outcomes to the configured downstream
// endpoint. Delivery problems are the receiver's to notice: callers log the
// returned error and move on, a lost callback never affects the job.
type Notifier struct {
	url    string
	token  string
	client *http.Client
}

func NewNotifier(url, token string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Notifier{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *Notifier) Success(ctx context.Context, data Data, extractedText string, hasProtection bool, totalPages int) error {
	if data.LetterID == "" {
		return nil
	}
	return n.post(ctx, data.LetterID, successPayload{
		LetterID:          data.LetterID,
		ExtractedText:     extractedText,
		DownloadURL:       data.DownloadURL,
		HasCopyProtection: hasProtection,
		TotalPages:        totalPages,
		Status:            "completed",
	})
}

func (n *Notifier) Failure(ctx context.Context, data Data, errMsg string) error {
	if data.LetterID == "" {
		return nil
	}
	return n.post(ctx, data.LetterID, failurePayload{
		LetterID: data.LetterID,
		Status:   "failed",
		Error:    errMsg,
	})
}

func (n *Notifier) post(ctx context.Context, letterID string, payload interface{}) error {
	if n.url == "" {
		zap.S().Named("callback").Warn("callback url not configured, skipping callback")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending callback for letter_id %s: %w", letterID, err)
	}
	defer resp.Body.Close()

	// Only the status class matters, the response body is not consumed.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback for letter_id %s rejected: %s", letterID, resp.Status)
	}

	zap.S().Named("callback").Infof("callback delivered for letter_id %s", letterID)
	return nil
}
