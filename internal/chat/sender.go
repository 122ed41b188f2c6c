package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers a plain-text message to a phone number.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

const defaultGraphBaseURL = "https://graph.facebook.com/v19.0"

// GraphSender sends messages through the WhatsApp Cloud (Graph) API, keyed
// by a bearer token and a phone-number id.
type GraphSender struct {
	token         string
	phoneNumberID string
	baseURL       string
	client        *http.Client
}

// NewGraphSender creates a sender for the given credentials. baseURL is
// overridable for tests; empty uses the production Graph endpoint.
func NewGraphSender(token, phoneNumberID, baseURL string) *GraphSender {
	if baseURL == "" {
		baseURL = defaultGraphBaseURL
	}
	return &GraphSender{
		token:         token,
		phoneNumberID: phoneNumberID,
		baseURL:       baseURL,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

type outboundMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             outboundText `json:"text"`
}

type outboundText struct {
	Body string `json:"body"`
}

// SendText implements Sender.
func (s *GraphSender) SendText(ctx context.Context, to, body string) error {
	payload := outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             outboundText{Body: body},
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("SendText: marshal: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("SendText: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("SendText: do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("SendText: graph API status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

var _ Sender = (*GraphSender)(nil)
