// Package chat implements the WhatsApp integration: webhook decoding,
// free-text transaction extraction through Gemini, the short-lived
// pending-selection sessions used to disambiguate which account or card a
// message posts to, and the outbound message sender.
package chat

import (
	"encoding/json"
	"fmt"
	"io"
)

// WebhookPayload is the inbound WhatsApp Business webhook envelope.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one account-level entry in the envelope.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange carries one field change; only "messages" is relevant here.
type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue holds the inbound messages of a change.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages"`
}

// InboundMessage is a single user message.
type InboundMessage struct {
	From string      `json:"from"`
	ID   string      `json:"id"`
	Type string      `json:"type"`
	Text InboundText `json:"text"`
}

// InboundText is the text body of a message.
type InboundText struct {
	Body string `json:"body"`
}

// DecodePayload reads and decodes a webhook request body.
func DecodePayload(r io.Reader) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("DecodePayload: %w", err)
	}
	return &payload, nil
}

// TextMessages flattens the envelope into (from, body) pairs, skipping
// non-message changes and empty bodies.
func (p *WebhookPayload) TextMessages() []InboundMessage {
	var msgs []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, m := range change.Value.Messages {
				if m.Text.Body == "" {
					continue
				}
				msgs = append(msgs, m)
			}
		}
	}
	return msgs
}
