package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGraphSenderSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody outboundMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewGraphSender("tok-123", "15551234", srv.URL)
	if err := s.SendText(context.Background(), "5511999990000", "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}

	if gotPath != "/15551234/messages" {
		t.Errorf("path = %q, want /15551234/messages", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("auth = %q, want Bearer tok-123", gotAuth)
	}
	if gotBody.MessagingProduct != "whatsapp" || gotBody.To != "5511999990000" || gotBody.Text.Body != "hello" {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
}

func TestGraphSenderNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewGraphSender("tok-123", "15551234", srv.URL)
	if err := s.SendText(context.Background(), "5511999990000", "hello"); err == nil {
		t.Fatal("expected an error on a 401 response")
	}
}
