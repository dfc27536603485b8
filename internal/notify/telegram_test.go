package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTelegramStub(t *testing.T, failSends int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var sends atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"cyclesense","username":"cyclesense_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			attempt := sends.Add(1)
			if attempt <= failSends {
				_, _ = w.Write([]byte(`{"ok":false,"error_code":500,"description":"temporary failure"}`))
				return
			}
			if err := r.ParseForm(); err != nil || r.PostForm.Get("chat_id") != "42" {
				t.Errorf("expected chat_id 42, got %q (%v)", r.PostForm.Get("chat_id"), err)
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &sends
}

func newTestNotifier(t *testing.T, server *httptest.Server) *TelegramNotifier {
	t.Helper()

	notifier, err := NewTelegramNotifier("test-token", TelegramOptions{
		APIEndpoint:    server.URL + "/bot%s/%s",
		HTTPClient:     server.Client(),
		MaxRetries:     3,
		RetryDelayBase: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("create notifier: %v", err)
	}
	return notifier
}

func TestTelegramNotifierSendsMessage(t *testing.T) {
	server, sends := newTelegramStub(t, 0)
	notifier := newTestNotifier(t, server)

	if err := notifier.Notify(context.Background(), "42", "period in 3 days"); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}
	if sends.Load() != 1 {
		t.Fatalf("expected 1 send, got %d", sends.Load())
	}
}

func TestTelegramNotifierRetriesTransientFailures(t *testing.T) {
	server, sends := newTelegramStub(t, 2)
	notifier := newTestNotifier(t, server)

	if err := notifier.Notify(context.Background(), "42", "fertile window starts today"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if sends.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", sends.Load())
	}
}

func TestTelegramNotifierGivesUpAfterMaxRetries(t *testing.T) {
	server, sends := newTelegramStub(t, 10)
	notifier := newTestNotifier(t, server)

	if err := notifier.Notify(context.Background(), "42", "hello"); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if sends.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", sends.Load())
	}
}

func TestTelegramNotifierRejectsInvalidChatID(t *testing.T) {
	server, sends := newTelegramStub(t, 0)
	notifier := newTestNotifier(t, server)

	err := notifier.Notify(context.Background(), "not-a-number", "hello")
	if !errors.Is(err, ErrInvalidChatID) {
		t.Fatalf("expected ErrInvalidChatID, got %v", err)
	}
	if sends.Load() != 0 {
		t.Fatalf("expected no sends, got %d", sends.Load())
	}
}

func TestNewTelegramNotifierRequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewTelegramNotifier(" ", TelegramOptions{}); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
