package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"LegalChat/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string, tokens TokenSource) *Client {
	t.Helper()
	c, err := NewClient(Options{Endpoint: url, Tokens: tokens})
	require.NoError(t, err)
	return c
}

func TestSend_Success(t *testing.T) {
	var got ChatRequest
	var gotToken, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotToken = r.Header.Get("X-CSRFToken")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "response": "Hi! Source: ` + "`Statute 12`" + `"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, StaticToken("tok-123"))
	history := []session.Message{
		{Role: session.RoleUser, Text: "earlier"},
		{Role: session.RoleSystem, Text: "answer"},
	}

	reply, err := c.Send(context.Background(), "hello", history)
	require.NoError(t, err)
	assert.Equal(t, "Hi! Source: `Statute 12`", reply)
	assert.Equal(t, "hello", got.Message)
	assert.Equal(t, history, got.ChatHistory)
	assert.Equal(t, "tok-123", gotToken)
	assert.Equal(t, "application/json", gotType)
}

func TestSend_EmptyHistoryIsArray(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &raw))
		w.Write([]byte(`{"success": true, "response": "ok"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	_, err := c.Send(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw["chat_history"]))
}

func TestSend_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("CSRF verification failed"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	_, err := c.Send(context.Background(), "hi", nil)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusForbidden, svcErr.StatusCode)
	assert.Equal(t, "CSRF verification failed", svcErr.Body)
	assert.Equal(t, "service", Kind(err))
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
}

func TestSend_LogicalError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"service message", `{"success": false, "error": "Gemini API key not configured"}`, "Gemini API key not configured"},
		{"no message", `{"success": false}`, GenericFailure},
		{"not json", `<html>oops</html>`, GenericFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL, nil)
			_, err := c.Send(context.Background(), "hi", nil)

			var logicErr *LogicalError
			require.True(t, errors.As(err, &logicErr))
			assert.Equal(t, tc.wantMsg, logicErr.Message)
			assert.Equal(t, "logical", Kind(err))
		})
	}
}

func TestSend_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, url, nil)
	_, err := c.Send(context.Background(), "hi", nil)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "send request", netErr.Op)
	assert.Equal(t, "network", Kind(err))
}

func TestSend_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "response": "late"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, server.URL, nil)
	_, err := c.Send(ctx, "hi", nil)
	assert.Equal(t, "network", Kind(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSend_FileTokenIsReread(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csrf")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o600))

	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("X-Custom-Token"))
		w.Write([]byte(`{"success": true, "response": "ok"}`))
	}))
	defer server.Close()

	c, err := NewClient(Options{Endpoint: server.URL, Tokens: FileToken(path), CSRFHeader: "X-Custom-Token"})
	require.NoError(t, err)

	_, err = c.Send(context.Background(), "a", nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("second"), 0o600))
	_, err = c.Send(context.Background(), "b", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, tokens)
}

func TestSend_MissingTokenFile(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", FileToken(filepath.Join(t.TempDir(), "missing")))
	_, err := c.Send(context.Background(), "a", nil)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "read token", netErr.Op)
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
}

func TestLogAttrs(t *testing.T) {
	attrs := LogAttrs(&ServiceError{StatusCode: 500, Body: "boom"})
	assert.Contains(t, attrs, "status")
	assert.Contains(t, attrs, 500)
	assert.Contains(t, attrs, "boom")

	assert.Equal(t, "unknown", Kind(errors.New("other")))
	assert.Equal(t, "success", Kind(nil))
}
