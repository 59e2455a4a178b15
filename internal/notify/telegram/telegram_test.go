package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type botRecorder struct {
	mu    sync.Mutex
	paths []string
	forms []map[string]string
}

func (b *botRecorder) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		b.mu.Lock()
		b.paths = append(b.paths, r.URL.Path)
		b.forms = append(b.forms, map[string]string{
			"chat_id": r.PostForm.Get("chat_id"),
			"text":    r.PostForm.Get("text"),
		})
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestNewRequiresTokenAndChat(t *testing.T) {
	t.Parallel()

	_, err := New(Config{ChatID: 1}, nil)
	require.Error(t, err)
	_, err = New(Config{Token: "abc"}, nil)
	require.Error(t, err)
	_, err = New(Config{Token: "abc", ChatID: 1}, nil)
	require.NoError(t, err)
}

func TestNotifyPostsSendMessage(t *testing.T) {
	t.Parallel()

	rec := &botRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, `{"ok":true,"result":{"message_id":7}}`))
	defer srv.Close()

	n, err := New(Config{APIURL: srv.URL + "/", Token: "123:abc", ChatID: 1403125548}, nil)
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), "Processing area Москва (ID: 1)"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, []string{"/bot123:abc/sendMessage"}, rec.paths)
	require.Equal(t, "1403125548", rec.forms[0]["chat_id"])
	require.Equal(t, "Processing area Москва (ID: 1)", rec.forms[0]["text"])
}

func TestNotifyRejected(t *testing.T) {
	t.Parallel()

	rec := &botRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusBadRequest,
		`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	defer srv.Close()

	n, err := New(Config{APIURL: srv.URL, Token: "123:abc", ChatID: 42}, nil)
	require.NoError(t, err)

	err = n.Notify(context.Background(), "hello")
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "chat not found")
}

func TestNotifyUndecodableBody(t *testing.T) {
	t.Parallel()

	rec := &botRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusBadGateway, `<html>bad gateway</html>`))
	defer srv.Close()

	n, err := New(Config{APIURL: srv.URL, Token: "123:abc", ChatID: 42}, nil)
	require.NoError(t, err)

	err = n.Notify(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestNotifyTransportErrorHidesToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	n, err := New(Config{APIURL: base, Token: "secret-token", ChatID: 42}, nil)
	require.NoError(t, err)

	err = n.Notify(context.Background(), "hello")
	require.Error(t, err)
	require.False(t, strings.Contains(err.Error(), "secret-token"), err.Error())
}
