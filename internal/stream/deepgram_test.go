package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newFakeDeepgramServer(t *testing.T, resultCount int) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		const msg = `{"type":"Results","is_final":true,"speech_final":false,"channel":{"alternatives":[{"transcript":"segment"}]}}`
		for i := 0; i < resultCount; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Hold the connection until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(func() {
		auth, _ := gotAuth.Load().(string)
		require.Equal(t, "Token test-key", auth)
	})
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestDeepgramTranscriberResults(t *testing.T) {
	server := newFakeDeepgramServer(t, 3)
	defer server.Close()

	tr, err := DialDeepgram(context.Background(), "test-key", wsURL(server), "en")
	require.NoError(t, err)
	defer tr.Close()

	select {
	case ev := <-tr.Results():
		require.Equal(t, "segment", ev.Text)
		require.True(t, ev.Final)
		require.False(t, ev.SpeechFinal)
	case <-time.After(2 * time.Second):
		t.Fatal("no transcript event received")
	}
}

// Close must stop the background reader even when nothing is draining the
// results channel and its buffer is full.
func TestDeepgramTranscriberCloseUnblocksReader(t *testing.T) {
	server := newFakeDeepgramServer(t, 64)
	defer server.Close()

	tr, err := DialDeepgram(context.Background(), "test-key", wsURL(server), "")
	require.NoError(t, err)

	// Give the reader time to fill the buffer and park on an undrained send.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-tr.Results():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("reader did not exit after close")
		}
	}
}

func TestDialDeepgramRequiresAPIKey(t *testing.T) {
	_, err := DialDeepgram(context.Background(), "  ", "", "en")
	require.Error(t, err)
}
