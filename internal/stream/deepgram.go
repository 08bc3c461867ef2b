package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

const defaultDeepgramURL = "wss://api.deepgram.com/v1/listen"

// TranscriptEvent is one recognition result from the live transcriber.
type TranscriptEvent struct {
	Text        string
	Final       bool
	SpeechFinal bool
}

// Transcriber streams raw audio to a speech-to-text backend and yields
// transcript events until closed.
type Transcriber interface {
	SendAudio(data []byte) error
	Results() <-chan TranscriptEvent
	Close() error
}

type deepgramTranscriber struct {
	conn      *websocket.Conn
	results   chan TranscriptEvent
	done      chan struct{}
	closeOnce sync.Once
}

type deepgramMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	// SpeechFinal marks the end of a spoken utterance.
	SpeechFinal bool `json:"speech_final"`
	Channel     struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// DialDeepgram opens a live transcription stream. Language may be empty.
func DialDeepgram(ctx context.Context, apiKey string, endpoint string, language string) (Transcriber, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("deepgram api key is not configured")
	}
	base := strings.TrimSpace(endpoint)
	if base == "" {
		base = defaultDeepgramURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid deepgram url: %w", err)
	}
	q := u.Query()
	q.Set("encoding", "linear16")
	q.Set("sample_rate", "16000")
	q.Set("interim_results", "true")
	q.Set("diarize", "true")
	if language != "" {
		q.Set("language", language)
	}
	u.RawQuery = q.Encode()
	header := http.Header{}
	header.Set("Authorization", "Token "+apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("dial deepgram: %w", err)
	}
	t := &deepgramTranscriber{
		conn:    conn,
		results: make(chan TranscriptEvent, 16),
		done:    make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

func (t *deepgramTranscriber) SendAudio(data []byte) error {
	return t.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (t *deepgramTranscriber) Results() <-chan TranscriptEvent {
	return t.results
}

func (t *deepgramTranscriber) Close() error {
	var err error
	t.closeOnce.Do(func() {
		// Unblocks a reader parked on the results channel; closing the socket
		// only unblocks one parked in ReadJSON.
		close(t.done)
		// CloseStream tells the server to flush pending results before the
		// socket goes away.
		_ = t.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
		err = t.conn.Close()
	})
	return err
}

func (t *deepgramTranscriber) readLoop() {
	defer close(t.results)
	for {
		var msg deepgramMessage
		if err := t.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != "Results" || len(msg.Channel.Alternatives) == 0 {
			continue
		}
		text := strings.TrimSpace(msg.Channel.Alternatives[0].Transcript)
		if text == "" && !msg.SpeechFinal {
			continue
		}
		select {
		case t.results <- TranscriptEvent{
			Text:        text,
			Final:       msg.IsFinal,
			SpeechFinal: msg.SpeechFinal,
		}:
		case <-t.done:
			return
		}
	}
}
