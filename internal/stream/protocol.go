package stream

import "encoding/json"

// Client-to-server frame types.
const (
	FrameTypeClientReady = "client-ready"
	FrameTypeAudio       = "audio"
	FrameTypeText        = "text"
)

// Server-to-client frame types.
const (
	FrameTypeBotReady      = "bot-ready"
	FrameTypeTranscript    = "transcript"
	FrameTypeBotResponse   = "bot-response"
	FrameTypeServerMessage = "server-message"
	FrameTypeError         = "error"
)

// ClientFrame is one JSON message from the connected client.
type ClientFrame struct {
	Type string `json:"type"`
	// Data carries base64-encoded PCM for audio frames.
	Data string `json:"data,omitempty"`
	Text string `json:"text,omitempty"`
}

// ServerFrame is one JSON message pushed to the client.
type ServerFrame struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Final   bool            `json:"final,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// KnowledgeChunk is one retrieval hit pushed out of band alongside the bot
// response.
type KnowledgeChunk struct {
	ID       string      `json:"id"`
	Text     string      `json:"text"`
	Metadata interface{} `json:"metadata"`
}

// KnowledgeMessage is the payload of a search_knowledge_base server-message.
type KnowledgeMessage struct {
	Type   string           `json:"type"`
	Chunks []KnowledgeChunk `json:"chunks"`
}
