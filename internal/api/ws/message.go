package ws

import "encoding/json"

// Event names sent over the push channel.
const (
	EventConnectionEstablished = "connection_established"
	EventProgressUpdate        = "progress_update"
	EventPing                  = "ping"
	EventPong                  = "pong"
)

// Message is the envelope for every frame on the push channel.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewMessage builds a Message with the payload marshaled into Data.
func NewMessage(event string, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: event, Data: raw}, nil
}
