package websocket

import (
	"encoding/json"
	"time"

	"github.com/gabaylakad/backend/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypePublishLocation MessageType = "publish_location"

	// Server to Client
	MessageTypeLocationUpdate MessageType = "location_update"
	MessageTypeError          MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// PublishLocationPayload is what a device feed (the simulator, in this
// repository) pushes over the channel. It carries the LocationSample shape.
type PublishLocationPayload struct {
	Sample domain.LocationSample `json:"sample"`
}

// LocationUpdatePayload is broadcast to every connected listener.
type LocationUpdatePayload struct {
	Sample domain.LocationSample `json:"sample"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
