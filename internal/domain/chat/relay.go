package chat

import (
	"encoding/json"
	"fmt"
)

// RelayKind tags a broadcast frame with the mutation it carries
type RelayKind string

const (
	RelayInsert RelayKind = "insert"
	RelayUpdate RelayKind = "update"
	RelayDelete RelayKind = "delete"
)

// RelayFrame is the payload published on a workspace chat channel.
// Insert and update frames carry the full wire row; delete frames
// carry only the message id.
type RelayFrame struct {
	Kind      RelayKind       `json:"kind"`
	MessageID string          `json:"message_id"`
	Row       json.RawMessage `json:"row,omitempty"`
}

// NewInsertFrame builds a frame announcing a new message
func NewInsertFrame(msg LocalMessage) RelayFrame {
	return RelayFrame{Kind: RelayInsert, MessageID: msg.ID, Row: msg.EncodeRow()}
}

// NewUpdateFrame builds a frame announcing an edit
func NewUpdateFrame(msg LocalMessage) RelayFrame {
	return RelayFrame{Kind: RelayUpdate, MessageID: msg.ID, Row: msg.EncodeRow()}
}

// NewDeleteFrame builds a frame announcing a removal
func NewDeleteFrame(messageID string) RelayFrame {
	return RelayFrame{Kind: RelayDelete, MessageID: messageID}
}

// Encode renders the frame for publishing
func (f RelayFrame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFrame parses a published frame. Frames with an unknown kind or
// no message id are rejected so a bad publisher cannot poison readers.
func DecodeFrame(data []byte) (RelayFrame, error) {
	var f RelayFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return RelayFrame{}, fmt.Errorf("malformed relay frame: %w", err)
	}
	switch f.Kind {
	case RelayInsert, RelayUpdate, RelayDelete:
	default:
		return RelayFrame{}, fmt.Errorf("unknown relay frame kind %q", f.Kind)
	}
	if f.MessageID == "" {
		return RelayFrame{}, fmt.Errorf("relay frame missing message id")
	}
	return f, nil
}
