package amqp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"expensedash/internal/core"
)

// MutationMessage is the broker payload for a successful save or delete.
type MutationMessage struct {
	Resource  string    `json:"resource"`
	Operation string    `json:"operation"`
	ID        int64     `json:"id,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMutationMessage converts a dashboard event into a broker message.
func NewMutationMessage(ev core.MutationEvent) *MutationMessage {
	ts := time.Now().UTC()
	if ev.Timestamp != 0 {
		ts = time.Unix(ev.Timestamp, 0).UTC()
	}
	return &MutationMessage{
		Resource:  ev.Resource,
		Operation: ev.Operation,
		ID:        ev.ID,
		Message:   ev.Message,
		Timestamp: ts,
	}
}

// RoutingKey is "<resource>.<operation>", e.g. "category.delete".
func (m *MutationMessage) RoutingKey() string {
	return fmt.Sprintf("%s.%s", strings.ToLower(m.Resource), strings.ToLower(m.Operation))
}

// ToJSON converts the message to JSON bytes
func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MutationMessageFromJSON decodes a message body.
func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Resource == "" || msg.Operation == "" {
		return nil, fmt.Errorf("mutation message missing resource or operation")
	}
	return &msg, nil
}
