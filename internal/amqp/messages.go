package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"mycash/internal/ledger"
)

// LedgerChangedMessage announces a committed ledger mutation. Consumers use it
// to drop cached dashboard snapshots; they never need the record itself.
type LedgerChangedMessage struct {
	Kind      ledger.EntityKind `json:"kind"`
	EntityID  string            `json:"entity_id"`
	Version   uint64            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
}

var ErrInvalidMessage = errors.New("invalid ledger changed message")

// NewLedgerChangedMessage creates a message stamped with the current time
func NewLedgerChangedMessage(kind ledger.EntityKind, id string, version uint64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Kind:      kind,
		EntityID:  id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes and checks a message body.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, ErrInvalidMessage
	}
	return &msg, nil
}
