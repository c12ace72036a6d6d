// Package outbox implements the transactional outbox used to publish transfer
// events reliably: the message row commits in the same atomic unit as the ledger
// entry it describes, and a poller drains pending rows afterwards.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/securepay/ledger/internal/domain/transfer"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Message stores one transfer event awaiting publication
type Message struct {
	ID            int64           `json:"id"`
	ReferenceNo   string          `json:"reference_no"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a transfer event into a pending outbox message.
func NewMessage(event *transfer.Event) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		ReferenceNo: event.ReferenceNo,
		Payload:     payload,
		Status:      StatusPending,
		Attempts:    0,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Event extracts the transfer event from the payload
func (m *Message) Event() (*transfer.Event, error) {
	var event transfer.Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
