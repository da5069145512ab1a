package amqp

import (
	"encoding/json"
	"time"
)

// Message operations. Sync messages carry only the transaction id; the worker
// fetches the current row from the database before pushing it to the mirror.
const (
	OpSync   = "sync"
	OpDelete = "delete"
)

// TransactionMessage is the envelope for mirror sync traffic.
type TransactionMessage struct {
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncMessage(id string) *TransactionMessage {
	return &TransactionMessage{Op: OpSync, ID: id, Timestamp: time.Now()}
}

func NewDeleteMessage(id string) *TransactionMessage {
	return &TransactionMessage{Op: OpDelete, ID: id, Timestamp: time.Now()}
}

func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
