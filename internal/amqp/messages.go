package amqp

import (
	"encoding/json"
	"time"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// SummaryRunMessage reports the outcome of one aggregation run. Consumers
// only need the month and status; a failed run carries the error text.
type SummaryRunMessage struct {
	Month     string    `json:"month"`
	Status    string    `json:"status"`
	Users     int       `json:"users"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSuccessMessage reports a completed run covering the given month.
func NewSuccessMessage(month string, users int) *SummaryRunMessage {
	return &SummaryRunMessage{
		Month:     month,
		Status:    StatusSuccess,
		Users:     users,
		Timestamp: time.Now(),
	}
}

// NewFailureMessage reports a failed run for the given month.
func NewFailureMessage(month string, runErr error) *SummaryRunMessage {
	return &SummaryRunMessage{
		Month:     month,
		Status:    StatusFailure,
		Error:     runErr.Error(),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SummaryRunMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SummaryRunMessageFromJSON creates a message from JSON bytes
func SummaryRunMessageFromJSON(data []byte) (*SummaryRunMessage, error) {
	var msg SummaryRunMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
