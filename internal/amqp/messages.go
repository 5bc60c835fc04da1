package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ChartRenderMessage asks the worker to regenerate one user's spending chart.
// The worker reads the current transactions itself, so the message carries no data.
type ChartRenderMessage struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChartRenderMessage(userID string) *ChartRenderMessage {
	return &ChartRenderMessage{
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChartRenderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChartRenderMessageFromJSON decodes and validates a message body.
func ChartRenderMessageFromJSON(data []byte) (*ChartRenderMessage, error) {
	var msg ChartRenderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == "" {
		return nil, errors.New("chart render message without user_id")
	}
	return &msg, nil
}
