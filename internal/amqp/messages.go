package amqp

import (
	"encoding/json"
	"time"
)

// FileIngestedMessage announces that a statement file was fully ingested and
// archived. Downstream consumers (dashboards, notifiers) subscribe to these.
type FileIngestedMessage struct {
	RunID     string    `json:"run_id"`
	Filename  string    `json:"filename"`
	Worksheet string    `json:"worksheet"`
	Year      int       `json:"year"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewFileIngestedMessage(runID, filename, worksheet string, year, rows int) *FileIngestedMessage {
	return &FileIngestedMessage{
		RunID:     runID,
		Filename:  filename,
		Worksheet: worksheet,
		Year:      year,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *FileIngestedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FileIngestedMessageFromJSON creates a message from JSON bytes
func FileIngestedMessageFromJSON(data []byte) (*FileIngestedMessage, error) {
	var msg FileIngestedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
