package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// SyncKind names what a calendar event is created for.
type SyncKind string

const (
	KindTravel      SyncKind = "travel"
	KindMaintenance SyncKind = "maintenance"
)

// CalendarSyncMessage asks the worker to create a Google Calendar event for
// a stored record on behalf of a user.
type CalendarSyncMessage struct {
	Kind        SyncKind  `json:"kind"`
	UserID      string    `json:"userId"`
	EntityID    string    `json:"entityId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	TimeZone    string    `json:"timeZone,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

var errIncompleteMessage = errors.New("calendar sync message missing kind, user or entity")

// NewCalendarSyncMessage stamps the message with the current time.
func NewCalendarSyncMessage(kind SyncKind, userID, entityID, title string, start, end time.Time) *CalendarSyncMessage {
	return &CalendarSyncMessage{
		Kind:      kind,
		UserID:    userID,
		EntityID:  entityID,
		Title:     title,
		StartTime: start,
		EndTime:   end,
		Timestamp: time.Now(),
	}
}

func (m *CalendarSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CalendarSyncMessageFromJSON decodes and checks the required fields.
func CalendarSyncMessageFromJSON(data []byte) (*CalendarSyncMessage, error) {
	var msg CalendarSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.UserID == "" || msg.EntityID == "" {
		return nil, errIncompleteMessage
	}
	return &msg, nil
}
