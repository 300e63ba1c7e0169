// Package events carries application-wide signals from the login flow to
// unrelated parts of the application without direct coupling.
package events

import (
	"time"

	"github.com/prefeitura-rio/app-login/internal/models"
)

// Kind identifies an event type
type Kind string

const (
	KindLogin        Kind = "login"
	KindLogout       Kind = "logout"
	KindNotification Kind = "notification"
	KindNavigate     Kind = "navigate"
	KindStateChanged Kind = "state_changed"
)

// Level is the severity of a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Event is one signal on the bus. Fields not relevant to Kind are empty.
type Event struct {
	Kind        Kind      `json:"kind"`
	DeviceID    string    `json:"deviceId,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	Name        string    `json:"name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Level       Level     `json:"level,omitempty"`
	Message     string    `json:"message,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// LoginOccurred is broadcast once per successful verification.
func LoginOccurred(deviceID string, id *models.AuthenticatedIdentity) Event {
	ev := Event{Kind: KindLogin, DeviceID: deviceID, Timestamp: time.Now().UTC()}
	if id != nil {
		ev.UserID = id.ID
		ev.Name = id.Name
		ev.Phone = id.Phone
	}
	return ev
}

// LogoutOccurred is broadcast when an identity is cleared.
func LogoutOccurred(deviceID, userID string) Event {
	return Event{Kind: KindLogout, DeviceID: deviceID, UserID: userID, Timestamp: time.Now().UTC()}
}

// Notification is a transient, non-blocking message for the user.
func Notification(deviceID string, level Level, message string) Event {
	return Event{Kind: KindNotification, DeviceID: deviceID, Level: level, Message: message, Timestamp: time.Now().UTC()}
}

// Navigate asks the host to leave the login surface for destination.
func Navigate(deviceID, destination string) Event {
	return Event{Kind: KindNavigate, DeviceID: deviceID, Destination: destination, Timestamp: time.Now().UTC()}
}

// StateChanged tells observers a flow's snapshot is out of date.
func StateChanged(deviceID string) Event {
	return Event{Kind: KindStateChanged, DeviceID: deviceID, Timestamp: time.Now().UTC()}
}

// Broadcast reports whether the event is meant for other processes too.
func (e Event) Broadcast() bool {
	return e.Kind == KindLogin || e.Kind == KindLogout
}
