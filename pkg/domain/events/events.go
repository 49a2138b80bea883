// Package events defines the messages carried by the event bus.
package events

import (
	"github.com/amirasaad/studentrelief/pkg/domain"
)

// EventType represents the type of an event in the system.
type EventType string

const (
	EventTypeNotificationRequested EventType = "Notification.Requested"
	EventTypeDonationCompleted     EventType = "Donation.Completed"
)

func (t EventType) String() string { return string(t) }

// Event is anything the bus can route by type.
type Event interface {
	Type() string
}

// NotificationRequested asks the notification consumer to persist one
// notification. Each recipient of a broadcast gets its own event.
type NotificationRequested struct {
	Notification domain.Notification `json:"notification"`
}

func (e *NotificationRequested) Type() string { return string(EventTypeNotificationRequested) }

// DonationCompleted is published after a donation's completion has committed.
type DonationCompleted struct {
	Donation domain.Donation `json:"donation"`
}

func (e *DonationCompleted) Type() string { return string(EventTypeDonationCompleted) }

// EventTypes maps wire type names to constructors for decoding bus envelopes.
var EventTypes = map[EventType]func() Event{
	EventTypeNotificationRequested: func() Event { return &NotificationRequested{} },
	EventTypeDonationCompleted:     func() Event { return &DonationCompleted{} },
}
