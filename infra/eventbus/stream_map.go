package eventbus

import (
	"fmt"
	"strings"

	"github.com/amirasaad/studentrelief/pkg/domain/events"
)

func streamNameFor(prefix string, eventType events.EventType) string {
	return nameFor(prefix, "events", eventType)
}

// dlqStreamName returns the DLQ stream name for the given event type.
func dlqStreamName(prefix string, eventType events.EventType) string {
	return nameFor(prefix, "dlq", eventType)
}

// groupNameFor returns the Redis consumer group name for the event type.
func groupNameFor(prefix string, eventType events.EventType) string {
	return nameFor(prefix, "group", eventType)
}

// routingKeyFor maps "Notification.Requested" to "notification.requested".
func routingKeyFor(eventType events.EventType) string {
	return strings.ToLower(eventType.String())
}

func nameFor(prefix, kind string, eventType events.EventType) string {
	parts := strings.Split(eventType.String(), ".")
	name := strings.ToLower(eventType.String())
	if len(parts) == 2 {
		name = strings.ToLower(parts[0]) + ":" + strings.ToLower(parts[1])
	}
	if prefix == "" {
		return fmt.Sprintf("%s:%s", kind, name)
	}
	return fmt.Sprintf("%s:%s:%s", prefix, kind, name)
}
