package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/amirasaad/studentrelief/pkg/domain/events"
)

// envelope is the wire format shared by the broker-backed buses.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encodeEnvelope(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("event bus: marshal failed: %w", err)
	}
	b, err := json.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return nil, fmt.Errorf("event bus: envelope marshal failed: %w", err)
	}
	return b, nil
}

// decodeEnvelope rebuilds the typed event. Unknown types return an error
// so the caller can dead-letter the raw message.
func decodeEnvelope(raw []byte) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("event bus: invalid envelope: %w", err)
	}
	constructor, ok := events.EventTypes[events.EventType(env.Type)]
	if !ok {
		return nil, fmt.Errorf("event bus: unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("event bus: invalid %s payload: %w", env.Type, err)
	}
	return evt, nil
}

// partitionKey groups messages whose relative order matters: all
// notifications for one recipient, all updates for one donation.
func partitionKey(e events.Event) string {
	switch v := e.(type) {
	case *events.NotificationRequested:
		return v.Notification.UserID.String()
	case *events.DonationCompleted:
		return v.Donation.ID.String()
	}
	return e.Type()
}
