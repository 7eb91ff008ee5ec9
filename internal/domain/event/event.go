package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names an event stream topic.
type Type string

const (
	TypeTransition           Type = "controller.transition"
	TypeLocksChanged         Type = "lock.changed"
	TypeOpModeChanged        Type = "lock.opmode"
	TypeProvisioningStatus   Type = "provisioning.status"
	TypeProvisioningFailure  Type = "provisioning.failure"
	TypeProvisioningComplete Type = "provisioning.complete"
	TypeSettingChanged       Type = "settings.changed"
)

// Event is one message on the event stream.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      Type            `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// New encodes data into an event of type t.
func New(t Type, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New(),
		Type:      t,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher fans events out to subscribers. Publish never blocks.
type Publisher interface {
	Publish(e *Event)
}

// Client is a connected event stream subscriber.
type Client struct {
	ClientID    string
	UID         *int
	Types       []Type
	ConnectedAt time.Time
	Messages    chan *Event
}

// NewClient creates a subscriber. An empty types list subscribes to everything.
func NewClient(clientID string, uid *int, types []Type) *Client {
	return &Client{
		ClientID:    clientID,
		UID:         uid,
		Types:       types,
		ConnectedAt: time.Now().UTC(),
		Messages:    make(chan *Event, 100),
	}
}

// Wants reports whether the client subscribed to t.
func (c *Client) Wants(t Type) bool {
	if len(c.Types) == 0 {
		return true
	}
	for _, want := range c.Types {
		if want == t {
			return true
		}
	}
	return false
}

func (c *Client) Close() {
	close(c.Messages)
}
