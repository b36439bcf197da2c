package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventGameRecorded EventType = "game-recorded"
	EventPlayerAdded  EventType = "player-added"
)

// PushMessage is the envelope Pub/Sub wraps around a message delivered to a
// push subscription.
type PushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		ID   string `json:"messageId"`
		Data string `json:"data"`
	} `json:"message"`
}
