// Package events carries record-change notices between consoles over NATS,
// so that a list open in one console refreshes when another console changes
// the same resource.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TopicAll matches every record-change topic.
const TopicAll = "placement.>"

// Topic returns the subject change notices for resource are published on.
func Topic(resource string) string {
	return "placement." + resource + ".changed"
}

// Op is the kind of mutation a notice reports.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// RecordChanged reports a successful mutation of one record.
type RecordChanged struct {
	Resource string    `json:"resource"`
	Op       Op        `json:"op"`
	ID       string    `json:"id,omitempty"`
	Origin   string    `json:"origin"`
	At       time.Time `json:"at"`
}

// DecodeRecordChanged parses a payload received from a Subscriber.
func DecodeRecordChanged(data []byte) (RecordChanged, error) {
	var ev RecordChanged
	if err := json.Unmarshal(data, &ev); err != nil {
		return RecordChanged{}, fmt.Errorf("decoding record change: %w", err)
	}
	return ev, nil
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
