package domain

import (
	"strings"
	"time"
)

const (
	SystemEntity  = "system"
	SectorsEntity = "sectors"

	ActionConnected = "connected"
	ActionPong      = "pong"
	ActionSnapshot  = "snapshot"
	ActionError     = "error"

	TopicSystemConnected = SystemEntity + "." + ActionConnected
	TopicSystemPong      = SystemEntity + "." + ActionPong
	TopicSectorsSnapshot = SectorsEntity + "." + ActionSnapshot
	TopicSectorsError    = SectorsEntity + "." + ActionError
)

// Message is the envelope shared by websocket pushes and broker events.
type Message struct {
	Topic      string            `json:"topic"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// HospitalID resolves the hospital a message targets: ResourceID first, then
// metadata.hospitalId.
func (m *Message) HospitalID() string {
	if m == nil {
		return ""
	}
	if id := strings.TrimSpace(m.ResourceID); id != "" {
		return id
	}
	if m.Metadata != nil {
		return strings.TrimSpace(m.Metadata["hospitalId"])
	}
	return ""
}

// BuildSnapshotMessage wraps a snapshot for subscribers of its hospital.
func BuildSnapshotMessage(snapshot *HospitalSectorSnapshot, at time.Time) *Message {
	if snapshot == nil {
		return nil
	}
	metadata := map[string]string{"hospitalId": snapshot.ID}
	if snapshot.SnapshotID != "" {
		metadata["snapshotId"] = snapshot.SnapshotID
	}
	return &Message{
		Topic:      TopicSectorsSnapshot,
		Entity:     SectorsEntity,
		Action:     ActionSnapshot,
		ResourceID: snapshot.ID,
		Metadata:   metadata,
		Data:       snapshot,
		Timestamp:  at.UTC(),
	}
}

// BuildErrorMessage reports a failed request to a single hospital's subscribers.
func BuildErrorMessage(hospitalID, action, reason string, at time.Time) *Message {
	metadata := map[string]string{"hospitalId": strings.TrimSpace(hospitalID), "action": action}
	if strings.TrimSpace(reason) != "" {
		metadata["reason"] = reason
	}
	return &Message{
		Topic:      TopicSectorsError,
		Entity:     SectorsEntity,
		Action:     ActionError,
		ResourceID: strings.TrimSpace(hospitalID),
		Metadata:   metadata,
		Data:       map[string]string{"error": reason},
		Timestamp:  at.UTC(),
	}
}
