package notify

import (
	"encoding/json"
	"fmt"
)

// FrameType tags a websocket frame. The set is closed; DecodeFrame rejects
// anything else.
type FrameType string

const (
	// Server -> client
	FrameNotification FrameType = "notification"
	FrameBulk         FrameType = "bulk_notifications"
	FrameRead         FrameType = "notification_read"
	FrameDeleted      FrameType = "notification_deleted"

	// Client -> server
	FrameSend        FrameType = "send_notification"
	FrameSubscribe   FrameType = "subscribe"
	FrameUnsubscribe FrameType = "unsubscribe"
)

// Frame is the JSON envelope exchanged on the push transport. Which payload
// fields are populated depends on Type:
//
//	notification          Notification
//	bulk_notifications    Notifications
//	notification_read     ID
//	notification_deleted  ID
//	send_notification     Notification, Topic
//	subscribe             Topics
//	unsubscribe           Topics
type Frame struct {
	Type          FrameType `json:"type"`
	Notification  *Record   `json:"notification,omitempty"`
	Notifications []Record  `json:"notifications,omitempty"`
	ID            string    `json:"id,omitempty"`
	Topic         string    `json:"topic,omitempty"`
	Topics        []string  `json:"topics,omitempty"`
}

// DecodeFrame parses and validates a wire frame. The frame type must belong
// to the closed set and carry the payload its type requires.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch f.Type {
	case FrameNotification:
		if f.Notification == nil {
			return nil, fmt.Errorf("frame %q missing notification payload", f.Type)
		}
	case FrameBulk:
		if f.Notifications == nil {
			return nil, fmt.Errorf("frame %q missing notifications payload", f.Type)
		}
	case FrameRead, FrameDeleted:
		if f.ID == "" {
			return nil, fmt.Errorf("frame %q missing id", f.Type)
		}
	case FrameSend:
		if f.Notification == nil {
			return nil, fmt.Errorf("frame %q missing notification payload", f.Type)
		}
	case FrameSubscribe, FrameUnsubscribe:
		if len(f.Topics) == 0 {
			return nil, fmt.Errorf("frame %q missing topics", f.Type)
		}
	case "":
		return nil, fmt.Errorf("frame missing type")
	default:
		return nil, fmt.Errorf("unknown frame type %q", f.Type)
	}

	return &f, nil
}

// Encode serializes the frame for the wire.
func (f *Frame) Encode() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

// Inputs converts the frame's notification payloads to store inputs,
// preserving server-assigned ids so read/delete pushes can reference them.
func (f *Frame) Inputs() []Input {
	toInput := func(r Record) Input {
		return Input{
			ID:         r.ID,
			Type:       r.Type,
			Priority:   r.Priority,
			Title:      r.Title,
			Message:    r.Message,
			Persistent: r.Persistent,
			Actions:    r.Actions,
			Data:       r.Data,
		}
	}

	switch f.Type {
	case FrameNotification, FrameSend:
		return []Input{toInput(*f.Notification)}
	case FrameBulk:
		ins := make([]Input, len(f.Notifications))
		for i, r := range f.Notifications {
			ins[i] = toInput(r)
		}
		return ins
	}
	return nil
}
