package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/newflow/newflow/internal/notify"
)

// Notification maps to the notification table. UserID is the recipient.
type Notification struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	UserID     string          `db:"user_id" json:"user_id"`
	SenderID   *string         `db:"sender_id" json:"sender_id,omitempty"`
	Type       notify.Type     `db:"type" json:"type"`
	Priority   notify.Priority `db:"priority" json:"priority"`
	Title      string          `db:"title" json:"title"`
	Message    string          `db:"message" json:"message"`
	Read       bool            `db:"read" json:"read"`
	Persistent bool            `db:"persistent" json:"persistent"`
	Data       json.RawMessage `db:"data" json:"data,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// ToRecord converts a stored notification into the wire/kernel record shape.
func (n *Notification) ToRecord() notify.Record {
	return notify.Record{
		ID:         n.ID.String(),
		Type:       n.Type,
		Priority:   n.Priority,
		Title:      n.Title,
		Message:    n.Message,
		Timestamp:  n.CreatedAt,
		Read:       n.Read,
		Persistent: n.Persistent,
		Data:       n.Data,
	}
}

// Settings maps to the notification_settings table, one row per user.
type Settings struct {
	UserID               string    `db:"user_id" json:"user_id"`
	SoundEnabled         bool      `db:"sound_enabled" json:"sound_enabled"`
	DesktopNotifications bool      `db:"desktop_notifications" json:"desktop_notifications"`
	EmailNotifications   bool      `db:"email_notifications" json:"email_notifications"`
	PushNotifications    bool      `db:"push_notifications" json:"push_notifications"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultSettings mirrors the kernel defaults.
func DefaultSettings(userID string) *Settings {
	d := notify.DefaultSettings()
	return &Settings{
		UserID:               userID,
		SoundEnabled:         d.SoundEnabled,
		DesktopNotifications: d.DesktopNotifications,
		EmailNotifications:   d.EmailNotifications,
		PushNotifications:    d.PushNotifications,
	}
}

// Filter narrows a notification listing.
type Filter struct {
	Type     notify.Type     // zero value matches all
	Priority notify.Priority // zero value matches all
	Status   string          // "", "read" or "unread"
	Search   string          // substring over title and message
	Sort     string          // "newest" (default) or "oldest"
}
