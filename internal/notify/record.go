// Package notify implements the NewFlow notification kernel: an in-process
// store of notification records with derived unread state, typed
// constructors, per-record auto-expiry, best-effort delivery side channels,
// and a reconnecting websocket transport that mirrors server-pushed events
// into the store.
package notify

import (
	"encoding/json"
	"time"
)

// Type classifies a notification. The set is closed; unknown values are
// coerced to TypeInfo at insertion.
type Type string

const (
	TypeSuccess     Type = "success"
	TypeError       Type = "error"
	TypeWarning     Type = "warning"
	TypeInfo        Type = "info"
	TypeAppointment Type = "appointment"
	TypeMedical     Type = "medical"
	TypeSystem      Type = "system"
)

// Valid reports whether t is one of the closed set of notification types.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeError, TypeWarning, TypeInfo, TypeAppointment, TypeMedical, TypeSystem:
		return true
	}
	return false
}

// Priority orders notifications by urgency. The set is closed; unknown
// values are coerced to PriorityNormal at insertion.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is one of the closed set of priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Record is a single notification entry. After creation only the Read flag
// ever changes; every other field is immutable.
type Record struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	Priority   Priority          `json:"priority"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	Read       bool              `json:"read"`
	Persistent bool              `json:"persistent"`
	Actions    []json.RawMessage `json:"actions,omitempty"`
	Data       json.RawMessage   `json:"data,omitempty"`
}

// Input is the caller-supplied portion of a record. Zero-value fields get
// defaults at insertion: a generated ID, PriorityNormal, and the insertion
// timestamp. Timestamp and Read cannot be supplied.
type Input struct {
	ID         string
	Type       Type
	Priority   Priority
	Title      string
	Message    string
	Persistent bool
	Actions    []json.RawMessage
	Data       json.RawMessage
}

// Settings holds the user's delivery preferences. Each flag is independently
// toggleable.
type Settings struct {
	SoundEnabled         bool `json:"sound_enabled"`
	DesktopNotifications bool `json:"desktop_notifications"`
	EmailNotifications   bool `json:"email_notifications"`
	PushNotifications    bool `json:"push_notifications"`
}

// DefaultSettings returns the preferences applied before the user has saved
// any of their own.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:         true,
		DesktopNotifications: true,
		EmailNotifications:   false,
		PushNotifications:    true,
	}
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	SoundEnabled         *bool `json:"sound_enabled,omitempty"`
	DesktopNotifications *bool `json:"desktop_notifications,omitempty"`
	EmailNotifications   *bool `json:"email_notifications,omitempty"`
	PushNotifications    *bool `json:"push_notifications,omitempty"`
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.DesktopNotifications != nil {
		s.DesktopNotifications = *p.DesktopNotifications
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.PushNotifications != nil {
		s.PushNotifications = *p.PushNotifications
	}
	return s
}
