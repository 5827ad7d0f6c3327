package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/newflow/newflow/internal/notify"
	"github.com/newflow/newflow/internal/platform/ws"
)

// Pusher is the slice of the websocket hub the service needs; *ws.Hub
// satisfies it.
type Pusher interface {
	PushNotification(topic string, rec notify.Record)
	PushRead(topic, id string)
	PushDeleted(topic, id string)
}

type Service struct {
	repo Repository
	push Pusher
	log  zerolog.Logger
}

func NewService(repo Repository, push Pusher, log zerolog.Logger) *Service {
	return &Service{repo: repo, push: push, log: log}
}

// SendInput is a request to deliver a notification to a user. Data is an
// opaque caller-supplied JSON payload carried through unchanged.
type SendInput struct {
	UserID     string          `json:"user_id"`
	Type       notify.Type     `json:"type"`
	Priority   notify.Priority `json:"priority"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Persistent bool            `json:"persistent"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Send persists a notification and pushes it to the recipient's topic.
// Unknown type and priority values fall back to the kernel defaults.
func (s *Service) Send(ctx context.Context, senderID string, in SendInput) (*Notification, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !in.Type.Valid() {
		in.Type = notify.TypeInfo
	}
	if !in.Priority.Valid() {
		in.Priority = notify.PriorityNormal
	}

	n := &Notification{
		UserID:     in.UserID,
		Type:       in.Type,
		Priority:   in.Priority,
		Title:      in.Title,
		Message:    in.Message,
		Persistent: in.Persistent,
		Data:       in.Data,
	}
	if senderID != "" {
		n.SenderID = &senderID
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	s.push.PushNotification(ws.UserTopic(in.UserID), n.ToRecord())
	return n, nil
}

// HandleClientSend adapts Send to the hub's inbound frame callback. Topics
// of the form user:<id> address that user; anything else is dropped.
func (s *Service) HandleClientSend(ctx context.Context, senderID, topic string, rec notify.Record) {
	const prefix = "user:"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		s.log.Warn().Str("topic", topic).Msg("dropping client send to non-user topic")
		return
	}
	_, err := s.Send(ctx, senderID, SendInput{
		UserID:     topic[len(prefix):],
		Type:       rec.Type,
		Priority:   rec.Priority,
		Title:      rec.Title,
		Message:    rec.Message,
		Persistent: rec.Persistent,
		Data:       rec.Data,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("sender", senderID).Msg("client send rejected")
	}
}

func (s *Service) List(ctx context.Context, userID string, f Filter, limit, offset int) ([]*Notification, int, error) {
	return s.repo.List(ctx, userID, f, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead marks one notification read and notifies the user's other
// sessions. Unknown ids are a no-op.
func (s *Service) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	changed, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if changed {
		s.push.PushRead(ws.UserTopic(userID), id.String())
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one notification and notifies the user's other sessions.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	removed, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if removed {
		s.push.PushDeleted(ws.UserTopic(userID), id.String())
	}
	return nil
}

func (s *Service) DeleteAll(ctx context.Context, userID string) (int, error) {
	return s.repo.DeleteAll(ctx, userID)
}

func (s *Service) GetSettings(ctx context.Context, userID string) (*Settings, error) {
	return s.repo.GetSettings(ctx, userID)
}

// UpdateSettings applies a partial settings change and returns the merged
// result.
func (s *Service) UpdateSettings(ctx context.Context, userID string, patch notify.SettingsPatch) (*Settings, error) {
	current, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := patch.Apply(notify.Settings{
		SoundEnabled:         current.SoundEnabled,
		DesktopNotifications: current.DesktopNotifications,
		EmailNotifications:   current.EmailNotifications,
		PushNotifications:    current.PushNotifications,
	})
	current.SoundEnabled = merged.SoundEnabled
	current.DesktopNotifications = merged.DesktopNotifications
	current.EmailNotifications = merged.EmailNotifications
	current.PushNotifications = merged.PushNotifications

	if err := s.repo.SaveSettings(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
