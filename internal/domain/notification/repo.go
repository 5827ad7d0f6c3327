package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	List(ctx context.Context, userID string, f Filter, limit, offset int) ([]*Notification, int, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, userID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)

	GetSettings(ctx context.Context, userID string) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}
