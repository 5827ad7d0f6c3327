package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newflow/newflow/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const notificationCols = `id, user_id, sender_id, type, priority, title, message, read, persistent, data, created_at`

func (r *repoPG) scan(row pgx.Row) (*Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.SenderID, &n.Type, &n.Priority, &n.Title, &n.Message,
		&n.Read, &n.Persistent, &n.Data, &n.CreatedAt)
	return &n, err
}

func (r *repoPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO notification (id, user_id, sender_id, type, priority, title, message, read, persistent, data)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		n.ID, n.UserID, n.SenderID, n.Type, n.Priority, n.Title, n.Message, n.Read, n.Persistent, n.Data).
		Scan(&n.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+notificationCols+` FROM notification WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, userID string, f Filter, limit, offset int) ([]*Notification, int, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	idx := 2

	if f.Type != "" {
		where += fmt.Sprintf(` AND type = $%d`, idx)
		args = append(args, f.Type)
		idx++
	}
	if f.Priority != "" {
		where += fmt.Sprintf(` AND priority = $%d`, idx)
		args = append(args, f.Priority)
		idx++
	}
	switch f.Status {
	case "read":
		where += ` AND read`
	case "unread":
		where += ` AND NOT read`
	}
	if f.Search != "" {
		where += fmt.Sprintf(` AND (title ILIKE $%d OR message ILIKE $%d)`, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	order := `ORDER BY created_at DESC`
	if f.Sort == "oldest" {
		order = `ORDER BY created_at`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM notification `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM notification %s %s LIMIT $%d OFFSET $%d`,
		notificationCols, where, order, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Notification
	for rows.Next() {
		n, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, nil
}

func (r *repoPG) MarkRead(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE notification SET read = TRUE WHERE id = $1 AND user_id = $2 AND NOT read`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) MarkAllRead(ctx context.Context, userID string) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE notification SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) Delete(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM notification WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) DeleteAll(ctx context.Context, userID string) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM notification WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notification WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	return count, err
}

func (r *repoPG) GetSettings(ctx context.Context, userID string) (*Settings, error) {
	var s Settings
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT user_id, sound_enabled, desktop_notifications, email_notifications, push_notifications, updated_at
		FROM notification_settings WHERE user_id = $1`, userID).
		Scan(&s.UserID, &s.SoundEnabled, &s.DesktopNotifications, &s.EmailNotifications, &s.PushNotifications, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) SaveSettings(ctx context.Context, s *Settings) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO notification_settings (user_id, sound_enabled, desktop_notifications, email_notifications, push_notifications)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id) DO UPDATE SET
			sound_enabled = EXCLUDED.sound_enabled,
			desktop_notifications = EXCLUDED.desktop_notifications,
			email_notifications = EXCLUDED.email_notifications,
			push_notifications = EXCLUDED.push_notifications,
			updated_at = NOW()`,
		s.UserID, s.SoundEnabled, s.DesktopNotifications, s.EmailNotifications, s.PushNotifications)
	return err
}
