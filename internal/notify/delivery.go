package notify

import (
	"io"

	"github.com/rs/zerolog"
)

// Deliverer is a best-effort side channel invoked once per added
// notification. Implementations must never block the caller or let a
// failure escape; delivery failure cannot affect store state.
type Deliverer interface {
	Deliver(rec *Record, settings Settings)
}

// SoundPlayer plays the notification sound asset.
type SoundPlayer interface {
	Play() error
}

// SoundDeliverer plays a short sound for each notification when the user
// has sound enabled. If the player fails (missing asset, platform policy),
// it falls back to writing a terminal bell to fallback.
type SoundDeliverer struct {
	Player   SoundPlayer
	Fallback io.Writer
	Log      zerolog.Logger
}

// Deliver implements Deliverer.
func (d *SoundDeliverer) Deliver(_ *Record, settings Settings) {
	if !settings.SoundEnabled {
		return
	}
	if d.Player != nil {
		if err := d.Player.Play(); err == nil {
			return
		} else {
			d.Log.Debug().Err(err).Msg("notification sound failed, falling back to bell")
		}
	}
	if d.Fallback != nil {
		d.Fallback.Write([]byte("\a"))
	}
}

// Permission is the state of the desktop-notification grant.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// DesktopNotifier abstracts the platform's native notification surface.
type DesktopNotifier interface {
	Permission() Permission
	// RequestPermission blocks until the user answers and returns the
	// resulting permission.
	RequestPermission() Permission
	Show(title, message string, requireInteraction bool) error
}

// DesktopDeliverer shows a native desktop notification when the user has
// them enabled. Undetermined permission triggers a request; denial is
// final. Urgent notifications ask the platform to keep the notification
// visible until dismissed.
type DesktopDeliverer struct {
	Notifier DesktopNotifier
	Log      zerolog.Logger
}

// Deliver implements Deliverer.
func (d *DesktopDeliverer) Deliver(rec *Record, settings Settings) {
	if !settings.DesktopNotifications || d.Notifier == nil {
		return
	}

	perm := d.Notifier.Permission()
	if perm == PermissionDefault {
		perm = d.Notifier.RequestPermission()
	}
	if perm != PermissionGranted {
		return
	}

	requireInteraction := rec.Priority == PriorityUrgent
	if err := d.Notifier.Show(rec.Title, rec.Message, requireInteraction); err != nil {
		d.Log.Debug().Err(err).Str("id", rec.ID).Msg("desktop notification failed")
	}
}
