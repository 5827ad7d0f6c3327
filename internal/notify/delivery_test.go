package notify

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakePlayer struct {
	plays int
	err   error
}

func (p *fakePlayer) Play() error {
	p.plays++
	return p.err
}

type fakeNotifier struct {
	perm       Permission
	afterAsk   Permission
	asked      int
	shows      []bool // requireInteraction per Show call
	showErr    error
	showTitles []string
}

func (n *fakeNotifier) Permission() Permission { return n.perm }

func (n *fakeNotifier) RequestPermission() Permission {
	n.asked++
	return n.afterAsk
}

func (n *fakeNotifier) Show(title, _ string, requireInteraction bool) error {
	n.shows = append(n.shows, requireInteraction)
	n.showTitles = append(n.showTitles, title)
	return n.showErr
}

func TestSoundDeliverer_DisabledBySettings(t *testing.T) {
	p := &fakePlayer{}
	d := &SoundDeliverer{Player: p, Log: zerolog.Nop()}

	d.Deliver(&Record{}, Settings{SoundEnabled: false})
	if p.plays != 0 {
		t.Fatalf("expected no play, got %d", p.plays)
	}
}

func TestSoundDeliverer_PlaysWhenEnabled(t *testing.T) {
	p := &fakePlayer{}
	var buf bytes.Buffer
	d := &SoundDeliverer{Player: p, Fallback: &buf, Log: zerolog.Nop()}

	d.Deliver(&Record{}, Settings{SoundEnabled: true})
	if p.plays != 1 {
		t.Fatalf("expected 1 play, got %d", p.plays)
	}
	if buf.Len() != 0 {
		t.Fatal("no fallback expected on success")
	}
}

func TestSoundDeliverer_FallsBackToBell(t *testing.T) {
	p := &fakePlayer{err: errors.New("autoplay blocked")}
	var buf bytes.Buffer
	d := &SoundDeliverer{Player: p, Fallback: &buf, Log: zerolog.Nop()}

	d.Deliver(&Record{}, Settings{SoundEnabled: true})
	if buf.String() != "\a" {
		t.Fatalf("expected bell fallback, got %q", buf.String())
	}
}

func TestDesktopDeliverer_DisabledBySettings(t *testing.T) {
	n := &fakeNotifier{perm: PermissionGranted}
	d := &DesktopDeliverer{Notifier: n, Log: zerolog.Nop()}

	d.Deliver(&Record{Title: "T"}, Settings{DesktopNotifications: false})
	if len(n.shows) != 0 {
		t.Fatal("expected no show when disabled")
	}
}

func TestDesktopDeliverer_GrantedShowsImmediately(t *testing.T) {
	n := &fakeNotifier{perm: PermissionGranted}
	d := &DesktopDeliverer{Notifier: n, Log: zerolog.Nop()}

	d.Deliver(&Record{Title: "T", Priority: PriorityNormal}, Settings{DesktopNotifications: true})
	if n.asked != 0 {
		t.Fatal("must not re-request when already granted")
	}
	if len(n.shows) != 1 || n.shows[0] {
		t.Fatalf("expected one show without requireInteraction, got %v", n.shows)
	}
}

func TestDesktopDeliverer_UndeterminedRequestsThenShows(t *testing.T) {
	n := &fakeNotifier{perm: PermissionDefault, afterAsk: PermissionGranted}
	d := &DesktopDeliverer{Notifier: n, Log: zerolog.Nop()}

	d.Deliver(&Record{Title: "T"}, Settings{DesktopNotifications: true})
	if n.asked != 1 {
		t.Fatalf("expected one permission request, got %d", n.asked)
	}
	if len(n.shows) != 1 {
		t.Fatalf("expected show after grant, got %d", len(n.shows))
	}
}

func TestDesktopDeliverer_DeniedDoesNothing(t *testing.T) {
	n := &fakeNotifier{perm: PermissionDenied}
	d := &DesktopDeliverer{Notifier: n, Log: zerolog.Nop()}

	d.Deliver(&Record{Title: "T"}, Settings{DesktopNotifications: true})
	if n.asked != 0 || len(n.shows) != 0 {
		t.Fatalf("denied permission must be final: asked=%d shows=%d", n.asked, len(n.shows))
	}
}

func TestDesktopDeliverer_RequestDeniedDoesNotShow(t *testing.T) {
	n := &fakeNotifier{perm: PermissionDefault, afterAsk: PermissionDenied}
	d := &DesktopDeliverer{Notifier: n, Log: zerolog.Nop()}

	d.Deliver(&Record{Title: "T"}, Settings{DesktopNotifications: true})
	if len(n.shows) != 0 {
		t.Fatal("expected no show after denial")
	}
}

func TestDesktopDeliverer_UrgentRequiresInteraction(t *testing.T) {
	n := &fakeNotifier{perm: PermissionGranted}
	d := &DesktopDeliverer{Notifier: n, Log: zerolog.Nop()}

	d.Deliver(&Record{Title: "T", Priority: PriorityUrgent}, Settings{DesktopNotifications: true})
	if len(n.shows) != 1 || !n.shows[0] {
		t.Fatalf("urgent must set requireInteraction, got %v", n.shows)
	}
}

func TestDesktopDeliverer_ShowFailureSwallowed(t *testing.T) {
	n := &fakeNotifier{perm: PermissionGranted, showErr: errors.New("boom")}
	d := &DesktopDeliverer{Notifier: n, Log: zerolog.Nop()}

	// Must not panic or propagate.
	d.Deliver(&Record{Title: "T"}, Settings{DesktopNotifications: true})
}

func TestCenter_SideChannelFailureDoesNotAffectStore(t *testing.T) {
	n := &fakeNotifier{perm: PermissionGranted, showErr: errors.New("boom")}
	p := &fakePlayer{err: errors.New("no asset")}
	c := NewCenter(
		WithDeliverer(&SoundDeliverer{Player: p, Log: zerolog.Nop()}),
		WithDeliverer(&DesktopDeliverer{Notifier: n, Log: zerolog.Nop()}),
	)
	defer c.Close()

	rec := c.NotifyInfo("t", "m", nil)
	if rec == nil {
		t.Fatal("add must succeed despite side channel failures")
	}
	if c.Store().UnreadCount() != 1 {
		t.Fatalf("expected unread 1, got %d", c.Store().UnreadCount())
	}
}
