package notify

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Options carries the caller-overridable fields accepted by the typed
// constructors. Type, timestamp, id, and read state cannot be overridden.
type Options struct {
	Priority   Priority
	Persistent *bool
	Actions    []json.RawMessage
	Data       json.RawMessage
}

// Center composes the store, the auto-expiry scheduler, and the delivery
// side channels behind the named notification actions. It is the single
// write path: components hold a Center handle instead of reaching for
// ambient state.
type Center struct {
	store     *Store
	scheduler *Scheduler
	delivery  []Deliverer
	log       zerolog.Logger
}

// CenterOption configures a Center.
type CenterOption func(*Center)

// WithDeliverer attaches a delivery side channel invoked once per added
// notification.
func WithDeliverer(d Deliverer) CenterOption {
	return func(c *Center) { c.delivery = append(c.delivery, d) }
}

// WithLogger sets the Center's logger.
func WithLogger(log zerolog.Logger) CenterOption {
	return func(c *Center) { c.log = log }
}

// WithExpiry overrides the auto-expiry delay.
func WithExpiry(d time.Duration) CenterOption {
	return func(c *Center) { c.scheduler = NewScheduler(d, nil) }
}

// NewCenter creates a Center around a fresh store.
func NewCenter(opts ...CenterOption) *Center {
	c := &Center{
		store: NewStore(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.scheduler == nil {
		c.scheduler = NewScheduler(DefaultExpiry, nil)
	}
	c.scheduler.remove = func(id string) { c.Remove(id) }
	return c
}

// Store exposes the underlying store for read access.
func (c *Center) Store() *Store { return c.store }

// Add inserts a notification, fires the delivery side channels exactly once,
// and arms its expiry timer. Never fails; a duplicate id is dropped.
func (c *Center) Add(in Input) *Record {
	rec := c.store.Add(in)
	if rec == nil {
		c.log.Debug().Str("id", in.ID).Msg("duplicate notification id ignored")
		return nil
	}

	settings := c.store.Settings()
	for _, d := range c.delivery {
		// Side channels are fire-and-forget; they cannot affect store state.
		d.Deliver(rec, settings)
	}

	c.scheduler.Arm(rec)
	return rec
}

// BulkAdd inserts a server-sourced backfill as one batch. Delivery side
// channels are not fired for backfills; expiry timers are armed per record.
func (c *Center) BulkAdd(ins []Input) []Record {
	recs := c.store.BulkAdd(ins)
	for i := range recs {
		c.scheduler.Arm(&recs[i])
	}
	return recs
}

// Remove deletes a notification and cancels any pending expiry timer.
func (c *Center) Remove(id string) {
	c.scheduler.Cancel(id)
	c.store.Remove(id)
}

// MarkAsRead marks a notification read and cancels its expiry timer, so a
// read notification no longer vanishes on schedule.
func (c *Center) MarkAsRead(id string) {
	if c.store.MarkAsRead(id) {
		c.scheduler.Cancel(id)
	}
}

// MarkAllAsRead marks everything read and cancels all pending expiry timers.
func (c *Center) MarkAllAsRead() {
	c.store.MarkAllAsRead()
	c.scheduler.CancelAll()
}

// ClearAll empties the store and cancels all pending expiry timers.
func (c *Center) ClearAll() {
	c.scheduler.CancelAll()
	c.store.ClearAll()
}

// UpdateSettings merges a partial settings update.
func (c *Center) UpdateSettings(p SettingsPatch) Settings {
	return c.store.UpdateSettings(p)
}

// SetConnected records the transport connection status.
func (c *Center) SetConnected(connected bool) {
	c.store.SetConnected(connected)
}

// Close cancels all pending expiry timers.
func (c *Center) Close() {
	c.scheduler.CancelAll()
}

func (c *Center) typed(typ Type, defaultPriority Priority, forcePersistent bool, title, message string, opts *Options) *Record {
	in := Input{
		Type:       typ,
		Priority:   defaultPriority,
		Title:      title,
		Message:    message,
		Persistent: forcePersistent,
	}
	if opts != nil {
		if opts.Priority.Valid() {
			in.Priority = opts.Priority
		}
		if opts.Persistent != nil && !forcePersistent {
			in.Persistent = *opts.Persistent
		}
		in.Actions = opts.Actions
		in.Data = opts.Data
	}
	return c.Add(in)
}

// NotifySuccess adds a success notification.
func (c *Center) NotifySuccess(title, message string, opts *Options) *Record {
	return c.typed(TypeSuccess, PriorityNormal, false, title, message, opts)
}

// NotifyError adds an error notification. Errors are high priority and
// always persistent.
func (c *Center) NotifyError(title, message string, opts *Options) *Record {
	return c.typed(TypeError, PriorityHigh, true, title, message, opts)
}

// NotifyWarning adds a warning notification.
func (c *Center) NotifyWarning(title, message string, opts *Options) *Record {
	return c.typed(TypeWarning, PriorityNormal, false, title, message, opts)
}

// NotifyInfo adds an informational notification.
func (c *Center) NotifyInfo(title, message string, opts *Options) *Record {
	return c.typed(TypeInfo, PriorityNormal, false, title, message, opts)
}

// NotifyAppointment adds an appointment notification.
func (c *Center) NotifyAppointment(title, message string, opts *Options) *Record {
	return c.typed(TypeAppointment, PriorityHigh, false, title, message, opts)
}

// NotifyMedical adds a medical alert. Medical alerts are urgent and always
// persistent.
func (c *Center) NotifyMedical(title, message string, opts *Options) *Record {
	return c.typed(TypeMedical, PriorityUrgent, true, title, message, opts)
}

// NotifySystem adds a system notification.
func (c *Center) NotifySystem(title, message string, opts *Options) *Record {
	return c.typed(TypeSystem, PriorityLow, false, title, message, opts)
}
