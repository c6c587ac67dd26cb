// Package worker consumes calendar sync requests and creates the events on
// the users' Google calendars.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"financaszen/internal/amqp"
	"financaszen/internal/core"
	"financaszen/internal/google"
	"financaszen/internal/log"
	"financaszen/internal/services"
	"financaszen/internal/storage"
)

// EventScheduler creates an event with a user's stored token.
type EventScheduler interface {
	Schedule(ctx context.Context, userID string, in google.EventInput) (google.CreatedEvent, error)
}

// TravelStore is the part of the travel service the worker needs.
type TravelStore interface {
	Get(ctx context.Context, id string) (core.TravelEvent, error)
	SetCalendarEventID(ctx context.Context, id, calendarEventID string) error
	PendingSync(ctx context.Context) ([]core.TravelEvent, error)
}

// SkipRetryDelay is how long the pending sweep leaves alone a trip that was
// skipped because its owner has no token or the event was rejected.
const SkipRetryDelay = 6 * time.Hour

// CalendarWorker turns CalendarSyncMessages into calendar events.
type CalendarWorker struct {
	scheduler EventScheduler
	travel    TravelStore
	timeZone  string
	batchSize int
	logger    *log.Logger

	// inflight joins the queue consumer and the pending sweep on the same
	// entity so one event is created.
	inflight singleflight.Group

	mu      sync.Mutex
	skipped map[string]time.Time
	now     func() time.Time
}

func NewCalendarWorker(scheduler EventScheduler, travel TravelStore, timeZone string, batchSize int, logger *log.Logger) *CalendarWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if batchSize < 1 {
		batchSize = 10
	}
	return &CalendarWorker{
		scheduler: scheduler,
		travel:    travel,
		timeZone:  timeZone,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
		skipped:   make(map[string]time.Time),
		now:       time.Now,
	}
}

func toEventInput(msg *amqp.CalendarSyncMessage) google.EventInput {
	return google.EventInput{
		Title:       msg.Title,
		Description: msg.Description,
		Start:       msg.StartTime,
		End:         msg.EndTime,
		TimeZone:    msg.TimeZone,
	}
}

// HandleCalendarSync processes one message. Users without a stored token
// and records that no longer exist are acknowledged and skipped; other
// failures are returned so the message is requeued.
func (w *CalendarWorker) HandleCalendarSync(ctx context.Context, msg *amqp.CalendarSyncMessage) error {
	_, err := w.handle(ctx, msg)
	return err
}

// handle runs sync once per entity at a time and reports whether the
// message was acknowledged without creating an event.
func (w *CalendarWorker) handle(ctx context.Context, msg *amqp.CalendarSyncMessage) (bool, error) {
	v, err, _ := w.inflight.Do(string(msg.Kind)+":"+msg.EntityID, func() (any, error) {
		return w.syncOne(ctx, msg)
	})
	skipped, _ := v.(bool)
	return skipped, err
}

func (w *CalendarWorker) syncOne(ctx context.Context, msg *amqp.CalendarSyncMessage) (bool, error) {
	w.logger.InfoContext(ctx, "Processing calendar sync message",
		"kind", msg.Kind,
		log.FieldEntityID, msg.EntityID,
		log.FieldUserID, msg.UserID)

	if msg.Kind == amqp.KindTravel {
		e, err := w.travel.Get(ctx, msg.EntityID)
		if err != nil {
			if isNotFound(err) {
				w.logger.WarnContext(ctx, "Travel event gone, skipping calendar sync", log.FieldEntityID, msg.EntityID)
				return true, nil
			}
			return false, fmt.Errorf("get travel event: %w", err)
		}
		if e.CalendarEventID != "" {
			return true, nil
		}
	}

	ev, err := w.scheduler.Schedule(ctx, msg.UserID, toEventInput(msg))
	if errors.Is(err, google.ErrNoToken) {
		w.logger.WarnContext(ctx, "User has not connected Google Calendar, skipping",
			log.FieldUserID, msg.UserID,
			log.FieldEntityID, msg.EntityID)
		return true, nil
	}
	if isBadEvent(err) {
		w.logger.ErrorContext(ctx, "Calendar event rejected",
			log.FieldEntityID, msg.EntityID,
			log.FieldError, err)
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("create calendar event: %w", err)
	}

	if msg.Kind == amqp.KindTravel {
		if err := w.travel.SetCalendarEventID(ctx, msg.EntityID, ev.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to record calendar event id",
				log.FieldEntityID, msg.EntityID,
				log.FieldEventID, ev.ID,
				log.FieldError, err)
		}
	}

	w.logger.InfoContext(ctx, "Calendar event created",
		log.FieldEntityID, msg.EntityID,
		log.FieldEventID, ev.ID)
	return false, nil
}

// ProcessPending syncs trips whose message was lost. It is the backup for
// the queue and also runs at startup. Trips skipped in an earlier sweep are
// left out of the batch until SkipRetryDelay has passed.
func (w *CalendarWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.travel.PendingSync(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending trips: %w", err)
	}
	pending = w.due(pending)
	if len(pending) == 0 {
		return 0, nil
	}
	if len(pending) > w.batchSize {
		pending = pending[:w.batchSize]
	}
	w.logger.InfoContext(ctx, "Processing pending calendar syncs", "count", len(pending))

	synced := 0
	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		skipped, err := w.handle(ctx, services.TravelEventMessage(e, w.timeZone))
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync pending trip",
				log.FieldEntityID, e.ID,
				log.FieldError, err)
			continue
		}
		if skipped {
			w.markSkipped(e.ID)
			continue
		}
		synced++
	}
	return synced, nil
}

// due drops trips still inside their skip delay and forgets the ones that
// are no longer pending.
func (w *CalendarWorker) due(pending []core.TravelEvent) []core.TravelEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	still := make(map[string]bool, len(pending))
	out := pending[:0]
	for _, e := range pending {
		still[e.ID] = true
		if at, ok := w.skipped[e.ID]; ok && now.Sub(at) < SkipRetryDelay {
			continue
		}
		out = append(out, e)
	}
	for id := range w.skipped {
		if !still[id] {
			delete(w.skipped, id)
		}
	}
	return out
}

func (w *CalendarWorker) markSkipped(id string) {
	w.mu.Lock()
	w.skipped[id] = w.now()
	w.mu.Unlock()
}

func isNotFound(err error) bool { return errors.Is(err, storage.ErrNotFound) }

func isBadEvent(err error) bool {
	return errors.Is(err, google.ErrEventTitle) || errors.Is(err, google.ErrEventTimes) || errors.Is(err, google.ErrTimeZone)
}
