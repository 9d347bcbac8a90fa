package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/swenshares/internal/domain/event"
)

// ErrClosed is returned when dispatching on a closed dispatcher
var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher routes domain events to in-process subscribers
type Dispatcher interface {
	// Subscribe registers a named handler for one or more event types
	Subscribe(name, description string, handler Handler, types ...event.Type)

	// Unsubscribe removes a handler by name and reports whether it existed
	Unsubscribe(eventType event.Type, name string) bool

	// Dispatch runs the handlers in registration order and stops at the first error
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync runs the handlers in the background. The caller's
	// cancellation does not reach them.
	DispatchAsync(ctx context.Context, evt *event.Event)

	// ListHandlers returns registered handlers for an event type
	ListHandlers(eventType event.Type) []HandlerInfo

	// Close stops accepting events and waits for running handlers
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerInfo
	logger   Logger
	timeout  time.Duration

	// life guards closed and every wg.Add against Close
	life   sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// WithHandlerTimeout bounds each async handler run
func WithHandlerTimeout(timeout time.Duration) Option {
	return func(d *eventDispatcher) {
		d.timeout = timeout
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		handlers: make(map[event.Type][]HandlerInfo),
		timeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *eventDispatcher) Subscribe(name, description string, handler Handler, types ...event.Type) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range types {
		d.handlers[t] = append(d.handlers[t], HandlerInfo{
			Name:        name,
			EventType:   t,
			Description: description,
			handler:     handler,
		})
	}

	d.info("Handler registered", "handler_name", name, "event_types", len(types))
}

func (d *eventDispatcher) Unsubscribe(eventType event.Type, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	handlers := d.handlers[eventType]
	filtered := make([]HandlerInfo, 0, len(handlers))
	for _, h := range handlers {
		if h.Name != name {
			filtered = append(filtered, h)
		}
	}
	d.handlers[eventType] = filtered

	removed := len(filtered) != len(handlers)
	if removed {
		d.info("Handler unregistered", "event_type", eventType, "handler_name", name)
	}
	return removed
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.isClosed() {
		return ErrClosed
	}

	for _, info := range d.snapshot(evt.Type) {
		if err := d.safeExecute(ctx, evt, info); err != nil {
			d.error("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", info.Name,
				"error", err,
			)
			return fmt.Errorf("handler %s failed: %w", info.Name, err)
		}
	}
	return nil
}

func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	d.life.RLock()
	if d.closed {
		d.life.RUnlock()
		d.error("Cannot dispatch async event, dispatcher is closed",
			"event_type", evt.Type,
			"event_id", evt.ID,
		)
		return
	}
	handlers := d.snapshot(evt.Type)
	d.wg.Add(len(handlers))
	d.life.RUnlock()

	base := context.WithoutCancel(ctx)
	for _, info := range handlers {
		go func(h HandlerInfo) {
			defer d.wg.Done()

			hctx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()

			if err := d.safeExecute(hctx, evt, h); err != nil {
				d.error("Async handler error",
					"event_type", evt.Type,
					"event_id", evt.ID,
					"handler_name", h.Name,
					"error", err,
				)
			}
		}(info)
	}
}

func (d *eventDispatcher) ListHandlers(eventType event.Type) []HandlerInfo {
	handlers := d.snapshot(eventType)
	for i := range handlers {
		handlers[i].handler = nil
	}
	return handlers
}

func (d *eventDispatcher) Close() error {
	d.life.Lock()
	if d.closed {
		d.life.Unlock()
		return ErrClosed
	}
	d.closed = true
	d.life.Unlock()

	d.wg.Wait()
	d.info("Dispatcher closed")
	return nil
}

func (d *eventDispatcher) isClosed() bool {
	d.life.RLock()
	defer d.life.RUnlock()
	return d.closed
}

func (d *eventDispatcher) snapshot(t event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]HandlerInfo, len(d.handlers[t]))
	copy(out, d.handlers[t])
	return out
}

// safeExecute runs a handler with panic recovery
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return info.handler(ctx, evt)
}

func (d *eventDispatcher) info(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, kv...)
	}
}

func (d *eventDispatcher) error(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, kv...)
	}
}
