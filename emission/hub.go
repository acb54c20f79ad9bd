package emission

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind tells subscribers what an Event carries.
type EventKind string

const (
	EventEmit    EventKind = "emit"
	EventCapture EventKind = "capture"
)

// Capture is a frame received by a collector and decoded by the server.
type Capture struct {
	CollectorID string `json:"collector_id"`
	Header      uint16 `json:"header"`
	Command     uint8  `json:"command"`
	Repeat      bool   `json:"repeat,omitempty"`
	ConfigID    string `json:"config_id,omitempty"`
	KeyName     string `json:"key_name,omitempty"`
	KeyLabel    string `json:"key_label,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Event is broadcast to every subscriber of a Hub.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Emit      *Result   `json:"emit,omitempty"`
	Capture   *Capture  `json:"capture,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEmitEvent(r Result) Event {
	return Event{ID: uuid.NewString(), Kind: EventEmit, Emit: &r, Timestamp: r.Timestamp}
}

func NewCaptureEvent(c Capture, at time.Time) Event {
	return Event{ID: uuid.NewString(), Kind: EventCapture, Capture: &c, Timestamp: at}
}

// ErrAlreadySubscribed is returned when a subscriber id is reused.
var ErrAlreadySubscribed = errors.New("already subscribed")

// Hub fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]chan Event
	buffer int
	logger *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[string]chan Event), buffer: buffer, logger: logger}
}

// Subscribe registers id and returns its event channel.
func (h *Hub) Subscribe(id string) (<-chan Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySubscribed, id)
	}
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch
	return ch, nil
}

// Unsubscribe removes id and closes its channel.
func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.subs[id]
	if !ok {
		return fmt.Errorf("subscriber %s not found", id)
	}
	delete(h.subs, id)
	close(ch)
	return nil
}

func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.logger.Warn("subscriber buffer full, dropping event", "subscriber", id, "event", e.ID)
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
