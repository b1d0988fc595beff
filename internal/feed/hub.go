package feed

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/colonysim/colony/internal/core/event"
	"go.uber.org/zap"
)

// Frame is the JSON envelope written to every subscriber.
type Frame struct {
	Kind string          `json:"kind"`
	Tick uint64          `json:"tick"`
	Data json.RawMessage `json:"data"`
}

// Hub fans encoded frames out to subscriber channels. A slow subscriber loses
// frames instead of stalling the tick goroutine.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan []byte
	nextID      uint64
	queueSize   int
	dropped     atomic.Uint64
	log         *zap.Logger
}

func NewHub(queueSize int, log *zap.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Hub{
		subscribers: make(map[uint64]chan []byte),
		queueSize:   queueSize,
		log:         log,
	}
}

// Register creates a subscriber channel.
func (h *Hub) Register() (uint64, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan []byte, h.queueSize)
	h.subscribers[h.nextID] = ch
	return h.nextID, ch
}

// Unregister closes and removes a subscriber.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
}

// Broadcast sends msg to every subscriber without blocking.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Publish encodes ev as a frame and broadcasts it. Suitable as a bus catch-all handler.
func (h *Hub) Publish(ev event.Event) {
	if h.SubscriberCount() == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("feed encode failed", zap.String("kind", ev.Kind()), zap.Error(err))
		return
	}
	f := Frame{Kind: ev.Kind(), Data: data}
	if t, ok := ev.(event.Timed); ok {
		f.Tick = t.At()
	}
	msg, err := json.Marshal(f)
	if err != nil {
		h.log.Error("feed encode failed", zap.String("kind", ev.Kind()), zap.Error(err))
		return
	}
	h.Broadcast(msg)
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns how many frames were discarded for full subscriber queues.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }
