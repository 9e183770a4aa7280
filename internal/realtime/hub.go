package realtime

import (
	"sync"
	"time"
)

// Topic names mirror the store collections clients observe.
const (
	TopicGrievances    = "grievances"
	TopicWorkerReqs    = "workerRequests"
	TopicWorkerSignups = "workerSignupRequests"
)

// GrievanceTopic is the per-grievance topic, for clients watching one
// grievance's detail/timeline.
func GrievanceTopic(grievanceID string) string {
	return TopicGrievances + "/" + grievanceID
}

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is one change notification pushed to all subscribers of a topic.
type Event struct {
	Topic   string      `json:"topic"`
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// Subscriber receives events on C for the topics it subscribed to. Events
// are dropped rather than blocking the hub when the subscriber is slow.
type Subscriber struct {
	C      chan Event
	topics []string
}

// Hub fans change events out to websocket subscribers. Services publish
// after a successful commit; each client session subscribes on attach and
// must unsubscribe on teardown.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new subscriber for the given topics. The channel
// holds up to buffer undelivered events.
func (h *Hub) Subscribe(topics []string, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &Subscriber{
		C:      make(chan Event, buffer),
		topics: topics,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = make(map[*Subscriber]struct{})
		}
		h.subs[t][sub] = struct{}{}
	}
	return sub
}

// Unsubscribe removes the subscriber from all its topics and closes its
// channel. Safe to call once per subscriber.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range sub.topics {
		delete(h.subs[t], sub)
		if len(h.subs[t]) == 0 {
			delete(h.subs, t)
		}
	}
	close(sub.C)
}

// Publish delivers the event to every subscriber of its topic. Slow
// subscribers miss events instead of blocking the publisher.
func (h *Hub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[event.Topic] {
		select {
		case sub.C <- event:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers a topic currently has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
