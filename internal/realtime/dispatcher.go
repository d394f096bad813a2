package realtime

import (
	log "github.com/sirupsen/logrus"
)

// Dispatcher routes named events to connected users through the
// presence registry. Delivery is strictly best-effort: there is no
// queuing, no retry and no persistence, and failures are logged but
// never surfaced to the transactional code paths that trigger them.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher backed by the given registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// NotifyUser delivers an event to the user's current connection and
// reports whether delivery happened. A user without a live connection
// simply does not receive the event.
func (d *Dispatcher) NotifyUser(userID uint64, event string, payload any) bool {
	conn, ok := d.registry.Lookup(userID)
	if !ok {
		log.WithFields(log.Fields{"user_id": userID, "event": event}).
			Debug("notification skipped, user not connected")
		return false
	}
	if err := conn.Deliver(Event{Type: event, Data: payload}); err != nil {
		log.WithFields(log.Fields{
			"user_id": userID,
			"conn_id": conn.ID(),
			"event":   event,
		}).WithError(err).Warn("notification dropped")
		return false
	}
	return true
}

// Broadcast delivers an event to every registered connection. Each
// delivery is independent: one failing or slow connection does not
// block or fail the others.
func (d *Dispatcher) Broadcast(event string, payload any) {
	ev := Event{Type: event, Data: payload}
	d.registry.Range(func(conn Connection) bool {
		if err := conn.Deliver(ev); err != nil {
			log.WithFields(log.Fields{
				"user_id": conn.UserID(),
				"conn_id": conn.ID(),
				"event":   event,
			}).WithError(err).Warn("broadcast delivery dropped")
		}
		return true
	})
}
