package realtime

import "sync"

// Connection is a live, authenticated client connection. Client is the
// websocket implementation; tests substitute their own.
type Connection interface {
	// ID is the unique identifier of this connection.
	ID() string
	// UserID is the authenticated user the connection belongs to.
	UserID() uint64
	// Deliver enqueues an event for the connection. It never blocks;
	// it reports an error when the connection is closed or its send
	// buffer is full.
	Deliver(Event) error
}

// Registry maps each authenticated user to at most one live
// connection. It is built on sync.Map so registrations from unrelated
// users never contend on a registry-wide lock. Entries are ephemeral:
// nothing is persisted and the mapping dies with the connection.
type Registry struct {
	conns sync.Map // uint64 (user ID) -> Connection
}

// NewRegistry creates an empty presence registry. Inject the instance
// wherever presence is needed; there is deliberately no package-level
// singleton.
func NewRegistry() *Registry { return &Registry{} }

// Register makes conn the live connection for its user, replacing any
// previously registered one. Last registration wins: after a
// reconnect, notifications go only to the newest connection.
func (r *Registry) Register(conn Connection) {
	r.conns.Store(conn.UserID(), conn)
}

// Unregister removes the user's mapping only if conn is still the
// registered connection. A stale disconnect event arriving after the
// user has reconnected therefore cannot clear the newer mapping.
// It reports whether the mapping was removed.
func (r *Registry) Unregister(conn Connection) bool {
	return r.conns.CompareAndDelete(conn.UserID(), conn)
}

// Lookup returns the user's current connection, if any.
func (r *Registry) Lookup(userID uint64) (Connection, bool) {
	v, ok := r.conns.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(Connection), true
}

// Range calls fn for every registered connection until fn returns
// false. The snapshot semantics are those of sync.Map.Range.
func (r *Registry) Range(fn func(Connection) bool) {
	r.conns.Range(func(_, v any) bool {
		return fn(v.(Connection))
	})
}
