// Package queue defines the broker events published after a hire
// commits, plus the background consumer that turns them into an audit
// log. Broker delivery is decoupled from the hire transaction and is
// best-effort from the caller's point of view.
package queue

// GigAssignedEvent is published to the gig.assigned queue when a hire
// transaction commits. It carries enough information for downstream
// consumers to log, notify or feed analytics without querying the
// primary database.
type GigAssignedEvent struct {
	GigID             uint64   `json:"gig_id"`
	GigTitle          string   `json:"gig_title"`
	OwnerID           uint64   `json:"owner_id"`
	HiredBidID        uint64   `json:"hired_bid_id"`
	HiredFreelancerID uint64   `json:"hired_freelancer_id"`
	PriceCents        int64    `json:"price_cents"`
	RejectedBidIDs    []uint64 `json:"rejected_bid_ids"`
	AssignedAt        string   `json:"assigned_at"`
}
