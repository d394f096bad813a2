package model

import "time"

// Bid status values. A bid starts pending and moves to hired or
// rejected; both are terminal. At most one bid per gig is ever hired.
const (
	BidStatusPending  = "pending"
	BidStatusHired    = "hired"
	BidStatusRejected = "rejected"
)

// Bid is a freelancer's priced proposal against a gig. The pair
// (GigID, FreelancerID) is unique: a freelancer bids on a gig at most
// once.
type Bid struct {
	ID           uint64    `json:"id"`
	GigID        uint64    `json:"gig_id"`
	FreelancerID uint64    `json:"freelancer_id"`
	Message      string    `json:"message"`
	PriceCents   int64     `json:"price_cents"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
