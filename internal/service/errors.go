// Package service holds the business operations on gigs and bids: gig
// posting, bid intake and the hire transaction coordinator. Services
// depend on the repository.EntityStore contract and trigger realtime
// notifications strictly after their writes are durable.
package service

import "errors"

// Validation errors, detected before any mutation.
var (
	ErrInvalidGig = errors.New("invalid gig")
	ErrInvalidBid = errors.New("invalid bid")
)
