package repository

import (
	"context"

	"github.com/iliyamo/gig-market/internal/model"
)

// RejectedBid identifies a bid that was moved from pending to rejected
// during a hire, along with the freelancer who placed it so that the
// dispatcher can notify them after commit.
type RejectedBid struct {
	BidID        uint64
	FreelancerID uint64
}

// HireOutcome is the value returned by the transactional core of a
// hire. It is only produced after a successful commit, so callers can
// safely trigger side effects from it.
type HireOutcome struct {
	Gig      model.Gig
	Bid      model.Bid
	Rejected []RejectedBid
}

// EntityStore is the storage contract the services depend on. The SQL
// implementation backs production; MemoryStore backs tests and local
// runs without a database. Implementations must uphold two atomicity
// guarantees:
//
//   - CreateBid enforces the (gig, freelancer) uniqueness and the
//     open-gig check inside a single transactional scope, never via
//     check-then-insert in the caller.
//   - AssignGig decides the hire race with a single conditional
//     open-to-assigned transition; the winner's hired status and the
//     rejection of all other pending bids land in the same
//     all-or-nothing scope, or not at all.
type EntityStore interface {
	CreateGig(ctx context.Context, g *model.Gig) error
	GigByID(ctx context.Context, id uint64) (*model.Gig, error)
	ListOpenGigs(ctx context.Context, search string) ([]model.Gig, error)

	// CreateBid inserts a pending bid and returns the gig it was
	// placed on. Fails with ErrGigNotFound, ErrGigNotOpen,
	// ErrForbidden (owner self-bid) or ErrDuplicateBid.
	CreateBid(ctx context.Context, b *model.Bid) (*model.Gig, error)
	BidByID(ctx context.Context, id uint64) (*model.Bid, error)
	ListBidsByGig(ctx context.Context, gigID uint64) ([]model.Bid, error)

	// AssignGig performs the hire transaction for the given winning
	// bid. Fails with ErrGigAssigned when a concurrent hire won
	// first, in which case nothing was mutated, or ErrTransient when
	// the attempt can be retried from fresh reads.
	AssignGig(ctx context.Context, gigID, bidID uint64) (*HireOutcome, error)
}
