package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/gig-market/internal/model"
	"github.com/iliyamo/gig-market/internal/realtime"
	"github.com/iliyamo/gig-market/internal/repository"
)

// BidService handles bid intake: validation, the atomic insert, and
// the post-durability notification to the gig owner.
type BidService struct {
	store    repository.EntityStore
	notifier Notifier
}

// NewBidService creates a bid intake service.
func NewBidService(store repository.EntityStore, notifier Notifier) *BidService {
	return &BidService{store: store, notifier: notifier}
}

// Submit places a bid by freelancerID on the given gig. The open-gig
// check, the owner self-bid ban and the one-bid-per-freelancer rule
// are all enforced atomically by the store at insert time; only input
// validation happens here. On success the gig owner is notified with
// a new_bid event.
func (s *BidService) Submit(ctx context.Context, gigID, freelancerID uint64, message string, priceCents int64) (*model.Bid, error) {
	if gigID == 0 {
		return nil, fmt.Errorf("%w: missing gig id", ErrInvalidBid)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidBid)
	}
	if priceCents <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrInvalidBid)
	}

	bid := &model.Bid{
		GigID:        gigID,
		FreelancerID: freelancerID,
		Message:      strings.TrimSpace(message),
		PriceCents:   priceCents,
	}
	gig, err := s.store.CreateBid(ctx, bid)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUser(gig.OwnerID, realtime.EventNewBid, realtime.NewBidPayload{
		Message:  fmt.Sprintf("New bid received for %q", gig.Title),
		GigID:    gig.ID,
		GigTitle: gig.Title,
		Bid:      *bid,
	})
	return bid, nil
}
