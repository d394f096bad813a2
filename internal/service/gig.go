package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/gig-market/internal/model"
	"github.com/iliyamo/gig-market/internal/realtime"
	"github.com/iliyamo/gig-market/internal/repository"
)

// GigService covers the gig surface around the core: posting, the open
// feed, details and the owner-only bid listing.
type GigService struct {
	store    repository.EntityStore
	notifier Notifier
}

// NewGigService creates a gig service.
func NewGigService(store repository.EntityStore, notifier Notifier) *GigService {
	return &GigService{store: store, notifier: notifier}
}

// Create posts a new gig owned by ownerID and broadcasts gig_created
// to every connected client once the insert is durable.
func (s *GigService) Create(ctx context.Context, ownerID uint64, title, description string, budgetCents int64) (*model.Gig, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidGig)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidGig)
	}
	if budgetCents <= 0 {
		return nil, fmt.Errorf("%w: budget must be greater than zero", ErrInvalidGig)
	}

	gig := &model.Gig{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(title),
		Description: description,
		BudgetCents: budgetCents,
	}
	if err := s.store.CreateGig(ctx, gig); err != nil {
		return nil, err
	}

	s.notifier.Broadcast(realtime.EventGigCreated, *gig)
	return gig, nil
}

// ListOpen returns the open-gig feed, newest first, optionally
// filtered by a title search term.
func (s *GigService) ListOpen(ctx context.Context, search string) ([]model.Gig, error) {
	return s.store.ListOpenGigs(ctx, search)
}

// Get returns a single gig.
func (s *GigService) Get(ctx context.Context, id uint64) (*model.Gig, error) {
	return s.store.GigByID(ctx, id)
}

// BidsForGig returns all bids on a gig. Only the gig owner may list
// them; anyone else gets repository.ErrForbidden.
func (s *GigService) BidsForGig(ctx context.Context, gigID, actorID uint64) ([]model.Bid, error) {
	gig, err := s.store.GigByID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.OwnerID != actorID {
		return nil, repository.ErrForbidden
	}
	return s.store.ListBidsByGig(ctx, gigID)
}
