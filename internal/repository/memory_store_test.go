package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-market/internal/model"
)

func newOpenGig(t *testing.T, s *MemoryStore, ownerID uint64, title string) *model.Gig {
	t.Helper()
	g := &model.Gig{OwnerID: ownerID, Title: title, Description: "desc", BudgetCents: 50_000}
	require.NoError(t, s.CreateGig(context.Background(), g))
	return g
}

func placeBid(t *testing.T, s *MemoryStore, gigID, freelancerID uint64, priceCents int64) *model.Bid {
	t.Helper()
	b := &model.Bid{GigID: gigID, FreelancerID: freelancerID, Message: "hi", PriceCents: priceCents}
	_, err := s.CreateBid(context.Background(), b)
	require.NoError(t, err)
	return b
}

func TestMemoryStore_CreateGig(t *testing.T) {
	s := NewMemoryStore()
	g := newOpenGig(t, s, 1, "Build a landing page")

	require.NotZero(t, g.ID)
	require.Equal(t, model.GigStatusOpen, g.Status)
	require.False(t, g.CreatedAt.IsZero())

	got, err := s.GigByID(context.Background(), g.ID)
	require.NoError(t, err)
	require.Equal(t, g.Title, got.Title)
}

func TestMemoryStore_GigByID_NotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GigByID(context.Background(), 42)
	require.ErrorIs(t, err, ErrGigNotFound)
}

func TestMemoryStore_ListOpenGigs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := newOpenGig(t, s, 1, "Logo design")
	second := newOpenGig(t, s, 1, "Backend API work")
	assigned := newOpenGig(t, s, 1, "Old gig")
	bid := placeBid(t, s, assigned.ID, 2, 1000)
	_, err := s.AssignGig(ctx, assigned.ID, bid.ID)
	require.NoError(t, err)

	gigs, err := s.ListOpenGigs(ctx, "")
	require.NoError(t, err)
	require.Len(t, gigs, 2)
	// Newest first.
	require.Equal(t, second.ID, gigs[0].ID)
	require.Equal(t, first.ID, gigs[1].ID)

	gigs, err = s.ListOpenGigs(ctx, "logo")
	require.NoError(t, err)
	require.Len(t, gigs, 1)
	require.Equal(t, first.ID, gigs[0].ID)
}

func TestMemoryStore_CreateBid_Rules(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	gig := newOpenGig(t, s, 1, "Gig")

	b := placeBid(t, s, gig.ID, 2, 40_000)
	require.NotZero(t, b.ID)
	require.Equal(t, model.BidStatusPending, b.Status)

	t.Run("duplicate bid", func(t *testing.T) {
		dup := &model.Bid{GigID: gig.ID, FreelancerID: 2, Message: "again", PriceCents: 35_000}
		_, err := s.CreateBid(ctx, dup)
		require.ErrorIs(t, err, ErrDuplicateBid)
	})

	t.Run("owner self-bid", func(t *testing.T) {
		own := &model.Bid{GigID: gig.ID, FreelancerID: 1, Message: "mine", PriceCents: 1}
		_, err := s.CreateBid(ctx, own)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown gig", func(t *testing.T) {
		ghost := &model.Bid{GigID: 999, FreelancerID: 2, Message: "hi", PriceCents: 1}
		_, err := s.CreateBid(ctx, ghost)
		require.ErrorIs(t, err, ErrGigNotFound)
	})

	t.Run("closed gig", func(t *testing.T) {
		_, err := s.AssignGig(ctx, gig.ID, b.ID)
		require.NoError(t, err)

		late := &model.Bid{GigID: gig.ID, FreelancerID: 3, Message: "late", PriceCents: 1}
		_, err = s.CreateBid(ctx, late)
		require.ErrorIs(t, err, ErrGigNotOpen)
	})
}

func TestMemoryStore_AssignGig(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	gig := newOpenGig(t, s, 1, "Gig")
	winner := placeBid(t, s, gig.ID, 2, 45_000)
	loser := placeBid(t, s, gig.ID, 3, 40_000)

	out, err := s.AssignGig(ctx, gig.ID, winner.ID)
	require.NoError(t, err)
	require.Equal(t, model.GigStatusAssigned, out.Gig.Status)
	require.Equal(t, model.BidStatusHired, out.Bid.Status)
	require.Len(t, out.Rejected, 1)
	require.Equal(t, loser.ID, out.Rejected[0].BidID)
	require.Equal(t, uint64(3), out.Rejected[0].FreelancerID)

	got, err := s.BidByID(ctx, loser.ID)
	require.NoError(t, err)
	require.Equal(t, model.BidStatusRejected, got.Status)

	// A second hire attempt fails and mutates nothing.
	_, err = s.AssignGig(ctx, gig.ID, loser.ID)
	require.ErrorIs(t, err, ErrGigAssigned)
	got, err = s.BidByID(ctx, loser.ID)
	require.NoError(t, err)
	require.Equal(t, model.BidStatusRejected, got.Status)
}

func TestMemoryStore_AssignGig_ConcurrentSingleWinner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	gig := newOpenGig(t, s, 1, "Contested gig")

	const bidders = 16
	bidIDs := make([]uint64, 0, bidders)
	for i := 0; i < bidders; i++ {
		b := placeBid(t, s, gig.ID, uint64(100+i), int64(1000*(i+1)))
		bidIDs = append(bidIDs, b.ID)
	}

	var wg sync.WaitGroup
	results := make(chan error, bidders)
	for _, id := range bidIDs {
		wg.Add(1)
		go func(bidID uint64) {
			defer wg.Done()
			_, err := s.AssignGig(ctx, gig.ID, bidID)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, ErrGigAssigned)
			conflicts++
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, bidders-1, conflicts)

	var hired int
	for _, id := range bidIDs {
		b, err := s.BidByID(ctx, id)
		require.NoError(t, err)
		if b.Status == model.BidStatusHired {
			hired++
		} else {
			require.Equal(t, model.BidStatusRejected, b.Status)
		}
	}
	require.Equal(t, 1, hired)
}
