package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-market/internal/model"
	"github.com/iliyamo/gig-market/internal/realtime"
	"github.com/iliyamo/gig-market/internal/repository"
)

func newBidFixture(t *testing.T) (*BidService, *repository.MemoryStore, *recordingNotifier, *model.Gig) {
	t.Helper()
	store := repository.NewMemoryStore()
	notifier := &recordingNotifier{}
	gig := &model.Gig{OwnerID: 1, Title: "Translate a website", Description: "desc", BudgetCents: 20_000}
	require.NoError(t, store.CreateGig(context.Background(), gig))
	return NewBidService(store, notifier), store, notifier, gig
}

func TestSubmit_Validation(t *testing.T) {
	svc, _, _, gig := newBidFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		gigID      uint64
		message    string
		priceCents int64
	}{
		{name: "missing gig id", gigID: 0, message: "hi", priceCents: 100},
		{name: "empty message", gigID: gig.ID, message: "   ", priceCents: 100},
		{name: "zero price", gigID: gig.ID, message: "hi", priceCents: 0},
		{name: "negative price", gigID: gig.ID, message: "hi", priceCents: -5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.gigID, 2, tc.message, tc.priceCents)
			require.ErrorIs(t, err, ErrInvalidBid)
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	svc, store, notifier, gig := newBidFixture(t)
	ctx := context.Background()

	bid, err := svc.Submit(ctx, gig.ID, 2, "  I can start today  ", 18_000)
	require.NoError(t, err)
	require.NotZero(t, bid.ID)
	require.Equal(t, model.BidStatusPending, bid.Status)
	require.Equal(t, "I can start today", bid.Message)

	stored, err := store.BidByID(ctx, bid.ID)
	require.NoError(t, err)
	require.Equal(t, int64(18_000), stored.PriceCents)

	// The gig owner hears about the new bid.
	require.Equal(t, []string{realtime.EventNewBid}, notifier.eventsFor(gig.OwnerID))
}

func TestSubmit_StoreRules(t *testing.T) {
	svc, store, notifier, gig := newBidFixture(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, gig.ID, 2, "first", 10_000)
	require.NoError(t, err)

	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.Submit(ctx, gig.ID, 2, "second", 9_000)
		require.ErrorIs(t, err, repository.ErrDuplicateBid)
	})

	t.Run("self bid", func(t *testing.T) {
		_, err := svc.Submit(ctx, gig.ID, gig.OwnerID, "mine", 1)
		require.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("unknown gig", func(t *testing.T) {
		_, err := svc.Submit(ctx, 999, 2, "hello", 1)
		require.ErrorIs(t, err, repository.ErrGigNotFound)
	})

	t.Run("assigned gig", func(t *testing.T) {
		bid, err := store.BidByID(ctx, 1)
		require.NoError(t, err)
		_, err = store.AssignGig(ctx, gig.ID, bid.ID)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, gig.ID, 3, "too late", 5_000)
		require.ErrorIs(t, err, repository.ErrGigNotOpen)
	})

	// Failed submissions never notify anyone.
	require.Len(t, notifier.eventsFor(gig.OwnerID), 1)
}
