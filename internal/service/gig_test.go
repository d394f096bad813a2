package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-market/internal/model"
	"github.com/iliyamo/gig-market/internal/realtime"
	"github.com/iliyamo/gig-market/internal/repository"
)

func TestGigCreate_Validation(t *testing.T) {
	svc := NewGigService(repository.NewMemoryStore(), &recordingNotifier{})
	ctx := context.Background()

	tests := []struct {
		name        string
		title       string
		description string
		budgetCents int64
	}{
		{name: "empty title", title: " ", description: "desc", budgetCents: 100},
		{name: "empty description", title: "t", description: "", budgetCents: 100},
		{name: "zero budget", title: "t", description: "desc", budgetCents: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tc.title, tc.description, tc.budgetCents)
			require.ErrorIs(t, err, ErrInvalidGig)
		})
	}
}

func TestGigCreate_BroadcastsGigCreated(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewGigService(repository.NewMemoryStore(), notifier)

	gig, err := svc.Create(context.Background(), 1, "Write docs", "desc", 30_000)
	require.NoError(t, err)
	require.Equal(t, model.GigStatusOpen, gig.Status)
	require.Equal(t, []string{realtime.EventGigCreated}, notifier.broadcasts)
}

func TestBidsForGig_OwnerOnly(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewGigService(store, &recordingNotifier{})
	ctx := context.Background()

	gig, err := svc.Create(ctx, 1, "Gig", "desc", 1000)
	require.NoError(t, err)
	bid := &model.Bid{GigID: gig.ID, FreelancerID: 2, Message: "hi", PriceCents: 900}
	_, err = store.CreateBid(ctx, bid)
	require.NoError(t, err)

	bids, err := svc.BidsForGig(ctx, gig.ID, 1)
	require.NoError(t, err)
	require.Len(t, bids, 1)

	_, err = svc.BidsForGig(ctx, gig.ID, 2)
	require.ErrorIs(t, err, repository.ErrForbidden)

	_, err = svc.BidsForGig(ctx, 999, 1)
	require.ErrorIs(t, err, repository.ErrGigNotFound)
}
