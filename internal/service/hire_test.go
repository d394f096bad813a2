package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-market/internal/model"
	"github.com/iliyamo/gig-market/internal/queue"
	"github.com/iliyamo/gig-market/internal/realtime"
	"github.com/iliyamo/gig-market/internal/repository"
)

// recordingNotifier captures every notification for assertions.
type recordingNotifier struct {
	mu         sync.Mutex
	notified   []notifiedEvent
	broadcasts []string
}

type notifiedEvent struct {
	UserID  uint64
	Event   string
	Payload any
}

func (n *recordingNotifier) NotifyUser(userID uint64, event string, payload any) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, notifiedEvent{UserID: userID, Event: event, Payload: payload})
	return true
}

func (n *recordingNotifier) Broadcast(event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, event)
}

func (n *recordingNotifier) eventsFor(userID uint64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var events []string
	for _, e := range n.notified {
		if e.UserID == userID {
			events = append(events, e.Event)
		}
	}
	return events
}

// recordingPublisher captures published assignment events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.GigAssignedEvent
}

func (p *recordingPublisher) PublishGigAssigned(_ context.Context, ev queue.GigAssignedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// flakyStore fails AssignGig with a transient error a fixed number of
// times before delegating to the embedded store.
type flakyStore struct {
	*repository.MemoryStore
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *flakyStore) AssignGig(ctx context.Context, gigID, bidID uint64) (*repository.HireOutcome, error) {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("%w: simulated deadlock", repository.ErrTransient)
	}
	return s.MemoryStore.AssignGig(ctx, gigID, bidID)
}

type hireFixture struct {
	store     *repository.MemoryStore
	notifier  *recordingNotifier
	publisher *recordingPublisher
	svc       *HireService
	gig       *model.Gig
	bid1      *model.Bid // freelancer 2, 400.00
	bid2      *model.Bid // freelancer 3, 450.00
}

func newHireFixture(t *testing.T) *hireFixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}

	gig := &model.Gig{OwnerID: 1, Title: "Design a logo", Description: "desc", BudgetCents: 50_000}
	require.NoError(t, store.CreateGig(ctx, gig))

	bid1 := &model.Bid{GigID: gig.ID, FreelancerID: 2, Message: "I can do it", PriceCents: 40_000}
	_, err := store.CreateBid(ctx, bid1)
	require.NoError(t, err)
	bid2 := &model.Bid{GigID: gig.ID, FreelancerID: 3, Message: "Pick me", PriceCents: 45_000}
	_, err = store.CreateBid(ctx, bid2)
	require.NoError(t, err)

	return &hireFixture{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		svc:       NewHireService(store, notifier, publisher),
		gig:       gig,
		bid1:      bid1,
		bid2:      bid2,
	}
}

func TestHire_Success(t *testing.T) {
	f := newHireFixture(t)
	ctx := context.Background()

	hired, err := f.svc.Hire(ctx, f.bid2.ID, f.gig.OwnerID)
	require.NoError(t, err)
	require.Equal(t, model.BidStatusHired, hired.Status)

	gig, err := f.store.GigByID(ctx, f.gig.ID)
	require.NoError(t, err)
	require.Equal(t, model.GigStatusAssigned, gig.Status)

	other, err := f.store.BidByID(ctx, f.bid1.ID)
	require.NoError(t, err)
	require.Equal(t, model.BidStatusRejected, other.Status)

	// Winner, owner and rejected bidder each get exactly one event.
	require.Equal(t, []string{realtime.EventHired}, f.notifier.eventsFor(3))
	require.Equal(t, []string{realtime.EventGigUpdated}, f.notifier.eventsFor(1))
	require.Equal(t, []string{realtime.EventGigUpdated}, f.notifier.eventsFor(2))

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	require.Equal(t, f.gig.ID, ev.GigID)
	require.Equal(t, f.bid2.ID, ev.HiredBidID)
	require.Equal(t, uint64(3), ev.HiredFreelancerID)
	require.Equal(t, []uint64{f.bid1.ID}, ev.RejectedBidIDs)
}

func TestHire_NotOwner(t *testing.T) {
	f := newHireFixture(t)

	_, err := f.svc.Hire(context.Background(), f.bid2.ID, 99)
	require.ErrorIs(t, err, repository.ErrForbidden)
	require.Empty(t, f.notifier.notified)
}

func TestHire_BidNotFound(t *testing.T) {
	f := newHireFixture(t)

	_, err := f.svc.Hire(context.Background(), 404, f.gig.OwnerID)
	require.ErrorIs(t, err, repository.ErrBidNotFound)
}

func TestHire_AlreadyAssigned(t *testing.T) {
	f := newHireFixture(t)
	ctx := context.Background()

	_, err := f.svc.Hire(ctx, f.bid2.ID, f.gig.OwnerID)
	require.NoError(t, err)

	_, err = f.svc.Hire(ctx, f.bid1.ID, f.gig.OwnerID)
	require.ErrorIs(t, err, repository.ErrGigAssigned)

	// The losing attempt must not disturb the committed outcome.
	winner, err := f.store.BidByID(ctx, f.bid2.ID)
	require.NoError(t, err)
	require.Equal(t, model.BidStatusHired, winner.Status)
	require.Len(t, f.publisher.events, 1)
}

func TestHire_ConcurrentSingleWinner(t *testing.T) {
	f := newHireFixture(t)
	ctx := context.Background()

	const attempts = 10
	bidIDs := []uint64{f.bid1.ID, f.bid2.ID}

	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(bidID uint64) {
			defer wg.Done()
			_, err := f.svc.Hire(ctx, bidID, f.gig.OwnerID)
			errs <- err
		}(bidIDs[i%len(bidIDs)])
	}
	wg.Wait()
	close(errs)

	var wins int
	for err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, repository.ErrGigAssigned)
		}
	}
	require.Equal(t, 1, wins)
	require.Len(t, f.publisher.events, 1)
}

func TestHire_RetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: repository.NewMemoryStore(), failures: 2}
	notifier := &recordingNotifier{}
	svc := NewHireService(store, notifier, nil)

	gig := &model.Gig{OwnerID: 1, Title: "Gig", Description: "desc", BudgetCents: 1000}
	require.NoError(t, store.CreateGig(ctx, gig))
	bid := &model.Bid{GigID: gig.ID, FreelancerID: 2, Message: "hi", PriceCents: 900}
	_, err := store.CreateBid(ctx, bid)
	require.NoError(t, err)

	hired, err := svc.Hire(ctx, bid.ID, gig.OwnerID)
	require.NoError(t, err)
	require.Equal(t, model.BidStatusHired, hired.Status)
	require.Equal(t, 3, store.calls)
}

func TestHire_GivesUpAfterRetryLimit(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: repository.NewMemoryStore(), failures: hireRetryLimit}
	svc := NewHireService(store, &recordingNotifier{}, nil)

	gig := &model.Gig{OwnerID: 1, Title: "Gig", Description: "desc", BudgetCents: 1000}
	require.NoError(t, store.CreateGig(ctx, gig))
	bid := &model.Bid{GigID: gig.ID, FreelancerID: 2, Message: "hi", PriceCents: 900}
	_, err := store.CreateBid(ctx, bid)
	require.NoError(t, err)

	_, err = svc.Hire(ctx, bid.ID, gig.OwnerID)
	require.ErrorIs(t, err, repository.ErrTransient)
	require.Equal(t, hireRetryLimit, store.calls)

	// Nothing committed, so the gig must still be open.
	got, err := store.GigByID(ctx, gig.ID)
	require.NoError(t, err)
	require.Equal(t, model.GigStatusOpen, got.Status)
}
