package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/gig-market/internal/model"
	"github.com/iliyamo/gig-market/internal/queue"
	"github.com/iliyamo/gig-market/internal/realtime"
	"github.com/iliyamo/gig-market/internal/repository"
)

// Notifier is the slice of the dispatcher the services need. Delivery
// is best-effort; return values exist for tests and logging only.
type Notifier interface {
	NotifyUser(userID uint64, event string, payload any) bool
	Broadcast(event string, payload any)
}

// AssignmentPublisher publishes a durable record of a completed hire
// to the message broker. Implemented by queue.Publisher.
type AssignmentPublisher interface {
	PublishGigAssigned(ctx context.Context, ev queue.GigAssignedEvent) error
}

// hireRetryLimit bounds internal retries of the hire transaction on
// transient store contention. A lost race (ErrGigAssigned) is never
// retried: that outcome is final.
const hireRetryLimit = 3

// HireService coordinates the hiring transaction. The transactional
// core lives in the store's AssignGig; this service adds the friendly
// pre-checks, the bounded retry on transient errors, and the
// post-commit fan-out of notifications and broker events.
type HireService struct {
	store     repository.EntityStore
	notifier  Notifier
	publisher AssignmentPublisher // optional, may be nil
}

// NewHireService creates the hire coordinator. publisher may be nil
// when no broker is configured.
func NewHireService(store repository.EntityStore, notifier Notifier, publisher AssignmentPublisher) *HireService {
	return &HireService{store: store, notifier: notifier, publisher: publisher}
}

// Hire selects bidID as the winning bid of its gig on behalf of
// actorID, who must own the gig. On success the gig is assigned, the
// winner is hired, every other pending bid is rejected, and all
// affected parties are notified. Concurrent hires on the same gig
// resolve to exactly one winner; losers get repository.ErrGigAssigned
// and mutate nothing.
func (s *HireService) Hire(ctx context.Context, bidID, actorID uint64) (*model.Bid, error) {
	var outcome *repository.HireOutcome

	for attempt := 1; ; attempt++ {
		bid, err := s.store.BidByID(ctx, bidID)
		if err != nil {
			return nil, err
		}
		gig, err := s.store.GigByID(ctx, bid.GigID)
		if err != nil {
			return nil, err
		}
		if gig.OwnerID != actorID {
			return nil, repository.ErrForbidden
		}
		// Early rejection with a clear error only. The race itself is
		// decided by the conditional transition inside AssignGig.
		if gig.Status != model.GigStatusOpen {
			return nil, repository.ErrGigAssigned
		}

		outcome, err = s.store.AssignGig(ctx, gig.ID, bid.ID)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrTransient) && attempt < hireRetryLimit {
			log.WithFields(log.Fields{"bid_id": bidID, "attempt": attempt}).
				WithError(err).Warn("hire transaction contention, retrying")
			continue
		}
		return nil, err
	}

	s.afterCommit(outcome)
	return &outcome.Bid, nil
}

// afterCommit runs the side effects of a successful hire. It is called
// exactly once per committed transaction, never for aborted attempts,
// and nothing here can fail the hire itself.
func (s *HireService) afterCommit(out *repository.HireOutcome) {
	gig := out.Gig

	s.notifier.NotifyUser(out.Bid.FreelancerID, realtime.EventHired, realtime.HiredPayload{
		Message:  fmt.Sprintf("You have been hired for %q", gig.Title),
		GigID:    gig.ID,
		GigTitle: gig.Title,
	})
	s.notifier.NotifyUser(gig.OwnerID, realtime.EventGigUpdated, realtime.GigUpdatedPayload{
		GigID:  gig.ID,
		Status: gig.Status,
	})
	for _, rej := range out.Rejected {
		s.notifier.NotifyUser(rej.FreelancerID, realtime.EventGigUpdated, realtime.GigUpdatedPayload{
			GigID:   gig.ID,
			Status:  gig.Status,
			Message: fmt.Sprintf("The gig %q has been assigned to another freelancer.", gig.Title),
		})
	}

	if s.publisher == nil {
		return
	}
	rejectedIDs := make([]uint64, 0, len(out.Rejected))
	for _, rej := range out.Rejected {
		rejectedIDs = append(rejectedIDs, rej.BidID)
	}
	ev := queue.GigAssignedEvent{
		GigID:             gig.ID,
		GigTitle:          gig.Title,
		OwnerID:           gig.OwnerID,
		HiredBidID:        out.Bid.ID,
		HiredFreelancerID: out.Bid.FreelancerID,
		PriceCents:        out.Bid.PriceCents,
		RejectedBidIDs:    rejectedIDs,
		AssignedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishGigAssigned(context.Background(), ev); err != nil {
		log.WithFields(log.Fields{"gig_id": gig.ID}).
			WithError(err).Warn("failed to publish assignment event")
	}
}
