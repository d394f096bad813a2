package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/gig-market/internal/model"
)

// MemoryStore is a concurrency-safe in-memory EntityStore. It backs
// unit tests and local runs without a MySQL instance, and upholds the
// same atomicity guarantees as the SQL implementation by serializing
// every operation behind one mutex.
type MemoryStore struct {
	mu        sync.Mutex
	gigs      map[uint64]model.Gig
	bids      map[uint64]model.Bid
	nextGigID uint64
	nextBidID uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		gigs: make(map[uint64]model.Gig),
		bids: make(map[uint64]model.Bid),
	}
}

var _ EntityStore = (*MemoryStore)(nil)

// CreateGig inserts a new open gig and assigns its ID.
func (s *MemoryStore) CreateGig(_ context.Context, g *model.Gig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextGigID++
	g.ID = s.nextGigID
	g.Status = model.GigStatusOpen
	g.CreatedAt = time.Now().UTC()
	s.gigs[g.ID] = *g
	return nil
}

// GigByID returns a copy of the gig with the given ID.
func (s *MemoryStore) GigByID(_ context.Context, id uint64) (*model.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gigs[id]
	if !ok {
		return nil, ErrGigNotFound
	}
	return &g, nil
}

// ListOpenGigs returns open gigs, newest first, optionally filtered by
// a case-insensitive title match.
func (s *MemoryStore) ListOpenGigs(_ context.Context, search string) ([]model.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(search)
	gigs := make([]model.Gig, 0)
	for _, g := range s.gigs {
		if g.Status != model.GigStatusOpen {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(g.Title), needle) {
			continue
		}
		gigs = append(gigs, g)
	}
	sort.Slice(gigs, func(i, j int) bool { return gigs[i].ID > gigs[j].ID })
	return gigs, nil
}

// CreateBid inserts a pending bid, enforcing the open-gig check, the
// owner self-bid ban and the one-bid-per-freelancer rule under the
// store lock so none of them can race.
func (s *MemoryStore) CreateBid(_ context.Context, b *model.Bid) (*model.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gig, ok := s.gigs[b.GigID]
	if !ok {
		return nil, ErrGigNotFound
	}
	if gig.Status != model.GigStatusOpen {
		return nil, ErrGigNotOpen
	}
	if gig.OwnerID == b.FreelancerID {
		return nil, ErrForbidden
	}
	for _, existing := range s.bids {
		if existing.GigID == b.GigID && existing.FreelancerID == b.FreelancerID {
			return nil, ErrDuplicateBid
		}
	}

	s.nextBidID++
	b.ID = s.nextBidID
	b.Status = model.BidStatusPending
	b.CreatedAt = time.Now().UTC()
	s.bids[b.ID] = *b
	return &gig, nil
}

// BidByID returns a copy of the bid with the given ID.
func (s *MemoryStore) BidByID(_ context.Context, id uint64) (*model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bids[id]
	if !ok {
		return nil, ErrBidNotFound
	}
	return &b, nil
}

// ListBidsByGig returns all bids for a gig, newest first.
func (s *MemoryStore) ListBidsByGig(_ context.Context, gigID uint64) ([]model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bids := make([]model.Bid, 0)
	for _, b := range s.bids {
		if b.GigID == gigID {
			bids = append(bids, b)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].ID > bids[j].ID })
	return bids, nil
}

// AssignGig performs the hire transaction under the store lock. The
// open-state check here plays the role of the SQL conditional update:
// exactly one concurrent caller observes open and flips it, everyone
// else gets ErrGigAssigned without mutating anything.
func (s *MemoryStore) AssignGig(_ context.Context, gigID, bidID uint64) (*HireOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gig, ok := s.gigs[gigID]
	if !ok {
		return nil, ErrGigNotFound
	}
	if gig.Status != model.GigStatusOpen {
		return nil, ErrGigAssigned
	}
	winner, ok := s.bids[bidID]
	if !ok {
		return nil, ErrBidNotFound
	}

	gig.Status = model.GigStatusAssigned
	s.gigs[gigID] = gig

	winner.Status = model.BidStatusHired
	s.bids[bidID] = winner

	rejected := make([]RejectedBid, 0)
	for id, b := range s.bids {
		if b.GigID == gigID && id != bidID && b.Status == model.BidStatusPending {
			b.Status = model.BidStatusRejected
			s.bids[id] = b
			rejected = append(rejected, RejectedBid{BidID: id, FreelancerID: b.FreelancerID})
		}
	}

	return &HireOutcome{Gig: gig, Bid: winner, Rejected: rejected}, nil
}
