package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/gig-market/internal/model"
)

// MySQL error numbers that indicate contention worth retrying.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// SQLStore is the MySQL-backed EntityStore. It composes GigRepo and
// BidRepo and owns the transaction boundaries for the multi-record
// writes.
type SQLStore struct {
	db   *sql.DB
	Gigs *GigRepo
	Bids *BidRepo
}

// NewSQLStore constructs a SQLStore bound to the given database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, Gigs: NewGigRepo(db), Bids: NewBidRepo(db)}
}

var _ EntityStore = (*SQLStore)(nil)

// markTransient wraps contention errors with ErrTransient so callers
// can retry with fresh reads; other errors pass through unchanged.
func markTransient(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

// CreateGig inserts a new open gig and populates the generated fields.
func (s *SQLStore) CreateGig(ctx context.Context, g *model.Gig) error {
	rec := GigRecord{
		OwnerID:     g.OwnerID,
		Title:       g.Title,
		Description: g.Description,
		BudgetCents: g.BudgetCents,
	}
	if err := s.Gigs.Create(ctx, &rec); err != nil {
		return markTransient(err)
	}
	*g = rec.Model()
	return nil
}

// GigByID returns the gig with the given ID.
func (s *SQLStore) GigByID(ctx context.Context, id uint64) (*model.Gig, error) {
	rec, err := s.Gigs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g := rec.Model()
	return &g, nil
}

// ListOpenGigs returns open gigs, newest first, optionally filtered by
// a title search term.
func (s *SQLStore) ListOpenGigs(ctx context.Context, search string) ([]model.Gig, error) {
	recs, err := s.Gigs.ListByStatus(ctx, model.GigStatusOpen, search)
	if err != nil {
		return nil, err
	}
	gigs := make([]model.Gig, 0, len(recs))
	for i := range recs {
		gigs = append(gigs, recs[i].Model())
	}
	return gigs, nil
}

// BidByID returns the bid with the given ID.
func (s *SQLStore) BidByID(ctx context.Context, id uint64) (*model.Bid, error) {
	rec, err := s.Bids.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b := rec.Model()
	return &b, nil
}

// ListBidsByGig returns all bids for a gig, newest first.
func (s *SQLStore) ListBidsByGig(ctx context.Context, gigID uint64) ([]model.Bid, error) {
	recs, err := s.Bids.ListByGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	bids := make([]model.Bid, 0, len(recs))
	for i := range recs {
		bids = append(bids, recs[i].Model())
	}
	return bids, nil
}

// CreateBid inserts a pending bid. The gig row is locked FOR UPDATE
// inside the same transaction, so the open-gig and ownership checks
// cannot race with a concurrent hire committing in between; the unique
// key on (gig_id, freelancer_id) rejects duplicates atomically at
// insert time.
func (s *SQLStore) CreateBid(ctx context.Context, b *model.Bid) (*model.Gig, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, markTransient(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	gigRec, err := s.Gigs.LockByIDTx(ctx, tx, b.GigID)
	if err != nil {
		return nil, markTransient(err)
	}
	if gigRec.Status != model.GigStatusOpen {
		return nil, ErrGigNotOpen
	}
	if gigRec.OwnerID == b.FreelancerID {
		return nil, ErrForbidden
	}

	bidRec := BidRecord{
		GigID:        b.GigID,
		FreelancerID: b.FreelancerID,
		Message:      b.Message,
		PriceCents:   b.PriceCents,
	}
	if err := s.Bids.InsertTx(ctx, tx, &bidRec); err != nil {
		return nil, markTransient(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, markTransient(err)
	}
	committed = true

	*b = bidRec.Model()
	gig := gigRec.Model()
	return &gig, nil
}

// AssignGig runs the hire transaction: the conditional open-to-assigned
// transition decides the race, then the winner's hired status and the
// rejection of every other pending bid land in the same scope. When
// the conditional transition reports no write, nothing has been
// mutated and ErrGigAssigned is returned.
func (s *SQLStore) AssignGig(ctx context.Context, gigID, bidID uint64) (*HireOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, markTransient(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	won, err := s.Gigs.TransitionStatusTx(ctx, tx, gigID, model.GigStatusOpen, model.GigStatusAssigned)
	if err != nil {
		return nil, markTransient(err)
	}
	if !won {
		return nil, ErrGigAssigned
	}
	if err := s.Bids.SetStatusTx(ctx, tx, bidID, model.BidStatusHired); err != nil {
		return nil, markTransient(err)
	}
	rejected, err := s.Bids.RejectPendingExceptTx(ctx, tx, gigID, bidID)
	if err != nil {
		return nil, markTransient(err)
	}

	gigRec, err := s.Gigs.GetByIDTx(ctx, tx, gigID)
	if err != nil {
		return nil, markTransient(err)
	}
	bidRec, err := s.Bids.GetByIDTx(ctx, tx, bidID)
	if err != nil {
		return nil, markTransient(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, markTransient(err)
	}
	committed = true

	return &HireOutcome{
		Gig:      gigRec.Model(),
		Bid:      bidRec.Model(),
		Rejected: rejected,
	}, nil
}
