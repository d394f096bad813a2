package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/gig-market/internal/model"
)

// mysqlDupEntry is the MySQL error number for a unique key violation.
const mysqlDupEntry = 1062

// BidRecord mirrors the schema of the bids table. It is used
// internally by the repository when constructing or scanning rows;
// business logic should use the model.Bid type instead.
type BidRecord struct {
	ID           uint64
	GigID        uint64
	FreelancerID uint64
	Message      string
	PriceCents   int64
	Status       string
	CreatedAt    time.Time
}

// Model converts the record into the domain representation.
func (b *BidRecord) Model() model.Bid {
	return model.Bid{
		ID:           b.ID,
		GigID:        b.GigID,
		FreelancerID: b.FreelancerID,
		Message:      b.Message,
		PriceCents:   b.PriceCents,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt.UTC(),
	}
}

// BidRepo manages persistence for bids.
type BidRepo struct {
	db *sql.DB
}

// NewBidRepo constructs a BidRepo bound to the given database.
func NewBidRepo(db *sql.DB) *BidRepo { return &BidRepo{db: db} }

const bidColumns = `id, gig_id, freelancer_id, message, price_cents, status, created_at`

// GetByID retrieves a bid by its ID. It returns ErrBidNotFound when no
// matching row exists.
func (r *BidRepo) GetByID(ctx context.Context, id uint64) (*BidRecord, error) {
	const q = `SELECT ` + bidColumns + ` FROM bids WHERE id = ?`
	var b BidRecord
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.GigID, &b.FreelancerID, &b.Message, &b.PriceCents, &b.Status, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBidNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDTx is GetByID within an existing transaction.
func (r *BidRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*BidRecord, error) {
	const q = `SELECT ` + bidColumns + ` FROM bids WHERE id = ?`
	var b BidRecord
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.GigID, &b.FreelancerID, &b.Message, &b.PriceCents, &b.Status, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBidNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByGig returns all bids for a gig, newest first.
func (r *BidRepo) ListByGig(ctx context.Context, gigID uint64) ([]BidRecord, error) {
	const q = `SELECT ` + bidColumns + ` FROM bids WHERE gig_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, gigID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bids := make([]BidRecord, 0)
	for rows.Next() {
		var b BidRecord
		if err := rows.Scan(&b.ID, &b.GigID, &b.FreelancerID, &b.Message, &b.PriceCents, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

// InsertTx inserts a pending bid within the provided transaction and
// populates the generated ID and DB-default fields on the record. A
// unique key violation on (gig_id, freelancer_id) is reported as
// ErrDuplicateBid. The caller must commit or roll back.
func (r *BidRepo) InsertTx(ctx context.Context, tx *sql.Tx, b *BidRecord) error {
	const q = `INSERT INTO bids (gig_id, freelancer_id, message, price_cents) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.GigID, b.FreelancerID, b.Message, b.PriceCents)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return ErrDuplicateBid
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + bidColumns + ` FROM bids WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(
		&b.ID, &b.GigID, &b.FreelancerID, &b.Message, &b.PriceCents, &b.Status, &b.CreatedAt,
	)
}

// SetStatusTx updates a single bid's status within the provided
// transaction.
func (r *BidRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, bidID uint64, status string) error {
	const q = `UPDATE bids SET status = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, status, bidID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBidNotFound
	}
	return nil
}

// RejectPendingExceptTx moves every pending bid on the gig other than
// excludeBidID to rejected, returning the affected bid and freelancer
// IDs so callers can notify the losers after commit. Runs within the
// provided transaction.
func (r *BidRepo) RejectPendingExceptTx(ctx context.Context, tx *sql.Tx, gigID, excludeBidID uint64) ([]RejectedBid, error) {
	const sel = `SELECT id, freelancer_id FROM bids
	             WHERE gig_id = ? AND id <> ? AND status = ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, sel, gigID, excludeBidID, model.BidStatusPending)
	if err != nil {
		return nil, err
	}
	rejected := make([]RejectedBid, 0)
	for rows.Next() {
		var rb RejectedBid
		if scanErr := rows.Scan(&rb.BidID, &rb.FreelancerID); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		rejected = append(rejected, rb)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(rejected) == 0 {
		return rejected, nil
	}
	const upd = `UPDATE bids SET status = ? WHERE gig_id = ? AND id <> ? AND status = ?`
	if _, err := tx.ExecContext(ctx, upd, model.BidStatusRejected, gigID, excludeBidID, model.BidStatusPending); err != nil {
		return nil, err
	}
	return rejected, nil
}
