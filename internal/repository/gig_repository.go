package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/gig-market/internal/model"
)

// GigRepo manages persistence for gigs.
type GigRepo struct {
	db *sql.DB
}

// NewGigRepo constructs a GigRepo bound to the given database.
func NewGigRepo(db *sql.DB) *GigRepo { return &GigRepo{db: db} }

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories.
func (r *GigRepo) DB() *sql.DB { return r.db }

// GigRecord mirrors the schema of the gigs table. It is used
// internally by the repository when constructing or scanning rows;
// business logic should use the model.Gig type instead.
type GigRecord struct {
	ID          uint64
	OwnerID     uint64
	Title       string
	Description string
	BudgetCents int64
	Status      string
	CreatedAt   time.Time
}

// Model converts the record into the domain representation.
func (g *GigRecord) Model() model.Gig {
	return model.Gig{
		ID:          g.ID,
		OwnerID:     g.OwnerID,
		Title:       g.Title,
		Description: g.Description,
		BudgetCents: g.BudgetCents,
		Status:      g.Status,
		CreatedAt:   g.CreatedAt.UTC(),
	}
}

const gigColumns = `id, owner_id, title, description, budget_cents, status, created_at`

// Create inserts a new gig and populates the generated ID and the
// DB-default fields (status, created_at) on the given record.
func (r *GigRepo) Create(ctx context.Context, g *GigRecord) error {
	const q = `INSERT INTO gigs (owner_id, title, description, budget_cents) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, g.OwnerID, g.Title, g.Description, g.BudgetCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	const sel = `SELECT ` + gigColumns + ` FROM gigs WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, g.ID).Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.BudgetCents, &g.Status, &g.CreatedAt,
	)
}

// GetByID retrieves a gig by its ID. It returns ErrGigNotFound when no
// matching row exists.
func (r *GigRepo) GetByID(ctx context.Context, id uint64) (*GigRecord, error) {
	const q = `SELECT ` + gigColumns + ` FROM gigs WHERE id = ?`
	var g GigRecord
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.BudgetCents, &g.Status, &g.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGigNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByIDTx is GetByID within an existing transaction.
func (r *GigRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*GigRecord, error) {
	const q = `SELECT ` + gigColumns + ` FROM gigs WHERE id = ?`
	var g GigRecord
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.BudgetCents, &g.Status, &g.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGigNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// LockByIDTx loads a gig with a FOR UPDATE row lock so that the gig's
// status cannot change for the remainder of the transaction. Bid
// creation uses this to make its open-gig check atomic with the
// insert.
func (r *GigRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*GigRecord, error) {
	const q = `SELECT ` + gigColumns + ` FROM gigs WHERE id = ? FOR UPDATE`
	var g GigRecord
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.BudgetCents, &g.Status, &g.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGigNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListByStatus returns gigs in the given status, newest first. When
// search is non-empty the titles are filtered with a LIKE match.
func (r *GigRepo) ListByStatus(ctx context.Context, status, search string) ([]GigRecord, error) {
	q := `SELECT ` + gigColumns + ` FROM gigs WHERE status = ?`
	args := []interface{}{status}
	if search != "" {
		q += ` AND title LIKE ?`
		args = append(args, "%"+search+"%")
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	gigs := make([]GigRecord, 0)
	for rows.Next() {
		var g GigRecord
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.BudgetCents, &g.Status, &g.CreatedAt); err != nil {
			return nil, err
		}
		gigs = append(gigs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return gigs, nil
}

// TransitionStatusTx atomically sets the gig's status to `to` only if
// the stored status still equals `from`, reporting whether the write
// took effect. This single conditional UPDATE is the race-deciding
// primitive of the hire transaction; it must never be split into a
// read followed by a write.
func (r *GigRepo) TransitionStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) (bool, error) {
	const q = `UPDATE gigs SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
