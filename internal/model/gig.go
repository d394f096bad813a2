package model

import "time"

// Gig status values. A gig is created open and transitions to assigned
// exactly once; assigned is terminal.
const (
	GigStatusOpen     = "open"
	GigStatusAssigned = "assigned"
)

// Gig represents a posted work request owned by one user. Budget is
// stored in integer cents to avoid floating point money.
type Gig struct {
	ID          uint64    `json:"id"`
	OwnerID     uint64    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BudgetCents int64     `json:"budget_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
