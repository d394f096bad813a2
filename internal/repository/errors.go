// Package repository defines the entity store for gigs and bids. The
// sentinel errors below let handlers distinguish failure modes and map
// them to HTTP statuses without inspecting driver errors.
package repository

import "errors"

// ErrGigNotFound indicates the referenced gig does not exist.
var ErrGigNotFound = errors.New("gig not found")

// ErrBidNotFound indicates the referenced bid does not exist.
var ErrBidNotFound = errors.New("bid not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, or when a gig owner tries to bid on their
// own gig. Handlers should translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrGigNotOpen is returned when a bid targets a gig that has left the
// open state. Checked inside the insert transaction, never via a
// separate prior read.
var ErrGigNotOpen = errors.New("gig is no longer accepting bids")

// ErrGigAssigned is returned when the open-to-assigned transition finds
// the gig already assigned. This is the verdict of a lost hire race;
// the caller must re-fetch state, the outcome is final.
var ErrGigAssigned = errors.New("gig already assigned")

// ErrDuplicateBid is returned when a freelancer already has a bid on
// the gig. Enforced by the unique key on (gig_id, freelancer_id).
var ErrDuplicateBid = errors.New("bid already placed on this gig")

// ErrTransient marks store-level contention (deadlock, lock wait
// timeout) that is safe to retry with fresh reads.
var ErrTransient = errors.New("transient storage conflict")
