// Package realtime holds the presence registry, the websocket client
// lifecycle and the best-effort notification dispatcher.
package realtime

import "github.com/iliyamo/gig-market/internal/model"

// Event names pushed to connected clients.
const (
	EventGigCreated = "gig_created"
	EventNewBid     = "new_bid"
	EventHired      = "hired_notification"
	EventGigUpdated = "gig_updated"
)

// Event is the wire frame written to a websocket connection.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewBidPayload is sent to a gig owner when a freelancer places a bid.
type NewBidPayload struct {
	Message  string    `json:"message"`
	GigID    uint64    `json:"gig_id"`
	GigTitle string    `json:"gig_title"`
	Bid      model.Bid `json:"bid"`
}

// HiredPayload is sent to the freelancer whose bid was selected.
type HiredPayload struct {
	Message  string `json:"message"`
	GigID    uint64 `json:"gig_id"`
	GigTitle string `json:"gig_title"`
}

// GigUpdatedPayload is sent to the gig owner and to rejected bidders
// after a gig changes state.
type GigUpdatedPayload struct {
	GigID   uint64 `json:"gig_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
