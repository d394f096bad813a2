package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-market/internal/repository"
	"github.com/iliyamo/gig-market/internal/service"
)

// BidHandler serves bid intake and the hire endpoint.
type BidHandler struct {
	bids *service.BidService
	hire *service.HireService
}

// NewBidHandler constructs a BidHandler.
func NewBidHandler(bids *service.BidService, hire *service.HireService) *BidHandler {
	if bids == nil || hire == nil {
		panic("nil service passed to NewBidHandler")
	}
	return &BidHandler{bids: bids, hire: hire}
}

type createBidRequest struct {
	GigID      uint64 `json:"gig_id"`
	Message    string `json:"message"`
	PriceCents int64  `json:"price_cents"`
}

// Create handles POST /v1/bids. The open-gig check, the self-bid ban
// and the one-bid-per-freelancer rule are enforced atomically at
// insert time; a second bid by the same freelancer on the same gig
// gets 400 regardless of interleaving.
func (h *BidHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	bid, err := h.bids.Submit(c.Request().Context(), req.GigID, userID, req.Message, req.PriceCents)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrGigNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gig not found"})
		case errors.Is(err, repository.ErrGigNotOpen):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "gig is no longer open"})
		case errors.Is(err, repository.ErrDuplicateBid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "you have already bid on this gig"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you cannot bid on your own gig"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not place bid"})
	}
	return c.JSON(http.StatusCreated, bid)
}

// Hire handles PATCH /v1/bids/:id/hire. Exactly one hire per gig can
// succeed; a concurrent or repeated hire on an already assigned gig
// gets 409 and changes nothing.
func (h *BidHandler) Hire(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bidID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bidID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bid id"})
	}

	bid, err := h.hire.Hire(c.Request().Context(), bidID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBidNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bid not found"})
		case errors.Is(err, repository.ErrGigNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gig not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the gig owner may hire"})
		case errors.Is(err, repository.ErrGigAssigned):
			return c.JSON(http.StatusConflict, echo.Map{"error": "gig has already been assigned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not complete hire"})
	}
	return c.JSON(http.StatusOK, bid)
}
