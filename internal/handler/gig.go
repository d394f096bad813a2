package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-market/internal/repository"
	"github.com/iliyamo/gig-market/internal/service"
)

// GigHandler serves the gig surface: posting, the public open-gig
// feed, gig details and the owner-only bid listing.
type GigHandler struct {
	gigs *service.GigService
}

// NewGigHandler constructs a GigHandler.
func NewGigHandler(gigs *service.GigService) *GigHandler {
	if gigs == nil {
		panic("nil gig service passed to NewGigHandler")
	}
	return &GigHandler{gigs: gigs}
}

type createGigRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BudgetCents int64  `json:"budget_cents"`
}

// Create handles POST /v1/gigs. The caller becomes the gig owner and
// the gig starts in the open state.
func (h *GigHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createGigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	gig, err := h.gigs.Create(c.Request().Context(), userID, req.Title, req.Description, req.BudgetCents)
	if err != nil {
		if errors.Is(err, service.ErrInvalidGig) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create gig"})
	}
	return c.JSON(http.StatusCreated, gig)
}

// List handles GET /v1/gigs. It returns open gigs newest first and
// accepts an optional ?search= term matched against titles.
func (h *GigHandler) List(c echo.Context) error {
	gigs, err := h.gigs.ListOpen(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list gigs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"gigs": gigs})
}

// Get handles GET /v1/gigs/:id.
func (h *GigHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid gig id"})
	}
	gig, err := h.gigs.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gig not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load gig"})
	}
	return c.JSON(http.StatusOK, gig)
}

// ListBids handles GET /v1/gigs/:id/bids. Only the gig owner may see
// the bids on their gig; anyone else gets 403.
func (h *GigHandler) ListBids(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid gig id"})
	}

	bids, err := h.gigs.BidsForGig(c.Request().Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrGigNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gig not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the gig owner may list bids"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list bids"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bids": bids})
}
