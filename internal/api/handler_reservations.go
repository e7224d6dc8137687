package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shareit-backend/internal/reservation"
)

type createReservationRequest struct {
	ItemID int64      `json:"itemId" binding:"required"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}

// CreateReservation handles POST /reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	requesterID, ok := actorID(c)
	if !ok {
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.Create(c.Request.Context(), requesterID, reservation.CreateInput{
		ItemID: req.ItemID,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// DecideReservation handles PATCH /reservations/{reservation_id}?approved=.
func (h *Handler) DecideReservation(c *gin.Context) {
	ownerID, ok := actorID(c)
	if !ok {
		return
	}
	reservationID, ok := pathID(c, "reservation_id")
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approved must be true or false"})
		return
	}

	view, err := h.svc.Decide(c.Request.Context(), ownerID, reservationID, approved)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetReservation handles GET /reservations/{reservation_id}.
func (h *Handler) GetReservation(c *gin.Context) {
	partyID, ok := actorID(c)
	if !ok {
		return
	}
	reservationID, ok := pathID(c, "reservation_id")
	if !ok {
		return
	}

	view, err := h.svc.Get(c.Request.Context(), partyID, reservationID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListReservations handles GET /reservations: the requester perspective.
func (h *Handler) ListReservations(c *gin.Context) {
	h.listReservations(c, h.svc.ListForRequester)
}

// ListOwnerReservations handles GET /reservations/owner: reservations on
// items the acting party owns.
func (h *Handler) ListOwnerReservations(c *gin.Context) {
	h.listReservations(c, h.svc.ListForOwner)
}

type listCall func(ctx context.Context, partyID int64, state string, from, size int) ([]reservation.View, error)

func (h *Handler) listReservations(c *gin.Context, list listCall) {
	partyID, ok := actorID(c)
	if !ok {
		return
	}

	state := c.DefaultQuery("state", "ALL")
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(h.pageSize)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return
	}

	views, err := list(c.Request.Context(), partyID, state, from, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
