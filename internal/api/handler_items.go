package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shareit-backend/internal/model"
	"shareit-backend/internal/reservation"
	"shareit-backend/internal/store"
)

type createItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
}

// itemResponse is the item detail view. The last/next reservation entries
// are populated only when the viewer owns the item.
type itemResponse struct {
	model.Item
	LastReservation *reservation.NearestRef `json:"lastReservation"`
	NextReservation *reservation.NearestRef `json:"nextReservation"`
}

// CreateItem handles POST /items. The acting party becomes the owner.
func (h *Handler) CreateItem(c *gin.Context) {
	ownerID, ok := actorID(c)
	if !ok {
		return
	}
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.GetUser(c.Request.Context(), ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		abortWithError(c, err)
		return
	}

	item := model.Item{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Available:   *req.Available,
	}
	if err := h.store.CreateItem(c.Request.Context(), &item); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItem handles GET /items/{item_id}.
func (h *Handler) GetItem(c *gin.Context) {
	viewerID, ok := actorID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	item, err := h.store.GetItem(c.Request.Context(), itemID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	schedule, err := h.svc.Nearest(c.Request.Context(), viewerID, itemID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, itemResponse{
		Item:            item,
		LastReservation: schedule.Last,
		NextReservation: schedule.Next,
	})
}

// CanComment handles GET /items/{item_id}/can-comment: the feedback
// eligibility predicate consumed by the comment feature.
func (h *Handler) CanComment(c *gin.Context) {
	partyID, ok := actorID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	allowed, err := h.svc.CanComment(c.Request.Context(), partyID, itemID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canComment": allowed})
}
