package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shareit-backend/internal/reservation"
	"shareit-backend/internal/store"
)

// UserIDHeader identifies the acting party on every authenticated route.
const UserIDHeader = "X-Sharer-User-Id"

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	svc      *reservation.Service
	pageSize int
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, svc *reservation.Service, defaultPageSize int) *Handler {
	return &Handler{
		store:    s,
		svc:      svc,
		pageSize: defaultPageSize,
	}
}

// actorID extracts the acting party id from the identity header. On a
// missing or malformed header it writes a 400 and reports false.
func actorID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetHeader(UserIDHeader), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": UserIDHeader + " header is required"})
		return 0, false
	}
	return id, true
}

// pathID extracts a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// abortWithError maps a domain error to its status code; anything the
// engine did not classify is a 500 with a generic body.
func abortWithError(c *gin.Context, err error) {
	var domainErr *reservation.Error
	if errors.As(err, &domainErr) {
		c.AbortWithStatusJSON(statusFor(domainErr.Kind), gin.H{"error": domainErr.Message})
		return
	}
	log.Printf("internal error [%s]: %v", c.GetString("request_id"), err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func statusFor(k reservation.Kind) int {
	switch k {
	case reservation.KindNotFound:
		return http.StatusNotFound
	case reservation.KindAccessDenied:
		return http.StatusForbidden
	case reservation.KindInvalidOperation:
		return http.StatusConflict
	case reservation.KindInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
