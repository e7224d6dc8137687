package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"shareit-backend/config"
	"shareit-backend/internal/mw"
	"shareit-backend/internal/reservation"
	"shareit-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, svc *reservation.Service, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, svc, cfg.Pagination.DefaultSize)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// User profiles are immutable enough to cache; reservation and item
	// reads are not (listings must reflect decisions immediately).
	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.Server.CacheTTL)

	root := r.Group("/")
	root.Use(mw.RequestID(), rateLimiter)
	{
		root.POST("/users", handler.CreateUser)
		root.GET("/users/:user_id", caching, handler.GetUser)

		root.POST("/items", handler.CreateItem)
		root.GET("/items/:item_id", handler.GetItem)
		root.GET("/items/:item_id/can-comment", handler.CanComment)

		root.POST("/reservations", handler.CreateReservation)
		root.PATCH("/reservations/:reservation_id", handler.DecideReservation)
		root.GET("/reservations/owner", handler.ListOwnerReservations)
		root.GET("/reservations/:reservation_id", handler.GetReservation)
		root.GET("/reservations", handler.ListReservations)
	}

	return r
}
