package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shareit-backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist, or when
// the caller is not allowed to see it.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (model.User, error)
	CreateItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id int64) (model.Item, error)

	CreateReservation(ctx context.Context, r *model.Reservation) error
	GetReservation(ctx context.Context, id int64) (model.Reservation, error)
	GetReservationForParty(ctx context.Context, id, partyID int64) (model.Reservation, error)
	SetReservationStatus(ctx context.Context, id int64, from, to model.Status) (bool, error)
	ListByRequester(ctx context.Context, requesterID int64, state QueryState, now time.Time, page Page) ([]model.Reservation, error)
	ListByOwner(ctx context.Context, ownerID int64, state QueryState, now time.Time, page Page) ([]model.Reservation, error)
	LastApprovedBefore(ctx context.Context, itemID int64, now time.Time) (*model.Reservation, error)
	NextApprovedAfter(ctx context.Context, itemID int64, now time.Time) (*model.Reservation, error)
	HasFinishedReservation(ctx context.Context, requesterID, itemID int64, now time.Time) (bool, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (s *gormStore) CreateItem(ctx context.Context, item *model.Item) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (s *gormStore) GetItem(ctx context.Context, id int64) (model.Item, error) {
	var item model.Item
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, ErrNotFound
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (s *gormStore) GetReservation(ctx context.Context, id int64) (model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).Preload("Item").Preload("Requester").First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Reservation{}, ErrNotFound
	}
	if err != nil {
		return model.Reservation{}, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return r, nil
}

// GetReservationForParty loads a reservation only if partyID is its
// requester or the owner of its item. Anything else reads as not found so
// existence is not leaked.
func (s *gormStore) GetReservationForParty(ctx context.Context, id, partyID int64) (model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).
		Select("reservations.*").
		Preload("Item").Preload("Requester").
		Joins("JOIN items ON items.id = reservations.item_id").
		Where("reservations.id = ? AND (reservations.requester_id = ? OR items.owner_id = ?)", id, partyID, partyID).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Reservation{}, ErrNotFound
	}
	if err != nil {
		return model.Reservation{}, fmt.Errorf("get reservation %d for party %d: %w", id, partyID, err)
	}
	return r, nil
}

// SetReservationStatus performs a compare-and-set on the status column.
// It reports false when the row was not in the expected state, which is
// what serializes two concurrent decisions on the same reservation.
func (s *gormStore) SetReservationStatus(ctx context.Context, id int64, from, to model.Status) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("update reservation %d status: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) ListByRequester(ctx context.Context, requesterID int64, state QueryState, now time.Time, page Page) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).
		Preload("Item").Preload("Requester").
		Where("requester_id = ?", requesterID)

	var out []model.Reservation
	err := applyStateFilter(q, state, now).
		Order("start_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reservations by requester %d: %w", requesterID, err)
	}
	return out, nil
}

func (s *gormStore) ListByOwner(ctx context.Context, ownerID int64, state QueryState, now time.Time, page Page) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).
		Select("reservations.*").
		Preload("Item").Preload("Requester").
		Joins("JOIN items ON items.id = reservations.item_id").
		Where("items.owner_id = ?", ownerID)

	var out []model.Reservation
	err := applyStateFilter(q, state, now).
		Order("start_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reservations by owner %d: %w", ownerID, err)
	}
	return out, nil
}

// applyStateFilter narrows a reservation query to one listing bucket.
// CURRENT deliberately ignores status: a rejected reservation whose window
// covers now still lists as current.
func applyStateFilter(q *gorm.DB, state QueryState, now time.Time) *gorm.DB {
	switch state {
	case StateCurrent:
		return q.Where("start_at <= ? AND end_at >= ?", now, now)
	case StatePast:
		return q.Where("end_at < ?", now)
	case StateFuture:
		return q.Where("start_at > ?", now)
	case StateWaiting:
		return q.Where("status = ?", model.StatusWaiting)
	case StateRejected:
		return q.Where("status = ?", model.StatusRejected)
	case StateAll:
	}
	return q
}

func (s *gormStore) LastApprovedBefore(ctx context.Context, itemID int64, now time.Time) (*model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).
		Where("item_id = ? AND status = ? AND start_at < ?", itemID, model.StatusApproved, now).
		Order("start_at DESC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last approved reservation for item %d: %w", itemID, err)
	}
	return &r, nil
}

func (s *gormStore) NextApprovedAfter(ctx context.Context, itemID int64, now time.Time) (*model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).
		Where("item_id = ? AND status = ? AND start_at > ?", itemID, model.StatusApproved, now).
		Order("start_at ASC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next approved reservation for item %d: %w", itemID, err)
	}
	return &r, nil
}

// HasFinishedReservation reports whether requesterID has an approved
// reservation for the item that already concluded.
func (s *gormStore) HasFinishedReservation(ctx context.Context, requesterID, itemID int64, now time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("requester_id = ? AND item_id = ? AND status = ? AND end_at < ?",
			requesterID, itemID, model.StatusApproved, now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count finished reservations for requester %d item %d: %w", requesterID, itemID, err)
	}
	return count > 0, nil
}
