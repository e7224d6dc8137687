package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit-backend/internal/model"
	"shareit-backend/internal/store"
)

// Service is the reservation lifecycle engine: creation with eligibility
// checks, the approval state machine, temporal listing and the derived
// per-item views.
type Service struct {
	store store.Store
	clock Clock
}

// NewService creates a lifecycle engine over the given store and clock.
func NewService(s store.Store, clock Clock) *Service {
	return &Service{store: s, clock: clock}
}

// CreateInput carries a creation request. Start and End are pointers so a
// missing date is distinguishable from a zero one.
type CreateInput struct {
	ItemID int64
	Start  *time.Time
	End    *time.Time
}

// Create validates a reservation request and persists it in WAITING.
// Checks run in a fixed order and the first failure wins; nothing is
// written unless all of them pass. Overlapping reservations on the same
// item are allowed here: competing WAITING requests are resolved by the
// owner at decision time.
func (s *Service) Create(ctx context.Context, requesterID int64, in CreateInput) (View, error) {
	requester, err := s.store.GetUser(ctx, requesterID)
	if errors.Is(err, store.ErrNotFound) {
		return View{}, notFound("user not found")
	}
	if err != nil {
		return View{}, fmt.Errorf("load requester: %w", err)
	}

	item, err := s.store.GetItem(ctx, in.ItemID)
	if errors.Is(err, store.ErrNotFound) {
		return View{}, notFound("item not found")
	}
	if err != nil {
		return View{}, fmt.Errorf("load item: %w", err)
	}

	if !item.Available {
		return View{}, accessDenied("item is not available for reservation")
	}
	if requesterID == item.OwnerID {
		return View{}, invalidOperation("owners cannot reserve their own item")
	}
	if err := validateWindow(in.Start, in.End, s.clock.Now()); err != nil {
		return View{}, err
	}

	r := model.Reservation{
		ItemID:      item.ID,
		RequesterID: requester.ID,
		StartAt:     *in.Start,
		EndAt:       *in.End,
		Status:      model.StatusWaiting,
	}
	if err := s.store.CreateReservation(ctx, &r); err != nil {
		return View{}, fmt.Errorf("persist reservation: %w", err)
	}
	r.Item = item
	r.Requester = requester
	return toView(r), nil
}

// validateWindow enforces the date rules for creation. Each rule has its
// own message so clients can map failures back to a field.
func validateWindow(start, end *time.Time, now time.Time) error {
	switch {
	case start == nil || end == nil:
		return invalidInput("start and end must be set")
	case start.Equal(*end):
		return invalidInput("start and end must differ")
	case !start.After(now):
		return invalidInput("start must be in the future")
	case !end.After(now):
		return invalidInput("end must be in the future")
	case !end.After(*start):
		return invalidInput("end must be after start")
	}
	return nil
}

// Decide moves a WAITING reservation to APPROVED or REJECTED. Only the
// owner of the reserved item may decide, and only once: the status write
// is a compare-and-set, so a concurrent second decision loses.
func (s *Service) Decide(ctx context.Context, actorID, reservationID int64, approve bool) (View, error) {
	if _, err := s.store.GetUser(ctx, actorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return View{}, notFound("user not found")
		}
		return View{}, fmt.Errorf("load actor: %w", err)
	}

	r, err := s.store.GetReservation(ctx, reservationID)
	if errors.Is(err, store.ErrNotFound) {
		return View{}, notFound("reservation not found")
	}
	if err != nil {
		return View{}, fmt.Errorf("load reservation: %w", err)
	}

	// A non-owner is told the reservation does not exist.
	if r.Item.OwnerID != actorID {
		return View{}, notFound("reservation not found")
	}
	if r.Status != model.StatusWaiting {
		return View{}, accessDenied("reservation is not waiting for a decision")
	}

	to := model.StatusRejected
	if approve {
		to = model.StatusApproved
	}
	ok, err := s.store.SetReservationStatus(ctx, r.ID, model.StatusWaiting, to)
	if err != nil {
		return View{}, fmt.Errorf("persist decision: %w", err)
	}
	if !ok {
		// Lost the race against another decision on the same row.
		return View{}, accessDenied("reservation is not waiting for a decision")
	}
	r.Status = to
	return toView(r), nil
}

// Get returns a single reservation, visible only to its requester or the
// owner of its item. Everyone else gets not-found.
func (s *Service) Get(ctx context.Context, partyID, reservationID int64) (View, error) {
	if _, err := s.store.GetUser(ctx, partyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return View{}, notFound("user not found")
		}
		return View{}, fmt.Errorf("load party: %w", err)
	}

	r, err := s.store.GetReservationForParty(ctx, reservationID, partyID)
	if errors.Is(err, store.ErrNotFound) {
		return View{}, notFound("reservation not found")
	}
	if err != nil {
		return View{}, fmt.Errorf("load reservation: %w", err)
	}
	return toView(r), nil
}

// ListForRequester lists reservations created by partyID, newest start
// first, filtered by the given state token.
func (s *Service) ListForRequester(ctx context.Context, partyID int64, stateToken string, from, size int) ([]View, error) {
	return s.list(ctx, partyID, stateToken, from, size, s.store.ListByRequester)
}

// ListForOwner lists reservations on items owned by partyID, newest start
// first, filtered by the given state token.
func (s *Service) ListForOwner(ctx context.Context, partyID int64, stateToken string, from, size int) ([]View, error) {
	return s.list(ctx, partyID, stateToken, from, size, s.store.ListByOwner)
}

type listFunc func(ctx context.Context, partyID int64, state store.QueryState, now time.Time, page store.Page) ([]model.Reservation, error)

func (s *Service) list(ctx context.Context, partyID int64, stateToken string, from, size int, query listFunc) ([]View, error) {
	if _, err := s.store.GetUser(ctx, partyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("user not found")
		}
		return nil, fmt.Errorf("load party: %w", err)
	}

	state, err := store.ParseQueryState(stateToken)
	if err != nil {
		return nil, invalidInput(err.Error())
	}
	if from < 0 || size <= 0 {
		return nil, invalidInput("malformed pagination")
	}

	rows, err := query(ctx, partyID, state, s.clock.Now(), store.Page{From: from, Size: size})
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(rows))
	for _, r := range rows {
		views = append(views, toView(r))
	}
	return views, nil
}

// Nearest derives the last started and next upcoming approved reservation
// for an item relative to now. Only the owner sees them; for any other
// viewer both entries are nil.
func (s *Service) Nearest(ctx context.Context, viewerID, itemID int64) (Schedule, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return Schedule{}, notFound("item not found")
	}
	if err != nil {
		return Schedule{}, fmt.Errorf("load item: %w", err)
	}
	if item.OwnerID != viewerID {
		return Schedule{}, nil
	}

	now := s.clock.Now()
	last, err := s.store.LastApprovedBefore(ctx, itemID, now)
	if err != nil {
		return Schedule{}, err
	}
	next, err := s.store.NextApprovedAfter(ctx, itemID, now)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Last: toNearestRef(last), Next: toNearestRef(next)}, nil
}

// CanComment reports whether partyID may leave feedback on an item: true
// once an approved reservation by that party has concluded.
func (s *Service) CanComment(ctx context.Context, partyID, itemID int64) (bool, error) {
	return s.store.HasFinishedReservation(ctx, partyID, itemID, s.clock.Now())
}
