package reservation

import (
	"time"

	"shareit-backend/internal/model"
)

// ItemRef is the resolved item summary embedded in a reservation view.
type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PartyRef is the resolved user summary embedded in a reservation view.
type PartyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// View is the enriched read model returned by every lifecycle operation.
type View struct {
	ID        int64        `json:"id"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Status    model.Status `json:"status"`
	Item      ItemRef      `json:"item"`
	Requester PartyRef     `json:"requester"`
}

// NearestRef is the trimmed view used for an item's last/next reservation.
// The item is implied by context, so only the requester id is carried.
type NearestRef struct {
	ID          int64        `json:"id"`
	RequesterID int64        `json:"requesterId"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	Status      model.Status `json:"status"`
}

// Schedule is the owner-only last/next derivation for one item.
type Schedule struct {
	Last *NearestRef `json:"lastReservation"`
	Next *NearestRef `json:"nextReservation"`
}

func toView(r model.Reservation) View {
	return View{
		ID:        r.ID,
		Start:     r.StartAt,
		End:       r.EndAt,
		Status:    r.Status,
		Item:      ItemRef{ID: r.Item.ID, Name: r.Item.Name},
		Requester: PartyRef{ID: r.Requester.ID, Name: r.Requester.Name},
	}
}

func toNearestRef(r *model.Reservation) *NearestRef {
	if r == nil {
		return nil
	}
	return &NearestRef{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		Start:       r.StartAt,
		End:         r.EndAt,
		Status:      r.Status,
	}
}
