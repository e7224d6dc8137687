package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shareit-backend/internal/model"
)

// newTestDB opens an in-memory SQLite database scoped to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Item{}, &model.Reservation{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, s Store, name string) model.User {
	t.Helper()
	user := model.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, s.CreateUser(context.Background(), &user))
	return user
}

func seedItem(t *testing.T, s Store, ownerID int64, name string, available bool) model.Item {
	t.Helper()
	item := model.Item{OwnerID: ownerID, Name: name, Description: name + " description", Available: available}
	require.NoError(t, s.CreateItem(context.Background(), &item))
	return item
}

func seedReservation(t *testing.T, s Store, itemID, requesterID int64, start, end time.Time, status model.Status) model.Reservation {
	t.Helper()
	r := model.Reservation{ItemID: itemID, RequesterID: requesterID, StartAt: start, EndAt: end, Status: status}
	require.NoError(t, s.CreateReservation(context.Background(), &r))
	return r
}

func TestSetReservationStatus(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	owner := seedUser(t, s, "owner")
	requester := seedUser(t, s, "requester")
	item := seedItem(t, s, owner.ID, "drill", true)
	r := seedReservation(t, s, item.ID, requester.ID, now.Add(time.Hour), now.Add(2*time.Hour), model.StatusWaiting)

	ok, err := s.SetReservationStatus(ctx, r.ID, model.StatusWaiting, model.StatusApproved)
	require.NoError(t, err)
	assert.True(t, ok, "first decision should win the compare-and-set")

	// The row is no longer WAITING, so a second decision must fail.
	ok, err = s.SetReservationStatus(ctx, r.ID, model.StatusWaiting, model.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok, "second decision should lose the compare-and-set")

	got, err := s.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
}

func TestListByRequesterBuckets(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	page := Page{From: 0, Size: 10}

	owner := seedUser(t, s, "owner")
	requester := seedUser(t, s, "requester")
	item := seedItem(t, s, owner.ID, "bike", true)

	past := seedReservation(t, s, item.ID, requester.ID, now.Add(-3*time.Hour), now.Add(-1*time.Hour), model.StatusApproved)
	// Rejected but mid-window: must land in CURRENT regardless of status.
	current := seedReservation(t, s, item.ID, requester.ID, now.Add(-1*time.Hour), now.Add(time.Hour), model.StatusRejected)
	future := seedReservation(t, s, item.ID, requester.ID, now.Add(time.Hour), now.Add(2*time.Hour), model.StatusWaiting)

	ids := func(rows []model.Reservation) []int64 {
		out := make([]int64, len(rows))
		for i, r := range rows {
			out[i] = r.ID
		}
		return out
	}

	rows, err := s.ListByRequester(ctx, requester.ID, StateAll, now, page)
	require.NoError(t, err)
	assert.Equal(t, []int64{future.ID, current.ID, past.ID}, ids(rows), "ALL is ordered by start descending")

	rows, err = s.ListByRequester(ctx, requester.ID, StateCurrent, now, page)
	require.NoError(t, err)
	assert.Equal(t, []int64{current.ID}, ids(rows))

	rows, err = s.ListByRequester(ctx, requester.ID, StatePast, now, page)
	require.NoError(t, err)
	assert.Equal(t, []int64{past.ID}, ids(rows))

	rows, err = s.ListByRequester(ctx, requester.ID, StateFuture, now, page)
	require.NoError(t, err)
	assert.Equal(t, []int64{future.ID}, ids(rows))

	rows, err = s.ListByRequester(ctx, requester.ID, StateWaiting, now, page)
	require.NoError(t, err)
	assert.Equal(t, []int64{future.ID}, ids(rows))

	rows, err = s.ListByRequester(ctx, requester.ID, StateRejected, now, page)
	require.NoError(t, err)
	assert.Equal(t, []int64{current.ID}, ids(rows))

	// Another user sees nothing.
	rows, err = s.ListByRequester(ctx, owner.ID, StateAll, now, page)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListByOwnerScopesToOwnedItems(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	page := Page{From: 0, Size: 10}

	ownerA := seedUser(t, s, "owner-a")
	ownerB := seedUser(t, s, "owner-b")
	requester := seedUser(t, s, "requester")
	itemA := seedItem(t, s, ownerA.ID, "ladder", true)
	itemB := seedItem(t, s, ownerB.ID, "saw", true)

	onA := seedReservation(t, s, itemA.ID, requester.ID, now.Add(time.Hour), now.Add(2*time.Hour), model.StatusWaiting)
	seedReservation(t, s, itemB.ID, requester.ID, now.Add(time.Hour), now.Add(2*time.Hour), model.StatusWaiting)

	rows, err := s.ListByOwner(ctx, ownerA.ID, StateAll, now, page)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, onA.ID, rows[0].ID)
	assert.Equal(t, itemA.ID, rows[0].Item.ID, "item association should be loaded")
	assert.Equal(t, requester.Name, rows[0].Requester.Name, "requester association should be loaded")
}

func TestListPaginationSnapsToPageBoundary(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	owner := seedUser(t, s, "owner")
	requester := seedUser(t, s, "requester")
	item := seedItem(t, s, owner.ID, "tent", true)

	// Five reservations, starts one hour apart; descending order is r5..r1.
	var all []model.Reservation
	for i := 1; i <= 5; i++ {
		r := seedReservation(t, s, item.ID, requester.ID,
			now.Add(time.Duration(i)*time.Hour), now.Add(time.Duration(i)*time.Hour+30*time.Minute),
			model.StatusWaiting)
		all = append(all, r)
	}

	// from=3 with size=2 snaps to page 1, i.e. offset 2.
	rows, err := s.ListByRequester(ctx, requester.ID, StateAll, now, Page{From: 3, Size: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, all[2].ID, rows[0].ID)
	assert.Equal(t, all[1].ID, rows[1].ID)
}

func TestLastAndNextApproved(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	owner := seedUser(t, s, "owner")
	requester := seedUser(t, s, "requester")
	item := seedItem(t, s, owner.ID, "kayak", true)

	seedReservation(t, s, item.ID, requester.ID, now.Add(-48*time.Hour), now.Add(-47*time.Hour), model.StatusApproved)
	last := seedReservation(t, s, item.ID, requester.ID, now.Add(-2*time.Hour), now.Add(-1*time.Hour), model.StatusApproved)
	next := seedReservation(t, s, item.ID, requester.ID, now.Add(time.Hour), now.Add(2*time.Hour), model.StatusApproved)
	seedReservation(t, s, item.ID, requester.ID, now.Add(3*time.Hour), now.Add(4*time.Hour), model.StatusApproved)
	// Waiting rows never count, however close they are.
	seedReservation(t, s, item.ID, requester.ID, now.Add(-30*time.Minute), now.Add(30*time.Minute), model.StatusWaiting)

	got, err := s.LastApprovedBefore(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, last.ID, got.ID)

	got, err = s.NextApprovedAfter(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, next.ID, got.ID)
}

func TestLastAndNextEmpty(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	owner := seedUser(t, s, "owner")
	item := seedItem(t, s, owner.ID, "canoe", true)

	got, err := s.LastApprovedBefore(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.NextApprovedAfter(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetReservationForParty(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	owner := seedUser(t, s, "owner")
	requester := seedUser(t, s, "requester")
	stranger := seedUser(t, s, "stranger")
	item := seedItem(t, s, owner.ID, "projector", true)
	r := seedReservation(t, s, item.ID, requester.ID, now.Add(time.Hour), now.Add(2*time.Hour), model.StatusWaiting)

	got, err := s.GetReservationForParty(ctx, r.ID, requester.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	got, err = s.GetReservationForParty(ctx, r.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = s.GetReservationForParty(ctx, r.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound, "a third party reads as not-found")

	_, err = s.GetReservationForParty(ctx, r.ID+100, requester.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasFinishedReservation(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	owner := seedUser(t, s, "owner")
	requester := seedUser(t, s, "requester")
	item := seedItem(t, s, owner.ID, "camera", true)

	ok, err := s.HasFinishedReservation(ctx, requester.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "no reservation at all")

	// Approved but still running: end is not before now.
	running := seedReservation(t, s, item.ID, requester.ID, now.Add(-time.Hour), now.Add(time.Hour), model.StatusApproved)
	ok, err = s.HasFinishedReservation(ctx, requester.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// Ended but never approved.
	seedReservation(t, s, item.ID, requester.ID, now.Add(-3*time.Hour), now.Add(-2*time.Hour), model.StatusRejected)
	ok, err = s.HasFinishedReservation(ctx, requester.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.HasFinishedReservation(ctx, requester.ID, item.ID, running.EndAt.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok, "approved and concluded")
}

func TestParseQueryState(t *testing.T) {
	for _, token := range []string{"ALL", "CURRENT", "PAST", "FUTURE", "WAITING", "REJECTED"} {
		st, err := ParseQueryState(token)
		require.NoError(t, err)
		assert.Equal(t, QueryState(token), st)
	}

	_, err := ParseQueryState("APPROVED")
	require.Error(t, err)
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", err.Error())

	_, err = ParseQueryState("all")
	assert.Error(t, err, "state tokens are case sensitive")
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{From: 0, Size: 10}.Offset())
	assert.Equal(t, 0, Page{From: 9, Size: 10}.Offset())
	assert.Equal(t, 10, Page{From: 10, Size: 10}.Offset())
	assert.Equal(t, 2, Page{From: 3, Size: 2}.Offset())
}
