package services

import (
	"context"
	"errors"
	"testing"

	"darshan-system/internal/status"
	"darshan-system/models"
	"darshan-system/store"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collidingStore fails CreateTicket with the unique-index error the
// database raises when a generated code already exists. WithTx is
// re-routed so the transaction body sees the wrapper, not the inner
// store.
type collidingStore struct {
	*memStore
}

func (c *collidingStore) WithTx(fn func(tx store.Store) error) error {
	return c.memStore.WithTx(func(store.Store) error { return fn(c) })
}

func (c *collidingStore) CreateTicket(*models.Ticket) error {
	return errors.New("UNIQUE constraint failed: tickets.code")
}

func TestBookingService_Reserve_CodeCollisionIsConflict(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	inner := newMemStore()
	st := &collidingStore{memStore: inner}
	svc := NewBookingService(st, NewSlotService(st, nil), db, newFakePublisher(), testConfig())

	seedSlot(inner, "2026-09-10", "09:00 - 10:00", 5, 0)
	expectSlotLock(mock, "2026-09-10", "09:00 - 10:00")

	_, err := svc.Reserve(context.Background(), ReserveInput{
		UserID:      "user1",
		Date:        "2026-09-10",
		SlotTime:    "09:00 - 10:00",
		DarshanType: "GENERAL",
		PersonCount: 2,
		Pilgrims:    makePilgrims(2),
	})

	require.Error(t, err)
	assert.Equal(t, status.KindConflict, status.KindOf(err))

	// The rejected attempt must not consume capacity.
	slot, err := inner.FindSlotByKey("2026-09-10", "09:00 - 10:00", models.DarshanGeneral)
	require.NoError(t, err)
	assert.Equal(t, 0, slot.BookedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
