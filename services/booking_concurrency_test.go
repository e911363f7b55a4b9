package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"darshan-system/internal/status"
	"darshan-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRacingBookingService wires the service with an in-process locker so
// goroutines can contend for the same slot for real.
func newRacingBookingService(st *memStore) *BookingService {
	return &BookingService{
		store:     st,
		slots:     NewSlotService(st, nil),
		locks:     newMemLocker(),
		publisher: newFakePublisher(),
		prefix:    "ED",
	}
}

func TestBookingService_Reserve_ConcurrentNoOversell(t *testing.T) {
	st := newMemStore()
	svc := newRacingBookingService(st)
	seedSlot(st, "2026-09-10", "09:00 - 10:00", 100, 0)

	// Two parties of 60 against 100 remaining: only one can fit.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), ReserveInput{
				UserID:      fmt.Sprintf("user%d", i+1),
				Date:        "2026-09-10",
				SlotTime:    "09:00 - 10:00",
				DarshanType: "GENERAL",
				PersonCount: 60,
				Pilgrims:    makePilgrims(60),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, status.ErrCapacityExceeded)
	}
	require.Equal(t, 1, successes)

	slot, err := st.FindSlotByKey("2026-09-10", "09:00 - 10:00", models.DarshanGeneral)
	require.NoError(t, err)
	assert.Equal(t, 60, slot.BookedCount)
}

func TestBookingService_Reserve_ConcurrentManyParties(t *testing.T) {
	st := newMemStore()
	svc := newRacingBookingService(st)
	seedSlot(st, "2026-09-10", "09:00 - 10:00", 100, 0)

	// Twelve parties of 15 against 100: at most six fit (90 seats),
	// whichever six win the lease.
	const parties, partySize = 12, 15
	errs := make([]error, parties)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), ReserveInput{
				UserID:      fmt.Sprintf("user%d", i+1),
				Date:        "2026-09-10",
				SlotTime:    "09:00 - 10:00",
				DarshanType: "GENERAL",
				PersonCount: partySize,
				Pilgrims:    makePilgrims(partySize),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, status.ErrCapacityExceeded)
	}
	assert.Equal(t, 6, successes)

	slot, err := st.FindSlotByKey("2026-09-10", "09:00 - 10:00", models.DarshanGeneral)
	require.NoError(t, err)
	assert.Equal(t, successes*partySize, slot.BookedCount)
	assert.LessOrEqual(t, slot.BookedCount, slot.TotalCapacity())
}
