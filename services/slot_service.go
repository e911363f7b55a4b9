package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"darshan-system/internal/status"
	"darshan-system/models"
	"darshan-system/store"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Redis mirror keys read by the metrics collector and dashboards.
const (
	activeSlotsKey  = "active_slots"
	slotsBookedHash = "slots:booked"
)

// SlotService owns the slot ledger: administrative capacity definition
// and the availability queries. Booked-count mutation belongs to the
// BookingService.
type SlotService struct {
	store store.Store
	redis *redis.Client
}

func NewSlotService(st store.Store, redisClient *redis.Client) *SlotService {
	return &SlotService{store: st, redis: redisClient}
}

type CreateOrUpdateSlotInput struct {
	Date             string `json:"date"`
	TimeRange        string `json:"time_range"`
	DarshanType      string `json:"darshan_type"`
	NormalCapacity   int    `json:"normal_capacity"`
	PriorityCapacity int    `json:"priority_capacity"`
	OtherCapacity    int    `json:"other_capacity"`
	Active           *bool  `json:"is_active,omitempty"`
}

// CreateOrUpdateSlot defines or redefines a slot's capacity pools. The
// booked counter is never touched here; shrinking total capacity below
// the already-booked count is rejected.
func (s *SlotService) CreateOrUpdateSlot(ctx context.Context, in CreateOrUpdateSlotInput) (*models.Slot, error) {
	if in.Date == "" || in.TimeRange == "" {
		return nil, fmt.Errorf("%w: date and time_range are required", status.ErrMissingFields)
	}
	if in.NormalCapacity < 0 || in.PriorityCapacity < 0 || in.OtherCapacity < 0 {
		return nil, status.Validation("capacities must not be negative")
	}

	timeRange := models.NormalizeTimeRange(in.TimeRange)
	darshanType := strings.ToUpper(in.DarshanType)
	if darshanType == "" {
		darshanType = models.DarshanGeneral
	}
	if !models.IsValidDarshanType(darshanType) {
		return nil, status.Validation("invalid darshan type %q (must be GENERAL or SEEGHRA)", darshanType)
	}

	var result *models.Slot
	err := s.store.WithTx(func(tx store.Store) error {
		slot, err := tx.FindSlotByKey(in.Date, timeRange, darshanType)
		if err != nil {
			return status.Dependency("slot lookup failed", err)
		}

		if slot == nil {
			slot = &models.Slot{
				Date:             in.Date,
				TimeRange:        timeRange,
				DarshanType:      darshanType,
				NormalCapacity:   in.NormalCapacity,
				PriorityCapacity: in.PriorityCapacity,
				OtherCapacity:    in.OtherCapacity,
				IsActive:         true,
			}
			if in.Active != nil {
				slot.IsActive = *in.Active
			}
			if err := tx.CreateSlot(slot); err != nil {
				return status.Dependency("slot create failed", err)
			}
			result = slot
			return nil
		}

		newTotal := in.NormalCapacity + in.PriorityCapacity + in.OtherCapacity
		if newTotal < slot.BookedCount {
			return status.Conflict("total capacity %d below booked count %d", newTotal, slot.BookedCount)
		}

		slot.NormalCapacity = in.NormalCapacity
		slot.PriorityCapacity = in.PriorityCapacity
		slot.OtherCapacity = in.OtherCapacity
		if in.Active != nil {
			slot.IsActive = *in.Active
		}
		if err := tx.SaveSlot(slot); err != nil {
			return status.Dependency("slot update failed", err)
		}
		result = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mirrorSlot(ctx, result)
	return result, nil
}

// ListSlots returns slots matching the optional date and darshan type
// filters, inactive ones included.
func (s *SlotService) ListSlots(ctx context.Context, date, darshanType string) ([]*models.Slot, error) {
	filter := store.SlotFilter{Date: date}
	if darshanType != "" {
		filter.DarshanType = strings.ToUpper(darshanType)
	}
	slots, err := s.store.ListSlots(filter)
	if err != nil {
		return nil, status.Dependency("slot listing failed", err)
	}
	return slots, nil
}

// ListAvailableSlots returns the active slots for one date and darshan
// type, sorted by time range.
func (s *SlotService) ListAvailableSlots(ctx context.Context, date, darshanType string) ([]*models.Slot, error) {
	if date == "" || darshanType == "" {
		return nil, fmt.Errorf("%w: date and darshan_type are required", status.ErrMissingFields)
	}
	slots, err := s.store.ListSlots(store.SlotFilter{
		Date:        date,
		DarshanType: strings.ToUpper(darshanType),
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, status.Dependency("slot listing failed", err)
	}
	return slots, nil
}

// CalendarSummary aggregates active slots per date for one darshan
// type: total capacity, booked count, available count and available
// ratio, sorted by date.
func (s *SlotService) CalendarSummary(ctx context.Context, darshanType string) ([]models.CalendarDay, error) {
	if darshanType == "" {
		return nil, fmt.Errorf("%w: darshan_type is required", status.ErrMissingFields)
	}
	slots, err := s.store.ListSlots(store.SlotFilter{
		DarshanType: strings.ToUpper(darshanType),
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, status.Dependency("slot listing failed", err)
	}

	byDate := map[string]*models.CalendarDay{}
	for _, slot := range slots {
		day, ok := byDate[slot.Date]
		if !ok {
			day = &models.CalendarDay{Date: slot.Date}
			byDate[slot.Date] = day
		}
		day.TotalCapacity += slot.TotalCapacity()
		day.BookedCount += slot.BookedCount
	}

	summary := make([]models.CalendarDay, 0, len(byDate))
	for _, day := range byDate {
		available := day.TotalCapacity - day.BookedCount
		if available < 0 {
			available = 0
		}
		day.Available = available
		if day.TotalCapacity > 0 {
			day.RatioAvailable = decimal.NewFromInt(int64(available)).
				Div(decimal.NewFromInt(int64(day.TotalCapacity)))
		}
		summary = append(summary, *day)
	}

	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Date < summary[j].Date
	})
	return summary, nil
}

// mirrorSlot keeps the Redis copies dashboards and the metrics
// collector read. The store value stays authoritative.
func (s *SlotService) mirrorSlot(ctx context.Context, slot *models.Slot) {
	if s.redis == nil || slot == nil {
		return
	}

	field := fmt.Sprintf("%s|%s|%s", slot.Date, slot.TimeRange, slot.DarshanType)
	if err := s.redis.HSet(ctx, slotsBookedHash, field, slot.BookedCount).Err(); err != nil {
		slog.Error("failed to mirror slot booked count", "slot", field, "error", err)
	}

	if slot.IsActive {
		s.redis.SAdd(ctx, activeSlotsKey, field)
	} else {
		s.redis.SRem(ctx, activeSlotsKey, field)
	}
}
