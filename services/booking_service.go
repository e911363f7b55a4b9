package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"darshan-system/config"
	"darshan-system/internal/status"
	"darshan-system/models"
	"darshan-system/monitoring"
	"darshan-system/store"
	"darshan-system/utils"

	"github.com/redis/go-redis/v9"
)

// BookingService is the reservation allocator. Reserve is the only
// code path that increments a slot's booked counter; Cancel is the
// only one that decrements it.
type BookingService struct {
	store     store.Store
	slots     *SlotService
	locks     locker
	publisher Publisher
	prefix    string
}

func NewBookingService(st store.Store, slots *SlotService, redisClient *redis.Client, publisher Publisher, cfg *config.Config) *BookingService {
	return &BookingService{
		store:     st,
		slots:     slots,
		locks:     newLockManager(redisClient, cfg.SlotLockTTL, cfg.SlotLockRetry, cfg.SlotLockTimeout),
		publisher: publisher,
		prefix:    cfg.TicketPrefix,
	}
}

type ReserveInput struct {
	UserID      string
	UserContact string

	Date        string           `json:"date"`
	SlotTime    string           `json:"slot_time"`
	DarshanType string           `json:"darshan_type"`
	PersonCount int              `json:"persons_count"`
	Pilgrims    []models.Pilgrim `json:"pilgrims"`

	// PriorityProofCount is the number of priority proof references the
	// caller uploaded; cross-checked against the claimants re-derived
	// from the pilgrim list.
	PriorityProofCount int `json:"priority_proof_count"`
}

// Reserve atomically allocates slot capacity for a party and issues a
// ticket. The capacity check and booked-count increment run under the
// slot's lease and a single store transaction, so two concurrent
// reservations can never jointly oversell a slot.
func (s *BookingService) Reserve(ctx context.Context, in ReserveInput) (*models.Ticket, error) {
	if err := validateReserveInput(&in); err != nil {
		monitoring.TrackReservation("rejected")
		return nil, err
	}

	slotTime := models.NormalizeTimeRange(in.SlotTime)
	darshanType := strings.ToUpper(in.DarshanType)

	lockKey := slotLockKey(in.Date, slotTime, darshanType)
	if err := s.locks.acquire(ctx, lockKey); err != nil {
		monitoring.TrackReservation("lock_failed")
		return nil, err
	}
	defer s.locks.release(ctx, lockKey)

	code, err := utils.GenerateTicketCode(s.prefix)
	if err != nil {
		monitoring.TrackReservation("error")
		return nil, status.Dependency("ticket code generation failed", err)
	}

	ticket := &models.Ticket{
		Code:        code,
		UserID:      in.UserID,
		UserContact: in.UserContact,
		DarshanType: darshanType,
		Date:        in.Date,
		SlotTime:    slotTime,
		PersonCount: in.PersonCount,
		Pilgrims:    in.Pilgrims,
		Status:      models.TicketBooked,
	}

	var slot *models.Slot
	err = s.store.WithTx(func(tx store.Store) error {
		var txErr error
		slot, txErr = tx.FindSlotByKey(in.Date, slotTime, darshanType)
		if txErr != nil {
			return status.Dependency("slot lookup failed", txErr)
		}
		if slot == nil || !slot.IsActive {
			return fmt.Errorf("%w for %s (%s, %s)", status.ErrSlotNotFound, in.Date, slotTime, darshanType)
		}

		remaining := slot.Available()
		if in.PersonCount > remaining {
			return fmt.Errorf("%w: remaining %d", status.ErrCapacityExceeded, remaining)
		}

		if txErr := tx.CreateTicket(ticket); txErr != nil {
			if store.IsUniqueViolation(txErr) {
				// Random code collided; the booking itself is fine.
				return status.Conflict("ticket code already in use, retry the booking")
			}
			return status.Dependency("ticket create failed", txErr)
		}

		slot.BookedCount += in.PersonCount
		if txErr := tx.SaveSlot(slot); txErr != nil {
			return status.Dependency("slot update failed", txErr)
		}
		return nil
	})
	if err != nil {
		monitoring.TrackReservation(status.KindOf(err).String())
		return nil, err
	}

	s.slots.mirrorSlot(ctx, slot)
	monitoring.TrackReservation("success")
	slog.Info("ticket booked",
		"code", ticket.Code, "slot", slotTime, "date", in.Date,
		"darshan_type", darshanType, "persons", in.PersonCount)

	if s.publisher != nil {
		s.publisher.PublishUserTicket(in.UserID, models.TicketStatusEvent{
			TicketCode: ticket.Code,
			Status:     ticket.Status,
			Timestamp:  time.Now().UTC(),
		})
	}

	return ticket, nil
}

// Cancel releases a BOOKED ticket and returns its capacity units to
// the slot pool. Terminal and already-entered tickets are rejected.
func (s *BookingService) Cancel(ctx context.Context, userID, code string) (*models.Ticket, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: ticket code is required", status.ErrMissingFields)
	}

	tlock := ticketLockKey(code)
	if err := s.locks.acquire(ctx, tlock); err != nil {
		return nil, err
	}
	defer s.locks.release(ctx, tlock)

	existing, err := s.store.FindTicketByCode(code)
	if err != nil {
		return nil, status.Dependency("ticket lookup failed", err)
	}
	if existing == nil || existing.UserID != userID {
		return nil, status.ErrTicketNotFound
	}

	// Ticket lease first, then the slot lease, so the decrement can't
	// interleave with a reservation on the same slot.
	slock := slotLockKey(existing.Date, existing.SlotTime, existing.DarshanType)
	if err := s.locks.acquire(ctx, slock); err != nil {
		return nil, err
	}
	defer s.locks.release(ctx, slock)

	var (
		ticket *models.Ticket
		slot   *models.Slot
	)
	err = s.store.WithTx(func(tx store.Store) error {
		var txErr error
		ticket, txErr = tx.FindTicketByCode(code)
		if txErr != nil {
			return status.Dependency("ticket lookup failed", txErr)
		}
		if ticket == nil || ticket.UserID != userID {
			return status.ErrTicketNotFound
		}
		if ticket.Status != models.TicketBooked {
			return fmt.Errorf("%w: ticket cannot be cancelled, current status %s",
				status.ErrInvalidTransition, ticket.Status)
		}

		ticket.Status = models.TicketCancelled
		if txErr := tx.SaveTicket(ticket); txErr != nil {
			return status.Dependency("ticket update failed", txErr)
		}

		slot, txErr = tx.FindSlotByKey(ticket.Date, ticket.SlotTime, ticket.DarshanType)
		if txErr != nil {
			return status.Dependency("slot lookup failed", txErr)
		}
		if slot != nil {
			slot.BookedCount -= ticket.PersonCount
			if slot.BookedCount < 0 {
				slot.BookedCount = 0
			}
			if txErr := tx.SaveSlot(slot); txErr != nil {
				return status.Dependency("slot update failed", txErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.slots.mirrorSlot(ctx, slot)
	slog.Info("ticket cancelled", "code", code, "persons", ticket.PersonCount)

	if s.publisher != nil {
		evt := models.TicketStatusEvent{
			TicketCode: ticket.Code,
			Status:     ticket.Status,
			Timestamp:  time.Now().UTC(),
		}
		s.publisher.PublishTicketStatus(evt)
		s.publisher.PublishUserTicket(userID, evt)
	}

	return ticket, nil
}

// TicketsForUser returns the caller's tickets, newest first.
func (s *BookingService) TicketsForUser(ctx context.Context, userID string) ([]*models.Ticket, error) {
	tickets, err := s.store.ListTicketsByUser(userID)
	if err != nil {
		return nil, status.Dependency("ticket listing failed", err)
	}
	return tickets, nil
}

// TicketByCode returns one ticket, scoped to its owner.
func (s *BookingService) TicketByCode(ctx context.Context, userID, code string) (*models.Ticket, error) {
	ticket, err := s.store.FindTicketByCode(code)
	if err != nil {
		return nil, status.Dependency("ticket lookup failed", err)
	}
	if ticket == nil || ticket.UserID != userID {
		return nil, status.ErrTicketNotFound
	}
	return ticket, nil
}

func validateReserveInput(in *ReserveInput) error {
	if in.UserID == "" || in.Date == "" || in.SlotTime == "" || in.DarshanType == "" || in.PersonCount == 0 {
		return fmt.Errorf("%w: date, slot_time, darshan_type and persons_count are required", status.ErrMissingFields)
	}
	if !models.IsValidDarshanType(strings.ToUpper(in.DarshanType)) {
		return status.Validation("invalid darshan type %q (must be GENERAL or SEEGHRA)", in.DarshanType)
	}
	if in.PersonCount < 0 {
		return status.Validation("persons_count must be positive")
	}
	if len(in.Pilgrims) != in.PersonCount {
		return status.Validation("pilgrims list must match persons_count (%d != %d)",
			len(in.Pilgrims), in.PersonCount)
	}

	priorityCount := 0
	for i, p := range in.Pilgrims {
		if p.FullName == "" || p.Phone == "" || p.IDType == "" || p.IDNumber == "" {
			return status.Validation("pilgrim %d: full_name, phone, id_type and id_number are required", i+1)
		}
		if p.IDProofFile == "" {
			return status.Validation("pilgrim %d: an id proof reference is required", i+1)
		}
		if !p.PriorityEnabled {
			continue
		}
		priorityCount++
		if p.PriorityType == "" || p.ProofType == "" || p.ProofNumber == "" || p.PriorityProofFile == "" {
			return status.Validation("pilgrim %d: priority access requires priority_type, proof_type, proof_number and a proof reference", i+1)
		}
		if p.PriorityType == "Other" && strings.TrimSpace(p.OtherCase) == "" {
			return status.Validation("pilgrim %d: other case description is required when priority_type is Other", i+1)
		}
	}

	if priorityCount != in.PriorityProofCount {
		return fmt.Errorf("%w: %d claimed, %d proofs supplied",
			status.ErrProofMismatch, priorityCount, in.PriorityProofCount)
	}
	return nil
}
