package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"darshan-system/config"
	"darshan-system/internal/status"
	"darshan-system/models"
	"darshan-system/monitoring"
	"darshan-system/store"

	"github.com/redis/go-redis/v9"
)

// ScanService processes entry/exit scans: it drives the ticket
// lifecycle, maintains zone occupancy, appends the audit record and
// triggers the observer broadcast.
type ScanService struct {
	store     store.Store
	zones     *ZoneService
	locks     locker
	publisher Publisher
}

func NewScanService(st store.Store, zones *ZoneService, redisClient *redis.Client, publisher Publisher, cfg *config.Config) *ScanService {
	return &ScanService{
		store:     st,
		zones:     zones,
		locks:     newLockManager(redisClient, cfg.TicketLockTTL, cfg.SlotLockRetry, cfg.SlotLockTimeout),
		publisher: publisher,
	}
}

type ScanInput struct {
	TicketCode string `json:"ticket_code"`
	Action     string `json:"action"`
	ZoneName   string `json:"zone_name"`
	Gate       string `json:"gate"`
}

type ScanResult struct {
	Ticket *models.Ticket        `json:"ticket"`
	Zone   models.ZoneSnapshot   `json:"zone"`
	Log    *models.EntryExitLog  `json:"log"`
	Zones  []models.ZoneSnapshot `json:"zones"`
}

// ProcessScan validates and applies one entry/exit event. The lifecycle
// check, the zone delta and the audit append commit in one transaction
// under the ticket's lease; the broadcast happens after commit and
// never fails the scan.
func (s *ScanService) ProcessScan(ctx context.Context, in ScanInput) (*ScanResult, error) {
	if in.TicketCode == "" || in.Action == "" || in.ZoneName == "" {
		monitoring.TrackScan(in.Action, "rejected")
		return nil, fmt.Errorf("%w: ticket_code, action and zone_name are required", status.ErrMissingFields)
	}
	if !models.IsValidAction(in.Action) {
		monitoring.TrackScan(in.Action, "rejected")
		return nil, status.Validation("invalid action %q (must be ENTRY or EXIT)", in.Action)
	}
	gate := in.Gate
	if gate == "" {
		gate = models.DefaultGate
	}

	lockKey := ticketLockKey(in.TicketCode)
	if err := s.locks.acquire(ctx, lockKey); err != nil {
		monitoring.TrackScan(in.Action, "lock_failed")
		return nil, err
	}
	defer s.locks.release(ctx, lockKey)

	var (
		ticket *models.Ticket
		zone   *models.Zone
		entry  *models.EntryExitLog
	)
	err := s.store.WithTx(func(tx store.Store) error {
		var txErr error
		ticket, txErr = tx.FindTicketByCode(in.TicketCode)
		if txErr != nil {
			return status.Dependency("ticket lookup failed", txErr)
		}
		if ticket == nil {
			return status.ErrTicketNotFound
		}

		if !ticket.CanTransition(in.Action) {
			return fmt.Errorf("%w: ticket cannot %s, current status %s",
				status.ErrInvalidTransition, in.Action, ticket.Status)
		}

		zone, txErr = tx.FindZoneByName(in.ZoneName)
		if txErr != nil {
			return status.Dependency("zone lookup failed", txErr)
		}
		if zone == nil {
			return status.ErrZoneNotFound
		}

		switch in.Action {
		case models.ActionEntry:
			zone.CurrentCount++
			ticket.Status = models.TicketEntered
		case models.ActionExit:
			// Clamped at zero: the lifecycle guard above already blocks
			// double exits, the clamp only absorbs a skewed counter.
			zone.CurrentCount--
			if zone.CurrentCount < 0 {
				zone.CurrentCount = 0
			}
			ticket.Status = models.TicketExited
		}

		if txErr := tx.SaveZone(zone); txErr != nil {
			return status.Dependency("zone update failed", txErr)
		}
		if txErr := tx.SaveTicket(ticket); txErr != nil {
			return status.Dependency("ticket update failed", txErr)
		}

		entry = &models.EntryExitLog{
			TicketCode: ticket.Code,
			Action:     in.Action,
			Gate:       gate,
			ZoneName:   zone.Name,
		}
		if txErr := tx.AppendEntryExitLog(entry); txErr != nil {
			return status.Dependency("audit log append failed", txErr)
		}
		return nil
	})
	if err != nil {
		monitoring.TrackScan(in.Action, status.KindOf(err).String())
		return nil, err
	}

	s.zones.mirrorZone(ctx, zone)
	monitoring.TrackScan(in.Action, "success")
	monitoring.SetZoneOccupancy(zone.Name, zone.CurrentCount, zone.MaxCapacity)
	slog.Info("scan processed",
		"ticket", ticket.Code, "action", in.Action, "zone", zone.Name, "gate", gate)

	snapshots, snapErr := s.zones.Snapshots(ctx)
	if snapErr != nil {
		// The scan is committed; observers resync from the list endpoint.
		slog.Error("zone snapshot for broadcast failed", "error", snapErr)
		snapshots = []models.ZoneSnapshot{zone.Snapshot()}
	}

	if s.publisher != nil {
		evt := models.TicketStatusEvent{
			TicketCode: ticket.Code,
			Status:     ticket.Status,
			ZoneName:   zone.Name,
			Action:     in.Action,
			Timestamp:  time.Now().UTC(),
		}
		s.publisher.PublishZones(snapshots)
		s.publisher.PublishTicketStatus(evt)
		s.publisher.PublishUserTicket(ticket.UserID, evt)
	}

	return &ScanResult{
		Ticket: ticket,
		Zone:   zone.Snapshot(),
		Log:    entry,
		Zones:  snapshots,
	}, nil
}

// LogsForTicket returns the audit trail of one ticket, newest first.
func (s *ScanService) LogsForTicket(ctx context.Context, code string) ([]*models.EntryExitLog, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: ticket code is required", status.ErrMissingFields)
	}
	entries, err := s.store.ListLogsByTicket(code)
	if err != nil {
		return nil, status.Dependency("audit log listing failed", err)
	}
	return entries, nil
}
