package services

import (
	"context"
	"fmt"
	"log/slog"

	"darshan-system/internal/status"
	"darshan-system/models"
	"darshan-system/store"

	"github.com/redis/go-redis/v9"
)

// Redis hash mirroring live zone occupancy for the metrics collector.
const zonesOccupancyHash = "zones:occupancy"

// ZoneService is the zone registry: bootstrap seeding and occupancy
// reads. Counter mutation happens only through the ScanService.
type ZoneService struct {
	store store.Store
	redis *redis.Client
}

func NewZoneService(st store.Store, redisClient *redis.Client) *ZoneService {
	return &ZoneService{store: st, redis: redisClient}
}

// InitZones creates the given zones if absent, leaving existing ones
// untouched. Safe to call on every startup.
func (s *ZoneService) InitZones(ctx context.Context, seeds []models.ZoneSeed) (created int, zones []*models.Zone, err error) {
	for _, seed := range seeds {
		existing, err := s.store.FindZoneByName(seed.Name)
		if err != nil {
			return 0, nil, status.Dependency("zone lookup failed", err)
		}
		if existing != nil {
			continue
		}
		zone := &models.Zone{
			Name:        seed.Name,
			MaxCapacity: seed.MaxCapacity,
		}
		if err := s.store.CreateZone(zone); err != nil {
			return 0, nil, status.Dependency("zone create failed", err)
		}
		s.mirrorZone(ctx, zone)
		created++
	}

	zones, err = s.ListZones(ctx)
	if err != nil {
		return 0, nil, err
	}
	slog.Info("zones initialized", "created", created, "total", len(zones))
	return created, zones, nil
}

// ListZones returns all zones ordered by name.
func (s *ZoneService) ListZones(ctx context.Context) ([]*models.Zone, error) {
	zones, err := s.store.ListZones()
	if err != nil {
		return nil, status.Dependency("zone listing failed", err)
	}
	return zones, nil
}

// Snapshots is the broadcast/read shape of ListZones.
func (s *ZoneService) Snapshots(ctx context.Context) ([]models.ZoneSnapshot, error) {
	zones, err := s.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]models.ZoneSnapshot, 0, len(zones))
	for _, zone := range zones {
		snapshots = append(snapshots, zone.Snapshot())
	}
	return snapshots, nil
}

// mirrorZone copies a zone's live count into Redis for cheap reads.
// The hash is keyed by name only, so capacity edits overwrite the
// field in place instead of leaving a stale sibling behind.
func (s *ZoneService) mirrorZone(ctx context.Context, zone *models.Zone) {
	if s.redis == nil || zone == nil {
		return
	}
	value := fmt.Sprintf("%d|%d", zone.CurrentCount, zone.MaxCapacity)
	if err := s.redis.HSet(ctx, zonesOccupancyHash, zone.Name, value).Err(); err != nil {
		slog.Error("failed to mirror zone count", "zone", zone.Name, "error", err)
	}
}
