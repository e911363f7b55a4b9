package monitoring

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	reservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_total",
			Help: "Total reservation attempts by outcome",
		},
		[]string{"status"},
	)

	scans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_total",
			Help: "Total entry/exit scans by action and outcome",
		},
		[]string{"action", "status"},
	)

	zoneOccupancy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zone_occupancy_current",
			Help: "Current occupancy per zone",
		},
		[]string{"zone"},
	)

	zoneCapacity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zone_capacity_max",
			Help: "Declared maximum capacity per zone",
		},
		[]string{"zone"},
	)

	slotBooked = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "slot_booked_count",
			Help: "Booked units per active slot",
		},
		[]string{"slot"},
	)
)

// TrackReservation counts one reservation attempt.
func TrackReservation(outcome string) {
	reservations.WithLabelValues(outcome).Inc()
}

// TrackScan counts one scan attempt.
func TrackScan(action, outcome string) {
	scans.WithLabelValues(action, outcome).Inc()
}

// SetZoneOccupancy updates the live zone gauges.
func SetZoneOccupancy(zone string, current, max int) {
	zoneOccupancy.WithLabelValues(zone).Set(float64(current))
	zoneCapacity.WithLabelValues(zone).Set(float64(max))
}

// Monitor periodically refreshes gauges from the Redis mirror, so the
// scrape reflects counts even for zones and slots this process has not
// touched since startup.
type Monitor struct {
	redis    *redis.Client
	interval time.Duration
}

func NewMonitor(redisClient *redis.Client, interval time.Duration) *Monitor {
	return &Monitor{redis: redisClient, interval: interval}
}

// Run blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.collect(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) collect(ctx context.Context) {
	zones, err := m.redis.HGetAll(ctx, "zones:occupancy").Result()
	if err == nil {
		for name, value := range zones {
			// value is "<current>|<max>"
			currentStr, maxStr, ok := strings.Cut(value, "|")
			if !ok {
				continue
			}
			current, _ := strconv.Atoi(currentStr)
			max, _ := strconv.Atoi(maxStr)
			SetZoneOccupancy(name, current, max)
		}
	}

	slots, err := m.redis.HGetAll(ctx, "slots:booked").Result()
	if err == nil {
		for field, value := range slots {
			booked, _ := strconv.Atoi(value)
			slotBooked.WithLabelValues(field).Set(float64(booked))
		}
	}
}
