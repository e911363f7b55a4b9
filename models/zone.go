package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Density levels derived from a zone's occupancy ratio.
const (
	DensityLow      = "LOW"
	DensityModerate = "MODERATE"
	DensityHigh     = "HIGH"
)

var (
	densityLowMax      = decimal.NewFromFloat(0.4)
	densityModerateMax = decimal.NewFromFloat(0.75)
)

// Zone is a physical area with a live occupancy count. CurrentCount is
// never negative; it may exceed MaxCapacity (entries are accepted even
// when a zone is nominally full).
type Zone struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrentCount int       `json:"current_count"`
	MaxCapacity  int       `json:"max_capacity"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

// DensityLevel classifies the occupancy ratio. Computed on read, never
// stored. Decimal division keeps the 0.4 and 0.75 boundaries exact.
func (z *Zone) DensityLevel() string {
	if z.MaxCapacity <= 0 {
		return DensityHigh
	}
	ratio := decimal.NewFromInt(int64(z.CurrentCount)).
		Div(decimal.NewFromInt(int64(z.MaxCapacity)))
	switch {
	case ratio.LessThan(densityLowMax):
		return DensityLow
	case ratio.LessThan(densityModerateMax):
		return DensityModerate
	default:
		return DensityHigh
	}
}

// ZoneSnapshot is the broadcast/read shape of a zone with the derived
// density attached.
type ZoneSnapshot struct {
	Name         string `json:"name"`
	CurrentCount int    `json:"current_count"`
	MaxCapacity  int    `json:"max_capacity"`
	DensityLevel string `json:"density_level"`
}

func (z *Zone) Snapshot() ZoneSnapshot {
	return ZoneSnapshot{
		Name:         z.Name,
		CurrentCount: z.CurrentCount,
		MaxCapacity:  z.MaxCapacity,
		DensityLevel: z.DensityLevel(),
	}
}

// ZoneSeed is one bootstrap zone definition for the idempotent init.
type ZoneSeed struct {
	Name        string
	MaxCapacity int
}

// DefaultZones are created once at system bootstrap; existing zones
// are left untouched.
var DefaultZones = []ZoneSeed{
	{Name: "Gate 1", MaxCapacity: 400},
	{Name: "Gate 2", MaxCapacity: 400},
	{Name: "Queue Line", MaxCapacity: 800},
	{Name: "Darshan Hall", MaxCapacity: 700},
	{Name: "Exit", MaxCapacity: 500},
	{Name: "Prasadam Area", MaxCapacity: 600},
}
