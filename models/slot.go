package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Darshan categories. Each category books against its own slots.
const (
	DarshanGeneral = "GENERAL"
	DarshanSeeghra = "SEEGHRA"
)

func IsValidDarshanType(v string) bool {
	return v == DarshanGeneral || v == DarshanSeeghra
}

// Slot is one bookable (date, time range, darshan type) unit. Capacity
// is split across named pools; booked_count counts units consumed from
// the slot as a whole.
type Slot struct {
	ID               string    `json:"id"`
	Date             string    `json:"date"`       // YYYY-MM-DD
	TimeRange        string    `json:"time_range"` // "11:30 - 12:00", normalized
	DarshanType      string    `json:"darshan_type"`
	NormalCapacity   int       `json:"normal_capacity"`
	PriorityCapacity int       `json:"priority_capacity"`
	OtherCapacity    int       `json:"other_capacity"`
	BookedCount      int       `json:"booked_count"`
	IsActive         bool      `json:"is_active"`
	Created          time.Time `json:"created"`
	Updated          time.Time `json:"updated"`
}

// TotalCapacity sums all named pools.
func (s *Slot) TotalCapacity() int {
	return s.NormalCapacity + s.PriorityCapacity + s.OtherCapacity
}

// Available is the floor-clamped remaining capacity.
func (s *Slot) Available() int {
	remaining := s.TotalCapacity() - s.BookedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

var timeRangeSeparator = regexp.MustCompile(`\s*-\s*`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeTimeRange collapses whitespace and forces a single " - "
// separator so "11:30-12:00" and "11:30  -  12:00" resolve to the
// same slot key.
func NormalizeTimeRange(v string) string {
	if v == "" {
		return ""
	}
	v = whitespaceRun.ReplaceAllString(v, " ")
	v = timeRangeSeparator.ReplaceAllString(v, " - ")
	return strings.TrimSpace(v)
}

// CalendarDay aggregates one date's slots for the availability calendar.
type CalendarDay struct {
	Date           string          `json:"date"`
	TotalCapacity  int             `json:"total_capacity"`
	BookedCount    int             `json:"booked_count"`
	Available      int             `json:"available"`
	RatioAvailable decimal.Decimal `json:"ratio_available"`
}
