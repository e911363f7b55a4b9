package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot_Available(t *testing.T) {
	slot := &Slot{NormalCapacity: 100, PriorityCapacity: 20, OtherCapacity: 10, BookedCount: 60}
	assert.Equal(t, 130, slot.TotalCapacity())
	assert.Equal(t, 70, slot.Available())

	// Clamped when an admin shrank capacity after bookings.
	slot = &Slot{NormalCapacity: 10, BookedCount: 15}
	assert.Equal(t, 0, slot.Available())
}

func TestNormalizeTimeRange(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11:30 - 12:00", "11:30 - 12:00"},
		{"11:30-12:00", "11:30 - 12:00"},
		{"11:30  -  12:00", "11:30 - 12:00"},
		{"  11:30 -12:00 ", "11:30 - 12:00"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTimeRange(tt.in), "input %q", tt.in)
	}
}

func TestTicket_CanTransition(t *testing.T) {
	tests := []struct {
		status string
		action string
		want   bool
	}{
		{TicketBooked, ActionEntry, true},
		{TicketBooked, ActionExit, false},
		{TicketEntered, ActionExit, true},
		{TicketEntered, ActionEntry, false},
		{TicketExited, ActionEntry, false},
		{TicketExited, ActionExit, false},
		{TicketCancelled, ActionEntry, false},
		{TicketCancelled, ActionExit, false},
		{TicketBooked, "PEEK", false},
	}
	for _, tt := range tests {
		ticket := &Ticket{Status: tt.status}
		assert.Equal(t, tt.want, ticket.CanTransition(tt.action),
			"status %s action %s", tt.status, tt.action)
	}
}

func TestTicket_PriorityCount(t *testing.T) {
	ticket := &Ticket{Pilgrims: []Pilgrim{
		{FullName: "A", PriorityEnabled: true},
		{FullName: "B"},
		{FullName: "C", PriorityEnabled: true},
	}}
	assert.Equal(t, 2, ticket.PriorityCount())
}

func TestZone_DensityLevel(t *testing.T) {
	tests := []struct {
		name    string
		current int
		max     int
		want    string
	}{
		{"empty", 0, 400, DensityLow},
		{"just below low boundary", 159, 400, DensityLow},
		{"exactly 0.4", 160, 400, DensityModerate},
		{"just below high boundary", 299, 400, DensityModerate},
		{"exactly 0.75", 300, 400, DensityHigh},
		{"full", 400, 400, DensityHigh},
		{"over capacity", 450, 400, DensityHigh},
		{"zero capacity", 0, 0, DensityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone := &Zone{CurrentCount: tt.current, MaxCapacity: tt.max}
			assert.Equal(t, tt.want, zone.DensityLevel())
		})
	}
}

func TestZone_Snapshot(t *testing.T) {
	zone := &Zone{Name: "Gate 1", CurrentCount: 150, MaxCapacity: 400}
	snap := zone.Snapshot()
	assert.Equal(t, "Gate 1", snap.Name)
	assert.Equal(t, 150, snap.CurrentCount)
	assert.Equal(t, DensityLow, snap.DensityLevel)
}
