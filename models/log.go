package models

import (
	"time"
)

// Scan actions.
const (
	ActionEntry = "ENTRY"
	ActionExit  = "EXIT"
)

const DefaultGate = "Main Gate"

func IsValidAction(v string) bool {
	return v == ActionEntry || v == ActionExit
}

// EntryExitLog is one immutable audit record of a processed scan.
// Never updated or deleted once written.
type EntryExitLog struct {
	ID         string    `json:"id"`
	TicketCode string    `json:"ticket_code"`
	Action     string    `json:"action"`
	Gate       string    `json:"gate"`
	ZoneName   string    `json:"zone_name"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// TicketStatusEvent is broadcast to observers after every successful
// scan or cancellation.
type TicketStatusEvent struct {
	TicketCode string    `json:"ticket_code"`
	Status     string    `json:"status"`
	ZoneName   string    `json:"zone_name,omitempty"`
	Action     string    `json:"action,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
