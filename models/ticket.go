package models

import (
	"time"
)

// Ticket statuses. A ticket only ever moves forward:
// BOOKED -> ENTERED -> EXITED, or BOOKED -> CANCELLED.
const (
	TicketBooked    = "BOOKED"
	TicketEntered   = "ENTERED"
	TicketExited    = "EXITED"
	TicketCancelled = "CANCELLED"
)

// Pilgrim is one person on a ticket. Proof fields hold opaque file
// references resolved by the external document store.
type Pilgrim struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender"`

	IDType      string `json:"id_type"`
	IDNumber    string `json:"id_number"`
	IDProofFile string `json:"id_proof_file"`

	PriorityEnabled   bool   `json:"priority_enabled"`
	PriorityType      string `json:"priority_type,omitempty"`
	ProofType         string `json:"proof_type,omitempty"`
	ProofNumber       string `json:"proof_number,omitempty"`
	OtherCase         string `json:"other_case,omitempty"`
	PriorityProofFile string `json:"priority_proof_file,omitempty"`
}

// Ticket is a confirmed reservation for one or more persons against a
// specific slot. Code is the human-readable unique ticket identifier.
type Ticket struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	UserID      string    `json:"user_id"`
	UserContact string    `json:"user_contact"`
	DarshanType string    `json:"darshan_type"`
	Date        string    `json:"date"`
	SlotTime    string    `json:"slot_time"`
	PersonCount int       `json:"persons_count"`
	Pilgrims    []Pilgrim `json:"pilgrims"`
	Status      string    `json:"status"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// PriorityCount re-derives the number of priority claimants from the
// per-person records.
func (t *Ticket) PriorityCount() int {
	count := 0
	for _, p := range t.Pilgrims {
		if p.PriorityEnabled {
			count++
		}
	}
	return count
}

// CanTransition reports whether a scan action is permitted from the
// ticket's current status. ENTRY is only valid from BOOKED, EXIT only
// from ENTERED; EXITED and CANCELLED are terminal.
func (t *Ticket) CanTransition(action string) bool {
	switch action {
	case ActionEntry:
		return t.Status == TicketBooked
	case ActionExit:
		return t.Status == TicketEntered
	default:
		return false
	}
}
