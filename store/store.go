package store

import (
	"darshan-system/models"
)

// SlotFilter narrows slot listings. Zero values mean "no filter".
type SlotFilter struct {
	Date        string
	DarshanType string
	ActiveOnly  bool
}

// Store is the durable record storage the engine runs against. Lookups
// return (nil, nil) when the record is absent; the services translate
// absence into the caller-facing error. Implementations must make
// WithTx atomic: either every write inside the callback commits or
// none does.
type Store interface {
	WithTx(fn func(tx Store) error) error

	CreateSlot(slot *models.Slot) error
	FindSlotByKey(date, timeRange, darshanType string) (*models.Slot, error)
	ListSlots(filter SlotFilter) ([]*models.Slot, error)
	SaveSlot(slot *models.Slot) error

	CreateTicket(ticket *models.Ticket) error
	FindTicketByCode(code string) (*models.Ticket, error)
	ListTicketsByUser(userID string) ([]*models.Ticket, error)
	SaveTicket(ticket *models.Ticket) error

	CreateZone(zone *models.Zone) error
	FindZoneByName(name string) (*models.Zone, error)
	ListZones() ([]*models.Zone, error)
	SaveZone(zone *models.Zone) error

	AppendEntryExitLog(entry *models.EntryExitLog) error
	ListLogsByTicket(code string) ([]*models.EntryExitLog, error)
}
