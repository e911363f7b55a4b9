package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"darshan-system/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Collection names.
const (
	CollectionSlots         = "slots"
	CollectionTickets       = "tickets"
	CollectionZones         = "zones"
	CollectionEntryExitLogs = "entry_exit_logs"
)

// PocketBase persists the engine's entities in PocketBase collections.
type PocketBase struct {
	app core.App
}

func NewPocketBase(app core.App) *PocketBase {
	return &PocketBase{app: app}
}

// WithTx runs fn against a transaction-bound store. PocketBase rolls
// the whole transaction back when fn returns an error.
func (s *PocketBase) WithTx(fn func(tx Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&PocketBase{app: txApp})
	})
}

// --- slots ---

func (s *PocketBase) CreateSlot(slot *models.Slot) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionSlots)
	if err != nil {
		return err
	}
	record := core.NewRecord(collection)
	applySlot(record, slot)
	if err := s.app.Save(record); err != nil {
		return err
	}
	slot.ID = record.Id
	return nil
}

func (s *PocketBase) FindSlotByKey(date, timeRange, darshanType string) (*models.Slot, error) {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionSlots,
		"date = {:date} && time_range = {:timeRange} && darshan_type = {:darshanType}",
		map[string]any{"date": date, "timeRange": timeRange, "darshanType": darshanType},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return slotFromRecord(record), nil
}

func (s *PocketBase) ListSlots(filter SlotFilter) ([]*models.Slot, error) {
	exprs := []string{}
	params := map[string]any{}
	if filter.Date != "" {
		exprs = append(exprs, "date = {:date}")
		params["date"] = filter.Date
	}
	if filter.DarshanType != "" {
		exprs = append(exprs, "darshan_type = {:darshanType}")
		params["darshanType"] = filter.DarshanType
	}
	if filter.ActiveOnly {
		exprs = append(exprs, "is_active = true")
	}
	expr := strings.Join(exprs, " && ")
	if expr == "" {
		expr = "id != ''"
	}

	records, err := s.app.FindRecordsByFilter(
		CollectionSlots, expr, "date,time_range", 0, 0, params,
	)
	if err != nil {
		return nil, err
	}
	slots := make([]*models.Slot, 0, len(records))
	for _, record := range records {
		slots = append(slots, slotFromRecord(record))
	}
	return slots, nil
}

func (s *PocketBase) SaveSlot(slot *models.Slot) error {
	record, err := s.app.FindRecordById(CollectionSlots, slot.ID)
	if err != nil {
		return err
	}
	applySlot(record, slot)
	return s.app.Save(record)
}

func applySlot(record *core.Record, slot *models.Slot) {
	record.Set("date", slot.Date)
	record.Set("time_range", slot.TimeRange)
	record.Set("darshan_type", slot.DarshanType)
	record.Set("normal_capacity", slot.NormalCapacity)
	record.Set("priority_capacity", slot.PriorityCapacity)
	record.Set("other_capacity", slot.OtherCapacity)
	record.Set("booked_count", slot.BookedCount)
	record.Set("is_active", slot.IsActive)
}

func slotFromRecord(record *core.Record) *models.Slot {
	return &models.Slot{
		ID:               record.Id,
		Date:             record.GetString("date"),
		TimeRange:        record.GetString("time_range"),
		DarshanType:      record.GetString("darshan_type"),
		NormalCapacity:   record.GetInt("normal_capacity"),
		PriorityCapacity: record.GetInt("priority_capacity"),
		OtherCapacity:    record.GetInt("other_capacity"),
		BookedCount:      record.GetInt("booked_count"),
		IsActive:         record.GetBool("is_active"),
		Created:          record.GetDateTime("created").Time(),
		Updated:          record.GetDateTime("updated").Time(),
	}
}

// --- tickets ---

func (s *PocketBase) CreateTicket(ticket *models.Ticket) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionTickets)
	if err != nil {
		return err
	}
	record := core.NewRecord(collection)
	if err := applyTicket(record, ticket); err != nil {
		return err
	}
	if err := s.app.Save(record); err != nil {
		return err
	}
	ticket.ID = record.Id
	return nil
}

func (s *PocketBase) FindTicketByCode(code string) (*models.Ticket, error) {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionTickets, "code = {:code}", map[string]any{"code": code},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ticketFromRecord(record)
}

func (s *PocketBase) ListTicketsByUser(userID string) ([]*models.Ticket, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionTickets, "user_id = {:userId}", "-created", 0, 0,
		map[string]any{"userId": userID},
	)
	if err != nil {
		return nil, err
	}
	tickets := make([]*models.Ticket, 0, len(records))
	for _, record := range records {
		ticket, err := ticketFromRecord(record)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (s *PocketBase) SaveTicket(ticket *models.Ticket) error {
	record, err := s.app.FindRecordById(CollectionTickets, ticket.ID)
	if err != nil {
		return err
	}
	if err := applyTicket(record, ticket); err != nil {
		return err
	}
	return s.app.Save(record)
}

func applyTicket(record *core.Record, ticket *models.Ticket) error {
	raw, err := json.Marshal(ticket.Pilgrims)
	if err != nil {
		return err
	}
	record.Set("code", ticket.Code)
	record.Set("user_id", ticket.UserID)
	record.Set("user_contact", ticket.UserContact)
	record.Set("darshan_type", ticket.DarshanType)
	record.Set("date", ticket.Date)
	record.Set("slot_time", ticket.SlotTime)
	record.Set("persons_count", ticket.PersonCount)
	record.Set("pilgrims", string(raw))
	record.Set("status", ticket.Status)
	return nil
}

func ticketFromRecord(record *core.Record) (*models.Ticket, error) {
	var pilgrims []models.Pilgrim
	if err := record.UnmarshalJSONField("pilgrims", &pilgrims); err != nil {
		return nil, err
	}
	return &models.Ticket{
		ID:          record.Id,
		Code:        record.GetString("code"),
		UserID:      record.GetString("user_id"),
		UserContact: record.GetString("user_contact"),
		DarshanType: record.GetString("darshan_type"),
		Date:        record.GetString("date"),
		SlotTime:    record.GetString("slot_time"),
		PersonCount: record.GetInt("persons_count"),
		Pilgrims:    pilgrims,
		Status:      record.GetString("status"),
		Created:     record.GetDateTime("created").Time(),
		Updated:     record.GetDateTime("updated").Time(),
	}, nil
}

// --- zones ---

func (s *PocketBase) CreateZone(zone *models.Zone) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionZones)
	if err != nil {
		return err
	}
	record := core.NewRecord(collection)
	applyZone(record, zone)
	if err := s.app.Save(record); err != nil {
		return err
	}
	zone.ID = record.Id
	return nil
}

func (s *PocketBase) FindZoneByName(name string) (*models.Zone, error) {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionZones, "name = {:name}", map[string]any{"name": name},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return zoneFromRecord(record), nil
}

func (s *PocketBase) ListZones() ([]*models.Zone, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionZones, "id != ''", "name", 0, 0,
	)
	if err != nil {
		return nil, err
	}
	zones := make([]*models.Zone, 0, len(records))
	for _, record := range records {
		zones = append(zones, zoneFromRecord(record))
	}
	return zones, nil
}

func (s *PocketBase) SaveZone(zone *models.Zone) error {
	record, err := s.app.FindRecordById(CollectionZones, zone.ID)
	if err != nil {
		return err
	}
	applyZone(record, zone)
	return s.app.Save(record)
}

func applyZone(record *core.Record, zone *models.Zone) {
	record.Set("name", zone.Name)
	record.Set("current_count", zone.CurrentCount)
	record.Set("max_capacity", zone.MaxCapacity)
}

func zoneFromRecord(record *core.Record) *models.Zone {
	return &models.Zone{
		ID:           record.Id,
		Name:         record.GetString("name"),
		CurrentCount: record.GetInt("current_count"),
		MaxCapacity:  record.GetInt("max_capacity"),
		Created:      record.GetDateTime("created").Time(),
		Updated:      record.GetDateTime("updated").Time(),
	}
}

// --- entry/exit logs ---

func (s *PocketBase) AppendEntryExitLog(entry *models.EntryExitLog) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionEntryExitLogs)
	if err != nil {
		return err
	}
	record := core.NewRecord(collection)
	record.Set("ticket_code", entry.TicketCode)
	record.Set("action", entry.Action)
	record.Set("gate", entry.Gate)
	record.Set("zone_name", entry.ZoneName)
	record.Set("scanned_at", types.NowDateTime())
	if err := s.app.Save(record); err != nil {
		return err
	}
	entry.ID = record.Id
	entry.ScannedAt = record.GetDateTime("scanned_at").Time()
	return nil
}

func (s *PocketBase) ListLogsByTicket(code string) ([]*models.EntryExitLog, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionEntryExitLogs, "ticket_code = {:code}", "-scanned_at", 0, 0,
		map[string]any{"code": code},
	)
	if err != nil {
		return nil, err
	}
	entries := make([]*models.EntryExitLog, 0, len(records))
	for _, record := range records {
		entries = append(entries, &models.EntryExitLog{
			ID:         record.Id,
			TicketCode: record.GetString("ticket_code"),
			Action:     record.GetString("action"),
			Gate:       record.GetString("gate"),
			ZoneName:   record.GetString("zone_name"),
			ScannedAt:  record.GetDateTime("scanned_at").Time(),
		})
	}
	return entries, nil
}
