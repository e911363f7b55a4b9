package services

import (
	"fmt"
	"sort"
	"sync"

	"darshan-system/models"
	"darshan-system/store"
)

// memStore is an in-memory store.Store for service tests. WithTx
// snapshots the state and restores it when the callback fails, so the
// all-or-nothing contract holds.
type memStore struct {
	mu      sync.Mutex
	seq     int
	slots   []*models.Slot
	tickets []*models.Ticket
	zones   []*models.Zone
	logs    []*models.EntryExitLog
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_%d", prefix, m.seq)
}

func (m *memStore) WithTx(fn func(tx store.Store) error) error {
	m.mu.Lock()
	snapshot := struct {
		seq     int
		slots   []*models.Slot
		tickets []*models.Ticket
		zones   []*models.Zone
		logs    []*models.EntryExitLog
	}{m.seq, cloneAll(m.slots), cloneAll(m.tickets), cloneAll(m.zones), cloneAll(m.logs)}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.seq = snapshot.seq
		m.slots = snapshot.slots
		m.tickets = snapshot.tickets
		m.zones = snapshot.zones
		m.logs = snapshot.logs
		m.mu.Unlock()
		return err
	}
	return nil
}

func cloneAll[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		c := *v
		out = append(out, &c)
	}
	return out
}

func (m *memStore) CreateSlot(slot *models.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot.ID = m.nextID("slot")
	c := *slot
	m.slots = append(m.slots, &c)
	return nil
}

func (m *memStore) FindSlotByKey(date, timeRange, darshanType string) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.Date == date && s.TimeRange == timeRange && s.DarshanType == darshanType {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListSlots(filter store.SlotFilter) ([]*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Slot
	for _, s := range m.slots {
		if filter.Date != "" && s.Date != filter.Date {
			continue
		}
		if filter.DarshanType != "" && s.DarshanType != filter.DarshanType {
			continue
		}
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TimeRange < out[j].TimeRange
	})
	return out, nil
}

func (m *memStore) SaveSlot(slot *models.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.slots {
		if s.ID == slot.ID {
			c := *slot
			m.slots[i] = &c
			return nil
		}
	}
	return fmt.Errorf("slot %s not found", slot.ID)
}

func (m *memStore) CreateTicket(ticket *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket.ID = m.nextID("ticket")
	c := *ticket
	m.tickets = append(m.tickets, &c)
	return nil
}

func (m *memStore) FindTicketByCode(code string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.Code == code {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListTicketsByUser(userID string) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Ticket
	for i := len(m.tickets) - 1; i >= 0; i-- {
		if m.tickets[i].UserID == userID {
			c := *m.tickets[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memStore) SaveTicket(ticket *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tickets {
		if t.ID == ticket.ID {
			c := *ticket
			m.tickets[i] = &c
			return nil
		}
	}
	return fmt.Errorf("ticket %s not found", ticket.ID)
}

func (m *memStore) CreateZone(zone *models.Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	zone.ID = m.nextID("zone")
	c := *zone
	m.zones = append(m.zones, &c)
	return nil
}

func (m *memStore) FindZoneByName(name string) (*models.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, z := range m.zones {
		if z.Name == name {
			c := *z
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListZones() ([]*models.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := cloneAll(m.zones)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) SaveZone(zone *models.Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, z := range m.zones {
		if z.ID == zone.ID {
			c := *zone
			m.zones[i] = &c
			return nil
		}
	}
	return fmt.Errorf("zone %s not found", zone.ID)
}

func (m *memStore) AppendEntryExitLog(entry *models.EntryExitLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = m.nextID("log")
	c := *entry
	m.logs = append(m.logs, &c)
	return nil
}

func (m *memStore) ListLogsByTicket(code string) ([]*models.EntryExitLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.EntryExitLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].TicketCode == code {
			c := *m.logs[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// fakePublisher records broadcasts for assertions.
type fakePublisher struct {
	mu           sync.Mutex
	zoneUpdates  [][]models.ZoneSnapshot
	statusEvents []models.TicketStatusEvent
	userEvents   map[string][]models.TicketStatusEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{userEvents: map[string][]models.TicketStatusEvent{}}
}

func (f *fakePublisher) PublishZones(zones []models.ZoneSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zoneUpdates = append(f.zoneUpdates, zones)
}

func (f *fakePublisher) PublishTicketStatus(evt models.TicketStatusEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusEvents = append(f.statusEvents, evt)
}

func (f *fakePublisher) PublishUserTicket(userID string, evt models.TicketStatusEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userEvents[userID] = append(f.userEvents[userID], evt)
}
