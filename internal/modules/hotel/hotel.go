// Package hotel es el módulo de referencia del Marketplace: habitaciones y
// reservas por tenant.
//
// Los datos de un tenant sobreviven a un unsubscribe; solo dejan de ser
// alcanzables a través del router hasta que el tenant vuelve a comprar el módulo.
package hotel

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

const Slug = "hotel"

const dateLayout = "2006-01-02"

type Room struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Kind      string    `json:"kind"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"createdAt"`
}

type Booking struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Guest     string    `json:"guest"`
	CheckIn   string    `json:"checkIn"`
	CheckOut  string    `json:"checkOut"`
	CreatedAt time.Time `json:"createdAt"`
}

// tenantData es el estado de un tenant; su propio mutex evita contención entre tenants.
type tenantData struct {
	mu       sync.RWMutex
	rooms    map[string]Room
	bookings []Booking
}

// Module implementa modules.HandlerSet y modules.Provisioner.
type Module struct {
	mu      sync.RWMutex
	tenants map[string]*tenantData
	now     func() time.Time
}

func New() *Module {
	return &Module{tenants: make(map[string]*tenantData), now: time.Now}
}

func (m *Module) Slug() string { return Slug }

// Provision crea el espacio del tenant si no existe. Idempotente.
func (m *Module) Provision(ctx context.Context, tenantID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	_, existed := m.tenants[tenantID]
	if !existed {
		m.tenants[tenantID] = newTenantData()
	}
	m.mu.Unlock()

	logger.From(ctx).Debug("hotel module provisioned",
		logger.TenantID(tenantID),
		logger.Bool("existing", existed),
	)
	return nil
}

func newTenantData() *tenantData {
	return &tenantData{rooms: make(map[string]Room)}
}

// data devuelve el espacio del tenant creándolo si falta (p.ej. tras reiniciar el Hub).
func (m *Module) data(tenantID string) *tenantData {
	m.mu.RLock()
	d, ok := m.tenants[tenantID]
	m.mu.RUnlock()
	if ok {
		return d
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok = m.tenants[tenantID]; !ok {
		d = newTenantData()
		m.tenants[tenantID] = d
	}
	return d
}

func (m *Module) listRooms(tenantID string) []Room {
	d := m.data(tenantID)
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (m *Module) addRoom(tenantID string, r Room) (Room, error) {
	d := m.data(tenantID)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.rooms {
		if existing.Number == r.Number {
			return Room{}, errRoomExists
		}
	}
	r.ID = uuid.NewString()
	r.CreatedAt = m.now().UTC()
	d.rooms[r.ID] = r
	return r, nil
}

func (m *Module) listBookings(tenantID string) []Booking {
	d := m.data(tenantID)
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Booking{}, d.bookings...)
}

func (m *Module) addBooking(tenantID string, b Booking) (Booking, error) {
	in, err := time.Parse(dateLayout, b.CheckIn)
	if err != nil {
		return Booking{}, errBadDates
	}
	out, err := time.Parse(dateLayout, b.CheckOut)
	if err != nil || !out.After(in) {
		return Booking{}, errBadDates
	}

	d := m.data(tenantID)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[b.RoomID]; !ok {
		return Booking{}, errRoomNotFound
	}
	for _, other := range d.bookings {
		if other.RoomID != b.RoomID {
			continue
		}
		oin, _ := time.Parse(dateLayout, other.CheckIn)
		oout, _ := time.Parse(dateLayout, other.CheckOut)
		if in.Before(oout) && oin.Before(out) {
			return Booking{}, errOverlap
		}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = m.now().UTC()
	d.bookings = append(d.bookings, b)
	return b, nil
}
