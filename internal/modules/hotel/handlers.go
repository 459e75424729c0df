package hotel

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/http/helpers"
	mw "github.com/dropDatabas3/fleethub/internal/http/middlewares"
)

var (
	errRoomExists   = errors.New("hotel: room number already exists")
	errRoomNotFound = errors.New("hotel: room not found")
	errBadDates     = errors.New("hotel: invalid stay dates")
	errOverlap      = errors.New("hotel: room already booked for those dates")
)

func toAppError(err error) error {
	switch {
	case errors.Is(err, errRoomExists):
		return httperrors.ErrConflict.WithDetail(err.Error())
	case errors.Is(err, errOverlap):
		return httperrors.ErrConflict.WithDetail(err.Error())
	case errors.Is(err, errRoomNotFound):
		return httperrors.ErrNotFound.WithDetail(err.Error())
	case errors.Is(err, errBadDates):
		return httperrors.ErrInvalidPayload.WithDetail("checkIn/checkOut deben ser YYYY-MM-DD y checkOut posterior a checkIn")
	}
	return err
}

// Routes se monta bajo el apiBase del módulo, detrás del gate de suscripción.
func (m *Module) Routes(r chi.Router) {
	r.Get("/rooms", m.handleListRooms)
	r.Post("/rooms", m.handleCreateRoom)
	r.Get("/bookings", m.handleListBookings)
	r.Post("/bookings", m.handleCreateBooking)
}

// tenantID viene del gate (middlewares.RequireEntitlement).
func tenantID(r *http.Request) string {
	if t := mw.GetTenant(r.Context()); t != nil {
		return t.ID
	}
	return ""
}

func (m *Module) handleListRooms(w http.ResponseWriter, r *http.Request) {
	helpers.WriteSuccess(w, http.StatusOK, "", m.listRooms(tenantID(r)))
}

type createRoomRequest struct {
	Number string  `json:"number"`
	Kind   string  `json:"kind"`
	Rate   float64 `json:"rate"`
}

func (m *Module) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Number = strings.TrimSpace(req.Number)
	if req.Number == "" || req.Rate < 0 {
		httperrors.WriteError(w, httperrors.ErrInvalidPayload.WithDetail("number requerido y rate >= 0"))
		return
	}

	room, err := m.addRoom(tenantID(r), Room{Number: req.Number, Kind: strings.TrimSpace(req.Kind), Rate: req.Rate})
	if err != nil {
		httperrors.WriteErrorCtx(w, r, toAppError(err))
		return
	}
	helpers.WriteSuccess(w, http.StatusCreated, "room created", room)
}

func (m *Module) handleListBookings(w http.ResponseWriter, r *http.Request) {
	helpers.WriteSuccess(w, http.StatusOK, "", m.listBookings(tenantID(r)))
}

type createBookingRequest struct {
	RoomID   string `json:"roomId"`
	Guest    string `json:"guest"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

func (m *Module) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RoomID) == "" || strings.TrimSpace(req.Guest) == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidPayload.WithDetail("roomId y guest requeridos"))
		return
	}

	b, err := m.addBooking(tenantID(r), Booking{
		RoomID:   strings.TrimSpace(req.RoomID),
		Guest:    strings.TrimSpace(req.Guest),
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
	})
	if err != nil {
		httperrors.WriteErrorCtx(w, r, toAppError(err))
		return
	}
	helpers.WriteSuccess(w, http.StatusCreated, "booking created", b)
}
