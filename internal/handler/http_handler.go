package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/hub"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/room"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/service"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/log"
)

// HTTPHandler serves read-only room diagnostics.
type HTTPHandler struct {
	hub     *hub.Hub
	service service.RoomService
}

func NewHTTPHandler(h *hub.Hub, svc service.RoomService) *HTTPHandler {
	return &HTTPHandler{
		hub:     h,
		service: svc,
	}
}

// RoomsResponse is the body of GET /api/v1/rooms.
type RoomsResponse struct {
	Rooms []room.Summary `json:"rooms"`
	Total int            `json:"total"`
}

// ListRooms handles GET /api/v1/rooms
func (h *HTTPHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	var rooms []room.Summary
	if err := h.hub.Do(r.Context(), func() { rooms = h.service.Rooms() }); err != nil {
		h.unavailable(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RoomsResponse{Rooms: rooms, Total: len(rooms)})
}

// GetRoom handles GET /api/v1/rooms/{room_id}
func (h *HTTPHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]
	if roomID == "" {
		http.Error(w, "room_id is required", http.StatusBadRequest)
		return
	}

	var (
		snap  room.Snapshot
		found bool
	)
	if err := h.hub.Do(r.Context(), func() { snap, found = h.service.Room(roomID) }); err != nil {
		h.unavailable(w, r, err)
		return
	}
	if !found {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// HealthCheck handles GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rooms", h.ListRooms).Methods("GET")
	api.HandleFunc("/rooms/{room_id}", h.GetRoom).Methods("GET")
}

func (h *HTTPHandler) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	l := log.Ctx(r.Context())
	l.Warn().Err(err).Msg("hub unavailable")
	http.Error(w, "service unavailable", http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
