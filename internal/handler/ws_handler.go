package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/config"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/hub"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/log"
)

// WSHandler upgrades watch-party connections and attaches them to the hub.
type WSHandler struct {
	hub      *hub.Hub
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:   h,
		wsCfg: wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	l := log.Ctx(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)
	if err := h.hub.Register(client); err != nil {
		l.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("rejecting connection")
		conn.Close()
		return
	}
	l.Debug().Str(log.FieldClientID, client.ID).Msg("client connected")

	go client.WritePump()
	go client.ReadPump(h.hub.Submit)
}

func (h *WSHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket)
}
