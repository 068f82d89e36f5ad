package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dojoverse/dojo-system/realtime"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeDashboard streams access, payment and bracket events to the admin
// dashboard.
func (h *WebSocketHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил HTTP ошибку клиенту.
		h.logger.Error("failed to upgrade dashboard websocket", slog.Any("error", err))
		return
	}
	h.hub.Join(conn, realtime.DashboardRoom)
}

// ServeTournament streams bracket updates for one tournament. Clients connect
// to /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade tournament websocket",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	h.hub.Join(conn, realtime.TournamentRoom(tournamentID))
}
