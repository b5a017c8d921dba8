package rooms

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/huddlehq/huddle/internal/infrastructure/json"
	"github.com/huddlehq/huddle/internal/infrastructure/logging"
	"github.com/huddlehq/huddle/internal/infrastructure/ws"
)

type Handler struct {
	coordinator *ws.Coordinator
	logger      logging.Logger
	upgrader    websocket.Upgrader
}

func NewHandler(coordinator *ws.Coordinator, logger logging.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeWS godoc
// @Summary      Open the signaling websocket
// @Description  Upgrades the connection; room membership, chat and WebRTC signaling run over the socket
// @Tags         rooms
// @Success      101 "Switching protocols"
// @Failure      400 {object} map[string]interface{} "Bad request - upgrade failed"
// @Router       /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(logging.WebSocket, logging.Connection, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn)

	h.logger.Info(logging.WebSocket, logging.Connection, "client connected", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ID(),
	})

	go client.WritePump()
	go client.ReadPump(h.coordinator)
}

// GetParticipantsHandler godoc
// @Summary      List room participants
// @Description  Returns the current members of a live room in join order
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} participantsResponse "Participants"
// @Failure      404 {object} map[string]interface{} "Room not found"
// @Router       /rooms/{roomId}/participants [get]
func (h *Handler) GetParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	room, ok := h.coordinator.Registry().Get(roomID)
	if !ok {
		json.WriteError(w, http.StatusNotFound, nil, "Room not found")
		return
	}

	json.Write(w, http.StatusOK, participantsResponse{
		RoomID:       roomID,
		ExpiresAt:    room.Deadline(),
		Participants: room.Participants(),
	})
}
