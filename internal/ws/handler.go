package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"tictacfade/internal/room"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Handler is the session gateway: it upgrades connections, maps inbound
// requests onto coordinator operations and routes replies and
// broadcasts back out through the hub.
type Handler struct {
	hub         *Hub
	coordinator *room.Coordinator
	upgrader    websocket.Upgrader
	log         *logrus.Entry
}

// NewHandler creates a gateway bound to a hub and coordinator.
func NewHandler(hub *Hub, coordinator *room.Coordinator, allowedOrigin string, logger *logrus.Logger) *Handler {
	return &Handler{
		hub:         hub,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
		log: logger.WithField("component", "gateway"),
	}
}

// RegisterRoutes sets up the WebSocket routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := newClient(uuid.NewString(), conn, h.log)
	h.hub.register(client)
	go client.writePump()

	client.log.Info("Client connected")

	s := &session{
		client:      client,
		coordinator: h.coordinator,
	}
	s.run()

	// Read loop is done: the connection dropped or misbehaved. Vacate
	// whatever membership the connection still holds.
	h.hub.unregister(client)
	if s.room != "" {
		h.coordinator.Leave(s.room, client.id)
	}
	client.log.Info("Client disconnected")
}

// session tracks one connection's current room so disconnects can be
// routed to Leave without the client naming a room id.
type session struct {
	client      *Client
	coordinator *room.Coordinator
	room        string
}

func (s *session) run() {
	conn := s.client.conn
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Malformed frames are dropped, not answered.
			s.client.log.WithError(err).Debug("Dropping malformed frame")
			continue
		}
		s.dispatch(env)
	}
}

func (s *session) dispatch(env Envelope) {
	connID := s.client.id

	switch env.Event {
	case eventCreateRoom:
		var req createRoomRequest
		if err := decode(env.Data, &req); err != nil {
			s.replyError(env, "Invalid request")
			return
		}
		res := s.coordinator.CreateRoom(connID, req.DisplayName)
		s.switchRoom(res.RoomID)
		s.reply(env, createRoomResponse{
			Success:    true,
			RoomID:     res.RoomID,
			PlayerRole: res.Mark,
			Room:       res.Room,
		})

	case eventJoinRoom:
		var req joinRoomRequest
		if err := decode(env.Data, &req); err != nil {
			s.replyError(env, "Invalid request")
			return
		}
		res, err := s.coordinator.Join(req.RoomID, connID, req.DisplayName)
		if err != nil {
			s.replyError(env, err.Error())
			return
		}
		s.switchRoom(res.RoomID)
		resp := joinRoomResponse{
			Success:     true,
			RoomID:      res.RoomID,
			Room:        res.Room,
			IsSpectator: res.IsSpectator,
		}
		if !res.IsSpectator {
			mark := res.Mark
			resp.PlayerRole = &mark
		}
		s.reply(env, resp)

	case eventMakeMove:
		var req makeMoveRequest
		if err := decode(env.Data, &req); err != nil {
			s.replyError(env, "Invalid request")
			return
		}
		state, err := s.coordinator.MakeMove(req.RoomID, connID, req.Position)
		if err != nil {
			s.replyError(env, err.Error())
			return
		}
		s.reply(env, makeMoveResponse{Success: true, GameState: state})

	case eventResetGame:
		var req roomRequest
		if err := decode(env.Data, &req); err != nil {
			return
		}
		if err := s.coordinator.ResetGame(req.RoomID, connID); err != nil {
			s.client.log.WithError(err).Debug("Reset rejected")
		}

	case eventSwitchRole:
		var req roomRequest
		if err := decode(env.Data, &req); err != nil {
			return
		}
		if err := s.coordinator.SwitchRole(req.RoomID, connID); err != nil {
			s.client.log.WithError(err).Debug("Role switch rejected")
		}

	case eventSendMessage:
		var req sendMessageRequest
		if err := decode(env.Data, &req); err != nil {
			return
		}
		s.coordinator.SendMessage(req.RoomID, connID, req.Text)

	case eventLeaveRoom:
		var req roomRequest
		if err := decode(env.Data, &req); err != nil {
			return
		}
		s.coordinator.Leave(req.RoomID, connID)
		if s.room == req.RoomID {
			s.room = ""
		}

	default:
		s.client.log.WithField("event", env.Event).Debug("Dropping unknown event")
	}
}

// switchRoom records a new current room, vacating any membership still
// held in the previous one. A connection belongs to one room at a time,
// so moving on without an explicit leaveRoom must not strand the old
// membership until disconnect.
func (s *session) switchRoom(roomID string) {
	if s.room != "" && s.room != roomID {
		s.coordinator.Leave(s.room, s.client.id)
	}
	s.room = roomID
}

// reply answers a request on its response channel. Requests sent
// without an ack id expect no reply and get none.
func (s *session) reply(env Envelope, payload any) {
	if env.Ack == 0 {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.client.log.WithError(err).Error("Failed to marshal reply")
		return
	}
	msg, err := json.Marshal(Envelope{Event: eventAck, Ack: env.Ack, Data: data})
	if err != nil {
		return
	}
	s.client.enqueue(msg)
}

func (s *session) replyError(env Envelope, message string) {
	s.reply(env, errorResponse{Success: false, Error: message})
}
