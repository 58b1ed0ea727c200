package ws

import (
	"encoding/json"

	"tictacfade/internal/models"

	"github.com/go-playground/validator/v10"
)

// Client→server event names. Server→client names live in the room package.
const (
	eventCreateRoom  = "createRoom"
	eventJoinRoom    = "joinRoom"
	eventMakeMove    = "makeMove"
	eventResetGame   = "resetGame"
	eventSwitchRole  = "switchRole"
	eventSendMessage = "sendMessage"
	eventLeaveRoom   = "leaveRoom"

	// eventAck carries the reply to an inbound request that asked for one.
	eventAck = "ack"
)

// Envelope is the wire frame in both directions. Requests that expect a
// reply carry a non-zero Ack id; the reply echoes it back under the
// "ack" event.
type Envelope struct {
	Event string          `json:"event"`
	Ack   int64           `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var validate = validator.New()

// decode unmarshals and validates a request payload in one step.
func decode(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	return validate.Struct(v)
}

type createRoomRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=32"`
}

type joinRoomRequest struct {
	RoomID      string `json:"roomId" validate:"required,alphanum"`
	DisplayName string `json:"displayName" validate:"required,max=32"`
}

type makeMoveRequest struct {
	RoomID   string `json:"roomId" validate:"required,alphanum"`
	Position int    `json:"position"`
}

type roomRequest struct {
	RoomID string `json:"roomId" validate:"required,alphanum"`
}

type sendMessageRequest struct {
	RoomID string `json:"roomId" validate:"required,alphanum"`
	Text   string `json:"text" validate:"required,max=500"`
}

type createRoomResponse struct {
	Success    bool        `json:"success"`
	RoomID     string      `json:"roomId"`
	PlayerRole models.Mark `json:"playerRole"`
	Room       models.Room `json:"room"`
}

type joinRoomResponse struct {
	Success     bool         `json:"success"`
	RoomID      string       `json:"roomId"`
	PlayerRole  *models.Mark `json:"playerRole"` // null for spectators
	Room        models.Room  `json:"room"`
	IsSpectator bool         `json:"isSpectator,omitempty"`
}

type makeMoveResponse struct {
	Success   bool             `json:"success"`
	GameState models.GameState `json:"gameState"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
