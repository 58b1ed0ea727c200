package room

import "tictacfade/internal/models"

// Server→client event names.
const (
	EventGameStart       = "gameStart"
	EventRoomUpdate      = "roomUpdate"
	EventGameStateUpdate = "gameStateUpdate"
	EventGameEnd         = "gameEnd"
	EventChatMessage     = "chatMessage"
	EventPlayerLeft      = "playerLeft"
	EventSpectatorJoined = "spectatorJoined"
	EventRoleSwitch      = "roleSwitch"
	EventBecomePlayer    = "becomePlayer"
)

// Emitter is the Coordinator's outbound side: a named broadcast group
// per room plus targeted sends. The ws hub implements it; the
// Coordinator never touches the transport directly.
type Emitter interface {
	JoinGroup(roomID, connID string)
	LeaveGroup(roomID, connID string)
	ToRoom(roomID, event string, payload any)
	ToConn(connID, event string, payload any)
}

// PlayerLeft announces a vacated seat.
type PlayerLeft struct {
	DisplayName string      `json:"displayName"`
	Mark        models.Mark `json:"mark"`
}

// SpectatorJoined announces a new spectator.
type SpectatorJoined struct {
	DisplayName string `json:"displayName"`
}

// RoleSwitch carries the full room snapshot after a seat swap, so both
// players re-derive their mark from seat membership.
type RoleSwitch struct {
	Room models.Room `json:"room"`
}

// BecomePlayer is sent to a single promoted spectator.
type BecomePlayer struct {
	Room models.Room `json:"room"`
	Mark models.Mark `json:"mark"`
}
