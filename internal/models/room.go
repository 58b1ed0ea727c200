package models

import "time"

// Role identifies the author of a chat entry or the standing of a
// connection inside a room.
type Role string

const (
	RoleX         Role = "X"
	RoleO         Role = "O"
	RoleSpectator Role = "Spectator"
	RoleSystem    Role = "System"
)

// Member is a connection attached to a room, either in a seat or in
// the spectator queue.
type Member struct {
	ConnID string `json:"id"`
	Name   string `json:"name"`
}

// Chat is a single chat log entry. IDs are room-local and monotonic.
type Chat struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Seats holds the two player seats of a room. A nil entry is a vacant seat.
type Seats struct {
	X *Member `json:"X"`
	O *Member `json:"O"`
}

// Room is the wire snapshot of a room aggregate, shipped to clients in
// gameStart, roomUpdate, roleSwitch and becomePlayer payloads. It is a
// deep copy: once built it shares nothing with the live room.
type Room struct {
	ID         string    `json:"id"`
	GameState  GameState `json:"gameState"`
	Chat       []Chat    `json:"chat"`
	Players    Seats     `json:"players"`
	Spectators []Member  `json:"spectators"`
}
