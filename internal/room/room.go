package room

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"tictacfade/internal/game"
	"tictacfade/internal/models"

	"github.com/samber/lo"
)

// Room is the authoritative aggregate for one game: board state, chat
// log and membership. All mutation happens under mu, inside a single
// Coordinator operation; everything that leaves the lock is a deep copy.
type Room struct {
	mu      sync.Mutex
	closed  bool
	chatSeq int

	ID         string
	Game       models.GameState
	Chat       []models.Chat
	PlayerX    *models.Member
	PlayerO    *models.Member
	Spectators []models.Member
}

func newRoom(id string) *Room {
	return &Room{
		ID:         id,
		Game:       game.New(),
		Chat:       []models.Chat{},
		Spectators: []models.Member{},
	}
}

// seat returns the occupant pointer for the given mark.
func (r *Room) seat(mark models.Mark) **models.Member {
	if mark == models.MarkX {
		return &r.PlayerX
	}
	return &r.PlayerO
}

// markOf resolves a connection to its seat, if it holds one.
func (r *Room) markOf(connID string) (models.Mark, bool) {
	if r.PlayerX != nil && r.PlayerX.ConnID == connID {
		return models.MarkX, true
	}
	if r.PlayerO != nil && r.PlayerO.ConnID == connID {
		return models.MarkO, true
	}
	return models.Empty, false
}

// spectator looks the connection up in the spectator queue.
func (r *Room) spectator(connID string) (models.Member, bool) {
	return lo.Find(r.Spectators, func(m models.Member) bool {
		return m.ConnID == connID
	})
}

func (r *Room) bothSeatsFilled() bool {
	return r.PlayerX != nil && r.PlayerO != nil
}

// emptySeat returns the first vacant seat, X before O.
func (r *Room) emptySeat() (models.Mark, bool) {
	if r.PlayerX == nil {
		return models.MarkX, true
	}
	if r.PlayerO == nil {
		return models.MarkO, true
	}
	return models.Empty, false
}

func (r *Room) empty() bool {
	return r.PlayerX == nil && r.PlayerO == nil && len(r.Spectators) == 0
}

// appendChat appends an entry to the chat log and returns it. Entry ids
// are room-local and monotonic, so recipients can rely on their order.
func (r *Room) appendChat(sender string, role models.Role, message string) models.Chat {
	r.chatSeq++
	entry := models.Chat{
		ID:        strconv.Itoa(r.chatSeq),
		Sender:    sender,
		Role:      role,
		Message:   message,
		Timestamp: time.Now(),
	}
	r.Chat = append(r.Chat, entry)
	return entry
}

func (r *Room) appendSystem(format string, args ...any) models.Chat {
	return r.appendChat("System", models.RoleSystem, fmt.Sprintf(format, args...))
}

// Snapshot deep-copies the room into its wire form. Callers may hand
// the result to the transport layer without further locking.
func (r *Room) Snapshot() models.Room {
	snap := models.Room{
		ID:         r.ID,
		GameState:  r.Game.Clone(),
		Chat:       append([]models.Chat{}, r.Chat...),
		Spectators: append([]models.Member{}, r.Spectators...),
	}
	if r.PlayerX != nil {
		x := *r.PlayerX
		snap.Players.X = &x
	}
	if r.PlayerO != nil {
		o := *r.PlayerO
		snap.Players.O = &o
	}
	return snap
}
