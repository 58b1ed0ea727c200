package room

import (
	"errors"

	"tictacfade/internal/game"
	"tictacfade/internal/models"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var (
	ErrRoomNotFound   = errors.New("Room not found")
	ErrNotAPlayer     = errors.New("You are not a player in this room")
	ErrSeatsNotFilled = errors.New("Both seats must be filled")
)

// JoinResult is what a successful CreateRoom or Join hands back to the
// caller's response channel.
type JoinResult struct {
	RoomID      string
	Mark        models.Mark // Empty for spectators
	IsSpectator bool
	Room        models.Room
}

// Coordinator serializes all state transitions of a room. Each
// operation locks exactly one room, runs to completion and emits its
// events before unlocking, so every recipient observes the same total
// order per room. Operations on different rooms run in parallel.
//
// Rejected actions mutate nothing and broadcast nothing; the error is
// reported only to the caller.
type Coordinator struct {
	registry *Registry
	emitter  Emitter
	log      *logrus.Entry
}

// NewCoordinator wires a coordinator to its registry and emitter.
func NewCoordinator(registry *Registry, emitter Emitter, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		registry: registry,
		emitter:  emitter,
		log:      logger.WithField("component", "coordinator"),
	}
}

// lock finds a room and acquires its lock. Rooms that were deleted
// between lookup and lock behave as if they never existed.
func (c *Coordinator) lock(roomID string) (*Room, error) {
	r, ok := c.registry.Find(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// CreateRoom creates a room with the caller seated as Player X.
func (c *Coordinator) CreateRoom(connID, displayName string) JoinResult {
	r := c.registry.Create()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.PlayerX = &models.Member{ConnID: connID, Name: displayName}
	r.appendSystem("Welcome to the game!")
	c.emitter.JoinGroup(r.ID, connID)

	c.log.WithFields(logrus.Fields{
		"room_id": r.ID,
		"conn_id": connID,
		"name":    displayName,
	}).Info("Room created")

	return JoinResult{RoomID: r.ID, Mark: models.MarkX, Room: r.Snapshot()}
}

// Join seats the caller in the first empty seat, X before O, or appends
// them to the spectator queue when both seats are taken.
func (c *Coordinator) Join(roomID, connID, displayName string) (JoinResult, error) {
	r, err := c.lock(roomID)
	if err != nil {
		return JoinResult{}, err
	}
	defer r.mu.Unlock()

	member := models.Member{ConnID: connID, Name: displayName}
	logCtx := c.log.WithFields(logrus.Fields{
		"room_id": roomID,
		"conn_id": connID,
		"name":    displayName,
	})

	// A connection holds at most one membership per room. Joining again
	// short-circuits to the existing one instead of taking a second
	// seat, which would leave an unreclaimable membership on disconnect.
	if mark, ok := r.markOf(connID); ok {
		logCtx.WithField("mark", mark).Debug("Already seated, returning existing membership")
		return JoinResult{RoomID: r.ID, Mark: mark, Room: r.Snapshot()}, nil
	}
	if _, ok := r.spectator(connID); ok {
		logCtx.Debug("Already spectating, returning existing membership")
		return JoinResult{RoomID: r.ID, IsSpectator: true, Room: r.Snapshot()}, nil
	}

	if r.bothSeatsFilled() {
		r.Spectators = append(r.Spectators, member)
		c.emitter.JoinGroup(r.ID, connID)
		r.appendSystem("%s joined the room as Spectator", displayName)
		result := JoinResult{RoomID: r.ID, IsSpectator: true, Room: r.Snapshot()}
		c.emitter.ToRoom(r.ID, EventSpectatorJoined, SpectatorJoined{DisplayName: displayName})
		logCtx.Info("Spectator joined")
		return result, nil
	}

	mark, _ := r.emptySeat()
	*r.seat(mark) = &member
	c.emitter.JoinGroup(r.ID, connID)
	r.appendSystem("%s joined the room as Player %s", displayName, mark)
	result := JoinResult{RoomID: r.ID, Mark: mark, Room: r.Snapshot()}
	c.emitter.ToRoom(r.ID, EventGameStart, result.Room)
	logCtx.WithField("mark", mark).Info("Player joined")
	return result, nil
}

// MakeMove applies a move for the caller's seat and broadcasts the new
// state. Engine rejections come back to the caller untouched.
func (c *Coordinator) MakeMove(roomID, connID string, position int) (models.GameState, error) {
	r, err := c.lock(roomID)
	if err != nil {
		return models.GameState{}, err
	}
	defer r.mu.Unlock()

	mark, ok := r.markOf(connID)
	if !ok {
		return models.GameState{}, ErrNotAPlayer
	}

	next, err := game.Apply(r.Game, position, mark)
	if err != nil {
		return models.GameState{}, err
	}

	r.Game = next
	c.emitter.ToRoom(r.ID, EventGameStateUpdate, next)

	if next.Finished() {
		entry := r.appendSystem("%s", game.StatusText(next))
		c.emitter.ToRoom(r.ID, EventGameEnd, next)
		c.emitter.ToRoom(r.ID, EventChatMessage, entry)
		c.log.WithFields(logrus.Fields{
			"room_id": roomID,
			"winner":  next.Winner,
		}).Info("Game finished")
	}

	return next, nil
}

// ResetGame replaces the board with a fresh game. Spectators cannot reset.
func (c *Coordinator) ResetGame(roomID, connID string) error {
	r, err := c.lock(roomID)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	if _, ok := r.markOf(connID); !ok {
		return ErrNotAPlayer
	}

	r.Game = game.New()
	entry := r.appendSystem("Game reset")
	c.emitter.ToRoom(r.ID, EventChatMessage, entry)
	c.emitter.ToRoom(r.ID, EventGameStateUpdate, r.Game)
	return nil
}

// SwitchRole swaps the two seat occupants and resets the game. The
// guard requires both seats occupied, so a swap can never race a
// half-empty room into an inconsistent seat assignment.
func (c *Coordinator) SwitchRole(roomID, connID string) error {
	r, err := c.lock(roomID)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	if _, ok := r.markOf(connID); !ok {
		return ErrNotAPlayer
	}
	if !r.bothSeatsFilled() {
		return ErrSeatsNotFilled
	}

	xName, oName := r.PlayerX.Name, r.PlayerO.Name
	r.PlayerX, r.PlayerO = r.PlayerO, r.PlayerX
	r.Game = game.New()
	entry := r.appendSystem("%s and %s switched roles!", xName, oName)
	c.emitter.ToRoom(r.ID, EventChatMessage, entry)
	c.emitter.ToRoom(r.ID, EventRoleSwitch, RoleSwitch{Room: r.Snapshot()})
	return nil
}

// SendMessage appends a chat entry under the sender's resolved role.
// Messages from connections with no membership are dropped silently.
func (c *Coordinator) SendMessage(roomID, connID, text string) {
	r, err := c.lock(roomID)
	if err != nil {
		return
	}
	defer r.mu.Unlock()

	var entry models.Chat
	if mark, ok := r.markOf(connID); ok {
		member := *r.seat(mark)
		entry = r.appendChat(member.Name, models.Role(mark), text)
	} else if spec, ok := r.spectator(connID); ok {
		entry = r.appendChat(spec.Name, models.RoleSpectator, text)
	} else {
		return
	}

	c.emitter.ToRoom(r.ID, EventChatMessage, entry)
}

// Leave vacates the caller's seat or removes them from the spectator
// queue, promotes the earliest-waiting spectator into the vacancy, and
// deletes the room once the last member is gone. The gateway calls this
// for explicit leaveRoom requests and for transport disconnects alike.
func (c *Coordinator) Leave(roomID, connID string) {
	r, err := c.lock(roomID)
	if err != nil {
		return
	}
	defer r.mu.Unlock()

	logCtx := c.log.WithFields(logrus.Fields{
		"room_id": roomID,
		"conn_id": connID,
	})

	if mark, ok := r.markOf(connID); ok {
		name := (*r.seat(mark)).Name
		*r.seat(mark) = nil

		entry := r.appendSystem("%s left the room", name)
		c.emitter.ToRoom(r.ID, EventChatMessage, entry)
		c.emitter.ToRoom(r.ID, EventPlayerLeft, PlayerLeft{DisplayName: name, Mark: mark})
		logCtx.WithField("mark", mark).Info("Player left")

		c.promoteSpectator(r)
	} else if spec, ok := r.spectator(connID); ok {
		r.Spectators = lo.Reject(r.Spectators, func(m models.Member, _ int) bool {
			return m.ConnID == connID
		})
		entry := r.appendSystem("%s left the room", spec.Name)
		c.emitter.ToRoom(r.ID, EventChatMessage, entry)
		logCtx.Info("Spectator left")
	} else {
		return
	}

	c.emitter.LeaveGroup(r.ID, connID)

	if r.empty() {
		r.closed = true
		c.registry.Delete(r.ID)
		logCtx.Info("Room empty, deleted")
	}
}

// promoteSpectator moves the front of the spectator queue into the
// first empty seat. Called with the room lock held.
func (c *Coordinator) promoteSpectator(r *Room) {
	if len(r.Spectators) == 0 {
		return
	}
	mark, ok := r.emptySeat()
	if !ok {
		return
	}

	promoted := r.Spectators[0]
	r.Spectators = append([]models.Member{}, r.Spectators[1:]...)
	*r.seat(mark) = &promoted

	snap := r.Snapshot()
	c.emitter.ToConn(promoted.ConnID, EventBecomePlayer, BecomePlayer{Room: snap, Mark: mark})
	c.emitter.ToRoom(r.ID, EventRoomUpdate, snap)

	entry := r.appendSystem("%s became Player %s", promoted.Name, mark)
	c.emitter.ToRoom(r.ID, EventChatMessage, entry)

	c.log.WithFields(logrus.Fields{
		"room_id": r.ID,
		"conn_id": promoted.ConnID,
		"mark":    mark,
	}).Info("Spectator promoted")
}
