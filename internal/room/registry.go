package room

import (
	crand "crypto/rand"
	"sync"
)

const (
	roomIDLength  = 6
	roomIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Registry is the process-wide table of live rooms. It only guards the
// table itself; room contents are mutated exclusively by Coordinator
// operations under the room's own lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create registers a fresh room under a new unique id and returns it.
func (reg *Registry) Create() *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	id := newRoomID()
	for {
		if _, taken := reg.rooms[id]; !taken {
			break
		}
		id = newRoomID()
	}
	r := newRoom(id)
	reg.rooms[id] = r
	return r
}

// Find retrieves a live room by id.
func (reg *Registry) Find(id string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[id]
	return r, ok
}

// Delete removes a room from the registry. Only the Coordinator's
// last-to-leave cleanup calls this.
func (reg *Registry) Delete(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, id)
}

// Len reports the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// newRoomID generates a short uppercase alphanumeric room code.
// Bytes outside the largest multiple of the charset size are rejected,
// so every character is drawn uniformly.
func newRoomID() string {
	const limit = byte(256 - 256%len(roomIDCharset))

	id := make([]byte, 0, roomIDLength)
	buf := make([]byte, roomIDLength*2)
	for len(id) < roomIDLength {
		if _, err := crand.Read(buf); err != nil {
			panic(err)
		}
		for _, v := range buf {
			if v >= limit || len(id) == roomIDLength {
				continue
			}
			id = append(id, roomIDCharset[int(v)%len(roomIDCharset)])
		}
	}
	return string(id)
}
