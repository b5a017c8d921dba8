package ws

import (
	"sync"
	"time"
)

// Registry owns the room map. Rooms exist in the registry exactly while they
// have members; creation (with timer arming) happens atomically inside
// GetOrCreate so concurrent first joins observe a single instance.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	capacity int
	lifetime time.Duration
	onExpire func(*Room)
}

func NewRegistry(capacity int, lifetime time.Duration, onExpire func(*Room)) *Registry {
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}
	if lifetime <= 0 {
		lifetime = DefaultRoomLifetime
	}

	return &Registry{
		rooms:    make(map[string]*Room),
		capacity: capacity,
		lifetime: lifetime,
		onExpire: onExpire,
	}
}

// GetOrCreate returns the room for roomID, creating it with a fresh expiry
// timer when unseen. The second return reports whether this call created it.
func (r *Registry) GetOrCreate(roomID string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		return room, false
	}

	room := newRoom(roomID, r.capacity, r.lifetime)
	if r.onExpire != nil {
		room.armTimer(r.lifetime, func() {
			r.onExpire(room)
		})
	}
	r.rooms[roomID] = room

	return room, true
}

func (r *Registry) Get(roomID string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	return room, ok
}

// Remove deletes the room entry and cancels its pending timer. Removing an
// unknown id is a no-op.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		room.cancelTimer()
		delete(r.rooms, roomID)
	}
}

// removeInstance deletes the entry only if it still maps to this exact
// instance, so an expired room cannot evict a fresh one reusing the id.
func (r *Registry) removeInstance(room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.rooms[room.id]; ok && current == room {
		room.cancelTimer()
		delete(r.rooms, room.id)
	}
}

// RoomsContaining returns every room the connection is currently a member
// of. The model allows at most one, but cleanup iterates defensively.
func (r *Registry) RoomsContaining(connID string) []*Room {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	var containing []*Room
	for _, room := range rooms {
		if room.contains(connID) {
			containing = append(containing, room)
		}
	}
	return containing
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
