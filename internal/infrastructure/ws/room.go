package ws

import (
	"errors"
	"sync"
	"time"
)

const (
	DefaultRoomCapacity = 5
	DefaultRoomLifetime = time.Hour
)

var (
	ErrRoomFull   = errors.New("room is full")
	errRoomClosed = errors.New("room is closed")
)

type member struct {
	conn        Conn
	displayName string
}

// Room is one live session: an ordered member list (join order), a capacity
// gate and a single expiry timer. All mutation goes through the methods
// below, which serialize on the room mutex; the registry holds the only
// long-lived reference.
type Room struct {
	id       string
	capacity int
	deadline time.Time

	mu        sync.Mutex
	members   []member
	timer     *time.Timer
	destroyed bool
}

func newRoom(id string, capacity int, lifetime time.Duration) *Room {
	return &Room{
		id:       id,
		capacity: capacity,
		deadline: time.Now().Add(lifetime),
	}
}

func (r *Room) ID() string {
	return r.id
}

// Deadline is the absolute time the room expires, fixed at creation.
func (r *Room) Deadline() time.Time {
	return r.deadline
}

// join admits the connection, preserving join order. A second join by the
// same connection is a no-op that reports alreadyMember. Returns ErrRoomFull
// without mutating anything when the capacity gate rejects, and
// errRoomClosed when the instance was torn down between lookup and join.
// announce runs under the room mutex, so concurrent joins deliver their
// events in admission order; Conn.Send never blocks, which keeps this safe.
func (r *Room) join(c Conn, displayName string, announce func(snapshot []member, alreadyMember bool)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return errRoomClosed
	}

	for _, m := range r.members {
		if m.conn.ID() == c.ID() {
			if announce != nil {
				announce(r.snapshotLocked(), true)
			}
			return nil
		}
	}

	if len(r.members) >= r.capacity {
		return ErrRoomFull
	}

	r.members = append(r.members, member{conn: c, displayName: displayName})
	if announce != nil {
		announce(r.snapshotLocked(), false)
	}
	return nil
}

type leaveResult struct {
	left      member
	remaining []member
	emptied   bool
}

// removeConn removes the member record for connID. Idempotent: a second call
// for the same connection finds nothing and reports ok=false. When the last
// member leaves the room is marked destroyed and its timer cancelled, all
// under the same critical section. announce runs under the room mutex, like
// the join counterpart, so departure events cannot interleave with a
// concurrent join's snapshot.
func (r *Room) removeConn(connID string, announce func(res leaveResult)) (leaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, m := range r.members {
		if m.conn.ID() == connID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return leaveResult{}, false
	}

	left := r.members[idx]
	r.members = append(r.members[:idx], r.members[idx+1:]...)

	res := leaveResult{
		left:      left,
		remaining: r.snapshotLocked(),
		emptied:   len(r.members) == 0,
	}

	if res.emptied {
		r.destroyed = true
		r.cancelTimerLocked()
	}

	if announce != nil {
		announce(res)
	}

	return res, true
}

// expire tears the room down on timer fire. Returns the members present at
// expiry, or ok=false when a leave already destroyed the instance; the two
// teardown paths are mutually exclusive.
func (r *Room) expire() ([]member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return nil, false
	}

	r.destroyed = true
	snapshot := r.members
	r.members = nil

	return snapshot, true
}

func (r *Room) contains(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.conn.ID() == connID {
			return true
		}
	}
	return false
}

func (r *Room) lookup(connID string) (member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.conn.ID() == connID {
			return m, true
		}
	}
	return member{}, false
}

func (r *Room) memberSnapshot() []member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Participants returns the current member list in join order.
func (r *Room) Participants() []Participant {
	return toParticipants(r.memberSnapshot())
}

func (r *Room) snapshotLocked() []member {
	snapshot := make([]member, len(r.members))
	copy(snapshot, r.members)
	return snapshot
}

// armTimer schedules the one-shot expiry callback. The nil check keeps the
// single-timer invariant: arming twice is a programming error, not a replace.
func (r *Room) armTimer(lifetime time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		return
	}
	r.timer = time.AfterFunc(lifetime, fn)
}

func (r *Room) cancelTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelTimerLocked()
}

func (r *Room) cancelTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
	}
}

func toParticipants(members []member) []Participant {
	participants := make([]Participant, 0, len(members))
	for _, m := range members {
		participants = append(participants, Participant{
			ID:          m.conn.ID(),
			DisplayName: m.displayName,
		})
	}
	return participants
}
