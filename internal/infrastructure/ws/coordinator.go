package ws

import (
	"context"
	"errors"
	"time"

	"github.com/huddlehq/huddle/internal/infrastructure/logging"
	"github.com/huddlehq/huddle/internal/infrastructure/metrics"
)

// LifecyclePublisher receives room lifecycle notifications for downstream
// consumers. Optional: a nil publisher disables publishing.
type LifecyclePublisher interface {
	RoomOpened(ctx context.Context, roomID string) error
	RoomClosed(ctx context.Context, roomID string, reason string) error
	MemberJoined(ctx context.Context, roomID, userID, displayName string) error
	MemberLeft(ctx context.Context, roomID, userID string) error
}

type Options struct {
	RoomCapacity int
	RoomLifetime time.Duration
}

// Coordinator is the single entry point for inbound client events. It owns
// the registry, applies admission control and fans events out to the right
// subset of each room's members. Outbound delivery is fire-and-forget.
type Coordinator struct {
	registry  *Registry
	logger    logging.Logger
	metrics   *metrics.Metrics
	publisher LifecyclePublisher
}

func NewCoordinator(opts Options, logger logging.Logger, m *metrics.Metrics, publisher LifecyclePublisher) *Coordinator {
	c := &Coordinator{
		logger:    logger,
		metrics:   m,
		publisher: publisher,
	}
	c.registry = NewRegistry(opts.RoomCapacity, opts.RoomLifetime, c.expireRoom)
	return c
}

// Registry exposes read-only room lookups to the HTTP layer.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Dispatch routes one decoded inbound event to the matching operation.
// Unknown event types are dropped.
func (c *Coordinator) Dispatch(conn Conn, in Inbound) {
	switch in.Type {
	case EventJoin:
		c.Join(conn, in.RoomID, in.DisplayName)
	case EventLeave:
		c.Leave(conn)
	case EventMessage:
		c.RelayMessage(conn, in.RoomID, in.DisplayName, in.Content)
	case EventOffer, EventAnswer, EventCandidate:
		c.RelaySignal(conn, in.RoomID, in.Type, in.Data)
	case EventRaiseHand:
		c.RaiseHand(conn, in.RoomID)
	default:
		c.logger.Debug(logging.WebSocket, logging.Relay, "dropping unknown event", map[logging.ExtraKey]any{
			logging.EventType:    in.Type,
			logging.ConnectionID: conn.ID(),
		})
	}
}

// Join admits the connection into the room, creating the room (and arming
// its expiry timer) on first join. A full room answers the joiner with
// room-full and mutates nothing.
func (c *Coordinator) Join(conn Conn, roomID, displayName string) {
	if roomID == "" {
		return
	}

	var (
		created       bool
		alreadyMember bool
		memberCount   int
	)

	// Events are delivered from inside the room critical section, so two
	// racing joins cannot interleave their snapshots: the last
	// update-participants every member sees reflects the final membership.
	announce := func(members []member, already bool) {
		participants := toParticipants(members)
		conn.Send(NewRoomJoined(roomID, participants))

		if already {
			// Duplicate join from the same connection: re-acknowledge, no
			// broadcasts, no state change.
			alreadyMember = true
			return
		}

		c.fanout(members, conn.ID(), NewUserJoined(roomID, conn.ID(), displayName))
		c.fanout(members, "", NewParticipantList(roomID, participants))
		memberCount = len(members)
	}

	for {
		var room *Room
		room, created = c.registry.GetOrCreate(roomID)

		err := room.join(conn, displayName, announce)
		if err == nil {
			break
		}

		if errors.Is(err, ErrRoomFull) {
			conn.Send(NewRoomFull(roomID))
			c.metrics.JoinRejections.Inc()
			c.logger.Warn(logging.Rooms, logging.Join, "join rejected, room at capacity", map[logging.ExtraKey]any{
				logging.RoomID:       roomID,
				logging.ConnectionID: conn.ID(),
			})
			return
		}

		// Lost a race with teardown of the old instance: take another pass
		// so a fresh room is created.
	}

	if alreadyMember {
		return
	}

	c.metrics.JoinsTotal.Inc()
	if created {
		c.metrics.ActiveRooms.Inc()
		c.publish(func(p LifecyclePublisher) error { return p.RoomOpened(context.Background(), roomID) })
	}
	c.publish(func(p LifecyclePublisher) error {
		return p.MemberJoined(context.Background(), roomID, conn.ID(), displayName)
	})

	c.logger.Info(logging.Rooms, logging.Join, "participant joined", map[logging.ExtraKey]any{
		logging.RoomID:       roomID,
		logging.ConnectionID: conn.ID(),
		logging.DisplayName:  displayName,
		logging.MemberCount:  memberCount,
	})
}

// Leave removes the connection from every room that still records it and
// notifies the remaining members. Destroys the room when the last member
// leaves. Safe to call repeatedly: a second invocation finds no member
// record and does nothing.
func (c *Coordinator) Leave(conn Conn) {
	for _, room := range c.registry.RoomsContaining(conn.ID()) {
		// Departure events go out under the room mutex, mirroring join, so
		// they keep their place in the room's event order.
		res, ok := room.removeConn(conn.ID(), func(res leaveResult) {
			if res.emptied {
				return
			}
			c.fanout(res.remaining, "", NewUserLeft(room.id, res.left.conn.ID(), res.left.displayName))
			c.fanout(res.remaining, "", NewParticipantList(room.id, toParticipants(res.remaining)))
		})
		if !ok {
			continue
		}

		if res.emptied {
			c.registry.removeInstance(room)
			c.metrics.ActiveRooms.Dec()
			c.publish(func(p LifecyclePublisher) error {
				return p.RoomClosed(context.Background(), room.id, "emptied")
			})
		}

		c.publish(func(p LifecyclePublisher) error {
			return p.MemberLeft(context.Background(), room.id, conn.ID())
		})

		c.logger.Info(logging.Rooms, logging.Leave, "participant left", map[logging.ExtraKey]any{
			logging.RoomID:       room.id,
			logging.ConnectionID: conn.ID(),
			logging.MemberCount:  len(res.remaining),
		})
	}
}

// Disconnect is the transport-loss path; membership cleanup is identical to
// an explicit leave and idempotent with it.
func (c *Coordinator) Disconnect(conn Conn) {
	c.Leave(conn)
}

// RelayMessage fans a chat message out to every member of the room, sender
// included. Relays to unknown rooms are dropped silently: a message racing
// room expiry is expected, not exceptional.
func (c *Coordinator) RelayMessage(conn Conn, roomID, displayName, content string) {
	room, ok := c.registry.Get(roomID)
	if !ok {
		return
	}

	msg := NewChatMessage(roomID, conn.ID(), displayName, content, time.Now().UTC().Format(time.RFC3339))
	c.fanout(room.memberSnapshot(), "", msg)
}

// RelaySignal forwards an opaque signaling payload (offer, answer or ICE
// candidate) to every member except the sender.
func (c *Coordinator) RelaySignal(conn Conn, roomID, eventType string, data []byte) {
	room, ok := c.registry.Get(roomID)
	if !ok {
		return
	}

	c.fanout(room.memberSnapshot(), conn.ID(), NewSignal(eventType, roomID, data))
}

// RaiseHand is a one-shot presence signal, fanned out except-sender like
// signaling. No state is kept beyond the notification.
func (c *Coordinator) RaiseHand(conn Conn, roomID string) {
	room, ok := c.registry.Get(roomID)
	if !ok {
		return
	}

	displayName := ""
	if m, ok := room.lookup(conn.ID()); ok {
		displayName = m.displayName
	}

	c.fanout(room.memberSnapshot(), conn.ID(), NewHandRaised(roomID, conn.ID(), displayName))
}

func (c *Coordinator) expireRoom(room *Room) {
	members, ok := room.expire()
	if !ok {
		return
	}

	c.fanout(members, "", NewRoomExpired(room.id))
	c.registry.removeInstance(room)

	c.metrics.ActiveRooms.Dec()
	c.metrics.RoomsExpired.Inc()
	c.publish(func(p LifecyclePublisher) error {
		return p.RoomClosed(context.Background(), room.id, "expired")
	})

	c.logger.Info(logging.Rooms, logging.Expiry, "room expired", map[logging.ExtraKey]any{
		logging.RoomID:      room.id,
		logging.MemberCount: len(members),
	})
}

func (c *Coordinator) fanout(members []member, exceptID string, msg *Envelope) {
	delivered := 0
	for _, m := range members {
		if exceptID != "" && m.conn.ID() == exceptID {
			continue
		}
		m.conn.Send(msg)
		delivered++
	}
	c.metrics.EventsFannedOut.WithLabelValues(msg.Type).Add(float64(delivered))
}

func (c *Coordinator) publish(fn func(LifecyclePublisher) error) {
	if c.publisher == nil {
		return
	}
	if err := fn(c.publisher); err != nil {
		c.logger.Error(logging.RabbitMQ, logging.ExternalService, "lifecycle publish failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
