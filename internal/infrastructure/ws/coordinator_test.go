package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

func TestCoordinatorJoin(t *testing.T) {
	t.Run("acknowledges the joiner with the member list", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.Join(alice, "r1", "Alice")

		envelopes := alice.envelopes()
		if len(envelopes) != 2 {
			t.Fatalf("expected joined and update-participants, got %v", alice.types())
		}
		if envelopes[0].Type != EventRoomJoined {
			t.Fatalf("first event should be joined, got %s", envelopes[0].Type)
		}

		payload := envelopes[0].Data.(RoomJoinedPayload)
		if payload.RoomID != "r1" || len(payload.Participants) != 1 {
			t.Errorf("unexpected ack payload: %+v", payload)
		}
		if payload.Participants[0].DisplayName != "Alice" {
			t.Errorf("expected joiner in member list, got %+v", payload.Participants)
		}
	})

	t.Run("notifies existing members but not the joiner", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")

		coord.Join(alice, "r1", "Alice")
		alice.reset()

		coord.Join(bob, "r1", "Bob")

		aliceTypes := alice.types()
		if len(aliceTypes) != 2 || aliceTypes[0] != EventUserJoined || aliceTypes[1] != EventParticipants {
			t.Fatalf("expected user-joined then update-participants for alice, got %v", aliceTypes)
		}

		presence := alice.envelopes()[0].Data.(PresencePayload)
		if presence.UserID != "bob" || presence.DisplayName != "Bob" {
			t.Errorf("unexpected user-joined payload: %+v", presence)
		}

		for _, e := range bob.envelopes() {
			if e.Type == EventUserJoined {
				t.Error("joiner must not receive its own user-joined broadcast")
			}
		}
	})

	t.Run("broadcasts the refreshed member list to everyone", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")

		coord.Join(alice, "r1", "Alice")
		coord.Join(bob, "r1", "Bob")

		for _, conn := range []*fakeConn{alice, bob} {
			var lists []ParticipantListPayload
			for _, e := range conn.envelopes() {
				if e.Type == EventParticipants {
					lists = append(lists, e.Data.(ParticipantListPayload))
				}
			}
			if len(lists) == 0 {
				t.Fatalf("%s never received update-participants", conn.ID())
			}

			last := lists[len(lists)-1]
			if len(last.Participants) != 2 {
				t.Fatalf("expected 2 participants, got %+v", last.Participants)
			}
			if last.Participants[0].ID != "alice" || last.Participants[1].ID != "bob" {
				t.Errorf("participant list should keep join order, got %+v", last.Participants)
			}
		}
	})

	t.Run("rejects the sixth joiner only", func(t *testing.T) {
		coord := newTestCoordinator(5)

		members := make([]*fakeConn, 5)
		for i, id := range []string{"a", "b", "c", "d", "e"} {
			members[i] = newFakeConn(id)
			coord.Join(members[i], "r1", id)
		}
		for _, m := range members {
			m.reset()
		}

		late := newFakeConn("late")
		coord.Join(late, "r1", "Late")

		types := late.types()
		if len(types) != 1 || types[0] != EventRoomFull {
			t.Fatalf("expected a single room-full for the late joiner, got %v", types)
		}

		for _, m := range members {
			if len(m.envelopes()) != 0 {
				t.Errorf("member %s observed a rejected join", m.ID())
			}
		}

		room, _ := coord.registry.Get("r1")
		if got := len(room.Participants()); got != 5 {
			t.Errorf("rejected join mutated the room, %d members", got)
		}
	})

	t.Run("duplicate join re-acknowledges without broadcasting", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")

		coord.Join(alice, "r1", "Alice")
		coord.Join(bob, "r1", "Bob")
		alice.reset()
		bob.reset()

		coord.Join(alice, "r1", "Alice")

		if types := alice.types(); len(types) != 1 || types[0] != EventRoomJoined {
			t.Fatalf("expected a single joined re-ack, got %v", types)
		}
		if len(bob.envelopes()) != 0 {
			t.Error("duplicate join must not broadcast")
		}

		room, _ := coord.registry.Get("r1")
		if got := len(room.Participants()); got != 2 {
			t.Errorf("duplicate join changed membership, %d members", got)
		}
	})

	t.Run("empty room id is ignored", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.Join(alice, "", "Alice")

		if len(alice.envelopes()) != 0 {
			t.Errorf("expected no events, got %v", alice.types())
		}
		if coord.registry.Len() != 0 {
			t.Error("empty room id created a room")
		}
	})
}

func TestCoordinatorConcurrentJoins(t *testing.T) {
	t.Run("member count never exceeds capacity", func(t *testing.T) {
		coord := newTestCoordinator(5)

		const joiners = 64
		conns := make([]*fakeConn, joiners)

		var wg sync.WaitGroup
		for i := 0; i < joiners; i++ {
			conns[i] = newFakeConn(fmt.Sprintf("conn-%02d", i))
			wg.Add(1)
			go func(c *fakeConn) {
				defer wg.Done()
				coord.Join(c, "r1", c.ID())
			}(conns[i])
		}
		wg.Wait()

		room, ok := coord.registry.Get("r1")
		if !ok {
			t.Fatal("room was never created")
		}
		if got := len(room.Participants()); got != 5 {
			t.Fatalf("expected exactly 5 members, got %d", got)
		}

		admitted, rejected := 0, 0
		for _, c := range conns {
			for _, e := range c.envelopes() {
				switch e.Type {
				case EventRoomJoined:
					admitted++
				case EventRoomFull:
					rejected++
				}
			}
		}
		if admitted != 5 {
			t.Errorf("expected 5 admissions, got %d", admitted)
		}
		if rejected != joiners-5 {
			t.Errorf("expected %d rejections, got %d", joiners-5, rejected)
		}
	})

	t.Run("every member's last list reflects final membership", func(t *testing.T) {
		coord := newTestCoordinator(5)

		conns := make([]*fakeConn, 5)

		var wg sync.WaitGroup
		for i := 0; i < len(conns); i++ {
			conns[i] = newFakeConn(fmt.Sprintf("conn-%d", i))
			wg.Add(1)
			go func(c *fakeConn) {
				defer wg.Done()
				coord.Join(c, "r1", c.ID())
			}(conns[i])
		}
		wg.Wait()

		for _, c := range conns {
			var (
				last  ParticipantListPayload
				found bool
			)
			for _, e := range c.envelopes() {
				if e.Type == EventParticipants {
					last = e.Data.(ParticipantListPayload)
					found = true
				}
			}
			if !found {
				t.Fatalf("%s never received update-participants", c.ID())
			}
			if len(last.Participants) != 5 {
				t.Errorf("%s's final list has %d participants, expected 5", c.ID(), len(last.Participants))
			}
		}
	})
}

func TestCoordinatorLeave(t *testing.T) {
	t.Run("notifies remaining members", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")
		carol := newFakeConn("carol")

		coord.Join(alice, "r1", "Alice")
		coord.Join(bob, "r1", "Bob")
		coord.Join(carol, "r1", "Carol")
		alice.reset()
		carol.reset()

		coord.Leave(bob)

		for _, conn := range []*fakeConn{alice, carol} {
			types := conn.types()
			if len(types) != 2 || types[0] != EventUserLeft || types[1] != EventParticipants {
				t.Fatalf("expected user-left then update-participants for %s, got %v", conn.ID(), types)
			}

			presence := conn.envelopes()[0].Data.(PresencePayload)
			if presence.UserID != "bob" {
				t.Errorf("unexpected user-left payload: %+v", presence)
			}

			list := conn.envelopes()[1].Data.(ParticipantListPayload)
			if len(list.Participants) != 2 {
				t.Errorf("expected 2 remaining participants, got %+v", list.Participants)
			}
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")

		coord.Join(alice, "r1", "Alice")
		coord.Join(bob, "r1", "Bob")

		coord.Leave(bob)
		alice.reset()

		coord.Leave(bob)
		coord.Disconnect(bob)

		if len(alice.envelopes()) != 0 {
			t.Errorf("repeated leave produced events: %v", alice.types())
		}
	})

	t.Run("last leave destroys the room and cancels expiry", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.Join(alice, "r1", "Alice")
		room, _ := coord.registry.Get("r1")

		coord.Leave(alice)

		if coord.registry.Len() != 0 {
			t.Fatal("room should be gone after the last leave")
		}

		// The destroyed instance must not fire a room-expired broadcast.
		alice.reset()
		coord.expireRoom(room)
		if len(alice.envelopes()) != 0 {
			t.Errorf("expiry fired after last leave: %v", alice.types())
		}
	})

	t.Run("room id is reusable after destruction", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.Join(alice, "r1", "Alice")
		coord.Leave(alice)

		bob := newFakeConn("bob")
		coord.Join(bob, "r1", "Bob")

		room, ok := coord.registry.Get("r1")
		if !ok {
			t.Fatal("rejoin did not create a fresh room")
		}
		if got := len(room.Participants()); got != 1 {
			t.Errorf("fresh room has %d members", got)
		}
	})
}

func TestCoordinatorExpiry(t *testing.T) {
	t.Run("notifies every member and removes the room", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")

		coord.Join(alice, "r1", "Alice")
		coord.Join(bob, "r1", "Bob")
		alice.reset()
		bob.reset()

		room, _ := coord.registry.Get("r1")
		coord.expireRoom(room)

		for _, conn := range []*fakeConn{alice, bob} {
			types := conn.types()
			if len(types) != 1 || types[0] != EventRoomExpired {
				t.Fatalf("expected a single room-expired for %s, got %v", conn.ID(), types)
			}
		}

		if coord.registry.Len() != 0 {
			t.Fatal("expired room still registered")
		}
	})

	t.Run("leave after expiry is silent", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")

		coord.Join(alice, "r1", "Alice")
		coord.Join(bob, "r1", "Bob")

		room, _ := coord.registry.Get("r1")
		coord.expireRoom(room)
		alice.reset()
		bob.reset()

		coord.Leave(alice)
		coord.Disconnect(bob)

		if len(alice.envelopes()) != 0 || len(bob.envelopes()) != 0 {
			t.Error("cleanup after expiry produced events")
		}
	})

	t.Run("expiry fires at most once", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.Join(alice, "r1", "Alice")
		room, _ := coord.registry.Get("r1")

		coord.expireRoom(room)
		alice.reset()
		coord.expireRoom(room)

		if len(alice.envelopes()) != 0 {
			t.Errorf("second expiry produced events: %v", alice.types())
		}
	})
}

func TestCoordinatorRelayMessage(t *testing.T) {
	t.Run("includes the sender", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")

		coord.Join(alice, "r1", "Alice")
		coord.Join(bob, "r1", "Bob")
		alice.reset()
		bob.reset()

		coord.RelayMessage(alice, "r1", "Alice", "hello")

		for _, conn := range []*fakeConn{alice, bob} {
			envelopes := conn.envelopes()
			if len(envelopes) != 1 || envelopes[0].Type != EventMessage {
				t.Fatalf("expected one chat message for %s, got %v", conn.ID(), conn.types())
			}

			payload := envelopes[0].Data.(ChatPayload)
			if payload.UserID != "alice" || payload.DisplayName != "Alice" || payload.Content != "hello" {
				t.Errorf("unexpected chat payload: %+v", payload)
			}
			if payload.Timestamp == "" {
				t.Error("chat payload missing timestamp")
			}
		}
	})

	t.Run("unknown room is dropped silently", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.RelayMessage(alice, "ghost", "Alice", "hello")

		if len(alice.envelopes()) != 0 {
			t.Errorf("relay to unknown room produced events: %v", alice.types())
		}
		if coord.registry.Len() != 0 {
			t.Error("relay to unknown room created a room")
		}
	})
}

func TestCoordinatorRelaySignal(t *testing.T) {
	t.Run("excludes the sender", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")
		bob := newFakeConn("bob")
		carol := newFakeConn("carol")

		coord.Join(alice, "r1", "Alice")
		coord.Join(bob, "r1", "Bob")
		coord.Join(carol, "r1", "Carol")
		alice.reset()
		bob.reset()
		carol.reset()

		sdp := json.RawMessage(`{"sdp":"v=0"}`)
		coord.RelaySignal(alice, "r1", EventOffer, sdp)

		if len(alice.envelopes()) != 0 {
			t.Errorf("sender received its own signal: %v", alice.types())
		}

		for _, conn := range []*fakeConn{bob, carol} {
			envelopes := conn.envelopes()
			if len(envelopes) != 1 || envelopes[0].Type != EventOffer {
				t.Fatalf("expected one offer for %s, got %v", conn.ID(), conn.types())
			}
			if string(envelopes[0].Data.(json.RawMessage)) != `{"sdp":"v=0"}` {
				t.Error("signaling payload was not relayed verbatim")
			}
		}
	})

	t.Run("unknown room is dropped silently", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.RelaySignal(alice, "ghost", EventAnswer, json.RawMessage(`{}`))

		if len(alice.envelopes()) != 0 {
			t.Errorf("signal to unknown room produced events: %v", alice.types())
		}
	})
}

func TestCoordinatorRaiseHand(t *testing.T) {
	coord := newTestCoordinator(5)
	alice := newFakeConn("alice")
	bob := newFakeConn("bob")

	coord.Join(alice, "r1", "Alice")
	coord.Join(bob, "r1", "Bob")
	alice.reset()
	bob.reset()

	coord.RaiseHand(alice, "r1")

	if len(alice.envelopes()) != 0 {
		t.Errorf("sender received its own hand-raised: %v", alice.types())
	}

	envelopes := bob.envelopes()
	if len(envelopes) != 1 || envelopes[0].Type != EventHandRaised {
		t.Fatalf("expected one hand-raised for bob, got %v", bob.types())
	}

	payload := envelopes[0].Data.(PresencePayload)
	if payload.UserID != "alice" || payload.DisplayName != "Alice" {
		t.Errorf("unexpected hand-raised payload: %+v", payload)
	}
}

func TestCoordinatorDispatch(t *testing.T) {
	t.Run("routes join", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.Dispatch(alice, Inbound{Type: EventJoin, RoomID: "r1", DisplayName: "Alice"})

		if types := alice.types(); len(types) == 0 || types[0] != EventRoomJoined {
			t.Fatalf("dispatch did not route join, got %v", types)
		}
	})

	t.Run("drops unknown event types", func(t *testing.T) {
		coord := newTestCoordinator(5)
		alice := newFakeConn("alice")

		coord.Join(alice, "r1", "Alice")
		alice.reset()

		coord.Dispatch(alice, Inbound{Type: "mute-all", RoomID: "r1"})

		if len(alice.envelopes()) != 0 {
			t.Errorf("unknown event produced output: %v", alice.types())
		}
	})
}
