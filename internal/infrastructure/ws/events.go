package ws

import "encoding/json"

// Inbound event types, as sent by clients.
const (
	EventJoin      = "join"
	EventLeave     = "leave"
	EventMessage   = "message"
	EventOffer     = "offer"
	EventAnswer    = "answer"
	EventCandidate = "ice-candidate"
	EventRaiseHand = "raise-hand"
)

// Outbound event types. Relayed chat and signaling payloads keep their
// inbound type on the way out.
const (
	EventRoomFull     = "room-full"
	EventRoomJoined   = "joined"
	EventUserJoined   = "user-joined"
	EventParticipants = "update-participants"
	EventUserLeft     = "user-left"
	EventRoomExpired  = "room-expired"
	EventHandRaised   = "hand-raised"
)

// Envelope is the wire format for every outbound event.
type Envelope struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data"`
}

// Inbound is the decoded form of a client event. Exactly one of the optional
// fields is meaningful depending on Type; Data is opaque signaling payload
// and is relayed without inspection.
type Inbound struct {
	Type        string          `json:"type"`
	RoomID      string          `json:"roomId"`
	DisplayName string          `json:"displayName,omitempty"`
	Content     string          `json:"content,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Payload structs
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type RoomFullPayload struct {
	Message string `json:"message"`
}

type RoomJoinedPayload struct {
	RoomID       string        `json:"roomId"`
	Participants []Participant `json:"participants"`
}

type ParticipantListPayload struct {
	Participants []Participant `json:"participants"`
}

type PresencePayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
}

type RoomExpiredPayload struct {
	Message string `json:"message"`
}

type ChatPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
}

func NewRoomFull(roomID string) *Envelope {
	return &Envelope{
		Type:   EventRoomFull,
		RoomID: roomID,
		Data: RoomFullPayload{
			Message: "Room is full. Maximum 5 participants allowed.",
		},
	}
}

func NewRoomJoined(roomID string, participants []Participant) *Envelope {
	return &Envelope{
		Type:   EventRoomJoined,
		RoomID: roomID,
		Data: RoomJoinedPayload{
			RoomID:       roomID,
			Participants: participants,
		},
	}
}

func NewUserJoined(roomID, userID, displayName string) *Envelope {
	return &Envelope{
		Type:   EventUserJoined,
		RoomID: roomID,
		Data: PresencePayload{
			UserID:      userID,
			DisplayName: displayName,
		},
	}
}

func NewParticipantList(roomID string, participants []Participant) *Envelope {
	return &Envelope{
		Type:   EventParticipants,
		RoomID: roomID,
		Data: ParticipantListPayload{
			Participants: participants,
		},
	}
}

func NewUserLeft(roomID, userID, displayName string) *Envelope {
	return &Envelope{
		Type:   EventUserLeft,
		RoomID: roomID,
		Data: PresencePayload{
			UserID:      userID,
			DisplayName: displayName,
		},
	}
}

func NewRoomExpired(roomID string) *Envelope {
	return &Envelope{
		Type:   EventRoomExpired,
		RoomID: roomID,
		Data: RoomExpiredPayload{
			Message: "Room has expired after 1 hour.",
		},
	}
}

func NewHandRaised(roomID, userID, displayName string) *Envelope {
	return &Envelope{
		Type:   EventHandRaised,
		RoomID: roomID,
		Data: PresencePayload{
			UserID:      userID,
			DisplayName: displayName,
		},
	}
}

func NewChatMessage(roomID, userID, displayName, content, timestamp string) *Envelope {
	return &Envelope{
		Type:   EventMessage,
		RoomID: roomID,
		Data: ChatPayload{
			UserID:      userID,
			DisplayName: displayName,
			Content:     content,
			Timestamp:   timestamp,
		},
	}
}

func NewSignal(eventType, roomID string, data json.RawMessage) *Envelope {
	return &Envelope{
		Type:   eventType,
		RoomID: roomID,
		Data:   data,
	}
}
