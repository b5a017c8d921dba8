package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RoomID string `json:"roomId"`
	Data   []byte `json:"data"`
}

// Routing keys - using consistent event patterns
const (
	EventRoomOpened   = "room.opened"
	EventRoomClosed   = "room.closed"
	EventMemberJoined = "member.joined"
	EventMemberLeft   = "member.left"
)
