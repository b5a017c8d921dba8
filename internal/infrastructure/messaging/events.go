package messaging

import "time"

const (
	RoomsQueue      = "rooms"
	DeadLetterQueue = "dead_letter_queue"
)

type RoomEventData struct {
	RoomID      string    `json:"roomId"`
	Reason      string    `json:"reason,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}
