package rooms

import (
	"time"

	"github.com/huddlehq/huddle/internal/infrastructure/ws"
)

// participantsResponse represents the live membership of one room
type participantsResponse struct {
	RoomID       string           `json:"roomId" example:"550e8400-e29b-41d4-a716-446655440000"` // Room identifier
	ExpiresAt    time.Time        `json:"expiresAt"`                                             // Absolute expiry deadline
	Participants []ws.Participant `json:"participants"`                                          // Members in join order
}
