package meetings

import "time"

// createMeetingRequest represents the request to schedule a new meeting
type createMeetingRequest struct {
	RoomID   string `json:"roomId,omitempty" example:"team-standup"` // Optional room identifier; generated when omitted
	Title    string `json:"title" example:"Sprint planning"`         // Meeting title
	HostName string `json:"hostName" example:"jane_doe"`             // Display name of the host
}

// meetingResponse represents a persisted meeting record
type meetingResponse struct {
	MeetingID string    `json:"meetingId" example:"MEETING-7G2KQW9Z"`                  // Unique meeting identifier
	RoomID    string    `json:"roomId" example:"550e8400-e29b-41d4-a716-446655440000"` // Room identifier used for signaling
	Title     string    `json:"title" example:"Sprint planning"`                       // Meeting title
	HostName  string    `json:"hostName" example:"jane_doe"`                           // Display name of the host
	CreatedAt time.Time `json:"createdAt" example:"2024-01-01T12:00:00Z"`              // Creation timestamp
}
