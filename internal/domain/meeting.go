package domain

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	meetingCodeLength = 8

	meetingCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	charsetLen = big.NewInt(int64(len(meetingCodeChars)))

	ErrInvalidInput         = errors.New("invalid input")
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrMeetingAlreadyExists = errors.New("meeting already exists")
)

// Meeting is the persisted metadata record for a scheduled session. It is
// independent of live room membership: a meeting may exist with no one
// connected, and a room id may be used without a meeting record behind it.
type Meeting struct {
	MeetingID string    `json:"meetingId" bson:"meeting_id"`
	RoomID    string    `json:"roomId" bson:"room_id"`
	Title     string    `json:"title" bson:"title"`
	HostName  string    `json:"hostName" bson:"host_name"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

type MeetingRepository interface {
	Create(ctx context.Context, meeting *Meeting) error
	GetByMeetingID(ctx context.Context, meetingID string) (*Meeting, error)
	List(ctx context.Context) ([]Meeting, error)
	Delete(ctx context.Context, meetingID string) error
}

func NewMeeting(roomID, title, hostName string) (*Meeting, error) {
	if roomID == "" || title == "" || hostName == "" {
		return nil, ErrInvalidInput
	}

	code, err := generateMeetingCode()
	if err != nil {
		return nil, err
	}

	return &Meeting{
		MeetingID: "MEETING-" + code,
		RoomID:    roomID,
		Title:     title,
		HostName:  hostName,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewRoomID generates an opaque room identifier for meetings created without
// an externally supplied one.
func NewRoomID() string {
	return uuid.NewString()
}

func generateMeetingCode() (string, error) {
	var sb strings.Builder
	sb.Grow(meetingCodeLength)

	for i := 0; i < meetingCodeLength; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(meetingCodeChars[n.Int64()])
	}

	return sb.String(), nil
}
