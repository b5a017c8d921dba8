package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/huddlehq/huddle/internal/infrastructure/contracts"
	"github.com/huddlehq/huddle/internal/infrastructure/messaging"
)

// RoomPublisher forwards room lifecycle events to RabbitMQ. It satisfies the
// coordinator's LifecyclePublisher interface.
type RoomPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomPublisher(rabbitmq *messaging.RabbitMQ) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RoomPublisher) RoomOpened(ctx context.Context, roomID string) error {
	return p.publish(ctx, contracts.EventRoomOpened, messaging.RoomEventData{
		RoomID:     roomID,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *RoomPublisher) RoomClosed(ctx context.Context, roomID string, reason string) error {
	return p.publish(ctx, contracts.EventRoomClosed, messaging.RoomEventData{
		RoomID:     roomID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *RoomPublisher) MemberJoined(ctx context.Context, roomID, userID, displayName string) error {
	return p.publish(ctx, contracts.EventMemberJoined, messaging.RoomEventData{
		RoomID:      roomID,
		UserID:      userID,
		DisplayName: displayName,
		OccurredAt:  time.Now().UTC(),
	})
}

func (p *RoomPublisher) MemberLeft(ctx context.Context, roomID, userID string) error {
	return p.publish(ctx, contracts.EventMemberLeft, messaging.RoomEventData{
		RoomID:     roomID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *RoomPublisher) publish(ctx context.Context, routingKey string, payload messaging.RoomEventData) error {
	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RoomID: payload.RoomID,
		Data:   eventJSON,
	})
}
