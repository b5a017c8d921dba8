package repository

import (
	"context"
	"errors"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type meetingRepository struct {
	db *mongo.Database
}

func NewMeetingRepository(database *mongo.Database) domain.MeetingRepository {
	return &meetingRepository{
		db: database,
	}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if meeting == nil || meeting.MeetingID == "" {
		return domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.MeetingsCollection)

	_, err := collection.InsertOne(ctx, meeting)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrMeetingAlreadyExists
	}
	return err
}

func (r *meetingRepository) GetByMeetingID(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	if meetingID == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.MeetingsCollection)

	var meeting domain.Meeting
	err := collection.FindOne(ctx, bson.M{"meeting_id": meetingID}).Decode(&meeting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}

	return &meeting, nil
}

func (r *meetingRepository) List(ctx context.Context) ([]domain.Meeting, error) {
	collection := r.db.Collection(db.MeetingsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meetings []domain.Meeting
	if err := cursor.All(ctx, &meetings); err != nil {
		return nil, err
	}

	return meetings, nil
}

func (r *meetingRepository) Delete(ctx context.Context, meetingID string) error {
	if meetingID == "" {
		return domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.MeetingsCollection)

	res, err := collection.DeleteOne(ctx, bson.M{"meeting_id": meetingID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrMeetingNotFound
	}

	return nil
}
