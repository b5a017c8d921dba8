package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/huddlehq/huddle/internal/domain"
)

// In-memory meeting store, used when no MongoDB is configured and in tests.
type meetingRepository struct {
	meetings map[string]*domain.Meeting // MeetingID -> Meeting
	mu       *sync.RWMutex
}

func NewMeetingRepository() domain.MeetingRepository {
	return &meetingRepository{
		meetings: make(map[string]*domain.Meeting),
		mu:       &sync.RWMutex{},
	}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if meeting == nil || meeting.MeetingID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.meetings[meeting.MeetingID]; exists {
		return domain.ErrMeetingAlreadyExists
	}

	cpy := *meeting
	r.meetings[meeting.MeetingID] = &cpy

	return nil
}

func (r *meetingRepository) GetByMeetingID(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	if meetingID == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meeting, exists := r.meetings[meetingID]
	if !exists {
		return nil, domain.ErrMeetingNotFound
	}

	cpy := *meeting
	return &cpy, nil
}

func (r *meetingRepository) List(ctx context.Context) ([]domain.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meetings := make([]domain.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		meetings = append(meetings, *m)
	}

	// Newest first, matching the Mongo implementation
	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].CreatedAt.After(meetings[j].CreatedAt)
	})

	return meetings, nil
}

func (r *meetingRepository) Delete(ctx context.Context, meetingID string) error {
	if meetingID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.meetings[meetingID]; !exists {
		return domain.ErrMeetingNotFound
	}

	delete(r.meetings, meetingID)
	return nil
}
