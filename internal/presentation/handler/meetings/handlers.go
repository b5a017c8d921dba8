package meetings

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/infrastructure/json"
)

type Handler struct {
	meetingRepository domain.MeetingRepository
}

func NewHandler(meetingRepository domain.MeetingRepository) *Handler {
	return &Handler{
		meetingRepository: meetingRepository,
	}
}

// CreateMeetingHandler godoc
// @Summary      Schedule a new meeting
// @Description  Persists a meeting record and returns it with a generated meeting id
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        request body createMeetingRequest true "Meeting parameters"
// @Success      201 {object} meetingResponse "Meeting created successfully"
// @Failure      400 {object} map[string]interface{} "Bad request - missing required fields"
// @Failure      409 {object} map[string]interface{} "Conflict - meeting already exists"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /meetings [post]
func (h *Handler) CreateMeetingHandler(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if req.Title == "" || req.HostName == "" {
		json.WriteBadRequestError(w, "title and hostName are required")
		return
	}

	roomID := req.RoomID
	if roomID == "" {
		roomID = domain.NewRoomID()
	}

	meeting, err := domain.NewMeeting(roomID, req.Title, req.HostName)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := h.meetingRepository.Create(r.Context(), meeting); err != nil {
		switch {
		case errors.Is(err, domain.ErrMeetingAlreadyExists):
			json.WriteError(w, http.StatusConflict, err, "Meeting already exists")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusCreated, toResponse(meeting))
}

// ListMeetingsHandler godoc
// @Summary      List meetings
// @Description  Returns all persisted meeting records, newest first
// @Tags         meetings
// @Produce      json
// @Success      200 {array} meetingResponse "Meetings"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /meetings [get]
func (h *Handler) ListMeetingsHandler(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.meetingRepository.List(r.Context())
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	resp := make([]meetingResponse, 0, len(meetings))
	for i := range meetings {
		resp = append(resp, toResponse(&meetings[i]))
	}

	json.Write(w, http.StatusOK, resp)
}

// GetMeetingHandler godoc
// @Summary      Fetch one meeting
// @Description  Returns the meeting record for the given meeting id
// @Tags         meetings
// @Produce      json
// @Param        meetingId path string true "Meeting ID"
// @Success      200 {object} meetingResponse "Meeting"
// @Failure      404 {object} map[string]interface{} "Meeting not found"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /meetings/{meetingId} [get]
func (h *Handler) GetMeetingHandler(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingId")
	if meetingID == "" {
		json.WriteValidationError(w, errors.New("meeting ID is missing"))
		return
	}

	meeting, err := h.meetingRepository.GetByMeetingID(r.Context(), meetingID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMeetingNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Meeting not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, toResponse(meeting))
}

// DeleteMeetingHandler godoc
// @Summary      Delete a meeting
// @Description  Removes the meeting record for the given meeting id
// @Tags         meetings
// @Produce      json
// @Param        meetingId path string true "Meeting ID"
// @Success      204 "Meeting removed successfully"
// @Failure      404 {object} map[string]interface{} "Meeting not found"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /meetings/{meetingId} [delete]
func (h *Handler) DeleteMeetingHandler(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingId")
	if meetingID == "" {
		json.WriteValidationError(w, errors.New("meeting ID is missing"))
		return
	}

	if err := h.meetingRepository.Delete(r.Context(), meetingID); err != nil {
		switch {
		case errors.Is(err, domain.ErrMeetingNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Meeting not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toResponse(m *domain.Meeting) meetingResponse {
	return meetingResponse{
		MeetingID: m.MeetingID,
		RoomID:    m.RoomID,
		Title:     m.Title,
		HostName:  m.HostName,
		CreatedAt: m.CreatedAt,
	}
}
