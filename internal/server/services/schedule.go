package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/hub"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/repomanager"
)

// ScheduleService covers the thin room/meeting CRUD around the document core.
type ScheduleService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hub    *hub.Hub
	logger logging.Logger
}

func NewScheduleService(db *sql.DB, repos repomanager.RepositoryManager, h *hub.Hub, logger logging.Logger) *ScheduleService {
	return &ScheduleService{db: db, repos: repos, hub: h, logger: logger.With("module", "schedule_service")}
}

func (s *ScheduleService) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	return s.repos.Rooms(s.db).Create(ctx, room)
}

func (s *ScheduleService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	return s.repos.Rooms(s.db).List(ctx)
}

func (s *ScheduleService) UpdateRoomStatus(ctx context.Context, id string, status string) error {
	return s.repos.Rooms(s.db).UpdateStatus(ctx, id, status)
}

func (s *ScheduleService) DeleteRoom(ctx context.Context, id string) error {
	return s.repos.Rooms(s.db).Delete(ctx, id)
}

func (s *ScheduleService) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = models.MeetingUpcoming
	}
	if err := s.repos.Meetings(s.db).Create(ctx, m); err != nil {
		return err
	}
	s.notifyMeeting(ctx, m)
	return nil
}

func (s *ScheduleService) ListMeetings(ctx context.Context) ([]*models.Meeting, error) {
	return s.repos.Meetings(s.db).List(ctx)
}

func (s *ScheduleService) UpdateMeeting(ctx context.Context, m *models.Meeting) error {
	if err := s.repos.Meetings(s.db).Update(ctx, m); err != nil {
		return err
	}
	s.notifyMeeting(ctx, m)
	return nil
}

func (s *ScheduleService) DeleteMeeting(ctx context.Context, id string) error {
	return s.repos.Meetings(s.db).Delete(ctx, id)
}

func (s *ScheduleService) notifyMeeting(ctx context.Context, m *models.Meeting) {
	msg, err := events.Marshal(events.KindMeetingChanged, m)
	if err != nil {
		s.logger.Warn(ctx, "encode meeting event failed", "error", err)
		return
	}
	s.hub.Broadcast("meetings", msg)
}
