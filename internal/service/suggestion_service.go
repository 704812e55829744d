package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/models"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
)

const maxSuggestions = 10

type suggestionSlotReader interface {
	ListByKey(ctx context.Context, schoolID, termID string, dayOfWeek int, periodID string) ([]models.TimetableSlot, error)
	CountByTeacherWeek(ctx context.Context, schoolID, termID, teacherID string) (int, error)
}

type suggestionTeacherReader interface {
	ListQualified(ctx context.Context, schoolID, subjectID string) ([]models.Teacher, error)
}

type suggestionClassroomReader interface {
	ListByType(ctx context.Context, schoolID string, roomType models.RoomType) ([]models.Classroom, error)
}

type suggestionSubjectReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Subject, error)
}

// SuggestionService proposes teacher and classroom alternatives for a
// candidate slot whose original assignment collided. A class-axis collision
// has no alternative: the class cannot be in two places, so the caller must
// pick a different day or period.
type SuggestionService struct {
	slots      suggestionSlotReader
	conflicts  slotConflictChecker
	teachers   suggestionTeacherReader
	classrooms suggestionClassroomReader
	subjects   suggestionSubjectReader
	logger     *zap.Logger
}

func NewSuggestionService(
	slots suggestionSlotReader,
	conflicts slotConflictChecker,
	teachers suggestionTeacherReader,
	classrooms suggestionClassroomReader,
	subjects suggestionSubjectReader,
	logger *zap.Logger,
) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		slots:      slots,
		conflicts:  conflicts,
		teachers:   teachers,
		classrooms: classrooms,
		subjects:   subjects,
		logger:     logger,
	}
}

// Suggest returns the candidate's conflicts and up to ten alternatives,
// ordered by teacher weekly load ascending with teacher id and room id as
// tiebreakers. Only the dimensions that conflicted are populated on each
// alternative.
func (s *SuggestionService) Suggest(ctx context.Context, schoolID string, candidate models.TimetableSlot) ([]models.SlotConflict, []dto.Alternative, error) {
	conflicts, err := s.conflicts.Check(ctx, schoolID, candidate, "")
	if err != nil {
		return nil, nil, err
	}
	if len(conflicts) == 0 {
		return nil, []dto.Alternative{}, nil
	}

	teacherBlocked, roomBlocked := false, false
	for _, conflict := range conflicts {
		switch conflict.Axis {
		case models.AxisClassBusy:
			return conflicts, []dto.Alternative{}, nil
		case models.AxisTeacherBusy:
			teacherBlocked = true
		case models.AxisRoomBusy:
			roomBlocked = true
		}
	}

	occupied, err := s.slots.ListByKey(ctx, schoolID, candidate.TermID, candidate.DayOfWeek, candidate.PeriodID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occupied slots")
	}
	busyTeachers := make(map[string]bool)
	busyRooms := make(map[string]bool)
	for _, slot := range occupied {
		if !models.OverlapsWeek(slot.WeekOffset, candidate.WeekOffset) {
			continue
		}
		busyTeachers[slot.TeacherID] = true
		busyRooms[slot.ClassroomID] = true
	}

	teacherOptions, err := s.teacherOptions(ctx, schoolID, candidate, teacherBlocked, busyTeachers)
	if err != nil {
		return nil, nil, err
	}
	roomOptions, err := s.roomOptions(ctx, schoolID, candidate, roomBlocked, busyRooms)
	if err != nil {
		return nil, nil, err
	}

	alternatives := make([]dto.Alternative, 0, maxSuggestions)
	for _, teacher := range teacherOptions {
		for _, room := range roomOptions {
			alt := dto.Alternative{}
			if teacherBlocked {
				id := teacher.id
				alt.TeacherID = &id
				alt.TeacherLoad = teacher.load
			}
			if roomBlocked {
				id := room.id
				alt.ClassroomID = &id
				alt.ExactRoomType = room.exact
			}
			alternatives = append(alternatives, alt)
			if len(alternatives) == maxSuggestions {
				return conflicts, alternatives, nil
			}
		}
	}
	return conflicts, alternatives, nil
}

// PickSubstitute selects the qualified teacher with the lowest weekly load
// who is free at the slot's key, excluding the given teacher. Returns an
// empty id when nobody can cover the slot.
func (s *SuggestionService) PickSubstitute(ctx context.Context, schoolID string, slot models.TimetableSlot, excludeTeacherID string) (string, error) {
	occupied, err := s.slots.ListByKey(ctx, schoolID, slot.TermID, slot.DayOfWeek, slot.PeriodID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occupied slots")
	}
	busy := make(map[string]bool)
	for _, other := range occupied {
		if other.ID == slot.ID {
			continue
		}
		if !models.OverlapsWeek(other.WeekOffset, slot.WeekOffset) {
			continue
		}
		busy[other.TeacherID] = true
	}

	qualified, err := s.teachers.ListQualified(ctx, schoolID, slot.SubjectID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load qualified teachers")
	}

	options := make([]teacherOption, 0, len(qualified))
	for _, teacher := range qualified {
		if teacher.ID == excludeTeacherID || busy[teacher.ID] {
			continue
		}
		load, err := s.slots.CountByTeacherWeek(ctx, schoolID, slot.TermID, teacher.ID)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teacher load")
		}
		options = append(options, teacherOption{id: teacher.ID, load: load})
	}
	sortTeacherOptions(options)
	if len(options) == 0 {
		return "", nil
	}
	return options[0].id, nil
}

type teacherOption struct {
	id   string
	load int
}

type roomOption struct {
	id    string
	exact bool
}

func (s *SuggestionService) teacherOptions(ctx context.Context, schoolID string, candidate models.TimetableSlot, blocked bool, busy map[string]bool) ([]teacherOption, error) {
	if !blocked {
		load, err := s.slots.CountByTeacherWeek(ctx, schoolID, candidate.TermID, candidate.TeacherID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teacher load")
		}
		return []teacherOption{{id: candidate.TeacherID, load: load}}, nil
	}

	qualified, err := s.teachers.ListQualified(ctx, schoolID, candidate.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load qualified teachers")
	}
	options := make([]teacherOption, 0, len(qualified))
	for _, teacher := range qualified {
		if teacher.ID == candidate.TeacherID || busy[teacher.ID] {
			continue
		}
		load, err := s.slots.CountByTeacherWeek(ctx, schoolID, candidate.TermID, teacher.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teacher load")
		}
		options = append(options, teacherOption{id: teacher.ID, load: load})
	}
	sortTeacherOptions(options)
	return options, nil
}

func (s *SuggestionService) roomOptions(ctx context.Context, schoolID string, candidate models.TimetableSlot, blocked bool, busy map[string]bool) ([]roomOption, error) {
	if !blocked {
		return []roomOption{{id: candidate.ClassroomID, exact: true}}, nil
	}

	subject, err := s.subjects.FindByID(ctx, schoolID, candidate.SubjectID)
	if err != nil {
		return nil, refError(err, "subject")
	}

	options := make([]roomOption, 0)
	seen := map[string]bool{candidate.ClassroomID: true}

	appendRooms := func(roomType models.RoomType, exact bool) error {
		rooms, err := s.classrooms.ListByType(ctx, schoolID, roomType)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
		}
		for _, room := range rooms {
			if seen[room.ID] || busy[room.ID] {
				continue
			}
			seen[room.ID] = true
			options = append(options, roomOption{id: room.ID, exact: exact})
		}
		return nil
	}

	if subject.RequiresRoomType() {
		if err := appendRooms(subject.RoomAffinity, true); err != nil {
			return nil, err
		}
		if subject.AllowAnyRoom && subject.RoomAffinity != models.RoomTypeRegular {
			if err := appendRooms(models.RoomTypeRegular, false); err != nil {
				return nil, err
			}
		}
	} else {
		if err := appendRooms(models.RoomTypeRegular, true); err != nil {
			return nil, err
		}
	}
	return options, nil
}

func sortTeacherOptions(options []teacherOption) {
	sort.Slice(options, func(i, j int) bool {
		if options[i].load != options[j].load {
			return options[i].load < options[j].load
		}
		return options[i].id < options[j].id
	})
}
