package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/databayt/hogwarts-timetable/internal/models"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
)

type conflictSlotReader interface {
	ListByKey(ctx context.Context, schoolID, termID string, dayOfWeek int, periodID string) ([]models.TimetableSlot, error)
	ListByTerm(ctx context.Context, schoolID, termID string) ([]models.TimetableSlot, error)
}

// ConflictService detects collisions on the three independent axes: teacher,
// room, class. The pre-check gives callers descriptive errors early; the
// database constraints remain the final arbiter at commit time.
type ConflictService struct {
	slots  conflictSlotReader
	logger *zap.Logger
}

// NewConflictService instantiates ConflictService.
func NewConflictService(slots conflictSlotReader, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{slots: slots, logger: logger}
}

// Check tests a candidate against committed slots sharing its
// (term, day, period) key. All violated axes are reported, not just the
// first. excludeSlotID skips the slot being edited.
func (s *ConflictService) Check(ctx context.Context, schoolID string, candidate models.TimetableSlot, excludeSlotID string) ([]models.SlotConflict, error) {
	existing, err := s.slots.ListByKey(ctx, schoolID, candidate.TermID, candidate.DayOfWeek, candidate.PeriodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots for conflict check")
	}

	var conflicts []models.SlotConflict
	for _, slot := range existing {
		if slot.ID == excludeSlotID {
			continue
		}
		if !models.OverlapsWeek(slot.WeekOffset, candidate.WeekOffset) {
			continue
		}
		conflicts = append(conflicts, collide(candidate, slot)...)
	}
	return conflicts, nil
}

// CheckTerm returns every pairwise violation within a term in one pass. The
// underlying query orders slots by day, period order, then class id, so the
// report is stable across calls on a fixed dataset.
func (s *ConflictService) CheckTerm(ctx context.Context, schoolID, termID string) ([]models.SlotConflict, error) {
	slots, err := s.slots.ListByTerm(ctx, schoolID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term slots")
	}

	var conflicts []models.SlotConflict
	for i := 1; i < len(slots); i++ {
		for j := 0; j < i; j++ {
			a, b := slots[i], slots[j]
			if a.DayOfWeek != b.DayOfWeek || a.PeriodID != b.PeriodID {
				continue
			}
			if !models.OverlapsWeek(a.WeekOffset, b.WeekOffset) {
				continue
			}
			conflicts = append(conflicts, collide(a, b)...)
		}
	}
	return conflicts, nil
}

// collide reports every axis on which candidate and existing overlap. Axis
// order is fixed (teacher, room, class) for deterministic output.
func collide(candidate, existing models.TimetableSlot) []models.SlotConflict {
	base := models.SlotConflict{
		CollidingSlotID: existing.ID,
		TermID:          existing.TermID,
		DayOfWeek:       existing.DayOfWeek,
		PeriodID:        existing.PeriodID,
		ClassID:         existing.ClassID,
		TeacherID:       existing.TeacherID,
		ClassroomID:     existing.ClassroomID,
	}

	var conflicts []models.SlotConflict
	if candidate.TeacherID != "" && candidate.TeacherID == existing.TeacherID {
		c := base
		c.Axis = models.AxisTeacherBusy
		conflicts = append(conflicts, c)
	}
	if candidate.ClassroomID != "" && candidate.ClassroomID == existing.ClassroomID {
		c := base
		c.Axis = models.AxisRoomBusy
		conflicts = append(conflicts, c)
	}
	if candidate.ClassID != "" && candidate.ClassID == existing.ClassID {
		c := base
		c.Axis = models.AxisClassBusy
		conflicts = append(conflicts, c)
	}
	return conflicts
}
