package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

type stubSlotReader struct {
	byKey  []models.TimetableSlot
	byTerm []models.TimetableSlot
}

func (s *stubSlotReader) ListByKey(_ context.Context, _, _ string, _ int, _ string) ([]models.TimetableSlot, error) {
	return s.byKey, nil
}

func (s *stubSlotReader) ListByTerm(_ context.Context, _, _ string) ([]models.TimetableSlot, error) {
	return s.byTerm, nil
}

func intPtr(v int) *int { return &v }

func committedSlot(id string) models.TimetableSlot {
	return models.TimetableSlot{
		ID:          id,
		SchoolID:    "school-1",
		TermID:      "term-1",
		DayOfWeek:   1,
		PeriodID:    "p1",
		ClassID:     "class-a",
		SubjectID:   "math",
		TeacherID:   "teacher-1",
		ClassroomID: "room-1",
	}
}

func TestConflictCheckReportsAllAxesInOrder(t *testing.T) {
	reader := &stubSlotReader{byKey: []models.TimetableSlot{committedSlot("s1")}}
	svc := NewConflictService(reader, nil)

	candidate := committedSlot("")
	candidate.ID = ""
	conflicts, err := svc.Check(context.Background(), "school-1", candidate, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 3)
	assert.Equal(t, models.AxisTeacherBusy, conflicts[0].Axis)
	assert.Equal(t, models.AxisRoomBusy, conflicts[1].Axis)
	assert.Equal(t, models.AxisClassBusy, conflicts[2].Axis)
	for _, c := range conflicts {
		assert.Equal(t, "s1", c.CollidingSlotID)
	}
}

func TestConflictCheckSingleAxis(t *testing.T) {
	reader := &stubSlotReader{byKey: []models.TimetableSlot{committedSlot("s1")}}
	svc := NewConflictService(reader, nil)

	candidate := committedSlot("")
	candidate.ID = ""
	candidate.ClassID = "class-b"
	candidate.ClassroomID = "room-2"
	conflicts, err := svc.Check(context.Background(), "school-1", candidate, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.AxisTeacherBusy, conflicts[0].Axis)
}

func TestConflictCheckExcludesEditedSlot(t *testing.T) {
	reader := &stubSlotReader{byKey: []models.TimetableSlot{committedSlot("s1")}}
	svc := NewConflictService(reader, nil)

	candidate := committedSlot("s1")
	conflicts, err := svc.Check(context.Background(), "school-1", candidate, "s1")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestConflictCheckIgnoresDisjointWeeks(t *testing.T) {
	even := committedSlot("s1")
	even.WeekOffset = intPtr(0)
	reader := &stubSlotReader{byKey: []models.TimetableSlot{even}}
	svc := NewConflictService(reader, nil)

	odd := committedSlot("")
	odd.ID = ""
	odd.WeekOffset = intPtr(1)
	conflicts, err := svc.Check(context.Background(), "school-1", odd, "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	// An every-week candidate overlaps any parity.
	everyWeek := committedSlot("")
	everyWeek.ID = ""
	everyWeek.WeekOffset = nil
	conflicts, err = svc.Check(context.Background(), "school-1", everyWeek, "")
	require.NoError(t, err)
	assert.NotEmpty(t, conflicts)
}

func TestConflictCheckTermIsDeterministic(t *testing.T) {
	a := committedSlot("s1")
	b := committedSlot("s2")
	b.ClassID = "class-b"
	b.ClassroomID = "room-2" // shares only the teacher with a
	c := committedSlot("s3")
	c.DayOfWeek = 2 // different key, no collision
	reader := &stubSlotReader{byTerm: []models.TimetableSlot{a, b, c}}
	svc := NewConflictService(reader, nil)

	first, err := svc.CheckTerm(context.Background(), "school-1", "term-1")
	require.NoError(t, err)
	second, err := svc.CheckTerm(context.Background(), "school-1", "term-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, models.AxisTeacherBusy, first[0].Axis)
	assert.Equal(t, "s1", first[0].CollidingSlotID)
}
