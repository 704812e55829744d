package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

type stubSuggestionSlots struct {
	byKey map[string][]models.TimetableSlot
	loads map[string]int
}

func (s *stubSuggestionSlots) ListByKey(_ context.Context, _, _ string, _ int, periodID string) ([]models.TimetableSlot, error) {
	return s.byKey[periodID], nil
}

func (s *stubSuggestionSlots) CountByTeacherWeek(_ context.Context, _, _, teacherID string) (int, error) {
	return s.loads[teacherID], nil
}

type stubQualifiedTeachers struct {
	bySubject map[string][]models.Teacher
}

func (s *stubQualifiedTeachers) ListQualified(_ context.Context, _, subjectID string) ([]models.Teacher, error) {
	return s.bySubject[subjectID], nil
}

type stubRooms struct {
	byType map[models.RoomType][]models.Classroom
}

func (s *stubRooms) ListByType(_ context.Context, _ string, roomType models.RoomType) ([]models.Classroom, error) {
	return s.byType[roomType], nil
}

type staticConflicts struct {
	conflicts []models.SlotConflict
}

func (s *staticConflicts) Check(_ context.Context, _ string, _ models.TimetableSlot, _ string) ([]models.SlotConflict, error) {
	return s.conflicts, nil
}

func labCandidate() models.TimetableSlot {
	return models.TimetableSlot{
		TermID:      "term-1",
		DayOfWeek:   1,
		PeriodID:    "p1",
		ClassID:     "class-a",
		SubjectID:   "chem",
		TeacherID:   "teacher-1",
		ClassroomID: "lab-1",
	}
}

func newSuggestionFixture(conflicts []models.SlotConflict) (*SuggestionService, *stubSuggestionSlots) {
	slots := &stubSuggestionSlots{
		byKey: map[string][]models.TimetableSlot{},
		loads: map[string]int{"teacher-2": 12, "teacher-3": 4},
	}
	teachers := &stubQualifiedTeachers{bySubject: map[string][]models.Teacher{
		"chem": {{ID: "teacher-1"}, {ID: "teacher-2"}, {ID: "teacher-3"}},
	}}
	rooms := &stubRooms{byType: map[models.RoomType][]models.Classroom{
		models.RoomTypeLab:     {{ID: "lab-1"}, {ID: "lab-2"}},
		models.RoomTypeRegular: {{ID: "room-1"}},
	}}
	subjects := &stubSubjectReader{subjects: []models.Subject{
		{ID: "chem", Code: "CHEM", RoomAffinity: models.RoomTypeLab, AllowAnyRoom: true},
	}}
	svc := NewSuggestionService(slots, &staticConflicts{conflicts: conflicts}, teachers, rooms, subjects, nil)
	return svc, slots
}

func TestSuggestClassConflictHasNoAlternatives(t *testing.T) {
	svc, _ := newSuggestionFixture([]models.SlotConflict{{Axis: models.AxisClassBusy}})

	conflicts, alternatives, err := svc.Suggest(context.Background(), "school-1", labCandidate())
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
	assert.Empty(t, alternatives)
}

func TestSuggestTeacherAxisRanksByLoad(t *testing.T) {
	svc, _ := newSuggestionFixture([]models.SlotConflict{{Axis: models.AxisTeacherBusy}})

	_, alternatives, err := svc.Suggest(context.Background(), "school-1", labCandidate())
	require.NoError(t, err)
	require.NotEmpty(t, alternatives)

	// teacher-3 carries less load than teacher-2; the conflicting teacher-1
	// is never proposed. Room stays untouched.
	first := alternatives[0]
	require.NotNil(t, first.TeacherID)
	assert.Equal(t, "teacher-3", *first.TeacherID)
	assert.Equal(t, 4, first.TeacherLoad)
	assert.Nil(t, first.ClassroomID)
	for _, alt := range alternatives {
		assert.NotEqual(t, "teacher-1", *alt.TeacherID)
	}
}

func TestSuggestRoomAxisPrefersAffinityThenFallback(t *testing.T) {
	svc, slots := newSuggestionFixture([]models.SlotConflict{{Axis: models.AxisRoomBusy}})
	// lab-2 is taken by another slot at the same key.
	slots.byKey["p1"] = []models.TimetableSlot{
		{ID: "other", TeacherID: "x", ClassroomID: "lab-2", ClassID: "class-x"},
	}

	_, alternatives, err := svc.Suggest(context.Background(), "school-1", labCandidate())
	require.NoError(t, err)
	require.Len(t, alternatives, 1)

	// The conflicting lab-1 and the busy lab-2 are out; only the regular
	// fallback remains, flagged as non-exact.
	require.NotNil(t, alternatives[0].ClassroomID)
	assert.Equal(t, "room-1", *alternatives[0].ClassroomID)
	assert.False(t, alternatives[0].ExactRoomType)
	assert.Nil(t, alternatives[0].TeacherID)
}

func TestSuggestRoomAxisStrictAffinityNoFallback(t *testing.T) {
	slots := &stubSuggestionSlots{
		byKey: map[string][]models.TimetableSlot{},
		loads: map[string]int{},
	}
	teachers := &stubQualifiedTeachers{bySubject: map[string][]models.Teacher{}}
	rooms := &stubRooms{byType: map[models.RoomType][]models.Classroom{
		models.RoomTypeLab:     {{ID: "lab-1"}, {ID: "lab-2"}},
		models.RoomTypeRegular: {{ID: "room-1"}},
	}}
	subjects := &stubSubjectReader{subjects: []models.Subject{
		{ID: "chem", Code: "CHEM", RoomAffinity: models.RoomTypeLab, AllowAnyRoom: false},
	}}
	svc := NewSuggestionService(slots, &staticConflicts{conflicts: []models.SlotConflict{{Axis: models.AxisRoomBusy}}}, teachers, rooms, subjects, nil)

	// Both labs are busy and the subject refuses regular rooms, so no room
	// alternative can be offered.
	slots.byKey["p1"] = []models.TimetableSlot{
		{ID: "o1", TeacherID: "x", ClassroomID: "lab-2", ClassID: "class-x"},
	}

	conflicts, alternatives, err := svc.Suggest(context.Background(), "school-1", labCandidate())
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
	assert.Empty(t, alternatives)
}

func TestSuggestNoConflictReturnsNothingToChange(t *testing.T) {
	svc, _ := newSuggestionFixture(nil)

	conflicts, alternatives, err := svc.Suggest(context.Background(), "school-1", labCandidate())
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Empty(t, alternatives)
}

func TestPickSubstituteLowestLoadFreeTeacher(t *testing.T) {
	svc, slots := newSuggestionFixture(nil)
	slot := labCandidate()
	slot.ID = "slot-1"
	// teacher-3 is busy at the key, so teacher-2 wins despite higher load.
	slots.byKey["p1"] = []models.TimetableSlot{
		{ID: "other", TeacherID: "teacher-3", ClassroomID: "r9", ClassID: "class-x"},
	}

	substitute, err := svc.PickSubstitute(context.Background(), "school-1", slot, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-2", substitute)
}

func TestPickSubstituteNobodyAvailable(t *testing.T) {
	svc, slots := newSuggestionFixture(nil)
	slot := labCandidate()
	slots.byKey["p1"] = []models.TimetableSlot{
		{ID: "o1", TeacherID: "teacher-2"},
		{ID: "o2", TeacherID: "teacher-3"},
	}

	substitute, err := svc.PickSubstitute(context.Background(), "school-1", slot, "teacher-1")
	require.NoError(t, err)
	assert.Empty(t, substitute)
}
