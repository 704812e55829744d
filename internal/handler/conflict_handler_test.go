package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/middleware"
	"github.com/databayt/hogwarts-timetable/internal/models"
	"github.com/databayt/hogwarts-timetable/internal/service"
)

type conflictSlotReaderMock struct {
	byKey []models.TimetableSlot
}

func (m *conflictSlotReaderMock) ListByKey(_ context.Context, _, _ string, _ int, _ string) ([]models.TimetableSlot, error) {
	return m.byKey, nil
}

func (m *conflictSlotReaderMock) ListByTerm(_ context.Context, _, _ string) ([]models.TimetableSlot, error) {
	return nil, nil
}

func newConflictTestContext(t *testing.T, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/conflicts/check", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", SchoolID: "school-1", Role: models.RoleAdmin})
	return c, w
}

func TestConflictHandlerCheckInvalidBody(t *testing.T) {
	handler := NewConflictHandler(service.NewConflictService(&conflictSlotReaderMock{}, nil))
	c, w := newConflictTestContext(t, []byte(`not json`))

	handler.Check(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConflictHandlerCheckReportsBusyTeacher(t *testing.T) {
	mock := &conflictSlotReaderMock{byKey: []models.TimetableSlot{
		{ID: "slot-1", TermID: "term-1", DayOfWeek: 1, PeriodID: "p1", ClassID: "class-b", TeacherID: "teacher-1", ClassroomID: "room-2"},
	}}
	handler := NewConflictHandler(service.NewConflictService(mock, nil))

	body, _ := json.Marshal(dto.SlotCandidate{
		TermID:      "term-1",
		DayOfWeek:   1,
		PeriodID:    "p1",
		ClassID:     "class-a",
		SubjectID:   "math",
		TeacherID:   "teacher-1",
		ClassroomID: "room-1",
	})
	c, w := newConflictTestContext(t, body)

	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			ConflictFree bool                  `json:"conflict_free"`
			Conflicts    []models.SlotConflict `json:"conflicts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.ConflictFree)
	require.Len(t, envelope.Data.Conflicts, 1)
	assert.Equal(t, models.AxisTeacherBusy, envelope.Data.Conflicts[0].Axis)
}

func TestConflictHandlerCheckCleanCandidate(t *testing.T) {
	handler := NewConflictHandler(service.NewConflictService(&conflictSlotReaderMock{}, nil))

	body, _ := json.Marshal(dto.SlotCandidate{
		TermID:      "term-1",
		DayOfWeek:   1,
		PeriodID:    "p1",
		ClassID:     "class-a",
		SubjectID:   "math",
		TeacherID:   "teacher-1",
		ClassroomID: "room-1",
	})
	c, w := newConflictTestContext(t, body)

	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			ConflictFree bool `json:"conflict_free"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.ConflictFree)
}
