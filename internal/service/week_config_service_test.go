package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lib/pq"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

type stubWeekConfigRepo struct {
	byTerm     *models.WeekConfig
	fallback   *models.WeekConfig
	upserted   *models.WeekConfig
	upsertErr  error
	termErr    error
	defaultErr error
}

func (s *stubWeekConfigRepo) FindByTerm(_ context.Context, _, _ string) (*models.WeekConfig, error) {
	if s.byTerm == nil {
		if s.termErr != nil {
			return nil, s.termErr
		}
		return nil, sql.ErrNoRows
	}
	return s.byTerm, nil
}

func (s *stubWeekConfigRepo) FindDefault(_ context.Context, _ string) (*models.WeekConfig, error) {
	if s.fallback == nil {
		if s.defaultErr != nil {
			return nil, s.defaultErr
		}
		return nil, sql.ErrNoRows
	}
	return s.fallback, nil
}

func (s *stubWeekConfigRepo) Upsert(_ context.Context, cfg *models.WeekConfig) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = cfg
	return nil
}

func TestWeekConfigResolveBuiltInDefault(t *testing.T) {
	svc := NewWeekConfigService(&stubWeekConfigRepo{}, nil, nil)

	cfg, err := svc.Resolve(context.Background(), "school-1", "term-1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, cfg.WorkingDays)
	assert.Equal(t, 4, cfg.LunchAfterPeriod)
}

func TestWeekConfigResolvePrefersTermSpecific(t *testing.T) {
	repo := &stubWeekConfigRepo{
		byTerm:   &models.WeekConfig{WorkingDays: pq.Int64Array{1, 2, 3, 4, 5}, LunchAfterPeriod: 3},
		fallback: &models.WeekConfig{WorkingDays: pq.Int64Array{0, 1, 2}, LunchAfterPeriod: 2},
	}
	svc := NewWeekConfigService(repo, nil, nil)

	cfg, err := svc.Resolve(context.Background(), "school-1", "term-1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.WorkingDays)
	assert.Equal(t, 3, cfg.LunchAfterPeriod)
}

func TestWeekConfigResolveFallsBackToSchoolDefault(t *testing.T) {
	overrides, err := json.Marshal(map[string]int{"class-1": 5})
	require.NoError(t, err)
	repo := &stubWeekConfigRepo{
		fallback: &models.WeekConfig{WorkingDays: pq.Int64Array{0, 1, 2}, LunchAfterPeriod: 2, ClassOverrides: overrides},
	}
	svc := NewWeekConfigService(repo, nil, nil)

	cfg, err := svc.Resolve(context.Background(), "school-1", "term-1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, cfg.WorkingDays)
	assert.Equal(t, 5, cfg.LunchPositionFor("class-1"))
	assert.Equal(t, 2, cfg.LunchPositionFor("class-2"))
}

func TestWeekConfigUpsertNormalizesDays(t *testing.T) {
	repo := &stubWeekConfigRepo{}
	svc := NewWeekConfigService(repo, nil, nil)

	_, err := svc.Upsert(context.Background(), "school-1", UpsertWeekConfigRequest{
		WorkingDays:      []int{4, 0, 4, 2},
		LunchAfterPeriod: 3,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, []int64{0, 2, 4}, []int64(repo.upserted.WorkingDays))
	assert.Equal(t, "school-1", repo.upserted.SchoolID)
}

func TestWeekConfigUpsertRejectsEmptyDays(t *testing.T) {
	svc := NewWeekConfigService(&stubWeekConfigRepo{}, nil, nil)

	_, err := svc.Upsert(context.Background(), "school-1", UpsertWeekConfigRequest{WorkingDays: nil})
	require.Error(t, err)
}
