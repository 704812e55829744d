package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/databayt/hogwarts-timetable/internal/models"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
)

type weekConfigRepository interface {
	FindByTerm(ctx context.Context, schoolID, termID string) (*models.WeekConfig, error)
	FindDefault(ctx context.Context, schoolID string) (*models.WeekConfig, error)
	Upsert(ctx context.Context, cfg *models.WeekConfig) error
}

// UpsertWeekConfigRequest replaces the working-day and lunch configuration
// for a term, or the school-wide fallback when TermID is nil.
type UpsertWeekConfigRequest struct {
	TermID           *string        `json:"term_id,omitempty"`
	WorkingDays      []int          `json:"working_days" validate:"required,min=1,dive,min=0,max=6"`
	LunchAfterPeriod int            `json:"lunch_after_period" validate:"min=0"`
	ClassOverrides   map[string]int `json:"class_overrides,omitempty"`
}

// WeekConfigService resolves the effective working week for a tenant and
// term. Resolution never touches process-wide state; every call fetches the
// tenant's own configuration.
type WeekConfigService struct {
	repo      weekConfigRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeekConfigService instantiates WeekConfigService.
func NewWeekConfigService(repo weekConfigRepository, validate *validator.Validate, logger *zap.Logger) *WeekConfigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeekConfigService{repo: repo, validator: validate, logger: logger}
}

// defaultResolvedConfig is the built-in fallback: Sunday through Thursday
// with lunch after the 4th teaching period.
func defaultResolvedConfig() models.ResolvedWeekConfig {
	return models.ResolvedWeekConfig{
		WorkingDays:      []int{0, 1, 2, 3, 4},
		LunchAfterPeriod: 4,
	}
}

// Resolve returns the effective configuration: term-specific first, then the
// school's all-terms fallback, then the built-in default.
func (s *WeekConfigService) Resolve(ctx context.Context, schoolID, termID string) (models.ResolvedWeekConfig, error) {
	if termID != "" {
		cfg, err := s.repo.FindByTerm(ctx, schoolID, termID)
		if err == nil {
			return resolveStored(cfg)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.ResolvedWeekConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week config")
		}
	}

	cfg, err := s.repo.FindDefault(ctx, schoolID)
	if err == nil {
		return resolveStored(cfg)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.ResolvedWeekConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load default week config")
	}

	return defaultResolvedConfig(), nil
}

// Upsert validates and stores a week configuration.
func (s *WeekConfigService) Upsert(ctx context.Context, schoolID string, req UpsertWeekConfigRequest) (*models.WeekConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week config payload")
	}

	days := normalizeWorkingDays(req.WorkingDays)
	if len(days) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "working days must contain at least one day index between 0-6")
	}

	cfg := &models.WeekConfig{
		SchoolID:         schoolID,
		TermID:           req.TermID,
		WorkingDays:      toInt64Array(days),
		LunchAfterPeriod: req.LunchAfterPeriod,
	}
	if len(req.ClassOverrides) > 0 {
		raw, err := json.Marshal(req.ClassOverrides)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode class overrides")
		}
		cfg.ClassOverrides = raw
	}

	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store week config")
	}
	return cfg, nil
}

func resolveStored(cfg *models.WeekConfig) (models.ResolvedWeekConfig, error) {
	resolved := models.ResolvedWeekConfig{
		WorkingDays:      normalizeWorkingDays(fromInt64Array(cfg.WorkingDays)),
		LunchAfterPeriod: cfg.LunchAfterPeriod,
	}
	if len(resolved.WorkingDays) == 0 {
		resolved.WorkingDays = defaultResolvedConfig().WorkingDays
	}
	if len(cfg.ClassOverrides) > 0 {
		overrides := make(map[string]int)
		if err := json.Unmarshal(cfg.ClassOverrides, &overrides); err != nil {
			return models.ResolvedWeekConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("corrupt class overrides for config %s", cfg.ID))
		}
		resolved.ClassOverrides = overrides
	}
	return resolved, nil
}

func normalizeWorkingDays(days []int) []int {
	unique := make(map[int]struct{})
	for _, day := range days {
		if day < 0 || day > 6 {
			continue
		}
		unique[day] = struct{}{}
	}
	result := make([]int, 0, len(unique))
	for day := range unique {
		result = append(result, day)
	}
	sort.Ints(result)
	return result
}

func toInt64Array(days []int) pq.Int64Array {
	arr := make(pq.Int64Array, len(days))
	for i, d := range days {
		arr[i] = int64(d)
	}
	return arr
}

func fromInt64Array(arr pq.Int64Array) []int {
	days := make([]int, len(arr))
	for i, d := range arr {
		days[i] = int(d)
	}
	return days
}
