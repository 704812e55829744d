package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/models"
	"github.com/databayt/hogwarts-timetable/pkg/database"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
	"github.com/databayt/hogwarts-timetable/pkg/export"
)

type slotRepository interface {
	List(ctx context.Context, schoolID string, filter models.SlotFilter) ([]models.TimetableSlot, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.TimetableSlot, error)
	ListByClass(ctx context.Context, schoolID, termID, classID string) ([]models.TimetableSlot, error)
	ListByTeacher(ctx context.Context, schoolID, termID, teacherID string) ([]models.TimetableSlot, error)
	Create(ctx context.Context, slot *models.TimetableSlot) error
	Update(ctx context.Context, slot *models.TimetableSlot) error
	Delete(ctx context.Context, schoolID, id string) error
}

type slotConflictChecker interface {
	Check(ctx context.Context, schoolID string, candidate models.TimetableSlot, excludeSlotID string) ([]models.SlotConflict, error)
}

type weekResolver interface {
	Resolve(ctx context.Context, schoolID, termID string) (models.ResolvedWeekConfig, error)
}

type periodReader interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Period, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Period, error)
}

type slotTermReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Term, error)
}

type slotClassReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Class, error)
}

type slotSubjectReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Subject, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.Subject, error)
}

type slotTeacherReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Teacher, error)
	ListActive(ctx context.Context, schoolID string) ([]models.Teacher, error)
}

type slotClassroomReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Classroom, error)
}

type gridCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type conflictObserver interface {
	ObserveConflicts(conflicts []models.SlotConflict)
}

// WeeklyTimetableQuery selects one weekly grid.
type WeeklyTimetableQuery struct {
	TermID     string
	View       dto.TimetableView
	TargetID   string
	WeekOffset *int
}

// SlotService creates, updates, and deletes timetable slots and assembles
// the weekly grid views. Writes always run the conflict pre-check first and
// translate commit-time uniqueness violations into the same conflict shape.
type SlotService struct {
	slots      slotRepository
	conflicts  slotConflictChecker
	weekConfig weekResolver
	periods    periodReader
	terms      slotTermReader
	classes    slotClassReader
	subjects   slotSubjectReader
	teachers   slotTeacherReader
	classrooms slotClassroomReader
	cache      gridCache
	metrics    conflictObserver
	exporter   *export.PDFExporter
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSlotService wires the allocation service.
func NewSlotService(
	slots slotRepository,
	conflicts slotConflictChecker,
	weekConfig weekResolver,
	periods periodReader,
	terms slotTermReader,
	classes slotClassReader,
	subjects slotSubjectReader,
	teachers slotTeacherReader,
	classrooms slotClassroomReader,
	cache gridCache,
	metrics conflictObserver,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *SlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &SlotService{
		slots:      slots,
		conflicts:  conflicts,
		weekConfig: weekConfig,
		periods:    periods,
		terms:      terms,
		classes:    classes,
		subjects:   subjects,
		teachers:   teachers,
		classrooms: classrooms,
		cache:      cache,
		metrics:    metrics,
		exporter:   export.NewPDFExporter(),
		cacheTTL:   cacheTTL,
		validator:  validate,
		logger:     logger,
	}
}

// List returns slots with pagination metadata.
func (s *SlotService) List(ctx context.Context, schoolID string, filter models.SlotFilter) ([]models.TimetableSlot, *models.Pagination, error) {
	slots, total, err := s.slots.List(ctx, schoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return slots, pagination, nil
}

// Create inserts a new slot after conflict detection. It never silently
// overwrites: any violated axis fails the call with the full conflict list.
func (s *SlotService) Create(ctx context.Context, schoolID string, req dto.SlotCandidate) (*models.TimetableSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	slot := req.Slot(schoolID)
	if err := s.ensureReferences(ctx, schoolID, &slot); err != nil {
		return nil, err
	}

	conflicts, err := s.conflicts.Check(ctx, schoolID, slot, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, s.conflictError(conflicts)
	}

	if err := s.slots.Create(ctx, &slot); err != nil {
		return nil, s.translateWriteError(ctx, schoolID, slot, "", err, "failed to create slot")
	}

	s.invalidateGrids(ctx, schoolID, slot.TermID)
	return &slot, nil
}

// Update modifies an existing slot, excluding it from its own conflict check.
func (s *SlotService) Update(ctx context.Context, schoolID, id string, req dto.SlotCandidate) (*models.TimetableSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	existing, err := s.slots.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	updated := req.Slot(schoolID)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.ensureReferences(ctx, schoolID, &updated); err != nil {
		return nil, err
	}

	conflicts, err := s.conflicts.Check(ctx, schoolID, updated, existing.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, s.conflictError(conflicts)
	}

	if err := s.slots.Update(ctx, &updated); err != nil {
		return nil, s.translateWriteError(ctx, schoolID, updated, existing.ID, err, "failed to update slot")
	}

	s.invalidateGrids(ctx, schoolID, updated.TermID)
	if updated.TermID != existing.TermID {
		s.invalidateGrids(ctx, schoolID, existing.TermID)
	}
	return &updated, nil
}

// Delete removes a slot. Deleting a slot that no longer exists succeeds.
func (s *SlotService) Delete(ctx context.Context, schoolID, id string) error {
	existing, err := s.slots.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	if err := s.slots.Delete(ctx, schoolID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}

	s.invalidateGrids(ctx, schoolID, existing.TermID)
	return nil
}

// WeeklyTimetable assembles the day x period grid for one class or teacher,
// inserting the synthetic lunch row after the configured number of teaching
// periods. Pure read; cached per school/term/view/target/week.
func (s *SlotService) WeeklyTimetable(ctx context.Context, schoolID string, q WeeklyTimetableQuery) (*dto.TimetableGrid, error) {
	if q.TermID == "" || q.TargetID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "termId and target id are required")
	}
	if q.View != dto.ViewByClass && q.View != dto.ViewByTeacher {
		return nil, appErrors.Clone(appErrors.ErrValidation, "view must be class or teacher")
	}

	key := s.gridCacheKey(schoolID, q)
	if s.cache != nil {
		var cached dto.TimetableGrid
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	cfg, err := s.weekConfig.Resolve(ctx, schoolID, q.TermID)
	if err != nil {
		return nil, err
	}

	periods, err := s.periods.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}

	var slots []models.TimetableSlot
	switch q.View {
	case dto.ViewByClass:
		slots, err = s.slots.ListByClass(ctx, schoolID, q.TermID, q.TargetID)
	case dto.ViewByTeacher:
		slots, err = s.slots.ListByTeacher(ctx, schoolID, q.TermID, q.TargetID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}

	grid := buildGrid(cfg, periods, slots, q)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, grid, s.cacheTTL); err != nil {
			s.logger.Warn("grid cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return grid, nil
}

// ExportWeeklyPDF renders the weekly grid as a printable PDF, resolving ids
// to subject codes and teacher/class names.
func (s *SlotService) ExportWeeklyPDF(ctx context.Context, schoolID string, q WeeklyTimetableQuery) ([]byte, error) {
	grid, err := s.WeeklyTimetable(ctx, schoolID, q)
	if err != nil {
		return nil, err
	}

	subjectCodes := map[string]string{}
	if subjects, err := s.subjects.ListBySchool(ctx, schoolID); err == nil {
		for _, subject := range subjects {
			subjectCodes[subject.ID] = subject.Code
		}
	}
	teacherNames := map[string]string{}
	if teachers, err := s.teachers.ListActive(ctx, schoolID); err == nil {
		for _, teacher := range teachers {
			teacherNames[teacher.ID] = teacher.FullName
		}
	}

	doc := export.TimetableDocument{
		Title:   fmt.Sprintf("Weekly timetable %s", q.TargetID),
		Columns: dayNames(grid.Days),
	}
	for _, row := range grid.Rows {
		exportRow := export.TimetableRow{Label: row.PeriodName}
		if row.IsLunch {
			exportRow.Cells = make([]string, len(grid.Days))
			for i := range exportRow.Cells {
				exportRow.Cells[i] = "LUNCH"
			}
			doc.Rows = append(doc.Rows, exportRow)
			continue
		}
		for _, cell := range row.Cells {
			text := ""
			if cell.SlotID != "" {
				code := subjectCodes[cell.SubjectID]
				if code == "" {
					code = cell.SubjectID
				}
				who := teacherNames[cell.TeacherID]
				if who == "" {
					who = cell.TeacherID
				}
				if q.View == dto.ViewByTeacher {
					who = cell.ClassID
				}
				text = fmt.Sprintf("%s / %s", code, who)
			}
			exportRow.Cells = append(exportRow.Cells, text)
		}
		doc.Rows = append(doc.Rows, exportRow)
	}

	return s.exporter.Render(doc)
}

// ensureReferences validates that every referenced entity exists within the
// caller's school. Foreign-tenant ids surface as NotFound so existence is
// never confirmed across tenants.
func (s *SlotService) ensureReferences(ctx context.Context, schoolID string, slot *models.TimetableSlot) error {
	if _, err := s.terms.FindByID(ctx, schoolID, slot.TermID); err != nil {
		return refError(err, "term")
	}
	period, err := s.periods.FindByID(ctx, schoolID, slot.PeriodID)
	if err != nil {
		return refError(err, "period")
	}
	if period.IsBreak {
		return appErrors.Clone(appErrors.ErrValidation, "cannot schedule into a break period")
	}
	if _, err := s.classes.FindByID(ctx, schoolID, slot.ClassID); err != nil {
		return refError(err, "class")
	}
	if _, err := s.subjects.FindByID(ctx, schoolID, slot.SubjectID); err != nil {
		return refError(err, "subject")
	}
	if _, err := s.teachers.FindByID(ctx, schoolID, slot.TeacherID); err != nil {
		return refError(err, "teacher")
	}
	if _, err := s.classrooms.FindByID(ctx, schoolID, slot.ClassroomID); err != nil {
		return refError(err, "classroom")
	}
	return nil
}

func refError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
}

// translateWriteError maps a constraint violation at commit time into the
// same conflict error shape as the pre-check, so callers have one handling
// path for races between check and write.
func (s *SlotService) translateWriteError(ctx context.Context, schoolID string, slot models.TimetableSlot, excludeID string, err error, message string) error {
	if !database.IsUniqueViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
	conflicts, checkErr := s.conflicts.Check(ctx, schoolID, slot, excludeID)
	if checkErr == nil && len(conflicts) > 0 {
		return s.conflictError(conflicts)
	}
	domainErr := &models.SlotConflictError{Message: "slot conflicts with a concurrent change"}
	return appErrors.WithDetails(appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message), domainErr)
}

func (s *SlotService) conflictError(conflicts []models.SlotConflict) error {
	if s.metrics != nil {
		s.metrics.ObserveConflicts(conflicts)
	}
	domainErr := &models.SlotConflictError{
		Message:   fmt.Sprintf("slot conflicts on %d axis(es)", len(conflicts)),
		Conflicts: conflicts,
	}
	return appErrors.WithDetails(appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message), domainErr)
}

func (s *SlotService) gridCacheKey(schoolID string, q WeeklyTimetableQuery) string {
	week := "all"
	if q.WeekOffset != nil {
		week = fmt.Sprintf("%d", *q.WeekOffset)
	}
	return fmt.Sprintf("timetable:%s:%s:%s:%s:%s", schoolID, q.TermID, q.View, q.TargetID, week)
}

func (s *SlotService) invalidateGrids(ctx context.Context, schoolID, termID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("timetable:%s:%s:*", schoolID, termID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("grid cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// buildGrid assembles the weekly rows. The lunch row lands immediately after
// the Nth teaching period, counting only non-break periods, so pre-existing
// break rows do not shift it.
func buildGrid(cfg models.ResolvedWeekConfig, periods []models.Period, slots []models.TimetableSlot, q WeeklyTimetableQuery) *dto.TimetableGrid {
	dayIndex := make(map[int]int, len(cfg.WorkingDays))
	for i, day := range cfg.WorkingDays {
		dayIndex[day] = i
	}

	type cellKey struct {
		Day      int
		PeriodID string
	}
	cells := make(map[cellKey]dto.TimetableCell)
	for _, slot := range slots {
		if _, ok := dayIndex[slot.DayOfWeek]; !ok {
			continue
		}
		if !models.OverlapsWeek(slot.WeekOffset, q.WeekOffset) {
			continue
		}
		cells[cellKey{Day: slot.DayOfWeek, PeriodID: slot.PeriodID}] = dto.TimetableCell{
			SlotID:      slot.ID,
			SubjectID:   slot.SubjectID,
			TeacherID:   slot.TeacherID,
			ClassID:     slot.ClassID,
			ClassroomID: slot.ClassroomID,
			WeekOffset:  slot.WeekOffset,
		}
	}

	lunchAfter := cfg.LunchAfterPeriod
	if q.View == dto.ViewByClass {
		lunchAfter = cfg.LunchPositionFor(q.TargetID)
	}

	grid := &dto.TimetableGrid{
		TermID:     q.TermID,
		View:       q.View,
		TargetID:   q.TargetID,
		WeekOffset: q.WeekOffset,
		Days:       cfg.WorkingDays,
	}

	teachingSeen := 0
	lunchInserted := false
	for _, period := range periods {
		row := dto.TimetableRow{
			PeriodID:   period.ID,
			PeriodName: period.Name,
			StartTime:  period.StartTime,
			EndTime:    period.EndTime,
			IsBreak:    period.IsBreak,
			Cells:      make([]dto.TimetableCell, len(cfg.WorkingDays)),
		}
		if !period.IsBreak {
			for _, day := range cfg.WorkingDays {
				if cell, ok := cells[cellKey{Day: day, PeriodID: period.ID}]; ok {
					row.Cells[dayIndex[day]] = cell
				}
			}
		}
		grid.Rows = append(grid.Rows, row)

		if !period.IsBreak {
			teachingSeen++
			if !lunchInserted && lunchAfter > 0 && teachingSeen == lunchAfter {
				grid.Rows = append(grid.Rows, dto.TimetableRow{
					PeriodName: "Lunch",
					IsLunch:    true,
					Cells:      make([]dto.TimetableCell, len(cfg.WorkingDays)),
				})
				lunchInserted = true
			}
		}
	}

	return grid
}

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func dayNames(days []int) []string {
	names := make([]string, 0, len(days))
	for _, day := range days {
		if day >= 0 && day < len(weekdayNames) {
			names = append(names, weekdayNames[day])
		}
	}
	return names
}
