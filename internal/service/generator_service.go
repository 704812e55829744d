package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/models"
	"github.com/databayt/hogwarts-timetable/pkg/config"
	"github.com/databayt/hogwarts-timetable/pkg/database"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
)

type generatorSlotRepository interface {
	ListByTerm(ctx context.Context, schoolID, termID string) ([]models.TimetableSlot, error)
	Create(ctx context.Context, slot *models.TimetableSlot) error
}

type generationObserver interface {
	ObserveGeneration(assigned, unfilled int)
}

// GeneratorService fills a term's timetable with a deterministic greedy
// pass. The same inputs against the same committed state always produce the
// same assignments: classes are traversed in request order, positions in
// working-day then period-display order, and subjects rotate through the
// quota list so hours spread across the week instead of clumping.
type GeneratorService struct {
	slots      generatorSlotRepository
	weekConfig weekResolver
	periods    periodReader
	terms      slotTermReader
	subjects   slotSubjectReader
	teachers   suggestionTeacherReader
	classrooms suggestionClassroomReader
	cache      gridCache
	metrics    generationObserver
	cfg        config.GeneratorConfig
	validator  *validator.Validate
	logger     *zap.Logger
}

func NewGeneratorService(
	slots generatorSlotRepository,
	weekConfig weekResolver,
	periods periodReader,
	terms slotTermReader,
	subjects slotSubjectReader,
	teachers suggestionTeacherReader,
	classrooms suggestionClassroomReader,
	cache gridCache,
	metrics generationObserver,
	cfg config.GeneratorConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{
		slots:      slots,
		weekConfig: weekConfig,
		periods:    periods,
		terms:      terms,
		subjects:   subjects,
		teachers:   teachers,
		classrooms: classrooms,
		cache:      cache,
		metrics:    metrics,
		cfg:        cfg,
		validator:  validate,
		logger:     logger,
	}
}

// positionKey identifies one day x period cell of the week.
type positionKey struct {
	Day      int
	PeriodID string
}

// generationState tracks occupancy and teacher load across one run,
// seeded from committed slots and updated as assignments land.
type generationState struct {
	busyTeachers map[positionKey]map[string]bool
	busyRooms    map[positionKey]map[string]bool
	busyClasses  map[positionKey]map[string]bool
	teacherLoad  map[string]int
	collisions   int
}

func newGenerationState(existing []models.TimetableSlot) *generationState {
	st := &generationState{
		busyTeachers: make(map[positionKey]map[string]bool),
		busyRooms:    make(map[positionKey]map[string]bool),
		busyClasses:  make(map[positionKey]map[string]bool),
		teacherLoad:  make(map[string]int),
	}
	for _, slot := range existing {
		st.occupy(slot)
	}
	return st
}

func (st *generationState) occupy(slot models.TimetableSlot) {
	key := positionKey{Day: slot.DayOfWeek, PeriodID: slot.PeriodID}
	if st.busyTeachers[key] == nil {
		st.busyTeachers[key] = make(map[string]bool)
	}
	if st.busyRooms[key] == nil {
		st.busyRooms[key] = make(map[string]bool)
	}
	if st.busyClasses[key] == nil {
		st.busyClasses[key] = make(map[string]bool)
	}
	st.busyTeachers[key][slot.TeacherID] = true
	st.busyRooms[key][slot.ClassroomID] = true
	st.busyClasses[key][slot.ClassID] = true
	st.teacherLoad[slot.TeacherID]++
}

// GenerateTerm runs one greedy pass. Partial success is the normal outcome:
// positions that cannot be covered are reported as unfilled, never dropped.
func (s *GeneratorService) GenerateTerm(ctx context.Context, schoolID string, req dto.GenerateTermRequest) (*dto.GenerateTermResponse, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable generation is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation request")
	}
	if _, err := s.terms.FindByID(ctx, schoolID, req.TermID); err != nil {
		return nil, refError(err, "term")
	}

	if s.cfg.MaxRunTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.MaxRunTime)
		defer cancel()
	}

	cfg, err := s.weekConfig.Resolve(ctx, schoolID, req.TermID)
	if err != nil {
		return nil, err
	}
	teaching, err := s.teachingPeriods(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	existing, err := s.slots.ListByTerm(ctx, schoolID, req.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing slots")
	}

	state := newGenerationState(existing)
	lookups, err := s.buildLookups(ctx, schoolID, req.Quotas)
	if err != nil {
		return nil, err
	}

	resp := &dto.GenerateTermResponse{Assigned: []string{}, Unfilled: []dto.UnfilledSlot{}}
	covered := make(map[string]bool)

	for _, classID := range req.ClassIDs {
		remaining := make([]int, len(req.Quotas))
		for i, quota := range req.Quotas {
			remaining[i] = quota.WeeklyHours
		}
		rotation := 0
		reported := make(map[string]bool)

		for _, day := range cfg.WorkingDays {
			for _, period := range teaching {
				if err := ctx.Err(); err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation interrupted")
				}
				if sum(remaining) == 0 {
					break
				}
				key := positionKey{Day: day, PeriodID: period.ID}
				if state.busyClasses[key][classID] {
					continue
				}

				placed, nextRotation, failure := s.placeAt(ctx, schoolID, req, classID, key, rotation, remaining, lookups, state, resp)
				rotation = nextRotation
				if placed {
					covered[classID] = true
				} else if failure != nil {
					resp.Unfilled = append(resp.Unfilled, *failure)
					reported[failure.SubjectID] = true
				}
				// Each concurrent take means the committed state has drifted
				// from the run's snapshot; past the budget a re-run against
				// fresh state beats pressing on.
				if s.cfg.SkipRetries > 0 && state.collisions > s.cfg.SkipRetries {
					return nil, appErrors.Clone(appErrors.ErrConflict, "timetable changed concurrently during generation, re-run")
				}
			}
		}

		for i, quota := range req.Quotas {
			if remaining[i] > 0 && !reported[quota.SubjectID] {
				resp.Unfilled = append(resp.Unfilled, dto.UnfilledSlot{
					ClassID:   classID,
					SubjectID: quota.SubjectID,
					DayOfWeek: -1,
					Reason:    "no free position left in the week",
				})
			}
		}
	}

	resp.Stats = dto.GenerateTermStats{
		SlotsAssigned:  len(resp.Assigned),
		SlotsUnfilled:  len(resp.Unfilled),
		ClassesCovered: len(covered),
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(resp.Stats.SlotsAssigned, resp.Stats.SlotsUnfilled)
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "timetable:"+schoolID+":"+req.TermID+":*"); err != nil {
			s.logger.Warn("grid cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("generation pass finished",
		zap.String("school_id", schoolID),
		zap.String("term_id", req.TermID),
		zap.Int("assigned", resp.Stats.SlotsAssigned),
		zap.Int("unfilled", resp.Stats.SlotsUnfilled),
	)
	return resp, nil
}

// placeAt tries each subject in rotation order at one position. It returns
// whether a slot landed, the advanced rotation cursor, and the failure to
// report when nothing could be placed there.
func (s *GeneratorService) placeAt(
	ctx context.Context,
	schoolID string,
	req dto.GenerateTermRequest,
	classID string,
	key positionKey,
	rotation int,
	remaining []int,
	lookups *generationLookups,
	state *generationState,
	resp *dto.GenerateTermResponse,
) (bool, int, *dto.UnfilledSlot) {
	n := len(req.Quotas)
	var failure *dto.UnfilledSlot

	for tried := 0; tried < n; tried++ {
		idx := (rotation + tried) % n
		if remaining[idx] == 0 {
			continue
		}
		quota := req.Quotas[idx]

		teacherID := pickLowestLoadFree(lookups.qualified[quota.SubjectID], state.busyTeachers[key], state.teacherLoad)
		if teacherID == "" {
			if failure == nil {
				failure = &dto.UnfilledSlot{
					ClassID:   classID,
					SubjectID: quota.SubjectID,
					DayOfWeek: key.Day,
					PeriodID:  key.PeriodID,
					Reason:    "no qualified teacher available",
				}
			}
			continue
		}
		roomID := pickFreeRoom(lookups.rooms(quota.SubjectID), state.busyRooms[key])
		if roomID == "" {
			if failure == nil {
				failure = &dto.UnfilledSlot{
					ClassID:   classID,
					SubjectID: quota.SubjectID,
					DayOfWeek: key.Day,
					PeriodID:  key.PeriodID,
					Reason:    "no suitable classroom available",
				}
			}
			continue
		}

		slot := models.TimetableSlot{
			SchoolID:    schoolID,
			TermID:      req.TermID,
			DayOfWeek:   key.Day,
			PeriodID:    key.PeriodID,
			ClassID:     classID,
			SubjectID:   quota.SubjectID,
			TeacherID:   teacherID,
			ClassroomID: roomID,
		}
		if err := s.slots.Create(ctx, &slot); err != nil {
			if database.IsUniqueViolation(err) {
				// Another writer took the position; treat it as occupied
				// and move on without aborting the run.
				state.collisions++
				state.occupy(slot)
				if failure == nil {
					failure = &dto.UnfilledSlot{
						ClassID:   classID,
						SubjectID: quota.SubjectID,
						DayOfWeek: key.Day,
						PeriodID:  key.PeriodID,
						Reason:    "position taken by a concurrent change",
					}
				}
				continue
			}
			s.logger.Error("slot insert failed during generation", zap.Error(err))
			if failure == nil {
				failure = &dto.UnfilledSlot{
					ClassID:   classID,
					SubjectID: quota.SubjectID,
					DayOfWeek: key.Day,
					PeriodID:  key.PeriodID,
					Reason:    "storage error",
				}
			}
			continue
		}

		state.occupy(slot)
		remaining[idx]--
		resp.Assigned = append(resp.Assigned, slot.ID)
		return true, (idx + 1) % n, nil
	}
	return false, rotation, failure
}

type generationLookups struct {
	qualified   map[string][]models.Teacher
	roomsBySubj map[string][]models.Classroom
}

func (l *generationLookups) rooms(subjectID string) []models.Classroom {
	return l.roomsBySubj[subjectID]
}

// buildLookups resolves each quota subject once: its qualified teacher pool
// and its ranked room pool (affinity rooms first, regular fallback after).
func (s *GeneratorService) buildLookups(ctx context.Context, schoolID string, quotas []dto.SubjectQuota) (*generationLookups, error) {
	lookups := &generationLookups{
		qualified:   make(map[string][]models.Teacher),
		roomsBySubj: make(map[string][]models.Classroom),
	}
	roomsByType := make(map[models.RoomType][]models.Classroom)
	loadRooms := func(roomType models.RoomType) ([]models.Classroom, error) {
		if rooms, ok := roomsByType[roomType]; ok {
			return rooms, nil
		}
		rooms, err := s.classrooms.ListByType(ctx, schoolID, roomType)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
		}
		roomsByType[roomType] = rooms
		return rooms, nil
	}

	for _, quota := range quotas {
		if _, ok := lookups.qualified[quota.SubjectID]; ok {
			continue
		}
		subject, err := s.subjects.FindByID(ctx, schoolID, quota.SubjectID)
		if err != nil {
			return nil, refError(err, "subject")
		}
		teachers, err := s.teachers.ListQualified(ctx, schoolID, quota.SubjectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load qualified teachers")
		}
		lookups.qualified[quota.SubjectID] = teachers

		var pool []models.Classroom
		if subject.RequiresRoomType() {
			rooms, err := loadRooms(subject.RoomAffinity)
			if err != nil {
				return nil, err
			}
			pool = append(pool, rooms...)
			if subject.AllowAnyRoom && subject.RoomAffinity != models.RoomTypeRegular {
				regular, err := loadRooms(models.RoomTypeRegular)
				if err != nil {
					return nil, err
				}
				pool = append(pool, regular...)
			}
		} else {
			rooms, err := loadRooms(models.RoomTypeRegular)
			if err != nil {
				return nil, err
			}
			pool = append(pool, rooms...)
		}
		lookups.roomsBySubj[quota.SubjectID] = pool
	}
	return lookups, nil
}

func (s *GeneratorService) teachingPeriods(ctx context.Context, schoolID string) ([]models.Period, error) {
	periods, err := s.periods.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}
	teaching := make([]models.Period, 0, len(periods))
	for _, period := range periods {
		if !period.IsBreak {
			teaching = append(teaching, period)
		}
	}
	return teaching, nil
}

// pickLowestLoadFree returns the free teacher with the fewest assignments,
// id ascending on ties, so reruns pick identically.
func pickLowestLoadFree(pool []models.Teacher, busy map[string]bool, load map[string]int) string {
	candidates := make([]teacherOption, 0, len(pool))
	for _, teacher := range pool {
		if busy[teacher.ID] {
			continue
		}
		candidates = append(candidates, teacherOption{id: teacher.ID, load: load[teacher.ID]})
	}
	sortTeacherOptions(candidates)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0].id
}

// pickFreeRoom returns the first free room in pool order. The pool is
// already ranked: affinity rooms by id, then the regular fallback.
func pickFreeRoom(pool []models.Classroom, busy map[string]bool) string {
	for _, room := range pool {
		if !busy[room.ID] {
			return room.ID
		}
	}
	return ""
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
