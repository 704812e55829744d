package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/models"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
)

type absenceRepository interface {
	Create(ctx context.Context, absence *models.TeacherAbsence) error
	FindByID(ctx context.Context, schoolID, id string) (*models.TeacherAbsence, error)
	List(ctx context.Context, schoolID string, filter models.AbsenceFilter) ([]models.TeacherAbsence, int, error)
	UpdateStatus(ctx context.Context, schoolID, id string, status models.AbsenceStatus) error
}

type substitutionRepository interface {
	Create(ctx context.Context, record *models.SubstitutionRecord) error
	CreateBatch(ctx context.Context, records []models.SubstitutionRecord) error
	FindByID(ctx context.Context, schoolID, id string) (*models.SubstitutionRecord, error)
	List(ctx context.Context, schoolID string, filter models.SubstitutionFilter) ([]models.SubstitutionRecord, int, error)
	UpdateStatus(ctx context.Context, schoolID, id string, status models.SubstitutionStatus, declineReason *string, confirmedAt *time.Time) error
	CancelPendingByAbsence(ctx context.Context, schoolID, absenceID string) (int, error)
	CompleteElapsed(ctx context.Context, schoolID string, asOf time.Time) (int, error)
	CompleteElapsedAll(ctx context.Context, asOf time.Time) (int, error)
	Progress(ctx context.Context, schoolID, absenceID string) (*models.AbsenceProgress, error)
}

type substitutionSlotReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.TimetableSlot, error)
	ListByTeacher(ctx context.Context, schoolID, termID, teacherID string) ([]models.TimetableSlot, error)
}

type substitutionTeacherReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Teacher, error)
	IsQualified(ctx context.Context, teacherID, subjectID string) (bool, error)
}

type substitutePicker interface {
	PickSubstitute(ctx context.Context, schoolID string, slot models.TimetableSlot, excludeTeacherID string) (string, error)
}

type substitutionObserver interface {
	ObserveSubstitution(status models.SubstitutionStatus)
}

// SubstitutionService runs the teacher-absence workflow: report, approve
// into per-occurrence substitution records, let substitutes confirm or
// decline, reassign declined occurrences, and sweep confirmed past
// occurrences into COMPLETED. Declined records are never mutated back to
// pending; a reassignment appends a fresh record.
type SubstitutionService struct {
	absences  absenceRepository
	records   substitutionRepository
	slots     substitutionSlotReader
	teachers  substitutionTeacherReader
	terms     slotTermReader
	week      weekResolver
	picker    substitutePicker
	metrics   substitutionObserver
	validator *validator.Validate
	logger    *zap.Logger
}

func NewSubstitutionService(
	absences absenceRepository,
	records substitutionRepository,
	slots substitutionSlotReader,
	teachers substitutionTeacherReader,
	terms slotTermReader,
	week weekResolver,
	picker substitutePicker,
	metrics substitutionObserver,
	validate *validator.Validate,
	logger *zap.Logger,
) *SubstitutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubstitutionService{
		absences:  absences,
		records:   records,
		slots:     slots,
		teachers:  teachers,
		terms:     terms,
		week:      week,
		picker:    picker,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// ReportAbsence records a new absence in REPORTED state.
func (s *SubstitutionService) ReportAbsence(ctx context.Context, schoolID string, req dto.ReportAbsenceRequest) (*models.TeacherAbsence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}
	if _, err := s.teachers.FindByID(ctx, schoolID, req.TeacherID); err != nil {
		return nil, refError(err, "teacher")
	}

	absence := &models.TeacherAbsence{
		SchoolID:    schoolID,
		TeacherID:   req.TeacherID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AbsenceType: models.AbsenceType(req.AbsenceType),
		Reason:      req.Reason,
		Status:      models.AbsenceReported,
		IsAllDay:    req.IsAllDay,
	}
	if err := s.absences.Create(ctx, absence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create absence")
	}
	return absence, nil
}

// GetAbsence loads one absence.
func (s *SubstitutionService) GetAbsence(ctx context.Context, schoolID, id string) (*models.TeacherAbsence, error) {
	absence, err := s.absences.FindByID(ctx, schoolID, id)
	if err != nil {
		return nil, refError(err, "absence")
	}
	return absence, nil
}

// ListAbsences returns absences with pagination metadata.
func (s *SubstitutionService) ListAbsences(ctx context.Context, schoolID string, filter models.AbsenceFilter) ([]models.TeacherAbsence, *models.Pagination, error) {
	absences, total, err := s.absences.List(ctx, schoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return absences, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ApproveAbsence transitions a REPORTED absence to APPROVED and seeds one
// PENDING substitution record per affected slot occurrence inside the term.
// Occurrences without an explicit assignment fall back to the lowest-load
// qualified free teacher; if any occurrence cannot be covered the approval
// fails with the uncovered occurrences listed, writing nothing.
func (s *SubstitutionService) ApproveAbsence(ctx context.Context, schoolID, absenceID string, req dto.ApproveAbsenceRequest) ([]models.SubstitutionRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}

	absence, err := s.absences.FindByID(ctx, schoolID, absenceID)
	if err != nil {
		return nil, refError(err, "absence")
	}
	if absence.Status != models.AbsenceReported {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("absence is %s, only REPORTED absences can be approved", absence.Status))
	}

	term, err := s.terms.FindByID(ctx, schoolID, req.TermID)
	if err != nil {
		return nil, refError(err, "term")
	}

	occurrences, err := s.affectedOccurrences(ctx, schoolID, absence, term)
	if err != nil {
		return nil, err
	}

	explicit := make(map[string]string, len(req.Assignments))
	for _, assignment := range req.Assignments {
		explicit[assignment.SlotID] = assignment.SubstituteTeacherID
	}

	records := make([]models.SubstitutionRecord, 0, len(occurrences))
	var uncovered []dto.UnfilledSlot
	for _, occ := range occurrences {
		substituteID, ok := explicit[occ.slot.ID]
		if ok {
			if err := s.validateSubstitute(ctx, schoolID, substituteID, occ.slot); err != nil {
				return nil, err
			}
		} else {
			substituteID, err = s.picker.PickSubstitute(ctx, schoolID, occ.slot, absence.TeacherID)
			if err != nil {
				return nil, err
			}
		}
		if substituteID == "" {
			uncovered = append(uncovered, dto.UnfilledSlot{
				ClassID:   occ.slot.ClassID,
				SubjectID: occ.slot.SubjectID,
				DayOfWeek: occ.slot.DayOfWeek,
				PeriodID:  occ.slot.PeriodID,
				Reason:    "no qualified substitute available on " + occ.date.Format("2006-01-02"),
			})
			continue
		}
		records = append(records, models.SubstitutionRecord{
			SchoolID:            schoolID,
			AbsenceID:           absence.ID,
			SlotID:              occ.slot.ID,
			SlotDate:            occ.date,
			OriginalTeacherID:   absence.TeacherID,
			SubstituteTeacherID: substituteID,
			Status:              models.SubstitutionPending,
		})
	}

	if len(uncovered) > 0 {
		err := appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("%d occurrence(s) cannot be covered", len(uncovered)))
		return nil, appErrors.WithDetails(err, uncovered)
	}

	if len(records) > 0 {
		if err := s.records.CreateBatch(ctx, records); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create substitution records")
		}
	}
	if err := s.absences.UpdateStatus(ctx, schoolID, absence.ID, models.AbsenceApproved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve absence")
	}

	if s.metrics != nil {
		for range records {
			s.metrics.ObserveSubstitution(models.SubstitutionPending)
		}
	}
	s.logger.Info("absence approved",
		zap.String("school_id", schoolID),
		zap.String("absence_id", absence.ID),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// Respond applies a substitute's confirm or decline to a PENDING record.
// actorTeacherID, when non-empty, must match the record's substitute.
func (s *SubstitutionService) Respond(ctx context.Context, schoolID, recordID, actorTeacherID string, req dto.RespondRequest) (*models.SubstitutionRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload")
	}

	record, err := s.records.FindByID(ctx, schoolID, recordID)
	if err != nil {
		return nil, refError(err, "substitution record")
	}
	if actorTeacherID != "" && record.SubstituteTeacherID != actorTeacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "substitution record not found")
	}
	if record.Status != models.SubstitutionPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("record is %s, only PENDING records accept a response", record.Status))
	}

	switch req.Decision {
	case "confirm":
		now := time.Now().UTC()
		if err := s.records.UpdateStatus(ctx, schoolID, record.ID, models.SubstitutionConfirmed, nil, &now); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm substitution")
		}
		record.Status = models.SubstitutionConfirmed
		record.ConfirmedAt = &now
	case "decline":
		if req.DeclineReason == nil || *req.DeclineReason == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "decline_reason is required when declining")
		}
		if err := s.records.UpdateStatus(ctx, schoolID, record.ID, models.SubstitutionDeclined, req.DeclineReason, nil); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decline substitution")
		}
		record.Status = models.SubstitutionDeclined
		record.DeclineReason = req.DeclineReason
	}

	if s.metrics != nil {
		s.metrics.ObserveSubstitution(record.Status)
	}
	return record, nil
}

// Reassign covers a DECLINED occurrence with a new substitute by appending a
// fresh PENDING record. The declined record stays untouched for audit.
func (s *SubstitutionService) Reassign(ctx context.Context, schoolID, recordID string, req dto.ReassignRequest) (*models.SubstitutionRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment payload")
	}

	declined, err := s.records.FindByID(ctx, schoolID, recordID)
	if err != nil {
		return nil, refError(err, "substitution record")
	}
	if declined.Status != models.SubstitutionDeclined {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("record is %s, only DECLINED records can be reassigned", declined.Status))
	}

	slot, err := s.slots.FindByID(ctx, schoolID, declined.SlotID)
	if err != nil {
		return nil, refError(err, "slot")
	}
	if err := s.validateSubstitute(ctx, schoolID, req.SubstituteTeacherID, *slot); err != nil {
		return nil, err
	}
	if req.SubstituteTeacherID == declined.SubstituteTeacherID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot reassign to the teacher who declined")
	}

	replacement := &models.SubstitutionRecord{
		SchoolID:            schoolID,
		AbsenceID:           declined.AbsenceID,
		SlotID:              declined.SlotID,
		SlotDate:            declined.SlotDate,
		OriginalTeacherID:   declined.OriginalTeacherID,
		SubstituteTeacherID: req.SubstituteTeacherID,
		Status:              models.SubstitutionPending,
		Notes:               req.Notes,
	}
	if err := s.records.Create(ctx, replacement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create replacement record")
	}
	if s.metrics != nil {
		s.metrics.ObserveSubstitution(models.SubstitutionPending)
	}
	return replacement, nil
}

// CancelAbsence cancels a REPORTED or APPROVED absence. Only PENDING
// substitution records are cascaded to CANCELLED; confirmed and completed
// occurrences stand.
func (s *SubstitutionService) CancelAbsence(ctx context.Context, schoolID, absenceID string) (int, error) {
	absence, err := s.absences.FindByID(ctx, schoolID, absenceID)
	if err != nil {
		return 0, refError(err, "absence")
	}
	if absence.Status == models.AbsenceCancelled {
		return 0, nil
	}

	cancelled, err := s.records.CancelPendingByAbsence(ctx, schoolID, absence.ID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel pending records")
	}
	if err := s.absences.UpdateStatus(ctx, schoolID, absence.ID, models.AbsenceCancelled); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel absence")
	}
	if s.metrics != nil {
		for i := 0; i < cancelled; i++ {
			s.metrics.ObserveSubstitution(models.SubstitutionCancelled)
		}
	}
	return cancelled, nil
}

// CompleteElapsed promotes confirmed records whose date has passed to
// COMPLETED. Meant to run periodically.
func (s *SubstitutionService) CompleteElapsed(ctx context.Context, schoolID string, asOf time.Time) (int, error) {
	completed, err := s.records.CompleteElapsed(ctx, schoolID, asOf)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete elapsed records")
	}
	if completed > 0 {
		s.logger.Info("substitution sweep", zap.String("school_id", schoolID), zap.Int("completed", completed))
		if s.metrics != nil {
			for i := 0; i < completed; i++ {
				s.metrics.ObserveSubstitution(models.SubstitutionCompleted)
			}
		}
	}
	return completed, nil
}

// RunCompletionSweep loops until the context ends, promoting elapsed
// confirmed records across all schools at the configured interval.
func (s *SubstitutionService) RunCompletionSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			completed, err := s.records.CompleteElapsedAll(ctx, time.Now().UTC())
			if err != nil {
				s.logger.Error("substitution sweep failed", zap.Error(err))
				continue
			}
			if completed > 0 {
				s.logger.Info("substitution sweep", zap.Int("completed", completed))
				if s.metrics != nil {
					for i := 0; i < completed; i++ {
						s.metrics.ObserveSubstitution(models.SubstitutionCompleted)
					}
				}
			}
		}
	}
}

// ListRecords returns substitution records with pagination metadata.
func (s *SubstitutionService) ListRecords(ctx context.Context, schoolID string, filter models.SubstitutionFilter) ([]models.SubstitutionRecord, *models.Pagination, error) {
	records, total, err := s.records.List(ctx, schoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list substitution records")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Progress reports per-status coverage for an absence.
func (s *SubstitutionService) Progress(ctx context.Context, schoolID, absenceID string) (*models.AbsenceProgress, error) {
	if _, err := s.absences.FindByID(ctx, schoolID, absenceID); err != nil {
		return nil, refError(err, "absence")
	}
	progress, err := s.records.Progress(ctx, schoolID, absenceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate progress")
	}
	return progress, nil
}

type occurrence struct {
	slot models.TimetableSlot
	date time.Time
}

// affectedOccurrences expands the absence span into dated slot occurrences:
// every working day in the span crossed with the absent teacher's slots on
// that weekday, honouring biweekly offsets relative to the term start.
func (s *SubstitutionService) affectedOccurrences(ctx context.Context, schoolID string, absence *models.TeacherAbsence, term *models.Term) ([]occurrence, error) {
	cfg, err := s.week.Resolve(ctx, schoolID, term.ID)
	if err != nil {
		return nil, err
	}
	working := make(map[int]bool, len(cfg.WorkingDays))
	for _, day := range cfg.WorkingDays {
		working[day] = true
	}

	slots, err := s.slots.ListByTeacher(ctx, schoolID, term.ID, absence.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher slots")
	}
	byDay := make(map[int][]models.TimetableSlot)
	for _, slot := range slots {
		byDay[slot.DayOfWeek] = append(byDay[slot.DayOfWeek], slot)
	}

	start := dateOnly(absence.StartDate)
	end := dateOnly(absence.EndDate)
	if start.Before(dateOnly(term.StartDate)) {
		start = dateOnly(term.StartDate)
	}
	if end.After(dateOnly(term.EndDate)) {
		end = dateOnly(term.EndDate)
	}

	var occurrences []occurrence
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		weekday := int(date.Weekday())
		if !working[weekday] {
			continue
		}
		parity := weekParity(term.StartDate, date)
		for _, slot := range byDay[weekday] {
			if slot.WeekOffset != nil && *slot.WeekOffset != parity {
				continue
			}
			occurrences = append(occurrences, occurrence{slot: slot, date: date})
		}
	}
	return occurrences, nil
}

// validateSubstitute checks the substitute exists, is not the absent
// teacher's replacement for a subject they cannot teach, and is active.
func (s *SubstitutionService) validateSubstitute(ctx context.Context, schoolID, teacherID string, slot models.TimetableSlot) error {
	if teacherID == slot.TeacherID {
		return appErrors.Clone(appErrors.ErrValidation, "substitute cannot be the slot's own teacher")
	}
	if _, err := s.teachers.FindByID(ctx, schoolID, teacherID); err != nil {
		return refError(err, "substitute teacher")
	}
	qualified, err := s.teachers.IsQualified(ctx, teacherID, slot.SubjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check qualification")
	}
	if !qualified {
		return appErrors.Clone(appErrors.ErrValidation, "substitute is not qualified for the subject")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekParity is 0 for the term's first week and alternates weekly after.
// Weeks start on the term start date's weekday.
func weekParity(termStart, date time.Time) int {
	days := int(dateOnly(date).Sub(dateOnly(termStart)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return (days / 7) % 2
}
