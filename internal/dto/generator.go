package dto

// SubjectQuota pairs a subject with its weekly-hour quota for one class.
type SubjectQuota struct {
	SubjectID   string `json:"subject_id" validate:"required"`
	WeeklyHours int    `json:"weekly_hours" validate:"min=1"`
}

// GenerateTermRequest drives one bulk-generation pass over a term.
type GenerateTermRequest struct {
	TermID string `json:"term_id" validate:"required"`
	// ClassIDs fixes the traversal order; generation is deterministic for a
	// given input order.
	ClassIDs []string       `json:"class_ids" validate:"required,min=1"`
	Quotas   []SubjectQuota `json:"quotas" validate:"required,min=1,dive"`
}

// UnfilledSlot reports one slot the greedy pass could not fill and why.
type UnfilledSlot struct {
	ClassID   string `json:"class_id"`
	SubjectID string `json:"subject_id"`
	DayOfWeek int    `json:"day_of_week"`
	PeriodID  string `json:"period_id"`
	Reason    string `json:"reason"`
}

// GenerateTermStats summarises one generation run.
type GenerateTermStats struct {
	SlotsAssigned  int `json:"slots_assigned"`
	SlotsUnfilled  int `json:"slots_unfilled"`
	ClassesCovered int `json:"classes_covered"`
}

// GenerateTermResponse is the structured partial-success result of a run.
// Unfilled slots are reported, never silently dropped, and are not errors.
type GenerateTermResponse struct {
	Assigned []string          `json:"assigned_slot_ids"`
	Unfilled []UnfilledSlot    `json:"unfilled"`
	Stats    GenerateTermStats `json:"stats"`
}
