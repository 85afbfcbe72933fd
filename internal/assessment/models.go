package assessment

import "github.com/pacewise/pacewise-progress/internal/grading"

// AttemptStatus is the lifecycle of a single submission attempt.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
	AttemptSuccess    AttemptStatus = "SUCCESS"
	AttemptFailed     AttemptStatus = "FAILED"
)

// ProgressStatus is the per-(student, assessment, course) outcome. PASSED is
// sticky: no later write may revert it.
type ProgressStatus string

const (
	ProgressPending ProgressStatus = "PENDING"
	ProgressPassed  ProgressStatus = "PASSED"
	ProgressFailed  ProgressStatus = "FAILED"
)

// Attempt is one row per submission attempt; a student may attempt the same
// assessment any number of times.
type Attempt struct {
	ID               string        `json:"id"`
	StudentID        string        `json:"student_id"`
	CourseInstanceID string        `json:"course_instance_id"`
	AssessmentID     string        `json:"assessment_id"`
	Status           AttemptStatus `json:"status"`
	AttemptTime      int64         `json:"attempt_time"`
	SubmissionTime   int64         `json:"submission_time,omitempty"`
}

// SubmitResult is what a submission returns to the caller: the grading
// outcome of this attempt plus the (possibly unchanged) sticky assessment
// status.
type SubmitResult struct {
	AttemptID        string         `json:"attempt_id"`
	GradingStatus    grading.Status `json:"grading_status"`
	AssessmentStatus ProgressStatus `json:"assessment_status"`
	CorrectAnswers   int            `json:"correct_answers"`
	TotalQuestions   int            `json:"total_questions"`
}
