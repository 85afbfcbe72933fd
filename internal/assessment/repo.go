package assessment

import (
	"context"
	"errors"

	"github.com/pacewise/pacewise-progress/internal/grading"
)

var (
	ErrAttemptNotFound = errors.New("attempt not found")

	// ErrAttemptClosed rejects a submit against an attempt that already
	// reached a terminal grading status.
	ErrAttemptClosed = errors.New("attempt already graded")
)

// Store persists attempts, their raw answers and the sticky per-assessment
// progress rows.
type Store interface {
	CreateAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	// SaveAnswers stores the raw submitted answers against the attempt and
	// marks it SUBMITTED.
	SaveAnswers(ctx context.Context, attemptID string, answers []grading.Answer, submittedAt int64) error
	// FinishAttempt records the grading verdict.
	FinishAttempt(ctx context.Context, attemptID string, status AttemptStatus) error

	// EnsureProgress creates a PENDING row if none exists; it never
	// overwrites an existing one.
	EnsureProgress(ctx context.Context, studentID, assessmentID, courseInstanceID string) error
	GetProgress(ctx context.Context, studentID, assessmentID, courseInstanceID string) (ProgressStatus, error)
	// SetProgressSticky applies the pass/fail outcome under the sticky-pass
	// rule: the write is skipped entirely when the row is already PASSED.
	// It returns the status now in effect.
	SetProgressSticky(ctx context.Context, studentID, assessmentID, courseInstanceID string, st ProgressStatus) (ProgressStatus, error)
}

// SolutionFetcher is the external solution oracle, keyed by question id.
type SolutionFetcher interface {
	Solutions(ctx context.Context, courseInstanceID, assessmentID string, questionIDs []string) (map[string]grading.Solution, error)
}
