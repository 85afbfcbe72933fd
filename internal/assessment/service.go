package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pacewise/pacewise-progress/internal/grading"
)

const (
	asyncMaxRetries  = 3
	asyncBackoffBase = 2000 * time.Millisecond
)

// Service orchestrates the attempt lifecycle: attempt creation, answer
// persistence, solution retrieval, grading and the sticky pass/fail update.
type Service struct {
	store  Store
	oracle SolutionFetcher
	log    *logrus.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

func NewService(store Store, oracle SolutionFetcher, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		store:  store,
		oracle: oracle,
		log:    log,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// StartAttempt opens a new IN_PROGRESS attempt row.
func (s *Service) StartAttempt(ctx context.Context, studentID, courseInstanceID, assessmentID string) (Attempt, error) {
	a := Attempt{
		ID:               uuid.NewString(),
		StudentID:        studentID,
		CourseInstanceID: courseInstanceID,
		AssessmentID:     assessmentID,
		Status:           AttemptInProgress,
		AttemptTime:      s.now().Unix(),
	}
	if err := s.store.CreateAttempt(ctx, a); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// Submit grades a submission synchronously. When attemptID is empty a fresh
// attempt row is created; otherwise the attempt must belong to the student
// and must not already be graded.
func (s *Service) Submit(ctx context.Context, studentID, courseInstanceID, assessmentID, attemptID string, answers []grading.Answer) (SubmitResult, error) {
	var a Attempt
	var err error
	if attemptID == "" {
		a, err = s.StartAttempt(ctx, studentID, courseInstanceID, assessmentID)
	} else {
		a, err = s.store.GetAttempt(ctx, attemptID)
	}
	if err != nil {
		return SubmitResult{}, err
	}
	if a.StudentID != studentID || a.AssessmentID != assessmentID {
		return SubmitResult{}, ErrAttemptNotFound
	}
	if a.Status == AttemptSuccess || a.Status == AttemptFailed {
		return SubmitResult{}, ErrAttemptClosed
	}

	if err := s.store.EnsureProgress(ctx, studentID, assessmentID, courseInstanceID); err != nil {
		return SubmitResult{}, err
	}
	if err := s.store.SaveAnswers(ctx, a.ID, answers, s.now().Unix()); err != nil {
		return SubmitResult{}, err
	}

	rep, err := s.gradeAttempt(ctx, a, answers)
	if err != nil {
		return SubmitResult{}, err
	}

	st, err := s.store.SetProgressSticky(ctx, studentID, assessmentID, courseInstanceID, verdict(rep))
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{
		AttemptID:        a.ID,
		GradingStatus:    rep.Status,
		AssessmentStatus: st,
		CorrectAnswers:   rep.CorrectAnswers,
		TotalQuestions:   rep.TotalQuestions,
	}, nil
}

// QueueGradingJob is the decoupled grading path: it grades the attempt in
// the background with up to three retries and exponential backoff. Failures
// are logged and dropped; nothing is surfaced to any caller.
func (s *Service) QueueGradingJob(studentID, courseInstanceID, assessmentID, attemptID string, answers []grading.Answer) {
	go s.runGradingJob(studentID, courseInstanceID, assessmentID, attemptID, answers)
}

func (s *Service) runGradingJob(studentID, courseInstanceID, assessmentID, attemptID string, answers []grading.Answer) {
	log := s.log.WithFields(logrus.Fields{
		"attempt":    attemptID,
		"assessment": assessmentID,
		"student":    studentID,
	})
	backoff := asyncBackoffBase
	for i := 1; i <= asyncMaxRetries; i++ {
		err := s.gradeOnce(context.Background(), studentID, courseInstanceID, assessmentID, attemptID, answers)
		if err == nil {
			return
		}
		log.WithError(err).Warnf("async grading attempt %d/%d failed", i, asyncMaxRetries)
		if i < asyncMaxRetries {
			s.sleep(backoff)
			backoff *= 2
		}
	}
	log.Error("async grading gave up; result dropped")
}

func (s *Service) gradeOnce(ctx context.Context, studentID, courseInstanceID, assessmentID, attemptID string, answers []grading.Answer) error {
	a, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return err
	}
	if a.Status == AttemptSuccess || a.Status == AttemptFailed {
		return nil
	}
	if err := s.store.EnsureProgress(ctx, studentID, assessmentID, courseInstanceID); err != nil {
		return err
	}
	if err := s.store.SaveAnswers(ctx, attemptID, answers, s.now().Unix()); err != nil {
		return err
	}
	rep, err := s.gradeAttempt(ctx, a, answers)
	if err != nil {
		return err
	}
	_, err = s.store.SetProgressSticky(ctx, studentID, assessmentID, courseInstanceID, verdict(rep))
	return err
}

func (s *Service) gradeAttempt(ctx context.Context, a Attempt, answers []grading.Answer) (grading.Report, error) {
	ids := make([]string, 0, len(answers))
	for _, ans := range answers {
		ids = append(ids, ans.QuestionID)
	}
	sols, err := s.oracle.Solutions(ctx, a.CourseInstanceID, a.AssessmentID, ids)
	if err != nil {
		return grading.Report{}, fmt.Errorf("fetch solutions: %w", err)
	}
	rep := grading.Grade(answers, sols)

	st := AttemptFailed
	if rep.Status == grading.StatusSuccess {
		st = AttemptSuccess
	}
	if err := s.store.FinishAttempt(ctx, a.ID, st); err != nil {
		return grading.Report{}, err
	}
	return rep, nil
}

func verdict(rep grading.Report) ProgressStatus {
	if rep.Status == grading.StatusSuccess {
		return ProgressPassed
	}
	return ProgressFailed
}
