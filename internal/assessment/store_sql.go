package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pacewise/pacewise-progress/internal/grading"
)

// SQLStore implements Store for sqlite and postgres. Answers are kept as one
// JSON document on the attempt row.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessment_attempts (id,student_id,course_instance_id,assessment_id,status,answers_json,attempt_time)
		 VALUES ($1,$2,$3,$4,$5,'[]',$6)`,
		a.ID, a.StudentID, a.CourseInstanceID, a.AssessmentID, a.Status, a.AttemptTime)
	if err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	var a Attempt
	var sub sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id,student_id,course_instance_id,assessment_id,status,attempt_time,submission_time
		 FROM assessment_attempts WHERE id=$1`, id).
		Scan(&a.ID, &a.StudentID, &a.CourseInstanceID, &a.AssessmentID, &a.Status, &a.AttemptTime, &sub)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrAttemptNotFound
	}
	if err != nil {
		return Attempt{}, err
	}
	a.SubmissionTime = sub.Int64
	return a, nil
}

func (s *SQLStore) SaveAnswers(ctx context.Context, attemptID string, answers []grading.Answer, submittedAt int64) error {
	buf, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessment_attempts SET answers_json=$1, status=$2, submission_time=$3 WHERE id=$4`,
		string(buf), AttemptSubmitted, submittedAt, attemptID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (s *SQLStore) FinishAttempt(ctx context.Context, attemptID string, status AttemptStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessment_attempts SET status=$1 WHERE id=$2`, status, attemptID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (s *SQLStore) EnsureProgress(ctx context.Context, studentID, assessmentID, courseInstanceID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO student_assessment_progress (student_id,assessment_id,course_instance_id,status)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (student_id,assessment_id,course_instance_id) DO NOTHING`,
		studentID, assessmentID, courseInstanceID, ProgressPending)
	return err
}

func (s *SQLStore) GetProgress(ctx context.Context, studentID, assessmentID, courseInstanceID string) (ProgressStatus, error) {
	var st ProgressStatus
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM student_assessment_progress
		 WHERE student_id=$1 AND assessment_id=$2 AND course_instance_id=$3`,
		studentID, assessmentID, courseInstanceID).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrAttemptNotFound
	}
	return st, err
}

func (s *SQLStore) SetProgressSticky(ctx context.Context, studentID, assessmentID, courseInstanceID string, st ProgressStatus) (ProgressStatus, error) {
	// The guard in the WHERE clause makes PASSED terminal.
	_, err := s.db.ExecContext(ctx,
		`UPDATE student_assessment_progress SET status=$1
		 WHERE student_id=$2 AND assessment_id=$3 AND course_instance_id=$4 AND status<>$5`,
		st, studentID, assessmentID, courseInstanceID, ProgressPassed)
	if err != nil {
		return "", err
	}
	return s.GetProgress(ctx, studentID, assessmentID, courseInstanceID)
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAttemptNotFound
	}
	return nil
}
