package http

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pacewise/pacewise-progress/internal/assessment"
	"github.com/pacewise/pacewise-progress/internal/grading"
	"github.com/pacewise/pacewise-progress/internal/oracle"
	"github.com/pacewise/pacewise-progress/internal/progress"
)

func TestValidateAnswers(t *testing.T) {
	ok := []grading.Answer{
		{QuestionID: "q1", Type: grading.TypeNAT, Value: 3.14},
		{QuestionID: "q2", Type: grading.TypeDescriptive, Text: ""},
		{QuestionID: "q3", Type: grading.TypeMCQ, ChoiceID: "C1"},
		{QuestionID: "q4", Type: grading.TypeMSQ, ChoiceIDs: []string{"C1", "C2"}},
	}
	assert.NoError(t, validateAnswers(ok))

	assert.Error(t, validateAnswers(nil))
	assert.Error(t, validateAnswers([]grading.Answer{{Type: grading.TypeNAT}}))
	assert.Error(t, validateAnswers([]grading.Answer{{QuestionID: "q1", Type: "ESSAY"}}))
	assert.Error(t, validateAnswers([]grading.Answer{{QuestionID: "q1", Type: grading.TypeMCQ}}))
	assert.Error(t, validateAnswers([]grading.Answer{{QuestionID: "q1", Type: grading.TypeMSQ}}))
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&progress.SequenceViolationError{EntityID: "I2", PredecessorID: "I1"}, 409},
		{progress.ErrProgressNotFound, 404},
		{assessment.ErrAttemptNotFound, 404},
		{progress.ErrEmptyTree, 400},
		{assessment.ErrAttemptClosed, 400},
		{fmt.Errorf("fetch solutions: %w", oracle.ErrUpstream), 502},
		{fmt.Errorf("tx failed"), 500},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}
