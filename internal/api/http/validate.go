package http

import (
	"fmt"

	"github.com/pacewise/pacewise-progress/internal/grading"
)

// validateAnswers rejects malformed answers at the boundary so the grading
// engine only ever sees well-formed tagged values.
func validateAnswers(answers []grading.Answer) error {
	if len(answers) == 0 {
		return fmt.Errorf("answers required")
	}
	for i, a := range answers {
		if a.QuestionID == "" {
			return fmt.Errorf("answers[%d]: question_id required", i)
		}
		switch a.Type {
		case grading.TypeNAT, grading.TypeDescriptive:
			// zero values are legitimate submissions
		case grading.TypeMCQ:
			if a.ChoiceID == "" {
				return fmt.Errorf("answers[%d]: choice_id required for MCQ", i)
			}
		case grading.TypeMSQ:
			if len(a.ChoiceIDs) == 0 {
				return fmt.Errorf("answers[%d]: choice_ids required for MSQ", i)
			}
		default:
			return fmt.Errorf("answers[%d]: unknown type %q", i, a.Type)
		}
	}
	return nil
}
