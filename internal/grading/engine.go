package grading

import (
	"strconv"
	"strings"
)

// QuestionType tags both answers and solutions.
type QuestionType string

const (
	TypeNAT         QuestionType = "NAT"
	TypeDescriptive QuestionType = "DESCRIPTIVE"
	TypeMCQ         QuestionType = "MCQ"
	TypeMSQ         QuestionType = "MSQ"
)

// Status is the aggregate verdict for one graded submission.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Answer is one submitted answer; the field that matters depends on Type.
type Answer struct {
	QuestionID string       `json:"question_id"`
	Type       QuestionType `json:"type"`
	Value      float64      `json:"value,omitempty"`      // NAT
	Text       string       `json:"text,omitempty"`       // DESCRIPTIVE
	ChoiceID   string       `json:"choice_id,omitempty"`  // MCQ
	ChoiceIDs  []string     `json:"choice_ids,omitempty"` // MSQ
}

// Solution is the correct answer for one question, fetched from the
// solution oracle. Tagged the same way as Answer.
type Solution struct {
	QuestionID string       `json:"question_id"`
	Type       QuestionType `json:"type"`

	Value            float64 `json:"value,omitempty"`
	ToleranceMin     float64 `json:"tolerance_min,omitempty"`
	ToleranceMax     float64 `json:"tolerance_max,omitempty"`
	DecimalPrecision int     `json:"decimal_precision,omitempty"`

	MinWordLimit int `json:"min_word_limit,omitempty"`
	MaxWordLimit int `json:"max_word_limit,omitempty"`

	CorrectChoiceID  string   `json:"correct_choice_id,omitempty"`
	CorrectChoiceIDs []string `json:"correct_choice_ids,omitempty"`
}

// Report is the outcome of grading a full submission. Status is SUCCESS only
// when every question is correct; there is no partial credit.
type Report struct {
	CorrectAnswers int             `json:"correct_answers"`
	TotalQuestions int             `json:"total_questions"`
	Status         Status          `json:"status"`
	Results        map[string]bool `json:"results"`
}

// Strategy decides correctness for a single question type.
type Strategy interface {
	Correct(ans Answer, sol Solution) bool
}

var strategies = map[QuestionType]Strategy{
	TypeNAT:         natStrategy{},
	TypeDescriptive: descriptiveStrategy{},
	TypeMCQ:         mcqStrategy{},
	TypeMSQ:         msqStrategy{},
}

// Grade is a pure function over the submitted answers and the oracle's
// solutions. An answer with no matching solution, a type mismatch, or an
// unknown type counts as incorrect.
func Grade(answers []Answer, solutions map[string]Solution) Report {
	rep := Report{
		TotalQuestions: len(answers),
		Results:        make(map[string]bool, len(answers)),
	}
	for _, ans := range answers {
		sol, ok := solutions[ans.QuestionID]
		correct := false
		if ok && sol.Type == ans.Type {
			if s, ok := strategies[ans.Type]; ok {
				correct = s.Correct(ans, sol)
			}
		}
		rep.Results[ans.QuestionID] = correct
		if correct {
			rep.CorrectAnswers++
		}
	}
	rep.Status = StatusFailed
	if rep.CorrectAnswers == rep.TotalQuestions {
		rep.Status = StatusSuccess
	}
	return rep
}

// natStrategy accepts a numeric value that (a) lies inside the tolerance
// window [value-toleranceMin, value+toleranceMax] and (b) is expressible at
// the solution's decimal precision, i.e. formatting it to that many places
// and parsing it back yields the same number. The two checks can disagree
// for in-window values carrying extra decimals; that combination grades
// incorrect pending product clarification.
type natStrategy struct{}

func (natStrategy) Correct(ans Answer, sol Solution) bool {
	lo := sol.Value - sol.ToleranceMin
	hi := sol.Value + sol.ToleranceMax
	if ans.Value < lo || ans.Value > hi {
		return false
	}
	formatted := strconv.FormatFloat(ans.Value, 'f', sol.DecimalPrecision, 64)
	round, err := strconv.ParseFloat(formatted, 64)
	if err != nil {
		return false
	}
	return round == ans.Value
}

// descriptiveStrategy only checks the whitespace-delimited word count
// against the solution's limits; there is no semantic check.
type descriptiveStrategy struct{}

func (descriptiveStrategy) Correct(ans Answer, sol Solution) bool {
	words := len(strings.Fields(ans.Text))
	return words >= sol.MinWordLimit && words <= sol.MaxWordLimit
}

type mcqStrategy struct{}

func (mcqStrategy) Correct(ans Answer, sol Solution) bool {
	return ans.ChoiceID != "" && ans.ChoiceID == sol.CorrectChoiceID
}

// msqStrategy requires symmetric set equality: every submitted choice is
// correct and every correct choice was submitted.
type msqStrategy struct{}

func (msqStrategy) Correct(ans Answer, sol Solution) bool {
	return setEqual(toSet(ans.ChoiceIDs), toSet(sol.CorrectChoiceIDs))
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
