package service

import (
	"strconv"

	"github.com/lshigami/Hireflow/internal/model"
)

// ScoringService computes obtained marks from a submission's answers or case
// results and the assessment's grading configuration. Pure: no I/O, identical
// input yields identical output.
type ScoringService interface {
	ObtainableScore(assessment *model.Assessment) float64
	RequiresManualReview(assessment *model.Assessment) bool
	// ScoreMcq grades selected answers against the question set. Manually
	// graded entries already present in existing are preserved and counted.
	ScoreMcq(assessment *model.Assessment, answers []model.McqAnswer, existing []model.ItemGrade) ([]model.ItemGrade, float64)
	// ScoreCode grades per-case verdicts in either grading mode, preserving
	// manual entries as ScoreMcq does.
	ScoreCode(assessment *model.Assessment, results []model.CaseResult, existing []model.ItemGrade) ([]model.ItemGrade, float64)
	// OverrideTotal applies a reviewer override as a delta so other manual
	// adjustments are never discarded.
	OverrideTotal(currentTotal, oldItemMarks, newItemMarks float64) float64
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

func (s *scoringService) ObtainableScore(assessment *model.Assessment) float64 {
	total := 0.0
	switch assessment.GradingMode {
	case model.GradingModeQuestion:
		for _, q := range assessment.Questions {
			total += q.Grade
		}
	case model.GradingModeTestcase:
		for _, p := range assessment.Problems {
			for _, tc := range p.TestCases {
				total += caseWeight(assessment, tc.Difficulty)
			}
		}
	case model.GradingModeProblem:
		for _, p := range assessment.Problems {
			total += p.Points
		}
	}
	return total
}

func (s *scoringService) RequiresManualReview(assessment *model.Assessment) bool {
	for _, q := range assessment.Questions {
		if !q.Kind.AutoGradable() {
			return true
		}
	}
	return false
}

func (s *scoringService) ScoreMcq(assessment *model.Assessment, answers []model.McqAnswer, existing []model.ItemGrade) ([]model.ItemGrade, float64) {
	questionMap := make(map[uint]model.McqQuestion, len(assessment.Questions))
	for _, q := range assessment.Questions {
		questionMap[q.ID] = q
	}
	manual := manualGrades(existing)

	var grades []model.ItemGrade
	total := 0.0
	for _, answer := range answers {
		question, exists := questionMap[answer.QuestionID]
		if !exists {
			// Question removed from the assessment after submission: skip.
			continue
		}
		if !question.Kind.AutoGradable() {
			// Contributes 0 until a reviewer assigns marks.
			if _, graded := manual[gradeKey{answer.QuestionID, model.ItemKindQuestion}]; !graded {
				grades = append(grades, model.ItemGrade{
					ItemID:   answer.QuestionID,
					ItemKind: model.ItemKindQuestion,
					Marks:    0,
				})
			}
			continue
		}
		marks := 0.0
		if selectionMatches(answer.Selected, question.Options) {
			marks = question.Grade
		}
		grades = append(grades, model.ItemGrade{
			ItemID:   answer.QuestionID,
			ItemKind: model.ItemKindQuestion,
			Marks:    marks,
		})
		total += marks
	}

	grades, total = appendManual(grades, total, manual)
	return grades, total
}

func (s *scoringService) ScoreCode(assessment *model.Assessment, results []model.CaseResult, existing []model.ItemGrade) ([]model.ItemGrade, float64) {
	manual := manualGrades(existing)
	byProblem := make(map[uint][]model.CaseResult)
	for _, res := range results {
		byProblem[res.ProblemID] = append(byProblem[res.ProblemID], res)
	}

	var grades []model.ItemGrade
	total := 0.0
	for _, problem := range assessment.Problems {
		caseMap := make(map[uint]model.TestCase, len(problem.TestCases))
		for _, tc := range problem.TestCases {
			caseMap[tc.ID] = tc
		}

		marks := 0.0
		switch assessment.GradingMode {
		case model.GradingModeTestcase:
			for _, res := range byProblem[problem.ID] {
				tc, exists := caseMap[res.TestCaseID]
				if !exists || !res.Passed {
					continue
				}
				marks += caseWeight(assessment, tc.Difficulty)
			}
		case model.GradingModeProblem:
			passed := 0
			for _, res := range byProblem[problem.ID] {
				if _, exists := caseMap[res.TestCaseID]; exists && res.Passed {
					passed++
				}
			}
			required := problem.MinPassedCases
			if required <= 0 {
				required = len(problem.TestCases)
			}
			if len(problem.TestCases) > 0 && passed >= required {
				marks = problem.Points
			}
		}

		grades = append(grades, model.ItemGrade{
			ItemID:   problem.ID,
			ItemKind: model.ItemKindProblem,
			Marks:    marks,
		})
		total += marks
	}

	grades, total = appendManual(grades, total, manual)
	return grades, total
}

func (s *scoringService) OverrideTotal(currentTotal, oldItemMarks, newItemMarks float64) float64 {
	return currentTotal - oldItemMarks + newItemMarks
}

type gradeKey struct {
	itemID uint
	kind   model.ItemKind
}

func manualGrades(existing []model.ItemGrade) map[gradeKey]model.ItemGrade {
	manual := make(map[gradeKey]model.ItemGrade)
	for _, g := range existing {
		if g.ManuallyGraded {
			manual[gradeKey{g.ItemID, g.ItemKind}] = g
		}
	}
	return manual
}

func appendManual(grades []model.ItemGrade, total float64, manual map[gradeKey]model.ItemGrade) ([]model.ItemGrade, float64) {
	for i := range grades {
		key := gradeKey{grades[i].ItemID, grades[i].ItemKind}
		if g, graded := manual[key]; graded {
			total += g.Marks - grades[i].Marks
			grades[i] = g
			delete(manual, key)
		}
	}
	for _, g := range manual {
		grades = append(grades, g)
		total += g.Marks
	}
	return grades, total
}

func caseWeight(assessment *model.Assessment, difficulty model.Difficulty) float64 {
	switch difficulty {
	case model.DifficultyHard:
		return assessment.HardWeight
	case model.DifficultyMedium:
		return assessment.MediumWeight
	default:
		return assessment.EasyWeight
	}
}

// selectionMatches checks set equality between the selected option ids and
// the question's correct option set.
func selectionMatches(selected []string, options []model.McqOption) bool {
	correct := make(map[uint]bool)
	for _, opt := range options {
		if opt.IsCorrect {
			correct[opt.ID] = true
		}
	}
	if len(correct) == 0 {
		// A question with no correct option marked can never be matched;
		// without this an empty selection would equal the empty correct set.
		return false
	}
	if len(selected) != len(correct) {
		return false
	}
	seen := make(map[uint]bool, len(selected))
	for _, raw := range selected {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return false
		}
		optID := uint(id)
		if !correct[optID] || seen[optID] {
			return false
		}
		seen[optID] = true
	}
	return len(seen) == len(correct)
}
