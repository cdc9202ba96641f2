package invest

// RuleBasedEvaluator runs the six criterion evaluators over one story. It is
// total: whatever the input, the assessment carries exactly six entries and
// the call never fails.
type RuleBasedEvaluator struct {
	criteria *Criteria
}

// NewRuleBasedEvaluator builds an evaluator over the given criteria set, or
// the documented defaults when nil.
func NewRuleBasedEvaluator(criteria *Criteria) *RuleBasedEvaluator {
	if criteria == nil {
		criteria = DefaultCriteria()
	}
	return &RuleBasedEvaluator{criteria: criteria}
}

// Evaluate judges all six criteria in I,N,V,E,S,T order. Evaluators are pure
// so the order only matters for the flattened suggestion list.
func (e *RuleBasedEvaluator) Evaluate(story string) Assessment {
	table := e.criteria.Table()

	assessment := Assessment{
		Scores: make(map[string]CriterionScore, len(CriterionOrder)),
	}
	for _, criterion := range CriterionOrder {
		evaluate, ok := table[criterion]
		if !ok {
			// Mantiene el invariante de seis entradas aunque falte el evaluador.
			assessment.Scores[criterion] = CriterionScore{
				Passed:      false,
				Confidence:  0.0,
				Suggestions: []string{"Criterio no evaluable, revisar manualmente"},
			}
			assessment.Suggestions = append(assessment.Suggestions, "Criterio no evaluable, revisar manualmente")
			continue
		}

		judgment := evaluate(story)
		assessment.Scores[criterion] = CriterionScore{
			Passed:      judgment.Passed,
			Confidence:  judgment.Confidence,
			Suggestions: judgment.Suggestions,
		}
		assessment.Suggestions = append(assessment.Suggestions, judgment.Suggestions...)
	}
	return assessment
}
