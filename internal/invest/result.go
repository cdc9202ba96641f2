package invest

import "encoding/json"

// Nombres de criterios INVEST, en el mismo orden que el dashboard los muestra.
const (
	CriterionIndependent = "Independiente"
	CriterionNegotiable  = "Negociable"
	CriterionValuable    = "Valiosa"
	CriterionEstimable   = "Estimable"
	CriterionSmall       = "Small"
	CriterionTestable    = "Testeable"
)

// CriterionOrder is the fixed I,N,V,E,S,T ordering used for flattened
// suggestions, summaries and exports.
var CriterionOrder = []string{
	CriterionIndependent,
	CriterionNegotiable,
	CriterionValuable,
	CriterionEstimable,
	CriterionSmall,
	CriterionTestable,
}

// Mode records which evaluation path produced a result.
type Mode string

const (
	ModeRules            Mode = "rules"
	ModeSemantic         Mode = "semantic"
	ModeSemanticFallback Mode = "semantic_fallback_to_rules"
)

// CriterionScore is the judgment for a single INVEST criterion.
type CriterionScore struct {
	Passed      bool     `json:"passed"`
	Confidence  float64  `json:"confidence"`
	Suggestions []string `json:"suggestions"`
}

// Assessment is the composite produced by an evaluator, before the agent
// fills in id, mode and estimated hours. Scores always holds exactly six
// entries, Suggestions is flattened in CriterionOrder.
type Assessment struct {
	Scores      map[string]CriterionScore
	Suggestions []string
}

// Result is the evaluation of one user story.
type Result struct {
	ID              string                    `json:"id"`
	StoryText       string                    `json:"story_text"`
	ModeUsed        Mode                      `json:"mode_used"`
	CriterionScores map[string]CriterionScore `json:"criterion_scores"`
	Suggestions     []string                  `json:"suggestions"`
	EstimatedHours  *float64                  `json:"estimated_hours,omitempty"`
	Error           string                    `json:"error,omitempty"`
}

// PassedCount derives the number of criteria met. It is never stored so it
// cannot drift from the scores.
func (r Result) PassedCount() int {
	count := 0
	for _, score := range r.CriterionScores {
		if score.Passed {
			count++
		}
	}
	return count
}

// InvestComplete reports whether the story meets all six criteria.
func (r Result) InvestComplete() bool {
	return r.PassedCount() == len(CriterionOrder)
}

func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		alias
		OverallPassedCount int `json:"overall_passed_count"`
	}{alias(r), r.PassedCount()})
}

// Summary holds derived statistics over a ledger of results.
type Summary struct {
	Total                 int                `json:"total"`
	InvestComplete        int                `json:"invest_complete"`
	PercentInvestComplete float64            `json:"percent_invest_complete"`
	AvgCriteriaPassed     float64            `json:"avg_criteria_passed"`
	ModeCounts            map[Mode]int       `json:"mode_counts"`
	CriterionPassRates    map[string]float64 `json:"criterion_pass_rates"`
}

// Story is one batch input: the text plus an optional caller-side id.
type Story struct {
	ID   string `json:"id"`
	Text string `json:"historia"`
}
