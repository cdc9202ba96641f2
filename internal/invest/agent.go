package invest

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"strings"
	"sync"

	"github.com/fadilmartias/invest-analyzer/internal/util"
)

// EstimateFeatures is the contract with the regression collaborator.
type EstimateFeatures struct {
	WordCount      int
	CriteriaPassed int
}

// HoursEstimator supplies a development-hours estimate for an evaluated
// story. Failure leaves the estimate absent, never the evaluation.
type HoursEstimator interface {
	EstimateHours(ctx context.Context, features EstimateFeatures) (float64, error)
}

// AgentConfig configures an evaluation agent. Mode is read once here; the
// caller loads it from wherever it wants (env, flags) so the agent stays
// free of hidden global state.
type AgentConfig struct {
	Mode      Mode
	Criteria  *Criteria
	Semantic  *SemanticEvaluator
	Estimator HoursEstimator
}

// Agent orchestrates story evaluation: primary evaluator per configured
// mode, per-story fallback to rules when the semantic path fails, hour
// estimation, and an append-only ledger of results for summary statistics.
type Agent struct {
	mode      Mode
	rules     *RuleBasedEvaluator
	semantic  *SemanticEvaluator
	estimator HoursEstimator

	mu     sync.Mutex
	ledger []Result
}

// NewAgent builds an agent. Semantic mode requires a semantic evaluator;
// a transient backend outage is not a construction error since fallback is
// decided per story.
func NewAgent(cfg AgentConfig) (*Agent, error) {
	switch cfg.Mode {
	case ModeRules, ModeSemantic:
	case "":
		cfg.Mode = ModeRules
	default:
		return nil, fmt.Errorf("modo de evaluación desconocido: %q", cfg.Mode)
	}
	if cfg.Mode == ModeSemantic && cfg.Semantic == nil {
		return nil, fmt.Errorf("modo semantic requiere un evaluador semántico")
	}

	return &Agent{
		mode:      cfg.Mode,
		rules:     NewRuleBasedEvaluator(cfg.Criteria),
		semantic:  cfg.Semantic,
		estimator: cfg.Estimator,
	}, nil
}

// Mode returns the configured evaluation mode.
func (a *Agent) Mode() Mode {
	return a.mode
}

// EvaluateStory evaluates one story and appends the result to the ledger.
// An empty storyID gets a deterministic generated id. The call never fails:
// the only condition reported through Result.Error is empty input, and even
// then the six criterion entries are present (all failing).
func (a *Agent) EvaluateStory(ctx context.Context, storyText, storyID string) Result {
	if storyID == "" {
		storyID = autoStoryID(storyText)
	}

	result := a.evaluate(ctx, storyText, storyID)

	a.mu.Lock()
	a.ledger = append(a.ledger, result)
	a.mu.Unlock()
	return result
}

func (a *Agent) evaluate(ctx context.Context, storyText, storyID string) Result {
	result := Result{
		ID:        storyID,
		StoryText: storyText,
	}

	if strings.TrimSpace(storyText) == "" {
		// Entrada vacía: mejor esfuerzo con reglas y error explícito.
		assessment := a.rules.Evaluate(storyText)
		result.ModeUsed = ModeRules
		result.CriterionScores = assessment.Scores
		result.Suggestions = assessment.Suggestions
		result.Error = ErrEmptyStory.Error()
		return result
	}

	assessment, mode := a.runStateMachine(ctx, storyText, storyID)
	result.ModeUsed = mode
	result.CriterionScores = assessment.Scores
	result.Suggestions = assessment.Suggestions

	if a.estimator != nil {
		features := EstimateFeatures{
			WordCount:      util.CountWords(storyText),
			CriteriaPassed: result.PassedCount(),
		}
		hours, err := a.estimator.EstimateHours(ctx, features)
		if err != nil {
			log.Printf("Estimación de horas no disponible para %s: %v", storyID, err)
		} else {
			result.EstimatedHours = &hours
		}
	}
	return result
}

// runStateMachine implements Start → TryPrimary → {Success | TryFallback}.
// Rules mode cannot fail; semantic mode falls back to rules on any failure
// and tags the result so the degradation stays observable.
func (a *Agent) runStateMachine(ctx context.Context, storyText, storyID string) (Assessment, Mode) {
	if a.mode == ModeRules {
		return a.rules.Evaluate(storyText), ModeRules
	}

	assessment, err := a.semantic.Evaluate(ctx, storyText)
	if err == nil {
		return assessment, ModeSemantic
	}

	log.Printf("Evaluación semántica falló para %s, usando reglas: %v", storyID, err)
	return a.rules.Evaluate(storyText), ModeSemanticFallback
}

// EvaluateBatch evaluates stories independently and in input order; the
// returned slice and the ledger both preserve that order. Cancelling the
// context stops scheduling further stories and returns the partial results.
func (a *Agent) EvaluateBatch(ctx context.Context, stories []Story) []Result {
	results := make([]Result, 0, len(stories))
	for i, story := range stories {
		select {
		case <-ctx.Done():
			log.Printf("Lote cancelado tras %d de %d historias", i, len(stories))
			return results
		default:
		}

		id := story.ID
		if id == "" {
			id = fmt.Sprintf("BATCH_%03d", i+1)
		}
		results = append(results, a.EvaluateStory(ctx, story.Text, id))
	}
	return results
}

// Ledger returns a copy of the accumulated results.
func (a *Agent) Ledger() []Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	ledger := make([]Result, len(a.ledger))
	copy(ledger, a.ledger)
	return ledger
}

// ClearLedger discards accumulated results.
func (a *Agent) ClearLedger() {
	a.mu.Lock()
	a.ledger = nil
	a.mu.Unlock()
}

// Summary recomputes the batch statistics from the current ledger contents.
// Nothing is cached: ledgers are bounded by one backlog, and recomputing
// avoids stale-state bugs.
func (a *Agent) Summary() Summary {
	ledger := a.Ledger()

	summary := Summary{
		Total:              len(ledger),
		ModeCounts:         make(map[Mode]int),
		CriterionPassRates: make(map[string]float64),
	}
	if len(ledger) == 0 {
		return summary
	}

	passesPerCriterion := make(map[string]int, len(CriterionOrder))
	totalPassed := 0
	for _, result := range ledger {
		summary.ModeCounts[result.ModeUsed]++
		totalPassed += result.PassedCount()
		if result.InvestComplete() {
			summary.InvestComplete++
		}
		for criterion, score := range result.CriterionScores {
			if score.Passed {
				passesPerCriterion[criterion]++
			}
		}
	}

	summary.PercentInvestComplete = 100.0 * float64(summary.InvestComplete) / float64(len(ledger))
	summary.AvgCriteriaPassed = float64(totalPassed) / float64(len(ledger))
	for _, criterion := range CriterionOrder {
		summary.CriterionPassRates[criterion] = float64(passesPerCriterion[criterion]) / float64(len(ledger))
	}
	return summary
}

// autoStoryID derives a stable id from the story text, mirroring the
// STORY_nnnn ids the dashboard already shows.
func autoStoryID(storyText string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(storyText))
	return fmt.Sprintf("STORY_%04d", h.Sum32()%10000)
}
