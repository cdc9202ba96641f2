package invest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// CompleteOptions bounds a single completion call. The transport owns any
// retry/backoff; the semantic evaluator surfaces failure once so the agent
// can fall back with bounded latency.
type CompleteOptions struct {
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Completer is the text-completion collaborator (LM Studio or compatible).
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

// SemanticEvaluator asks the completion backend to judge all six criteria in
// one structured prompt and parses the reply into the same shape the rule
// evaluator produces.
type SemanticEvaluator struct {
	completer Completer
	opts      CompleteOptions
}

// NewSemanticEvaluator wires the evaluator to a transport. Zero option
// fields get conservative defaults.
func NewSemanticEvaluator(completer Completer, opts CompleteOptions) *SemanticEvaluator {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	return &SemanticEvaluator{completer: completer, opts: opts}
}

// Evaluate judges one story via the completion backend. It fails with a
// wrapped ErrUnreachable/ErrTimeout (from the transport) or
// ErrMalformedResponse (from parsing); scores from a well-formed reply pass
// through without rule-based correction.
func (e *SemanticEvaluator) Evaluate(ctx context.Context, story string) (Assessment, error) {
	reply, err := e.completer.Complete(ctx, e.buildPrompt(story), e.opts)
	if err != nil {
		return Assessment{}, err
	}
	return e.parseReply(reply)
}

func (e *SemanticEvaluator) buildPrompt(story string) string {
	return fmt.Sprintf(`Eres un Product Owner pragmático evaluando una historia de usuario con los criterios INVEST.

Historia: "%s"

Evalúa con criterio práctico:
- Independiente: ¿se puede trabajar sin depender críticamente de otras historias específicas?
- Negociable: ¿el equipo puede conversar el alcance durante el desarrollo?
- Valiosa: ¿resuelve un problema real del usuario o aporta valor al negocio?
- Estimable: ¿el equipo puede entender qué construir y estimar el esfuerzo?
- Small: ¿se puede completar en 1-2 semanas?
- Testeable: ¿se puede verificar que funciona correctamente?

Responde SOLO con JSON válido con esta estructura exacta:
{
  "Independiente": {"cumple": true/false, "confianza": <número 0-1>, "sugerencias": ["..."]},
  "Negociable":    {"cumple": true/false, "confianza": <número 0-1>, "sugerencias": ["..."]},
  "Valiosa":       {"cumple": true/false, "confianza": <número 0-1>, "sugerencias": ["..."]},
  "Estimable":     {"cumple": true/false, "confianza": <número 0-1>, "sugerencias": ["..."]},
  "Small":         {"cumple": true/false, "confianza": <número 0-1>, "sugerencias": ["..."]},
  "Testeable":     {"cumple": true/false, "confianza": <número 0-1>, "sugerencias": ["..."]}
}

Sugerencias solo para criterios que no cumplen, específicas y ejecutables.`, story)
}

// parseReply validates the six-criterion contract strictly: every criterion
// present, cumple boolean, confianza a number in [0,1]. Anything else is a
// malformed response and triggers fallback upstream.
func (e *SemanticEvaluator) parseReply(reply string) (Assessment, error) {
	payload, err := extractJSON(reply)
	if err != nil {
		return Assessment{}, err
	}

	assessment := Assessment{
		Scores: make(map[string]CriterionScore, len(CriterionOrder)),
	}
	for _, criterion := range CriterionOrder {
		entry := gjson.Get(payload, criterion)
		if !entry.Exists() || !entry.IsObject() {
			return Assessment{}, fmt.Errorf("criterio %q ausente en la respuesta: %w", criterion, ErrMalformedResponse)
		}

		passed := entry.Get("cumple")
		if passed.Type != gjson.True && passed.Type != gjson.False {
			return Assessment{}, fmt.Errorf("criterio %q sin veredicto booleano: %w", criterion, ErrMalformedResponse)
		}

		confidence := entry.Get("confianza")
		if confidence.Type != gjson.Number || confidence.Float() < 0.0 || confidence.Float() > 1.0 {
			return Assessment{}, fmt.Errorf("criterio %q con confianza fuera de [0,1]: %w", criterion, ErrMalformedResponse)
		}

		var suggestions []string
		for _, s := range entry.Get("sugerencias").Array() {
			if text := strings.TrimSpace(s.String()); text != "" {
				suggestions = append(suggestions, text)
			}
		}

		assessment.Scores[criterion] = CriterionScore{
			Passed:      passed.Bool(),
			Confidence:  confidence.Float(),
			Suggestions: suggestions,
		}
		assessment.Suggestions = append(assessment.Suggestions, suggestions...)
	}
	return assessment, nil
}

// extractJSON pulls the JSON object out of a reply that may wrap it in prose
// or markdown fences.
func extractJSON(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("sin objeto JSON en la respuesta: %w", ErrMalformedResponse)
	}
	payload := reply[start : end+1]
	if !gjson.Valid(payload) {
		return "", fmt.Errorf("JSON inválido en la respuesta: %w", ErrMalformedResponse)
	}
	return payload, nil
}
