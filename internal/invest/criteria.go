package invest

import (
	"regexp"
	"strings"

	"github.com/fadilmartias/invest-analyzer/internal/util"
)

// Judgment is the outcome of one criterion evaluator: pure, deterministic,
// no external calls.
type Judgment struct {
	Passed      bool
	Confidence  float64
	Suggestions []string
}

// CriterionFunc judges a single INVEST criterion from story text alone.
type CriterionFunc func(story string) Judgment

// CriteriaConfig carries the keyword heuristics as data so they can be tuned
// without touching evaluator logic. Patterns are Go regexes applied to the
// cleaned, lowercased story text.
//
// Note: Go's \b is ASCII-only, so words starting or ending with accented
// letters use explicit \p{L} boundaries in the defaults below.
type CriteriaConfig struct {
	// Independiente
	DependencyPatterns []string
	ComponentPatterns  []string

	// Negociable
	RigidPatterns          []string
	ImplementationPatterns []string

	// Valiosa
	ValuePatterns         []string
	StoryFormatPattern    string
	NoValuePatterns       []string
	TechnicalTaskPatterns []string

	// Estimable
	VaguePatterns             []string
	AcceptanceHintPatterns    []string
	UnknownComplexityPatterns []string
	MinEstimableWords         int

	// Small
	MultipleActionPatterns []string
	ActionVerbs            []string
	ComplexActionPatterns  []string
	MaxSmallWords          int

	// Testeable
	UntestablePatterns   []string
	VerifiablePatterns   []string
	TestableHintPatterns []string
	MinTestableWords     int
}

// DefaultCriteriaConfig returns the documented default heuristics for
// Spanish-language user stories.
func DefaultCriteriaConfig() CriteriaConfig {
	return CriteriaConfig{
		DependencyPatterns: []string{
			`\bdepende\b`, `\brequiere\b`, `\bnecesita\b`,
			`\bantes de\b`, `\bdespués de\b`, `\bjunto con\b`,
			`\buna vez que\b`, `\bcuando\b.*\besté(?:[^\p{L}]|$)`,
		},
		ComponentPatterns: []string{
			`\bel sistema ya debe\b`, `\bel usuario debe tener\b`,
			`\bsi existe\b`, `\bsi está configurado\b`,
		},
		RigidPatterns: []string{
			`\bdebe ser exactamente\b`, `\bsolo puede\b`,
			`(?:^|[^\p{L}])únicamente\b`, `\bexactamente como\b`,
			`\bsin excepción\b`, `\bobligatoriamente\b`,
		},
		ImplementationPatterns: []string{
			`\bbase de datos\b`, `\bapi\b`, `\balgoritmo\b`, `\bsql\b`,
			`\bframework\b`, `\btecnología\b`, `\blibrería\b`,
		},
		ValuePatterns: []string{
			`\bpara que\b`, `\bcon el fin de\b`, `\bpara poder\b`,
			`\bpermitirme\b`, `\bayudarme\b`, `\bmejorar\b`,
			`\bpara\s+\p{L}+`,
		},
		StoryFormatPattern: `\bcomo\s+.*\s+quiero\s+.*\s+(?:para|con el fin de)`,
		NoValuePatterns: []string{
			`\bsolo por\b`, `\bsin razón\b`,
			`\bporque sí(?:[^\p{L}]|$)`, `\bpor completar\b`,
		},
		TechnicalTaskPatterns: []string{
			`\bconfigurar servidor\b`, `\boptimizar base de datos\b`,
			`\brefactorizar\b`, `\bmantener código\b`,
		},
		VaguePatterns: []string{
			`\bmejor\b`, `\boptimizar\b`, `\bmás eficiente\b`,
			`\badecuado\b`, `\bapropiado\b`, `\bfácil de usar\b`,
			`\balgo\b`, `\bde alguna manera\b`,
		},
		AcceptanceHintPatterns: []string{
			`\bdebe\b`, `\btiene que\b`, `\bes necesario\b`,
			`\bpermite\b`, `\bmuestra\b`, `\bvalida\b`,
		},
		UnknownComplexityPatterns: []string{
			`\bintegración\b`, `\bmigración\b`, `\bcompatibilidad\b`,
			`\brendimiento\b`, `\bescalabilidad\b`,
		},
		MinEstimableWords: 8,
		MultipleActionPatterns: []string{
			`\by\s+(?:también|además)\b`, `\btambién\b`, `\badicionalmente\b`,
			`\by\s+poder\b`, `\by\s+después\b`,
		},
		ActionVerbs: []string{
			"crear", "editar", "eliminar", "ver", "buscar",
			"filtrar", "exportar", "importar",
		},
		ComplexActionPatterns: []string{
			`\bgestionar\b`, `\badministrar\b`, `\bprocesar\b`,
			`\bintegrar\b`, `\bsincronizar\b`, `\bmigrar\b`,
		},
		MaxSmallWords: 30,
		UntestablePatterns: []string{
			`\bmejor\b`, `\bmás fácil\b`, `\bmás rápido\b`,
			`\bintuitivo\b`, `\bamigable\b`, `\belegante\b`,
		},
		VerifiablePatterns: []string{
			`\bver\b`, `\bcrear\b`, `\beditar\b`, `\beliminar\b`,
			`\brecibir\b`, `\benviar\b`, `\bguardar\b`, `\bcargar\b`,
		},
		TestableHintPatterns: []string{
			`\bmostrar\b`, `\bvalidar\b`, `\bpermitir\b`,
			`\bredireccionar\b`, `\bnotificar\b`, `\bconfirmar\b`,
		},
		MinTestableWords: 6,
	}
}

// Criteria holds the compiled heuristics for the six evaluators.
type Criteria struct {
	cfg CriteriaConfig

	dependency        []*regexp.Regexp
	component         []*regexp.Regexp
	rigid             []*regexp.Regexp
	implementation    []*regexp.Regexp
	value             []*regexp.Regexp
	storyFormat       *regexp.Regexp
	noValue           []*regexp.Regexp
	technicalTask     []*regexp.Regexp
	vague             []*regexp.Regexp
	acceptanceHint    []*regexp.Regexp
	unknownComplexity []*regexp.Regexp
	multipleAction    []*regexp.Regexp
	actionVerb        []*regexp.Regexp
	complexAction     []*regexp.Regexp
	untestable        []*regexp.Regexp
	verifiable        []*regexp.Regexp
	testableHint      []*regexp.Regexp
}

// NewCriteria compiles a config into a ready evaluator set.
func NewCriteria(cfg CriteriaConfig) (*Criteria, error) {
	c := &Criteria{cfg: cfg}

	var err error
	compile := func(patterns []string) []*regexp.Regexp {
		if err != nil {
			return nil
		}
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, compileErr := regexp.Compile(p)
			if compileErr != nil {
				err = compileErr
				return nil
			}
			compiled = append(compiled, re)
		}
		return compiled
	}

	c.dependency = compile(cfg.DependencyPatterns)
	c.component = compile(cfg.ComponentPatterns)
	c.rigid = compile(cfg.RigidPatterns)
	c.implementation = compile(cfg.ImplementationPatterns)
	c.value = compile(cfg.ValuePatterns)
	c.noValue = compile(cfg.NoValuePatterns)
	c.technicalTask = compile(cfg.TechnicalTaskPatterns)
	c.vague = compile(cfg.VaguePatterns)
	c.acceptanceHint = compile(cfg.AcceptanceHintPatterns)
	c.unknownComplexity = compile(cfg.UnknownComplexityPatterns)
	c.multipleAction = compile(cfg.MultipleActionPatterns)
	c.complexAction = compile(cfg.ComplexActionPatterns)
	c.untestable = compile(cfg.UntestablePatterns)
	c.verifiable = compile(cfg.VerifiablePatterns)
	c.testableHint = compile(cfg.TestableHintPatterns)

	verbPatterns := make([]string, 0, len(cfg.ActionVerbs))
	for _, verb := range cfg.ActionVerbs {
		verbPatterns = append(verbPatterns, `\b`+regexp.QuoteMeta(verb)+`\b`)
	}
	c.actionVerb = compile(verbPatterns)

	if err != nil {
		return nil, err
	}
	if cfg.StoryFormatPattern != "" {
		c.storyFormat, err = regexp.Compile(cfg.StoryFormatPattern)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultCriteria builds the evaluator set from DefaultCriteriaConfig.
func DefaultCriteria() *Criteria {
	c, err := NewCriteria(DefaultCriteriaConfig())
	if err != nil {
		// Los patrones por defecto se validan en tests; compile failure here
		// is a programming error.
		panic(err)
	}
	return c
}

// Table returns the six evaluators keyed by criterion name.
func (c *Criteria) Table() map[string]CriterionFunc {
	return map[string]CriterionFunc{
		CriterionIndependent: c.EvaluateIndependent,
		CriterionNegotiable:  c.EvaluateNegotiable,
		CriterionValuable:    c.EvaluateValuable,
		CriterionEstimable:   c.EvaluateEstimable,
		CriterionSmall:       c.EvaluateSmall,
		CriterionTestable:    c.EvaluateTestable,
	}
}

func countHits(patterns []*regexp.Regexp, text string) int {
	hits := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			hits++
		}
	}
	return hits
}

// signalConfidence maps corroborating pattern hits to [0,1]. One hit is
// already decisive, extra hits raise the score.
func signalConfidence(hits int) float64 {
	if hits <= 0 {
		return 0.0
	}
	score := 0.5 + 0.25*float64(hits-1)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func normalize(story string) string {
	return strings.ToLower(util.CleanText(story))
}

func unclassifiable(suggestion string) Judgment {
	return Judgment{Passed: false, Confidence: 0.0, Suggestions: []string{suggestion}}
}

// EvaluateIndependent fails when the story names explicit dependencies on
// other stories or preexisting components.
func (c *Criteria) EvaluateIndependent(story string) Judgment {
	text := normalize(story)
	if text == "" {
		return unclassifiable("Redefinir la historia para que sea más independiente")
	}

	depHits := countHits(c.dependency, text)
	compHits := countHits(c.component, text)

	var suggestions []string
	if depHits > 0 {
		suggestions = append(suggestions, "Revisar dependencias explícitas con otras historias")
	}
	if compHits > 0 {
		suggestions = append(suggestions, "Considerar dividir en historias más independientes")
	}

	if depHits+compHits > 0 {
		return Judgment{
			Passed:      false,
			Confidence:  signalConfidence(depHits + compHits),
			Suggestions: suggestions,
		}
	}
	return Judgment{Passed: true, Confidence: 1.0}
}

// EvaluateNegotiable fails on rigid directives or implementation detail that
// leaves the team no room to negotiate scope.
func (c *Criteria) EvaluateNegotiable(story string) Judgment {
	text := normalize(story)
	if text == "" {
		return unclassifiable("Reformular para permitir diferentes enfoques de solución")
	}

	rigidHits := countHits(c.rigid, text)
	implHits := countHits(c.implementation, text)

	var suggestions []string
	if rigidHits > 0 {
		suggestions = append(suggestions, "Hacer la historia más flexible en términos de implementación")
	}
	if implHits > 0 {
		suggestions = append(suggestions, "Evitar especificar detalles técnicos de implementación")
	}
	if util.CountWords(story) > c.cfg.MaxSmallWords {
		suggestions = append(suggestions, "Considerar simplificar para permitir más flexibilidad")
	}

	if rigidHits+implHits > 0 {
		return Judgment{
			Passed:      false,
			Confidence:  signalConfidence(rigidHits + implHits),
			Suggestions: suggestions,
		}
	}
	return Judgment{Passed: true, Confidence: 1.0, Suggestions: suggestions}
}

// EvaluateValuable requires an explicit value clause ("para …") and rejects
// stories that are pure technical chores.
func (c *Criteria) EvaluateValuable(story string) Judgment {
	text := normalize(story)
	if text == "" {
		return unclassifiable("Clarificar el valor que esta historia aporta al usuario o negocio")
	}

	valueHits := countHits(c.value, text)
	noValueHits := countHits(c.noValue, text)
	technicalHits := countHits(c.technicalTask, text)
	hasFormat := c.storyFormat != nil && c.storyFormat.MatchString(text)

	var suggestions []string
	if valueHits == 0 {
		suggestions = append(suggestions, "Incluir el beneficio o valor que aporta al usuario")
	}
	if !hasFormat {
		suggestions = append(suggestions, "Usar formato: 'Como [rol] quiero [funcionalidad] para [beneficio]'")
	}
	if noValueHits > 0 {
		suggestions = append(suggestions, "Definir claramente el valor de negocio de esta funcionalidad")
	}
	if technicalHits > 0 {
		suggestions = append(suggestions, "Enfocar en el valor del usuario final, no en tareas técnicas")
	}

	passed := valueHits > 0 && noValueHits == 0 && technicalHits == 0
	if passed {
		corroborating := valueHits
		if hasFormat {
			corroborating++
		}
		return Judgment{Passed: true, Confidence: signalConfidence(corroborating), Suggestions: suggestions}
	}

	negative := noValueHits + technicalHits
	if valueHits == 0 {
		negative++
	}
	return Judgment{Passed: false, Confidence: signalConfidence(negative), Suggestions: suggestions}
}

// EvaluateEstimable fails when vague qualifiers or unknown complexity make
// the effort impossible to scope, or when the story is too short to carry
// any detail.
func (c *Criteria) EvaluateEstimable(story string) Judgment {
	text := normalize(story)
	if text == "" {
		return unclassifiable("Agregar más contexto para permitir estimación precisa")
	}

	vagueHits := countHits(c.vague, text)
	unknownHits := countHits(c.unknownComplexity, text)
	acceptanceHits := countHits(c.acceptanceHint, text)
	wordCount := util.CountWords(story)

	var suggestions []string
	if vagueHits > 0 {
		suggestions = append(suggestions, "Definir criterios específicos y medibles")
	}
	if wordCount < c.cfg.MinEstimableWords {
		suggestions = append(suggestions, "Agregar más detalles para facilitar la estimación")
	}
	if acceptanceHits == 0 && wordCount > 5 {
		suggestions = append(suggestions, "Incluir criterios de aceptación claros")
	}
	if unknownHits > 0 {
		suggestions = append(suggestions, "Investigar y especificar los requisitos técnicos")
	}

	passed := vagueHits == 0 && unknownHits == 0 && wordCount >= c.cfg.MinEstimableWords
	if passed {
		return Judgment{Passed: true, Confidence: 1.0, Suggestions: suggestions}
	}

	negative := vagueHits + unknownHits
	if wordCount < c.cfg.MinEstimableWords {
		negative++
	}
	return Judgment{Passed: false, Confidence: signalConfidence(negative), Suggestions: suggestions}
}

// EvaluateSmall fails on long stories and on chained unrelated actions.
func (c *Criteria) EvaluateSmall(story string) Judgment {
	text := normalize(story)
	if text == "" {
		return unclassifiable("Simplificar y enfocar en una funcionalidad específica")
	}

	wordCount := util.CountWords(story)
	multipleHits := countHits(c.multipleAction, text)
	verbHits := countHits(c.actionVerb, text)
	complexHits := countHits(c.complexAction, text)

	var suggestions []string
	if wordCount > c.cfg.MaxSmallWords {
		suggestions = append(suggestions, "Considerar dividir en historias más pequeñas")
	}
	if multipleHits > 0 {
		suggestions = append(suggestions, "Separar en múltiples historias independientes")
	}
	if verbHits > 1 {
		suggestions = append(suggestions, "Enfocarse en una sola acción principal por historia")
	}
	if complexHits > 0 {
		suggestions = append(suggestions, "Desglosar las acciones complejas en pasos más simples")
	}

	passed := wordCount <= c.cfg.MaxSmallWords && multipleHits == 0 && verbHits <= 1
	if passed {
		return Judgment{Passed: true, Confidence: 1.0, Suggestions: suggestions}
	}

	negative := multipleHits
	if wordCount > c.cfg.MaxSmallWords {
		negative++
	}
	if verbHits > 1 {
		negative++
	}
	return Judgment{Passed: false, Confidence: signalConfidence(negative), Suggestions: suggestions}
}

// EvaluateTestable requires at least one verifiable action and rejects
// stories dominated by subjective adjectives.
func (c *Criteria) EvaluateTestable(story string) Judgment {
	text := normalize(story)
	if text == "" {
		return unclassifiable("Definir resultados específicos que se puedan probar")
	}

	untestableHits := countHits(c.untestable, text)
	verifiableHits := countHits(c.verifiable, text)
	hintHits := countHits(c.testableHint, text)
	wordCount := util.CountWords(story)

	var suggestions []string
	if untestableHits > 0 {
		suggestions = append(suggestions, "Reemplazar términos subjetivos con criterios medibles")
	}
	if verifiableHits == 0 {
		suggestions = append(suggestions, "Incluir acciones específicas que se puedan verificar")
	}
	if wordCount < c.cfg.MinTestableWords {
		suggestions = append(suggestions, "Agregar más detalles para definir criterios de prueba")
	}

	passed := (verifiableHits+hintHits) > 0 && untestableHits == 0 && wordCount >= c.cfg.MinTestableWords
	if passed {
		return Judgment{Passed: true, Confidence: signalConfidence(verifiableHits + hintHits), Suggestions: suggestions}
	}

	negative := untestableHits
	if verifiableHits+hintHits == 0 {
		negative++
	}
	if wordCount < c.cfg.MinTestableWords {
		negative++
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Definir resultados específicos que se puedan probar")
	}
	return Judgment{Passed: false, Confidence: signalConfidence(negative), Suggestions: suggestions}
}
