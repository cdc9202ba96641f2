package invest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateIndependent(t *testing.T) {
	c := DefaultCriteria()

	t.Run("sin dependencias pasa", func(t *testing.T) {
		j := c.EvaluateIndependent("Como usuario quiero ver mis pedidos para conocer su estado")
		assert.True(t, j.Passed)
		assert.Equal(t, 1.0, j.Confidence)
	})

	t.Run("dependencia explícita falla", func(t *testing.T) {
		j := c.EvaluateIndependent("Como usuario quiero ver reportes pero depende de la historia de pagos")
		assert.False(t, j.Passed)
		assert.GreaterOrEqual(t, j.Confidence, 0.5)
		assert.Contains(t, j.Suggestions, "Revisar dependencias explícitas con otras historias")
	})

	t.Run("condición temporal falla", func(t *testing.T) {
		j := c.EvaluateIndependent("Como usuario quiero exportar datos cuando el módulo de pagos esté listo")
		assert.False(t, j.Passed)
	})
}

func TestEvaluateNegotiable(t *testing.T) {
	c := DefaultCriteria()

	t.Run("directiva rígida falla", func(t *testing.T) {
		j := c.EvaluateNegotiable("El formulario debe ser exactamente como el diseño sin excepción")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Hacer la historia más flexible en términos de implementación")
	})

	t.Run("detalle de implementación falla", func(t *testing.T) {
		j := c.EvaluateNegotiable("Como usuario quiero guardar mis datos en la base de datos usando sql")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Evitar especificar detalles técnicos de implementación")
	})

	t.Run("únicamente al inicio de la frase se detecta", func(t *testing.T) {
		j := c.EvaluateNegotiable("Únicamente el administrador puede aprobar solicitudes")
		assert.False(t, j.Passed)
	})

	t.Run("historia flexible pasa", func(t *testing.T) {
		j := c.EvaluateNegotiable("Como usuario quiero ver mis pedidos para conocer su estado")
		assert.True(t, j.Passed)
	})
}

func TestEvaluateValuable(t *testing.T) {
	c := DefaultCriteria()

	t.Run("con beneficio y formato pasa", func(t *testing.T) {
		j := c.EvaluateValuable("Como usuario quiero iniciar sesión para acceder al sistema")
		assert.True(t, j.Passed)
		assert.GreaterOrEqual(t, j.Confidence, 0.5)
	})

	t.Run("sin beneficio falla", func(t *testing.T) {
		j := c.EvaluateValuable("Quiero un botón nuevo en la pantalla principal")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Incluir el beneficio o valor que aporta al usuario")
	})

	t.Run("tarea técnica falla", func(t *testing.T) {
		j := c.EvaluateValuable("Como desarrollador quiero refactorizar el módulo de pagos para limpiar el código")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Enfocar en el valor del usuario final, no en tareas técnicas")
	})
}

func TestEvaluateEstimable(t *testing.T) {
	c := DefaultCriteria()

	t.Run("términos vagos fallan", func(t *testing.T) {
		j := c.EvaluateEstimable("Como usuario quiero algo mejor")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Definir criterios específicos y medibles")
	})

	t.Run("historia muy corta falla", func(t *testing.T) {
		j := c.EvaluateEstimable("Quiero ver pedidos")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Agregar más detalles para facilitar la estimación")
	})

	t.Run("complejidad desconocida falla", func(t *testing.T) {
		j := c.EvaluateEstimable("Como administrador quiero una integración con el sistema externo de facturación")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Investigar y especificar los requisitos técnicos")
	})

	t.Run("historia concreta pasa", func(t *testing.T) {
		j := c.EvaluateEstimable("Como usuario quiero iniciar sesión para acceder al sistema")
		assert.True(t, j.Passed)
	})
}

func TestEvaluateSmall(t *testing.T) {
	c := DefaultCriteria()

	t.Run("historia larga falla", func(t *testing.T) {
		long := "Como usuario del portal de ventas quiero revisar todos los movimientos históricos " +
			"de cada una de mis cuentas bancarias asociadas al sistema incluyendo los detalles " +
			"de cada transacción con fecha monto y descripción para poder auditar mis gastos mensuales"
		j := c.EvaluateSmall(long)
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Considerar dividir en historias más pequeñas")
	})

	t.Run("acciones múltiples fallan", func(t *testing.T) {
		j := c.EvaluateSmall("Como usuario quiero crear editar y eliminar pedidos y también exportar informes")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Enfocarse en una sola acción principal por historia")
	})

	t.Run("una acción corta pasa", func(t *testing.T) {
		j := c.EvaluateSmall("Como usuario quiero ver mis pedidos para conocer su estado")
		assert.True(t, j.Passed)
	})
}

func TestEvaluateTestable(t *testing.T) {
	c := DefaultCriteria()

	t.Run("adjetivos subjetivos fallan", func(t *testing.T) {
		j := c.EvaluateTestable("Como usuario quiero que el panel sea más rápido e intuitivo")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Reemplazar términos subjetivos con criterios medibles")
	})

	t.Run("sin acción verificable falla", func(t *testing.T) {
		j := c.EvaluateTestable("Como usuario quiero iniciar sesión para acceder al sistema")
		assert.False(t, j.Passed)
		assert.Contains(t, j.Suggestions, "Incluir acciones específicas que se puedan verificar")
	})

	t.Run("acción verificable pasa", func(t *testing.T) {
		j := c.EvaluateTestable("Como usuario quiero ver mis pedidos para conocer su estado")
		assert.True(t, j.Passed)
	})
}

// La historia de referencia del dashboard pasa los seis criterios.
func TestCompleteStoryPassesAllCriteria(t *testing.T) {
	evaluator := NewRuleBasedEvaluator(nil)
	assessment := evaluator.Evaluate("Como usuario quiero ver mis pedidos para conocer su estado")

	require.Len(t, assessment.Scores, 6)
	for _, criterion := range CriterionOrder {
		score, ok := assessment.Scores[criterion]
		require.True(t, ok, "falta el criterio %s", criterion)
		assert.True(t, score.Passed, "criterio %s debería cumplirse", criterion)
	}
}

func TestLoginStoryFailsOnlyTestable(t *testing.T) {
	evaluator := NewRuleBasedEvaluator(nil)
	assessment := evaluator.Evaluate("Como usuario quiero iniciar sesión para acceder al sistema")

	require.Len(t, assessment.Scores, 6)
	for _, criterion := range CriterionOrder {
		score := assessment.Scores[criterion]
		if criterion == CriterionTestable {
			assert.False(t, score.Passed)
		} else {
			assert.True(t, score.Passed, "criterio %s debería cumplirse", criterion)
		}
	}
}

func TestEvaluatorsAreDeterministic(t *testing.T) {
	evaluator := NewRuleBasedEvaluator(nil)
	story := "Como administrador quiero exportar el listado de usuarios para auditar accesos"

	first := evaluator.Evaluate(story)
	second := evaluator.Evaluate(story)
	assert.Equal(t, first, second)
}

func TestConfidenceStaysInRange(t *testing.T) {
	evaluator := NewRuleBasedEvaluator(nil)
	stories := []string{
		"",
		"x",
		"Como usuario quiero ver mis pedidos para conocer su estado",
		"Debe ser exactamente como el diseño sin excepción y depende de la api y la base de datos",
		"Como usuario quiero algo mejor y más fácil de usar y también optimizar todo",
	}
	for _, story := range stories {
		assessment := evaluator.Evaluate(story)
		for criterion, score := range assessment.Scores {
			assert.GreaterOrEqual(t, score.Confidence, 0.0, "criterio %s en %q", criterion, story)
			assert.LessOrEqual(t, score.Confidence, 1.0, "criterio %s en %q", criterion, story)
		}
	}
}

func TestEmptyStoryIsUnclassifiable(t *testing.T) {
	c := DefaultCriteria()
	for name, evaluate := range c.Table() {
		j := evaluate("   ")
		assert.False(t, j.Passed, "criterio %s", name)
		assert.Equal(t, 0.0, j.Confidence, "criterio %s", name)
		assert.NotEmpty(t, j.Suggestions, "criterio %s", name)
	}
}

func TestNewCriteriaRejectsBadPattern(t *testing.T) {
	cfg := DefaultCriteriaConfig()
	cfg.DependencyPatterns = append(cfg.DependencyPatterns, `(`)

	_, err := NewCriteria(cfg)
	require.Error(t, err)
}

func TestSignalConfidence(t *testing.T) {
	assert.Equal(t, 0.0, signalConfidence(0))
	assert.Equal(t, 0.5, signalConfidence(1))
	assert.Equal(t, 0.75, signalConfidence(2))
	assert.Equal(t, 1.0, signalConfidence(3))
	assert.Equal(t, 1.0, signalConfidence(10))
}
