package config

import (
	"os"
	"strconv"
	"sync"
)

// EstimatorConfig holds pre-trained linear regression coefficients for the
// hour estimator. When Trained is false the estimator falls back to its
// heuristic table. Training happens offline; only the weights travel here.
type EstimatorConfig struct {
	Trained        bool
	Intercept      float64
	WordCoef       float64
	CriteriaCoef   float64
	ComplexityCoef float64
}

var (
	estimatorConfig *EstimatorConfig
	estimatorOnce   sync.Once
)

func LoadEstimatorConfig() *EstimatorConfig {
	estimatorOnce.Do(func() {
		cfg := &EstimatorConfig{}

		intercept, okIntercept := parseEnvFloat("ESTIMATOR_INTERCEPT")
		wordCoef, okWords := parseEnvFloat("ESTIMATOR_COEF_WORDS")
		criteriaCoef, okCriteria := parseEnvFloat("ESTIMATOR_COEF_CRITERIA")
		complexityCoef, okComplexity := parseEnvFloat("ESTIMATOR_COEF_COMPLEXITY")

		// Solo se considera entrenado si las cuatro variables están presentes.
		if okIntercept && okWords && okCriteria && okComplexity {
			cfg.Trained = true
			cfg.Intercept = intercept
			cfg.WordCoef = wordCoef
			cfg.CriteriaCoef = criteriaCoef
			cfg.ComplexityCoef = complexityCoef
		}
		estimatorConfig = cfg
	})
	return estimatorConfig
}

func parseEnvFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
