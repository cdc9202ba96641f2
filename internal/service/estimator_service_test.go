package service

import (
	"context"
	"testing"

	"github.com/fadilmartias/invest-analyzer/internal/config"
	"github.com/fadilmartias/invest-analyzer/internal/invest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heuristicEstimator() *EstimatorService {
	return &EstimatorService{cfg: &config.EstimatorConfig{}}
}

func TestHeuristicBuckets(t *testing.T) {
	cases := []struct {
		name     string
		features invest.EstimateFeatures
		want     float64
	}{
		{"corta y bien definida", invest.EstimateFeatures{WordCount: 5, CriteriaPassed: 6}, 3.2},
		{"media sin corrección", invest.EstimateFeatures{WordCount: 12, CriteriaPassed: 4}, 8},
		{"larga y mal definida", invest.EstimateFeatures{WordCount: 20, CriteriaPassed: 2}, 18},
		{"muy larga bien definida", invest.EstimateFeatures{WordCount: 40, CriteriaPassed: 6}, 12.8},
	}

	estimator := heuristicEstimator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hours, err := estimator.EstimateHours(context.Background(), tc.features)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, hours, 1e-9)
		})
	}
}

func TestTrainedCoefficients(t *testing.T) {
	estimator := &EstimatorService{cfg: &config.EstimatorConfig{
		Trained:        true,
		Intercept:      2,
		WordCoef:       0.5,
		CriteriaCoef:   -0.5,
		ComplexityCoef: 1,
	}}

	// 12 palabras → complejidad 2
	hours, err := estimator.EstimateHours(context.Background(), invest.EstimateFeatures{WordCount: 12, CriteriaPassed: 4})
	require.NoError(t, err)
	assert.InDelta(t, 2+0.5*12-0.5*4+1*2, hours, 1e-9)
}

func TestEstimateClampedToRange(t *testing.T) {
	low := &EstimatorService{cfg: &config.EstimatorConfig{Trained: true, Intercept: -50}}
	hours, err := low.EstimateHours(context.Background(), invest.EstimateFeatures{WordCount: 5, CriteriaPassed: 6})
	require.NoError(t, err)
	assert.Equal(t, 1.0, hours)

	high := &EstimatorService{cfg: &config.EstimatorConfig{Trained: true, Intercept: 500}}
	hours, err = high.EstimateHours(context.Background(), invest.EstimateFeatures{WordCount: 5, CriteriaPassed: 6})
	require.NoError(t, err)
	assert.Equal(t, 100.0, hours)
}

func TestEstimateHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := heuristicEstimator().EstimateHours(ctx, invest.EstimateFeatures{WordCount: 10, CriteriaPassed: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComplexityBand(t *testing.T) {
	assert.Equal(t, 1, complexityBand(5))
	assert.Equal(t, 1, complexityBand(10))
	assert.Equal(t, 2, complexityBand(15))
	assert.Equal(t, 3, complexityBand(16))
	assert.Equal(t, 3, complexityBand(100))
}
