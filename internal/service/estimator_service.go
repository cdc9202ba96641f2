package service

import (
	"context"

	"github.com/fadilmartias/invest-analyzer/internal/config"
	"github.com/fadilmartias/invest-analyzer/internal/invest"
)

// EstimatorService implements invest.HoursEstimator. With trained linear
// coefficients in the config it applies the regression; without them it uses
// the heuristic table calibrated on past sprints.
type EstimatorService struct {
	cfg *config.EstimatorConfig
}

func NewEstimatorService() *EstimatorService {
	return &EstimatorService{cfg: config.LoadEstimatorConfig()}
}

func (s *EstimatorService) EstimateHours(ctx context.Context, features invest.EstimateFeatures) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	complexity := complexityBand(features.WordCount)

	var hours float64
	if s.cfg.Trained {
		hours = s.cfg.Intercept +
			s.cfg.WordCoef*float64(features.WordCount) +
			s.cfg.CriteriaCoef*float64(features.CriteriaPassed) +
			s.cfg.ComplexityCoef*float64(complexity)
	} else {
		hours = heuristicHours(features)
	}

	return clampHours(hours), nil
}

// heuristicHours buckets by story size, then corrects by INVEST quality: a
// story passing few criteria tends to hide work, one passing most is usually
// well understood.
func heuristicHours(features invest.EstimateFeatures) float64 {
	var hours float64
	switch {
	case features.WordCount <= 8:
		hours = 4
	case features.WordCount <= 15:
		hours = 8
	case features.WordCount <= 25:
		hours = 12
	default:
		hours = 16
	}

	if features.CriteriaPassed <= 3 {
		hours *= 1.5
	} else if features.CriteriaPassed >= 5 {
		hours *= 0.8
	}
	return hours
}

func complexityBand(wordCount int) int {
	switch {
	case wordCount <= 10:
		return 1
	case wordCount <= 15:
		return 2
	default:
		return 3
	}
}

func clampHours(hours float64) float64 {
	if hours < 1 {
		return 1
	}
	if hours > 100 {
		return 100
	}
	return hours
}
