package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"
)

type LMStudioConfig struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

var (
	lmStudioConfig *LMStudioConfig
	lmStudioOnce   sync.Once
)

func LoadLMStudioConfig() *LMStudioConfig {
	lmStudioOnce.Do(func() {
		baseURL := os.Getenv("LMSTUDIO_BASE_URL")
		if baseURL == "" {
			baseURL = "http://127.0.0.1:1234"
		}
		model := os.Getenv("LMSTUDIO_MODEL")
		if model == "" {
			model = "openai/gpt-oss-20b"
		}

		timeout := 30 * time.Second
		if raw := os.Getenv("LMSTUDIO_TIMEOUT_SECONDS"); raw != "" {
			if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
				timeout = time.Duration(seconds) * time.Second
			} else {
				log.Printf("Warning: LMSTUDIO_TIMEOUT_SECONDS inválido (%s), usando %s", raw, timeout)
			}
		}

		temperature := 0.3
		if raw := os.Getenv("LMSTUDIO_TEMPERATURE"); raw != "" {
			if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 0 {
				temperature = value
			}
		}

		maxTokens := 800
		if raw := os.Getenv("LMSTUDIO_MAX_TOKENS"); raw != "" {
			if value, err := strconv.Atoi(raw); err == nil && value > 0 {
				maxTokens = value
			}
		}

		lmStudioConfig = &LMStudioConfig{
			BaseURL:     baseURL,
			Model:       model,
			Timeout:     timeout,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}
	})
	return lmStudioConfig
}
