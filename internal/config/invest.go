package config

import (
	"log"
	"os"
	"strings"
	"sync"
)

type InvestConfig struct {
	// Mode is "rules" or "semantic" after normalization.
	Mode string
}

var (
	investConfig *InvestConfig
	investOnce   sync.Once
)

// LoadInvestConfig reads INVEST_MODE once and normalizes the legacy values
// ("reglas", "gptoss", ...) to the two supported modes.
func LoadInvestConfig() *InvestConfig {
	investOnce.Do(func() {
		raw := strings.ToLower(strings.TrimSpace(os.Getenv("INVEST_MODE")))
		mode := "rules"
		switch raw {
		case "", "reglas", "rules":
			mode = "rules"
		case "semantic", "gptoss", "gpt", "advanced":
			mode = "semantic"
		default:
			log.Printf("Warning: valor INVEST_MODE no reconocido: %q. Usando 'rules'", raw)
		}
		investConfig = &InvestConfig{Mode: mode}
	})
	return investConfig
}
