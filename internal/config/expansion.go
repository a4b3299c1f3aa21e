package config

import "os"

// Expansion bounds QueryExpander's noise budget.
type Expansion struct {
	Depth                int
	MaxTerms             int
	BroaderMinConfidence float64
}

// QueryExpansion reads CONS_EXPANSION_DEPTH / CONS_MAX_EXPANSION_TERMS
// / CONS_BROADER_MIN_CONFIDENCE.
func QueryExpansion() Expansion {
	return Expansion{
		Depth:                intEnv("CONS_EXPANSION_DEPTH", 1),
		MaxTerms:             intEnv("CONS_MAX_EXPANSION_TERMS", 10),
		BroaderMinConfidence: floatEnv("CONS_BROADER_MIN_CONFIDENCE", 0.7),
	}
}

// DBPath reads CONS_DB_PATH, the sqlite file location.
func DBPath() string {
	v := os.Getenv("CONS_DB_PATH")
	if v == "" {
		return "./cons.db"
	}
	return v
}
